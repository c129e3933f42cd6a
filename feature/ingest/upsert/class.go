package upsert

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"results-ingest/core/reconcile"
	"results-ingest/feature/ingest/extract"
	"results-ingest/feature/ingest/models"

	"go.uber.org/zap"
)

// ClassStore is the persistence a ClassUpserter needs.
type ClassStore interface {
	CreateClass(ctx context.Context, class *models.Class) error
	UpdateClass(ctx context.Context, class *models.Class) error
}

// ClassExtra carries class metadata known from outside the class element.
// Each value is used only when the class record does not provide it.
type ClassExtra struct {
	Length   *float64
	Climb    *float64
	Controls *int
}

// CourseExtra takes the metadata of the course given next to a class.
func CourseExtra(course *extract.CourseRecord) ClassExtra {
	if course == nil {
		return ClassExtra{}
	}
	return ClassExtra{Length: course.Length, Climb: course.Climb, Controls: course.Controls}
}

// ClassOutcome reports what an upsert did.
type ClassOutcome struct {
	ID      uint
	Created bool
}

// ClassIndex is the set of classes already stored for one event, looked up
// by external id and by name. It is safe for concurrent use.
type ClassIndex struct {
	mu         sync.RWMutex
	byExternal map[string]*models.Class
	byName     map[string]*models.Class
}

// NewClassIndex indexes the stored classes of an event.
func NewClassIndex(classes []models.Class) *ClassIndex {
	idx := &ClassIndex{
		byExternal: make(map[string]*models.Class, len(classes)),
		byName:     make(map[string]*models.Class, len(classes)),
	}
	for i := range classes {
		idx.put(&classes[i])
	}
	return idx
}

func (idx *ClassIndex) put(c *models.Class) {
	if c.ExternalID != nil && *c.ExternalID != "" {
		idx.byExternal[*c.ExternalID] = c
	}
	idx.byName[c.Name] = c
}

// Find returns a copy of the class matching the record's external id, or its
// name when the record has no external id.
func (idx *ClassIndex) Find(rec extract.ClassRecord) (models.Class, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var c *models.Class
	if rec.ExternalID != "" {
		c = idx.byExternal[rec.ExternalID]
	} else {
		c = idx.byName[rec.Name]
	}
	if c == nil {
		return models.Class{}, false
	}
	return *c, true
}

func (idx *ClassIndex) store(c models.Class) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.put(&c)
}

// Len returns the number of indexed classes.
func (idx *ClassIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	seen := make(map[uint]struct{})
	for _, c := range idx.byExternal {
		seen[c.ID] = struct{}{}
	}
	for _, c := range idx.byName {
		seen[c.ID] = struct{}{}
	}
	return len(seen)
}

// ClassUpserter creates or updates classes without auditing them.
type ClassUpserter struct {
	store  ClassStore
	locks  *reconcile.KeyLock[string]
	logger *zap.Logger
}

// NewClassUpserter creates a ClassUpserter.
func NewClassUpserter(store ClassStore, logger *zap.Logger) *ClassUpserter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassUpserter{store: store, locks: reconcile.NewKeyLock[string](), logger: logger}
}

// UpsertClass upserts the class described by rec, creating it when the index
// has no match and overwriting its name, sex and course metadata otherwise.
// Created is decided under the class lock, so only one of several concurrent
// upserts of a new class reports it.
func (u *ClassUpserter) UpsertClass(ctx context.Context, eventID uint, rec extract.ClassRecord, existing *ClassIndex, extra ClassExtra) (ClassOutcome, error) {
	if rec.ExternalID == "" && strings.TrimSpace(rec.Name) == "" {
		return ClassOutcome{}, fmt.Errorf("%w: class has neither id nor name", ErrMalformed)
	}

	key := fmt.Sprintf("%d|%s|%s", eventID, rec.ExternalID, rec.Name)
	if rec.ExternalID != "" {
		key = fmt.Sprintf("%d|%s", eventID, rec.ExternalID)
	}

	var out ClassOutcome
	err := u.locks.Do(ctx, key, func() error {
		class, found := existing.Find(rec)
		if !found {
			class = models.Class{EventID: eventID}
			if rec.ExternalID != "" {
				ext := rec.ExternalID
				class.ExternalID = &ext
			}
		}

		class.Name = rec.Name
		class.Sex = classSex(rec)
		class.Length = firstFloat(rec.Length, extra.Length, class.Length)
		class.Climb = firstFloat(rec.Climb, extra.Climb, class.Climb)
		class.Controls = firstInt(rec.Controls, extra.Controls, class.Controls)

		if !found {
			if err := u.store.CreateClass(ctx, &class); err != nil {
				return fmt.Errorf("failed to create class %q: %w", rec.Name, err)
			}
			u.logger.Debug("Class created", zap.Uint("class_id", class.ID), zap.String("name", class.Name))
		} else if err := u.store.UpdateClass(ctx, &class); err != nil {
			return fmt.Errorf("failed to update class %q: %w", rec.Name, err)
		}

		existing.store(class)
		out = ClassOutcome{ID: class.ID, Created: !found}
		return nil
	})
	return out, err
}

// classSex prefers an explicit attribute and otherwise infers the category
// from the leading letter of the class name: H for men, D for women.
func classSex(rec extract.ClassRecord) string {
	switch strings.ToUpper(strings.TrimSpace(rec.Sex)) {
	case models.SexMale:
		return models.SexMale
	case models.SexFemale, "W":
		return models.SexFemale
	case models.SexMixed:
		return models.SexMixed
	}

	name := strings.TrimSpace(rec.Name)
	switch {
	case strings.HasPrefix(name, "H"):
		return models.SexMale
	case strings.HasPrefix(name, "D"):
		return models.SexFemale
	default:
		return models.SexMixed
	}
}

func firstFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
