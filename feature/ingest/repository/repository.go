package repository

import (
	"context"
	"fmt"

	"results-ingest/core/database"
	"results-ingest/feature/ingest/models"

	"gorm.io/gorm"
)

// Repository is the persistence store of the ingestion engine.
type Repository interface {
	ListClasses(ctx context.Context, eventID uint) ([]models.Class, error)
	CreateClass(ctx context.Context, class *models.Class) error
	UpdateClass(ctx context.Context, class *models.Class) error

	FindTeamByBib(ctx context.Context, eventID uint, bib string) (*models.Team, error)
	FindTeamByName(ctx context.Context, classID uint, name string) (*models.Team, error)
	CreateTeam(ctx context.Context, team *models.Team) error
	UpdateTeam(ctx context.Context, team *models.Team) error

	FindCompetitor(ctx context.Context, eventID uint, systemKey string) (*models.Competitor, error)
	GetCompetitor(ctx context.Context, id uint) (*models.Competitor, error)
	CreateCompetitor(ctx context.Context, competitor *models.Competitor) error
	UpdateCompetitor(ctx context.Context, id uint, updates map[string]any) error
	ListCompetitorsByClass(ctx context.Context, classID uint) ([]models.Competitor, error)

	CreateProtocol(ctx context.Context, entry *models.Protocol) error
	ListProtocol(ctx context.Context, eventID, competitorID uint) ([]models.Protocol, error)

	ListSplits(ctx context.Context, competitorID uint) ([]models.Split, error)
	ReplaceSplits(ctx context.Context, competitorID uint, splits []models.Split, opts database.TxOptions) error
}

// GormRepository implements Repository with GORM.
type GormRepository struct {
	db *gorm.DB
	tx *database.Transactor
}

var _ Repository = (*GormRepository)(nil)

// New creates a GormRepository allowing up to txSlots concurrent split transactions.
func New(db *gorm.DB, txSlots int) *GormRepository {
	return &GormRepository{db: db, tx: database.NewTransactor(db, txSlots)}
}

// Migrate creates or updates the tables of all models.
func Migrate(db *gorm.DB) error {
	return database.Wrap("migrate", db.AutoMigrate(models.All()...))
}

func (r *GormRepository) ListClasses(ctx context.Context, eventID uint) ([]models.Class, error) {
	var classes []models.Class
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id").Find(&classes).Error
	return classes, database.Wrap("list classes", err)
}

func (r *GormRepository) CreateClass(ctx context.Context, class *models.Class) error {
	return database.Wrap("create class", r.db.WithContext(ctx).Create(class).Error)
}

func (r *GormRepository) UpdateClass(ctx context.Context, class *models.Class) error {
	return database.Wrap("update class", r.db.WithContext(ctx).Save(class).Error)
}

func (r *GormRepository) FindTeamByBib(ctx context.Context, eventID uint, bib string) (*models.Team, error) {
	var team models.Team
	err := r.db.WithContext(ctx).Where("event_id = ? AND bib_number = ?", eventID, bib).First(&team).Error
	if err != nil {
		return nil, database.Wrap("find team by bib", err)
	}
	return &team, nil
}

func (r *GormRepository) FindTeamByName(ctx context.Context, classID uint, name string) (*models.Team, error) {
	var team models.Team
	err := r.db.WithContext(ctx).Where("class_id = ? AND name = ?", classID, name).First(&team).Error
	if err != nil {
		return nil, database.Wrap("find team by name", err)
	}
	return &team, nil
}

func (r *GormRepository) CreateTeam(ctx context.Context, team *models.Team) error {
	return database.Wrap("create team", r.db.WithContext(ctx).Create(team).Error)
}

func (r *GormRepository) UpdateTeam(ctx context.Context, team *models.Team) error {
	return database.Wrap("update team", r.db.WithContext(ctx).Save(team).Error)
}

func (r *GormRepository) FindCompetitor(ctx context.Context, eventID uint, systemKey string) (*models.Competitor, error) {
	var c models.Competitor
	err := r.db.WithContext(ctx).Where("event_id = ? AND system_key = ?", eventID, systemKey).First(&c).Error
	if err != nil {
		return nil, database.Wrap("find competitor", err)
	}
	return &c, nil
}

func (r *GormRepository) GetCompetitor(ctx context.Context, id uint) (*models.Competitor, error) {
	var c models.Competitor
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, database.Wrap("get competitor", err)
	}
	return &c, nil
}

func (r *GormRepository) CreateCompetitor(ctx context.Context, competitor *models.Competitor) error {
	return database.Wrap("create competitor", r.db.WithContext(ctx).Create(competitor).Error)
}

// UpdateCompetitor writes only the given columns.
func (r *GormRepository) UpdateCompetitor(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&models.Competitor{}).Where("id = ?", id).Updates(updates).Error
	return database.Wrap("update competitor", err)
}

func (r *GormRepository) ListCompetitorsByClass(ctx context.Context, classID uint) ([]models.Competitor, error) {
	var competitors []models.Competitor
	err := r.db.WithContext(ctx).Where("class_id = ?", classID).Order("id").Find(&competitors).Error
	return competitors, database.Wrap("list competitors", err)
}

func (r *GormRepository) CreateProtocol(ctx context.Context, entry *models.Protocol) error {
	return database.Wrap("create protocol", r.db.WithContext(ctx).Create(entry).Error)
}

func (r *GormRepository) ListProtocol(ctx context.Context, eventID, competitorID uint) ([]models.Protocol, error) {
	var entries []models.Protocol
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND competitor_id = ?", eventID, competitorID).
		Order("created_at, id").
		Find(&entries).Error
	return entries, database.Wrap("list protocol", err)
}

func (r *GormRepository) ListSplits(ctx context.Context, competitorID uint) ([]models.Split, error) {
	var splits []models.Split
	err := r.db.WithContext(ctx).Where("competitor_id = ?", competitorID).Order("id").Find(&splits).Error
	return splits, database.Wrap("list splits", err)
}

// ReplaceSplits deletes every stored split of the competitor and inserts
// splits in the same transaction.
func (r *GormRepository) ReplaceSplits(ctx context.Context, competitorID uint, splits []models.Split, opts database.TxOptions) error {
	rows := make([]models.Split, len(splits))
	for i, s := range splits {
		rows[i] = models.Split{CompetitorID: competitorID, ControlCode: s.ControlCode, Time: s.Time}
	}

	err := r.tx.Transact(ctx, opts, func(tx *gorm.DB) error {
		if err := tx.Where("competitor_id = ?", competitorID).Delete(&models.Split{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
	return database.Wrap("replace splits", err)
}

// VerifySchema compares every model with its live table and returns the
// columns missing per table. An empty map means the schema is complete.
func VerifySchema(db *gorm.DB) (map[string][]string, error) {
	missing := make(map[string][]string)
	for _, model := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}

		cols, err := database.MissingColumns(db, stmt.Schema.Table, stmt.Schema.DBNames)
		if err != nil {
			return nil, err
		}
		if len(cols) > 0 {
			missing[stmt.Schema.Table] = cols
		}
	}
	return missing, nil
}
