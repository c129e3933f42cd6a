package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"results-ingest/feature/ingest/extract"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// KeyKind selects which competitor key to derive.
type KeyKind int

const (
	// KeyRegistration is the key facing the national federation registry.
	KeyRegistration KeyKind = iota
	// KeySystem is the identity anchor of a competitor within an event.
	KeySystem
)

// FallbackPrefix marks keys generated from the class and the person's name.
const FallbackPrefix = "gen-"

// Types names the identifier types the resolver prefers.
type Types struct {
	// Registration is the national federation type, e.g. CZE.
	Registration string
	// System is the secondary-system type, e.g. ORIS.
	System string
	// External is another known external-system type, e.g. QuickEvent.
	External string
}

// DefaultTypes are the identifier types used when none are configured.
var DefaultTypes = Types{Registration: "CZE", System: "ORIS", External: "QuickEvent"}

// Resolver derives competitor keys from person identifiers.
type Resolver struct {
	types  Types
	logger *zap.Logger
}

// NewResolver creates a Resolver. Empty types fall back to DefaultTypes.
func NewResolver(types Types, logger *zap.Logger) *Resolver {
	if types.Registration == "" {
		types.Registration = DefaultTypes.Registration
	}
	if types.System == "" {
		types.System = DefaultTypes.System
	}
	if types.External == "" {
		types.External = DefaultTypes.External
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{types: types, logger: logger}
}

// ResolveKey returns the key of the given kind for person in class classID.
// Without any identifier both kinds resolve to the same fallback hash, which
// is only unique within the class. The warning for that case is logged when
// resolving KeySystem, so once per person.
func (r *Resolver) ResolveKey(classID uint, person extract.PersonRecord, kind KeyKind) string {
	var preferred []string
	switch kind {
	case KeyRegistration:
		preferred = []string{r.types.Registration}
	case KeySystem:
		preferred = []string{r.types.System, r.types.External}
	}

	for _, t := range preferred {
		if v := findByType(person.IDs, t); v != "" {
			return v
		}
	}
	for _, id := range person.IDs {
		if v := strings.TrimSpace(id.Value); v != "" {
			return v
		}
	}

	key := FallbackKey(classID, person.Family, person.Given)
	if kind == KeySystem {
		r.logger.Warn("Person has no identifier, using generated key",
			zap.Uint("class_id", classID),
			zap.String("family", person.Family),
			zap.String("given", person.Given),
			zap.String("key", key),
		)
	}
	return key
}

func findByType(ids []extract.Identifier, idType string) string {
	for _, id := range ids {
		if strings.EqualFold(strings.TrimSpace(id.Type), idType) {
			if v := strings.TrimSpace(id.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

// FallbackKey hashes the class and the person's name. The same class and
// name always give the same key regardless of Unicode composition, case or
// surrounding whitespace.
func FallbackKey(classID uint, family, given string) string {
	material := strconv.FormatUint(uint64(classID), 10) + "|" + canonical(family) + "|" + canonical(given)
	sum := sha256.Sum256([]byte(material))
	return FallbackPrefix + hex.EncodeToString(sum[:])
}

func canonical(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

// IsFallback reports whether key was generated by FallbackKey.
func IsFallback(key string) bool {
	return strings.HasPrefix(key, FallbackPrefix)
}
