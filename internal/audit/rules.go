package audit

import (
	"strings"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/config"
)

// Vocabulary is the configuration data that drives field classification and masking.
type Vocabulary struct {
	Excluded         []string
	Sensitive        []string
	CardFields       []string
	CVVFields        []string
	ForeignKeySuffix string
	MaskPlaceholder  string
	CVVPlaceholder   string
	MaskFiller       string
	UnknownLabel     string
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Excluded:         []string{"id", "created_at", "updated_at", "company_id"},
		Sensitive:        []string{"password", "password_confirmation", "card_number", "cvv", "curp", "rfc", "nss", "token", "secret"},
		CardFields:       []string{"card_number"},
		CVVFields:        []string{"cvv"},
		ForeignKeySuffix: "_id",
		MaskPlaceholder:  "***MASKED***",
		CVVPlaceholder:   "***",
		MaskFiller:       "*",
		UnknownLabel:     "Unknown",
	}
}

// VocabularyFromConfig converts the configuration section into a Vocabulary.
// Empty entries fall back to the built-in defaults.
func VocabularyFromConfig(cfg config.AuditVocabularyConfig) Vocabulary {
	v := DefaultVocabulary()
	if len(cfg.Excluded) > 0 {
		v.Excluded = cfg.Excluded
	}
	if len(cfg.Sensitive) > 0 {
		v.Sensitive = cfg.Sensitive
	}
	if len(cfg.CardFields) > 0 {
		v.CardFields = cfg.CardFields
	}
	if len(cfg.CVVFields) > 0 {
		v.CVVFields = cfg.CVVFields
	}
	if s := strings.TrimSpace(cfg.ForeignKeySuffix); s != "" {
		v.ForeignKeySuffix = s
	}
	if cfg.MaskPlaceholder != "" {
		v.MaskPlaceholder = cfg.MaskPlaceholder
	}
	if cfg.CVVPlaceholder != "" {
		v.CVVPlaceholder = cfg.CVVPlaceholder
	}
	if cfg.MaskFiller != "" {
		v.MaskFiller = cfg.MaskFiller
	}
	if cfg.UnknownLabel != "" {
		v.UnknownLabel = cfg.UnknownLabel
	}
	return v
}

// Class is the treatment a field receives when a record is built.
type Class int

const (
	ClassRaw Class = iota
	ClassExcluded
	ClassSensitive
	ClassForeignKey
)

func (c Class) String() string {
	switch c {
	case ClassExcluded:
		return "excluded"
	case ClassSensitive:
		return "sensitive"
	case ClassForeignKey:
		return "foreign_key"
	}
	return "raw"
}

// Rules is a compiled Vocabulary. All name sets are lower-cased, and card and
// cvv fields are always treated as sensitive. Rules is immutable once built.
type Rules struct {
	excluded  set
	sensitive set
	card      set
	cvv       set

	fkSuffix        string
	maskPlaceholder string
	cvvPlaceholder  string
	filler          string
	unknown         string
}

type set map[string]struct{}

func newSet(names ...[]string) set {
	s := make(set)
	for _, list := range names {
		for _, n := range list {
			if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
				s[n] = struct{}{}
			}
		}
	}
	return s
}

func (s set) has(name string) bool {
	_, ok := s[name]
	return ok
}

// NewRules compiles v.
func NewRules(v Vocabulary) *Rules {
	return &Rules{
		excluded:        newSet(v.Excluded),
		sensitive:       newSet(v.Sensitive, v.CardFields, v.CVVFields),
		card:            newSet(v.CardFields),
		cvv:             newSet(v.CVVFields),
		fkSuffix:        strings.ToLower(v.ForeignKeySuffix),
		maskPlaceholder: v.MaskPlaceholder,
		cvvPlaceholder:  v.CVVPlaceholder,
		filler:          v.MaskFiller,
		unknown:         v.UnknownLabel,
	}
}

// Classify returns the treatment for field. Checks run in order: excluded,
// sensitive, foreign key, raw. Matching is exact and case-insensitive.
func (r *Rules) Classify(field string) Class {
	name := strings.ToLower(field)
	switch {
	case r.excluded.has(name):
		return ClassExcluded
	case r.sensitive.has(name):
		return ClassSensitive
	case r.isForeignKey(name):
		return ClassForeignKey
	default:
		return ClassRaw
	}
}

func (r *Rules) isForeignKey(name string) bool {
	return r.fkSuffix != "" && len(name) > len(r.fkSuffix) && strings.HasSuffix(name, r.fkSuffix)
}

// excludedFor returns the entity-specific exclusions declared through Excluder.
func excludedFor(e Entity) set {
	if x, ok := e.(Excluder); ok {
		return newSet(x.AuditExcluded())
	}
	return nil
}

// skip reports whether field is dropped for an entity with the given extra exclusions.
func (r *Rules) skip(field string, extra set) bool {
	return extra.has(strings.ToLower(field)) || r.Classify(field) == ClassExcluded
}

// ForeignKeySuffix returns the lower-cased suffix that marks a foreign-key column.
func (r *Rules) ForeignKeySuffix() string { return r.fkSuffix }

// UnknownLabel returns the label used when a foreign key cannot be resolved.
func (r *Rules) UnknownLabel() string { return r.unknown }
