package lint

import (
	"fmt"
	"maps"
	"slices"
)

// Vocabulary is the fixed set of names the rules match against. It is built
// once, shared by every checker and never modified afterwards.
type Vocabulary struct {
	mapping           map[string]struct{}
	relationship      map[string]struct{}
	legacyCollections map[string]string // legacy annotation -> replacement
	legacyKeywords    map[string]string // legacy relationship keyword -> replacement
}

// VocabularyOptions extends the default vocabulary from configuration.
type VocabularyOptions struct {
	ExtraMappingNames      []string          `mapstructure:"extra_mapping_names"`
	ExtraRelationshipNames []string          `mapstructure:"extra_relationship_names"`
	LegacyCollections      map[string]string `mapstructure:"legacy_collections"`
}

var (
	defaultMappingNames = []string{
		"association_proxy",
		"column_property",
		"composite",
		"mapped_column",
		"relationship",
		"synonym",
	}
	defaultRelationshipNames = []string{"relationship"}
	defaultLegacyCollections = map[string]string{"DynamicMapped": "WriteOnlyMapped"}
	defaultLegacyKeywords    = map[string]string{"backref": "back_populates"}
)

// DefaultVocabulary returns the SQLAlchemy 2.0 declarative vocabulary.
func DefaultVocabulary() *Vocabulary {
	v, _ := NewVocabulary(VocabularyOptions{})
	return v
}

// NewVocabulary builds the default vocabulary plus the given extras.
// Relationship-style names are always mapping names as well.
func NewVocabulary(opts VocabularyOptions) (*Vocabulary, error) {
	v := &Vocabulary{
		mapping:           make(map[string]struct{}),
		relationship:      make(map[string]struct{}),
		legacyCollections: maps.Clone(defaultLegacyCollections),
		legacyKeywords:    maps.Clone(defaultLegacyKeywords),
	}

	for _, name := range slices.Concat(defaultMappingNames, opts.ExtraMappingNames) {
		if name == "" {
			return nil, fmt.Errorf("empty mapping construct name")
		}
		v.mapping[name] = struct{}{}
	}
	for _, name := range slices.Concat(defaultRelationshipNames, opts.ExtraRelationshipNames) {
		if name == "" {
			return nil, fmt.Errorf("empty relationship construct name")
		}
		v.relationship[name] = struct{}{}
		v.mapping[name] = struct{}{}
	}
	for legacy, replacement := range opts.LegacyCollections {
		if legacy == "" || replacement == "" {
			return nil, fmt.Errorf("legacy collection %q: both name and replacement are required", legacy)
		}
		v.legacyCollections[legacy] = replacement
	}

	return v, nil
}

// VocabularyFromOptions decodes raw configuration (lint.vocabulary) and
// builds the vocabulary from it.
func VocabularyFromOptions(raw map[string]any) (*Vocabulary, error) {
	var opts VocabularyOptions
	if err := DecodeOptions(raw, &opts); err != nil {
		return nil, fmt.Errorf("vocabulary: %w", err)
	}
	return NewVocabulary(opts)
}

// IsMappingName reports whether name is a mapping construct.
func (v *Vocabulary) IsMappingName(name string) bool {
	_, ok := v.mapping[name]
	return ok
}

// IsRelationshipName reports whether name is a relationship-style construct.
func (v *Vocabulary) IsRelationshipName(name string) bool {
	_, ok := v.relationship[name]
	return ok
}

// LegacyCollection returns the replacement for a legacy collection annotation.
func (v *Vocabulary) LegacyCollection(name string) (string, bool) {
	r, ok := v.legacyCollections[name]
	return r, ok
}

// LegacyKeyword returns the replacement for a legacy relationship keyword.
func (v *Vocabulary) LegacyKeyword(name string) (string, bool) {
	r, ok := v.legacyKeywords[name]
	return r, ok
}

// MappingNames returns the mapping construct names, sorted.
func (v *Vocabulary) MappingNames() []string {
	return slices.Sorted(maps.Keys(v.mapping))
}

// RelationshipNames returns the relationship-style names, sorted.
func (v *Vocabulary) RelationshipNames() []string {
	return slices.Sorted(maps.Keys(v.relationship))
}

// LegacyCollections returns the legacy collection annotations, sorted.
func (v *Vocabulary) LegacyCollections() []string {
	return slices.Sorted(maps.Keys(v.legacyCollections))
}

// LegacyKeywords returns the legacy relationship keywords, sorted.
func (v *Vocabulary) LegacyKeywords() []string {
	return slices.Sorted(maps.Keys(v.legacyKeywords))
}
