package services

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"

	"vehicle-scraper/models"
	"vehicle-scraper/utils"
)

//go:embed translations.yaml
var translationsYAML []byte

type localized struct {
	De string `yaml:"de"`
	Fr string `yaml:"fr"`
	En string `yaml:"en"`
}

func (l localized) forLocale(locale string) string {
	switch locale {
	case "fr":
		return l.Fr
	case "en":
		return l.En
	default:
		return l.De
	}
}

type translationTables struct {
	Brand        map[string]localized `yaml:"brand"`
	Fuel         map[string]localized `yaml:"fuel"`
	Transmission map[string]localized `yaml:"transmission"`
	BodyType     map[string]localized `yaml:"bodyType"`
	Color        map[string]localized `yaml:"color"`
	Condition    map[string]localized `yaml:"condition"`
	Warranty     map[string]localized `yaml:"warranty"`
	Features     map[string]localized `yaml:"features"`
}

// Enricher fills a Vehicle's multilingual representation from the embedded
// lookup tables. Values missing from a table keep their raw string in all
// three locales; enrichment is best-effort and never blocks a record.
type Enricher struct {
	logger *utils.Logger
	tables *translationTables
}

// NewEnricher parses the embedded translation tables.
func NewEnricher(logger *utils.Logger) (*Enricher, error) {
	var tables translationTables
	if err := yaml.Unmarshal(translationsYAML, &tables); err != nil {
		return nil, fmt.Errorf("enrich: parse translation tables: %w", err)
	}
	return &Enricher{logger: logger.WithComponent("enrich"), tables: &tables}, nil
}

// Enrich populates v.Multilingual for de/fr/en.
func (e *Enricher) Enrich(v *models.Vehicle) {
	v.Multilingual = make(map[string]*models.LocalizedText, len(models.Locales))

	for _, locale := range models.Locales {
		lt := &models.LocalizedText{
			Brand:        lookup(e.tables.Brand, v.Brand, locale),
			Fuel:         lookup(e.tables.Fuel, v.Fuel, locale),
			Transmission: lookup(e.tables.Transmission, v.Transmission, locale),
			BodyType:     lookup(e.tables.BodyType, v.BodyType, locale),
			Color:        lookup(e.tables.Color, v.Color, locale),
			Condition:    lookup(e.tables.Condition, v.Condition, locale),
			Features:     e.translateFeatures(v.Equipment, locale),
		}

		if v.Warranty != nil {
			lt.Warranty = lookup(e.tables.Warranty, v.Warranty.Details, locale)
		}

		if v.Description != "" {
			lt.Description = v.Description
		} else {
			lt.Description = e.synthesizeDescription(v, locale)
		}

		v.Multilingual[locale] = lt
	}
}

// lookup resolves a table entry case-insensitively; on miss the raw value is
// its own translation (identity fallback).
func lookup(table map[string]localized, value, locale string) string {
	if value == "" {
		return ""
	}
	if l, ok := table[value]; ok {
		return l.forLocale(locale)
	}
	for key, l := range table {
		if strings.EqualFold(key, value) {
			return l.forLocale(locale)
		}
	}
	return value
}

// translateFeatures maps equipment tokens through the feature vocabulary via
// substring containment; unmatched tokens pass through unchanged.
func (e *Enricher) translateFeatures(equipment []string, locale string) []string {
	if len(equipment) == 0 {
		return nil
	}
	out := make([]string, 0, len(equipment))
	for _, token := range equipment {
		out = append(out, e.translateFeature(token, locale))
	}
	return out
}

func (e *Enricher) translateFeature(token, locale string) string {
	if l, ok := e.tables.Features[token]; ok {
		return l.forLocale(locale)
	}
	lower := strings.ToLower(token)
	for key, l := range e.tables.Features {
		if strings.Contains(lower, strings.ToLower(key)) {
			return l.forLocale(locale)
		}
	}
	return token
}

// synthesizeDescription builds a short per-locale sales text when the source
// page carries no description.
func (e *Enricher) synthesizeDescription(v *models.Vehicle, locale string) string {
	name := strings.TrimSpace(v.Brand + " " + v.Model)
	if name == "" {
		name = v.Title
	}
	condition := lookup(e.tables.Condition, v.Condition, locale)

	switch locale {
	case "fr":
		if v.Year > 0 {
			return fmt.Sprintf("%s (%s), année %d. Contactez-nous pour organiser un essai.", name, condition, v.Year)
		}
		return fmt.Sprintf("%s (%s). Contactez-nous pour organiser un essai.", name, condition)
	case "en":
		if v.Year > 0 {
			return fmt.Sprintf("%s (%s), model year %d. Contact us to arrange a test drive.", name, condition, v.Year)
		}
		return fmt.Sprintf("%s (%s). Contact us to arrange a test drive.", name, condition)
	default:
		if v.Year > 0 {
			return fmt.Sprintf("%s (%s), Jahrgang %d. Vereinbaren Sie noch heute eine Probefahrt.", name, condition, v.Year)
		}
		return fmt.Sprintf("%s (%s). Vereinbaren Sie noch heute eine Probefahrt.", name, condition)
	}
}
