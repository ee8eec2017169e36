package services

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"vehicle-scraper/models"
	"vehicle-scraper/utils"
)

// Documented defaults substituted when a field is absent or implausible.
const (
	DefaultFuel         = "Benzin"
	DefaultTransmission = "Schaltgetriebe"
	DefaultCondition    = "used"
)

var (
	digitRunRe = regexp.MustCompile(`\d+`)
	// fourDigitYearRe captures a plausible model year embedded in free text.
	fourDigitYearRe = regexp.MustCompile(`\b(19[0-9]{2}|20[0-9]{2})\b`)
	// monthYearRe matches the portal's MM.YYYY registration date format.
	monthYearRe = regexp.MustCompile(`\b([0-9]{1,2})\.([0-9]{4})\b`)
	tagRe       = regexp.MustCompile(`<[^>]*>`)
)

// knownBrands is used to split a detail-page title into brand and model.
// Canonical casing; longest names first so "Harley-Davidson" wins over a
// would-be "Harley" prefix.
var knownBrands = []string{
	"Harley-Davidson", "Moto Guzzi", "Royal Enfield", "MV Agusta",
	"Mercedes-Benz", "Alfa Romeo", "Land Rover",
	"Kawasaki", "Yamaha", "Suzuki", "Honda", "Ducati", "Triumph", "Aprilia",
	"Piaggio", "Vespa", "KTM", "BMW", "Husqvarna", "Kymco", "SYM",
	"Volkswagen", "Toyota", "Renault", "Peugeot", "Citroën", "Skoda", "Seat",
	"Opel", "Ford", "Fiat", "Audi", "Volvo", "Mazda", "Nissan", "Hyundai",
	"Kia", "Dacia", "Subaru", "Mitsubishi", "Mini", "Smart", "Tesla", "VW",
}

// Normalizer converts raw extracted tokens into a typed Vehicle. Multilingual
// fields are populated later by the Enricher.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger.WithComponent("normalize")}
}

// Normalize builds a fresh Vehicle from one detail-page extraction. Fields
// that are absent or out of range get their documented default; nothing here
// aborts the run.
func (n *Normalizer) Normalize(category string, res models.DetailResult) *models.Vehicle {
	raw := res.Raw

	title := NormalizeText(rawOr(raw, models.FieldTitle, ""))
	brand, model := splitBrandModel(title)

	year, lowConfidence := n.normalizeYear(title, rawOr(raw, models.FieldFirstRegistration, ""))
	if lowConfidence {
		n.logger.Warn("%s-%s: low-confidence year %d from %q — flagged for review",
			category, res.Ref.ID, year, rawOr(raw, models.FieldFirstRegistration, ""))
	}

	v := &models.Vehicle{
		ID:                category + "-" + res.Ref.ID,
		Category:          category,
		Title:             title,
		Brand:             brand,
		Model:             model,
		Year:              year,
		YearLowConfidence: lowConfidence,
		Price:             n.normalizePrice(rawOr(raw, models.FieldPrice, "")),
		Mileage:           n.normalizeMileage(rawOr(raw, models.FieldMileage, "")),
		Fuel:              mapFuel(rawOr(raw, models.FieldFuel, "")),
		Transmission:      mapTransmission(rawOr(raw, models.FieldTransmission, "")),
		Power:             NormalizeText(rawOr(raw, models.FieldPower, "")),
		BodyType:          NormalizeText(rawOr(raw, models.FieldBodyType, "")),
		Color:             NormalizeText(rawOr(raw, models.FieldColor, "")),
		Condition:         mapCondition(rawOr(raw, models.FieldCondition, "")),
		Images:            raw.Images,
		Description:       NormalizeText(rawOr(raw, models.FieldDescription, "")),
		Equipment:         normalizeEquipment(raw.Equipment),
		Location:          NormalizeText(rawOr(raw, models.FieldLocation, "")),
		Dealer:            NormalizeText(rawOr(raw, models.FieldDealer, "")),
		ScrapedAt:         time.Now(),
	}

	if _, ok := raw.Get(models.FieldMFK); ok {
		v.MFK = true
	}

	if details, ok := raw.Get(models.FieldWarranty); ok {
		w := &models.Warranty{Details: NormalizeText(details)}
		if months, ok := raw.Get(models.FieldWarrantyMonths); ok {
			if m, ok := ParseSwissInt(months); ok && m > 0 && m <= 60 {
				w.Months = m
			}
		}
		v.Warranty = w
	}

	return v
}

// ParseSwissInt decodes HTML entities, strips the Swiss apostrophe thousands
// separator and parses the remaining digit run ("16&#x27;500" -> 16500).
func ParseSwissInt(s string) (int, bool) {
	s = html.UnescapeString(s)
	s = strings.NewReplacer("'", "", "’", "", "`", "", " ", "").Replace(s)
	m := digitRunRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (n *Normalizer) normalizePrice(raw string) int {
	p, ok := ParseSwissInt(raw)
	if !ok || p < 100 {
		return 0
	}
	return p
}

func (n *Normalizer) normalizeMileage(raw string) int {
	m, ok := ParseSwissInt(raw)
	if !ok || m < 0 || m > 999999 {
		return 0
	}
	return m
}

// normalizeYear resolves the model year. Titles reliably embed a 4-digit
// year, so that wins. Next comes a literal MM.YYYY registration date, then a
// bare 4-digit year. As a last resort a corrupted date ("14.1217") is
// repaired by reinterpreting its trailing digits as a 2000s year; such a
// result is flagged low-confidence rather than silently trusted.
func (n *Normalizer) normalizeYear(title, rawDate string) (int, bool) {
	if m := fourDigitYearRe.FindString(title); m != "" {
		if y, _ := strconv.Atoi(m); yearPlausible(y) {
			return y, false
		}
	}

	rawDate = html.UnescapeString(rawDate)

	if m := monthYearRe.FindStringSubmatch(rawDate); m != nil {
		month, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 && yearPlausible(year) {
			return year, false
		}
	}

	if m := fourDigitYearRe.FindString(rawDate); m != "" {
		if y, _ := strconv.Atoi(m); yearPlausible(y) {
			return y, false
		}
	}

	// Corrupted-date repair: a month field bleeding into the year leaves the
	// real year's last two digits at the tail ("14.1217" -> 2017).
	digits := strings.Join(digitRunRe.FindAllString(rawDate, -1), "")
	if len(digits) >= 2 {
		tail, _ := strconv.Atoi(digits[len(digits)-2:])
		if y := 2000 + tail; yearPlausible(y) {
			return y, true
		}
	}

	return 0, true
}

func yearPlausible(y int) bool {
	return y >= 1990 && y <= time.Now().Year()+1
}

func mapFuel(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "diesel"):
		return "Diesel"
	case strings.Contains(lower, "elektr"):
		return "Elektro"
	case strings.Contains(lower, "hybrid"):
		return "Hybrid"
	case strings.Contains(lower, "erdgas"), strings.Contains(lower, "gas"):
		return "Erdgas"
	case strings.Contains(lower, "benzin"):
		return "Benzin"
	default:
		return DefaultFuel
	}
}

func mapTransmission(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "halbautomat"):
		return "Halbautomat"
	case strings.Contains(lower, "automat"):
		return "Automat"
	case strings.Contains(lower, "schalt"), strings.Contains(lower, "manuell"), strings.Contains(lower, "handschalt"):
		return "Schaltgetriebe"
	default:
		return DefaultTransmission
	}
}

func mapCondition(raw string) string {
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "neufahrzeug") || lower == "neu" {
		return "new"
	}
	return DefaultCondition
}

// splitBrandModel separates a title like "Yamaha MT-07 ABS" into brand and
// model using the known-brand list; unknown brands fall back to first word.
func splitBrandModel(title string) (string, string) {
	if title == "" {
		return "", ""
	}
	for _, brand := range knownBrands {
		if len(title) >= len(brand) && strings.EqualFold(title[:len(brand)], brand) {
			model := strings.Trim(strings.TrimSpace(title[len(brand):]), ",-– ")
			return brand, model
		}
	}
	fields := strings.Fields(title)
	if len(fields) == 1 {
		return fields[0], ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// NormalizeText decodes entities, strips markup and collapses whitespace.
func NormalizeText(s string) string {
	s = html.UnescapeString(s)
	s = tagRe.ReplaceAllString(s, " ")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

func normalizeEquipment(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = NormalizeText(it)
		if it == "" {
			continue
		}
		key := strings.ToLower(it)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

func rawOr(raw *models.RawExtraction, field, fallback string) string {
	if v, ok := raw.Get(field); ok {
		return v
	}
	return fallback
}
