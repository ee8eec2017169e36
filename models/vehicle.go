package models

import "time"

// Vehicle categories. Each maps to a distinct numeric path segment on the
// source portal (see scraper/motoscout).
const (
	CategoryBike = "bike"
	CategoryCar  = "car"
)

// Supported locales for the multilingual representation.
var Locales = []string{"de", "fr", "en"}

// Logical field names used as RawExtraction keys.
const (
	FieldTitle             = "title"
	FieldPrice             = "price"
	FieldFirstRegistration = "first_registration"
	FieldMileage           = "mileage"
	FieldPower             = "power"
	FieldFuel              = "fuel"
	FieldTransmission      = "transmission"
	FieldBodyType          = "body_type"
	FieldColor             = "color"
	FieldCondition         = "condition"
	FieldDescription       = "description"
	FieldWarranty          = "warranty"
	FieldWarrantyMonths    = "warranty_months"
	FieldMFK               = "mfk"
	FieldLocation          = "location"
	FieldDealer            = "dealer"
)

// ListingRef points at one vehicle detail page discovered on a listing page.
type ListingRef struct {
	ID        string
	DetailURL string
}

// RawExtraction holds the best-matching raw string per logical field for one
// detail page, plus the two list-shaped extractions. Fields that exhausted
// their pattern chain without a plausible match are simply absent.
type RawExtraction struct {
	Fields    map[string]string
	Equipment []string
	Images    []string
}

// NewRawExtraction returns an empty extraction ready to be filled.
func NewRawExtraction() *RawExtraction {
	return &RawExtraction{Fields: make(map[string]string)}
}

// Get returns the raw value for a field and whether it was extracted.
func (r *RawExtraction) Get(field string) (string, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// Set stores the raw value for a field.
func (r *RawExtraction) Set(field, value string) {
	r.Fields[field] = value
}

// DetailResult pairs a listing reference with what was extracted from its
// detail page.
type DetailResult struct {
	Ref ListingRef
	Raw *RawExtraction
}

// Warranty holds the free-text warranty details and the parsed month count.
type Warranty struct {
	Details string
	Months  int
}

// LocalizedText is the per-locale rendering of the categorical fields plus
// the (possibly synthesized) description and translated feature list.
type LocalizedText struct {
	Brand        string   `json:"brand"`
	Fuel         string   `json:"fuel"`
	Transmission string   `json:"transmission"`
	BodyType     string   `json:"body_type"`
	Color        string   `json:"color"`
	Condition    string   `json:"condition"`
	Warranty     string   `json:"warranty,omitempty"`
	Description  string   `json:"description,omitempty"`
	Features     []string `json:"features,omitempty"`
}

// Vehicle is the canonical record written to the store. A fresh generation of
// Vehicles is built on every run; records are never mutated in place.
type Vehicle struct {
	ID                string
	Category          string
	Title             string
	Brand             string
	Model             string
	Year              int
	YearLowConfidence bool
	Price             int
	Mileage           int
	Fuel              string
	Transmission      string
	Power             string
	BodyType          string
	Color             string
	Condition         string
	Images            []string
	Description       string
	Equipment         []string
	Warranty          *Warranty
	MFK               bool
	Location          string
	Dealer            string
	Multilingual      map[string]*LocalizedText
	ScrapedAt         time.Time
}

// CategoryReport holds the computed summary over one synced category.
type CategoryReport struct {
	Category           string
	TotalVehicles      int
	AveragePrice       int
	MinPrice           int
	MaxPrice           int
	MostExpensive      *Vehicle
	VehiclesByBrand    map[string]int
	NewVehicles        int
	UsedVehicles       int
	LowConfidenceYears int
	WithDescription    int
}
