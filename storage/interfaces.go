package storage

import "vehicle-scraper/models"

// VehicleStore is the narrow contract the pipeline holds against the
// persistent store: replace one category wholesale, read everything back.
type VehicleStore interface {
	// SyncCategory replaces all records of the category with the given set.
	// Deleting then inserting is one logical operation for the caller; if the
	// insert fails the category is left empty rather than duplicated.
	SyncCategory(category string, vehicles []*models.Vehicle) error
	FetchAll() ([]*models.Vehicle, error)
	FetchCategory(category string) ([]*models.Vehicle, error)
	Close() error
}

// RawExtractionWriter persists unprocessed extractions for debugging.
type RawExtractionWriter interface {
	WriteRaw(results []models.DetailResult) error
	Close() error
}
