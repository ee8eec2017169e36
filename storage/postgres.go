package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"vehicle-scraper/models"
)

// vehicleColumns is the insert column list; keep in sync with insertBatch
// and scanVehicle.
const vehicleColumns = `id, category, title, brand, model, year, year_low_confidence,
	price, mileage, fuel, transmission, power, body_type, color, condition,
	images, description, equipment, warranty_details, warranty_months,
	mfk, location, dealer, multilingual, scraped_at`

const columnsPerVehicle = 25

// PostgresStore persists vehicles to PostgreSQL with replace-sync semantics.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS vehicles (
			id                  TEXT PRIMARY KEY,
			category            VARCHAR(10) NOT NULL,
			title               TEXT        NOT NULL DEFAULT '',
			brand               TEXT        NOT NULL DEFAULT '',
			model               TEXT        NOT NULL DEFAULT '',
			year                INT         NOT NULL DEFAULT 0,
			year_low_confidence BOOLEAN     NOT NULL DEFAULT FALSE,
			price               INT         NOT NULL DEFAULT 0,
			mileage             INT         NOT NULL DEFAULT 0,
			fuel                TEXT        NOT NULL DEFAULT '',
			transmission        TEXT        NOT NULL DEFAULT '',
			power               TEXT        NOT NULL DEFAULT '',
			body_type           TEXT        NOT NULL DEFAULT '',
			color               TEXT        NOT NULL DEFAULT '',
			condition           TEXT        NOT NULL DEFAULT 'used',
			images              JSONB       NOT NULL DEFAULT '[]',
			description         TEXT,
			equipment           JSONB       NOT NULL DEFAULT '[]',
			warranty_details    TEXT,
			warranty_months     INT         NOT NULL DEFAULT 0,
			mfk                 BOOLEAN     NOT NULL DEFAULT FALSE,
			location            TEXT        NOT NULL DEFAULT '',
			dealer              TEXT        NOT NULL DEFAULT '',
			multilingual        JSONB       NOT NULL DEFAULT '{}',
			scraped_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_vehicles_category ON vehicles(category);
		CREATE INDEX IF NOT EXISTS idx_vehicles_price    ON vehicles(price);
		CREATE INDEX IF NOT EXISTS idx_vehicles_brand    ON vehicles(brand);
	`)
	return err
}

// deleteCategory removes all persisted records of one category.
func (ps *PostgresStore) deleteCategory(category string) error {
	_, err := ps.db.Exec("DELETE FROM vehicles WHERE category = $1", category)
	if err != nil {
		return fmt.Errorf("postgres: delete category %q: %w", category, err)
	}
	return nil
}

// SyncCategory replaces the category's records with the fresh generation:
// delete first, then batch-insert. Syncing an empty set leaves the category
// empty, which is the intended replace semantics.
func (ps *PostgresStore) SyncCategory(category string, vehicles []*models.Vehicle) error {
	if err := ps.deleteCategory(category); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(vehicles); i += batchSize {
		end := i + batchSize
		if end > len(vehicles) {
			end = len(vehicles)
		}
		if err := ps.insertBatch(vehicles[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (ps *PostgresStore) insertBatch(batch []*models.Vehicle) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*columnsPerVehicle)

	for idx, v := range batch {
		base := idx * columnsPerVehicle
		placeholders := make([]string, columnsPerVehicle)
		for c := 0; c < columnsPerVehicle; c++ {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		images, err := json.Marshal(sliceOrEmpty(v.Images))
		if err != nil {
			return fmt.Errorf("postgres: marshal images of %s: %w", v.ID, err)
		}
		equipment, err := json.Marshal(sliceOrEmpty(v.Equipment))
		if err != nil {
			return fmt.Errorf("postgres: marshal equipment of %s: %w", v.ID, err)
		}
		multilingual, err := json.Marshal(v.Multilingual)
		if err != nil {
			return fmt.Errorf("postgres: marshal multilingual of %s: %w", v.ID, err)
		}

		warrantyDetails := sql.NullString{}
		warrantyMonths := 0
		if v.Warranty != nil {
			warrantyDetails = sql.NullString{String: v.Warranty.Details, Valid: true}
			warrantyMonths = v.Warranty.Months
		}

		valueArgs = append(valueArgs,
			v.ID, v.Category, v.Title, v.Brand, v.Model, v.Year, v.YearLowConfidence,
			v.Price, v.Mileage, v.Fuel, v.Transmission, v.Power, v.BodyType, v.Color, v.Condition,
			images, nullableString(v.Description), equipment, warrantyDetails, warrantyMonths,
			v.MFK, v.Location, v.Dealer, multilingual, v.ScrapedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO vehicles (%s)
		VALUES %s
		ON CONFLICT (id) DO NOTHING
	`, vehicleColumns, strings.Join(valueStrings, ","))

	if _, err := ps.db.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

// FetchAll retrieves all stored vehicles.
func (ps *PostgresStore) FetchAll() ([]*models.Vehicle, error) {
	return ps.query("SELECT " + vehicleColumns + " FROM vehicles ORDER BY id")
}

// FetchCategory retrieves all stored vehicles of one category.
func (ps *PostgresStore) FetchCategory(category string) ([]*models.Vehicle, error) {
	return ps.query("SELECT "+vehicleColumns+" FROM vehicles WHERE category = $1 ORDER BY id", category)
}

func (ps *PostgresStore) query(q string, args ...interface{}) ([]*models.Vehicle, error) {
	rows, err := ps.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func scanVehicle(rows *sql.Rows) (*models.Vehicle, error) {
	v := &models.Vehicle{}
	var (
		images, equipment, multilingual []byte
		description, warrantyDetails    sql.NullString
		warrantyMonths                  int
	)

	if err := rows.Scan(
		&v.ID, &v.Category, &v.Title, &v.Brand, &v.Model, &v.Year, &v.YearLowConfidence,
		&v.Price, &v.Mileage, &v.Fuel, &v.Transmission, &v.Power, &v.BodyType, &v.Color, &v.Condition,
		&images, &description, &equipment, &warrantyDetails, &warrantyMonths,
		&v.MFK, &v.Location, &v.Dealer, &multilingual, &v.ScrapedAt,
	); err != nil {
		return nil, fmt.Errorf("postgres: scan row: %w", err)
	}

	v.Description = description.String
	if warrantyDetails.Valid {
		v.Warranty = &models.Warranty{Details: warrantyDetails.String, Months: warrantyMonths}
	}
	if err := json.Unmarshal(images, &v.Images); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal images of %s: %w", v.ID, err)
	}
	if err := json.Unmarshal(equipment, &v.Equipment); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal equipment of %s: %w", v.ID, err)
	}
	if err := json.Unmarshal(multilingual, &v.Multilingual); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal multilingual of %s: %w", v.ID, err)
	}
	return v, nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

func sliceOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
