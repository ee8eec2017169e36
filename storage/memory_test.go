package storage

import (
	"testing"

	"vehicle-scraper/models"
)

func bike(id string, price int) *models.Vehicle {
	return &models.Vehicle{ID: "bike-" + id, Category: models.CategoryBike, Price: price}
}

func car(id string, price int) *models.Vehicle {
	return &models.Vehicle{ID: "car-" + id, Category: models.CategoryCar, Price: price}
}

func TestMemoryStoreReplaceSemantics(t *testing.T) {
	ms := NewMemoryStore()

	if err := ms.SyncCategory(models.CategoryBike, []*models.Vehicle{bike("111", 8990), bike("222", 4500)}); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if err := ms.SyncCategory(models.CategoryBike, []*models.Vehicle{bike("333", 12500)}); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	got, err := ms.FetchCategory(models.CategoryBike)
	if err != nil {
		t.Fatalf("FetchCategory: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("after replace: got %d vehicles, want 1", len(got))
	}
	if got[0].ID != "bike-333" {
		t.Errorf("surviving id: got %q, want %q", got[0].ID, "bike-333")
	}
}

func TestMemoryStoreEmptySyncClearsCategory(t *testing.T) {
	ms := NewMemoryStore()

	if err := ms.SyncCategory(models.CategoryBike, []*models.Vehicle{bike("111", 8990)}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if err := ms.SyncCategory(models.CategoryBike, nil); err != nil {
		t.Fatalf("empty sync: %v", err)
	}

	got, err := ms.FetchCategory(models.CategoryBike)
	if err != nil {
		t.Fatalf("FetchCategory: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("after empty sync: got %d vehicles, want 0", len(got))
	}
}

func TestMemoryStoreCategoriesAreIndependent(t *testing.T) {
	ms := NewMemoryStore()

	if err := ms.SyncCategory(models.CategoryBike, []*models.Vehicle{bike("111", 8990)}); err != nil {
		t.Fatalf("bike sync: %v", err)
	}
	if err := ms.SyncCategory(models.CategoryCar, []*models.Vehicle{car("900", 24900), car("901", 15500)}); err != nil {
		t.Fatalf("car sync: %v", err)
	}
	if err := ms.SyncCategory(models.CategoryBike, []*models.Vehicle{bike("444", 6200)}); err != nil {
		t.Fatalf("bike re-sync: %v", err)
	}

	cars, err := ms.FetchCategory(models.CategoryCar)
	if err != nil {
		t.Fatalf("FetchCategory car: %v", err)
	}
	if len(cars) != 2 {
		t.Errorf("cars after bike re-sync: got %d, want 2", len(cars))
	}

	all, err := ms.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("FetchAll: got %d vehicles, want 3", len(all))
	}
	wantOrder := []string{"bike-444", "car-900", "car-901"}
	for i, want := range wantOrder {
		if all[i].ID != want {
			t.Errorf("FetchAll[%d]: got %q, want %q", i, all[i].ID, want)
		}
	}
}
