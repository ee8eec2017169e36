package motoscout

import (
	"fmt"
	"strings"
	"testing"

	"vehicle-scraper/models"
)

const detailBody = `<!DOCTYPE html>
<html>
<head>
<title>Yamaha MT-07 ABS | Occasion</title>
<meta property="og:site_name" content="Moto Center Winterthur">
</head>
<body>
<h1>Yamaha MT-07 ABS</h1>
<span class="price">CHF 8'990.-</span>
<ul class="key-facts">
<li>Calendar icon05.2016</li>
<li>Road icon22'000 km</li>
<li>75 PS (55 kW)</li>
<li>Benzin</li>
<li>Schaltgetriebe</li>
<li>Occasion</li>
<li>ab MFK</li>
<li>Garantie: 12 Monate</li>
</ul>
<div class="description">Sehr gepflegte Maschine aus erster Hand, frisch ab grossem Service und bereit für die neue Saison.</div>
<h2>Ausstattung</h2>
<ul>
<li>Heizgriffe</li>
<li>Koffer</li>
<li>Heizgriffe</li>
</ul>
<p>Moto Center, 8400 Winterthur</p>
<img src="https://images.dealer-cdn.ch/vehicles/123456/front.jpg">
<img src="https://images.dealer-cdn.ch/vehicles/123456/front.jpg">
<img src="https://images.dealer-cdn.ch/vehicles/123456/side.jpg">
<img src="https://images.dealer-cdn.ch/assets/logo.png">
<img src="https://images.dealer-cdn.ch/assets/flag-de.png">
</body>
</html>`

func TestExtractDetailPage(t *testing.T) {
	e := NewExtractor()
	raw := e.Extract(detailBody)

	tests := []struct {
		field string
		want  string
	}{
		{models.FieldTitle, "Yamaha MT-07 ABS"},
		{models.FieldPrice, "8'990"},
		{models.FieldFirstRegistration, "05.2016"},
		{models.FieldMileage, "22'000"},
		{models.FieldPower, "75 PS (55 kW)"},
		{models.FieldFuel, "Benzin"},
		{models.FieldTransmission, "Schaltgetriebe"},
		{models.FieldCondition, "Occasion"},
		{models.FieldLocation, "8400 Winterthur"},
		{models.FieldDealer, "Moto Center Winterthur"},
	}

	for _, tt := range tests {
		got, ok := raw.Get(tt.field)
		if !ok {
			t.Errorf("field %s: not extracted", tt.field)
			continue
		}
		if got != tt.want {
			t.Errorf("field %s: got %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestExtractDescription(t *testing.T) {
	e := NewExtractor()
	raw := e.Extract(detailBody)

	desc, ok := raw.Get(models.FieldDescription)
	if !ok {
		t.Fatal("description not extracted")
	}
	if !strings.Contains(desc, "gepflegte Maschine") {
		t.Errorf("description: got %q", desc)
	}
}

func TestExtractDescriptionRejectsMarkupJunk(t *testing.T) {
	e := NewExtractor()
	body := `<html><body>
<div class="description">.css-1x2y3z { color: rgba(0,0,0,0.5) } more tokens follow here to reach the word count</div>
</body></html>`

	raw := e.Extract(body)
	if desc, ok := raw.Get(models.FieldDescription); ok {
		t.Errorf("CSS fragment accepted as description: %q", desc)
	}
}

func TestExtractDescriptionRejectsShortText(t *testing.T) {
	e := NewExtractor()
	body := `<html><body><div class="description">Zu kurz.</div></body></html>`

	raw := e.Extract(body)
	if desc, ok := raw.Get(models.FieldDescription); ok {
		t.Errorf("short text accepted as description: %q", desc)
	}
}

func TestExtractEquipmentFromSection(t *testing.T) {
	e := NewExtractor()
	raw := e.Extract(detailBody)

	if len(raw.Equipment) != 2 {
		t.Fatalf("equipment: got %v, want 2 deduplicated items", raw.Equipment)
	}
	if raw.Equipment[0] != "Heizgriffe" || raw.Equipment[1] != "Koffer" {
		t.Errorf("equipment: got %v", raw.Equipment)
	}
}

func TestExtractEquipmentVocabularyFallback(t *testing.T) {
	e := NewExtractor()
	body := `<html><body><p>Schönes Bike mit ABS und Heizgriffe montiert.</p></body></html>`

	raw := e.Extract(body)
	if len(raw.Equipment) != 2 {
		t.Fatalf("fallback equipment: got %v, want [ABS Heizgriffe]", raw.Equipment)
	}
}

func TestExtractImagesFiltersAndDedupes(t *testing.T) {
	e := NewExtractor()
	raw := e.Extract(detailBody)

	if len(raw.Images) != 2 {
		t.Fatalf("images: got %v, want 2 vehicle photos", raw.Images)
	}
	for _, img := range raw.Images {
		if strings.Contains(img, "logo") || strings.Contains(img, "flag") {
			t.Errorf("asset image not filtered: %s", img)
		}
	}
}

func TestExtractImagesCapped(t *testing.T) {
	e := NewExtractor()

	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, `<img src="https://images.dealer-cdn.ch/vehicles/1/photo-%d.jpg">`, i)
	}
	sb.WriteString("</body></html>")

	raw := e.Extract(sb.String())
	if len(raw.Images) != maxImages {
		t.Errorf("images: got %d, want cap of %d", len(raw.Images), maxImages)
	}
}

func TestExtractMissingFieldsStayAbsent(t *testing.T) {
	e := NewExtractor()
	raw := e.Extract("<html><body><p>Leere Seite</p></body></html>")

	for _, field := range []string{models.FieldPrice, models.FieldMileage, models.FieldFirstRegistration} {
		if v, ok := raw.Get(field); ok {
			t.Errorf("field %s: expected absent, got %q", field, v)
		}
	}
}

func TestFirstPlausibleSkipsImplausibleMatches(t *testing.T) {
	e := NewExtractor()
	// 99 fails the price minimum; the chain must not fall through to it.
	raw := e.Extract("<html><body><span>CHF 99</span></body></html>")

	if v, ok := raw.Get(models.FieldPrice); ok {
		t.Errorf("implausible price accepted: %q", v)
	}
}
