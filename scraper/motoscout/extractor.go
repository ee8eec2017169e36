package motoscout

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"vehicle-scraper/models"
)

// Extractor applies the pattern catalog to one detail-page body. It never
// fails: a field whose chain yields no plausible match is left absent and the
// normalizer assigns the documented default.
type Extractor struct {
	chains map[string][]fieldPattern
}

// NewExtractor compiles the pattern catalog once.
func NewExtractor() *Extractor {
	return &Extractor{chains: fieldChains()}
}

// Extract runs every field chain against the body and collects equipment and
// gallery images.
func (e *Extractor) Extract(body string) *models.RawExtraction {
	raw := models.NewRawExtraction()

	for field, chain := range e.chains {
		if val, ok := firstPlausible(body, chain); ok {
			raw.Set(field, val)
		}
	}

	raw.Equipment = e.extractEquipment(body)
	raw.Images = e.extractImages(body)

	return raw
}

// firstPlausible evaluates a chain and returns the first match that passes
// its plausibility check.
func firstPlausible(body string, chain []fieldPattern) (string, bool) {
	for _, p := range chain {
		m := p.re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		val := m[0]
		if len(m) > 1 {
			val = m[1]
		}
		val = strings.TrimSpace(val)
		if val == "" {
			continue
		}
		if p.plausible != nil && !p.plausible(val) {
			continue
		}
		return val, true
	}
	return "", false
}

// extractEquipment locates the feature section by its heading and enumerates
// the list items under it. Without a heading it falls back to scanning the
// whole body for the fixed feature vocabulary.
func (e *Extractor) extractEquipment(body string) []string {
	var items []string
	seen := make(map[string]struct{})

	add := func(s string) {
		s = collapseWhitespace(stripTags(s))
		if s == "" || len(s) > 80 {
			return
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		items = append(items, s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err == nil {
		doc.Find("h2, h3, h4").Each(func(_ int, h *goquery.Selection) {
			heading := strings.TrimSpace(h.Text())
			if !isEquipmentHeading(heading) {
				return
			}
			h.NextAllFiltered("ul").First().Find("li").Each(func(_ int, li *goquery.Selection) {
				add(li.Text())
			})
			// Some templates nest the list in a wrapper next to the heading.
			if len(items) == 0 {
				h.Parent().Find("li").Each(func(_ int, li *goquery.Selection) {
					add(li.Text())
				})
			}
		})
	}

	if len(items) > 0 {
		return items
	}

	for _, kw := range featureKeywords {
		if strings.Contains(body, kw) {
			add(kw)
		}
	}
	return items
}

func isEquipmentHeading(heading string) bool {
	for _, h := range equipmentHeadings {
		if strings.Contains(heading, h) {
			return true
		}
	}
	return false
}

// extractImages collects gallery URLs, drops logo/icon/flag assets,
// deduplicates and caps the result.
func (e *Extractor) extractImages(body string) []string {
	var images []string
	seen := make(map[string]struct{})

	for _, re := range imagePatterns {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			url := m[0]
			if len(m) > 1 {
				url = m[1]
			}
			if !isVehicleImage(url) {
				continue
			}
			if _, dup := seen[url]; dup {
				continue
			}
			seen[url] = struct{}{}
			images = append(images, url)
			if len(images) >= maxImages {
				return images
			}
		}
	}
	return images
}

func isVehicleImage(url string) bool {
	lower := strings.ToLower(url)
	for _, ex := range imageExcludes {
		if strings.Contains(lower, ex) {
			return false
		}
	}
	return true
}
