package motoscout

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"vehicle-scraper/models"
)

// fieldPattern is one candidate pattern for a logical field. Chains are tried
// in order; the first match that passes the plausibility check wins and the
// remaining candidates are skipped.
type fieldPattern struct {
	re        *regexp.Regexp
	plausible func(string) bool
}

const maxImages = 20

var digitRunRe = regexp.MustCompile(`\d+`)

// swissDigits decodes HTML entities, strips the Swiss apostrophe thousands
// separator and parses the leading digit run ("16&#x27;500" -> 16500). It
// applies the same decoding as services.ParseSwissInt so the plausibility
// gates agree with the values the normalizer produces.
func swissDigits(s string) (int, bool) {
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

func plausiblePrice(s string) bool {
	n, ok := swissDigits(s)
	return ok && n >= 100
}

func plausibleMileage(s string) bool {
	n, ok := swissDigits(s)
	return ok && n >= 0 && n <= 999999
}

func plausibleYear(s string) bool {
	n, ok := swissDigits(s)
	return ok && n >= 1990 && n <= time.Now().Year()+1
}

func plausibleTitle(s string) bool {
	s = strings.TrimSpace(stripTags(s))
	return len(s) >= 3 && len(s) <= 200
}

func anyValue(string) bool { return true }

var tagRe = regexp.MustCompile(`<[^>]*>`)

func stripTags(s string) string {
	return tagRe.ReplaceAllString(s, " ")
}

// junkTokens mark CSS/JSON/markup fragments that the generic description
// patterns are prone to capture instead of human-written text.
var junkTokens = []string{
	"css-", "rgba(", "rgb(", "DOCTYPE", "href=", "http://", "https://",
	"function(", "window.", "{\"", "!important",
}

// plausibleDescription accepts only text that looks human-written: bounded
// length, a minimum word count and none of the markup/style junk tokens.
func plausibleDescription(s string) bool {
	text := strings.TrimSpace(collapseWhitespace(stripTags(s)))
	if len(text) < 40 || len(text) > 2000 {
		return false
	}
	if len(strings.Fields(text)) < 8 {
		return false
	}
	for _, tok := range junkTokens {
		if strings.Contains(s, tok) {
			return false
		}
	}
	return true
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// fieldChains is the declarative pattern catalog, one ordered chain per
// logical field. Most patterns mirror the portal's German detail markup;
// the icon-prefixed variants cover pages where the icon's alt text bleeds
// into the value ("Calendar icon05.2016").
func fieldChains() map[string][]fieldPattern {
	return map[string][]fieldPattern{
		models.FieldTitle: {
			{re: regexp.MustCompile(`(?s)<h1[^>]*>(.*?)</h1>`), plausible: plausibleTitle},
			{re: regexp.MustCompile(`<meta property="og:title" content="([^"]+)"`), plausible: plausibleTitle},
			{re: regexp.MustCompile(`(?s)<title>(.*?)</title>`), plausible: plausibleTitle},
		},
		models.FieldPrice: {
			{re: regexp.MustCompile(`CHF\s*([0-9][0-9'’&#x;]*[0-9]|[0-9]{3,})`), plausible: plausiblePrice},
			{re: regexp.MustCompile(`"price"\s*:\s*"?([0-9]+)`), plausible: plausiblePrice},
			{re: regexp.MustCompile(`Preis[^0-9]{0,20}([0-9][0-9'’&#x;]*[0-9])`), plausible: plausiblePrice},
			{re: regexp.MustCompile(`([0-9][0-9'’]{2,}[0-9])\.(?:--|-|–)`), plausible: plausiblePrice},
		},
		models.FieldFirstRegistration: {
			{re: regexp.MustCompile(`Calendar icon([0-9]{2}\.[0-9]{4})`), plausible: anyValue},
			{re: regexp.MustCompile(`Inverkehrsetzung[^0-9]{0,40}([0-9]{2}\.[0-9]{4})`), plausible: anyValue},
			{re: regexp.MustCompile(`\b([0-9]{2}\.[0-9]{4})\b`), plausible: anyValue},
			{re: regexp.MustCompile(`\b(19[0-9]{2}|20[0-9]{2})\b`), plausible: plausibleYear},
		},
		models.FieldMileage: {
			{re: regexp.MustCompile(`Road icon([0-9][0-9'’&#x;]*)\s*km`), plausible: plausibleMileage},
			{re: regexp.MustCompile(`Kilometerstand[^0-9]{0,40}([0-9][0-9'’&#x;]*)`), plausible: plausibleMileage},
			{re: regexp.MustCompile(`([0-9][0-9'’&#x;]*[0-9]|[0-9])\s*km\b`), plausible: plausibleMileage},
		},
		models.FieldPower: {
			{re: regexp.MustCompile(`([0-9]{1,3}\s*PS\s*\([0-9]{1,3}\s*kW\))`), plausible: anyValue},
			{re: regexp.MustCompile(`([0-9]{1,3}\s*PS)\b`), plausible: anyValue},
			{re: regexp.MustCompile(`([0-9]{1,3}\s*kW)\b`), plausible: anyValue},
		},
		models.FieldFuel: {
			{re: regexp.MustCompile(`(Benzin|Diesel|Elektro|Elektrisch|Hybrid|Erdgas)`), plausible: anyValue},
		},
		models.FieldTransmission: {
			{re: regexp.MustCompile(`(Schaltgetriebe|Handschaltung|Halbautomat[a-z]*|Automat(?:ik|isiert)?)`), plausible: anyValue},
		},
		models.FieldBodyType: {
			{re: regexp.MustCompile(`(Supersport|Naked|Enduro|Chopper|Cruiser|Touring|Roller|Scooter|Limousine|Kombi|SUV|Coupé|Coupe|Cabriolet|Kleinwagen)`), plausible: anyValue},
		},
		models.FieldColor: {
			{re: regexp.MustCompile(`(?:Aussenfarbe|Farbe)[^A-Za-zÄÖÜäöü]{0,40}([A-Za-zÄÖÜäöüé]+)`), plausible: anyValue},
		},
		models.FieldCondition: {
			{re: regexp.MustCompile(`(Neufahrzeug|Vorführmodell|Occasion|Gebraucht)`), plausible: anyValue},
		},
		models.FieldMFK: {
			{re: regexp.MustCompile(`(ab\s+MFK|letzte\s+MFK|MFK[- ]gepr[üu]ft)`), plausible: anyValue},
		},
		models.FieldWarranty: {
			{re: regexp.MustCompile(`Garantie[:\s]{0,3}([^<>\n]{3,120})`), plausible: anyValue},
			{re: regexp.MustCompile(`(Ab\s+(?:MFK|Platz)[^<>\n]{0,80})`), plausible: anyValue},
		},
		models.FieldWarrantyMonths: {
			{re: regexp.MustCompile(`([0-9]{1,2})\s*Monate[^<\n]{0,30}Garantie`), plausible: anyValue},
			{re: regexp.MustCompile(`Garantie[^0-9<]{0,30}([0-9]{1,2})\s*Monate`), plausible: anyValue},
		},
		models.FieldLocation: {
			{re: regexp.MustCompile(`\b([1-9][0-9]{3}\s+[A-ZÄÖÜ][A-Za-zÄÖÜäöüé.-]+)\b`), plausible: anyValue},
		},
		models.FieldDealer: {
			{re: regexp.MustCompile(`<meta property="og:site_name" content="([^"]+)"`), plausible: anyValue},
			{re: regexp.MustCompile(`"dealer(?:Name)?"\s*:\s*"([^"]+)"`), plausible: anyValue},
			{re: regexp.MustCompile(`H[äa]ndler[^<]{0,20}<[^>]*>([^<]{3,60})<`), plausible: anyValue},
		},
		models.FieldDescription: {
			{re: regexp.MustCompile(`(?s)<div[^>]*class="[^"]*(?:description|beschreibung)[^"]*"[^>]*>(.*?)</div>`), plausible: plausibleDescription},
			{re: regexp.MustCompile(`(?s)Beschreibung\s*</h[1-4]>(.*?)<h[1-4]`), plausible: plausibleDescription},
			{re: regexp.MustCompile(`<meta name="description" content="([^"]{40,})"`), plausible: plausibleDescription},
			{re: regexp.MustCompile(`(?s)<p[^>]*>(.*?)</p>`), plausible: plausibleDescription},
		},
	}
}

// imagePatterns match gallery URLs anchored to known image-hosting paths.
var imagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`https://[a-z0-9.-]*(?:img|image|static|cdn)[a-z0-9.-]*/[^\s"'<>)\\]+\.(?:jpe?g|png|webp)`),
	regexp.MustCompile(`"(?:url|src)"\s*:\s*"(https://[^"]+\.(?:jpe?g|png|webp))"`),
	regexp.MustCompile(`src="(https://[^"]+\.(?:jpe?g|png|webp))"`),
}

// imageExcludes filter non-vehicle assets out of the gallery.
var imageExcludes = []string{
	"logo", "icon", "flag", "sprite", "placeholder", "favicon", "banner",
}

// equipmentHeadings delimit the feature section on a detail page.
var equipmentHeadings = []string{"Ausstattung", "Extras", "Zubehör", "Optionen"}

// featureKeywords is the fixed vocabulary searched across the whole body when
// no equipment section heading is present.
var featureKeywords = []string{
	"ABS", "Heizgriffe", "Koffer", "Topcase", "Windschild", "Sturzbügel",
	"Navigationssystem", "Klimaanlage", "Sitzheizung", "Tempomat",
	"Traktionskontrolle", "Ledersitze", "Anhängerkupplung", "Alufelgen",
	"Bluetooth", "Rückfahrkamera", "Start-Stopp", "Keyless",
}
