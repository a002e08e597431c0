package intent

import "strings"

// Intent is the classified purpose of a free-text farmer query.
type Intent string

const (
	Irrigation Intent = "irrigation"
	Price      Intent = "price"
	Weather    Intent = "weather"
	Soil       Intent = "soil"
	Unknown    Intent = "unknown"
)

// All lists every intent, including Unknown, in classification order.
func All() []Intent {
	return []Intent{Irrigation, Price, Weather, Soil, Unknown}
}

// Parse maps a raw label back to an Intent. Unrecognized labels report false.
func Parse(raw string) (Intent, bool) {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case Irrigation:
		return Irrigation, true
	case Price:
		return Price, true
	case Weather:
		return Weather, true
	case Soil:
		return Soil, true
	case Unknown:
		return Unknown, true
	default:
		return "", false
	}
}

type bucket struct {
	intent   Intent
	keywords []string
}

// Buckets are evaluated in order and the first match wins, so a query that
// mentions both water and price resolves to Irrigation.
var keywordBuckets = []bucket{
	{
		intent: Irrigation,
		keywords: []string{
			"irrigation", "irrigate", "water", "watering", "sprinkler",
			"ਸਿੰਚਾਈ", "ਪਾਣੀ",
		},
	},
	{
		intent: Price,
		keywords: []string{
			"price", "mandi", "market", "msp", "sell",
			"ਭਾਅ", "ਮੰਡੀ", "ਕੀਮਤ",
		},
	},
	{
		intent: Weather,
		keywords: []string{
			"weather", "rain", "temperature", "humidity", "forecast",
			"ਮੌਸਮ", "ਮੀਂਹ", "ਤਾਪਮਾਨ",
		},
	},
	{
		intent: Soil,
		keywords: []string{
			"soil", "fertilizer", "fertiliser", "nutrient", "npk", "nitrogen",
			"ਮਿੱਟੀ", "ਖਾਦ",
		},
	},
}

// Classify returns the first intent whose keyword set has a substring in the
// lowercased query, or Unknown when nothing matches.
func Classify(query string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return Unknown
	}

	for _, b := range keywordBuckets {
		for _, word := range b.keywords {
			if word == "" {
				continue
			}
			if strings.Contains(normalized, strings.ToLower(word)) {
				return b.intent
			}
		}
	}
	return Unknown
}

// Keywords returns a copy of the keyword set configured for in.
func Keywords(in Intent) []string {
	for _, b := range keywordBuckets {
		if b.intent == in {
			return append([]string(nil), b.keywords...)
		}
	}
	return nil
}
