// Package advisory holds the crop advisory rule engine and the chatbot reply
// composer. Every operation is a pure function of its arguments; the only
// shared value is the localization table, which is never mutated after load.
package advisory

import "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/analysis/intent"

// Engine binds the rule engine to a localization table.
type Engine struct {
	table *Table
}

// NewEngine returns an engine over table, or over the embedded table when nil.
func NewEngine(table *Table) *Engine {
	if table == nil {
		table = DefaultTable()
	}
	return &Engine{table: table}
}

// Table exposes the engine's localization table.
func (e *Engine) Table() *Table {
	return e.table
}

// RecommendCrop is the package-level decision list; it needs no locale.
func (e *Engine) RecommendCrop(soil SoilReading, weather WeatherSample) Crop {
	return RecommendCrop(soil, weather)
}

var defaultEngine = NewEngine(nil)

// IrrigationAdvice uses the embedded localization table.
func IrrigationAdvice(crop Crop, forecast []WeatherSample, lang LanguageCode) string {
	return defaultEngine.IrrigationAdvice(crop, forecast, lang)
}

// NutrientAdvice uses the embedded localization table.
func NutrientAdvice(soil SoilReading, lang LanguageCode) string {
	return defaultEngine.NutrientAdvice(soil, lang)
}

// Compose uses the embedded localization table.
func Compose(in intent.Intent, ctx Context, lang LanguageCode) string {
	return defaultEngine.Compose(in, ctx, lang)
}
