package advisory

import "github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/analysis/intent"

type composer func(e *Engine, ctx Context, lang LanguageCode) string

// composers must hold an entry for every value in intent.All().
var composers = map[intent.Intent]composer{
	intent.Irrigation: func(e *Engine, ctx Context, lang LanguageCode) string {
		return e.IrrigationAdvice(ctx.RecommendedCrop, ctx.Forecast, lang)
	},
	intent.Price:   composePrice,
	intent.Weather: composeWeather,
	intent.Soil: func(e *Engine, ctx Context, lang LanguageCode) string {
		return e.NutrientAdvice(ctx.Soil, lang)
	},
	intent.Unknown: func(e *Engine, _ Context, lang LanguageCode) string {
		return e.table.Locale(lang).Messages.Fallback
	},
}

// Compose turns a classified intent and its context into the localized reply.
// Values outside the known intent set get the fallback message.
func (e *Engine) Compose(in intent.Intent, ctx Context, lang LanguageCode) string {
	fn, ok := composers[in]
	if !ok {
		fn = composers[intent.Unknown]
	}
	return fn(e, ctx, lang)
}

func composePrice(e *Engine, ctx Context, lang LanguageCode) string {
	loc := e.table.Locale(lang)
	if ctx.Price == nil {
		return render(loc.Messages.PriceUnavailable,
			"crop", ctx.RecommendedCrop.String(),
			"label", loc.Labels.Price,
		)
	}
	return render(loc.Messages.Price,
		"crop", ctx.RecommendedCrop.String(),
		"label", loc.Labels.Price,
		"amount", "₹"+formatNumber(ctx.Price.Amount),
	)
}

func composeWeather(e *Engine, ctx Context, lang LanguageCode) string {
	msgs := e.table.Locale(lang).Messages
	return render(msgs.Weather,
		"temperature", formatNumber(ctx.Weather.Temperature),
		"humidity", formatNumber(ctx.Weather.Humidity),
		"rainfall", formatNumber(ctx.Weather.Rainfall),
	)
}
