package advisory

import "strconv"

const (
	acidicPHMax      = 6.0
	neutralPHMax     = 7.5
	wheatNitrogenMin = 100
	maizeRainfallMin = 120.0
	cottonTempMin    = 30.0
	cottonPotashMin  = 50

	rainWindowDays     = 3
	rainDelayThreshold = 15.0
	heatTempMin        = 32.0
	dryHumidityMax     = 50.0
)

// RecommendCrop walks a fixed decision list; the first matching rule wins.
func RecommendCrop(soil SoilReading, weather WeatherSample) Crop {
	switch {
	case soil.PH < acidicPHMax:
		return Rice
	case soil.Nitrogen > wheatNitrogenMin && soil.PH >= acidicPHMax && soil.PH <= neutralPHMax:
		return Wheat
	case weather.Rainfall > maizeRainfallMin:
		return Maize
	case weather.Temperature > cottonTempMin && soil.Potassium > cottonPotashMin:
		return Cotton
	default:
		return Pulses
	}
}

// RainNext3 sums rainfall over the last three samples of forecast, or fewer when shorter.
func RainNext3(forecast []WeatherSample) float64 {
	start := len(forecast) - rainWindowDays
	if start < 0 {
		start = 0
	}
	var total float64
	for _, s := range forecast[start:] {
		total += s.Rainfall
	}
	return total
}

// IrrigationAdvice checks excess rain before heat stress.
func (e *Engine) IrrigationAdvice(crop Crop, forecast []WeatherSample, lang LanguageCode) string {
	msgs := e.table.Locale(lang).Messages
	if len(forecast) == 0 {
		return msgs.NoForecast
	}

	rain := RainNext3(forecast)
	if rain > rainDelayThreshold {
		return render(msgs.IrrigationDelay, "crop", crop.String(), "rain", strconv.FormatFloat(rain, 'f', 1, 64))
	}

	latest := forecast[len(forecast)-1]
	if latest.Temperature > heatTempMin && latest.Humidity < dryHumidityMax {
		return render(msgs.IrrigationSoon, "crop", crop.String())
	}
	return render(msgs.IrrigationRoutine, "crop", crop.String())
}

// NutrientAdvice formats the four soil values into the localized sentence.
func (e *Engine) NutrientAdvice(soil SoilReading, lang LanguageCode) string {
	msgs := e.table.Locale(lang).Messages
	return render(msgs.Nutrients,
		"n", strconv.Itoa(soil.Nitrogen),
		"p", strconv.Itoa(soil.Phosphorus),
		"k", strconv.Itoa(soil.Potassium),
		"ph", formatNumber(soil.PH),
	)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
