package advisory

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales.yaml
var embeddedLocales []byte

// ErrUnsupportedLanguage reports a language with no entry in the localization table.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Labels are the dashboard display strings.
type Labels struct {
	Title              string `yaml:"title" json:"title"`
	Description        string `yaml:"description" json:"description"`
	Weather            string `yaml:"weather" json:"weather"`
	Mandi              string `yaml:"mandi" json:"mandi"`
	Price              string `yaml:"price" json:"price"`
	CropRecommendation string `yaml:"crop_recommendation" json:"cropRecommendation"`
	Recommended        string `yaml:"recommended" json:"recommended"`
	Trend              string `yaml:"trend" json:"trend"`
	Chatbot            string `yaml:"chatbot" json:"chatbot"`
	Ask                string `yaml:"ask" json:"ask"`
	Voice              string `yaml:"voice" json:"voice"`
}

// Messages are the reply templates. Placeholders use the {name} form.
type Messages struct {
	NoForecast        string `yaml:"no_forecast"`
	IrrigationDelay   string `yaml:"irrigation_delay"`
	IrrigationSoon    string `yaml:"irrigation_soon"`
	IrrigationRoutine string `yaml:"irrigation_routine"`
	Nutrients         string `yaml:"nutrients"`
	Price             string `yaml:"price"`
	PriceUnavailable  string `yaml:"price_unavailable"`
	Weather           string `yaml:"weather"`
	Fallback          string `yaml:"fallback"`
}

// Locale is the full string set for one language.
type Locale struct {
	Name      string   `yaml:"name"`
	SpeechTag string   `yaml:"speech_tag"`
	Labels    Labels   `yaml:"labels"`
	Messages  Messages `yaml:"messages"`
}

// Table maps language codes to locales. It is read-only after loading.
type Table struct {
	locales  map[LanguageCode]Locale
	fallback LanguageCode
}

var defaultTable = mustLoadTable(embeddedLocales)

// DefaultTable returns the table compiled into the binary.
func DefaultTable() *Table {
	return defaultTable
}

func mustLoadTable(data []byte) *Table {
	table, err := LoadTable(data)
	if err != nil {
		panic(fmt.Sprintf("advisory: embedded locales: %v", err))
	}
	return table
}

// LoadTable parses a YAML localization table and checks that every language
// carries a complete label and template set.
func LoadTable(data []byte) (*Table, error) {
	raw := make(map[string]Locale)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse locales: %w", err)
	}

	table := &Table{
		locales:  make(map[LanguageCode]Locale, len(raw)),
		fallback: English,
	}
	for code, loc := range raw {
		lang := ParseLanguage(code)
		if lang == "" {
			return nil, fmt.Errorf("empty language code")
		}
		if problems := loc.validate(); len(problems) > 0 {
			return nil, fmt.Errorf("locale %s: %s", lang, strings.Join(problems, "; "))
		}
		table.locales[lang] = loc
	}

	if _, ok := table.locales[table.fallback]; !ok {
		return nil, fmt.Errorf("locale %s is required", table.fallback)
	}
	return table, nil
}

// Require fails when any of langs has no locale.
func (t *Table) Require(langs ...LanguageCode) error {
	var missing []string
	for _, lang := range langs {
		if _, ok := t.locales[lang]; !ok {
			missing = append(missing, string(lang))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedLanguage, strings.Join(missing, ", "))
	}
	return nil
}

// Supports reports whether lang has a locale.
func (t *Table) Supports(lang LanguageCode) bool {
	_, ok := t.locales[lang]
	return ok
}

// Languages returns the configured codes in sorted order.
func (t *Table) Languages() []LanguageCode {
	out := make([]LanguageCode, 0, len(t.locales))
	for lang := range t.locales {
		out = append(out, lang)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Languages is the set of codes a deployment serves. The first code is the
// default for requests that name none.
type Languages struct {
	codes   []LanguageCode
	allowed map[LanguageCode]bool
}

// NewLanguages builds the served set. With no codes only English is served.
func NewLanguages(codes ...LanguageCode) Languages {
	if len(codes) == 0 {
		codes = []LanguageCode{English}
	}
	l := Languages{allowed: make(map[LanguageCode]bool, len(codes))}
	for _, c := range codes {
		if !l.allowed[c] {
			l.allowed[c] = true
			l.codes = append(l.codes, c)
		}
	}
	return l
}

// Default returns the language used when a request names none.
func (l Languages) Default() LanguageCode {
	if len(l.codes) == 0 {
		return English
	}
	return l.codes[0]
}

// Codes returns the served codes, default first.
func (l Languages) Codes() []LanguageCode {
	if len(l.codes) == 0 {
		return []LanguageCode{English}
	}
	return append([]LanguageCode(nil), l.codes...)
}

// Resolve maps an empty code to the default and rejects codes outside the set.
func (l Languages) Resolve(lang LanguageCode) (LanguageCode, error) {
	if lang == "" {
		return l.Default(), nil
	}
	if len(l.codes) == 0 && lang == English {
		return lang, nil
	}
	if !l.allowed[lang] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	return lang, nil
}

// Locale returns the strings for lang. An unsupported code falls back to English;
// hosts are expected to have rejected it with Require at startup.
func (t *Table) Locale(lang LanguageCode) Locale {
	if loc, ok := t.locales[lang]; ok {
		return loc
	}
	return t.locales[t.fallback]
}

type templateField struct {
	name         string
	value        string
	placeholders []string
}

func (l Locale) templates() []templateField {
	m := l.Messages
	return []templateField{
		{"no_forecast", m.NoForecast, nil},
		{"irrigation_delay", m.IrrigationDelay, []string{"{crop}", "{rain}"}},
		{"irrigation_soon", m.IrrigationSoon, []string{"{crop}"}},
		{"irrigation_routine", m.IrrigationRoutine, []string{"{crop}"}},
		{"nutrients", m.Nutrients, []string{"{n}", "{p}", "{k}", "{ph}"}},
		{"price", m.Price, []string{"{crop}", "{amount}"}},
		{"price_unavailable", m.PriceUnavailable, []string{"{crop}"}},
		{"weather", m.Weather, []string{"{temperature}", "{humidity}", "{rainfall}"}},
		{"fallback", m.Fallback, nil},
	}
}

func (l Locale) validate() []string {
	var problems []string

	labels := map[string]string{
		"title":               l.Labels.Title,
		"description":         l.Labels.Description,
		"weather":             l.Labels.Weather,
		"mandi":               l.Labels.Mandi,
		"price":               l.Labels.Price,
		"crop_recommendation": l.Labels.CropRecommendation,
		"recommended":         l.Labels.Recommended,
		"trend":               l.Labels.Trend,
		"chatbot":             l.Labels.Chatbot,
		"ask":                 l.Labels.Ask,
		"voice":               l.Labels.Voice,
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.TrimSpace(labels[k]) == "" {
			problems = append(problems, "missing label "+k)
		}
	}

	for _, tmpl := range l.templates() {
		if strings.TrimSpace(tmpl.value) == "" {
			problems = append(problems, "missing message "+tmpl.name)
			continue
		}
		for _, p := range tmpl.placeholders {
			if !strings.Contains(tmpl.value, p) {
				problems = append(problems, fmt.Sprintf("message %s lacks %s", tmpl.name, p))
			}
		}
	}
	return problems
}

// render substitutes {key} placeholders. pairs alternate key, value.
func render(tmpl string, pairs ...string) string {
	args := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		args = append(args, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(args...).Replace(tmpl)
}
