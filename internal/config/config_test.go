package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "APP_ENV", "LOG_LEVEL", "SQLITE_PATH", "MQTT_ENABLED", "MQTT_PORT",
		"MQTT_TOPIC", "SUPPORTED_LANGUAGES", "DEFAULT_LANGUAGE", "DEFAULT_DISTRICT", "FORECAST_DAYS",
		"ARK_MODEL", "ARK_API_KEY", "INTENT_LLM_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if !cfg.App.Dev() || cfg.App.LogLevel != slog.LevelInfo {
		t.Fatalf("unexpected app config %+v", cfg.App)
	}
	if cfg.Store.Path != "data/advisory.db" {
		t.Fatalf("unexpected sqlite path %q", cfg.Store.Path)
	}
	if cfg.MQTT.Enabled || cfg.MQTT.Port != 1883 || cfg.MQTT.Topic != "farm/+/telemetry" {
		t.Fatalf("unexpected mqtt config %+v", cfg.MQTT)
	}
	if cfg.AI.Enabled() || cfg.AI.IntentLLMEnabled {
		t.Fatalf("ai should be disabled by default")
	}
	adv := cfg.Advisory
	if len(adv.Languages) != 2 || adv.Languages[0] != "en" || adv.Languages[1] != "pa" {
		t.Fatalf("unexpected languages %v", adv.Languages)
	}
	if adv.DefaultLanguage != "en" || adv.DefaultDistrict != "Ludhiana" || adv.ForecastDays != 6 {
		t.Fatalf("unexpected advisory config %+v", adv)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("MQTT_ENABLED", "true")
	t.Setenv("MQTT_PORT", "8883")
	t.Setenv("SUPPORTED_LANGUAGES", " PA , en ,")
	t.Setenv("DEFAULT_LANGUAGE", "pa")
	t.Setenv("FORECAST_DAYS", "3")
	t.Setenv("ARK_MODEL", "doubao")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("ARK_TEMPERATURE", "0.2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.App.Dev() || cfg.App.LogLevel != slog.LevelWarn {
		t.Fatalf("unexpected app config %+v", cfg.App)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Port != 8883 {
		t.Fatalf("unexpected mqtt config %+v", cfg.MQTT)
	}
	if got := cfg.Advisory.Languages; len(got) != 2 || got[0] != "pa" || got[1] != "en" {
		t.Fatalf("unexpected languages %v", got)
	}
	if cfg.Advisory.ForecastDays != 3 {
		t.Fatalf("unexpected forecast days %d", cfg.Advisory.ForecastDays)
	}
	if !cfg.AI.Enabled() || cfg.AI.Temperature == nil || *cfg.AI.Temperature != 0.2 {
		t.Fatalf("unexpected ai config %+v", cfg.AI)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":             "80 80",
		"APP_ENV":          "staging",
		"LOG_LEVEL":        "loud",
		"MQTT_PORT":        "70000",
		"MQTT_ENABLED":     "maybe",
		"FORECAST_DAYS":    "0",
		"DEFAULT_LANGUAGE": "hi",
		"ARK_MAX_TOKENS":   "many",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}
