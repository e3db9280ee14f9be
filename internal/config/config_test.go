package config

import "testing"

func TestLoadInferenceDefaults(t *testing.T) {
	t.Setenv("INFERENCE_TIMEOUT_SECONDS", "")
	t.Setenv("INFERENCE_SNIPPET_CHARS", "")
	t.Setenv("INFERENCE_RATE_PER_MINUTE", "")
	t.Setenv("CACHE_TTL_HOURS", "")
	t.Setenv("RISK_POLICY", "")

	cfg := Load()
	if cfg.InferenceTimeoutSeconds != 45 {
		t.Fatalf("expected default inference timeout 45, got %d", cfg.InferenceTimeoutSeconds)
	}
	if cfg.InferenceSnippetChars != 4000 {
		t.Fatalf("expected default snippet chars 4000, got %d", cfg.InferenceSnippetChars)
	}
	if cfg.InferenceRatePerMinute != 20 {
		t.Fatalf("expected default inference rate 20, got %d", cfg.InferenceRatePerMinute)
	}
	if cfg.CacheTTLHours != 72 {
		t.Fatalf("expected default cache ttl 72, got %d", cfg.CacheTTLHours)
	}
	if cfg.RiskPolicy != "prefer_highest_risk" {
		t.Fatalf("expected default risk policy, got %q", cfg.RiskPolicy)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("INFERENCE_TIMEOUT_SECONDS", "90")
	t.Setenv("INFERENCE_SNIPPET_CHARS", "2500")
	t.Setenv("RISK_POLICY", "prefer_lowest_risk")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()
	if cfg.InferenceTimeoutSeconds != 90 {
		t.Fatalf("expected inference timeout 90, got %d", cfg.InferenceTimeoutSeconds)
	}
	if cfg.InferenceSnippetChars != 2500 {
		t.Fatalf("expected snippet chars 2500, got %d", cfg.InferenceSnippetChars)
	}
	if cfg.RiskPolicy != "prefer_lowest_risk" {
		t.Fatalf("expected risk policy override, got %q", cfg.RiskPolicy)
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("expected redis db 3, got %d", cfg.RedisDB)
	}
}

func TestLoadMalformedIntFallsBack(t *testing.T) {
	t.Setenv("INFERENCE_TIMEOUT_SECONDS", "soon")
	cfg := Load()
	if cfg.InferenceTimeoutSeconds != 45 {
		t.Fatalf("malformed int must fall back to the default, got %d", cfg.InferenceTimeoutSeconds)
	}
}
