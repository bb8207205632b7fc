package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/hotbild/internal/model"
	"github.com/ppiankov/hotbild/internal/score"
)

func TestParseSliders(t *testing.T) {
	p, err := parseSliders([]int{10, 120, -5, 50})
	if err != nil {
		t.Fatalf("parseSliders failed: %v", err)
	}
	expected := score.Percentages{10, 100, 0, 50}
	if p != expected {
		t.Errorf("Expected %v, got %v", expected, p)
	}

	if _, err := parseSliders([]int{10, 20}); err == nil {
		t.Error("Expected error for two values, got nil")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"data/week 1.json", "week-1"},
		{"/tmp/events.js", "events"},
		{"a:b?c.yaml", "a_b_c"},
		{".json", "dataset"},
		{"", "dataset"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := sanitizeFilename(tt.in); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUniqueSlug(t *testing.T) {
	used := make(map[string]bool)
	inputs := []string{"events", "events", "other", "events", "a", "a", "a-2"}
	expected := []string{"events", "events-2", "other", "events-3", "a", "a-2", "a-2-2"}

	seen := make(map[string]bool)
	for i, in := range inputs {
		got := uniqueSlug(used, in)
		if got != expected[i] {
			t.Errorf("Expected %s at %d, got %s", expected[i], i, got)
		}
		if seen[got] {
			t.Errorf("Slug %s handed out twice", got)
		}
		seen[got] = true
	}
}

func TestSanitizeFilename_TrimsByRune(t *testing.T) {
	got := sanitizeFilename(strings.Repeat("ö", 150) + ".json")
	if !utf8.ValidString(got) {
		t.Errorf("Expected valid UTF-8, got %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 100 {
		t.Errorf("Expected 100 runes, got %d", n)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".hotbild", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config does not parse: %v", err)
	}
	if len(cfg.Categories) != len(model.DefaultConfig().Categories) {
		t.Errorf("Expected %d categories, got %d", len(model.DefaultConfig().Categories), len(cfg.Categories))
	}
	if w := cfg.Scoring.Weight(model.TierProbable); w != 0.85 {
		t.Errorf("Expected probable weight 0.85, got %v", w)
	}

	// Never overwrites
	if err := writeDefaultConfig(path); err == nil {
		t.Error("Expected error for existing config, got nil")
	}
}

func TestLoadConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `categories:
  TERROR:
    dimension: Opportunity
    base_risk: 5
    weight: 2
scoring:
  weights:
    Confirmed: 1.0
cache:
  ttl: 5m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if len(cfg.Categories) != len(model.DefaultConfig().Categories) {
		t.Errorf("Expected configured category to replace its default, got %d categories", len(cfg.Categories))
	}
	if cc := cfg.Categories["terror"]; cc.BaseRisk != 5 || cc.Dimension != "Opportunity" {
		t.Errorf("Expected configured terror entry, got %+v", cc)
	}
	if w := cfg.Scoring.Weight(model.TierConfirmed); w != 1.0 {
		t.Errorf("Expected confirmed weight 1.0, got %v", w)
	}
	if w := cfg.Scoring.Weight(model.TierProbable); w != 0.85 {
		t.Errorf("Expected default probable weight 0.85, got %v", w)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Expected TTL 5m, got %v", cfg.Cache.TTL)
	}
	if cfg.Filter.MinLimit != 200 {
		t.Errorf("Expected default min limit 200, got %d", cfg.Filter.MinLimit)
	}
}
