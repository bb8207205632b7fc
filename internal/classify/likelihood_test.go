package classify

import (
	"testing"

	"github.com/ppiankov/hotbild/internal/model"
)

func TestLikelihoodClassifier_Kind(t *testing.T) {
	classifier, err := NewLikelihoodClassifier(&model.LikelihoodConfig{
		OfficialDomains:  []string{"polisen.se", "nato.int"},
		OfficialSuffixes: []string{".gov", ".mil"},
		NewsDomains:      []string{"reuters.com", "svt.se"},
		SocialDomains:    []string{"x.com", "news.google.com"},
		ConfirmCues:      "confirmed",
		UncertaintyCues:  "alleged",
	})
	if err != nil {
		t.Fatalf("NewLikelihoodClassifier failed: %v", err)
	}

	tests := []struct {
		host     string
		expected SourceKind
		desc     string
	}{
		{"polisen.se", SourceOfficial, "Official exact match"},
		{"www.polisen.se", SourceOfficial, "Official with www"},
		{"vasterbotten.polisen.se", SourceOfficial, "Official subdomain"},
		{"state.gov", SourceOfficial, "Government suffix"},
		{"army.mil", SourceOfficial, "Military suffix"},
		{"reuters.com", SourceNews, "News outlet"},
		{"www.svt.se", SourceNews, "News outlet with www"},
		{"x.com", SourceSocial, "Social media"},
		{"news.google.com", SourceSocial, "Aggregator"},
		{"notsvt.se", SourceUnknown, "Suffix without dot boundary"},
		{"example.org", SourceUnknown, "Unlisted domain"},
		{"", SourceUnknown, "No domain"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			result := classifier.Kind(tt.host)
			if result != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.host, result)
			}
		})
	}
}

func TestLikelihoodClassifier_Cascade(t *testing.T) {
	classifier, err := NewLikelihoodClassifier(nil)
	if err != nil {
		t.Fatalf("NewLikelihoodClassifier failed: %v", err)
	}

	tests := []struct {
		host     string
		text     string
		known    bool
		expected model.Tier
		desc     string
	}{
		{"polisen.se", "Unconfirmed reports of theft", true, model.TierConfirmed, "Official wins over uncertainty"},
		{"reuters.com", "Explosion at depot", true, model.TierProbable, "Major outlet"},
		{"reuters.com", "Explosion reportedly heard at depot", true, model.TierLikely, "Major outlet with uncertainty cue"},
		{"svt.se", "Obekräftade uppgifter om drönare", true, model.TierLikely, "Swedish uncertainty cue"},
		{"x.com", "Drones over the base", true, model.TierPossible, "Social media"},
		{"x.com", "Two men arrested near the base", true, model.TierLikely, "Social media with confirmation cue"},
		{"", "Man gripen efter sabotage", true, model.TierProbable, "Text confirmation fallback"},
		{"", "Alleged sabotage of cable", true, model.TierPossible, "Text uncertainty fallback"},
		{"example.org", "Cable damaged", false, model.TierLikely, "Unlisted domain without cues"},
		{"", "Cable damaged", true, model.TierLikely, "Known category without cues"},
		{"", "Cable damaged", false, model.TierPossible, "Unclassifiable"},
		{"", "Unconfirmed sighting", true, model.TierPossible, "Unconfirmed is not a confirmation"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			result, reason := classifier.Classify(tt.host, tt.text, tt.known)
			if result != tt.expected {
				t.Errorf("Expected %v for %q/%q, got %v (%s)", tt.expected, tt.host, tt.text, result, reason)
			}
			if !result.Valid() {
				t.Errorf("Tier %d out of range", result)
			}
		})
	}
}

func TestLikelihoodClassifier_InvalidCues(t *testing.T) {
	cfg := model.DefaultConfig().Likelihood
	cfg.ConfirmCues = "["
	if _, err := NewLikelihoodClassifier(&cfg); err == nil {
		t.Error("Expected error for invalid confirm cue pattern")
	}

	cfg = model.DefaultConfig().Likelihood
	cfg.UncertaintyCues = ""
	if _, err := NewLikelihoodClassifier(&cfg); err == nil {
		t.Error("Expected error for empty uncertainty cues")
	}
}

func TestSourceKind_String(t *testing.T) {
	if SourceOfficial.String() != "official" || SourceNews.String() != "news" ||
		SourceSocial.String() != "social" || SourceUnknown.String() != "unknown" {
		t.Error("Unexpected SourceKind names")
	}
}
