package model

import (
	"strings"
	"time"
)

// Config holds every tunable table and default used by the engine
type Config struct {
	Categories map[string]CategoryConfig `yaml:"categories" mapstructure:"categories"`
	Rules      []RuleConfig              `yaml:"rules" mapstructure:"rules"`
	Likelihood LikelihoodConfig          `yaml:"likelihood" mapstructure:"likelihood"`
	Scoring    ScoringConfig             `yaml:"scoring" mapstructure:"scoring"`
	Filter     FilterConfig              `yaml:"filter" mapstructure:"filter"`
	Graph      GraphConfig               `yaml:"graph" mapstructure:"graph"`
	Cache      CacheConfig               `yaml:"cache" mapstructure:"cache"`
	Output     OutputConfig              `yaml:"output" mapstructure:"output"`
}

// CategoryConfig maps an event category onto a dimension and a base risk
type CategoryConfig struct {
	Dimension string  `yaml:"dimension" mapstructure:"dimension"`
	BaseRisk  int     `yaml:"base_risk" mapstructure:"base_risk"`
	Weight    float64 `yaml:"weight" mapstructure:"weight"` // Attention weight for the top list
}

// RuleConfig is one risk trigger: a case-insensitive alternation matched as a
// whole word against title and summary. Categories restricts the rule to those
// categories when set.
type RuleConfig struct {
	Name       string   `yaml:"name" mapstructure:"name"`
	Pattern    string   `yaml:"pattern" mapstructure:"pattern"`
	Delta      int      `yaml:"delta" mapstructure:"delta"`
	Categories []string `yaml:"categories,omitempty" mapstructure:"categories"`
}

// LikelihoodConfig holds the source domain lists and text cues
type LikelihoodConfig struct {
	OfficialDomains  []string `yaml:"official_domains" mapstructure:"official_domains"`
	OfficialSuffixes []string `yaml:"official_suffixes" mapstructure:"official_suffixes"`
	NewsDomains      []string `yaml:"news_domains" mapstructure:"news_domains"`
	SocialDomains    []string `yaml:"social_domains" mapstructure:"social_domains"`
	ConfirmCues      string   `yaml:"confirm_cues" mapstructure:"confirm_cues"`
	UncertaintyCues  string   `yaml:"uncertainty_cues" mapstructure:"uncertainty_cues"`
}

// ScoringConfig holds the per-tier likelihood weights
type ScoringConfig struct {
	Weights     map[string]float64 `yaml:"weights" mapstructure:"weights"` // Keyed by tier name
	Denominator float64            `yaml:"denominator" mapstructure:"denominator"`
	TopListSize int                `yaml:"top_list_size" mapstructure:"top_list_size"`
}

// Weight returns the likelihood weight of a tier
func (s ScoringConfig) Weight(t Tier) float64 {
	if w, ok := s.Weights[tierKey(t)]; ok {
		return w
	}
	return DefaultConfig().Scoring.Weights[tierKey(t)]
}

// tierKey is lower-case because viper folds map keys when loading config files
func tierKey(t Tier) string {
	return strings.ToLower(t.String())
}

// FilterConfig holds filter defaults
type FilterConfig struct {
	MinLimit            int `yaml:"min_limit" mapstructure:"min_limit"`
	MaxLimit            int `yaml:"max_limit" mapstructure:"max_limit"`
	MinKeywordFrequency int `yaml:"min_keyword_frequency" mapstructure:"min_keyword_frequency"`
}

// GraphConfig holds graph density limits
type GraphConfig struct {
	KeywordsPerEvent     int  `yaml:"keywords_per_event" mapstructure:"keywords_per_event"`
	KeywordLinksPerEvent int  `yaml:"keyword_links_per_event" mapstructure:"keyword_links_per_event"`
	PruneIsolated        bool `yaml:"prune_isolated" mapstructure:"prune_isolated"`
}

// CacheConfig controls the classification cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in tables
func DefaultConfig() *Config {
	return &Config{
		Categories: map[string]CategoryConfig{
			"HYBRID":  {Dimension: string(DimIntentions), BaseRisk: 3, Weight: 6},
			"POLICY":  {Dimension: string(DimIntentions), BaseRisk: 2, Weight: 4},
			"TERROR":  {Dimension: string(DimIntentions), BaseRisk: 4, Weight: 10},
			"INTEL":   {Dimension: string(DimFacilitation), BaseRisk: 3, Weight: 7},
			"LEGAL":   {Dimension: string(DimFacilitation), BaseRisk: 2, Weight: 4},
			"MIL":     {Dimension: string(DimResources), BaseRisk: 3, Weight: 8},
			"MAR":     {Dimension: string(DimResources), BaseRisk: 3, Weight: 6},
			"INFRA":   {Dimension: string(DimResources), BaseRisk: 3, Weight: 9},
			"NUCLEAR": {Dimension: string(DimResources), BaseRisk: 4, Weight: 9},
			"DRONE":   {Dimension: string(DimOpportunity), BaseRisk: 3, Weight: 6},
			"GPS":     {Dimension: string(DimOpportunity), BaseRisk: 3, Weight: 6},
		},
		Rules: []RuleConfig{
			{
				Name:    "violence",
				Pattern: `bomb\pL*|explosi\pL*|spräng\pL*|attack|attacks|attacked|attentat\pL*|sabota\pL*|mord\pL*|murder\pL*|kill\pL*|död\pL*|dead|death\pL*|shoot\pL*|skjut\pL*|skott\pL*|våld\pL*|violen\pL*|arson|mordbrand\pL*`,
				Delta:   1,
			},
			{
				Name:    "critical_infrastructure",
				Pattern: `kabel|kablar|cable\pL*|pipeline\pL*|rörledning\pL*|gasledning\pL*|substation\pL*|ställverk\pL*|transformatorstation\pL*|elnät\pL*|power grid\pL*|kraftnät\pL*|järnväg\pL*|railway\pL*|rail|bridge\pL*|bro|broar|bron|hamn\pL*|port|ports|airport\pL*|flygplats\pL*`,
				Delta:   1,
			},
			{
				Name:    "surveillance",
				Pattern: `surveillance|spying|spy|spies|spion\pL*|espionage|intercept\pL*|avlyssn\pL*|wiretap\pL*|sigint|signals intelligence|signalspaning\pL*|kartläggning\pL*|övervakning\pL*`,
				Delta:   1,
			},
			{
				Name:    "exercise",
				Pattern: `exercise\pL*|drill\pL*|test|tests|testing|övning\pL*|ovning\pL*`,
				Delta:   -1,
			},
			{
				Name:       "policy_measures",
				Pattern:    `sanction\pL*|sanktion\pL*|ban|bans|banned|förbud\pL*|forbud\pL*|emergency|nödläge\pL*|undantagstillstånd\pL*`,
				Delta:      1,
				Categories: []string{"POLICY"},
			},
			{
				Name:       "gnss_interference",
				Pattern:    `jamm\pL*|spoof\pL*|störning\pL*|storning\pL*|interference`,
				Delta:      1,
				Categories: []string{"GPS"},
			},
			{
				Name:       "airspace_intrusion",
				Pattern:    `airspace\pL*|luftrum\pL*|intrusion\pL*|incursion\pL*|intrång\pL*|restricted area\pL*|skyddsobjekt\pL*|overflight\pL*|överflygning\pL*`,
				Delta:      1,
				Categories: []string{"DRONE"},
			},
		},
		Likelihood: LikelihoodConfig{
			OfficialDomains: []string{
				"polisen.se", "regeringen.se", "riksdagen.se", "government.se", "msb.se",
				"forsvarsmakten.se", "fra.se", "sakerhetspolisen.se", "kustbevakningen.se",
				"transportstyrelsen.se", "svk.se", "poliisi.fi", "supo.fi", "defmin.fi", "um.fi",
				"politiet.no", "pst.no", "forsvaret.no", "regjeringen.no", "politi.dk", "fmn.dk",
				"nato.int", "europa.eu",
			},
			OfficialSuffixes: []string{".gov", ".mil", ".gov.uk", ".gouv.fr", ".europa.eu", ".bund.de"},
			NewsDomains: []string{
				"reuters.com", "apnews.com", "afp.com", "bbc.com", "bbc.co.uk", "theguardian.com",
				"nytimes.com", "ft.com", "bloomberg.com", "politico.eu", "svt.se", "sr.se", "tt.se",
				"dn.se", "svd.se", "gp.se", "expressen.se", "aftonbladet.se", "yle.fi", "hs.fi",
				"nrk.no", "dr.dk",
			},
			SocialDomains: []string{
				"x.com", "twitter.com", "facebook.com", "instagram.com", "tiktok.com", "youtube.com",
				"t.me", "telegram.org", "reddit.com", "vk.com", "flashback.org", "news.google.com",
				"msn.com", "flipboard.com",
			},
			ConfirmCues:     `confirmed|confirms|charged|convicted|arrested|sentenced|bekräft\pL*|bekraft\pL*|gripen|gripna|gripits|häktad\pL*|haktad\pL*|åtal\pL*|dömd\pL*|domd\pL*`,
			UncertaintyCues: `unconfirmed|alleged\pL*|reportedly|rumou?r\pL*|sources say|according to sources|obekräft\pL*|obekraft\pL*|uppgifter om|påstå\pL*|rykte\pL*|enligt källor|unverified|overifierad\pL*`,
		},
		Scoring: ScoringConfig{
			Weights: map[string]float64{
				tierKey(TierConfirmed): 0.95,
				tierKey(TierProbable):  0.85,
				tierKey(TierLikely):    0.55,
				tierKey(TierPossible):  0.225,
				tierKey(TierDoubtful):  0.025,
			},
			Denominator: 5,
			TopListSize: 12,
		},
		Filter: FilterConfig{
			MinLimit:            200,
			MaxLimit:            600,
			MinKeywordFrequency: 3,
		},
		Graph: GraphConfig{
			KeywordsPerEvent:     6,
			KeywordLinksPerEvent: 8,
			PruneIsolated:        true,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     30 * time.Minute,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
