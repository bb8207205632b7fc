package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/hotbild/internal/model"
)

// SourceKind is the class of a source domain
type SourceKind int

const (
	SourceUnknown  SourceKind = 0 // No list matched
	SourceOfficial SourceKind = 1 // Government, police, defence authorities
	SourceNews     SourceKind = 2 // Major news outlets and wire services
	SourceSocial   SourceKind = 3 // Social media and aggregators
)

func (k SourceKind) String() string {
	switch k {
	case SourceOfficial:
		return "official"
	case SourceNews:
		return "news"
	case SourceSocial:
		return "social"
	default:
		return "unknown"
	}
}

// LikelihoodClassifier derives a likelihood tier from the source domain and text cues
type LikelihoodClassifier struct {
	officialMap      map[string]bool
	officialSuffixes []string
	newsMap          map[string]bool
	socialMap        map[string]bool
	confirm          *regexp.Regexp
	uncertain        *regexp.Regexp
}

// NewLikelihoodClassifier creates a new likelihood classifier
func NewLikelihoodClassifier(config *model.LikelihoodConfig) (*LikelihoodClassifier, error) {
	if config == nil {
		config = &model.DefaultConfig().Likelihood
	}

	confirm, err := compileWords(config.ConfirmCues)
	if err != nil {
		return nil, fmt.Errorf("confirm cues: %w", err)
	}
	uncertain, err := compileWords(config.UncertaintyCues)
	if err != nil {
		return nil, fmt.Errorf("uncertainty cues: %w", err)
	}

	return &LikelihoodClassifier{
		officialMap:      domainSet(config.OfficialDomains),
		officialSuffixes: config.OfficialSuffixes,
		newsMap:          domainSet(config.NewsDomains),
		socialMap:        domainSet(config.SocialDomains),
		confirm:          confirm,
		uncertain:        uncertain,
	}, nil
}

func domainSet(domains []string) map[string]bool {
	set := make(map[string]bool, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			set[d] = true
		}
	}
	return set
}

// Kind classifies a host against the domain lists in priority order
func (l *LikelihoodClassifier) Kind(host string) SourceKind {
	host = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(host), "www."))
	if host == "" {
		return SourceUnknown
	}

	if matchDomain(l.officialMap, host) {
		return SourceOfficial
	}
	for _, suffix := range l.officialSuffixes {
		if strings.HasSuffix(host, suffix) {
			return SourceOfficial
		}
	}

	if matchDomain(l.newsMap, host) {
		return SourceNews
	}

	if matchDomain(l.socialMap, host) {
		return SourceSocial
	}

	return SourceUnknown
}

// matchDomain reports whether host equals a listed domain or is a subdomain of one
func matchDomain(set map[string]bool, host string) bool {
	if set[host] {
		return true
	}
	for d := range set {
		if strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Confirms reports whether text carries confirmation cues
func (l *LikelihoodClassifier) Confirms(text string) bool {
	return l.confirm.MatchString(text)
}

// Doubts reports whether text carries uncertainty cues
func (l *LikelihoodClassifier) Doubts(text string) bool {
	return l.uncertain.MatchString(text)
}

// Classify returns the tier and the name of the branch that decided it.
// knownCategory is false when the category is missing from the category table;
// an event with no source, no cues and an unknown category is unclassifiable.
func (l *LikelihoodClassifier) Classify(host, text string, knownCategory bool) (model.Tier, string) {
	switch l.Kind(host) {
	case SourceOfficial:
		return model.TierConfirmed, "official_domain"
	case SourceNews:
		if l.Doubts(text) {
			return model.TierProbable.Shift(1), "news_domain_uncertain"
		}
		return model.TierProbable, "news_domain"
	case SourceSocial:
		if l.Confirms(text) {
			return model.TierPossible.Shift(-1), "social_domain_confirmed"
		}
		return model.TierPossible, "social_domain"
	}

	switch {
	case l.Confirms(text):
		return model.TierProbable, "text_confirmed"
	case l.Doubts(text):
		return model.TierPossible, "text_uncertain"
	case host != "" || knownCategory:
		return model.TierLikely, "text_neutral"
	default:
		return model.DefaultTier, "unclassifiable"
	}
}
