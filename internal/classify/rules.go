package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/hotbild/internal/model"
)

// Rule is one compiled risk trigger
type Rule struct {
	Name       string
	Delta      int
	categories map[string]bool
	pattern    *regexp.Regexp
}

// Applies reports whether the rule is in force for the given category
func (r Rule) Applies(category string) bool {
	if len(r.categories) == 0 {
		return true
	}
	return r.categories[strings.ToUpper(category)]
}

// Match reports whether the rule fires for the event text and category
func (r Rule) Match(category, text string) bool {
	return r.Applies(category) && r.pattern.MatchString(text)
}

// CompileRules compiles a rule table in order. Rule names must be unique.
func CompileRules(cfgs []model.RuleConfig) ([]Rule, error) {
	rules := make([]Rule, 0, len(cfgs))
	seen := make(map[string]bool)

	for i, c := range cfgs {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = fmt.Sprintf("rule_%d", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate rule name %q", name)
		}
		seen[name] = true

		re, err := compileWords(c.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", name, err)
		}

		var cats map[string]bool
		if len(c.Categories) > 0 {
			cats = make(map[string]bool, len(c.Categories))
			for _, cat := range c.Categories {
				cats[strings.ToUpper(strings.TrimSpace(cat))] = true
			}
		}

		rules = append(rules, Rule{
			Name:       name,
			Delta:      c.Delta,
			categories: cats,
			pattern:    re,
		})
	}

	return rules, nil
}

// compileWords compiles an alternation so that it only matches whole words.
// Letters and digits of any script count as word characters, so Swedish
// words starting with å, ä or ö match like any other.
func compileWords(alternation string) (*regexp.Regexp, error) {
	if strings.TrimSpace(alternation) == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	return regexp.Compile(`(?i)(?:^|[^\pL\pN])(?:` + alternation + `)(?:$|[^\pL\pN])`)
}

// Evaluate sums the deltas of every rule that fires. Each rule counts at most once.
func Evaluate(rules []Rule, category, text string) (int, []string) {
	delta := 0
	var fired []string
	for _, r := range rules {
		if r.Match(category, text) {
			delta += r.Delta
			fired = append(fired, r.Name)
		}
	}
	return delta, fired
}
