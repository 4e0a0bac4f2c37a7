package parser

import (
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rule is an archive-specific reference convention that cannot be derived
// from the text alone: the reference names a combined pseudo-fund (such as
// "ф. 95801") whose real fund and description codes are known out of band.
// Match must capture the case number in its last group.
type Rule struct {
	Name        string `yaml:"name"`
	Test        string `yaml:"test"`
	Match       string `yaml:"match"`
	Fund        string `yaml:"fund"`
	Description string `yaml:"description"`
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads and validates fixed parsing rules from a YAML file.
// An empty path means no fixed rules are configured.
func LoadRules(path string) ([]Rule, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "parser: read rules file")
	}

	var f rulesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrap(err, "parser: unmarshal rules file")
	}

	for i, r := range f.Rules {
		if r.Fund == "" || r.Description == "" {
			return nil, eris.Errorf("parser: rule %d (%s): fund and description are required", i, r.Name)
		}
		if _, err := regexp.Compile(r.Test); err != nil {
			return nil, eris.Wrapf(err, "parser: rule %d (%s): compile test", i, r.Name)
		}
		m, err := regexp.Compile(r.Match)
		if err != nil {
			return nil, eris.Wrapf(err, "parser: rule %d (%s): compile match", i, r.Name)
		}
		if m.NumSubexp() < 1 {
			return nil, eris.Errorf("parser: rule %d (%s): match must capture the case number", i, r.Name)
		}
	}

	return f.Rules, nil
}

type compiledRule struct {
	test  *regexp.Regexp
	match *regexp.Regexp
	fund  string
	desc  string
}

// fixedParser resolves references against configured per-archive rules.
type fixedParser struct {
	rules []compiledRule
}

// NewFixedParser compiles rules previously validated by LoadRules.
func NewFixedParser(rules []Rule) Parser {
	p := &fixedParser{}
	for _, r := range rules {
		p.rules = append(p.rules, compiledRule{
			test:  regexp.MustCompile(r.Test),
			match: regexp.MustCompile(r.Match),
			fund:  r.Fund,
			desc:  r.Description,
		})
	}
	return p
}

func (*fixedParser) Name() string { return "fixed" }

func (p *fixedParser) Test(item Item) string {
	for _, r := range p.rules {
		if field := testItem(r.test, item); field != "" {
			if r.match.MatchString(cleanHyphens(field)) {
				return field
			}
		}
	}
	return ""
}

func (p *fixedParser) Parse(item Item) [][3]string {
	var results [][3]string
	for _, r := range p.rules {
		for _, part := range segments(item, r.match, r.match) {
			part = cleanHyphens(part)
			m := r.match.FindStringSubmatch(part)
			if m == nil {
				continue
			}
			results = append(results, [3]string{r.fund, r.desc, m[len(m)-1]})
		}
		if len(results) > 0 {
			return results
		}
	}
	return results
}
