// Package patterns holds the declarative slang tables and the matcher that
// runs them against page text.
package patterns

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tier names used by the default tables and the scoring engine.
const (
	TierBasic      = "basic"
	TierSocial     = "social"
	TierToxic      = "toxic"
	TierContextual = "contextual"
	TierPositive   = "positive"
)

//go:embed default.yaml
var defaultTables []byte

// File is the on-disk shape of a pattern table.
type File struct {
	Version int          `yaml:"version"`
	Tiers   []TierConfig `yaml:"tiers"`
}

// TierConfig describes one tier before compilation.
type TierConfig struct {
	Name        string   `yaml:"name"`
	Weight      int      `yaml:"weight"`
	Penalty     float64  `yaml:"penalty"`
	Educational bool     `yaml:"educational"`
	Words       []string `yaml:"words"`
	Regexes     []string `yaml:"regexes"`
}

// Rule is a single compiled match rule.
type Rule struct {
	Source string
	Regex  bool
	expr   *regexp.Regexp
}

// Tier is a compiled, immutable pattern tier.
type Tier struct {
	Name        string
	Weight      int
	Penalty     float64
	Educational bool
	Rules       []Rule
}

// Set is an ordered collection of compiled tiers.
type Set struct {
	Version int
	tiers   []Tier
}

// Default compiles the embedded pattern tables.
func Default() *Set {
	set, err := Parse(defaultTables)
	if err != nil {
		panic(fmt.Sprintf("patterns: embedded tables are invalid: %v", err))
	}
	return set
}

// Load reads a YAML pattern table from path; an empty path yields Default.
func Load(path string) (*Set, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern tables %s: %w", path, err)
	}
	set, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("pattern tables %s: %w", path, err)
	}
	return set, nil
}

// Parse compiles a YAML pattern table.
func Parse(raw []byte) (*Set, error) {
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return Compile(file)
}

// Compile validates tier names and compiles every rule.
func Compile(file File) (*Set, error) {
	if len(file.Tiers) == 0 {
		return nil, fmt.Errorf("no tiers defined")
	}

	seen := make(map[string]struct{}, len(file.Tiers))
	set := &Set{Version: file.Version, tiers: make([]Tier, 0, len(file.Tiers))}
	for _, cfg := range file.Tiers {
		name := strings.ToLower(strings.TrimSpace(cfg.Name))
		if name == "" {
			return nil, fmt.Errorf("tier without name")
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("tier %s defined twice", name)
		}
		seen[name] = struct{}{}

		tier := Tier{
			Name:        name,
			Weight:      cfg.Weight,
			Penalty:     cfg.Penalty,
			Educational: cfg.Educational,
		}
		for _, word := range cfg.Words {
			word = strings.ToLower(strings.TrimSpace(word))
			if word == "" {
				continue
			}
			tier.Rules = append(tier.Rules, Rule{
				Source: word,
				expr:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`),
			})
		}
		for _, src := range cfg.Regexes {
			expr, err := regexp.Compile(`(?i)` + src)
			if err != nil {
				return nil, fmt.Errorf("tier %s: compile %q: %w", name, src, err)
			}
			tier.Rules = append(tier.Rules, Rule{Source: src, Regex: true, expr: expr})
		}
		set.tiers = append(set.tiers, tier)
	}

	return set, nil
}

// Tiers returns the compiled tiers in declaration order.
func (s *Set) Tiers() []Tier {
	out := make([]Tier, len(s.tiers))
	copy(out, s.tiers)
	return out
}

// Names returns the tier names in declaration order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.tiers))
	for _, t := range s.tiers {
		names = append(names, t.Name)
	}
	return names
}

// Tier looks a tier up by name.
func (s *Set) Tier(name string) (Tier, bool) {
	for _, t := range s.tiers {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}
