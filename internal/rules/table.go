// Package rules provides the detection rule table: named pattern rules keyed
// by category, plus structural path conventions for internal code units.
// A Table is an explicit immutable value built once and passed into the
// detector and the inference engine; it is never mutated during a run, so
// concurrent runs can safely share it.
package rules

import (
	"fmt"
	"regexp"

	"github.com/StinkyLord/archmap/internal/config"
	"github.com/StinkyLord/archmap/internal/model"
)

// Rule recognises one named technology: any pattern matching a file's
// content or path registers the component under the rule's canonical name.
type Rule struct {
	Name     string
	patterns []*regexp.Regexp
}

// Matches reports whether any of the rule's patterns match s.
func (r *Rule) Matches(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// StructuralRule recognises internal code units (controllers, services,
// models, jobs, resolvers) by directory membership or file-stem suffix.
// Unlike technology patterns these are case-sensitive: "UserService.py"
// and "user_service.py" are both conventions, "userservice.py" is not.
type StructuralRule struct {
	Category Category

	// Dirs are directory names whose member files match (e.g. "controllers").
	Dirs []string

	// StemSuffixes match on the file stem (name without extension),
	// e.g. "_service" or "Service". The stem must be longer than the suffix.
	StemSuffixes []string

	// StemContains, when non-empty, additionally requires the lowercased
	// stem to contain this substring for directory-based matches.
	StemContains string
}

// Category aliases model.Category for rule declarations.
type Category = model.Category

// Table is the full immutable rule set for one analysis run.
type Table struct {
	tech       map[Category][]*Rule
	techOrder  []Category
	structural []StructuralRule
	frameworks []string
}

// Tech returns the ordered technology rules for a category.
func (t *Table) Tech(cat Category) []*Rule {
	return t.tech[cat]
}

// TechCategories returns the categories that carry technology rules, in
// canonical order.
func (t *Table) TechCategories() []Category {
	return t.techOrder
}

// Structural returns the structural rules for internal code units.
func (t *Table) Structural() []StructuralRule {
	return t.structural
}

// FrameworkPriority returns the first-match-wins order used to choose the
// summary's primary framework.
func (t *Table) FrameworkPriority() []string {
	return t.frameworks
}

// mustRule compiles a built-in rule. Built-in patterns are part of the
// program, so a compile failure is a programming error and panics at init.
func mustRule(name string, patterns ...string) *Rule {
	r := &Rule{Name: name}
	for _, p := range patterns {
		r.patterns = append(r.patterns, regexp.MustCompile("(?i)"+p))
	}
	return r
}

// New builds a Table from the built-in defaults, optionally extended by a
// user configuration. User rules append after the built-ins within their
// category; a user frameworkPriority replaces the default order entirely.
func New(cfg *config.Config) (*Table, error) {
	t := defaultTable()

	if cfg == nil {
		return t, nil
	}

	for key := range cfg.Categories {
		if !Category(key).Valid() {
			return nil, fmt.Errorf("unknown category %q in rule table", key)
		}
	}

	// Merge in canonical category order so techOrder never depends on map
	// iteration order.
	for _, cat := range model.Categories {
		defs := cfg.Categories[string(cat)]
		for _, def := range defs {
			r := &Rule{Name: def.Name}
			for _, p := range def.Patterns {
				re, err := regexp.Compile("(?i)" + p)
				if err != nil {
					return nil, fmt.Errorf("rule %q: invalid pattern %q: %w", def.Name, p, err)
				}
				r.patterns = append(r.patterns, re)
			}
			if _, ok := t.tech[cat]; !ok {
				t.techOrder = append(t.techOrder, cat)
			}
			t.tech[cat] = append(t.tech[cat], r)
		}
	}

	if len(cfg.FrameworkPriority) > 0 {
		t.frameworks = append([]string(nil), cfg.FrameworkPriority...)
	}

	return t, nil
}
