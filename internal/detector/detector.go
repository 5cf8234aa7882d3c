// Package detector classifies source files against the rule table and
// builds the typed component inventory.
package detector

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/StinkyLord/archmap/internal/model"
	"github.com/StinkyLord/archmap/internal/rules"
	"github.com/StinkyLord/archmap/internal/scanner"
)

// codeLanguages are the languages whose files can define internal code
// units. Structural conventions mean nothing in YAML or lock files.
var codeLanguages = map[string]bool{
	"python": true, "javascript": true, "typescript": true,
	"go": true, "ruby": true, "java": true, "kotlin": true,
	"php": true, "csharp": true,
}

// ignoredStems never name a component on their own.
var ignoredStems = map[string]bool{
	"__init__": true,
	"__main__": true,
	"index":    true,
}

// Detector applies a rule table to scanned files. The table is immutable,
// so one Detector can serve concurrent runs.
type Detector struct {
	table  *rules.Table
	logger *zap.Logger
}

// New creates a Detector over the given rule table.
func New(table *rules.Table, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{table: table, logger: logger}
}

// Detect runs every rule against every file and returns the merged
// inventory. Categories are not mutually exclusive: a file matching both a
// controller convention and a service convention contributes evidence to
// both. Aggregation is a commutative set-union merge, so the result does
// not depend on file order.
func (d *Detector) Detect(files []scanner.SourceFile) *Inventory {
	inv := NewInventory()
	for i := range files {
		d.detectFile(inv, &files[i])
	}
	inv.FilesScanned = len(files)
	return inv
}

func (d *Detector) detectFile(inv *Inventory, f *scanner.SourceFile) {
	// Technology rules: case-insensitive free-text patterns over content
	// and path.
	for _, cat := range d.table.TechCategories() {
		for _, rule := range d.table.Tech(cat) {
			if rule.Matches(f.Content) || rule.Matches(f.Path) {
				inv.Add(cat, rule.Name, f.Path)
				d.logger.Debug("rule matched",
					zap.String("category", string(cat)),
					zap.String("name", rule.Name),
					zap.String("path", f.Path))
			}
		}
	}

	// Structural rules: case-sensitive path conventions, code files only.
	if !codeLanguages[f.Language] {
		return
	}
	stem := f.Stem()
	if ignoredStems[stem] {
		return
	}
	segments := strings.Split(f.Path, "/")
	dirs := segments[:len(segments)-1]

	for _, sr := range d.table.Structural() {
		if structuralMatch(sr, dirs, stem) {
			inv.Add(sr.Category, stem, f.Path)
		}
	}
}

// structuralMatch reports whether a file at the given directory path with
// the given stem satisfies one structural rule.
func structuralMatch(sr rules.StructuralRule, dirs []string, stem string) bool {
	for _, dir := range dirs {
		for _, want := range sr.Dirs {
			if dir == want {
				if sr.StemContains != "" && !strings.Contains(strings.ToLower(stem), sr.StemContains) {
					return false
				}
				return true
			}
		}
	}
	for _, suffix := range sr.StemSuffixes {
		if stem != suffix && strings.HasSuffix(stem, suffix) {
			return true
		}
	}
	return false
}

// Inventory is the accumulated component set for one run. Within a category
// names are unique: repeated detections grow the evidence set instead of
// duplicating the component.
type Inventory struct {
	byCategory map[model.Category]map[string]*model.Component

	// FilesScanned is the number of files the detector consumed.
	FilesScanned int
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{byCategory: map[model.Category]map[string]*model.Component{}}
}

// FromComponents rebuilds an inventory from a previously serialized
// component map, for the standalone inference stage.
func FromComponents(components map[model.Category][]model.Component, filesScanned int) *Inventory {
	inv := NewInventory()
	for cat, comps := range components {
		for _, c := range comps {
			for _, path := range c.Evidence {
				inv.Add(cat, c.Name, path)
			}
		}
	}
	inv.FilesScanned = filesScanned
	return inv
}

// Add registers evidence for a component, creating it on first sight.
func (inv *Inventory) Add(cat model.Category, name, path string) {
	byName, ok := inv.byCategory[cat]
	if !ok {
		byName = map[string]*model.Component{}
		inv.byCategory[cat] = byName
	}
	c, ok := byName[name]
	if !ok {
		c = &model.Component{Category: cat, Name: name}
		byName[name] = c
	}
	c.AddEvidence(path)
}

// Merge folds another inventory into this one. The merge is commutative,
// so parallel detection shards can be combined in any order.
func (inv *Inventory) Merge(other *Inventory) {
	for cat, byName := range other.byCategory {
		for name, c := range byName {
			for _, path := range c.Evidence {
				inv.Add(cat, name, path)
			}
		}
	}
	inv.FilesScanned += other.FilesScanned
}

// Lookup finds a component by category and exact canonical name.
func (inv *Inventory) Lookup(cat model.Category, name string) (*model.Component, bool) {
	c, ok := inv.byCategory[cat][name]
	return c, ok
}

// Components returns the components of one category, ordered by name.
// The returned slice holds copies; the inventory stays unmodified.
func (inv *Inventory) Components(cat model.Category) []model.Component {
	byName := inv.byCategory[cat]
	if len(byName) == 0 {
		return nil
	}
	out := make([]model.Component, 0, len(byName))
	for _, c := range byName {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// All returns every non-empty category's components, ordered by name within
// each category.
func (inv *Inventory) All() map[model.Category][]model.Component {
	out := map[model.Category][]model.Component{}
	for cat := range inv.byCategory {
		if comps := inv.Components(cat); len(comps) > 0 {
			out[cat] = comps
		}
	}
	return out
}

// PrimaryFramework picks the summary's primary framework: the first entry
// of the priority order that was detected, falling back to the
// alphabetically first detected framework outside the order. Empty when no
// framework was detected.
func (inv *Inventory) PrimaryFramework(order []string) string {
	detected := inv.byCategory[model.CategoryFramework]
	if len(detected) == 0 {
		return ""
	}
	for _, name := range order {
		if _, ok := detected[name]; ok {
			return name
		}
	}
	names := make([]string, 0, len(detected))
	for name := range detected {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0]
}

// SecondaryFrameworks returns the detected frameworks other than the
// primary, sorted by name.
func (inv *Inventory) SecondaryFrameworks(primary string) []string {
	var out []string
	for name := range inv.byCategory[model.CategoryFramework] {
		if name != primary {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
