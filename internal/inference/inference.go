// Package inference derives directed relationships between detected
// components by scanning their evidence files for cross-references.
//
// Matching is purely textual: mentions inside comments and string literals
// count the same as code references. That is a deliberate simplification —
// full semantic resolution would need a parser per language — and it is why
// every edge carries a confidence priority instead of a claim of truth.
package inference

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/StinkyLord/archmap/internal/detector"
	"github.com/StinkyLord/archmap/internal/model"
	"github.com/StinkyLord/archmap/internal/rules"
	"github.com/StinkyLord/archmap/internal/scanner"
)

// sourceKinds maps internal code-unit categories to the kind of edge they
// produce toward a service. Models carry no edge kind in either direction,
// so they appear in the inventory but never in the edge list.
var sourceKinds = map[model.Category]model.EdgeKind{
	model.CategoryService:       model.KindServiceToService,
	model.CategoryController:    model.KindControllerToService,
	model.CategoryGraphQL:       model.KindResolverToService,
	model.CategoryBackgroundJob: model.KindJobToService,
}

// techKinds maps technology categories to the kind of edge a service gets
// when its evidence references that technology.
var techKinds = map[model.Category]model.EdgeKind{
	model.CategoryDatabase:     model.KindServiceToDatabase,
	model.CategoryCloudAWS:     model.KindServiceToCloud,
	model.CategoryCloudGCP:     model.KindServiceToCloud,
	model.CategoryCloudAzure:   model.KindServiceToCloud,
	model.CategoryMessageQueue: model.KindServiceToQueue,
	model.CategoryCache:        model.KindServiceToCache,
}

// Report is the inference output: confirmed edges plus inert suggestions.
// Suggestions never flow into Edges automatically.
type Report struct {
	Edges       []model.Edge
	Suggestions []model.Suggestion
}

// Engine infers relationships for one run. Stateless across runs; the rule
// table is shared and immutable.
type Engine struct {
	table  *rules.Table
	logger *zap.Logger
}

// New creates an Engine over the given rule table.
func New(table *rules.Table, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{table: table, logger: logger}
}

// Infer scans the evidence files of every internal code unit for mentions
// of other detected components and accumulates the deduplicated edge set.
// A run is all-or-nothing over the given file set; there is no partial
// state to resume.
func (e *Engine) Infer(inv *detector.Inventory, files []scanner.SourceFile) *Report {
	byPath := make(map[string]*scanner.SourceFile, len(files))
	for i := range files {
		byPath[files[i].Path] = &files[i]
	}

	edges := model.NewEdgeSet()

	services := inv.Components(model.CategoryService)

	for _, cat := range []model.Category{
		model.CategoryService,
		model.CategoryController,
		model.CategoryGraphQL,
		model.CategoryBackgroundJob,
	} {
		kind := sourceKinds[cat]
		for _, unit := range inv.Components(cat) {
			if cat == model.CategoryGraphQL && e.isTechName(cat, unit.Name) {
				// "Strawberry" and friends share the graphql category with
				// resolver code units but are technologies, not sources.
				continue
			}
			e.inferUnit(inv, unit, kind, services, byPath, edges)
		}
	}

	report := &Report{Edges: edges.Edges()}
	report.Suggestions = e.suggest(services, edges)

	e.logger.Info("relationship inference complete",
		zap.Int("edges", len(report.Edges)),
		zap.Int("suggestions", len(report.Suggestions)))

	return report
}

// inferUnit scans one code unit's evidence files for mentions of services
// and, for services, of detected technologies.
func (e *Engine) inferUnit(
	inv *detector.Inventory,
	unit model.Component,
	kind model.EdgeKind,
	services []model.Component,
	byPath map[string]*scanner.SourceFile,
	edges *model.EdgeSet,
) {
	from := model.ComponentRef{Category: unit.Category, Name: unit.Name}

	for _, path := range unit.Evidence {
		f, ok := byPath[path]
		if !ok {
			// Inventory built from a prior run against a tree that has
			// since changed; nothing to scan for this file.
			continue
		}

		for _, target := range services {
			if target.Category == unit.Category && target.Name == unit.Name {
				continue
			}
			to := model.ComponentRef{Category: target.Category, Name: target.Name}

			switch classifyMention(f.Content, target.Name) {
			case model.PriorityHigh:
				edges.Add(model.Edge{From: from, To: to, Kind: kind, Priority: model.PriorityHigh})
			case model.PriorityMedium:
				edges.Add(model.Edge{From: from, To: to, Kind: kind, Priority: model.PriorityMedium})
			default:
				// No in-text mention: a shared file-name prefix still
				// counts as a naming-convention co-occurrence.
				if namePrefix(unit.Name) != "" && namePrefix(unit.Name) == namePrefix(target.Name) {
					edges.Add(model.Edge{From: from, To: to, Kind: kind, Priority: model.PriorityLow})
				}
			}
		}

		// Technology edges are only meaningful from services.
		if unit.Category == model.CategoryService {
			e.inferTech(inv, from, f, edges)
		}
	}
}

// inferTech adds service→technology edges for every technology rule that
// fires on the service's file, provided the technology was detected.
func (e *Engine) inferTech(inv *detector.Inventory, from model.ComponentRef, f *scanner.SourceFile, edges *model.EdgeSet) {
	for cat, kind := range techKinds {
		for _, rule := range e.table.Tech(cat) {
			if !rule.Matches(f.Content) {
				continue
			}
			if _, ok := inv.Lookup(cat, rule.Name); !ok {
				// The rule fired here but the component is absent from the
				// inventory (stale inventory document). Emitting the edge
				// would dangle, so skip it.
				continue
			}
			edges.Add(model.Edge{
				From:     from,
				To:       model.ComponentRef{Category: cat, Name: rule.Name},
				Kind:     kind,
				Priority: model.PriorityHigh,
			})
		}
	}
}

// isTechName reports whether name is one of the technology rule names of a
// category, as opposed to a detected code unit.
func (e *Engine) isTechName(cat model.Category, name string) bool {
	for _, rule := range e.table.Tech(cat) {
		if rule.Name == name {
			return true
		}
	}
	return false
}

// classifyMention ranks how confidently content mentions the target name:
// an exact canonical-name match is high, a normalized naming-variant match
// (AuthService for auth_service) is medium, anything else is no mention.
func classifyMention(content, name string) model.Priority {
	if strings.Contains(content, name) {
		return model.PriorityHigh
	}
	lower := strings.ToLower(content)
	for _, variant := range nameVariants(name) {
		if variant != strings.ToLower(name) && strings.Contains(lower, variant) {
			return model.PriorityMedium
		}
	}
	return model.Priority("")
}

// nameVariants returns the lowercase naming-convention variants of a
// component name: snake, kebab, and compact (words joined).
func nameVariants(name string) []string {
	words := splitWords(name)
	if len(words) == 0 {
		return nil
	}
	return []string{
		strings.Join(words, "_"),
		strings.Join(words, "-"),
		strings.Join(words, ""),
	}
}

// namePrefix returns the first word of a name, the shared stem used for
// naming-convention co-occurrence ("user" for user_service and
// user_controller). Single-word names have no usable prefix.
func namePrefix(name string) string {
	words := splitWords(name)
	if len(words) < 2 {
		return ""
	}
	return words[0]
}

// splitWords splits an identifier into lowercase words on underscores,
// hyphens, dots, and camel-case boundaries.
func splitWords(name string) []string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}
	var prev rune
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == '.' || r == ' ':
			flush()
		case r >= 'A' && r <= 'Z' && prev >= 'a' && prev <= 'z':
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
		prev = r
	}
	flush()
	return words
}

// sortedDirs returns the sorted set of parent directories of a component's
// evidence files.
func sortedDirs(c model.Component) []string {
	set := map[string]bool{}
	for _, path := range c.Evidence {
		dir := ""
		if i := strings.LastIndexByte(path, '/'); i >= 0 {
			dir = path[:i]
		}
		set[dir] = true
	}
	out := make([]string, 0, len(set))
	for dir := range set {
		out = append(out, dir)
	}
	sort.Strings(out)
	return out
}
