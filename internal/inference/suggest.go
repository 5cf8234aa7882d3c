package inference

import (
	"fmt"
	"sort"
	"strings"

	"github.com/StinkyLord/archmap/internal/model"
)

// serviceGroups classifies services by name keywords. First match wins, so
// a "user_notification_service" lands in authentication territory only if
// no earlier group claimed it.
var serviceGroups = []struct {
	Label    string
	Keywords []string
}{
	{"authentication", []string{"auth", "user", "login", "token", "jwt"}},
	{"notification", []string{"notification", "email", "sms", "message"}},
	{"file processing", []string{"file", "upload", "download", "storage", "document"}},
	{"analytics", []string{"analytics", "report", "metric", "stat"}},
	{"data processing", []string{"process", "transform", "etl", "data"}},
}

// groupLabel returns the keyword group a service name belongs to, or "".
func groupLabel(name string) string {
	lower := strings.ToLower(name)
	for _, g := range serviceGroups {
		for _, kw := range g.Keywords {
			if strings.Contains(lower, kw) {
				return g.Label
			}
		}
	}
	return ""
}

// suggest produces the ranked suggestion channel: plausible service pairs
// that inference did not confirm, each with a human-readable rationale.
// Suggestions are inert; they are never merged into the confirmed edges.
func (e *Engine) suggest(services []model.Component, confirmed *model.EdgeSet) []model.Suggestion {
	byKey := map[string]model.Suggestion{}

	add := func(s model.Suggestion) {
		if s.From == s.To {
			return
		}
		if confirmed.Contains(s.From, s.To, s.Kind) || confirmed.Contains(s.To, s.From, s.Kind) {
			return
		}
		key := s.From.String() + "|" + s.To.String() + "|" + string(s.Kind)
		if existing, ok := byKey[key]; ok {
			if s.Priority.Rank() <= existing.Priority.Rank() {
				return
			}
		}
		byKey[key] = s
	}

	// Keyword grouping: services whose names share a functional keyword
	// group probably talk to each other.
	byGroup := map[string][]model.Component{}
	for _, svc := range services {
		if label := groupLabel(svc.Name); label != "" {
			byGroup[label] = append(byGroup[label], svc)
		}
	}
	labels := make([]string, 0, len(byGroup))
	for label := range byGroup {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		group := byGroup[label]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				add(model.Suggestion{
					From:     model.ComponentRef{Category: model.CategoryService, Name: group[i].Name},
					To:       model.ComponentRef{Category: model.CategoryService, Name: group[j].Name},
					Kind:     model.KindServiceToService,
					Priority: model.PriorityMedium,
					Rationale: fmt.Sprintf("%s and %s both look like %s services",
						group[i].Name, group[j].Name, label),
				})
			}
		}
	}

	// Structural co-location: services whose evidence files live in the
	// same directory are plausibly related even without a mention.
	byDir := map[string][]model.Component{}
	for _, svc := range services {
		for _, dir := range sortedDirs(svc) {
			byDir[dir] = append(byDir[dir], svc)
		}
	}
	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		group := byDir[dir]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				add(model.Suggestion{
					From:     model.ComponentRef{Category: model.CategoryService, Name: group[i].Name},
					To:       model.ComponentRef{Category: model.CategoryService, Name: group[j].Name},
					Kind:     model.KindServiceToService,
					Priority: model.PriorityLow,
					Rationale: fmt.Sprintf("%s and %s keep their evidence files in the same directory %q",
						group[i].Name, group[j].Name, dir),
				})
			}
		}
	}

	out := make([]model.Suggestion, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, s)
	}
	model.SortSuggestions(out)
	return out
}
