// Package model defines the internal data structures used by the analysis engine.
package model

import (
	"sort"
	"strings"
)

// Category classifies a detected component. The set is closed: anything the
// detector emits must be one of these values, so a typo in a rule table can
// never invent a phantom category.
type Category string

const (
	CategoryFramework     Category = "framework"
	CategoryDatabase      Category = "database"
	CategoryCloudAWS      Category = "cloud-aws"
	CategoryCloudGCP      Category = "cloud-gcp"
	CategoryCloudAzure    Category = "cloud-azure"
	CategoryController    Category = "controller"
	CategoryService       Category = "service"
	CategoryModel         Category = "model"
	CategoryBackgroundJob Category = "background-job"
	CategoryGraphQL       Category = "graphql"
	CategoryContainer     Category = "container"
	CategoryMessageQueue  Category = "message-queue"
	CategoryCache         Category = "cache"
	CategoryORM           Category = "orm"
	CategoryServer        Category = "server"
	CategoryScheduler     Category = "scheduler"
)

// Categories lists every valid category in canonical output order.
var Categories = []Category{
	CategoryFramework,
	CategoryDatabase,
	CategoryCloudAWS,
	CategoryCloudGCP,
	CategoryCloudAzure,
	CategoryController,
	CategoryService,
	CategoryModel,
	CategoryBackgroundJob,
	CategoryGraphQL,
	CategoryContainer,
	CategoryMessageQueue,
	CategoryCache,
	CategoryORM,
	CategoryServer,
	CategoryScheduler,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Priority is a coarse confidence rank attached to inferred relationships.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank returns a comparable score for a priority. Higher = more confident.
// Unknown values rank below low so they never win a merge.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// MaxPriority returns the higher-ranked of two priorities. It is commutative
// and associative, so edge merging is order-independent.
func MaxPriority(a, b Priority) Priority {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Component is a detected technology or internal code unit.
// Evidence is the sorted, deduplicated set of repository-relative file paths
// that triggered detection; Count is always len(Evidence).
type Component struct {
	Category Category `json:"category"`
	Name     string   `json:"name"`
	Evidence []string `json:"evidence"`
	Count    int      `json:"count"`
}

// AddEvidence registers a contributing file path, keeping the evidence set
// sorted and unique. Adding the same path twice is a no-op, which makes the
// merge commutative regardless of scan order.
func (c *Component) AddEvidence(path string) {
	i := sort.SearchStrings(c.Evidence, path)
	if i < len(c.Evidence) && c.Evidence[i] == path {
		return
	}
	c.Evidence = append(c.Evidence, "")
	copy(c.Evidence[i+1:], c.Evidence[i:])
	c.Evidence[i] = path
	c.Count = len(c.Evidence)
}

// NormalizeName returns a normalized form of a component name used for
// matching and deduplication: lowercase, with underscores and dots replaced
// by hyphens, so "UserService", "user_service" and "user.service" collapse
// to the same key.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "-")
	name = strings.ReplaceAll(name, ".", "-")
	return name
}
