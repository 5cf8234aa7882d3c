package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/StinkyLord/archmap/internal/detector"
	"github.com/StinkyLord/archmap/internal/inference"
	"github.com/StinkyLord/archmap/internal/model"
)

// InventoryDoc is the artifact emitted by the analyze stage and consumed by
// the standalone infer stage. It carries everything inference needs besides
// the live file tree.
type InventoryDoc struct {
	SchemaVersion       string                               `json:"schemaVersion"`
	Repository          string                               `json:"repository"`
	Components          map[model.Category][]model.Component `json:"components"`
	PrimaryFramework    string                               `json:"primaryFramework"`
	SecondaryFrameworks []string                             `json:"secondaryFrameworks,omitempty"`
	FilesScanned        int                                  `json:"filesScanned"`
	Warnings            []model.Warning                      `json:"warnings,omitempty"`
}

// BuildInventoryDoc snapshots an inventory into its serializable document.
func BuildInventoryDoc(repository string, inv *detector.Inventory, warnings []model.Warning, frameworkOrder []string) *InventoryDoc {
	primary := inv.PrimaryFramework(frameworkOrder)
	return &InventoryDoc{
		SchemaVersion:       model.SchemaVersion,
		Repository:          repository,
		Components:          inv.All(),
		PrimaryFramework:    primary,
		SecondaryFrameworks: inv.SecondaryFrameworks(primary),
		FilesScanned:        inv.FilesScanned,
		Warnings:            warnings,
	}
}

// LoadInventoryDoc reads an inventory document written by a prior analyze
// run and rebuilds the in-memory inventory from it. Both stage boundaries
// are idempotent: infer needs only this document plus the file tree.
func LoadInventoryDoc(path string) (*InventoryDoc, *detector.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read inventory document %s: %w", path, err)
	}

	var doc InventoryDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse inventory document %s: %w", path, err)
	}
	if doc.SchemaVersion != model.SchemaVersion {
		return nil, nil, fmt.Errorf("inventory document %s has schema version %q, want %q: %w",
			path, doc.SchemaVersion, model.SchemaVersion, ErrSchemaVersion)
	}
	for cat := range doc.Components {
		if !cat.Valid() {
			return nil, nil, fmt.Errorf("inventory document %s: unknown category %q", path, cat)
		}
	}

	return &doc, detector.FromComponents(doc.Components, doc.FilesScanned), nil
}

// RelationsDoc is the artifact emitted by the infer stage: the confirmed
// edge list plus the inert suggestion channel.
type RelationsDoc struct {
	SchemaVersion string             `json:"schemaVersion"`
	Repository    string             `json:"repository"`
	Relationships []model.Edge       `json:"relationships"`
	Suggestions   []model.Suggestion `json:"suggestions"`
}

// BuildRelationsDoc snapshots an inference report into its document.
func BuildRelationsDoc(repository string, rep *inference.Report) *RelationsDoc {
	return &RelationsDoc{
		SchemaVersion: model.SchemaVersion,
		Repository:    repository,
		Relationships: rep.Edges,
		Suggestions:   rep.Suggestions,
	}
}
