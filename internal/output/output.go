// Package output assembles and serializes the canonical analysis artifacts.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/StinkyLord/archmap/internal/detector"
	"github.com/StinkyLord/archmap/internal/inference"
	"github.com/StinkyLord/archmap/internal/model"
)

// ErrDanglingReference marks a model whose edge list references a component
// absent from the inventory. That is always an internal bug in the detector
// or the inference engine, never something to silently drop.
var ErrDanglingReference = errors.New("edge references a component absent from the inventory")

// ErrSchemaVersion marks a document written by an incompatible version.
var ErrSchemaVersion = errors.New("unsupported schema version")

// serialNamespace is the UUIDv5 namespace for model serial numbers. Serials
// are derived from content, so identical inputs produce identical documents.
var serialNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/StinkyLord/archmap"))

// BuildModel merges the component inventory and the inference report into
// the canonical AnalysisModel. Pure: no I/O, no mutation of the inputs.
// Fails with ErrDanglingReference when an edge or suggestion references a
// component the inventory does not contain.
func BuildModel(repository string, inv *detector.Inventory, rep *inference.Report, warnings []model.Warning, frameworkOrder []string) (*model.AnalysisModel, error) {
	components := inv.All()

	for _, e := range rep.Edges {
		for _, ref := range []model.ComponentRef{e.From, e.To} {
			if _, ok := inv.Lookup(ref.Category, ref.Name); !ok {
				return nil, fmt.Errorf("edge %s -> %s (%s): %s: %w",
					e.From, e.To, e.Kind, ref, ErrDanglingReference)
			}
		}
	}
	for _, s := range rep.Suggestions {
		for _, ref := range []model.ComponentRef{s.From, s.To} {
			if _, ok := inv.Lookup(ref.Category, ref.Name); !ok {
				return nil, fmt.Errorf("suggestion %s -> %s (%s): %s: %w",
					s.From, s.To, s.Kind, ref, ErrDanglingReference)
			}
		}
	}

	out := &model.AnalysisModel{
		SchemaVersion: model.SchemaVersion,
		Repository:    repository,
		Components:    components,
		Relationships: rep.Edges,
		Suggestions:   rep.Suggestions,
		Summary:       buildSummary(inv, rep, warnings, frameworkOrder),
	}

	// The serial number is a content hash in UUID form: rerunning the
	// pipeline on identical inputs yields a byte-identical document.
	payload, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal model for serial derivation: %w", err)
	}
	out.SerialNumber = "urn:uuid:" + uuid.NewSHA1(serialNamespace, payload).String()

	return out, nil
}

func buildSummary(inv *detector.Inventory, rep *inference.Report, warnings []model.Warning, frameworkOrder []string) model.Summary {
	primary := inv.PrimaryFramework(frameworkOrder)

	counts := map[model.Category]int{}
	for cat, comps := range inv.All() {
		counts[cat] = len(comps)
	}

	high := 0
	for _, e := range rep.Edges {
		if e.Priority == model.PriorityHigh {
			high++
		}
	}

	return model.Summary{
		PrimaryFramework:    primary,
		SecondaryFrameworks: inv.SecondaryFrameworks(primary),
		CountsByCategory:    counts,
		FilesScanned:        inv.FilesScanned,
		TotalRelationships:  len(rep.Edges),
		TotalSuggestions:    len(rep.Suggestions),
		HighPriorityEdges:   high,
		Warnings:            warnings,
	}
}

// WriteJSON serialises v as indented JSON to the given path, or to stdout
// when path is "-". The document is fully marshalled before any byte is
// written, so a failed run leaves no partial artifact behind.
func WriteJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
