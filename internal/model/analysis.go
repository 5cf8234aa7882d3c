package model

// SchemaVersion identifies the AnalysisModel document layout. Bump on any
// incompatible change so the diagram renderer can refuse stale documents.
const SchemaVersion = "1"

// Warning records a file that could not be read or decoded. Warnings are
// non-fatal: the file is skipped and the run continues.
type Warning struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Summary aggregates per-run counts for the diagram renderer's title block.
type Summary struct {
	PrimaryFramework     string           `json:"primaryFramework"`
	SecondaryFrameworks  []string         `json:"secondaryFrameworks,omitempty"`
	CountsByCategory     map[Category]int `json:"countsByCategory"`
	FilesScanned         int              `json:"filesScanned"`
	TotalRelationships   int              `json:"totalRelationships"`
	TotalSuggestions     int              `json:"totalSuggestions"`
	HighPriorityEdges    int              `json:"highPriorityEdges"`
	Warnings             []Warning        `json:"warnings,omitempty"`
}

// AnalysisModel is the canonical artifact crossing the core/renderer
// boundary: the full component inventory plus the inferred relationship
// graph. The renderer reads it read-only.
type AnalysisModel struct {
	SchemaVersion string                   `json:"schemaVersion"`
	SerialNumber  string                   `json:"serialNumber"`
	Repository    string                   `json:"repository"`
	Components    map[Category][]Component `json:"components"`
	Relationships []Edge                   `json:"relationships"`
	Suggestions   []Suggestion             `json:"suggestions"`
	Summary       Summary                  `json:"summary"`
}
