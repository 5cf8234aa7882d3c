package output

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/archmap/internal/detector"
	"github.com/StinkyLord/archmap/internal/inference"
	"github.com/StinkyLord/archmap/internal/model"
	"github.com/StinkyLord/archmap/internal/rules"
	"github.com/StinkyLord/archmap/internal/scanner"
)

func fixtureInventory(t *testing.T) (*detector.Inventory, *inference.Report) {
	t.Helper()
	table, err := rules.New(nil)
	require.NoError(t, err)

	files := []scanner.SourceFile{
		{Path: "app/main.py", Content: "from fastapi import FastAPI", Language: "python"},
		{Path: "services/user_service.py", Content: "from .auth_service import AuthService\nimport psycopg2", Language: "python"},
		{Path: "services/auth_service.py", Content: "class AuthService: pass", Language: "python"},
	}

	inv := detector.New(table, nil).Detect(files)
	rep := inference.New(table, nil).Infer(inv, files)
	return inv, rep
}

func TestBuildModelAssemblesAllSections(t *testing.T) {
	inv, rep := fixtureInventory(t)

	m, err := BuildModel("myrepo", inv, rep, nil, []string{"FastAPI"})
	require.NoError(t, err)

	assert.Equal(t, model.SchemaVersion, m.SchemaVersion)
	assert.Equal(t, "myrepo", m.Repository)
	assert.Equal(t, "FastAPI", m.Summary.PrimaryFramework)
	assert.Equal(t, 3, m.Summary.FilesScanned)
	assert.Equal(t, len(rep.Edges), m.Summary.TotalRelationships)
	assert.Equal(t, len(rep.Suggestions), m.Summary.TotalSuggestions)
	assert.Equal(t, 2, m.Summary.CountsByCategory[model.CategoryService])
	assert.NotEmpty(t, m.Relationships)

	high := 0
	for _, e := range m.Relationships {
		if e.Priority == model.PriorityHigh {
			high++
		}
	}
	assert.Equal(t, high, m.Summary.HighPriorityEdges)
}

func TestBuildModelIsDeterministic(t *testing.T) {
	inv, rep := fixtureInventory(t)

	first, err := BuildModel("myrepo", inv, rep, nil, nil)
	require.NoError(t, err)
	second, err := BuildModel("myrepo", inv, rep, nil, nil)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)

	assert.Equal(t, a, b, "identical inputs must yield byte-identical documents")
	assert.Equal(t, first.SerialNumber, second.SerialNumber)
	assert.Regexp(t, `^urn:uuid:[0-9a-f-]{36}$`, first.SerialNumber)
}

func TestBuildModelSerialReflectsContent(t *testing.T) {
	inv, rep := fixtureInventory(t)

	first, err := BuildModel("repo-a", inv, rep, nil, nil)
	require.NoError(t, err)
	second, err := BuildModel("repo-b", inv, rep, nil, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.SerialNumber, second.SerialNumber)
}

func TestBuildModelRejectsDanglingEdge(t *testing.T) {
	inv, rep := fixtureInventory(t)

	rep.Edges = append(rep.Edges, model.Edge{
		From:     model.ComponentRef{Category: model.CategoryService, Name: "user_service"},
		To:       model.ComponentRef{Category: model.CategoryService, Name: "phantom_service"},
		Kind:     model.KindServiceToService,
		Priority: model.PriorityHigh,
	})

	_, err := BuildModel("myrepo", inv, rep, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDanglingReference)
	assert.Contains(t, err.Error(), "phantom_service")
}

func TestBuildModelRejectsDanglingSuggestion(t *testing.T) {
	inv, rep := fixtureInventory(t)

	rep.Suggestions = append(rep.Suggestions, model.Suggestion{
		From:      model.ComponentRef{Category: model.CategoryService, Name: "auth_service"},
		To:        model.ComponentRef{Category: model.CategoryService, Name: "phantom_service"},
		Kind:      model.KindServiceToService,
		Priority:  model.PriorityLow,
		Rationale: "made up",
	})

	_, err := BuildModel("myrepo", inv, rep, nil, nil)
	assert.ErrorIs(t, err, ErrDanglingReference)
}

func TestWriteJSONToFile(t *testing.T) {
	inv, rep := fixtureInventory(t)
	m, err := BuildModel("myrepo", inv, rep, nil, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "analysis.json")
	require.NoError(t, WriteJSON(m, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), data[len(data)-1])

	var decoded model.AnalysisModel
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m.SerialNumber, decoded.SerialNumber)
	assert.Equal(t, m.Repository, decoded.Repository)
	assert.Len(t, decoded.Relationships, len(m.Relationships))
}

func TestInventoryDocRoundTrip(t *testing.T) {
	inv, _ := fixtureInventory(t)

	warnings := []model.Warning{{Path: "bin/blob", Reason: "binary content"}}
	doc := BuildInventoryDoc("myrepo", inv, warnings, []string{"FastAPI"})
	assert.Equal(t, "FastAPI", doc.PrimaryFramework)

	path := filepath.Join(t.TempDir(), "inventory.json")
	require.NoError(t, WriteJSON(doc, path))

	loaded, restored, err := LoadInventoryDoc(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Repository, loaded.Repository)
	assert.Equal(t, doc.Warnings, loaded.Warnings)
	assert.Equal(t, inv.FilesScanned, restored.FilesScanned)
	assert.Equal(t, inv.All(), restored.All())
}

func TestLoadInventoryDocRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schemaVersion":"99","repository":"r","components":{}}`), 0644))

	_, _, err := LoadInventoryDoc(path)
	assert.ErrorIs(t, err, ErrSchemaVersion)
}

func TestLoadInventoryDocRejectsUnknownCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	body := `{"schemaVersion":"` + model.SchemaVersion + `","repository":"r","components":{"blockchain":[]}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	_, _, err := LoadInventoryDoc(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestLoadInventoryDocMissingFile(t *testing.T) {
	_, _, err := LoadInventoryDoc(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestRelationsDoc(t *testing.T) {
	_, rep := fixtureInventory(t)

	doc := BuildRelationsDoc("myrepo", rep)
	assert.Equal(t, model.SchemaVersion, doc.SchemaVersion)
	assert.Equal(t, rep.Edges, doc.Relationships)
	assert.Equal(t, rep.Suggestions, doc.Suggestions)
}

func TestPipelineEndToEnd(t *testing.T) {
	// Full pipeline over a real temporary tree: scan, detect, infer, build,
	// write, reload.
	root := t.TempDir()
	write := func(rel, content string) {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	write("app/main.py", "from fastapi import FastAPI\napp = FastAPI()")
	write("services/user_service.py", "from .auth_service import AuthService\nimport psycopg2")
	write("services/auth_service.py", "class AuthService: pass")
	write("Dockerfile", "FROM python:3.12")

	table, err := rules.New(nil)
	require.NoError(t, err)

	sc := scanner.New(root, nil)
	res, err := sc.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Files, 4)

	inv := detector.New(table, nil).Detect(res.Files)
	rep := inference.New(table, nil).Infer(inv, res.Files)

	m, err := BuildModel(filepath.Base(root), inv, rep, res.Warnings, table.FrameworkPriority())
	require.NoError(t, err)
	assert.Equal(t, "FastAPI", m.Summary.PrimaryFramework)
	require.Contains(t, m.Components, model.CategoryContainer)
	assert.Equal(t, "Docker", m.Components[model.CategoryContainer][0].Name)

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(m, path))

	again, err := BuildModel(filepath.Base(root), inv, rep, res.Warnings, table.FrameworkPriority())
	require.NoError(t, err)
	assert.Equal(t, m.SerialNumber, again.SerialNumber)
}
