package core

import (
	"context"
	"strings"
	"testing"

	"github.com/blakelabs/crt/internal/source"
)

// ============================================================================
// GetCatalogue Tests
// ============================================================================

func TestGetCatalogue(t *testing.T) {
	hub := newTestHub()

	cat, err := hub.GetCatalogue(context.Background(), "CRT-C")
	if err != nil {
		t.Fatalf("GetCatalogue: %v", err)
	}
	if cat.Name != "CRT-C" || cat.Kind != KindBackbone {
		t.Errorf("unexpected catalogue identity: %s/%s", cat.Name, cat.Kind)
	}
	if cat.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", cat.Len())
	}
}

func TestGetCatalogueUnknownName(t *testing.T) {
	hub := newTestHub()

	_, err := hub.GetCatalogue(context.Background(), "CRT-X")
	if !IsUnknownCatalogue(err) {
		t.Fatalf("expected UnknownCatalogueError, got %v", err)
	}
}

func TestGetCatalogueMemoizesSnapshot(t *testing.T) {
	src := newTestSource()
	hub := NewHub(src)

	first, err := hub.GetCatalogue(context.Background(), "CRT-C")
	if err != nil {
		t.Fatalf("first load: %v", err)
	}

	// Replacing the backing data must not affect the memoized snapshot.
	src.Set("CRT-C", []byte("control_id\nCRT-C-9999\n"))

	second, err := hub.GetCatalogue(context.Background(), "CRT-C")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first != second {
		t.Error("expected the identical in-memory snapshot on repeated access")
	}
}

func TestGetCatalogueFailedLoadIsRetryable(t *testing.T) {
	src := source.NewMemory()
	hub := NewHub(src)

	_, err := hub.GetCatalogue(context.Background(), "CRT-C")
	if !IsLoadError(err) {
		t.Fatalf("expected LoadError for missing data, got %v", err)
	}

	// Failures are not memoized: provide the data and retry.
	src.Set("CRT-C", []byte(testFixtures["CRT-C"]))

	cat, err := hub.GetCatalogue(context.Background(), "CRT-C")
	if err != nil {
		t.Fatalf("retry after seeding: %v", err)
	}
	if cat.Len() != 2 {
		t.Errorf("expected 2 rows after retry, got %d", cat.Len())
	}
}

func TestGetCatalogueDuplicateID(t *testing.T) {
	src := source.NewMemory()
	src.Set("CRT-C", []byte("control_id\nCRT-C-0001\nCRT-C-0001\n"))
	hub := NewHub(src)

	_, err := hub.GetCatalogue(context.Background(), "CRT-C")
	if !IsLoadError(err) {
		t.Fatalf("expected LoadError for duplicate id, got %v", err)
	}
	if !strings.Contains(err.Error(), "duplicate primary id") {
		t.Errorf("error does not name the duplicate: %v", err)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	src := newTestSource()
	hub := NewHub(src)

	if _, err := hub.GetCatalogue(context.Background(), "CRT-C"); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	src.Set("CRT-C", []byte("control_id\nCRT-C-9999\n"))
	hub.Invalidate("CRT-C")

	cat, err := hub.GetCatalogue(context.Background(), "CRT-C")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := cat.Lookup("CRT-C-9999"); !ok {
		t.Error("reload should observe the replaced data")
	}
}

// ============================================================================
// ResolveEntity Tests
// ============================================================================

func TestResolveEntity(t *testing.T) {
	hub := newTestHub()

	entity, err := hub.ResolveEntity(context.Background(), "CRT-C", "CRT-C-0001")
	if err != nil {
		t.Fatalf("ResolveEntity: %v", err)
	}
	if entity["control_id"] != "CRT-C-0001" {
		t.Errorf("unexpected control_id: %q", entity["control_id"])
	}
	if entity["control_name"] != "Data Classification Framework" {
		t.Errorf("unexpected control_name: %q", entity["control_name"])
	}
}

func TestResolveEntityNotFound(t *testing.T) {
	hub := newTestHub()

	_, err := hub.ResolveEntity(context.Background(), "CRT-C", "CRT-C-9999")
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestResolveEntityCaseSensitive(t *testing.T) {
	hub := newTestHub()

	// Lowercasing a valid identifier must miss: matching is exact.
	_, err := hub.ResolveEntity(context.Background(), "CRT-C", "crt-c-0001")
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError for lowercased id, got %v", err)
	}
}

// ============================================================================
// BuildRelationships Tests
// ============================================================================

func TestBuildRelationships(t *testing.T) {
	hub := newTestHub()
	ctx := context.Background()

	failure, err := hub.ResolveEntity(ctx, "CRT-F", "CRT-F-0002")
	if err != nil {
		t.Fatalf("ResolveEntity: %v", err)
	}

	related, err := hub.BuildRelationships(ctx, failure, "CRT-C", "mapped_control_ids")
	if err != nil {
		t.Fatalf("BuildRelationships: %v", err)
	}
	if len(related) != 2 {
		t.Fatalf("expected 2 related controls, got %d", len(related))
	}
	if related[0]["control_id"] != "CRT-C-0001" || related[1]["control_id"] != "CRT-C-0002" {
		t.Errorf("related controls out of order: %v, %v",
			related[0]["control_id"], related[1]["control_id"])
	}
}

func TestBuildRelationshipsSkipsDanglingIDs(t *testing.T) {
	hub := newTestHub()

	entity := Entity{"mapped_control_ids": "CRT-C-0001;CRT-C-9999"}
	related, err := hub.BuildRelationships(context.Background(), entity, "CRT-C", "mapped_control_ids")
	if err != nil {
		t.Fatalf("BuildRelationships: %v", err)
	}
	if len(related) != 1 {
		t.Fatalf("dangling id should be skipped, got %d entities", len(related))
	}
	if related[0]["control_id"] != "CRT-C-0001" {
		t.Errorf("unexpected resolved entity: %v", related[0])
	}
}

func TestBuildRelationshipsEmptyField(t *testing.T) {
	hub := newTestHub()

	for _, value := range []string{"", "   "} {
		entity := Entity{"mapped_control_ids": value}
		related, err := hub.BuildRelationships(context.Background(), entity, "CRT-C", "mapped_control_ids")
		if err != nil {
			t.Fatalf("BuildRelationships(%q): %v", value, err)
		}
		if len(related) != 0 {
			t.Errorf("value %q should resolve to no entities, got %d", value, len(related))
		}
	}
}

func TestBuildRelationshipsUnknownTarget(t *testing.T) {
	hub := newTestHub()

	entity := Entity{"mapped_control_ids": "CRT-C-0001"}
	_, err := hub.BuildRelationships(context.Background(), entity, "CRT-X", "mapped_control_ids")
	if !IsUnknownCatalogue(err) {
		t.Fatalf("expected UnknownCatalogueError, got %v", err)
	}
}

// ============================================================================
// RelatedFrom Tests
// ============================================================================

func TestRelatedFrom(t *testing.T) {
	hub := newTestHub()

	failures, err := hub.RelatedFrom(context.Background(), "CRT-F", "mapped_control_ids", "CRT-C-0001")
	if err != nil {
		t.Fatalf("RelatedFrom: %v", err)
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures mapped to CRT-C-0001, got %d", len(failures))
	}
}

func TestRelatedFromNoMatches(t *testing.T) {
	hub := newTestHub()

	failures, err := hub.RelatedFrom(context.Background(), "CRT-F", "mapped_control_ids", "CRT-C-9999")
	if err != nil {
		t.Fatalf("RelatedFrom: %v", err)
	}
	if len(failures) != 0 {
		t.Errorf("expected no matches, got %d", len(failures))
	}
}

// ============================================================================
// StructuralEdges Tests
// ============================================================================

func TestStructuralEdgesForControl(t *testing.T) {
	hub := newTestHub()
	ctx := context.Background()

	control, err := hub.ResolveEntity(ctx, "CRT-C", "CRT-C-0001")
	if err != nil {
		t.Fatalf("ResolveEntity: %v", err)
	}

	edges, err := hub.StructuralEdges(ctx, control)
	if err != nil {
		t.Fatalf("StructuralEdges: %v", err)
	}

	byRel := make(map[string][]string)
	for _, e := range edges {
		if e.FromType != "control" || e.FromID != "CRT-C-0001" {
			t.Errorf("edge from wrong subject: %+v", e)
		}
		byRel[e.Rel] = append(byRel[e.Rel], e.ToID)
	}

	// Both fixture failures map to CRT-C-0001.
	if got := byRel["failure_implication"]; len(got) != 2 {
		t.Errorf("failure_implication targets = %v, want CRT-F-0001 and CRT-F-0002", got)
	}

	want := map[string]string{
		"compensated_by":   "CRT-N-0001",
		"observed_by":      "T-0001",
		"protected_by":     "AS-0001",
		"classified_under": "D-0001",
		"exposed_via":      "SC-0001",
	}
	for rel, toID := range want {
		if got := byRel[rel]; len(got) != 1 || got[0] != toID {
			t.Errorf("rel %s: got targets %v, want [%s]", rel, got, toID)
		}
	}
}

func TestStructuralEdgesForAsset(t *testing.T) {
	hub := newTestHub()
	ctx := context.Background()

	asset, err := hub.ResolveEntity(ctx, "CRT-AS", "AS-0001")
	if err != nil {
		t.Fatalf("ResolveEntity: %v", err)
	}

	edges, err := hub.StructuralEdges(ctx, asset)
	if err != nil {
		t.Fatalf("StructuralEdges: %v", err)
	}

	var handlesData, protectedBy bool
	for _, e := range edges {
		if e.Rel == "handles_data" && e.FromID == "AS-0001" && e.ToID == "D-0001" {
			handlesData = true
		}
		if e.Rel == "protected_by" && e.FromID == "AS-0001" && e.ToID == "CRT-C-0001" {
			protectedBy = true
		}
	}
	if !handlesData {
		t.Errorf("expected a handles_data edge AS-0001 -> D-0001, got %v", edges)
	}
	if !protectedBy {
		t.Errorf("expected a protected_by edge AS-0001 -> CRT-C-0001, got %v", edges)
	}

	// A dangling data-class reference must not produce an edge.
	dangling := Entity{"as_id": "AS-0002", "mapped_data_class_ids": "D-9999"}
	edges, err = hub.StructuralEdges(ctx, dangling)
	if err != nil {
		t.Fatalf("StructuralEdges: %v", err)
	}
	if len(edges) != 0 {
		t.Errorf("dangling references should produce no edges, got %v", edges)
	}
}

func TestStructuralEdgesSkipsFailedSources(t *testing.T) {
	src := newTestSource()
	src.Set("CRT-F", []byte("wrong_column\nvalue\n")) // breaks the CRT-F load
	hub := NewHub(src)
	ctx := context.Background()

	control, err := hub.ResolveEntity(ctx, "CRT-C", "CRT-C-0001")
	if err != nil {
		t.Fatalf("ResolveEntity: %v", err)
	}

	edges, err := hub.StructuralEdges(ctx, control)
	if err != nil {
		t.Fatalf("StructuralEdges should tolerate a failed source: %v", err)
	}
	for _, e := range edges {
		if e.ToType == "failure" {
			t.Errorf("edges from the failed catalogue should be absent: %+v", e)
		}
	}
	// The remaining sources still contribute.
	if len(edges) == 0 {
		t.Error("expected edges from the healthy catalogues")
	}
}

// ============================================================================
// Preload Tests
// ============================================================================

func TestPreload(t *testing.T) {
	src := source.NewMemory()
	for _, def := range All() {
		if data, ok := testFixtures[def.Name]; ok {
			src.Set(def.Name, []byte(data))
		} else {
			src.Set(def.Name, []byte(def.PrimaryID+"\n"))
		}
	}
	hub := NewHub(src)

	if err := hub.Preload(context.Background()); err != nil {
		t.Fatalf("Preload: %v", err)
	}
}

func TestPreloadReportsPartialFailure(t *testing.T) {
	src := source.NewMemory()
	src.Set("CRT-C", []byte(testFixtures["CRT-C"]))
	hub := NewHub(src)

	err := hub.Preload(context.Background())
	if err == nil {
		t.Fatal("expected an error when most catalogues are missing")
	}
	if !strings.Contains(err.Error(), "failed to load") {
		t.Errorf("unexpected error text: %v", err)
	}

	// The catalogue that did load keeps serving.
	if _, err := hub.GetCatalogue(context.Background(), "CRT-C"); err != nil {
		t.Errorf("loaded catalogue should remain available: %v", err)
	}
}
