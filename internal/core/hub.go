package core

// hub.go implements the System Integrator Hub: the single read-only
// loader/accessor layer over the catalogue set.
//
// The hub is constructed once at process start and passed by reference to
// consumers. Catalogues load lazily on first access and are memoized for
// the process lifetime; a loaded catalogue is an immutable snapshot, so
// concurrent readers need no further coordination. Failed loads are not
// memoized, so callers may retry by calling GetCatalogue again.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/blakelabs/crt/internal/metrics"
	"github.com/blakelabs/crt/internal/source"
)

// Hub serves loaded catalogues by name and resolves entity lookups and
// cross-catalogue relationships.
type Hub struct {
	src source.Source
	rec *metrics.Recorder

	mu         sync.RWMutex
	catalogues map[string]*Catalogue
}

// Option configures a Hub.
type Option func(*Hub)

// WithMetrics attaches a metrics recorder to the hub.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(h *Hub) {
		h.rec = rec
	}
}

// NewHub creates a hub over the given catalogue source.
func NewHub(src source.Source, opts ...Option) *Hub {
	h := &Hub{
		src:        src,
		catalogues: make(map[string]*Catalogue),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetCatalogue returns the loaded catalogue for a name in the fixed set.
// The first successful load is memoized; subsequent calls return the same
// in-memory snapshot.
func (h *Hub) GetCatalogue(ctx context.Context, name string) (*Catalogue, error) {
	def, ok := Lookup(name)
	if !ok {
		return nil, &UnknownCatalogueError{Name: name}
	}

	h.mu.RLock()
	cat, loaded := h.catalogues[name]
	h.mu.RUnlock()
	if loaded {
		return cat, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Re-check: another caller may have loaded while we waited.
	if cat, loaded := h.catalogues[name]; loaded {
		return cat, nil
	}

	start := time.Now()
	cat, err := h.load(ctx, def)
	if err != nil {
		h.observeLoad(name, "error", 0)
		return nil, err
	}

	h.catalogues[name] = cat
	h.observeLoad(name, "ok", time.Since(start).Seconds())
	slog.Debug("catalogue loaded", "catalogue", name, "rows", cat.Len())
	return cat, nil
}

func (h *Hub) load(ctx context.Context, def Definition) (*Catalogue, error) {
	data, err := h.src.Read(ctx, def.Name)
	if err != nil {
		return nil, &LoadError{Catalogue: def.Name, Err: err}
	}

	cat, err := buildCatalogue(def, data)
	if err != nil {
		return nil, &LoadError{Catalogue: def.Name, Err: err}
	}
	return cat, nil
}

// ResolveEntity retrieves a single entity by its primary identifier.
// The match is exact and case-sensitive: identifiers follow fixed formats
// (CRT-C-0001, AS-1000), so no fuzzy matching is applied.
func (h *Hub) ResolveEntity(ctx context.Context, name, id string) (Entity, error) {
	cat, err := h.GetCatalogue(ctx, name)
	if err != nil {
		return nil, err
	}

	entity, ok := cat.Lookup(id)
	if !ok {
		h.observeLookup(name, "miss")
		return nil, &NotFoundError{Catalogue: name, ID: id}
	}

	h.observeLookup(name, "hit")
	// Hand out a copy so callers cannot mutate the memoized snapshot.
	return entity.Clone(), nil
}

// BuildRelationships parses a relationship field on an entity as a
// semicolon-separated identifier list and resolves each id against the
// target catalogue. Returns the resolved entities in list order.
//
// Unresolvable identifiers are skipped, not fatal: downstream consumers
// degrade gracefully when a mapping references an identifier that does
// not (yet) exist.
func (h *Hub) BuildRelationships(ctx context.Context, entity Entity, targetName, field string) ([]Entity, error) {
	target, err := h.GetCatalogue(ctx, targetName)
	if err != nil {
		return nil, err
	}

	value := entity[field]
	if looksCommaDelimited(value) {
		slog.Warn("relationship field appears comma-delimited; semicolon is canonical",
			"catalogue", targetName,
			"field", field,
		)
	}

	var related []Entity
	for _, id := range SplitIDList(value) {
		if e, ok := target.Lookup(id); ok {
			related = append(related, e)
		}
	}

	if h.rec != nil {
		h.rec.ObserveRelationResolution()
	}
	return related, nil
}

// RelatedFrom is the reverse direction: it returns entities in sourceName
// whose relationship field contains id. For example, the failures mapped
// to a control via mapped_control_ids.
func (h *Hub) RelatedFrom(ctx context.Context, sourceName, field, id string) ([]Entity, error) {
	src, err := h.GetCatalogue(ctx, sourceName)
	if err != nil {
		return nil, err
	}

	var related []Entity
	for _, row := range src.Rows {
		for _, ref := range SplitIDList(row[field]) {
			if ref == id {
				related = append(related, row)
				break
			}
		}
	}

	if h.rec != nil {
		h.rec.ObserveRelationResolution()
	}
	return related, nil
}

// edgeRule describes how entities in one catalogue point back at entities
// of a given primary id column.
type edgeRule struct {
	primaryID string // id column identifying the subject entity
	fromType  string
	source    string // catalogue scanned for references
	field     string // relationship field holding the id list
	rel       string
	toType    string
}

// edgeRules drives StructuralEdges. Controls are the backbone anchor:
// failure modes and compensations both point at controls through
// mapped_control_ids, and the structural lenses do the same.
var edgeRules = []edgeRule{
	{"control_id", "control", "CRT-F", "mapped_control_ids", "failure_implication", "failure"},
	{"control_id", "control", "CRT-N", "mapped_control_ids", "compensated_by", "compensation"},
	{"control_id", "control", "CRT-T", "mapped_control_ids", "observed_by", "telemetry"},
	{"control_id", "control", "CRT-AS", "mapped_control_ids", "protected_by", "asset"},
	{"control_id", "control", "CRT-D", "mapped_control_ids", "classified_under", "data_domain"},
	{"control_id", "control", "CRT-I", "mapped_control_ids", "anchored_by", "identity"},
	{"control_id", "control", "CRT-SC", "mapped_control_ids", "exposed_via", "vendor"},
}

// selfRule describes edges carried by the subject's own relationship
// fields rather than by rows referencing it.
type selfRule struct {
	primaryID string
	fromType  string
	field     string // id-list column on the subject entity
	target    string // catalogue the ids point into
	rel       string
	toType    string
}

var selfRules = []selfRule{
	{"as_id", "asset", "mapped_control_ids", "CRT-C", "protected_by", "control"},
	{"as_id", "asset", "mapped_data_class_ids", "CRT-D", "handles_data", "data_domain"},
}

// StructuralEdges builds the typed relationship edges for an entity by
// scanning the catalogues that reference it. Deterministic and
// catalogue-driven; catalogues that fail to load are skipped rather than
// failing the whole mapping.
func (h *Hub) StructuralEdges(ctx context.Context, entity Entity) ([]Edge, error) {
	var edges []Edge

	for _, rule := range edgeRules {
		id := entity[rule.primaryID]
		if id == "" {
			continue
		}

		src, err := h.GetCatalogue(ctx, rule.source)
		if err != nil {
			if IsLoadError(err) {
				slog.Warn("skipping edge source", "catalogue", rule.source, "error", err)
				continue
			}
			return nil, err
		}

		def, _ := Lookup(rule.source)
		for _, row := range src.Rows {
			for _, ref := range SplitIDList(row[rule.field]) {
				if ref == id {
					edges = append(edges, Edge{
						FromType: rule.fromType,
						FromID:   id,
						Rel:      rule.rel,
						ToType:   rule.toType,
						ToID:     row[def.PrimaryID],
					})
					break
				}
			}
		}
	}

	for _, rule := range selfRules {
		id := entity[rule.primaryID]
		if id == "" {
			continue
		}

		target, err := h.GetCatalogue(ctx, rule.target)
		if err != nil {
			if IsLoadError(err) {
				slog.Warn("skipping edge target", "catalogue", rule.target, "error", err)
				continue
			}
			return nil, err
		}

		for _, ref := range SplitIDList(entity[rule.field]) {
			if _, ok := target.Lookup(ref); !ok {
				continue
			}
			edges = append(edges, Edge{
				FromType: rule.fromType,
				FromID:   id,
				Rel:      rule.rel,
				ToType:   rule.toType,
				ToID:     ref,
			})
		}
	}

	return edges, nil
}

// Invalidate drops the memoized snapshot for a catalogue so the next
// access reloads it. Used after appending organisation rows.
func (h *Hub) Invalidate(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.catalogues, name)
}

// Preload loads every registered catalogue. Load failures are reported
// per catalogue and do not abort the remaining loads; the hub keeps
// serving the catalogues that did load.
func (h *Hub) Preload(ctx context.Context) error {
	var failed int
	for _, def := range All() {
		if _, err := h.GetCatalogue(ctx, def.Name); err != nil {
			failed++
			slog.Warn("catalogue preload failed", "catalogue", def.Name, "error", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d catalogues failed to load", failed, CatalogueCount())
	}
	return nil
}

func (h *Hub) observeLoad(name, result string, seconds float64) {
	if h.rec != nil {
		h.rec.ObserveLoad(name, result, seconds)
	}
}

func (h *Hub) observeLookup(name, result string) {
	if h.rec != nil {
		h.rec.ObserveLookup(name, result)
	}
}
