package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/blakelabs/crt/internal/core"
	"github.com/blakelabs/crt/internal/logging"
	"github.com/go-chi/chi/v5"
)

// catalogueSummary is the listing entry for one catalogue.
type catalogueSummary struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	PrimaryID string `json:"primaryId"`
	Rows      int    `json:"rows"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// catalogueResponse is the full content of one catalogue.
type catalogueResponse struct {
	Name      string        `json:"name"`
	Kind      string        `json:"kind"`
	Label     string        `json:"label"`
	PrimaryID string        `json:"primaryId"`
	Columns   []string      `json:"columns"`
	Rows      []core.Entity `json:"rows"`
}

// handleListCatalogues returns the fixed catalogue set with load state.
// A catalogue that fails to load is reported as unavailable rather than
// failing the whole listing.
func (s *Server) handleListCatalogues(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	out := make([]catalogueSummary, 0, len(defs))

	for _, def := range defs {
		summary := catalogueSummary{
			Name:      def.Name,
			Kind:      string(def.Kind),
			Label:     def.Label,
			PrimaryID: def.PrimaryID,
		}

		cat, err := s.hub.GetCatalogue(r.Context(), def.Name)
		if err != nil {
			summary.Error = core.MapError(err).Code
		} else {
			summary.Available = true
			summary.Rows = cat.Len()
		}

		out = append(out, summary)
	}

	writeJSON(w, out)
}

func (s *Server) handleGetCatalogue(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	cat, err := s.hub.GetCatalogue(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, catalogueResponse{
		Name:      cat.Name,
		Kind:      string(cat.Kind),
		Label:     cat.Label,
		PrimaryID: cat.PrimaryID,
		Columns:   cat.Columns,
		Rows:      cat.Rows,
	})
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")

	entity, err := s.hub.ResolveEntity(r.Context(), name, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, entity)
}

// handleRelated resolves a relationship field on an entity against a
// target catalogue: ?target=CRT-C&field=mapped_control_ids.
// Dangling identifiers are omitted, so the result may be shorter than
// the field's id list.
func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")
	target := r.URL.Query().Get("target")
	field := r.URL.Query().Get("field")

	if target == "" || field == "" {
		http.Error(w, `{"error":"target and field query parameters are required"}`, http.StatusBadRequest)
		return
	}

	entity, err := s.hub.ResolveEntity(r.Context(), name, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	related, err := s.hub.BuildRelationships(r.Context(), entity, target, field)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if related == nil {
		related = []core.Entity{}
	}

	writeJSON(w, related)
}

// handleReferencing is the reverse direction of handleRelated: it
// returns entities in a source catalogue whose relationship field
// contains this entity's id: ?source=CRT-F&field=mapped_control_ids.
func (s *Server) handleReferencing(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")
	src := r.URL.Query().Get("source")
	field := r.URL.Query().Get("field")

	if src == "" || field == "" {
		http.Error(w, `{"error":"source and field query parameters are required"}`, http.StatusBadRequest)
		return
	}

	// The subject entity must exist before scanning for references.
	if _, err := s.hub.ResolveEntity(r.Context(), name, id); err != nil {
		s.respondError(w, r, err)
		return
	}

	referencing, err := s.hub.RelatedFrom(r.Context(), src, field, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if referencing == nil {
		referencing = []core.Entity{}
	}

	writeJSON(w, referencing)
}

func (s *Server) handleEdges(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")

	entity, err := s.hub.ResolveEntity(r.Context(), name, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	edges, err := s.hub.StructuralEdges(r.Context(), entity)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if edges == nil {
		edges = []core.Edge{}
	}

	writeJSON(w, edges)
}

// entityGroupFor maps a catalogue name to its bundle entity group and
// singular type label. Catalogues outside the locked entity groups
// (policies, standards, groups, requirements, obligations) return "".
func entityGroupFor(name string) (group, entityType string) {
	switch name {
	case "CRT-C":
		return "controls", "control"
	case "CRT-F":
		return "failures", "failure"
	case "CRT-AS":
		return "assets", "asset"
	case "CRT-I":
		return "identities", "identity"
	case "CRT-D":
		return "data_domains", "data_domain"
	case "CRT-SC":
		return "vendors", "vendor"
	case "CRT-T":
		return "telemetry", "telemetry"
	default:
		return "", ""
	}
}

// handleEntityBundle assembles a locked-schema structural bundle around
// one entity: the entity itself, its structural edges, and the entities
// those edges point at, grouped by type.
func (s *Server) handleEntityBundle(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")

	bundleType := r.URL.Query().Get("type")
	if bundleType == "" {
		bundleType = core.BundleArchitecture
	}

	cat, err := s.hub.GetCatalogue(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	entity, ok := cat.Lookup(id)
	if !ok {
		s.respondError(w, r, &core.NotFoundError{Catalogue: name, ID: id})
		return
	}

	state := core.NewBundleState()

	group, entityType := entityGroupFor(name)
	if entityType == "" {
		entityType = cat.PrimaryID
	}
	state.Primary = core.PrimaryEntity{Type: entityType, ID: id}
	if group != "" {
		state.AddEntity(group, entity)
	}

	edges, err := s.hub.StructuralEdges(r.Context(), entity)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	state.AddRelationships(edges)

	for _, edge := range edges {
		for _, def := range core.All() {
			g, t := entityGroupFor(def.Name)
			if g == "" || t != edge.ToType {
				continue
			}
			if related, err := s.hub.ResolveEntity(r.Context(), def.Name, edge.ToID); err == nil {
				state.AddEntity(g, related)
			}
			break
		}
	}

	if len(edges) == 0 {
		state.NoteGap("no structural references to this entity", map[string]string{
			"catalogue": name,
			"id":        id,
		})
	}

	bundle := state.Build("SIH", bundleType, nil)
	logging.FromContext(r.Context()).Debug("bundle assembled",
		"catalogue", name,
		"id", id,
		"edges", len(edges),
	)

	writeJSON(w, bundle)
}

// handleView serves the derived JSON projection for a catalogue.
// Only available when the catalogue source is a local directory.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if s.views == nil || !s.cfg.Catalogue.ViewsEnabled {
		http.Error(w, `{"error":"JSON views are not available for this catalogue source"}`, http.StatusNotFound)
		return
	}

	name := chi.URLParam(r, "name")
	view, err := s.views.Load(name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, view)
}

// appendRequest is the payload for the organisation-extension endpoint.
type appendRequest struct {
	Rows []core.Entity `json:"rows"`
}

// handleAppend adds organisation rows to an append-only catalogue.
// Invalid rows are skipped and reported; the response always describes
// the full batch outcome.
func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req appendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"invalid request body: %v"}`, err), http.StatusBadRequest)
		return
	}
	if len(req.Rows) == 0 {
		http.Error(w, `{"error":"rows must not be empty"}`, http.StatusBadRequest)
		return
	}

	result, err := s.hub.AppendEntities(r.Context(), name, req.Rows)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("append processed",
		"catalogue", name,
		"batch_id", result.BatchID,
		"appended", result.Appended,
		"skipped", result.Skipped,
	)

	writeJSON(w, result)
}
