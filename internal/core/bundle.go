package core

// bundle.go assembles normalised structural bundles for downstream
// consumers. Bundles follow a locked schema: entity slices grouped by
// type, typed relationship edges, structural findings, and guardrail
// flags. The builder never embeds narrative text, generates
// recommendations, or interprets catalogue content; it only assembles
// structured data.

import (
	"encoding/json"
)

// Approved bundle types.
const (
	BundleArchitecture = "architecture"
	BundleExposure     = "exposure"
	BundleMetrics      = "metrics"
	BundleSimulation   = "simulation"
	BundleSupplyChain  = "supply_chain"
	BundleIdentity     = "identity"
	BundleData         = "data"
	BundleGovernance   = "governance"
	BundleSignals      = "signals"
	BundleObservation  = "observation"
)

// Entity type groups in the locked schema.
var bundleEntityTypes = []string{
	"assets", "identities", "data_domains", "vendors",
	"controls", "failures", "telemetry",
}

// bundleRequiredKeys is the locked top-level key set.
var bundleRequiredKeys = []string{
	"bundle_type", "module", "primary_entity",
	"entities", "relationships", "structural_findings",
	"guardrails",
}

// Gap is a structural gap registered in the findings.
type Gap struct {
	Description string            `json:"description"`
	Context     map[string]string `json:"context,omitempty"`
}

// Compensation notes that a specific compensating control is relevant.
type Compensation struct {
	NID   string `json:"n_id"`
	Notes string `json:"notes,omitempty"`
}

// Findings holds the structural findings block of a bundle.
type Findings struct {
	Gaps             []Gap          `json:"gaps"`
	Compensations    []Compensation `json:"compensations"`
	Coverage         map[string]any `json:"coverage"`
	PropagationPaths [][]Edge       `json:"propagation_paths"`
}

// PrimaryEntity identifies what a bundle is about.
type PrimaryEntity struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Bundle is the fully assembled, locked-schema structure.
type Bundle struct {
	BundleType         string              `json:"bundle_type"`
	Module             string              `json:"module"`
	PrimaryEntity      PrimaryEntity       `json:"primary_entity"`
	Entities           map[string][]Entity `json:"entities"`
	Relationships      []Edge              `json:"relationships"`
	StructuralFindings Findings            `json:"structural_findings"`
	Guardrails         map[string]bool     `json:"guardrails"`
}

// BundleState organises structural data while a module collects it, before
// assembly into the locked schema.
type BundleState struct {
	Primary       PrimaryEntity
	entities      map[string][]Entity
	relationships []Edge
	findings      Findings
}

// NewBundleState creates a fresh, empty state with all locked entity
// groups present.
func NewBundleState() *BundleState {
	entities := make(map[string][]Entity, len(bundleEntityTypes))
	for _, t := range bundleEntityTypes {
		entities[t] = []Entity{}
	}
	return &BundleState{
		entities: entities,
		findings: Findings{
			Gaps:             []Gap{},
			Compensations:    []Compensation{},
			Coverage:         map[string]any{},
			PropagationPaths: [][]Edge{},
		},
	}
}

// AddEntity adds one catalogue row to the named entity group.
// Unknown group names create a new group rather than failing, keeping
// behaviour predictable.
func (s *BundleState) AddEntity(entityType string, entity Entity) {
	s.entities[entityType] = append(s.entities[entityType], entity)
}

// AddRelationship records a structural relationship edge.
func (s *BundleState) AddRelationship(edge Edge) {
	s.relationships = append(s.relationships, edge)
}

// AddRelationships records a set of edges in order.
func (s *BundleState) AddRelationships(edges []Edge) {
	s.relationships = append(s.relationships, edges...)
}

// NoteGap registers a structural gap. Context should stay structural
// (identifiers, not prose).
func (s *BundleState) NoteGap(description string, context map[string]string) {
	s.findings.Gaps = append(s.findings.Gaps, Gap{
		Description: description,
		Context:     context,
	})
}

// NoteCompensation registers that a compensating control is relevant.
func (s *BundleState) NoteCompensation(nID, notes string) {
	s.findings.Compensations = append(s.findings.Compensations, Compensation{
		NID:   nID,
		Notes: notes,
	})
}

// SetCoverage sets the coverage structure for the bundle.
func (s *BundleState) SetCoverage(coverage map[string]any) {
	s.findings.Coverage = coverage
}

// AddPropagationPath records how a failure could traverse entities.
func (s *BundleState) AddPropagationPath(path []Edge) {
	s.findings.PropagationPaths = append(s.findings.PropagationPaths, path)
}

// Build assembles the locked-schema bundle. The core guardrails
// (no_advice, no_configuration, no_assurance) are always enforced;
// extraGuardrails may add further flags but cannot clear the core ones.
func (s *BundleState) Build(module, bundleType string, extraGuardrails map[string]bool) Bundle {
	guardrails := map[string]bool{
		"no_advice":        true,
		"no_configuration": true,
		"no_assurance":     true,
	}
	for k, v := range extraGuardrails {
		guardrails[k] = v
	}
	guardrails["no_advice"] = true
	guardrails["no_configuration"] = true
	guardrails["no_assurance"] = true

	entities := make(map[string][]Entity, len(bundleEntityTypes))
	for _, t := range bundleEntityTypes {
		entities[t] = s.entities[t]
	}
	for t, list := range s.entities {
		entities[t] = list
	}

	relationships := s.relationships
	if relationships == nil {
		relationships = []Edge{}
	}

	return Bundle{
		BundleType:         bundleType,
		Module:             module,
		PrimaryEntity:      s.Primary,
		Entities:           entities,
		Relationships:      relationships,
		StructuralFindings: s.findings,
		Guardrails:         guardrails,
	}
}

// ValidateBundle ensures a decoded bundle matches the locked key set.
// Used before export or handoff of externally supplied bundles.
func ValidateBundle(bundle map[string]any) bool {
	for _, key := range bundleRequiredKeys {
		if _, ok := bundle[key]; !ok {
			return false
		}
	}
	return true
}

// PrettyJSON produces a deterministic, indented JSON rendering of a
// bundle for display or export panels.
func PrettyJSON(bundle Bundle) string {
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
