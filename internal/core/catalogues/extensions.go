package catalogues

import "github.com/blakelabs/crt/internal/core"

// Append-only catalogues may gain organisation-specific rows between runs.
// Existing rows are never altered by the tool.

func init() {
	core.Register(core.Definition{
		Name:      "CRT-REQ",
		Kind:      core.KindAppendOnly,
		Label:     "Requirements",
		PrimaryID: "requirement_id",
		IDPrefix:  "REQ-",
	})

	core.Register(core.Definition{
		Name:      "CRT-LR",
		Kind:      core.KindAppendOnly,
		Label:     "Legal & Regulatory Obligations",
		PrimaryID: "lr_id",
		IDPrefix:  "LR-",
	})

	core.Register(core.Definition{
		Name:               "CRT-D",
		Kind:               core.KindAppendOnly,
		Label:              "Data & Classification",
		PrimaryID:          "d_id",
		IDPrefix:           "D-",
		RelationshipFields: []string{"mapped_control_ids"},
	})

	core.Register(core.Definition{
		Name:               "CRT-AS",
		Kind:               core.KindAppendOnly,
		Label:              "Assets & Surface",
		PrimaryID:          "as_id",
		IDPrefix:           "AS-",
		RelationshipFields: []string{"mapped_control_ids", "mapped_data_class_ids"},
	})

	core.Register(core.Definition{
		Name:               "CRT-I",
		Kind:               core.KindAppendOnly,
		Label:              "Identity & Trust Anchors",
		PrimaryID:          "i_id",
		IDPrefix:           "I-",
		RelationshipFields: []string{"mapped_control_ids"},
	})

	core.Register(core.Definition{
		Name:               "CRT-SC",
		Kind:               core.KindAppendOnly,
		Label:              "Supply Chain & Vendors",
		PrimaryID:          "sc_id",
		IDPrefix:           "SC-",
		RelationshipFields: []string{"mapped_control_ids"},
	})

	core.Register(core.Definition{
		Name:               "CRT-T",
		Kind:               core.KindAppendOnly,
		Label:              "Telemetry & Signal Sources",
		PrimaryID:          "telemetry_id",
		IDPrefix:           "T-",
		RelationshipFields: []string{"mapped_control_ids"},
	})
}
