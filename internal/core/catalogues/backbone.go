package catalogues

import "github.com/blakelabs/crt/internal/core"

// Backbone catalogues are authoritative and never edited by this tool.

func init() {
	core.Register(core.Definition{
		Name:      "CRT-C",
		Kind:      core.KindBackbone,
		Label:     "Controls",
		PrimaryID: "control_id",
		IDPrefix:  "CRT-C-",
	})

	core.Register(core.Definition{
		Name:               "CRT-F",
		Kind:               core.KindBackbone,
		Label:              "Failure Modes",
		PrimaryID:          "failure_id",
		IDPrefix:           "CRT-F-",
		RelationshipFields: []string{"mapped_control_ids"},
	})

	core.Register(core.Definition{
		Name:               "CRT-N",
		Kind:               core.KindBackbone,
		Label:              "Compensations",
		PrimaryID:          "n_id",
		IDPrefix:           "CRT-N-",
		RelationshipFields: []string{"mapped_control_ids"},
	})

	core.Register(core.Definition{
		Name:      "CRT-POL",
		Kind:      core.KindBackbone,
		Label:     "Policies",
		PrimaryID: "policy_id",
		IDPrefix:  "CRT-POL-",
	})

	core.Register(core.Definition{
		Name:      "CRT-STD",
		Kind:      core.KindBackbone,
		Label:     "Standards",
		PrimaryID: "standard_id",
		IDPrefix:  "CRT-STD-",
	})

	core.Register(core.Definition{
		Name:      "CRT-G",
		Kind:      core.KindBackbone,
		Label:     "Control Groups & Domains",
		PrimaryID: "group_id",
		IDPrefix:  "CRT-G-",
	})
}
