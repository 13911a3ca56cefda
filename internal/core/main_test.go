package core

import (
	"os"
	"testing"

	"github.com/blakelabs/crt/internal/source"
)

// TestMain registers the catalogue set once for the whole package.
// The definitions mirror the registrations in internal/core/catalogues,
// which this package cannot import without a cycle.
func TestMain(m *testing.M) {
	for _, def := range testDefinitions {
		Register(def)
	}
	os.Exit(m.Run())
}

var testDefinitions = []Definition{
	{Name: "CRT-C", Kind: KindBackbone, Label: "Controls", PrimaryID: "control_id", IDPrefix: "CRT-C-"},
	{Name: "CRT-F", Kind: KindBackbone, Label: "Failure Modes", PrimaryID: "failure_id", IDPrefix: "CRT-F-", RelationshipFields: []string{"mapped_control_ids"}},
	{Name: "CRT-N", Kind: KindBackbone, Label: "Compensations", PrimaryID: "n_id", IDPrefix: "CRT-N-", RelationshipFields: []string{"mapped_control_ids"}},
	{Name: "CRT-POL", Kind: KindBackbone, Label: "Policies", PrimaryID: "policy_id", IDPrefix: "CRT-POL-"},
	{Name: "CRT-STD", Kind: KindBackbone, Label: "Standards", PrimaryID: "standard_id", IDPrefix: "CRT-STD-"},
	{Name: "CRT-G", Kind: KindBackbone, Label: "Control Groups & Domains", PrimaryID: "group_id", IDPrefix: "CRT-G-"},
	{Name: "CRT-REQ", Kind: KindAppendOnly, Label: "Requirements", PrimaryID: "requirement_id", IDPrefix: "REQ-"},
	{Name: "CRT-LR", Kind: KindAppendOnly, Label: "Legal & Regulatory Obligations", PrimaryID: "lr_id", IDPrefix: "LR-"},
	{Name: "CRT-D", Kind: KindAppendOnly, Label: "Data & Classification", PrimaryID: "d_id", IDPrefix: "D-", RelationshipFields: []string{"mapped_control_ids"}},
	{Name: "CRT-AS", Kind: KindAppendOnly, Label: "Assets & Surface", PrimaryID: "as_id", IDPrefix: "AS-", RelationshipFields: []string{"mapped_control_ids", "mapped_data_class_ids"}},
	{Name: "CRT-I", Kind: KindAppendOnly, Label: "Identity & Trust Anchors", PrimaryID: "i_id", IDPrefix: "I-", RelationshipFields: []string{"mapped_control_ids"}},
	{Name: "CRT-SC", Kind: KindAppendOnly, Label: "Supply Chain & Vendors", PrimaryID: "sc_id", IDPrefix: "SC-", RelationshipFields: []string{"mapped_control_ids"}},
	{Name: "CRT-T", Kind: KindAppendOnly, Label: "Telemetry & Signal Sources", PrimaryID: "telemetry_id", IDPrefix: "T-", RelationshipFields: []string{"mapped_control_ids"}},
}

// testFixtures is a minimal but consistent CSV per catalogue. CRT-C is
// the backbone anchor; the other catalogues reference CRT-C-0001 so
// relationship and edge tests have real data to walk.
var testFixtures = map[string]string{
	"CRT-C": "control_id,control_name,description\n" +
		"CRT-C-0001,Data Classification Framework,Classify data by sensitivity\n" +
		"CRT-C-0002,Access Reviews,Review entitlements periodically\n",
	"CRT-F": "failure_id,failure_name,mapped_control_ids\n" +
		"CRT-F-0001,Unclassified data store,CRT-C-0001\n" +
		"CRT-F-0002,Stale entitlements,CRT-C-0001;CRT-C-0002\n",
	"CRT-N": "n_id,n_name,mapped_control_ids\n" +
		"CRT-N-0001,Manual data labelling,CRT-C-0001\n",
	"CRT-POL": "policy_id,policy_name\nCRT-POL-0001,Information Classification Policy\n",
	"CRT-STD": "standard_id,standard_name\nCRT-STD-0001,Labelling Standard\n",
	"CRT-G":   "group_id,group_name\nCRT-G-0001,Data Governance\n",
	"CRT-REQ": "requirement_id,requirement_name\nREQ-0001,Classify customer data\n",
	"CRT-LR":  "lr_id,lr_name\nLR-0001,GDPR Art. 32\n",
	"CRT-D": "d_id,d_name,mapped_control_ids\n" +
		"D-0001,Customer PII,CRT-C-0001\n",
	"CRT-AS": "as_id,as_name,mapped_control_ids,mapped_data_class_ids\n" +
		"AS-0001,Billing Database,CRT-C-0001,D-0001\n",
	"CRT-I": "i_id,i_name,mapped_control_ids\nI-0001,Workforce SSO,CRT-C-0002\n",
	"CRT-SC": "sc_id,sc_name,mapped_control_ids\n" +
		"SC-0001,Payments Processor,CRT-C-0001\n",
	"CRT-T": "telemetry_id,telemetry_name,mapped_control_ids\n" +
		"T-0001,DLP Alerts,CRT-C-0001\n",
}

// newTestSource returns a memory source seeded with every fixture.
func newTestSource() *source.Memory {
	src := source.NewMemory()
	for name, data := range testFixtures {
		src.Set(name, []byte(data))
	}
	return src
}

// newTestHub returns a hub over a fully seeded memory source.
func newTestHub() *Hub {
	return NewHub(newTestSource())
}
