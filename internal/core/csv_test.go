package core

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

// ============================================================================
// sanitizeUTF8 Tests
// ============================================================================

func TestSanitizeUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  []byte
	}{
		{
			name:  "valid UTF-8 unchanged",
			input: []byte("hello world"),
			want:  []byte("hello world"),
		},
		{
			name:  "empty input",
			input: []byte{},
			want:  []byte{},
		},
		{
			name:  "valid unicode",
			input: []byte("hello \xe4\xb8\x96\xe7\x95\x8c"), // hello 世界
			want:  []byte("hello \xe4\xb8\x96\xe7\x95\x8c"),
		},
		{
			name:  "invalid byte replaced with replacement char",
			input: []byte{0x80},
			want:  []byte("�"),
		},
		{
			name:  "truncated multibyte sequence",
			input: []byte{0xc3},
			want:  []byte("�"),
		},
		{
			name:  "mixed valid and invalid",
			input: []byte("hello\x80world"),
			want:  []byte("hello�world"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeUTF8(tt.input)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("sanitizeUTF8(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// CleanCell Tests
// ============================================================================

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain value", "CRT-C-0001", "CRT-C-0001"},
		{"surrounding whitespace", "  CRT-C-0001  ", "CRT-C-0001"},
		{"BOM prefix", "\ufeffcontrol_id", "control_id"},
		{"excel formula quote", `="0001"`, "0001"},
		{"bare equals prefix", "=SUM", "SUM"},
		{"surrounding quotes", `"quoted"`, "quoted"},
		{"single quotes", "'quoted'", "quoted"},
		{"empty value", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// findHeaderRow Tests
// ============================================================================

func TestFindHeaderRow(t *testing.T) {
	tests := []struct {
		name    string
		records [][]string
		want    int
	}{
		{
			name:    "header in first row",
			records: [][]string{{"control_id", "control_name"}},
			want:    0,
		},
		{
			name: "preamble before header",
			records: [][]string{
				{"CRT Catalogue Export"},
				{""},
				{"control_id", "control_name"},
			},
			want: 2,
		},
		{
			name:    "case-insensitive match",
			records: [][]string{{"Control_ID", "Control_Name"}},
			want:    0,
		},
		{
			name:    "no header",
			records: [][]string{{"foo", "bar"}, {"baz", "qux"}},
			want:    -1,
		},
		{
			name:    "empty records",
			records: [][]string{},
			want:    -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findHeaderRow(tt.records, "control_id"); got != tt.want {
				t.Errorf("findHeaderRow() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFindHeaderRowRespectsSearchLimit(t *testing.T) {
	var records [][]string
	for i := 0; i < MaxHeaderSearchRows; i++ {
		records = append(records, []string{"noise"})
	}
	records = append(records, []string{"control_id"})

	if got := findHeaderRow(records, "control_id"); got != -1 {
		t.Errorf("header beyond search limit should not be found, got row %d", got)
	}
}

// ============================================================================
// buildCatalogue Tests
// ============================================================================

func TestBuildCatalogue(t *testing.T) {
	def := Definition{Name: "CRT-C", Kind: KindBackbone, Label: "Controls", PrimaryID: "control_id"}

	csv := "control_id,control_name\n" +
		"CRT-C-0001,Data Classification Framework\n" +
		"CRT-C-0002,Access Reviews\n"

	cat, err := buildCatalogue(def, []byte(csv))
	if err != nil {
		t.Fatalf("buildCatalogue: %v", err)
	}

	if cat.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", cat.Len())
	}
	if !reflect.DeepEqual(cat.Columns, []string{"control_id", "control_name"}) {
		t.Errorf("unexpected columns: %v", cat.Columns)
	}

	entity, ok := cat.Lookup("CRT-C-0001")
	if !ok {
		t.Fatal("expected CRT-C-0001 to be present")
	}
	if entity["control_name"] != "Data Classification Framework" {
		t.Errorf("unexpected control_name: %q", entity["control_name"])
	}
}

func TestBuildCataloguePreservesRowOrder(t *testing.T) {
	def := Definition{Name: "CRT-C", PrimaryID: "control_id"}
	csv := "control_id\nCRT-C-0003\nCRT-C-0001\nCRT-C-0002\n"

	cat, err := buildCatalogue(def, []byte(csv))
	if err != nil {
		t.Fatalf("buildCatalogue: %v", err)
	}

	want := []string{"CRT-C-0003", "CRT-C-0001", "CRT-C-0002"}
	if got := cat.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}

func TestBuildCatalogueSkipsPreambleAndEmptyRows(t *testing.T) {
	def := Definition{Name: "CRT-C", PrimaryID: "control_id"}
	csv := "CRT Catalogue Export\n" +
		"\n" +
		"control_id,control_name\n" +
		"CRT-C-0001,First\n" +
		",\n" +
		"CRT-C-0002,Second\n"

	cat, err := buildCatalogue(def, []byte(csv))
	if err != nil {
		t.Fatalf("buildCatalogue: %v", err)
	}
	if cat.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", cat.Len())
	}
}

func TestBuildCataloguePadsShortRows(t *testing.T) {
	def := Definition{Name: "CRT-C", PrimaryID: "control_id"}
	csv := "control_id,control_name,description\nCRT-C-0001,Short row\n"

	cat, err := buildCatalogue(def, []byte(csv))
	if err != nil {
		t.Fatalf("buildCatalogue: %v", err)
	}

	entity, _ := cat.Lookup("CRT-C-0001")
	if v, ok := entity["description"]; !ok || v != "" {
		t.Errorf("missing cell should be present and empty, got %q (ok=%v)", v, ok)
	}
}

func TestBuildCatalogueErrors(t *testing.T) {
	def := Definition{Name: "CRT-C", PrimaryID: "control_id"}

	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{
			name:    "empty file",
			csv:     "",
			wantErr: "empty file",
		},
		{
			name:    "missing primary id column",
			csv:     "name,description\nfoo,bar\n",
			wantErr: `missing primary id column "control_id"`,
		},
		{
			name:    "empty primary id",
			csv:     "control_id,control_name\n,Nameless\n",
			wantErr: "empty primary id",
		},
		{
			name:    "duplicate primary id",
			csv:     "control_id\nCRT-C-0001\nCRT-C-0001\n",
			wantErr: `duplicate primary id "CRT-C-0001"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildCatalogue(def, []byte(tt.csv))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

// ============================================================================
// SplitIDList Tests
// ============================================================================

func TestSplitIDList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single id", "CRT-C-0001", []string{"CRT-C-0001"}},
		{"two ids", "CRT-C-0001;CRT-C-0002", []string{"CRT-C-0001", "CRT-C-0002"}},
		{"whitespace around ids", " CRT-C-0001 ; CRT-C-0002 ", []string{"CRT-C-0001", "CRT-C-0002"}},
		{"empty segments dropped", "CRT-C-0001;;CRT-C-0002;", []string{"CRT-C-0001", "CRT-C-0002"}},
		{"empty value", "", nil},
		{"whitespace only", "   ", nil},
		{"semicolons only", ";;;", nil},
		{"comma is not a delimiter", "CRT-C-0001,CRT-C-0002", []string{"CRT-C-0001,CRT-C-0002"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitIDList(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitIDList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLooksCommaDelimited(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"CRT-C-0001,CRT-C-0002", true},
		{"CRT-C-0001;CRT-C-0002", false},
		{"CRT-C-0001, CRT-C-0002; CRT-C-0003", false},
		{"CRT-C-0001", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := looksCommaDelimited(tt.input); got != tt.want {
			t.Errorf("looksCommaDelimited(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
