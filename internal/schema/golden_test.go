package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestGoldenDiagnosticJSON pins the exact deterministic JSON shape of a
// diagnostic report, mirroring internal/diag.Report's field set.
func TestGoldenDiagnosticJSON(t *testing.T) {
	tests := []struct {
		name     string
		report   map[string]interface{}
		wantJSON string
	}{
		{
			name: "borrow_violation",
			report: map[string]interface{}{
				"schema":  DiagnosticV1,
				"phase":   "borrow",
				"code":    "BC003",
				"message": "use of moved value `v`",
				"span": map[string]interface{}{
					"start": map[string]interface{}{"line": 4, "column": 9, "file": "a.ail", "offset": 40},
					"end":   map[string]interface{}{"line": 4, "column": 10, "file": "a.ail", "offset": 41},
				},
			},
			wantJSON: `{
  "code": "BC003",
  "message": "use of moved value ` + "`v`" + `",
  "phase": "borrow",
  "schema": "yunic.diagnostic/v1",
  "span": {
    "end": {
      "column": 10,
      "file": "a.ail",
      "line": 4,
      "offset": 41
    },
    "start": {
      "column": 9,
      "file": "a.ail",
      "line": 4,
      "offset": 40
    }
  }
}`,
		},
		{
			name: "codegen_error_with_fix",
			report: map[string]interface{}{
				"schema":  DiagnosticV1,
				"phase":   "codegen",
				"code":    "CG002",
				"message": "unsupported statement node",
				"fix": map[string]interface{}{
					"suggestion": "rewrite using a supported statement form",
					"confidence": 0.5,
				},
			},
			wantJSON: `{
  "code": "CG002",
  "fix": {
    "confidence": 0.5,
    "suggestion": "rewrite using a supported statement form"
  },
  "message": "unsupported statement node",
  "phase": "codegen",
  "schema": "yunic.diagnostic/v1"
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalDeterministic(tt.report)
			if err != nil {
				t.Fatalf("MarshalDeterministic() error = %v", err)
			}

			formatted, err := FormatJSON(got)
			if err != nil {
				t.Fatalf("FormatJSON() error = %v", err)
			}

			wantNorm := normalizeJSON(t, tt.wantJSON)
			gotNorm := normalizeJSON(t, string(formatted))
			if gotNorm != wantNorm {
				t.Errorf("JSON mismatch:\nGot:\n%s\nWant:\n%s", gotNorm, wantNorm)
			}

			var parsed map[string]interface{}
			if err := json.Unmarshal(got, &parsed); err != nil {
				t.Fatalf("Failed to parse JSON: %v", err)
			}
			schemaField, ok := parsed["schema"].(string)
			if !ok {
				t.Fatal("Missing schema field in JSON output")
			}
			if !Accepts(schemaField, DiagnosticV1) {
				t.Errorf("Schema %q does not accept %q", schemaField, DiagnosticV1)
			}
		})
	}
}

// TestGoldenManifestJSON pins the deterministic shape of a compile
// manifest (§4.8): sorted mangled names, lifetime count, borrow verdict.
func TestGoldenManifestJSON(t *testing.T) {
	manifest := map[string]interface{}{
		"schema":         ManifestV1,
		"schema_version": "1.0.0",
		"mono": []interface{}{
			"identity_i32",
			"pair_i32_f64",
		},
		"lifetime_count": 7,
		"borrow": map[string]interface{}{
			"ok": true,
		},
	}

	wantJSON := `{
  "borrow": {
    "ok": true
  },
  "lifetime_count": 7,
  "mono": [
    "identity_i32",
    "pair_i32_f64"
  ],
  "schema": "yunic.manifest/v1",
  "schema_version": "1.0.0"
}`

	got, err := MarshalDeterministic(manifest)
	if err != nil {
		t.Fatalf("MarshalDeterministic() error = %v", err)
	}
	formatted, err := FormatJSON(got)
	if err != nil {
		t.Fatalf("FormatJSON() error = %v", err)
	}

	wantNorm := normalizeJSON(t, wantJSON)
	gotNorm := normalizeJSON(t, string(formatted))
	if gotNorm != wantNorm {
		t.Errorf("JSON mismatch:\nGot:\n%s\nWant:\n%s", gotNorm, wantNorm)
	}
}

// TestGoldenCompactMode tests that compact mode works correctly.
func TestGoldenCompactMode(t *testing.T) {
	data := map[string]interface{}{
		"schema": ManifestV1,
		"counts": map[string]interface{}{
			"passed": 10,
			"failed": 2,
		},
	}

	SetCompactMode(false)
	pretty, err := MarshalDeterministic(data)
	if err != nil {
		t.Fatalf("MarshalDeterministic error = %v", err)
	}
	prettyFormatted, err := FormatJSON(pretty)
	if err != nil {
		t.Fatalf("FormatJSON error = %v", err)
	}
	if !strings.Contains(string(prettyFormatted), "\n") {
		t.Error("Pretty mode should contain newlines")
	}

	SetCompactMode(true)
	compact, err := MarshalDeterministic(data)
	if err != nil {
		t.Fatalf("MarshalDeterministic error = %v", err)
	}
	compactFormatted, err := FormatJSON(compact)
	if err != nil {
		t.Fatalf("FormatJSON error = %v", err)
	}
	if strings.Contains(string(compactFormatted), "\n") {
		t.Error("Compact mode should not contain newlines")
	}

	wantCompact := `{"counts":{"failed":2,"passed":10},"schema":"yunic.manifest/v1"}`
	if string(compactFormatted) != wantCompact {
		t.Errorf("Compact JSON mismatch:\nGot:  %s\nWant: %s", string(compactFormatted), wantCompact)
	}

	SetCompactMode(false)
}

// TestAcceptsCompatibility tests schema version compatibility.
func TestAcceptsCompatibility(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		want     string
		expected bool
	}{
		{"exact diagnostic v1", "yunic.diagnostic/v1", DiagnosticV1, true},
		{"exact manifest v1", "yunic.manifest/v1", ManifestV1, true},
		{"diagnostic v1.1", "yunic.diagnostic/v1.1", DiagnosticV1, true},
		{"manifest v1.2.3", "yunic.manifest/v1.2.3", ManifestV1, true},
		{"diagnostic v2", "yunic.diagnostic/v2", DiagnosticV1, false},
		{"manifest v2", "yunic.manifest/v2", ManifestV1, false},
		{"wrong schema", "yunic.manifest/v1", DiagnosticV1, false},
		{"wrong schema 2", "yunic.diagnostic/v1", ManifestV1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Accepts(tt.got, tt.want); got != tt.expected {
				t.Errorf("Accepts(%q, %q) = %v, want %v", tt.got, tt.want, got, tt.expected)
			}
		})
	}
}

// normalizeJSON normalizes JSON for comparison by parsing and re-formatting.
func normalizeJSON(t *testing.T, jsonStr string) string {
	var data interface{}
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		t.Fatalf("Invalid JSON: %v\nJSON: %s", err, jsonStr)
	}

	normalized, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		t.Fatalf("Failed to normalize JSON: %v", err)
	}

	return string(normalized)
}
