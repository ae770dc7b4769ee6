// Package manifest records, per compilation run, the deterministic
// monomorphization table, lifetime count, and borrow-checker verdict
// (§4.8): the compile manifest artifact.
package manifest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/yuniruyuni/yunic/internal/diag"
	"github.com/yuniruyuni/yunic/internal/schema"
)

// SchemaVersion is the manifest's schema identifier.
const SchemaVersion = schema.ManifestV1

// BorrowVerdict summarizes the borrow checker's outcome for the run: OK
// if no reports were raised, with every report's rendered message
// otherwise (the manifest carries rendered strings rather than full
// diag.Report values, since it is meant to be diffed byte-for-byte
// across runs — a report's Span carries file offsets that are
// irrelevant to whether two runs produced the same verdict).
type BorrowVerdict struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`
}

// Manifest is the complete compile manifest for one compilation unit.
type Manifest struct {
	Schema        string        `json:"schema"`
	SchemaVersion string        `json:"schema_version"`
	SchemaDigest  string        `json:"schema_digest"`
	GeneratedAt   time.Time     `json:"generated_at"`
	Generator     string        `json:"generator"`
	Mono          []string      `json:"mono"`
	LifetimeCount int           `json:"lifetime_count"`
	Borrow        BorrowVerdict `json:"borrow"`
}

// New creates an empty manifest stamped with the given generator name
// (e.g. "yunic compile", "yunic mangle").
func New(generator string) *Manifest {
	return &Manifest{
		Schema:        SchemaVersion,
		SchemaVersion: "1.0.0",
		GeneratedAt:   time.Now().UTC(),
		Generator:     generator,
		Mono:          []string{},
	}
}

// Build assembles a manifest from one compilation run's mangled-name
// list (internal/mono.Monomorphizer.Mangled), lifetime count
// (internal/lifetime.Context.LifetimeCount), and borrow-checker reports
// (internal/borrow.Checker.Errors). The mangled-name list is sorted
// before being recorded, since Testable Property "name-mangling is a
// function" (§8) is only useful to diff if the manifest's own ordering
// doesn't itself introduce nondeterminism independent of mangling.
func Build(generator string, mangled []string, lifetimeCount int, borrowReports []*diag.Report) *Manifest {
	m := New(generator)
	m.Mono = append([]string{}, mangled...)
	sort.Strings(m.Mono)
	m.LifetimeCount = lifetimeCount
	m.Borrow = BorrowVerdict{OK: len(borrowReports) == 0}
	for _, r := range borrowReports {
		m.Borrow.Errors = append(m.Borrow.Errors, r.Code+": "+r.Message)
	}
	return m
}

// Load reads and validates a manifest from a file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}
	return &m, nil
}

// Save writes the manifest to path as deterministic, indented JSON.
func (m *Manifest) Save(path string) error {
	m.UpdateSchemaDigest()
	sort.Strings(m.Mono)

	data, err := schema.MarshalDeterministic(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	return os.WriteFile(path, append(buf.Bytes(), '\n'), 0644)
}

// ToJSON renders the manifest as deterministic, formatted JSON without
// touching the filesystem — the shape `yunic mangle` prints to stdout.
func (m *Manifest) ToJSON() ([]byte, error) {
	m.UpdateSchemaDigest()
	sort.Strings(m.Mono)

	data, err := schema.MarshalDeterministic(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return schema.FormatJSON(data)
}

// Validate checks the manifest's schema version, digest, and mono list
// for consistency.
func (m *Manifest) Validate() error {
	if !schema.Accepts(m.Schema, SchemaVersion) {
		return fmt.Errorf("unsupported schema version: %s (expected %s)", m.Schema, SchemaVersion)
	}
	if m.SchemaDigest != "" {
		expected := m.calculateSchemaDigest()
		if m.SchemaDigest != expected {
			return fmt.Errorf("schema digest mismatch: got %s, expected %s", m.SchemaDigest, expected)
		}
	}
	if !sort.StringsAreSorted(m.Mono) {
		return fmt.Errorf("mono list is not sorted")
	}
	seen := make(map[string]bool, len(m.Mono))
	for _, name := range m.Mono {
		if seen[name] {
			return fmt.Errorf("duplicate mono entry: %s", name)
		}
		seen[name] = true
	}
	if !m.Borrow.OK && len(m.Borrow.Errors) == 0 {
		return fmt.Errorf("borrow verdict is not ok but carries no errors")
	}
	return nil
}

// UpdateSchemaDigest recalculates the schema digest.
func (m *Manifest) UpdateSchemaDigest() {
	m.SchemaDigest = m.calculateSchemaDigest()
}

func (m *Manifest) calculateSchemaDigest() string {
	schemaData := fmt.Sprintf("%s:%s", m.Schema, m.SchemaVersion)
	hash := sha256.Sum256([]byte(schemaData))
	return "sha256:" + hex.EncodeToString(hash[:])[:16]
}
