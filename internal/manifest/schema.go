package manifest

// ManifestSchemaJSON defines the JSON schema for yunic.manifest/v1.
const ManifestSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "$id": "yunic.manifest/v1",
  "title": "yunic Compile Manifest",
  "description": "Monomorphization table, lifetime count, and borrow verdict for one compilation run",
  "type": "object",
  "required": ["schema", "mono", "lifetime_count", "borrow"],
  "additionalProperties": false,
  "properties": {
    "schema": {
      "type": "string",
      "const": "yunic.manifest/v1",
      "description": "Schema identifier"
    },
    "schema_version": {
      "type": "string",
      "pattern": "^\\d+\\.\\d+\\.\\d+$",
      "description": "Schema semantic version"
    },
    "schema_digest": {
      "type": "string",
      "pattern": "^sha256:[a-f0-9]{16}",
      "description": "Schema integrity digest"
    },
    "generated_at": {
      "type": "string",
      "format": "date-time",
      "description": "Timestamp the manifest was generated"
    },
    "generator": {
      "type": "string",
      "description": "Tool that generated the manifest, e.g. \"yunic compile\""
    },
    "mono": {
      "type": "array",
      "description": "Sorted list of every emitted monomorphic function/type's mangled name",
      "items": {"type": "string"}
    },
    "lifetime_count": {
      "type": "integer",
      "minimum": 0,
      "description": "Total number of lifetimes allocated by the borrow checker across the run"
    },
    "borrow": {
      "type": "object",
      "required": ["ok"],
      "additionalProperties": false,
      "properties": {
        "ok": {
          "type": "boolean",
          "description": "Whether the borrow checker raised no diagnostics"
        },
        "errors": {
          "type": "array",
          "items": {"type": "string"},
          "description": "Rendered \"code: message\" strings for every borrow diagnostic raised"
        }
      }
    }
  }
}`
