package tools

// JSON-schema literal helpers for the tool catalog. Definitions are
// data, so schemas are built from plain maps rather than reflection.

// Object builds an object schema from named properties.
func Object(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// String builds a string property schema.
func String(desc string, enum ...string) map[string]any {
	schema := map[string]any{"type": "string"}
	if desc != "" {
		schema["description"] = desc
	}
	if len(enum) > 0 {
		schema["enum"] = enum
	}
	return schema
}

// Integer builds an integer property schema.
func Integer(desc string) map[string]any {
	schema := map[string]any{"type": "integer"}
	if desc != "" {
		schema["description"] = desc
	}
	return schema
}

// Number builds a number property schema.
func Number(desc string) map[string]any {
	schema := map[string]any{"type": "number"}
	if desc != "" {
		schema["description"] = desc
	}
	return schema
}

// Boolean builds a boolean property schema.
func Boolean(desc string) map[string]any {
	schema := map[string]any{"type": "boolean"}
	if desc != "" {
		schema["description"] = desc
	}
	return schema
}
