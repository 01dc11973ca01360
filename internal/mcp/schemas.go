package mcp

// Schema helpers for tool input schemas (JSON Schema Draft 7).

// ObjectSchema builds a tool input schema from its properties.
// Only arguments needed by every mode of a tool belong in required.
func ObjectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// StringProp describes a string argument.
func StringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// EnumProp describes a string argument restricted to values.
func EnumProp(description string, defaultValue string, values ...string) map[string]interface{} {
	prop := map[string]interface{}{
		"type":        "string",
		"description": description,
		"enum":        values,
	}
	if defaultValue != "" {
		prop["default"] = defaultValue
	}
	return prop
}

// IntegerProp describes an integer argument with a lower bound.
// A nil defaultValue leaves the argument without a default.
func IntegerProp(description string, minimum int, defaultValue *int) map[string]interface{} {
	prop := map[string]interface{}{
		"type":        "integer",
		"description": description,
		"minimum":     minimum,
	}
	if defaultValue != nil {
		prop["default"] = *defaultValue
	}
	return prop
}

// IntegerRangeProp is IntegerProp with an upper bound.
func IntegerRangeProp(description string, minimum, maximum int, defaultValue *int) map[string]interface{} {
	prop := IntegerProp(description, minimum, defaultValue)
	prop["maximum"] = maximum
	return prop
}

// ObjectProp describes a free-form JSON object argument.
func ObjectProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
	}
}

// ArrayProp describes an array whose items match itemSchema.
func ArrayProp(description string, itemSchema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items":       itemSchema,
	}
}
