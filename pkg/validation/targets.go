package validation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/bnema/acms/internal/domain"
)

// AllKey is the argument that selects every entity of a kind.
const AllKey = "all"

// rootField is how gojsonschema names the document root.
const rootField = "(root)"

// targetProperty accepts a non-empty string or a non-empty array of
// non-empty strings. Arrays of any length >= 1 are accepted uniformly.
func targetProperty() map[string]any {
	return map[string]any{
		"oneOf": []any{
			map[string]any{"type": "string", "minLength": 1},
			map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "string", "minLength": 1},
			},
		},
	}
}

// ObjectSchema builds a closed object schema from property schemas.
func ObjectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = toAnySlice(required)
	}
	return schema
}

// BatchSchema builds the argument schema of a batch operation whose targets
// live under targetKey. Extra properties (flags such as "force") are merged in.
func BatchSchema(targetKey string, extra map[string]any) map[string]any {
	properties := map[string]any{
		targetKey: targetProperty(),
		AllKey:    map[string]any{"type": "boolean"},
	}
	for k, v := range extra {
		properties[k] = v
	}

	schema := ObjectSchema(properties)
	schema["anyOf"] = []any{
		map[string]any{"required": []any{targetKey}},
		map[string]any{"required": []any{AllKey}},
	}
	return schema
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Validator validates tool arguments against compiled JSON schemas.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
	sources map[string]map[string]any
}

// NewValidator compiles the given schemas, keyed by tool name.
func NewValidator(schemas map[string]map[string]any) (*Validator, error) {
	v := &Validator{
		schemas: make(map[string]*gojsonschema.Schema, len(schemas)),
		sources: schemas,
	}
	for name, source := range schemas {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(source))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema for %s: %w", name, err)
		}
		v.schemas[name] = compiled
	}
	return v, nil
}

// Schema returns the source schema registered for a tool.
func (v *Validator) Schema(name string) (map[string]any, bool) {
	s, ok := v.sources[name]
	return s, ok
}

// Validate checks raw JSON arguments against the tool's schema. Empty input
// is treated as an empty object. The first failure is reported as a
// *domain.ValidationError naming the offending field and value.
func (v *Validator) Validate(name string, args []byte) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("no schema registered for %s", name)
	}

	if len(strings.TrimSpace(string(args))) == 0 {
		args = []byte("{}")
	}
	if !json.Valid(args) {
		return domain.NewValidationError("", nil, "arguments are not valid JSON")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(args))
	if err != nil {
		return domain.NewValidationError("", nil, err.Error())
	}
	if result.Valid() {
		return nil
	}

	return toValidationError(result.Errors())
}

// toValidationError picks the most specific schema failure: a field-level
// error wins over a root-level one, deeper fields over shallower ones.
func toValidationError(errs []gojsonschema.ResultError) error {
	sorted := append([]gojsonschema.ResultError(nil), errs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return fieldDepth(sorted[i].Field()) > fieldDepth(sorted[j].Field())
	})

	best := sorted[0]
	field := best.Field()
	if field == rootField {
		field = ""
		if property, ok := best.Details()["property"].(string); ok {
			field = property
		}
	}
	return domain.NewValidationError(field, best.Value(), best.Description())
}

func fieldDepth(field string) int {
	if field == rootField {
		return 0
	}
	return strings.Count(field, ".") + 1
}

// DecodeTargetSet extracts a target set from validated arguments.
// Callers must run Validate first; this enforces the remaining rule that
// explicit targets and all=true are mutually exclusive.
func DecodeTargetSet(args map[string]json.RawMessage, targetKey string) (domain.TargetSet, error) {
	var all bool
	if raw, ok := args[AllKey]; ok {
		if err := json.Unmarshal(raw, &all); err != nil {
			return domain.TargetSet{}, domain.NewValidationError(AllKey, string(raw), "must be a boolean")
		}
	}

	raw, hasTargets := args[targetKey]
	switch {
	case hasTargets && all:
		return domain.TargetSet{}, domain.NewValidationError(targetKey, string(raw), "cannot be combined with all=true")
	case !hasTargets && !all:
		return domain.TargetSet{}, domain.NewValidationError(AllKey, false, fmt.Sprintf("must be true when %s is not given", targetKey))
	case all:
		return domain.All(), nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if encoded := strings.TrimSpace(single); strings.HasPrefix(encoded, "[") || strings.HasPrefix(encoded, "{") {
			return decodeEncodedList(targetKey, encoded)
		}
		if single == "" {
			return domain.TargetSet{}, domain.NewValidationError(targetKey, single, "must not be empty")
		}
		return domain.Single(single), nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return domain.TargetSet{}, domain.NewValidationError(targetKey, string(raw), "expected a string or an array of strings")
	}
	return manyTargets(targetKey, string(raw), many)
}

// decodeEncodedList accepts a JSON array passed as a string, which some
// clients send instead of a real array.
func decodeEncodedList(targetKey, encoded string) (domain.TargetSet, error) {
	var many []string
	if err := json.Unmarshal([]byte(encoded), &many); err != nil {
		return domain.TargetSet{}, domain.NewValidationError(targetKey, encoded, "must be an array of strings")
	}
	return manyTargets(targetKey, encoded, many)
}

func manyTargets(targetKey, raw string, many []string) (domain.TargetSet, error) {
	if len(many) == 0 {
		return domain.TargetSet{}, domain.NewValidationError(targetKey, raw, "array must contain at least one identifier")
	}
	for _, id := range many {
		if id == "" {
			return domain.TargetSet{}, domain.NewValidationError(targetKey, raw, "identifiers must not be empty")
		}
	}
	return domain.Many(many...), nil
}
