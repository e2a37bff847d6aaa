package tooldispatch

import (
	"encoding/json"

	"github.com/zjrosen/swarmctl/internal/swarmerr"
)

// argSchema describes one tool's argument contract: which fields are
// required and their expected JSON type, per spec.md §4.6 "Validate
// arguments per tool schema (required fields present, types match)".
type argSchema struct {
	required []string
	types    map[string]string // field -> "string" | "number" | "boolean"
}

var schemas = map[string]argSchema{
	"request_review": {
		required: []string{"description"},
		types:    map[string]string{"description": "string"},
	},
	"create_pull_request": {
		required: []string{"title", "body"},
		types:    map[string]string{"title": "string", "body": "string", "draft": "boolean"},
	},
	"request_changes": {
		required: []string{"feedback"},
		types:    map[string]string{"feedback": "string"},
	},
	"create_task": {
		required: []string{"title", "description", "priority"},
		types: map[string]string{
			"title": "string", "description": "string", "priority": "string",
			"estimated_hours": "number",
		},
	},
	"analyze_repository": {
		required: []string{},
		types:    map[string]string{"scope": "string", "depth": "number"},
	},
}

// validateArgs decodes raw into a generic map and checks it against
// schema's required fields and declared types, rejecting anything else
// with invalid-arguments (spec.md §4.6).
func validateArgs(toolName string, raw json.RawMessage) (map[string]any, error) {
	schema, ok := schemas[toolName]
	if !ok {
		return nil, swarmerr.New(swarmerr.KindUnknownToolCaller, "tooldispatch", "unknown tool").WithDetail("tool_name", toolName)
	}

	args := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, swarmerr.Wrap(swarmerr.KindInvalidArguments, "tooldispatch", "arguments are not a JSON object", err).WithDetail("tool_name", toolName)
		}
	}

	for _, field := range schema.required {
		if _, ok := args[field]; !ok {
			return nil, swarmerr.New(swarmerr.KindInvalidArguments, "tooldispatch", "missing required argument").
				WithDetail("tool_name", toolName).WithDetail("field", field)
		}
	}

	for field, wantType := range schema.types {
		v, present := args[field]
		if !present {
			continue
		}
		if !matchesType(v, wantType) {
			return nil, swarmerr.New(swarmerr.KindInvalidArguments, "tooldispatch", "argument has wrong type").
				WithDetail("tool_name", toolName).WithDetail("field", field).WithDetail("want_type", wantType)
		}
	}

	return args, nil
}

func matchesType(v any, wantType string) bool {
	switch wantType {
	case "string":
		_, ok := v.(string)
		return ok
	case "number":
		_, ok := v.(float64)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	default:
		return true
	}
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func boolArg(args map[string]any, key string) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return false
}

func float64Arg(args map[string]any, key string) (float64, bool) {
	v, ok := args[key].(float64)
	return v, ok
}

func intArg(args map[string]any, key string) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return 0
}
