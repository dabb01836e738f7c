package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const replySchemaJSON = `{
	"type": "object",
	"properties": {
		"title":   {"type": ["string", "null"]},
		"authors": {"type": ["string", "null"]},
		"venue":   {"type": ["string", "null"]},
		"year":    {"type": ["integer", "null"], "minimum": 1900, "maximum": 2100}
	},
	"additionalProperties": false
}`

var replySchema = mustCompile(replySchemaJSON)

func mustCompile(src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("reply.json", strings.NewReader(src)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("reply.json")
}

// ValidateReply checks that the model's reply is well-formed JSON matching the
// field-reply schema.
func ValidateReply(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal reply: %w", err)
	}
	if err := replySchema.Validate(v); err != nil {
		return fmt.Errorf("reply does not match schema: %w", err)
	}
	return nil
}
