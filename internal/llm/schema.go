package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildExtractionSchema returns the JSON-Schema constraint for the
// extractor's output. It is enforced locally before the result is accepted;
// a response that violates it degrades rather than propagating bad data.
func BuildExtractionSchema() map[string]any {
	amount := map[string]any{"type": []string{"number", "null"}}
	optString := map[string]any{"type": []string{"string", "null"}}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"language":      map[string]any{"type": "string"},
			"document_type": map[string]any{"type": "string", "enum": []string{"invoice", "receipt", "other", "uncertain"}},
			"supplier_name": optString,
			"invoice_number": optString,
			"invoice_date": map[string]any{
				"type":    []string{"string", "null"},
				"pattern": `^\d{4}-\d{2}-\d{2}$`,
			},
			"currency": map[string]any{
				"type":      []string{"string", "null"},
				"minLength": 3,
				"maxLength": 3,
			},
			"subtotal":   amount,
			"tax_amount": amount,
			"total":      amount,
			"line_items": map[string]any{
				"type": []string{"array", "null"},
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": optString,
						"quantity":    amount,
						"unit_price":  amount,
						"line_total":  amount,
					},
				},
			},
		},
		"required": []string{"language", "document_type"},
	}
}

// ValidateAgainstSchema validates data against schemaMap.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
