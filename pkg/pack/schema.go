package pack

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed receipt.schema.json
var receiptSchemaText string

var receiptSchema = jsonschema.MustCompileString("receipt.schema.json", receiptSchemaText)

// validateReceipt checks a raw receipt object against the wire schema
// before strict decoding. The schema closes the status and reason_code
// enumerations, so an unrecognized value is an explicit boundary error
// rather than a silently accepted string.
func validateReceipt(raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decode receipt: %w", err)
	}
	if err := receiptSchema.Validate(v); err != nil {
		return fmt.Errorf("receipt schema: %w", err)
	}
	return nil
}
