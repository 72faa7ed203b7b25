package helpers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// FormatResult renders an operation result for humans. Values the driver
// can encode are printed as indented relaxed extended JSON; handles that
// implement fmt.Stringer print themselves.
func FormatResult(result interface{}) string {
	if result == nil {
		return "null"
	}
	if s, ok := result.(fmt.Stringer); ok {
		return s.String()
	}

	// Extended JSON is only defined for documents, so wrap and unwrap.
	wrapped, err := bson.MarshalExtJSON(bson.D{{Key: "result", Value: result}}, false, false)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	var doc struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(wrapped, &doc); err != nil {
		return string(wrapped)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, doc.Result, "", "  "); err != nil {
		return string(doc.Result)
	}
	return out.String()
}
