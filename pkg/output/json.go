package output

import (
	"encoding/json"
	"io"

	"github.com/treelint/treelint/pkg/types"
)

// JSONRenderer writes the result as an indented JSON document
type JSONRenderer struct{}

// NewJSONRenderer returns a JSON renderer
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render encodes the full result, violations and summary included
func (r *JSONRenderer) Render(w io.Writer, result *types.CheckResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
