package output

import (
	"fmt"
	"io"

	"github.com/treelint/treelint/pkg/types"
)

// Renderer writes a check result to a destination
type Renderer interface {
	Render(w io.Writer, result *types.CheckResult) error
}

// NewRenderer builds the renderer for a resolved format. FormatAuto
// must be resolved with Resolve first.
func NewRenderer(f Format, toolVersion string) (Renderer, error) {
	switch f {
	case FormatTerminal:
		return NewConsoleRenderer(true), nil
	case FormatText:
		return NewConsoleRenderer(false), nil
	case FormatJSON:
		return NewJSONRenderer(), nil
	case FormatSARIF:
		return NewSARIFRenderer(toolVersion), nil
	case FormatCheckstyle:
		return NewCheckstyleRenderer(), nil
	default:
		return nil, fmt.Errorf("no renderer for format %s", f)
	}
}
