package output

import (
	"io"

	"github.com/beevik/etree"

	"github.com/treelint/treelint/pkg/types"
)

// CheckstyleRenderer writes Checkstyle XML, understood by Jenkins and
// most code-review bots.
type CheckstyleRenderer struct{}

// NewCheckstyleRenderer returns a Checkstyle renderer
func NewCheckstyleRenderer() *CheckstyleRenderer {
	return &CheckstyleRenderer{}
}

// Render groups violations by path into <file> elements. Violations
// arrive sorted by path, so grouping is a single pass.
func (r *CheckstyleRenderer) Render(w io.Writer, result *types.CheckResult) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("checkstyle")
	root.CreateAttr("version", "4.3")

	var fileEl *etree.Element
	current := ""
	for _, v := range result.Violations {
		if fileEl == nil || v.Path != current {
			fileEl = root.CreateElement("file")
			fileEl.CreateAttr("name", v.Path)
			current = v.Path
		}

		errEl := fileEl.CreateElement("error")
		errEl.CreateAttr("severity", string(v.Severity))
		errEl.CreateAttr("message", v.Message)
		errEl.CreateAttr("source", "treelint."+v.Rule)
	}

	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}
