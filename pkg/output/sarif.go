package output

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/treelint/treelint/pkg/types"
)

const sarifSchema = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

// SARIFRenderer writes SARIF 2.1.0, the interchange format GitHub code
// scanning and most editors consume.
type SARIFRenderer struct {
	// ToolVersion is stamped into the tool descriptor
	ToolVersion string
}

// NewSARIFRenderer returns a SARIF renderer reporting version as the
// tool version.
func NewSARIFRenderer(version string) *SARIFRenderer {
	return &SARIFRenderer{ToolVersion: version}
}

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID string `json:"id"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

// Render encodes the result as one SARIF run
func (r *SARIFRenderer) Render(w io.Writer, result *types.CheckResult) error {
	ruleIDs := map[string]bool{}
	results := make([]sarifResult, 0, len(result.Violations))

	for _, v := range result.Violations {
		ruleIDs[v.Rule] = true

		level := "error"
		if v.Severity == types.SeverityWarning {
			level = "warning"
		}
		results = append(results, sarifResult{
			RuleID:  v.Rule,
			Level:   level,
			Message: sarifMessage{Text: v.Message},
			Locations: []sarifLocation{
				{PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: v.Path},
				}},
			},
		})
	}

	rules := make([]sarifRule, 0, len(ruleIDs))
	for id := range ruleIDs {
		rules = append(rules, sarifRule{ID: id})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	log := sarifLog{
		Schema:  sarifSchema,
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           "treelint",
				Version:        r.ToolVersion,
				InformationURI: "https://github.com/treelint/treelint",
				Rules:          rules,
			}},
			Results: results,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}
