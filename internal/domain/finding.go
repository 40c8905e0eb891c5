package domain

import "strconv"

// DetectionTarget is one source file to analyze: the filename reported in
// findings and the full code sent to the model.
type DetectionTarget struct {
	Filename string
	Code     string
}

// Finding is one normalized detection result. Line is 1-based; a line of
// -1 marks a salvage diagnostic rather than a located smell. RawResponse
// always carries the full provider output the finding came from.
type Finding struct {
	Filename       string   `json:"filename"`
	FunctionName   string   `json:"function_name"`
	SmellName      string   `json:"smell_name"`
	Line           int      `json:"line"`
	Description    string   `json:"description"`
	AdditionalInfo string   `json:"additional_info"`
	SmellID        string   `json:"smell_id,omitempty"`
	Confidence     *float64 `json:"confidence,omitempty"`
	RawResponse    string   `json:"raw_response,omitempty"`
}

// Valid reports whether the finding points at an actual source line.
func (f Finding) Valid() bool {
	return f.Line > 0
}

// OverviewColumns is the fixed column order of the findings report.
var OverviewColumns = []string{
	"filename",
	"function_name",
	"smell_name",
	"line",
	"description",
	"additional_info",
}

// OverviewRow projects the finding onto OverviewColumns.
func (f Finding) OverviewRow() []string {
	return []string{
		f.Filename,
		f.FunctionName,
		f.SmellName,
		strconv.Itoa(f.Line),
		f.Description,
		f.AdditionalInfo,
	}
}

// RunStats counts the work a detection run performed. TargetsProcessed and
// SmellsProcessed reflect the requested inputs regardless of skips;
// PromptsSent counts prompts actually sent.
type RunStats struct {
	PromptsSent      int `json:"prompts_sent"`
	TargetsProcessed int `json:"targets_processed"`
	SmellsProcessed  int `json:"smells_processed"`
}
