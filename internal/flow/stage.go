package flow

// Stage is a step of the per-invocation pipeline. Stages run strictly in
// order; the first error moves the invocation to StageFailed.
type Stage string

const (
	StageValidating    Stage = "validating"
	StagePrompting     Stage = "prompting"
	StageInvoking      Stage = "invoking"
	StageParsingOutput Stage = "parsing_output"
	StageDone          Stage = "done"
	StageFailed        Stage = "failed"
)

// Terminal reports whether s ends an invocation.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}
