package enums

type FlowState string

const (
	FlowStateLogin      FlowState = "login"
	FlowStateLoading    FlowState = "loading"
	FlowStateTierSelect FlowState = "tier_select"
	FlowStateGenerating FlowState = "generating"
	FlowStateResults    FlowState = "results"
)

// Busy reports whether the flow is waiting on a display timer and ignores
// user input.
func (s FlowState) Busy() bool {
	return s == FlowStateLoading || s == FlowStateGenerating
}
