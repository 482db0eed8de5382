package domain

// StagePre marks a pre-execution evaluation request.
const StagePre = "pre"

// StepTypeTool marks a tool-invocation step descriptor.
const StepTypeTool = "tool"

// StepContext identifies the logical caller of a pending tool invocation.
type StepContext struct {
	AgentID    string `json:"agentId"`
	SessionKey string `json:"sessionKey,omitempty"`
}

// EvaluationStep describes the pending invocation being evaluated.
type EvaluationStep struct {
	Type    string      `json:"type"`
	Name    string      `json:"name"`
	Input   any         `json:"input,omitempty"`
	Context StepContext `json:"context"`
}

// EvaluationRequest is the body of a per-call policy evaluation.
type EvaluationRequest struct {
	AgentID string         `json:"agentId"`
	Stage   string         `json:"stage"`
	Step    EvaluationStep `json:"step"`
}

// ControlMatch is one matched (or errored) policy control in an evaluation
// response.
type ControlMatch struct {
	Action      string `json:"action,omitempty"`
	ControlName string `json:"controlName,omitempty"`
}

// EvaluationResponse is the control plane's verdict on a pending invocation.
type EvaluationResponse struct {
	IsSafe  bool           `json:"isSafe"`
	Reason  string         `json:"reason,omitempty"`
	Matches []ControlMatch `json:"matches,omitempty"`
	Errors  []ControlMatch `json:"errors,omitempty"`
}

// Verdict is what the gate hands back to the host runtime for a blocked
// call. An allowed call produces no verdict at all.
type Verdict struct {
	Block       bool   `json:"block"`
	BlockReason string `json:"blockReason"`
}
