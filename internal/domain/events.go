package domain

// ToolsResolvedEvent is emitted by the host runtime once an agent's tool set
// has been resolved for a session.
type ToolsResolvedEvent struct {
	AgentID string              `json:"agentId,omitempty"`
	Tools   []RawToolDescriptor `json:"tools"`
}

// BeforeToolCallEvent is emitted by the host runtime immediately before a
// tool call executes. AgentID is the caller-supplied logical name and may be
// absent.
type BeforeToolCallEvent struct {
	AgentID    string `json:"agentId,omitempty"`
	SessionKey string `json:"sessionKey,omitempty"`
	ToolName   string `json:"toolName"`
	Params     any    `json:"params,omitempty"`
}
