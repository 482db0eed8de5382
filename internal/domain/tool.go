package domain

// RawToolDescriptor is a tool declaration as received from the host runtime,
// before canonicalization. Parameters is kept untyped because hosts send
// anything from a JSON-schema object to null; only plain objects survive
// canonicalization.
type RawToolDescriptor struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
}

// ToolStepMetadata carries auxiliary fields of a tool step. Currently only
// the host-facing label.
type ToolStepMetadata struct {
	Label string `json:"label,omitempty"`
}

// ToolStep is one entry of an agent's canonical tool inventory, as pushed to
// the control plane.
type ToolStep struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	InputSchema map[string]any    `json:"inputSchema,omitempty"`
	Metadata    *ToolStepMetadata `json:"metadata,omitempty"`
}

// Registration is the idempotent upstream push: agent identity plus its full
// current tool inventory.
type Registration struct {
	AgentID  string            `json:"agentId"`
	Name     string            `json:"name"`
	Version  string            `json:"version,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Steps    []ToolStep        `json:"steps"`
}
