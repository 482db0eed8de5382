package domain

import (
	"time"

	"github.com/google/uuid"
)

// Decision is one audited gate outcome.
type Decision struct {
	ID        uuid.UUID     `json:"id"`
	AgentID   string        `json:"agent_id"`
	SourceID  string        `json:"source_id"`
	ToolName  string        `json:"tool_name"`
	Allowed   bool          `json:"allowed"`
	Reason    string        `json:"reason,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}
