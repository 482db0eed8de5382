package domain

import "context"

// ControlPlane is the remote guardrail service. Register is idempotent on
// the control-plane side; repeating it with an unchanged inventory is a
// no-op upstream.
type ControlPlane interface {
	Register(ctx context.Context, reg *Registration) error
	Evaluate(ctx context.Context, req *EvaluationRequest) (*EvaluationResponse, error)
}

// DecisionStore persists audited gate outcomes.
type DecisionStore interface {
	Record(ctx context.Context, d *Decision) error
}
