package service

import (
	"context"
	"strings"
	"time"

	"github.com/clawsec/toolgate/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// blockReasonPrefix opens every block reason shown to the agent.
	blockReasonPrefix = "guardrail: "

	genericBlockReason        = "blocked by policy evaluation"
	registrationFailureReason = "guardrail service unavailable (agent registration failed)"
	evaluationFailureReason   = "guardrail service unavailable (evaluation failed)"
)

// Gate is the admission check in front of tool execution. It keeps the
// control plane's agent registrations fresh and converts evaluation
// responses into allow/block verdicts. Collaborator failures never escape
// to the host runtime; they either log (fail-open) or block (fail-closed).
type Gate struct {
	registry     *Registry
	controlPlane domain.ControlPlane
	decisions    domain.DecisionStore
	failClosed   bool
	logger       *zap.Logger
}

func NewGate(registry *Registry, cp domain.ControlPlane, failClosed bool, logger *zap.Logger) *Gate {
	return &Gate{
		registry:     registry,
		controlPlane: cp,
		failClosed:   failClosed,
		logger:       logger,
	}
}

// SetDecisionStore enables audit logging of gate outcomes.
func (s *Gate) SetDecisionStore(ds domain.DecisionStore) {
	s.decisions = ds
}

// ToolsResolved recomputes the agent's inventory and pushes it upstream on
// a best-effort basis. Failures are logged; the lifecycle event is never
// blocked.
func (s *Gate) ToolsResolved(ctx context.Context, ev *domain.ToolsResolvedEvent) {
	rec := s.registry.Resolve(ev.AgentID)
	s.registry.UpdateInventory(rec, ev.Tools)

	if err := s.registry.EnsureSynced(ctx, rec); err != nil {
		s.logger.Warn("agent sync after tool resolution failed",
			zap.String("agent", rec.SourceID),
			zap.Error(err))
	}
}

// BeforeToolCall gates one pending tool invocation. A nil verdict allows
// the call; a non-nil verdict blocks it with a human-readable reason.
func (s *Gate) BeforeToolCall(ctx context.Context, ev *domain.BeforeToolCallEvent) *domain.Verdict {
	start := time.Now()
	rec := s.registry.Resolve(ev.AgentID)

	if err := s.registry.EnsureSynced(ctx, rec); err != nil {
		if s.failClosed {
			return s.failure(ctx, rec, ev, start, registrationFailureReason, err)
		}
		// Fail-open: an unsynced registration alone never blocks the call;
		// evaluation is still attempted.
		s.logger.Warn("agent sync failed, evaluating unsynced",
			zap.String("agent", rec.SourceID),
			zap.String("tool", ev.ToolName),
			zap.Error(err))
	}

	resp, err := s.controlPlane.Evaluate(ctx, &domain.EvaluationRequest{
		AgentID: rec.CanonicalID,
		Stage:   domain.StagePre,
		Step: domain.EvaluationStep{
			Type:  domain.StepTypeTool,
			Name:  ev.ToolName,
			Input: ev.Params,
			Context: domain.StepContext{
				AgentID:    rec.SourceID,
				SessionKey: ev.SessionKey,
			},
		},
	})
	if err != nil {
		return s.failure(ctx, rec, ev, start, evaluationFailureReason, err)
	}

	if resp.IsSafe {
		s.audit(ctx, rec, ev, start, true, "")
		return nil
	}

	reason := blockReasonPrefix + blockReason(resp)
	s.logger.Info("tool call blocked",
		zap.String("agent", rec.SourceID),
		zap.String("tool", ev.ToolName),
		zap.String("reason", reason))
	s.audit(ctx, rec, ev, start, false, reason)
	return &domain.Verdict{Block: true, BlockReason: reason}
}

// failure applies the fail-open/fail-closed branch for a collaborator
// error. fixedReason is the operator-chosen text shown when failing closed.
func (s *Gate) failure(ctx context.Context, rec *AgentRecord, ev *domain.BeforeToolCallEvent, start time.Time, fixedReason string, err error) *domain.Verdict {
	if !s.failClosed {
		s.logger.Warn("guardrail unavailable, allowing tool call",
			zap.String("agent", rec.SourceID),
			zap.String("tool", ev.ToolName),
			zap.Error(err))
		s.audit(ctx, rec, ev, start, true, "")
		return nil
	}

	reason := blockReasonPrefix + fixedReason
	s.logger.Warn("guardrail unavailable, blocking tool call",
		zap.String("agent", rec.SourceID),
		zap.String("tool", ev.ToolName),
		zap.Error(err))
	s.audit(ctx, rec, ev, start, false, reason)
	return &domain.Verdict{Block: true, BlockReason: reason}
}

// blockReason derives the unprefixed reason for an unsafe response: named
// deny controls first, then the service's free-text reason, then a generic
// fallback.
func blockReason(resp *domain.EvaluationResponse) string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range append(append([]domain.ControlMatch{}, resp.Matches...), resp.Errors...) {
		if m.Action != "deny" {
			continue
		}
		name := strings.TrimSpace(m.ControlName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) > 0 {
		return "blocked by deny control(s): " + strings.Join(names, ", ")
	}

	if reason := strings.TrimSpace(resp.Reason); reason != "" {
		return reason
	}
	return genericBlockReason
}

func (s *Gate) audit(ctx context.Context, rec *AgentRecord, ev *domain.BeforeToolCallEvent, start time.Time, allowed bool, reason string) {
	if s.decisions == nil {
		return
	}
	d := &domain.Decision{
		ID:       uuid.New(),
		AgentID:  rec.CanonicalID,
		SourceID: rec.SourceID,
		ToolName: ev.ToolName,
		Allowed:  allowed,
		Reason:   reason,
		Duration: time.Since(start),
	}
	if err := s.decisions.Record(ctx, d); err != nil {
		s.logger.Warn("failed to record gate decision", zap.Error(err))
	}
}
