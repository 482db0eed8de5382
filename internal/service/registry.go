package service

import (
	"context"
	"sync"

	"github.com/clawsec/toolgate/internal/domain"
	"github.com/clawsec/toolgate/internal/identity"
	"github.com/clawsec/toolgate/internal/inventory"
	"go.uber.org/zap"
)

// pushOp is one in-flight synchronization. Callers that find a pending op
// attach to it by waiting on done; err is set before done is closed.
type pushOp struct {
	done chan struct{}
	err  error
}

// AgentRecord tracks everything the gate knows about one logical agent. It
// is created lazily on the first event naming its source ID and lives for
// the process lifetime. All fields below mu are guarded by it and mutated
// only by the Registry.
type AgentRecord struct {
	SourceID    string
	CanonicalID string
	DisplayName string

	mu          sync.Mutex
	steps       []domain.ToolStep
	fingerprint string
	lastPushed  string
	pending     *pushOp
}

// Fingerprint returns the current inventory fingerprint.
func (r *AgentRecord) Fingerprint() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fingerprint
}

// Steps returns a copy of the current canonical inventory.
func (r *AgentRecord) Steps() []domain.ToolStep {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ToolStep, len(r.steps))
	copy(out, r.steps)
	return out
}

// Registry owns the per-agent records and keeps the control plane's view of
// each agent converged to the latest local inventory. It is the sole
// mutator of record state.
type Registry struct {
	resolver     *identity.Resolver
	controlPlane domain.ControlPlane
	agentVersion string
	logger       *zap.Logger

	mu      sync.Mutex
	records map[string]*AgentRecord
}

func NewRegistry(resolver *identity.Resolver, cp domain.ControlPlane, agentVersion string, logger *zap.Logger) *Registry {
	return &Registry{
		resolver:     resolver,
		controlPlane: cp,
		agentVersion: agentVersion,
		logger:       logger,
		records:      make(map[string]*AgentRecord),
	}
}

// Resolve returns the record for sourceID, creating it on first use. An
// empty sourceID maps to the default agent.
func (g *Registry) Resolve(sourceID string) *AgentRecord {
	if sourceID == "" {
		sourceID = identity.DefaultSourceID
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if rec, ok := g.records[sourceID]; ok {
		return rec
	}

	canonical, display := g.resolver.Resolve(sourceID)
	rec := &AgentRecord{
		SourceID:    sourceID,
		CanonicalID: canonical,
		DisplayName: display,
	}
	// Fingerprint of the empty inventory, so a first push happens even for
	// an agent that declares no tools.
	rec.fingerprint = inventory.Fingerprint(nil)
	g.records[sourceID] = rec
	return rec
}

// UpdateInventory canonicalizes the raw descriptors and recomputes the
// record's fingerprint. The fingerprint is never stale relative to steps.
func (g *Registry) UpdateInventory(rec *AgentRecord, raw []domain.RawToolDescriptor) {
	steps := inventory.Canonicalize(raw)
	fp := inventory.Fingerprint(steps)

	rec.mu.Lock()
	rec.steps = steps
	rec.fingerprint = fp
	rec.mu.Unlock()

	g.logger.Debug("tool inventory updated",
		zap.String("agent", rec.SourceID),
		zap.Int("tools", len(steps)),
		zap.String("fingerprint", fp[:12]))
}

// EnsureSynced guarantees that when it returns nil, the control plane has
// received a push at least as fresh as the inventory fingerprint observed
// at call time. Concurrent callers coalesce onto a single in-flight push
// per record; the push loop re-targets until the latest fingerprint has
// been pushed, so updates that land mid-push are never dropped.
func (g *Registry) EnsureSynced(ctx context.Context, rec *AgentRecord) error {
	var op *pushOp
	for op == nil {
		rec.mu.Lock()
		if pending := rec.pending; pending != nil {
			rec.mu.Unlock()
			select {
			case <-pending.done:
				if pending.err != nil {
					return pending.err
				}
				// The pending push may predate the fingerprint this caller
				// observed; re-check instead of trusting it.
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if rec.lastPushed == rec.fingerprint {
			rec.mu.Unlock()
			return nil
		}
		op = &pushOp{done: make(chan struct{})}
		rec.pending = op
		rec.mu.Unlock()
	}

	err := g.syncLoop(ctx, rec)

	rec.mu.Lock()
	rec.pending = nil
	rec.mu.Unlock()

	op.err = err
	close(op.done)
	return err
}

// syncLoop pushes the captured inventory and repeats until the pushed
// target equals the latest fingerprint. A failed push leaves lastPushed
// untouched so the next EnsureSynced retries.
func (g *Registry) syncLoop(ctx context.Context, rec *AgentRecord) error {
	for {
		rec.mu.Lock()
		target := rec.fingerprint
		if rec.lastPushed == target {
			rec.mu.Unlock()
			return nil
		}
		steps := make([]domain.ToolStep, len(rec.steps))
		copy(steps, rec.steps)
		rec.mu.Unlock()

		reg := &domain.Registration{
			AgentID: rec.CanonicalID,
			Name:    rec.DisplayName,
			Version: g.agentVersion,
			Metadata: map[string]string{
				"source":          "openclaw",
				"openclawAgentId": rec.SourceID,
				"pluginId":        "toolgate",
			},
			Steps: steps,
		}
		if err := g.controlPlane.Register(ctx, reg); err != nil {
			g.logger.Warn("agent registration push failed",
				zap.String("agent", rec.SourceID),
				zap.Error(err))
			return err
		}

		rec.mu.Lock()
		rec.lastPushed = target
		changed := rec.fingerprint != target
		rec.mu.Unlock()

		g.logger.Info("agent registered with guardrail service",
			zap.String("agent", rec.SourceID),
			zap.String("agent_id", rec.CanonicalID),
			zap.Int("tools", len(steps)))

		if !changed {
			return nil
		}
		// Inventory moved while the push was in flight; go around again so
		// the control plane converges to the latest snapshot.
	}
}
