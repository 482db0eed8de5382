// Package plugin wires the admission gate into a host agent runtime: it
// builds the gate from options and registers the two hook handlers the
// runtime dispatches.
package plugin

import (
	"context"
	"time"

	"github.com/clawsec/toolgate/internal/buildconfig"
	"github.com/clawsec/toolgate/internal/config"
	"github.com/clawsec/toolgate/internal/domain"
	"github.com/clawsec/toolgate/internal/guardrail"
	"github.com/clawsec/toolgate/internal/identity"
	"github.com/clawsec/toolgate/internal/service"
	"go.uber.org/zap"
)

// BeforeToolCallPriority fixes where the gate runs among competing
// before-tool-call handlers in the host runtime.
const BeforeToolCallPriority = 10

// HookRegistrar is the host runtime's registration surface.
type HookRegistrar interface {
	OnToolsResolved(fn func(ctx context.Context, ev *domain.ToolsResolvedEvent))
	OnBeforeToolCall(priority int, fn func(ctx context.Context, ev *domain.BeforeToolCallEvent) *domain.Verdict)
}

// Options is the gate's configuration surface.
type Options struct {
	Enabled      bool
	ServerURL    string
	APIKey       string
	AgentName    string
	AgentID      string
	AgentVersion string
	UserAgent    string
	Timeout      time.Duration
	FailClosed   bool
}

// OptionsFromEnv reads the recognized environment keys.
func OptionsFromEnv() Options {
	return Options{
		Enabled:      config.Enabled(),
		ServerURL:    config.ServerURL(),
		APIKey:       config.APIKey(),
		AgentName:    config.AgentName(),
		AgentID:      config.AgentID(),
		AgentVersion: config.AgentVersion(),
		UserAgent:    config.UserAgent(),
		Timeout:      config.Timeout(),
		FailClosed:   config.FailClosed(),
	}
}

// Plugin holds an assembled gate ready to install on a host runtime.
type Plugin struct {
	Gate *service.Gate
}

// New assembles the gate, or returns nil when the gate should install no
// behavior: explicitly disabled, or no server URL configured (warned).
func New(opts Options, logger *zap.Logger) *Plugin {
	if !opts.Enabled {
		return nil
	}
	if opts.ServerURL == "" {
		logger.Warn("guardrail server url not configured, tool-call gate disabled")
		return nil
	}

	if opts.AgentName == "" {
		opts.AgentName = "openclaw"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = buildconfig.UserAgent()
	}

	client := guardrail.NewClient(opts.ServerURL, opts.APIKey, opts.UserAgent, opts.Timeout)
	resolver := identity.NewResolver(opts.AgentID, opts.AgentName, logger)
	registry := service.NewRegistry(resolver, client, opts.AgentVersion, logger)
	gate := service.NewGate(registry, client, opts.FailClosed, logger)

	return &Plugin{Gate: gate}
}

// Install registers the gate's handlers with the host runtime.
func (p *Plugin) Install(r HookRegistrar) {
	r.OnToolsResolved(p.Gate.ToolsResolved)
	r.OnBeforeToolCall(BeforeToolCallPriority, p.Gate.BeforeToolCall)
}
