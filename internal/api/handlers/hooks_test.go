package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/clawsec/toolgate/internal/domain"
	"github.com/clawsec/toolgate/internal/identity"
	"github.com/clawsec/toolgate/internal/service"
	"go.uber.org/zap"
)

type stubControlPlane struct {
	mu            sync.Mutex
	registrations int
	evalResp      *domain.EvaluationResponse
}

func (s *stubControlPlane) Register(context.Context, *domain.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registrations++
	return nil
}

func (s *stubControlPlane) Evaluate(context.Context, *domain.EvaluationRequest) (*domain.EvaluationResponse, error) {
	if s.evalResp != nil {
		return s.evalResp, nil
	}
	return &domain.EvaluationResponse{IsSafe: true}, nil
}

func newTestHandler(cp *stubControlPlane) *HooksHandler {
	logger := zap.NewNop()
	resolver := identity.NewResolver("", "crew", logger)
	registry := service.NewRegistry(resolver, cp, "", logger)
	return NewHooksHandler(service.NewGate(registry, cp, false, logger))
}

func post(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestToolsResolved(t *testing.T) {
	cp := &stubControlPlane{}
	h := newTestHandler(cp)

	rr := post(t, h.ToolsResolved, `{"agentId":"researcher","tools":[{"name":"exec","description":"Run shell"}]}`)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204", rr.Code)
	}
	if cp.registrations != 1 {
		t.Fatalf("expected 1 push, got %d", cp.registrations)
	}
}

func TestToolsResolved_InvalidBody(t *testing.T) {
	h := newTestHandler(&stubControlPlane{})
	if rr := post(t, h.ToolsResolved, `{`); rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}

func TestBeforeToolCall_Allow(t *testing.T) {
	h := newTestHandler(&stubControlPlane{})

	rr := post(t, h.BeforeToolCall, `{"agentId":"researcher","toolName":"exec","params":{"cmd":"ls"}}`)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("allow must carry no payload, got %q", rr.Body.String())
	}
}

func TestBeforeToolCall_Block(t *testing.T) {
	cp := &stubControlPlane{evalResp: &domain.EvaluationResponse{
		IsSafe:  false,
		Matches: []domain.ControlMatch{{Action: "deny", ControlName: "deny-destructive-cmd"}},
	}}
	h := newTestHandler(cp)

	rr := post(t, h.BeforeToolCall, `{"agentId":"researcher","toolName":"exec"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rr.Code)
	}

	var verdict domain.Verdict
	if err := json.NewDecoder(rr.Body).Decode(&verdict); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if !verdict.Block {
		t.Fatal("expected block verdict")
	}
	if !strings.Contains(verdict.BlockReason, "deny-destructive-cmd") {
		t.Fatalf("unexpected reason %q", verdict.BlockReason)
	}
}

func TestBeforeToolCall_MissingToolName(t *testing.T) {
	h := newTestHandler(&stubControlPlane{})
	if rr := post(t, h.BeforeToolCall, `{"agentId":"researcher"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}

func TestBeforeToolCall_NonObjectParametersTolerated(t *testing.T) {
	h := newTestHandler(&stubControlPlane{})

	// Host runtimes send anything as params; the gate forwards it opaquely.
	rr := post(t, h.BeforeToolCall, `{"toolName":"exec","params":[1,2,3]}`)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204", rr.Code)
	}
}
