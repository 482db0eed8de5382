package guardrail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clawsec/toolgate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	var got domain.Registration
	var auth, ua string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, registerPath, r.URL.Path)
		auth = r.Header.Get("Authorization")
		ua = r.Header.Get("User-Agent")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", "toolgate/1.0", time.Second)
	reg := &domain.Registration{
		AgentID: "123e4567-e89b-42d3-a456-426614174000",
		Name:    "crew:researcher",
		Metadata: map[string]string{
			"source":          "openclaw",
			"openclawAgentId": "researcher",
			"pluginId":        "toolgate",
		},
		Steps: []domain.ToolStep{{Name: "exec", Description: "Run shell"}},
	}
	require.NoError(t, c.Register(context.Background(), reg))

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "toolgate/1.0", ua)
	assert.Equal(t, reg.AgentID, got.AgentID)
	assert.Len(t, got.Steps, 1)
	assert.Equal(t, "exec", got.Steps[0].Name)
}

func TestEvaluate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, evaluatePath, r.URL.Path)

		var req domain.EvaluationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, domain.StagePre, req.Stage)
		assert.Equal(t, domain.StepTypeTool, req.Step.Type)
		assert.Equal(t, "exec", req.Step.Name)
		assert.Equal(t, "researcher", req.Step.Context.AgentID)

		_ = json.NewEncoder(w).Encode(domain.EvaluationResponse{
			IsSafe:  false,
			Reason:  "destructive command",
			Matches: []domain.ControlMatch{{Action: "deny", ControlName: "deny-destructive-cmd"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", time.Second)
	resp, err := c.Evaluate(context.Background(), &domain.EvaluationRequest{
		AgentID: "123e4567-e89b-42d3-a456-426614174000",
		Stage:   domain.StagePre,
		Step: domain.EvaluationStep{
			Type:    domain.StepTypeTool,
			Name:    "exec",
			Input:   map[string]any{"cmd": "rm -rf /"},
			Context: domain.StepContext{AgentID: "researcher"},
		},
	})
	require.NoError(t, err)
	assert.False(t, resp.IsSafe)
	assert.Equal(t, "destructive command", resp.Reason)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "deny", resp.Matches[0].Action)
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", time.Second)
	err := c.Register(context.Background(), &domain.Registration{AgentID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")

	_, err = c.Evaluate(context.Background(), &domain.EvaluationRequest{})
	require.Error(t, err)
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, "", "", 50*time.Millisecond)
	err := c.Register(context.Background(), &domain.Registration{AgentID: "x"})
	require.Error(t, err)
}
