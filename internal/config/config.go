package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by TOOLGATE_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("TOOLGATE_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

// Enabled reports whether the gate should install any behavior at all.
// Defaults to true; only an explicit "false"/"0" disables it.
func Enabled() bool {
	switch os.Getenv("GUARDRAIL_ENABLED") {
	case "false", "0":
		return false
	}
	return true
}

// ServerURL is the guardrail control-plane base URL. Required: the gate
// disables itself with a warning when it is absent.
func ServerURL() string {
	return os.Getenv("GUARDRAIL_SERVER_URL")
}

func APIKey() string {
	return os.Getenv("GUARDRAIL_API_KEY")
}

// AgentName returns the base display name for registered agents.
// Defaults to "openclaw" if not set.
func AgentName() string {
	name := os.Getenv("AGENT_NAME")
	if name == "" {
		return "openclaw"
	}
	return name
}

// AgentID returns the optional pre-assigned canonical agent identifier.
// Validation happens in the identity resolver, not here.
func AgentID() string {
	return os.Getenv("AGENT_ID")
}

func AgentVersion() string {
	return os.Getenv("AGENT_VERSION")
}

// Timeout returns the per-call control-plane timeout. GUARDRAIL_TIMEOUT_MS
// must be a positive integer; anything else falls back to the built-in
// default of 15s.
func Timeout() time.Duration {
	ms, err := strconv.Atoi(os.Getenv("GUARDRAIL_TIMEOUT_MS"))
	if err != nil || ms <= 0 {
		return 15 * time.Second
	}
	return time.Duration(ms) * time.Millisecond
}

func UserAgent() string {
	return os.Getenv("GUARDRAIL_USER_AGENT")
}

// FailClosed reports whether control-plane unavailability blocks tool
// calls. Defaults to false (fail-open).
func FailClosed() bool {
	switch os.Getenv("GUARDRAIL_FAIL_CLOSED") {
	case "true", "1":
		return true
	}
	return false
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// DatabaseURL is the optional Postgres DSN for the decision audit log.
// Empty disables auditing.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// GatewayAPIKey protects the sidecar hook endpoints. Empty disables auth.
func GatewayAPIKey() string {
	return os.Getenv("GATEWAY_API_KEY")
}

// RateLimitRPS returns requests per second limit for the sidecar.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
