package logging

import (
	sdk "github.com/edgekv-project/sdk"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

const (
	capabilityName = "logger"

	fnInfo  = "info"
	fnWarn  = "warn"
	fnError = "error"
	fnDebug = "debug"
	fnTrace = "trace"
)

// HostCall defines the waPC host function signature used by logging operations.
type HostCall func(string, string, string, []byte) ([]byte, error)

// Client exposes convenience helpers for sending log entries to the host runtime.
type Client interface {
	Info(message string)
	Warn(message string)
	Error(message string)
	Debug(message string)
	Trace(message string)
}

// Config controls how a Client instance interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig sdk.RuntimeConfig

	// HostCall overrides the waPC host function used for logging operations.
	HostCall HostCall
}

// HostLogger implements Client by forwarding entries to the host logger
// capability. Log delivery is fire-and-forget: the guest has no stderr of
// its own, and a failed log call must never fail the operation being logged.
type HostLogger struct {
	runtime  sdk.RuntimeConfig
	hostCall HostCall
}

// Ensure HostLogger satisfies the Client interface at compile time.
var _ Client = (*HostLogger)(nil)

// New creates a logging client with namespace defaults and optional host-call override.
func New(config Config) (*HostLogger, error) {
	runtime := config.SDKConfig
	if runtime.Namespace == "" {
		runtime.Namespace = sdk.DefaultNamespace
	}

	hostCall := config.HostCall
	if hostCall == nil {
		hostCall = wapc.HostCall
	}

	return &HostLogger{runtime: runtime, hostCall: hostCall}, nil
}

func (l *HostLogger) Info(message string)  { l.send(fnInfo, message) }
func (l *HostLogger) Warn(message string)  { l.send(fnWarn, message) }
func (l *HostLogger) Error(message string) { l.send(fnError, message) }
func (l *HostLogger) Debug(message string) { l.send(fnDebug, message) }
func (l *HostLogger) Trace(message string) { l.send(fnTrace, message) }

func (l *HostLogger) send(fn string, message string) {
	_, _ = l.hostCall(l.runtime.Namespace, capabilityName, fn, []byte(message))
}
