package hostmock

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedNamespace is returned when the namespace is not as expected.
	ErrUnexpectedNamespace = errors.New("unexpected namespace")

	// ErrUnexpectedCapability is returned when the capability is not as expected.
	ErrUnexpectedCapability = errors.New("unexpected capability")

	// ErrUnexpectedFunction is returned when the function is not as expected.
	ErrUnexpectedFunction = errors.New("unexpected function")

	// ErrOperationFailed is returned when Fail is set without a custom error.
	ErrOperationFailed = errors.New("operation failed")
)

// Config represents the configuration for creating a Mock instance.
type Config struct {
	// ExpectedNamespace defines the namespace expected in the host call.
	ExpectedNamespace string

	// ExpectedCapability defines the capability expected in the host call.
	ExpectedCapability string

	// ExpectedFunction defines the function name expected in the host call.
	ExpectedFunction string

	// Error is the error to return if the mock is configured to fail.
	Error error

	// PayloadValidator validates the payload passed to the host call.
	PayloadValidator func([]byte) error

	// Response defines the response to return for the host call.
	Response func() []byte

	// Fail indicates whether the mock should return an error.
	Fail bool
}

// Mock simulates a host call interface with validation and configurable responses.
type Mock struct {
	cfg Config

	// Calls counts how many times HostCall has been invoked, including
	// calls that failed validation.
	Calls int
}

// New creates a new instance of the Mock based on the provided Config.
func New(config Config) (*Mock, error) {
	return &Mock{cfg: config}, nil
}

// HostCall simulates a host call, validating inputs and returning a response or error.
func (m *Mock) HostCall(namespace, capability, function string, payload []byte) ([]byte, error) {
	m.Calls++

	// Return the configured failure, falling back to a default error
	if m.cfg.Fail {
		if m.cfg.Error != nil {
			return nil, m.cfg.Error
		}
		return nil, ErrOperationFailed
	}

	// Enforce routing values that were set; blank fields are wildcards
	if m.cfg.ExpectedNamespace != "" && m.cfg.ExpectedNamespace != namespace {
		return nil, fmt.Errorf("%w: expected namespace %s, got %s", ErrUnexpectedNamespace, m.cfg.ExpectedNamespace, namespace)
	}
	if m.cfg.ExpectedCapability != "" && m.cfg.ExpectedCapability != capability {
		return nil, fmt.Errorf("%w: expected capability %s, got %s", ErrUnexpectedCapability, m.cfg.ExpectedCapability, capability)
	}
	if m.cfg.ExpectedFunction != "" && m.cfg.ExpectedFunction != function {
		return nil, fmt.Errorf("%w: expected function %s, got %s", ErrUnexpectedFunction, m.cfg.ExpectedFunction, function)
	}

	// Validate payload using user-defined validator, if provided
	if m.cfg.PayloadValidator != nil {
		if err := m.cfg.PayloadValidator(payload); err != nil {
			return nil, err
		}
	}

	// Return user-defined response if provided
	if m.cfg.Response != nil {
		return m.cfg.Response(), nil
	}

	// Default to no response
	return nil, nil
}
