package hostmock

import (
	"bytes"
	"errors"
	"testing"
)

var errMock = errors.New("mock error")

func TestHostMock(t *testing.T) {
	tt := []struct {
		name       string
		cfg        Config
		namespace  string
		capability string
		function   string
		payload    []byte
		want       []byte
		wantErr    error
	}{
		{
			name: "happy path",
			cfg: Config{
				ExpectedNamespace:  "test",
				ExpectedCapability: "kvstore",
				ExpectedFunction:   "get",
				Response:           func() []byte { return []byte("ok") },
			},
			namespace:  "test",
			capability: "kvstore",
			function:   "get",
			payload:    []byte("payload"),
			want:       []byte("ok"),
		},
		{
			name:       "custom failure",
			cfg:        Config{Fail: true, Error: errMock},
			namespace:  "test",
			capability: "kvstore",
			function:   "get",
			wantErr:    errMock,
		},
		{
			name:       "default failure",
			cfg:        Config{Fail: true},
			namespace:  "test",
			capability: "kvstore",
			function:   "get",
			wantErr:    ErrOperationFailed,
		},
		{
			name:       "wrong namespace",
			cfg:        Config{ExpectedNamespace: "expected"},
			namespace:  "other",
			capability: "kvstore",
			function:   "get",
			wantErr:    ErrUnexpectedNamespace,
		},
		{
			name:       "wrong capability",
			cfg:        Config{ExpectedCapability: "kvstore"},
			namespace:  "test",
			capability: "sql",
			function:   "get",
			wantErr:    ErrUnexpectedCapability,
		},
		{
			name:       "wrong function",
			cfg:        Config{ExpectedFunction: "get"},
			namespace:  "test",
			capability: "kvstore",
			function:   "delete",
			wantErr:    ErrUnexpectedFunction,
		},
		{
			name: "payload validator rejects",
			cfg: Config{
				PayloadValidator: func(_ []byte) error { return errMock },
			},
			namespace:  "test",
			capability: "kvstore",
			function:   "get",
			wantErr:    errMock,
		},
		{
			name:       "blank fields are wildcards",
			cfg:        Config{},
			namespace:  "anything",
			capability: "anything",
			function:   "anything",
			want:       nil,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			m, err := New(tc.cfg)
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}

			got, err := m.HostCall(tc.namespace, tc.capability, tc.function, tc.payload)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if !bytes.Equal(got, tc.want) {
				t.Fatalf("expected response %q, got %q", tc.want, got)
			}
			if m.Calls != 1 {
				t.Fatalf("expected 1 recorded call, got %d", m.Calls)
			}
		})
	}
}

func TestHostMockCallCount(t *testing.T) {
	m, err := New(Config{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := m.HostCall("ns", "cap", "fn", nil); err != nil {
			t.Fatalf("HostCall returned error: %v", err)
		}
	}

	if m.Calls != 3 {
		t.Fatalf("expected 3 recorded calls, got %d", m.Calls)
	}
}
