package mock

import (
	"encoding/json"
	"errors"
	"testing"
)

func call(t *testing.T, h *Host, function string, req any) map[string]json.RawMessage {
	t.Helper()

	payload, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	resp, err := h.HostCall("edgekv", "kvstore", function, payload)
	if err != nil {
		t.Fatalf("HostCall returned error: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(resp, &decoded); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return decoded
}

func statusCode(t *testing.T, resp map[string]json.RawMessage) int32 {
	t.Helper()

	var s struct {
		Code int32 `json:"code"`
	}
	if err := json.Unmarshal(resp["status"], &s); err != nil {
		t.Fatalf("missing status envelope: %v", err)
	}
	return s.Code
}

func TestRouting(t *testing.T) {
	h := New(Config{})

	if _, err := h.HostCall("edgekv", "sql", "get", nil); !errors.Is(err, ErrUnknownCapability) {
		t.Fatalf("expected ErrUnknownCapability, got %v", err)
	}
	if _, err := h.HostCall("edgekv", "kvstore", "bogus", nil); !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("expected ErrUnknownFunction, got %v", err)
	}
}

func TestOpenBindings(t *testing.T) {
	t.Run("configured stores only", func(t *testing.T) {
		h := New(Config{Stores: []string{"KNOWN"}})

		resp := call(t, h, "open", map[string]string{"store": "KNOWN"})
		if code := statusCode(t, resp); code != 200 {
			t.Fatalf("expected 200 for known store, got %d", code)
		}

		resp = call(t, h, "open", map[string]string{"store": "UNKNOWN"})
		if code := statusCode(t, resp); code != 404 {
			t.Fatalf("expected 404 for unknown store, got %d", code)
		}
	})

	t.Run("open world accepts anything", func(t *testing.T) {
		h := New(Config{})

		resp := call(t, h, "open", map[string]string{"store": "ANY"})
		if code := statusCode(t, resp); code != 200 {
			t.Fatalf("expected 200, got %d", code)
		}
	})

	t.Run("seeded store is exposed", func(t *testing.T) {
		h := New(Config{Seed: map[string]map[string][]byte{
			"SEEDED": {"a": []byte("1")},
		}})

		resp := call(t, h, "open", map[string]string{"store": "SEEDED"})
		if code := statusCode(t, resp); code != 200 {
			t.Fatalf("expected 200, got %d", code)
		}

		resp = call(t, h, "open", map[string]string{"store": "OTHER"})
		if code := statusCode(t, resp); code != 404 {
			t.Fatalf("expected 404, got %d", code)
		}
	})
}

func TestSeededValues(t *testing.T) {
	h := New(Config{Seed: map[string]map[string][]byte{
		"S": {"a": []byte("1")},
	}})

	resp := call(t, h, "get", map[string]string{"store": "S", "key": "a"})
	if code := statusCode(t, resp); code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}

	var value []byte
	if err := json.Unmarshal(resp["value"], &value); err != nil {
		t.Fatalf("failed to decode value: %v", err)
	}
	if string(value) != "1" {
		t.Fatalf("unexpected value: %q", value)
	}

	resp = call(t, h, "get", map[string]string{"store": "S", "key": "missing"})
	if code := statusCode(t, resp); code != 404 {
		t.Fatalf("expected 404 for missing key, got %d", code)
	}
}

func TestCallRecording(t *testing.T) {
	h := New(Config{})

	call(t, h, "open", map[string]string{"store": "S"})
	call(t, h, "put", map[string]any{"store": "S", "key": "a", "value": []byte("1")})
	call(t, h, "delete", map[string]string{"store": "S", "key": "a"})

	want := []Call{
		{Function: "open", Store: "S"},
		{Function: "put", Store: "S", Key: "a"},
		{Function: "delete", Store: "S", Key: "a"},
	}
	if len(h.Calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(h.Calls))
	}
	for i, c := range want {
		if h.Calls[i] != c {
			t.Fatalf("call %d mismatch: got %+v, want %+v", i, h.Calls[i], c)
		}
	}
}

func TestValueAccessor(t *testing.T) {
	h := New(Config{})

	call(t, h, "open", map[string]string{"store": "S"})
	call(t, h, "put", map[string]any{"store": "S", "key": "a", "value": []byte("1")})

	if v, ok := h.Value("S", "a"); !ok || string(v) != "1" {
		t.Fatalf("unexpected stored value: ok=%v v=%q", ok, v)
	}
	if _, ok := h.Value("S", "missing"); ok {
		t.Fatal("expected missing key")
	}
	if _, ok := h.Value("NOPE", "a"); ok {
		t.Fatal("expected missing store")
	}
}

func TestPageLimitClamp(t *testing.T) {
	seed := map[string][]byte{"a": []byte("1"), "b": []byte("2"), "c": []byte("3")}
	h := New(Config{Seed: map[string]map[string][]byte{"S": seed}, PageLimit: 2})

	resp := call(t, h, "list", map[string]any{"store": "S", "limit": 100})

	var keys []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(resp["keys"], &keys); err != nil {
		t.Fatalf("failed to decode keys: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected clamp to 2 keys, got %d", len(keys))
	}

	var complete bool
	if err := json.Unmarshal(resp["list_complete"], &complete); err != nil {
		t.Fatalf("failed to decode list_complete: %v", err)
	}
	if complete {
		t.Fatal("expected incomplete listing")
	}
	if _, ok := resp["cursor"]; !ok {
		t.Fatal("expected a cursor")
	}
}

func TestMalformedRequests(t *testing.T) {
	h := New(Config{})

	for _, fn := range []string{"open", "get", "getwithmetadata", "put", "list", "delete"} {
		t.Run(fn, func(t *testing.T) {
			resp, err := h.HostCall("edgekv", "kvstore", fn, []byte("not json"))
			if err != nil {
				t.Fatalf("HostCall returned error: %v", err)
			}

			var decoded map[string]json.RawMessage
			if err := json.Unmarshal(resp, &decoded); err != nil {
				t.Fatalf("response is not valid JSON: %v", err)
			}
			if code := statusCode(t, decoded); code != 400 {
				t.Fatalf("expected 400, got %d", code)
			}
		})
	}
}
