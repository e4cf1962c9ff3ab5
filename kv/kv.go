package kv

import (
	"encoding/json"
	"errors"

	sdk "github.com/edgekv-project/sdk"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

var (
	// ErrInvalidStore indicates an empty or invalid store binding name.
	ErrInvalidStore = errors.New("store name is invalid")

	// ErrStoreNotFound means the host does not expose a kv store under the
	// requested binding name.
	ErrStoreNotFound = errors.New("store is not bound by the host")

	// ErrInvalidKey indicates an empty or invalid key.
	ErrInvalidKey = errors.New("key is invalid")

	// ErrMarshalRequest wraps failures while encoding the request payload,
	// including caller-supplied metadata and JSON values.
	ErrMarshalRequest = errors.New("failed to marshal request")

	// ErrUnmarshalResponse wraps failures while decoding the host response.
	ErrUnmarshalResponse = errors.New("failed to unmarshal response")

	// ErrDeserialize means the host call succeeded but the returned value or
	// metadata did not match the shape the caller asked for. Distinct from
	// sdk.ErrHostError so callers can tell a schema mismatch from a service
	// fault.
	ErrDeserialize = errors.New("failed to deserialize payload")

	// ErrExpirationConflict is returned when a put was configured with both
	// an absolute expiration and a relative TTL.
	ErrExpirationConflict = errors.New("expiration and expiration TTL are mutually exclusive")

	// ErrAlreadyExecuted is returned when a builder is executed more than once.
	ErrAlreadyExecuted = errors.New("builder has already been executed")
)

// HostCall defines the waPC host function signature used by kv operations.
type HostCall func(string, string, string, []byte) ([]byte, error)

// Config controls how a Store instance interacts with the host runtime.
type Config struct {
	// Store is the binding name of the kv store to open. Required.
	Store string

	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig sdk.RuntimeConfig

	// HostCall overrides the waPC host function used for kv operations.
	HostCall HostCall
}

// Store is a handle to a host-bound kv store. It holds no local state
// beyond the binding name; all durable state lives in the host.
type Store struct {
	name     string
	runtime  sdk.RuntimeConfig
	hostCall HostCall
}

// Value is a value fetched by a get request. The caller selects how the
// raw payload is decoded via Bytes, Text, or Decode.
type Value struct {
	raw []byte
}

// Bytes returns the raw value bytes.
func (v *Value) Bytes() []byte { return v.raw }

// Text returns the value as a UTF-8 string.
func (v *Value) Text() string { return string(v.raw) }

// Decode unmarshals the value as JSON into target. Failures are reported
// as ErrDeserialize, not host errors.
func (v *Value) Decode(target any) error {
	if err := json.Unmarshal(v.raw, target); err != nil {
		return errors.Join(ErrDeserialize, err)
	}
	return nil
}

// Entry is a value together with the metadata stored alongside it.
type Entry struct {
	// Value is the fetched value.
	Value Value

	// Metadata holds the stored metadata as raw JSON, or nil when the key
	// has none.
	Metadata json.RawMessage
}

// DecodeMetadata unmarshals the entry metadata into target. It reports
// false when the key has no metadata, and ErrDeserialize when metadata
// exists but does not match the target shape.
func (e *Entry) DecodeMetadata(target any) (bool, error) {
	if len(e.Metadata) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(e.Metadata, target); err != nil {
		return false, errors.Join(ErrDeserialize, err)
	}
	return true, nil
}

// Key is one entry of a list result.
type Key struct {
	// Name is the key name.
	Name string

	// Expiration is the unix timestamp at which the key expires, or zero
	// when the key does not expire.
	Expiration uint64

	// Metadata holds the key metadata as raw JSON, or nil when absent.
	Metadata json.RawMessage
}

// DecodeMetadata unmarshals the key metadata into target. It reports false
// when the key has no metadata.
func (k *Key) DecodeMetadata(target any) (bool, error) {
	if len(k.Metadata) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(k.Metadata, target); err != nil {
		return false, errors.Join(ErrDeserialize, err)
	}
	return true, nil
}

// ListResult is one page of a list operation.
type ListResult struct {
	// Keys are the key entries of this page, in host order.
	Keys []Key

	// Cursor is the pagination token for the next page. Empty when the
	// listing is complete.
	Cursor string

	// Complete reports whether the listing reached the end of the store.
	Complete bool
}

// Open creates a handle to the named kv store binding, issuing one host
// call to validate that the host exposes it. An unknown binding fails with
// ErrStoreNotFound.
func Open(config Config) (*Store, error) {
	if config.Store == "" {
		return nil, ErrInvalidStore
	}

	runtime := config.SDKConfig
	if runtime.Namespace == "" {
		runtime.Namespace = sdk.DefaultNamespace
	}

	hostCall := config.HostCall
	if hostCall == nil {
		hostCall = wapc.HostCall
	}

	s := &Store{name: config.Store, runtime: runtime, hostCall: hostCall}

	b, err := json.Marshal(openRequest{Store: s.name})
	if err != nil {
		return nil, errors.Join(ErrMarshalRequest, err)
	}

	respBytes, callErr := s.hostCall(s.runtime.Namespace, capabilityName, fnOpen, b)

	var resp openResponse
	if err := decodeResponse(respBytes, callErr, &resp); err != nil {
		return nil, err
	}

	if resp.Status != nil && resp.Status.Code == hostStatusMissing {
		return nil, errors.Join(ErrStoreNotFound, errors.New(s.name))
	}

	if statusErr := validateStatus(resp.Status, callErr); statusErr != nil {
		return nil, statusErr
	}

	return s, nil
}

// Name returns the binding name this handle was opened with.
func (s *Store) Name() string { return s.name }

// Get fetches the value stored under key. An absent key is a normal
// outcome and returns a nil Value with no error.
func (s *Store) Get(key string) (*Value, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	b, err := json.Marshal(getRequest{Store: s.name, Key: key})
	if err != nil {
		return nil, errors.Join(ErrMarshalRequest, err)
	}

	respBytes, callErr := s.hostCall(s.runtime.Namespace, capabilityName, fnGet, b)

	var resp getResponse
	if err := decodeResponse(respBytes, callErr, &resp); err != nil {
		return nil, err
	}

	if resp.Status != nil && resp.Status.Code == hostStatusMissing {
		return nil, nil
	}

	if statusErr := validateStatus(resp.Status, callErr); statusErr != nil {
		return nil, statusErr
	}

	return &Value{raw: resp.Value}, nil
}

// GetWithMetadata fetches the value and the metadata stored under key. An
// absent key returns a nil Entry with no error. A key stored without
// metadata returns an Entry with nil Metadata.
func (s *Store) GetWithMetadata(key string) (*Entry, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	b, err := json.Marshal(getRequest{Store: s.name, Key: key})
	if err != nil {
		return nil, errors.Join(ErrMarshalRequest, err)
	}

	respBytes, callErr := s.hostCall(s.runtime.Namespace, capabilityName, fnGetMeta, b)

	var resp getResponse
	if err := decodeResponse(respBytes, callErr, &resp); err != nil {
		return nil, err
	}

	if resp.Status != nil && resp.Status.Code == hostStatusMissing {
		return nil, nil
	}

	if statusErr := validateStatus(resp.Status, callErr); statusErr != nil {
		return nil, statusErr
	}

	return &Entry{Value: Value{raw: resp.Value}, Metadata: resp.Metadata}, nil
}

// Put starts a write of raw bytes under key. Optional settings are chained
// on the returned builder and nothing is sent to the host until Execute.
func (s *Store) Put(key string, value []byte) *PutBuilder {
	b := &PutBuilder{store: s, key: key, value: value}
	if key == "" {
		b.err = ErrInvalidKey
	}
	return b
}

// PutText starts a write of a UTF-8 string under key.
func (s *Store) PutText(key, value string) *PutBuilder {
	return s.Put(key, []byte(value))
}

// PutJSON starts a write of a JSON-encoded value under key. Encoding
// failures surface when the builder is executed.
func (s *Store) PutJSON(key string, value any) *PutBuilder {
	b := s.Put(key, nil)
	if b.err != nil {
		return b
	}

	raw, err := json.Marshal(value)
	if err != nil {
		b.err = errors.Join(ErrMarshalRequest, err)
		return b
	}
	b.value = raw
	return b
}

// List starts a listing of the keys in the store. Each execution returns
// exactly one page; callers drive pagination with ListResult.Cursor.
func (s *Store) List() *ListBuilder {
	return &ListBuilder{store: s}
}

// Delete removes the key from the store. Deleting an absent key is a
// success, matching the host's idempotent delete semantics.
func (s *Store) Delete(key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	b, err := json.Marshal(deleteRequest{Store: s.name, Key: key})
	if err != nil {
		return errors.Join(ErrMarshalRequest, err)
	}

	respBytes, callErr := s.hostCall(s.runtime.Namespace, capabilityName, fnDelete, b)

	var resp deleteResponse
	if err := decodeResponse(respBytes, callErr, &resp); err != nil {
		return err
	}

	if resp.Status != nil && resp.Status.Code == hostStatusMissing {
		return nil
	}

	return validateStatus(resp.Status, callErr)
}
