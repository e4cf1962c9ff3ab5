package mock

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const defaultPageLimit = 1000

var (
	// ErrUnknownCapability is returned for host calls routed to a
	// capability other than kvstore.
	ErrUnknownCapability = errors.New("unknown capability")

	// ErrUnknownFunction is returned for host calls naming a function the
	// kvstore capability does not implement.
	ErrUnknownFunction = errors.New("unknown function")
)

// Config configures the mock host.
type Config struct {
	// Stores lists the binding names the host exposes. When empty, any
	// store name is accepted and created on first use; set Stores to test
	// unknown-binding failures.
	Stores []string

	// Seed pre-populates stores: store name to key to value. Seeded stores
	// are implicitly exposed.
	Seed map[string]map[string][]byte

	// PageLimit overrides the maximum list page size. Defaults to 1000,
	// matching the hosted service. Requested limits above it are clamped.
	PageLimit int

	// Now overrides the clock used for expiration, as a unix timestamp.
	Now func() uint64
}

// Call records one kv operation performed against the mock host.
type Call struct {
	Function string
	Store    string
	Key      string
}

type entry struct {
	value      []byte
	metadata   json.RawMessage
	expiration uint64
}

// Host is an in-memory implementation of the kvstore host capability. It
// speaks the same JSON wire protocol as a real host, so it can be plugged
// into kv.Config.HostCall to test guest code end to end.
type Host struct {
	mu        sync.Mutex
	stores    map[string]map[string]entry
	openWorld bool
	pageLimit int
	now       func() uint64

	// Calls stores a history of operations for assertions.
	Calls []Call
}

// New creates a mock host from the provided Config.
func New(config Config) *Host {
	h := &Host{
		stores:    make(map[string]map[string]entry),
		openWorld: len(config.Stores) == 0 && len(config.Seed) == 0,
		pageLimit: config.PageLimit,
		now:       config.Now,
	}
	if h.pageLimit <= 0 {
		h.pageLimit = defaultPageLimit
	}
	if h.now == nil {
		h.now = func() uint64 { return uint64(time.Now().Unix()) }
	}

	for _, name := range config.Stores {
		h.stores[name] = make(map[string]entry)
	}
	for name, keys := range config.Seed {
		store := h.stores[name]
		if store == nil {
			store = make(map[string]entry)
			h.stores[name] = store
		}
		for k, v := range keys {
			store[k] = entry{value: append([]byte(nil), v...)}
		}
	}

	return h
}

// Value returns the bytes currently stored under store/key, for test
// assertions that bypass the wire protocol.
func (h *Host) Value(store, key string) ([]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	keys, ok := h.stores[store]
	if !ok {
		return nil, false
	}
	e, ok := keys[key]
	if !ok || h.expired(e) {
		return nil, false
	}
	return append([]byte(nil), e.value...), true
}

// HostCall dispatches a kvstore host call, decoding the JSON request and
// returning a JSON response with a status envelope.
func (h *Host) HostCall(_, capability, function string, payload []byte) ([]byte, error) {
	if capability != "kvstore" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCapability, capability)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	switch function {
	case "open":
		return h.handleOpen(payload)
	case "get":
		return h.handleGet(payload, false)
	case "getwithmetadata":
		return h.handleGet(payload, true)
	case "put":
		return h.handlePut(payload)
	case "list":
		return h.handleList(payload)
	case "delete":
		return h.handleDelete(payload)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, function)
	}
}

type status struct {
	Code   int32  `json:"code"`
	Status string `json:"status,omitempty"`
}

type statusResponse struct {
	Status status `json:"status"`
}

type getResponse struct {
	Status   status          `json:"status"`
	Value    []byte          `json:"value"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

type listKey struct {
	Name       string          `json:"name"`
	Expiration uint64          `json:"expiration,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

type listResponse struct {
	Status       status    `json:"status"`
	Keys         []listKey `json:"keys"`
	Cursor       string    `json:"cursor,omitempty"`
	ListComplete bool      `json:"list_complete"`
}

func marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mock response marshal: %w", err)
	}
	return b, nil
}

func respond(code int32, msg string) ([]byte, error) {
	return marshal(statusResponse{Status: status{Code: code, Status: msg}})
}

func (h *Host) handleOpen(payload []byte) ([]byte, error) {
	var req struct {
		Store string `json:"store"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return respond(400, "malformed request")
	}

	if _, ok := h.stores[req.Store]; !ok {
		if !h.openWorld {
			return respond(404, "store not bound")
		}
		h.stores[req.Store] = make(map[string]entry)
	}

	h.Calls = append(h.Calls, Call{Function: "open", Store: req.Store})
	return respond(200, "OK")
}

func (h *Host) handleGet(payload []byte, withMetadata bool) ([]byte, error) {
	var req struct {
		Store string `json:"store"`
		Key   string `json:"key"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return respond(400, "malformed request")
	}

	fn := "get"
	if withMetadata {
		fn = "getwithmetadata"
	}
	h.Calls = append(h.Calls, Call{Function: fn, Store: req.Store, Key: req.Key})

	keys, ok := h.stores[req.Store]
	if !ok {
		return respond(400, "unknown store")
	}

	e, ok := keys[req.Key]
	if !ok || h.expired(e) {
		return respond(404, "key not found")
	}

	resp := getResponse{Status: status{Code: 200, Status: "OK"}, Value: e.value}
	if withMetadata {
		resp.Metadata = e.metadata
	}
	return marshal(resp)
}

func (h *Host) handlePut(payload []byte) ([]byte, error) {
	var req struct {
		Store         string          `json:"store"`
		Key           string          `json:"key"`
		Value         []byte          `json:"value"`
		Metadata      json.RawMessage `json:"metadata"`
		Expiration    uint64          `json:"expiration"`
		ExpirationTTL uint64          `json:"expirationTtl"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return respond(400, "malformed request")
	}

	h.Calls = append(h.Calls, Call{Function: "put", Store: req.Store, Key: req.Key})

	keys, ok := h.stores[req.Store]
	if !ok {
		if !h.openWorld {
			return respond(400, "unknown store")
		}
		keys = make(map[string]entry)
		h.stores[req.Store] = keys
	}

	e := entry{
		value:      append([]byte(nil), req.Value...),
		metadata:   req.Metadata,
		expiration: req.Expiration,
	}
	if req.ExpirationTTL != 0 {
		e.expiration = h.now() + req.ExpirationTTL
	}
	keys[req.Key] = e

	return respond(200, "OK")
}

func (h *Host) handleList(payload []byte) ([]byte, error) {
	var req struct {
		Store  string `json:"store"`
		Prefix string `json:"prefix"`
		Limit  int    `json:"limit"`
		Cursor string `json:"cursor"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return respond(400, "malformed request")
	}

	h.Calls = append(h.Calls, Call{Function: "list", Store: req.Store})

	keys, ok := h.stores[req.Store]
	if !ok {
		return respond(400, "unknown store")
	}

	after := ""
	if req.Cursor != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Cursor)
		if err != nil {
			return respond(400, "malformed cursor")
		}
		after = string(decoded)
	}

	names := make([]string, 0, len(keys))
	for name, e := range keys {
		if h.expired(e) {
			continue
		}
		if req.Prefix != "" && !strings.HasPrefix(name, req.Prefix) {
			continue
		}
		if after != "" && name <= after {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	limit := req.Limit
	if limit <= 0 || limit > h.pageLimit {
		limit = h.pageLimit
	}

	resp := listResponse{Status: status{Code: 200, Status: "OK"}, Keys: []listKey{}}
	for i, name := range names {
		if i >= limit {
			break
		}
		e := keys[name]
		resp.Keys = append(resp.Keys, listKey{
			Name:       name,
			Expiration: e.expiration,
			Metadata:   e.metadata,
		})
	}

	if len(names) > limit {
		last := resp.Keys[len(resp.Keys)-1].Name
		resp.Cursor = base64.StdEncoding.EncodeToString([]byte(last))
	} else {
		resp.ListComplete = true
	}

	return marshal(resp)
}

func (h *Host) handleDelete(payload []byte) ([]byte, error) {
	var req struct {
		Store string `json:"store"`
		Key   string `json:"key"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return respond(400, "malformed request")
	}

	h.Calls = append(h.Calls, Call{Function: "delete", Store: req.Store, Key: req.Key})

	keys, ok := h.stores[req.Store]
	if !ok {
		return respond(400, "unknown store")
	}

	// Deletes are idempotent: removing an absent key is still a success.
	delete(keys, req.Key)
	return respond(200, "OK")
}

func (h *Host) expired(e entry) bool {
	return e.expiration != 0 && e.expiration <= h.now()
}
