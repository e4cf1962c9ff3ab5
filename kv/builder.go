package kv

import (
	"encoding/json"
	"errors"
)

// PutBuilder accumulates optional settings for a single write. It is
// created by Store.Put and consumed by Execute; executing it a second time
// fails with ErrAlreadyExecuted.
type PutBuilder struct {
	store *Store

	key      string
	value    []byte
	metadata json.RawMessage

	expiration    uint64
	expirationTTL uint64

	// err holds a deferred configuration or serialization failure,
	// reported at Execute since configuration calls are not fallible.
	err error

	executed bool
}

// Metadata attaches arbitrary metadata to be stored with the key. The
// value is JSON-encoded immediately; encoding failures surface at Execute.
func (b *PutBuilder) Metadata(metadata any) *PutBuilder {
	raw, err := json.Marshal(metadata)
	if err != nil {
		if b.err == nil {
			b.err = errors.Join(ErrMarshalRequest, err)
		}
		return b
	}
	b.metadata = raw
	return b
}

// Expiration sets the unix timestamp at which the key expires. Mutually
// exclusive with ExpirationTTL.
func (b *PutBuilder) Expiration(unix uint64) *PutBuilder {
	b.expiration = unix
	return b
}

// ExpirationTTL sets how many seconds from now the key expires. Mutually
// exclusive with Expiration.
func (b *PutBuilder) ExpirationTTL(seconds uint64) *PutBuilder {
	b.expirationTTL = seconds
	return b
}

// Execute issues the write to the host and blocks until it acknowledges.
// A builder configured with both expiration forms fails with
// ErrExpirationConflict and performs no host call.
func (b *PutBuilder) Execute() error {
	if b.executed {
		return ErrAlreadyExecuted
	}
	b.executed = true

	if b.err != nil {
		return b.err
	}

	if b.expiration != 0 && b.expirationTTL != 0 {
		return ErrExpirationConflict
	}

	req := putRequest{
		Store:         b.store.name,
		Key:           b.key,
		Value:         b.value,
		Metadata:      b.metadata,
		Expiration:    b.expiration,
		ExpirationTTL: b.expirationTTL,
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return errors.Join(ErrMarshalRequest, err)
	}

	respBytes, callErr := b.store.hostCall(b.store.runtime.Namespace, capabilityName, fnPut, payload)

	var resp putResponse
	if err := decodeResponse(respBytes, callErr, &resp); err != nil {
		return err
	}

	return validateStatus(resp.Status, callErr)
}

// ListBuilder accumulates optional settings for a single list page
// request. It is created by Store.List and consumed by Execute.
type ListBuilder struct {
	store *Store

	prefix string
	limit  int
	cursor string

	executed bool
}

// Prefix restricts the listing to keys starting with prefix.
func (b *ListBuilder) Prefix(prefix string) *ListBuilder {
	b.prefix = prefix
	return b
}

// Limit caps the number of keys returned in this page. Values above the
// host maximum are passed through untouched; the host clamps or rejects
// per its own policy.
func (b *ListBuilder) Limit(limit int) *ListBuilder {
	b.limit = limit
	return b
}

// Cursor resumes the listing from a cursor returned by a prior page.
func (b *ListBuilder) Cursor(cursor string) *ListBuilder {
	b.cursor = cursor
	return b
}

// Execute issues the list call and returns exactly one page. Callers
// needing the full key set loop, passing each page's cursor to a fresh
// builder until Complete is true.
func (b *ListBuilder) Execute() (*ListResult, error) {
	if b.executed {
		return nil, ErrAlreadyExecuted
	}
	b.executed = true

	req := listRequest{
		Store:  b.store.name,
		Prefix: b.prefix,
		Limit:  b.limit,
		Cursor: b.cursor,
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Join(ErrMarshalRequest, err)
	}

	respBytes, callErr := b.store.hostCall(b.store.runtime.Namespace, capabilityName, fnList, payload)

	var resp listResponse
	if err := decodeResponse(respBytes, callErr, &resp); err != nil {
		return nil, err
	}

	if statusErr := validateStatus(resp.Status, callErr); statusErr != nil {
		return nil, statusErr
	}

	result := &ListResult{
		Keys:     make([]Key, 0, len(resp.Keys)),
		Cursor:   resp.Cursor,
		Complete: resp.ListComplete,
	}
	for _, k := range resp.Keys {
		result.Keys = append(result.Keys, Key{
			Name:       k.Name,
			Expiration: k.Expiration,
			Metadata:   k.Metadata,
		})
	}

	return result, nil
}
