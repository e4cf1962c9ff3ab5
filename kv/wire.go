package kv

import (
	"encoding/json"
	"errors"
	"fmt"

	sdk "github.com/edgekv-project/sdk"
)

const (
	capabilityName = "kvstore"
	fnOpen         = "open"
	fnGet          = "get"
	fnGetMeta      = "getwithmetadata"
	fnPut          = "put"
	fnList         = "list"
	fnDelete       = "delete"

	hostStatusOK       = int32(200)
	hostStatusPartial  = int32(206)
	hostStatusBadInput = int32(400)
	hostStatusMissing  = int32(404)
	hostStatusError    = int32(500)
)

// wireStatus is the status envelope carried by every host response.
type wireStatus struct {
	Code   int32  `json:"code"`
	Status string `json:"status,omitempty"`
}

type openRequest struct {
	Store string `json:"store"`
}

type openResponse struct {
	Status *wireStatus `json:"status"`
}

type getRequest struct {
	Store string `json:"store"`
	Key   string `json:"key"`
}

type getResponse struct {
	Status   *wireStatus     `json:"status"`
	Value    []byte          `json:"value"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

type putRequest struct {
	Store         string          `json:"store"`
	Key           string          `json:"key"`
	Value         []byte          `json:"value"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	Expiration    uint64          `json:"expiration,omitempty"`
	ExpirationTTL uint64          `json:"expirationTtl,omitempty"`
}

type putResponse struct {
	Status *wireStatus `json:"status"`
}

type listRequest struct {
	Store  string `json:"store"`
	Prefix string `json:"prefix,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Cursor string `json:"cursor,omitempty"`
}

type listResponse struct {
	Status       *wireStatus `json:"status"`
	Keys         []wireKey   `json:"keys"`
	Cursor       string      `json:"cursor,omitempty"`
	ListComplete bool        `json:"list_complete"`
}

type wireKey struct {
	Name       string          `json:"name"`
	Expiration uint64          `json:"expiration,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

type deleteRequest struct {
	Store string `json:"store"`
	Key   string `json:"key"`
}

type deleteResponse struct {
	Status *wireStatus `json:"status"`
}

// decodeResponse decodes a host response into out, folding a host bridge
// error into the result when the response bytes are missing or unreadable.
// The host may return both response bytes and an error; response bytes win
// when they decode, so the status envelope can carry the failure detail.
func decodeResponse(respBytes []byte, callErr error, out any) error {
	if callErr != nil && len(respBytes) == 0 {
		return errors.Join(sdk.ErrHostCall, callErr)
	}

	if unmarshalErr := json.Unmarshal(respBytes, out); unmarshalErr != nil {
		if callErr != nil {
			return errors.Join(
				sdk.ErrHostCall,
				callErr,
				sdk.ErrHostResponseInvalid,
				ErrUnmarshalResponse,
				unmarshalErr,
			)
		}
		return errors.Join(sdk.ErrHostResponseInvalid, ErrUnmarshalResponse, unmarshalErr)
	}

	return nil
}

// validateStatus maps the host status envelope to the SDK error sentinels.
// Callers that treat 404 as a normal outcome must check for it before
// calling validateStatus.
func validateStatus(status *wireStatus, callErr error) error {
	if status == nil {
		if callErr != nil {
			return errors.Join(sdk.ErrHostCall, callErr, sdk.ErrHostResponseInvalid)
		}
		return sdk.ErrHostResponseInvalid
	}

	switch status.Code {
	case hostStatusOK, hostStatusPartial:
		return nil
	case hostStatusBadInput, hostStatusMissing, hostStatusError:
		detail := fmt.Sprintf("host status %d", status.Code)
		if status.Status != "" {
			detail = fmt.Sprintf("%s: %s", detail, status.Status)
		}
		if callErr != nil {
			return errors.Join(sdk.ErrHostCall, callErr, sdk.ErrHostError, errors.New(detail))
		}
		return errors.Join(sdk.ErrHostError, errors.New(detail))
	default:
		statusErr := fmt.Errorf("unexpected host status code %d", status.Code)
		if callErr != nil {
			return errors.Join(sdk.ErrHostCall, callErr, sdk.ErrHostResponseInvalid, statusErr)
		}
		return errors.Join(sdk.ErrHostResponseInvalid, statusErr)
	}
}
