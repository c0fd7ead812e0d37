package threat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Upstream paths exposed by the SentraIP API.
const (
	PathIPCheck = "ip-check"
	PathStats   = "stats"
)

// Kind classifies a failed call.
type Kind string

const (
	KindAuth         Kind = "auth"
	KindNotFound     Kind = "not_found"
	KindUpstream     Kind = "upstream"
	KindConnectivity Kind = "connectivity"
)

// Error is returned for every failed lookup. Status is the code the
// adapter reports to its own caller, which is not always the code the
// upstream sent.
type Error struct {
	Kind   Kind
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Kind, e.Status, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

func authError() *Error {
	return &Error{Kind: KindAuth, Status: http.StatusUnauthorized, Detail: "Unauthorized: invalid or expired token"}
}

func notFoundError() *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Detail: "Resource not found on SentraIP"}
}

func upstreamError(status int, detail string) *Error {
	return &Error{Kind: KindUpstream, Status: status, Detail: detail}
}

func connectivityError(err error) *Error {
	return &Error{Kind: KindConnectivity, Status: http.StatusServiceUnavailable, Detail: "Connection to SentraIP failed", Err: err}
}

// Lookup is the set of SentraIP queries the adapter forwards.
type Lookup interface {
	CheckIP(ctx context.Context, ip string) (json.RawMessage, error)
	Stats(ctx context.Context) (json.RawMessage, error)
}
