package coingecko

import (
	"errors"
	"fmt"
)

// ErrorKind classifies upstream fetch failures
type ErrorKind int

const (
	// KindTimeout: the request exceeded the configured deadline
	KindTimeout ErrorKind = iota
	// KindUnauthorized: upstream rejected the request with 401
	KindUnauthorized
	// KindHTTP: any other non-2xx status, including 429 after the retry
	KindHTTP
	// KindTransport: network-level failure (DNS, reset, broken body)
	KindTransport
	// KindDecode: malformed response body or violated snapshot invariant
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindUnauthorized:
		return "unauthorized"
	case KindHTTP:
		return "http_error"
	case KindTransport:
		return "transport_error"
	case KindDecode:
		return "decode_error"
	}
	return "unknown"
}

// FetchError is the error type returned by the fetch client.
// Status is set for KindHTTP and KindUnauthorized
type FetchError struct {
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// UserMessage returns the string shown to the user for this failure
func (e *FetchError) UserMessage() string {
	switch e.Kind {
	case KindTimeout:
		return "Request timed out. Please try again later."
	case KindUnauthorized:
		return "Not authorized to access the market data API."
	case KindHTTP:
		return fmt.Sprintf("HTTP error occurred (status %d).", e.Status)
	case KindTransport:
		return "Error reaching the market data API."
	case KindDecode:
		return "Received malformed data from the market data API."
	}
	return "Error fetching data."
}

// AsFetchError unwraps err into a *FetchError, or nil
func AsFetchError(err error) *FetchError {
	var ferr *FetchError
	if errors.As(err, &ferr) {
		return ferr
	}
	return nil
}

// UserMessageFor returns the user-facing string for any fetch-layer error
func UserMessageFor(err error) string {
	if err == nil {
		return ""
	}
	if ferr := AsFetchError(err); ferr != nil {
		return ferr.UserMessage()
	}
	return "Error fetching data."
}
