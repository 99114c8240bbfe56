package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers that need to tell categories apart.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindValidation
	KindConnectivity
	KindAuth
	KindNodeServer
	KindTimeout
	KindDecode
	KindWalletRejection
	KindWrongNetwork
	KindOnChainRevert
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindConfiguration:   "configuration",
	KindValidation:      "validation",
	KindConnectivity:    "connectivity",
	KindAuth:            "auth",
	KindNodeServer:      "node_server",
	KindTimeout:         "timeout",
	KindDecode:          "decode",
	KindWalletRejection: "wallet_rejection",
	KindWrongNetwork:    "wrong_network",
	KindOnChainRevert:   "onchain_revert",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a name produced by Kind.String back to its Kind.
// Unrecognized names give KindUnknown.
func ParseKind(name string) Kind {
	for kind, known := range kindNames {
		if known == name {
			return kind
		}
	}
	return KindUnknown
}

// Error is a user-facing failure. Message is safe to show; Err keeps the raw cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Details returns the raw cause text, or the message when there is none.
func (e *Error) Details() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Err.Error()
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Configuration(format string, args ...interface{}) *Error {
	return New(KindConfiguration, fmt.Sprintf(format, args...))
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first *Error in the chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// As returns the first *Error in the chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
