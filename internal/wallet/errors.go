package wallet

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected means the user dismissed the wallet prompt.
	ErrRejected = errors.New("request rejected by user")
	// ErrNotConnected means no wallet addresses are known yet.
	ErrNotConnected = errors.New("wallet not connected")
)

// CodeUserRejected is the JSON-RPC error code wallets use for a dismissed prompt.
const CodeUserRejected = -32000

// ConnectError is returned by Connector.Connect.
type ConnectError struct {
	Code    int
	Message string
	Err     error
}

func (e *ConnectError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("connect: %s: %v", e.Message, e.Err)
	case e.Message != "":
		return "connect: " + e.Message
	case e.Err != nil:
		return "connect: " + e.Err.Error()
	}
	return "connect failed"
}

func (e *ConnectError) Unwrap() error { return e.Err }

func (e *ConnectError) Is(target error) bool {
	return target == ErrRejected && e.Code == CodeUserRejected
}

// OrderError is returned by Connector.SubmitOrder.
type OrderError struct {
	Kind    OrderKind
	Code    int
	Message string
	Err     error
}

func (e *OrderError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "failed"
	}
	return fmt.Sprintf("%s order: %s", e.Kind, msg)
}

func (e *OrderError) Unwrap() error { return e.Err }

func (e *OrderError) Is(target error) bool {
	return target == ErrRejected && e.Code == CodeUserRejected
}

// FormError reports an order form field that could not be used.
type FormError struct {
	Field  string
	Reason string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
