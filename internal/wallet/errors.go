package wallet

import (
	"errors"
	"fmt"
)

// ErrNotAvailable means no wallet daemon answered at the configured endpoint.
var ErrNotAvailable = errors.New("wallet provider not available")

// EIP-1193 provider error codes the client reacts to.
const (
	CodeUserRejected      = 4001
	CodeUnrecognizedChain = 4902
)

type codedError interface {
	error
	ErrorCode() int
}

// ErrorCode extracts the provider error code from err, or 0 when it carries
// none. Both go-ethereum's rpc errors and RPCError satisfy it.
func ErrorCode(err error) int {
	var ce codedError
	if errors.As(err, &ce) {
		return ce.ErrorCode()
	}
	return 0
}

// RPCError is a provider error with an EIP-1193 code. The JSON-RPC client
// surfaces go-ethereum's own coded errors; this type exists for fakes and for
// wrapping.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

func (e *RPCError) ErrorCode() int {
	return e.Code
}
