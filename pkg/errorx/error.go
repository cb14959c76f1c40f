package errorx

import (
	"errors"
	"fmt"
)

type Error struct {
	Code    Code
	Message string
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}

// ErrorCode lets the json-rpc server send the code to clients as the error code.
func (e Error) ErrorCode() int {
	return int(e.Code)
}

// Is reports whether any error in err's chain is an Error with the given code.
func Is(err error, code Code) bool {
	var e Error
	if !errors.As(err, &e) {
		return false
	}

	return e.Code == code
}

// codedError matches errors decoded by the json-rpc client.
type codedError interface {
	Error() string
	ErrorCode() int
}

// FromRPC restores an Error from an error returned by the json-rpc client. Errors without a
// known code are returned unchanged.
func FromRPC(err error) error {
	if err == nil {
		return nil
	}

	var coded codedError
	if !errors.As(err, &coded) {
		return err
	}

	code := Code(coded.ErrorCode())
	if code < Unknown.Code {
		return err
	}

	return Error{Code: code, Message: coded.Error()}
}
