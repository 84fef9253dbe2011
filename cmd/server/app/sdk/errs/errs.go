// Package errs provides types and support related to web error functionality.
package errs

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Error represents an error in the system.
type Error struct {
	Code    ErrCode `json:"code"`
	Message string  `json:"message"`
}

// New constructs an error based on an app error.
func New(code ErrCode, err error) *Error {
	return &Error{
		Code:    code,
		Message: err.Error(),
	}
}

// Newf constructs an error based on an error format string.
func Newf(code ErrCode, format string, v ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, v...),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Encode implements the encoder interface.
func (e *Error) Encode() ([]byte, string, error) {
	data, err := sonic.Marshal(e)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface so the codes
// can be returned to the client.
func (e *Error) HTTPStatus() int {
	return httpStatus[e.Code]
}
