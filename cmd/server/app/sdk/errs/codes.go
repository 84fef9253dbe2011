package errs

import "net/http"

// ErrCode represents a code in the system.
type ErrCode struct {
	value int
}

// Value returns the integer value of the error code.
func (ec ErrCode) Value() int {
	return ec.value
}

// String returns the string representation of the error code.
func (ec ErrCode) String() string {
	return codeNames[ec]
}

// MarshalJSON implements the marshal interface.
func (ec ErrCode) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ec.String() + `"`), nil
}

// Set of error codes for the system.
var (
	OK                 = ErrCode{value: 0}
	InvalidArgument    = ErrCode{value: 1}
	NotFound           = ErrCode{value: 2}
	Internal           = ErrCode{value: 3}
	Unavailable        = ErrCode{value: 4}
	FailedPrecondition = ErrCode{value: 5}
)

var codeNames = map[ErrCode]string{
	OK:                 "ok",
	InvalidArgument:    "invalid_argument",
	NotFound:           "not_found",
	Internal:           "internal",
	Unavailable:        "unavailable",
	FailedPrecondition: "failed_precondition",
}

var httpStatus = map[ErrCode]int{
	OK:                 http.StatusOK,
	InvalidArgument:    http.StatusBadRequest,
	NotFound:           http.StatusNotFound,
	Internal:           http.StatusInternalServerError,
	Unavailable:        http.StatusServiceUnavailable,
	FailedPrecondition: http.StatusBadRequest,
}
