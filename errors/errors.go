package errors

import (
	"fmt"
	"net/http"
)

/*
* Error codes convey the failure class internally and to clients. They should
* be combined with the appropriate HTTP status code (see HTTPStatus), but are
* not intended to supercede correct HTTP responses.
 */

const (
	// The generator failed while the corpus was being populated. Fatal to
	// startup.
	InitializationFailure ErrCode = 1

	// HTTP 500 Internal Server Error.
	// The producer behind the cache failed on a miss. Not cached.
	UpstreamFailure ErrCode = 2

	// HTTP 503 Service Unavailable.
	// The store was read before it was initialised.
	NotInitialized ErrCode = 3
	// Initialize was called on a store that already holds a corpus.
	AlreadyInitialized ErrCode = 4
	// The request was cancelled while the producer was running.
	Cancelled ErrCode = 5
)

// Sentinels for use with errors.Is
var (
	ErrInitializationFailure = &NewsError{ErrorCode: InitializationFailure}
	ErrUpstreamFailure       = &NewsError{ErrorCode: UpstreamFailure}
	ErrNotInitialized        = &NewsError{ErrorCode: NotInitialized}
	ErrAlreadyInitialized    = &NewsError{ErrorCode: AlreadyInitialized}
	ErrCancelled             = &NewsError{ErrorCode: Cancelled}
)

// NewsError implements the Error interface.
type NewsError struct {
	Function     string  `json:"-"`
	ErrorCode    ErrCode `json:"errorCode"`
	ErrorMessage string  `json:"errorDetail"`
	Err          error   `json:"-"`
}

type ErrCode uint8

func (c ErrCode) String() string {
	switch c {
	case InitializationFailure:
		return "initialization failure"
	case UpstreamFailure:
		return "upstream failure"
	case NotInitialized:
		return "not initialized"
	case AlreadyInitialized:
		return "already initialized"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("error code %d", uint8(c))
}

func (e *NewsError) Error() string {
	if e.ErrorMessage == "" {
		return e.ErrorCode.String()
	}
	return e.ErrorMessage
}

func (e *NewsError) Unwrap() error {
	return e.Err
}

// Is matches any NewsError carrying the same code, so the package sentinels
// can be used with errors.Is.
func (e *NewsError) Is(target error) bool {
	t, ok := target.(*NewsError)
	if !ok {
		return false
	}
	return t.ErrorCode == e.ErrorCode
}

func New(function string, errCode ErrCode, errMessage string) error {
	return &NewsError{
		Function:     function,
		ErrorCode:    errCode,
		ErrorMessage: errMessage,
	}
}

// Wrap attaches an error code to err. The message is prefixed with the code
// description.
func Wrap(function string, errCode ErrCode, err error) error {
	return &NewsError{
		Function:     function,
		ErrorCode:    errCode,
		ErrorMessage: fmt.Sprintf("%s: %v", errCode, err),
		Err:          err,
	}
}

// Code returns the code of the innermost NewsError in err's chain, which is
// the root cause, or zero if there is none.
func Code(err error) ErrCode {
	var code ErrCode
	for err != nil {
		if ne, ok := err.(*NewsError); ok {
			code = ne.ErrorCode
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return code
}

// HTTPStatus maps err to the status code it should be served with.
func HTTPStatus(err error) int {
	switch Code(err) {
	case NotInitialized, Cancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
