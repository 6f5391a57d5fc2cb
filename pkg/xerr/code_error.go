package xerr

import "fmt"

// CodeError carries an HTTP-ish status code alongside the message so the
// interface layer can map business failures without string matching.
type CodeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

// New creates a new CodeError.
func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Message: msg}
}

// Newf creates a new CodeError with a formatted message.
func Newf(code int, format string, args ...interface{}) *CodeError {
	return &CodeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

const (
	OK                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	Unprocessable       = 422
	InternalServerError = 500
)

var (
	ErrSuccess     = New(OK, "Success")
	ErrServerError = New(InternalServerError, "error interno del sistema")
	ErrParam       = New(BadRequest, "parámetros inválidos")
)

// NotFoundf flags an unknown entity id.
func NotFoundf(format string, args ...interface{}) *CodeError {
	return Newf(NotFound, format, args...)
}

// InvalidTransition flags an illegal state change. Surfaced to the caller,
// never retried.
func InvalidTransition(from, to string) *CodeError {
	return Newf(Conflict, "transición de estado inválida: %s -> %s", from, to)
}

// Validation flags input rejected before any mutation happened.
func Validation(format string, args ...interface{}) *CodeError {
	return Newf(Unprocessable, format, args...)
}

// IsCode reports whether err is a CodeError with the given code.
func IsCode(err error, code int) bool {
	ce, ok := err.(*CodeError)
	return ok && ce.Code == code
}
