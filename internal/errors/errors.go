package errors

import "fmt"

// ErrorCode represents a Notes error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrConfiguration  ErrorCode = "CONFIGURATION"   // 412
	ErrEmptyResponse  ErrorCode = "EMPTY_RESPONSE"  // 502
	ErrTransport      ErrorCode = "TRANSPORT"       // 502
	ErrStorageParse   ErrorCode = "STORAGE_PARSE"   // recovered locally, never surfaced
	ErrStorageWrite   ErrorCode = "STORAGE_WRITE"   // recovered locally, never surfaced
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// NoteError represents a structured error with code, status, and details.
type NoteError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *NoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *NoteError {
	return &NoteError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a note cannot be found.
func NewNotFound(id string) *NoteError {
	return &NoteError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("note not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewConfiguration creates an error for a missing generation credential.
// The message is user-presentable; it is shown verbatim in the editor.
func NewConfiguration() *NoteError {
	return &NoteError{
		Code:    ErrConfiguration,
		Status:  412,
		Message: "API Anahtarı eksik (API Key missing).",
	}
}

// NewEmptyResponse creates an error for a generation call that returned no usable text.
func NewEmptyResponse() *NoteError {
	return &NoteError{
		Code:    ErrEmptyResponse,
		Status:  502,
		Message: "AI boş yanıt döndürdü.",
	}
}

// NewTransport creates an error wrapping a network or endpoint failure.
// The wrapped cause goes into details; the message stays user-presentable.
func NewTransport(err error) *NoteError {
	e := &NoteError{
		Code:    ErrTransport,
		Status:  502,
		Message: "İşlem sırasında bir hata oluştu. Lütfen tekrar deneyin.",
	}
	if err != nil {
		e.Details = map[string]any{"cause": err.Error()}
	}
	return e
}

// NewStorageParse creates an error for a corrupt persisted blob.
// Callers recover by starting with an empty collection; logged, never surfaced.
func NewStorageParse(err error) *NoteError {
	return &NoteError{
		Code:    ErrStorageParse,
		Status:  500,
		Message: fmt.Sprintf("stored notes could not be parsed: %v", err),
	}
}

// NewStorageWrite creates an error for a failed persistence write.
// In-memory state remains authoritative; logged, never surfaced.
func NewStorageWrite(err error) *NoteError {
	return &NoteError{
		Code:    ErrStorageWrite,
		Status:  500,
		Message: fmt.Sprintf("notes could not be written to storage: %v", err),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *NoteError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &NoteError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a NoteError with the given code.
func Is(err error, code ErrorCode) bool {
	if nErr, ok := err.(*NoteError); ok {
		return nErr.Code == code
	}
	return false
}

// UserMessage returns the user-presentable message for an error.
// Unstructured errors collapse to a generic message so raw transport
// or runtime errors never reach the editor.
func UserMessage(err error) string {
	if nErr, ok := err.(*NoteError); ok {
		return nErr.Message
	}
	return "Bir hata oluştu."
}
