package errs

import "errors"

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type AlreadyExistsError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

// RemoteUnavailableError means the hosted widget table could not serve the call
// (network, server error, or no client configured).
type RemoteUnavailableError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *RemoteUnavailableError) Unwrap() error { return e.Err }

// SchemaMissingError means the hosted backend is reachable but the widgets
// collection, database or index it needs does not exist.
type SchemaMissingError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *SchemaMissingError) Unwrap() error { return e.Err }

// LocalStorageError is a failure of the local key-value tier (serialization or
// storage access). Nothing falls back past it.
type LocalStorageError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *LocalStorageError) Unwrap() error { return e.Err }

type ExternalServiceError struct {
	ErrorMessage
	Service   string
	Transient bool
	Err       error
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewAlreadyExistsError(message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewRemoteUnavailableError(operation, message string, err error) *RemoteUnavailableError {
	return &RemoteUnavailableError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewSchemaMissingError(operation, message string, err error) *SchemaMissingError {
	return &SchemaMissingError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewLocalStorageError(operation, message string, err error) *LocalStorageError {
	return &LocalStorageError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewExternalServiceError(service, message string, transient bool, err error) *ExternalServiceError {
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: message},
		Service:      service,
		Transient:    transient,
		Err:          err,
	}
}

// Kind names the class of a remote failure for logging.
func Kind(err error) string {
	var (
		nf *NotFoundError
		sm *SchemaMissingError
		ru *RemoteUnavailableError
		ls *LocalStorageError
	)
	switch {
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &sm):
		return "schema_missing"
	case errors.As(err, &ru):
		return "remote_unavailable"
	case errors.As(err, &ls):
		return "local_storage"
	default:
		return "unknown"
	}
}
