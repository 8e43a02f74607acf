package service

import (
	"errors"
	"fmt"
)

// Виды ошибок каталога. Handler сопоставляет их со статусами HTTP.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrStorage      = errors.New("storage error")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error - ошибка сервиса. errors.Is срабатывает и на Kind, и на Cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func validationError(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictError(format string, args ...interface{}) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// storageError оборачивает неожиданную ошибку хранилища
func storageError(operation string, cause error) error {
	return &Error{Kind: ErrStorage, Message: "failed to " + operation, Cause: cause}
}

// Message возвращает текст, который можно показать пользователю.
// Для ошибок хранилища детали не раскрываются.
func Message(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) && !errors.Is(svcErr.Kind, ErrStorage) {
		return svcErr.Message
	}
	return "internal server error"
}
