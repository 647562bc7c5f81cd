package query

import (
	"fmt"
	"net/http"
	"strings"
)

type ErrorKind string

const (
	ErrColumnNotFound       ErrorKind = "column_not_found"
	ErrColumnAlreadyExists  ErrorKind = "column_already_exists"
	ErrRowNotFound          ErrorKind = "row_not_found"
	ErrInvalidArgument      ErrorKind = "invalid_argument"
	ErrUnsupportedOperation ErrorKind = "unsupported_operation"
	ErrTypeMismatch         ErrorKind = "type_mismatch"
	ErrParse                ErrorKind = "parse_error"
)

type QueryError struct {
	kind   ErrorKind
	msg    string
	status int
}

func NewQueryError(status int, kind ErrorKind, msg string) *QueryError {
	return &QueryError{kind: kind, msg: msg, status: status}
}

func (e *QueryError) Error() string   { return e.msg }
func (e *QueryError) Kind() ErrorKind { return e.kind }
func (e *QueryError) Status() int     { return e.status }

func columnsNotFoundError(what string, names []string) *QueryError {
	return NewQueryError(http.StatusNotFound, ErrColumnNotFound,
		fmt.Sprintf("Invalid %s columns: %s", what, strings.Join(names, ", ")))
}

func columnNotFoundError(name string) *QueryError {
	return NewQueryError(http.StatusNotFound, ErrColumnNotFound,
		fmt.Sprintf("Column %q not found", name))
}

func columnExistsError(name string) *QueryError {
	return NewQueryError(http.StatusConflict, ErrColumnAlreadyExists,
		fmt.Sprintf("Column %q already exists", name))
}

func rowNotFoundError() *QueryError {
	return NewQueryError(http.StatusNotFound, ErrRowNotFound,
		"No row found matching identifier")
}

func typeMismatchError(column string, row int, got string) *QueryError {
	return NewQueryError(http.StatusUnprocessableEntity, ErrTypeMismatch,
		fmt.Sprintf("Column %q has non-numeric value (%s) in row %d", column, got, row))
}
