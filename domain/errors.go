package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes surfaced by store operations.
const (
	CodeValidation = 400
	CodeServer     = 500
)

// Error is the failure value returned by every store operation.
// It marshals to the wire shape {"error":{"code":...,"description":...}}.
type Error struct {
	Code        int
	Description string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Description)
}

func (e *Error) MarshalJSON() ([]byte, error) {
	type body struct {
		Code        int    `json:"code"`
		Description string `json:"description"`
	}
	return json.Marshal(struct {
		Error body `json:"error"`
	}{body{e.Code, e.Description}})
}

// IsValidation reports whether err is a 400 validation error.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeValidation
}

// IsServer reports whether err is a 500 server error.
func IsServer(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeServer
}

func errOutOfBound() *Error {
	return &Error{Code: CodeValidation, Description: "index out of bound"}
}

func errServer(description string) *Error {
	return &Error{Code: CodeServer, Description: description}
}
