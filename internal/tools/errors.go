package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Error codes reported by tools.
const (
	CodeToolNotFound         = "tool_not_found"
	CodeInvalidArguments     = "invalid_arguments"
	CodeConfigurationMissing = "configuration_missing"
	CodeUpstreamFailure      = "upstream_failure"
)

// Error represents a tool execution error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the machine-readable code.
func (e *Error) ErrorCode() string {
	return e.Code
}

// Coded is implemented by errors that carry a machine-readable code.
type Coded interface {
	error
	ErrorCode() string
}

// CodeOf returns the code of the first Coded error in err's chain, or
// "tool_error" when none is found.
func CodeOf(err error) string {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return "tool_error"
}

// Describe splits err into the code and message reported to MCP clients.
func Describe(err error) (code, message string) {
	code = CodeOf(err)
	return code, strings.TrimPrefix(err.Error(), code+": ")
}

// InvalidArguments wraps a validation failure.
func InvalidArguments(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArguments, Message: fmt.Sprintf(format, args...)}
}

// Decode unmarshals args into v, rejecting unknown fields. Empty args decode
// as an empty object.
func Decode(args json.RawMessage, v any) error {
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &Error{Code: CodeInvalidArguments, Message: fmt.Sprintf("invalid arguments: %v", err), Cause: err}
	}
	return nil
}
