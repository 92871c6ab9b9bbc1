package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError collects per-field messages for a rejected request.
type ValidationError struct {
	Fields map[string][]string
}

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// OrNil returns e as an error when it holds at least one message.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, strings.Join(e.Fields[key], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewFieldError is a ValidationError with a single message.
func NewFieldError(field, msg string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, msg)
	return e
}

// AsValidationError unwraps err into a ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Field messages shared by the services and the HTTP layer.
const (
	MsgRequired  = "This field is required."
	MsgBlank     = "This field may not be blank."
	MsgNull      = "This field may not be null."
	MsgMaxLength = "Ensure this field has no more than %d characters."
	MsgMinLength = "Ensure this field has at least %d characters."
)

// checkText validates a required-when-present string column.
func checkText(verr *ValidationError, field, value string, allowBlank bool, maxLen int) {
	if !allowBlank && strings.TrimSpace(value) == "" {
		verr.Add(field, MsgBlank)
		return
	}
	if maxLen > 0 && len([]rune(value)) > maxLen {
		verr.Add(field, fmt.Sprintf(MsgMaxLength, maxLen))
	}
}
