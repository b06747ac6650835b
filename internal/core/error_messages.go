package core

// # Error Codes Reference
//
// Every error shown on the dashboard carries a code that can be quoted when
// reporting a problem with the data file or the deployment.
//
// # Data File Errors (LOAD001-LOAD099)
//
//	LOAD001 - Data file unavailable: The data file could not be read
//	          Action: Check that DATA_FILE points to a readable .xlsx or .csv file
//	          Patterns: "could not load data file"
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Identity columns missing: REF_AREA_LABEL or INDICATOR_LABEL is absent
//	         Action: Add both columns to the first worksheet header
//	         Patterns: "missing identity columns"
//
//	SCH002 - No year columns: No column header consists only of digits
//	         Action: Name year columns like 2000, 2001 ... 2024
//	         Patterns: "no year columns"
//
// # Selection Errors (SEL001-SEL099)
//
//	SEL001 - No data: No rows match the selected areas and indicator
//	         Action: Choose a different area or indicator
//	         Patterns: "no data found"
//
//	SEL002 - Invalid selection: Wrong number of areas or no indicator
//	         Action: Select one indicator and the allowed number of areas
//	         Patterns: "invalid selection"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled
//	         Patterns: "context canceled"
//
//	REQ002 - Request timed out
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
//	RATE002 - Renderer busy: Too many charts are being drawn
//	          Patterns: "too many chart renders"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the server log for the
// original error.
//
// # Pattern Matching
//
// Typed errors (LoadError, SchemaError, the selection sentinels) are matched
// with errors.As and errors.Is first. Anything else is matched
// case-insensitively against the pattern list with strings.Contains; the
// first matching pattern wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgLoad = UserMessage{
		Message: "The data file could not be loaded",
		Action:  "Check that DATA_FILE points to a readable .xlsx or .csv file",
		Code:    "LOAD001",
	}
	msgMissingIdentity = UserMessage{
		Message: "The data file must contain REF_AREA_LABEL and INDICATOR_LABEL columns",
		Action:  "Add both columns to the header of the first worksheet",
		Code:    "SCH001",
	}
	msgNoYears = UserMessage{
		Message: "No year columns detected",
		Action:  "Ensure your file includes columns like 2000, 2001, ... 2024",
		Code:    "SCH002",
	}
	msgEmptySelection = UserMessage{
		Message: "No data found for this combination",
		Action:  "Choose a different area or indicator",
		Code:    "SEL001",
	}
	msgInvalidSelection = UserMessage{
		Message: "The selection is not valid",
		Action:  fmt.Sprintf("Select one indicator and between 1 and %d areas", MaxAreas),
		Code:    "SEL002",
	}
	msgTooManyRenders = UserMessage{
		Message: "The chart renderer is busy",
		Action:  "Please wait a moment and try again",
		Code:    "RATE002",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// Order matters: more specific patterns come first.
var errorPatterns = []errorPattern{
	{pattern: "could not load data file", msg: msgLoad},
	{pattern: "missing identity columns", msg: msgMissingIdentity},
	{pattern: "no year columns", msg: msgNoYears},
	{pattern: "no data found", msg: msgEmptySelection},
	{pattern: "invalid selection", msg: msgInvalidSelection},
	{pattern: "too many chart renders", msg: msgTooManyRenders},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the server log",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	msg := MapError(&SchemaError{Reason: "no year columns"})
//	// msg.Code == "SCH002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		loadErr   *LoadError
		schemaErr *SchemaError
	)
	switch {
	case errors.As(err, &loadErr):
		return msgLoad
	case errors.As(err, &schemaErr):
		if schemaErr.Reason == reasonNoYearColumns {
			return msgNoYears
		}
		return msgMissingIdentity
	case errors.Is(err, ErrEmptySelection):
		return msgEmptySelection
	case errors.Is(err, ErrInvalidSelection):
		return msgInvalidSelection
	case errors.Is(err, ErrTooManyRenders):
		return msgTooManyRenders
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// IsFatal reports whether err halts the dashboard for every selection, as
// opposed to a problem with the current selection only.
func IsFatal(err error) bool {
	var (
		loadErr   *LoadError
		schemaErr *SchemaError
	)
	return errors.As(err, &loadErr) || errors.As(err, &schemaErr)
}

// UserError pairs a technical error, kept for logging, with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
