package core

// error_messages.go defines user-friendly error messages with codes for
// support reference. When users encounter errors they can quote the code
// for faster diagnosis.
//
// Error codes are grouped by category:
//
//	CAT001 - Unknown catalogue: the requested name is outside the fixed set
//	LOAD001 - Missing file: the catalogue's backing data does not exist
//	LOAD002 - Invalid structure: missing primary id column or bad CSV
//	LOAD003 - Duplicate identifier: two rows share a primary id
//	ID001  - Not found: no entity matches the requested identifier
//	APP001 - Backbone immutable: appends target backbone catalogues
//	APP002 - Read-only source: the configured source cannot accept writes
//	APP003 - Rejected rows: appended rows failed validation
//	RATE001 - Rate limited
//
// Unmatched errors fall back to ERR000; support staff should check the
// application logs for the original technical error.

import (
	"fmt"
	"strings"
)

// UserMessage is a user-facing error with a support code and a suggested
// next step.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "unknown catalogue",
		msg: UserMessage{
			Message: "The requested catalogue is not part of the CRT set",
			Action:  "Check the catalogue name against the fixed catalogue list",
			Code:    "CAT001",
		},
	},
	{
		pattern: "does not exist",
		msg: UserMessage{
			Message: "The catalogue's backing data could not be found",
			Action:  "Verify the catalogue directory or mirror is populated",
			Code:    "LOAD001",
		},
	},
	{
		pattern: "missing primary id column",
		msg: UserMessage{
			Message: "The catalogue file is missing its identifier column",
			Action:  "Restore the file header to the published catalogue schema",
			Code:    "LOAD002",
		},
	},
	{
		pattern: "parse csv",
		msg: UserMessage{
			Message: "The catalogue file is not valid CSV",
			Action:  "Re-export the file as comma-separated values",
			Code:    "LOAD002",
		},
	},
	{
		pattern: "duplicate primary id",
		msg: UserMessage{
			Message: "Two catalogue rows share the same identifier",
			Action:  "Remove or re-key the duplicated row",
			Code:    "LOAD003",
		},
	},
	{
		pattern: "not found in catalogue",
		msg: UserMessage{
			Message: "No entity matches the requested identifier",
			Action:  "Identifiers are case-sensitive; check the exact value",
			Code:    "ID001",
		},
	},
	{
		pattern: "backbone catalogue is immutable",
		msg: UserMessage{
			Message: "Backbone catalogues cannot be extended",
			Action:  "Organisation rows may only be added to append-only catalogues",
			Code:    "APP001",
		},
	},
	{
		pattern: "source is read-only",
		msg: UserMessage{
			Message: "This deployment's catalogue source does not accept writes",
			Action:  "Add rows where the catalogue mirror is maintained",
			Code:    "APP002",
		},
	},
	{
		pattern: "identifier already exists",
		msg: UserMessage{
			Message: "A row with this identifier already exists",
			Action:  "Existing rows are never altered; use a new identifier",
			Code:    "APP003",
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
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches the known patterns (case-insensitive) and returns the first
// match, falling back to the generic ERR000 message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
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

// IsUserFacing reports whether an error matches a known pattern and
// should be shown to users as-is (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
