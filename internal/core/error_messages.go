package core

// # Error Codes Reference
//
// User-facing errors carry a code that can be quoted to support staff.
//
// # Content Errors (IMP001-IMP599)
//
// Every ErrorKind has a fixed code, see errors.go. The hundreds digit
// groups them:
//
//	IMP0xx - structural (tokenizer, key-value fields, field counts)
//	IMP1xx - employee identity headers
//	IMP2xx - timesheet section ordering
//	IMP3xx - timesheet entry fields
//	IMP4xx - todo lists
//	IMP5xx - wishlists
//
// Action for all content errors: fix the reported line and import again.
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key              Patterns: "duplicate key"
//	DB002 - Unique constraint          Patterns: "unique constraint", "violates unique"
//	DB003 - Foreign key                Patterns: "foreign key constraint", "violates foreign key"
//	DB004 - Connection refused         Patterns: "connection refused"
//	DB005 - Connection reset           Patterns: "connection reset"
//	DB006 - Deadlock                   Patterns: "deadlock"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large           ErrFileTooLarge
//	FILE002 - File not found           fs.ErrNotExist, "no such file"
//	FILE003 - No file provided         Patterns: "no file provided"
//
// # Import Errors (RUN001-RUN099)
//
//	RUN001 - System busy               ErrTooManyImports
//	RUN002 - Unknown format            ErrUnknownFormat
//	RUN003 - Request cancelled         context.Canceled
//	RUN004 - Request timeout           context.DeadlineExceeded
//
// # Default Error (ERR000)
//
// Fallback when nothing matches; check the logs for the technical error.

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// sentinelMessages are checked with errors.Is before any string matching.
var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{ErrFileTooLarge, UserMessage{"File exceeds the maximum import size", "Split the file into smaller files", "FILE001"}},
	{fs.ErrNotExist, UserMessage{"Import file not found", "Check the path and try again", "FILE002"}},
	{ErrTooManyImports, UserMessage{"Another import is in progress", "Please wait a moment and try again", "RUN001"}},
	{ErrUnknownFormat, UserMessage{"Unknown import format", "Choose one of the listed formats", "RUN002"}},
	{context.Canceled, UserMessage{"Import was cancelled", "Please try again", "RUN003"}},
	{context.DeadlineExceeded, UserMessage{"Import timed out", "Try a smaller file or try again later", "RUN004"}},
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// The first match wins, so specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Database (DB001-DB006)
	// =========================================================================
	{"duplicate key", UserMessage{"A record with this key already exists", "Check the file for repeated entries", "DB001"}},
	{"unique constraint", UserMessage{"This value must be unique but already exists", "Check the file for repeated entries", "DB002"}},
	{"violates unique", UserMessage{"A duplicate value was found", "Check the file for repeated entries", "DB002"}},
	{"foreign key constraint", UserMessage{"Referenced record does not exist", "Import the referenced data first", "DB003"}},
	{"violates foreign key", UserMessage{"Referenced record does not exist", "Import the referenced data first", "DB003"}},
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB006"}},

	// =========================================================================
	// File (FILE002-FILE003)
	// =========================================================================
	{"no such file", UserMessage{"Import file not found", "Check the path and try again", "FILE002"}},
	{"no file provided", UserMessage{"No file was provided", "Attach a text file to import", "FILE003"}},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-facing message.
//
// Content errors map to their kind's code and message, including the
// line number. Known sentinels are matched with errors.Is, everything
// else by case-insensitive substring.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ie *ImportError
	if errors.As(err, &ie) {
		msg := ie.Kind.Message()
		if ie.Line > 0 {
			msg = fmt.Sprintf("Line %d: %s", ie.Line, msg)
		}
		return UserMessage{
			Message: msg,
			Action:  "Fix the reported line and import the file again",
			Code:    ie.Kind.Code(),
		}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.target) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders MapError as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
