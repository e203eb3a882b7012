package core

// error_messages.go maps technical errors to coded messages that are safe
// to show users. Codes are stable so support can look them up:
//
//	REC001  record not found
//	REC002  unknown collection
//	REC003  invalid record payload
//	DB004   database connection refused
//	DB005   database connection reset
//	DB006   operation timed out
//	DB007   deadlock
//	EXP002  too many exports in progress
//	AUTH001 missing or invalid credentials
//	RATE001 too many requests
//	ERR000  anything else; check the server log for the cause
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come first.

import (
	"fmt"
	"strings"
)

// UserMessage is a user-facing description of a failure.
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
		pattern: "record not found",
		msg: UserMessage{
			Message: "Record not found",
			Action:  "It may have been deleted. Refresh and try again",
			Code:    "REC001",
		},
	},
	{
		pattern: "unknown collection",
		msg: UserMessage{
			Message: "Unknown collection",
			Action:  "Use mealPlans, ingredients or feedback",
			Code:    "REC002",
		},
	},
	{
		pattern: "invalid record payload",
		msg: UserMessage{
			Message: "The record could not be read",
			Action:  "Send a JSON object of field values",
			Code:    "REC003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "too many exports",
		msg: UserMessage{
			Message: "System is busy preparing other exports",
			Action:  "Please wait a moment and try again",
			Code:    "EXP002",
		},
	},
	{
		pattern: "unauthenticated",
		msg: UserMessage{
			Message: "Sign in required",
			Action:  "Sign in and try again",
			Code:    "AUTH001",
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

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError returns the user message for err. A nil error maps to the zero
// UserMessage and an unrecognized one to ERR000.
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

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
