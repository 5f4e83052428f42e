// Package domainerrors defines the fixed error taxonomy for the milestone
// ledger. Every failing operation surfaces exactly one Code; callers branch on
// the code, never on message text. Messages exist for logs only and never
// cross the API boundary.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a failure condition. The set is closed: services must not
// invent ad-hoc codes, and transport maps each code to a fixed HTTP status.
type Code string

const (
	// CodeNotAuthorized: caller's role or relationship does not permit the operation.
	CodeNotAuthorized Code = "NotAuthorized"
	// CodeUserNotFound: referenced user has no registry record.
	CodeUserNotFound Code = "UserNotFound"
	// CodeMilestoneNotFound: referenced milestone id is absent.
	CodeMilestoneNotFound Code = "MilestoneNotFound"
	// CodeMilestoneAlreadyExists doubles as the duplicate-registration code;
	// the original ledger reused it for a second register call.
	CodeMilestoneAlreadyExists Code = "MilestoneAlreadyExists"
	// CodeForestNotFound: referenced forest id is absent.
	CodeForestNotFound Code = "ForestNotFound"
	// CodeForestAlreadyExists is reserved; no current operation returns it.
	CodeForestAlreadyExists Code = "ForestAlreadyExists"
	// CodeParentMilestoneNotFound: supplied parent-milestone id is absent.
	CodeParentMilestoneNotFound Code = "ParentMilestoneNotFound"
	// CodeMilestoneAlreadyCompleted: completion record already exists for (milestone, user).
	CodeMilestoneAlreadyCompleted Code = "MilestoneAlreadyCompleted"
	// CodePrerequisitesNotCompleted: one or more prerequisite edges unsatisfied for the subject.
	CodePrerequisitesNotCompleted Code = "PrerequisitesNotCompleted"
	// CodeInvalidParameters: out-of-range numeric field, malformed enum string,
	// or self-referential edge.
	CodeInvalidParameters Code = "InvalidParameters"
	// CodeInvalidUserRole: role outside [1,4], or role mismatch for the operation.
	CodeInvalidUserRole Code = "InvalidUserRole"
	// CodeChildNotRegistered: relationship target is not a registered child.
	CodeChildNotRegistered Code = "ChildNotRegistered"
	// CodeDuplicateRelationship: relationship already exists for the ordered pair.
	CodeDuplicateRelationship Code = "DuplicateRelationship"
	// CodeUnauthorized: missing, invalid, or expired credentials at the
	// transport layer; distinct from CodeNotAuthorized, which is a domain
	// refusal of an authenticated caller.
	CodeUnauthorized Code = "Unauthorized"
	// CodeInternal: infrastructure failure outside the domain taxonomy.
	CodeInternal Code = "Internal"
	// CodeBadRequest: malformed request body or parameters at the transport layer.
	CodeBadRequest Code = "BadRequest"
)

// Error carries a Code plus an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a domain error with the given code.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a domain code to an underlying infrastructure error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// HasCode is an alias of Is kept for call-site readability in assertions.
func HasCode(err error, code Code) bool {
	return Is(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal when err is
// not a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HTTPStatus maps a code to its fixed transport status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeNotAuthorized:
		return http.StatusForbidden
	case CodeUserNotFound, CodeMilestoneNotFound, CodeForestNotFound, CodeParentMilestoneNotFound:
		return http.StatusNotFound
	case CodeMilestoneAlreadyExists, CodeForestAlreadyExists, CodeMilestoneAlreadyCompleted, CodeDuplicateRelationship:
		return http.StatusConflict
	case CodeInvalidParameters, CodeInvalidUserRole, CodeChildNotRegistered, CodePrerequisitesNotCompleted:
		return http.StatusUnprocessableEntity
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
