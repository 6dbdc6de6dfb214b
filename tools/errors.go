package tools

import "errors"

var (
	// ErrCallLimitExceeded is returned once a tool has used up its call budget
	ErrCallLimitExceeded = errors.New("call limit exceeded")

	// ErrDuplicateCall is returned when a tool is called again with arguments it has already seen
	ErrDuplicateCall = errors.New("duplicate call rejected")

	// ErrRateLimited is returned when tool calls arrive faster than the configured rate
	ErrRateLimited = errors.New("rate limited")

	// ErrNotImplemented is returned by stub tools
	ErrNotImplemented = errors.New("not implemented")
)

// IsConstraint reports whether err is a rejection by a constraint wrapper
// rather than a failure of the tool itself.
func IsConstraint(err error) bool {
	return errors.Is(err, ErrCallLimitExceeded) ||
		errors.Is(err, ErrDuplicateCall) ||
		errors.Is(err, ErrRateLimited)
}
