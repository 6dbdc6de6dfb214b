package session

import (
	"errors"
	"fmt"
)

// State is where the conversation loop is between rounds
type State int

const (
	AwaitingUserInput State = iota
	StreamingToolRound
	StreamingFinalRound
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingUserInput:
		return "awaiting-user-input"
	case StreamingToolRound:
		return "streaming-tool-round"
	case StreamingFinalRound:
		return "streaming-final-round"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrValidation wraps a final answer that did not validate against the schema.
// It ends the session; messages gathered so far are still persisted.
var ErrValidation = errors.New("final answer failed validation")
