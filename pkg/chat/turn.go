// Package chat models the conversation turns exchanged with the assistant
// endpoint. The payload attached to a turn is a closed set of shapes selected
// by the turn's navigation target.
package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Role identifies who wrote a turn.
type Role string

const (
	RoleHuman Role = "Human"
	RoleAI    Role = "AI"
)

// Navigate names the page a turn directs the user to.
type Navigate string

const (
	NavigateNone    Navigate = "null"
	NavigateLoan    Navigate = "loan page"
	NavigateLease   Navigate = "lease page"
	NavigateCompare Navigate = "lease and loan comparision page"
)

var (
	// ErrUnknownRole reports a role other than Human or AI.
	ErrUnknownRole = errors.New("user must be \"Human\" or \"AI\"")

	// ErrUnknownNavigate reports a navigation target outside the closed set.
	ErrUnknownNavigate = errors.New("unknown navigate target")

	// ErrEmptyMessage reports a turn without message text.
	ErrEmptyMessage = errors.New("message must not be empty")
)

// Payload is the data attached to a turn. The concrete type is determined by
// the turn's Navigate value.
type Payload interface {
	navigate() Navigate
}

// LoanPayload accompanies NavigateLoan.
type LoanPayload struct {
	Data map[string]json.RawMessage `json:"data"`
}

// LeasePayload accompanies NavigateLease.
type LeasePayload struct {
	Data json.RawMessage `json:"data"`
}

// ComparePayload accompanies NavigateCompare.
type ComparePayload struct {
	LoanCore  LoanPayload  `json:"loanCore"`
	LeaseCore LeasePayload `json:"leaseCore"`
}

func (LoanPayload) navigate() Navigate    { return NavigateLoan }
func (LeasePayload) navigate() Navigate   { return NavigateLease }
func (ComparePayload) navigate() Navigate { return NavigateCompare }

// Turn is one message in a conversation.
type Turn struct {
	User     Role      `json:"user"`
	Message  string    `json:"message"`
	Navigate *Navigate `json:"navigate,omitempty"`
	Data     Payload   `json:"data,omitempty"`
}

type wireTurn struct {
	User     Role            `json:"user"`
	Message  string          `json:"message"`
	Navigate *Navigate       `json:"navigate,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// UnmarshalJSON validates the role and navigation target and decodes data
// into the payload type the target selects.
func (t *Turn) UnmarshalJSON(b []byte) error {
	var w wireTurn
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	switch w.User {
	case RoleHuman, RoleAI:
	default:
		return fmt.Errorf("%w, got %q", ErrUnknownRole, w.User)
	}
	if strings.TrimSpace(w.Message) == "" {
		return ErrEmptyMessage
	}

	payload, err := decodePayload(w.Navigate, w.Data)
	if err != nil {
		return err
	}

	*t = Turn{User: w.User, Message: w.Message, Navigate: w.Navigate, Data: payload}
	return nil
}

func decodePayload(nav *Navigate, raw json.RawMessage) (Payload, error) {
	trimmed := bytes.TrimSpace(raw)
	empty := len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}"))

	if nav == nil || *nav == NavigateNone {
		if !empty {
			return nil, errors.New("data requires a navigate target")
		}
		return nil, nil
	}

	var target Payload
	switch *nav {
	case NavigateLoan:
		target = &LoanPayload{}
	case NavigateLease:
		target = &LeasePayload{}
	case NavigateCompare:
		target = &ComparePayload{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNavigate, *nav)
	}
	if empty {
		return nil, nil
	}

	if err := json.Unmarshal(trimmed, target); err != nil {
		return nil, fmt.Errorf("decoding %s data: %w", *nav, err)
	}

	switch p := target.(type) {
	case *LoanPayload:
		return *p, nil
	case *LeasePayload:
		return *p, nil
	case *ComparePayload:
		return *p, nil
	}
	return nil, nil
}

// Echo returns the conversation with an AI turn appended that repeats the
// last message. An empty conversation is echoed as "(empty)".
func Echo(turns []Turn) []Turn {
	last := "(empty)"
	if len(turns) > 0 {
		last = turns[len(turns)-1].Message
	}

	out := make([]Turn, 0, len(turns)+1)
	out = append(out, turns...)
	return append(out, Turn{
		User:    RoleAI,
		Message: fmt.Sprintf("Echoing your last message: %s", last),
	})
}
