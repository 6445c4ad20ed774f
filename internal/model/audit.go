package model

import "time"

// ParsingAttempt is an immutable audit record of one extraction call, written
// on every attempt whether it succeeded or not.
type ParsingAttempt struct {
	CreatedAt    time.Time `json:"createdAt"`
	OwnerID      string    `json:"-"`
	InputText    string    `json:"inputText"`
	RawOutput    string    `json:"rawOutput,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	DurationMs   int64     `json:"durationMs"`
	ID           int64     `json:"id"`
	Success      bool      `json:"success"`
}
