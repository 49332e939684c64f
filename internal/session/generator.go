package session

import "github.com/google/uuid"

// NewID returns a random session ID.
func NewID() string {
	return uuid.NewString()
}

// ValidateID rejects IDs that NewID could not have produced.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &Error{Code: CodeInvalid, SessionID: id, Cause: err}
	}
	return nil
}
