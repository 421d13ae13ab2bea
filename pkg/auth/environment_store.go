package auth

import (
	"os"
	"time"
)

const (
	envSessionID = "FANTIADL_SESSION_ID"
	envUserAgent = "FANTIADL_USER_AGENT"
)

// EnvironmentStore implements CredentialStore over FANTIADL_SESSION_ID.
// It is read-only and answers for every profile.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(session *Session) error {
	return ErrStoreUnavailable
}

// Retrieve returns the session from the environment
func (e *EnvironmentStore) Retrieve(profile string) (*Session, error) {
	sessionID := os.Getenv(envSessionID)
	if sessionID == "" {
		return nil, ErrCredentialsNotFound
	}

	if profile == "" {
		profile = DefaultProfile
	}

	return &Session{
		Profile:      profile,
		SessionID:    sessionID,
		UserAgent:    os.Getenv(envUserAgent),
		LastModified: time.Time{},
	}, nil
}

// List returns a single default session if the environment carries one
func (e *EnvironmentStore) List() ([]*Session, error) {
	session, err := e.Retrieve("")
	if err != nil {
		return []*Session{}, nil
	}
	return []*Session{session}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(profile string) error {
	return ErrStoreUnavailable
}

// Exists checks if the environment carries a session
func (e *EnvironmentStore) Exists(profile string) bool {
	return os.Getenv(envSessionID) != ""
}
