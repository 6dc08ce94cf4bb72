package session

import (
	"encoding/json"
	"time"
)

// Level is the learner level stored on the user. The zero value means unset.
type Level string

const (
	LevelUnset        Level = ""
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Valid reports whether l is one of the assignable levels.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// User is the record returned by GET /users/me.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	Level       Level     `json:"level"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

// naiveTimestamp is the layout of timestamps sent without a zone; they are read as UTC.
const naiveTimestamp = "2006-01-02T15:04:05.999999999"

// UnmarshalJSON accepts created_at with or without a UTC offset.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	aux := struct {
		*alias
		CreatedAt string `json:"created_at"`
	}{alias: (*alias)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	u.CreatedAt = time.Time{}
	if aux.CreatedAt == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, aux.CreatedAt); err == nil {
		u.CreatedAt = t
		return nil
	}
	t, err := time.ParseInLocation(naiveTimestamp, aux.CreatedAt, time.UTC)
	if err != nil {
		return err
	}
	u.CreatedAt = t
	return nil
}

// Credentials are sent to POST /auth/login. They are never stored.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegistrationData is sent to POST /auth/register.
type RegistrationData struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Status Status
	User   *User
}

// IsAuthenticated reports whether the snapshot holds a signed-in user.
func (s Snapshot) IsAuthenticated() bool {
	return s.User != nil && (s.Status == StatusAuthenticated || s.Status == StatusRefreshingInFlight)
}

// IsLoading reports whether the initial restore is still running.
func (s Snapshot) IsLoading() bool {
	return s.Status == StatusRestoring
}
