package domain

import (
	"errors"
	"time"
)

// Role selects which dashboard a session may see.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleAdmin  Role = "admin"
)

// DemoCredential is the reserved credential value for a locally simulated
// session. It is never sent to the backend.
const DemoCredential = "demo"

// DemoSubject is the placeholder subject given to demo identities.
const DemoSubject = "demo-user"

var (
	ErrInvalidRole        = errors.New("invalid role")
	ErrNoSession          = errors.New("no active session")
	ErrInvalidSession     = errors.New("credential could not be decoded")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrNoSelection        = errors.New("no village selected")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleFarmer, RoleAdmin:
		return Role(s), nil
	}
	return "", ErrInvalidRole
}

// Claims are the identity fields carried inside a bearer credential.
type Claims struct {
	Subject   string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// Extra holds every claim not mapped to a named field.
	Extra map[string]any
}

// Identity is the decoded identity of the current session, with the chosen
// role merged in.
type Identity struct {
	Subject   string    `json:"subject"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"issued_at,omitzero"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Demo      bool      `json:"demo"`
}

// Session is a point-in-time copy of the client session state.
type Session struct {
	Credential string    `json:"-"`
	Role       Role      `json:"role,omitempty"`
	Identity   *Identity `json:"identity,omitempty"`
	Loading    bool      `json:"loading"`
}

// Authenticated reports whether a credential (real or demo) is held.
func (s Session) Authenticated() bool { return s.Credential != "" }

// Demo reports whether the session is the locally simulated one.
func (s Session) Demo() bool { return s.Credential == DemoCredential }
