package domain

import "time"

// AuthPhase is where a browser session sits in the login flow.
type AuthPhase string

const (
	PhaseAnonymous       AuthPhase = "anonymous"
	PhasePrimaryVerified AuthPhase = "otp_required"
	PhaseAuthenticated   AuthPhase = "authenticated"
)

// AuthState is the server side value behind a session cookie. Only the login
// orchestrator produces new states; everything else reads them.
//
// UserID, Username and Role are set in PhasePrimaryVerified and
// PhaseAuthenticated and zero in PhaseAnonymous. Attempts and Resends only
// mean something while the OTP is pending.
type AuthState struct {
	Phase    AuthPhase `json:"phase"`
	UserID   int64     `json:"user_id,omitempty"`
	Username string    `json:"username,omitempty"`
	Role     Role      `json:"role,omitempty"`
	Attempts int       `json:"attempts,omitempty"`
	Resends  int       `json:"resends,omitempty"`
	Since    time.Time `json:"since"`
}

func Anonymous(now time.Time) AuthState {
	return AuthState{Phase: PhaseAnonymous, Since: now}
}

// PrimaryVerified is the pending state after a correct password for a 2FA user.
func PrimaryVerified(u User, now time.Time) AuthState {
	return AuthState{
		Phase:    PhasePrimaryVerified,
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
		Since:    now,
	}
}

func Authenticated(u User, now time.Time) AuthState {
	return AuthState{
		Phase:    PhaseAuthenticated,
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
		Since:    now,
	}
}

// Promote turns a pending state into an authenticated one, keeping the role
// captured when the password was checked.
func (s AuthState) Promote(now time.Time) AuthState {
	return AuthState{
		Phase:    PhaseAuthenticated,
		UserID:   s.UserID,
		Username: s.Username,
		Role:     s.Role,
		Since:    now,
	}
}

func (s AuthState) IsAuthenticated() bool { return s.Phase == PhaseAuthenticated }
func (s AuthState) IsPending() bool       { return s.Phase == PhasePrimaryVerified }
