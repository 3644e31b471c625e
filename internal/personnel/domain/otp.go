package domain

import "time"

// OneTimeCode is an emailed login code. At most one unused code exists per
// user; issuing a new one deletes the previous unused code.
type OneTimeCode struct {
	ID        int64
	UserID    int64
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
}

// Redeemable reports whether the code could still be accepted at now.
func (c OneTimeCode) Redeemable(now time.Time) bool {
	return !c.Used && now.Before(c.ExpiresAt)
}
