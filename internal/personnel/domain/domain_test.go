package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/stretchr/testify/require"
)

func TestAuthStateTransitions(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	alice := domain.User{ID: 7, Username: "alice", Role: domain.RoleEmployee}

	anon := domain.Anonymous(now)
	require.False(t, anon.IsAuthenticated())
	require.False(t, anon.IsPending())
	require.Zero(t, anon.UserID)

	pending := domain.PrimaryVerified(alice, now)
	pending.Attempts = 3
	require.True(t, pending.IsPending())
	require.False(t, pending.IsAuthenticated())

	later := now.Add(time.Minute)
	authed := pending.Promote(later)
	require.True(t, authed.IsAuthenticated())
	require.False(t, authed.IsPending())
	require.Equal(t, int64(7), authed.UserID)
	require.Equal(t, domain.RoleEmployee, authed.Role)
	require.Zero(t, authed.Attempts, "counters reset once authenticated")
	require.Equal(t, later, authed.Since)
}

func TestOneTimeCodeRedeemable(t *testing.T) {
	now := time.Now()
	c := domain.OneTimeCode{ExpiresAt: now.Add(time.Minute)}
	require.True(t, c.Redeemable(now))
	require.False(t, c.Redeemable(now.Add(time.Minute)), "expiry is exclusive")

	c.Used = true
	require.False(t, c.Redeemable(now))
}

func TestPage(t *testing.T) {
	tests := []struct {
		total, pages int
	}{
		{0, 0}, {1, 1}, {20, 1}, {21, 2}, {45, 3},
	}
	for _, tt := range tests {
		p := domain.NewPage[int](nil, tt.total, domain.PageRequest{Page: 1})
		require.Equal(t, tt.pages, p.TotalPages, "total %d", tt.total)
		require.NotNil(t, p.Items)
	}

	require.Equal(t, 0, domain.PageRequest{Page: -3}.Offset())
	require.Equal(t, 40, domain.PageRequest{Page: 3}.Offset())
	require.Equal(t, 1, domain.NewPage([]int{1}, 1, domain.PageRequest{}).Page)
}

func TestEnums(t *testing.T) {
	require.True(t, domain.RoleApplicant.Valid())
	require.False(t, domain.Role("root").Valid())
	require.True(t, domain.StatusSuspended.Valid())
	require.False(t, domain.Status("deleted").Valid())

	require.True(t, domain.User{Status: domain.StatusActive}.Active())
	require.False(t, domain.User{Status: domain.StatusInactive}.Active())
	require.True(t, domain.LeaveApplication{Status: domain.LeavePending}.Editable())
	require.False(t, domain.LeaveApplication{Status: domain.LeaveApproved}.Editable())
}
