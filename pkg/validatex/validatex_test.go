package validatex_test

import (
	"testing"

	"github.com/aussiebroadwan/pnpstation/pkg/validatex"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Email    string `json:"email" validate:"required,email"`
	Start    string `json:"start_date" validate:"required,datetime=2006-01-02"`
	Kind     string `json:"kind" validate:"oneof=a b"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validatex.Struct(signup{Username: "juan_dc", Email: "j@example.com", Start: "2025-01-31", Kind: "a"}))
	})

	t.Run("collects every failure with json names", func(t *testing.T) {
		err := validatex.Struct(signup{Username: "bad name!", Email: "nope", Start: "31/01/2025", Kind: "c"})

		var verr *validatex.Error
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 4)
		require.Contains(t, err.Error(), "username may only contain")
		require.Contains(t, err.Error(), "email must be a valid email")
		require.Contains(t, err.Error(), "start_date must be a date")
		require.Contains(t, err.Error(), "kind must be one of: a b")
	})

	t.Run("non struct is not a validation error", func(t *testing.T) {
		err := validatex.Struct(42)
		require.Error(t, err)
		_, ok := err.(*validatex.Error)
		require.False(t, ok)
	})
}
