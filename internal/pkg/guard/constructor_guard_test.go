package guard_test

import (
	"errors"
	"testing"

	"pizzeria/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("properly_constructed_guard_returns_nil", func(t *testing.T) {
		// Given
		g := guard.NewConstructorGuard()

		// When
		err := g.Validate(errors.New("not constructed"))

		// Then
		require.NoError(t, err)
	})

	t.Run("zero_value_guard_returns_custom_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard
		expectedError := errors.New("order not constructed")

		// When
		err := g.Validate(expectedError)

		// Then
		assert.Equal(t, expectedError, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard

		// When
		err := g.Validate(nil)

		// Then
		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
	})
}

func TestConstructorGuard_EmbeddedInCommand(t *testing.T) {
	type command struct {
		details string
		guard   guard.ConstructorGuard
	}
	errNotConstructed := errors.New("command must be created via constructor")

	built := command{details: "pepperoni", guard: guard.NewConstructorGuard()}
	require.NoError(t, built.guard.Validate(errNotConstructed))

	var zero command
	require.ErrorIs(t, zero.guard.Validate(errNotConstructed), errNotConstructed)
}
