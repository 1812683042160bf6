package kernel_test

import (
	"testing"

	"pizzeria/internal/core/domain/model/kernel"
	"pizzeria/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderID(t *testing.T) {
	t.Run("should accept positive identifiers", func(t *testing.T) {
		id, err := kernel.NewOrderID(42)

		require.NoError(t, err)
		assert.Equal(t, int64(42), id.Int64())
		assert.Equal(t, "42", id.String())
	})

	t.Run("should reject zero as not constructed", func(t *testing.T) {
		_, err := kernel.NewOrderID(0)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject negative identifiers", func(t *testing.T) {
		_, err := kernel.NewOrderID(-3)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		assert.Contains(t, err.Error(), "-3 is order ID")
	})
}

func TestParseOrderID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    kernel.OrderID
		wantErr error
	}{
		{name: "valid", raw: "17", want: 17},
		{name: "not a number", raw: "abc", wantErr: errs.ErrValueIsInvalid},
		{name: "zero", raw: "0", wantErr: errs.ErrValueIsRequired},
		{name: "negative", raw: "-1", wantErr: errs.ErrValueIsOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := kernel.ParseOrderID(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}
