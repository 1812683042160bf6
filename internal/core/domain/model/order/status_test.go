package order_test

import (
	"encoding/json"
	"testing"

	"pizzeria/internal/core/domain/model/order"
	"pizzeria/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Next(t *testing.T) {
	tests := []struct {
		from    order.Status
		want    order.Status
		wantErr bool
	}{
		{from: order.Received, want: order.Cooking},
		{from: order.Cooking, want: order.Cooked},
		{from: order.Cooked, want: order.Delivering},
		{from: order.Delivering, want: order.Delivered},
		{from: order.Delivered, wantErr: true},
		{from: order.Discarded, wantErr: true},
		{from: order.Unknown, wantErr: true},
		{from: order.Status(42), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			next, err := tt.from.Next()
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrValueIsInvalid)
				assert.Equal(t, order.Unknown, next)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestStatus_IsFinal(t *testing.T) {
	assert.True(t, order.Delivered.IsFinal())
	assert.True(t, order.Discarded.IsFinal())

	for _, s := range []order.Status{order.Received, order.Cooking, order.Cooked, order.Delivering} {
		assert.False(t, s.IsFinal(), s.String())
	}
}

func TestParseStatus(t *testing.T) {
	t.Run("should parse every lifecycle name", func(t *testing.T) {
		for _, s := range []order.Status{
			order.Received, order.Cooking, order.Cooked, order.Delivering, order.Delivered, order.Discarded,
		} {
			parsed, err := order.ParseStatus(s.String())
			require.NoError(t, err)
			assert.Equal(t, s, parsed)
		}
	})

	t.Run("should reject unknown names", func(t *testing.T) {
		for _, raw := range []string{"", "UNKNOWN", "cooking", "BURNT"} {
			_, err := order.ParseStatus(raw)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid, raw)
		}
	})
}

func TestStatus_JSON(t *testing.T) {
	t.Run("encodes by name", func(t *testing.T) {
		data, err := json.Marshal(struct {
			Status order.Status `json:"status"`
		}{Status: order.Delivering})

		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"DELIVERING"}`, string(data))
	})

	t.Run("rejects unknown on encode and decode", func(t *testing.T) {
		_, err := json.Marshal(order.Unknown)
		require.Error(t, err)

		var s order.Status
		require.Error(t, json.Unmarshal([]byte(`"BURNT"`), &s))
	})
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "COOKED", order.Cooked.String())
	assert.Equal(t, "UNKNOWN", order.Status(99).String())
	require.Error(t, order.Status(99).Validate())
}
