package account_test

import (
	"testing"
	"time"

	account "github.com/goliatone/go-customer-account"
	"github.com/stretchr/testify/assert"
)

func TestIsWithinThresholdPeriod(t *testing.T) {
	tests := []struct {
		name          string
		inputTime     time.Time
		thresholdExpr string
		expected      bool
		expectErr     bool
	}{
		{
			name:          "Within 1 hour threshold",
			inputTime:     time.Now().Add(-30 * time.Minute),
			thresholdExpr: "1h",
			expected:      true,
		},
		{
			name:          "Outside 1 hour threshold",
			inputTime:     time.Now().Add(-61 * time.Minute),
			thresholdExpr: "1h",
			expected:      false,
		},
		{
			name:          "Future time",
			inputTime:     time.Now().Add(1 * time.Hour),
			thresholdExpr: "1h",
			expected:      true,
		},
		{
			name:          "Invalid threshold expression",
			inputTime:     time.Now(),
			thresholdExpr: "an hour",
			expectErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			within, err := account.IsWithinThresholdPeriod(tt.inputTime, tt.thresholdExpr)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, within)

			outside, err := account.IsOutsideThresholdPeriod(tt.inputTime, tt.thresholdExpr)
			assert.NoError(t, err)
			assert.Equal(t, !tt.expected, outside)
		})
	}
}
