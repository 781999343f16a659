package cli

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/server-sentinel/sentinel/internal/errors"
)

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{
			name:     "empty string returns zero",
			input:    "",
			expected: 0,
		},
		{
			name:     "seconds",
			input:    "90s",
			expected: 90 * time.Second,
		},
		{
			name:     "minutes",
			input:    "5m",
			expected: 5 * time.Minute,
		},
		{
			name:     "compound duration",
			input:    "1m30s",
			expected: 90 * time.Second,
		},
		{
			name:    "missing unit",
			input:   "30",
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "soon",
			wantErr: true,
		},
		{
			name:    "negative",
			input:   "-5s",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeout(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValidateTargets(t *testing.T) {
	assert.NoError(t, ValidateTargets(true, nil))
	assert.NoError(t, ValidateTargets(false, []string{"srv1"}))
	assert.NoError(t, ValidateTargets(false, nil))

	err := ValidateTargets(true, []string{"srv1"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestAddRunFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var flags RunFlags
	AddRunFlags(cmd, &flags)

	assert.NotNil(t, cmd.Flags().Lookup("all"))
	assert.NotNil(t, cmd.Flags().Lookup("timeout"))
	assert.NotNil(t, cmd.Flags().Lookup("json"))
}

func TestAddRunFlags_Values(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var flags RunFlags
	AddRunFlags(cmd, &flags)

	require.NoError(t, cmd.ParseFlags([]string{"--all", "--timeout", "2m", "--json"}))

	assert.True(t, flags.All)
	assert.Equal(t, "2m", flags.Timeout)
	assert.True(t, flags.JSON)
}
