package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScript(t *testing.T) {
	up, err := Script(Schema, "up")
	require.NoError(t, err)
	for _, table := range []string{"locations", "hourly_observations", "model_runs"} {
		assert.Contains(t, up, "CREATE TABLE IF NOT EXISTS "+table)
	}

	down, err := Script(Schema, "down")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(down, "DROP TABLE IF EXISTS model_runs"))

	_, err = Script(Schema, "sideways")
	assert.Error(t, err)

	_, err = Script("999_missing", "up")
	assert.Error(t, err)
}
