package payment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeTransactionIDs(t *testing.T) {
	gen, err := NewSnowflakeTransactionIDs(7, "EVH")
	require.NoError(t, err)

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := gen.NextTransactionID()
		require.True(t, strings.HasPrefix(id, "EVH"))
		_, dup := seen[id]
		require.False(t, dup, "duplicate transaction id %s", id)
		seen[id] = struct{}{}
	}
}

func TestNewSnowflakeTransactionIDs_InvalidNode(t *testing.T) {
	_, err := NewSnowflakeTransactionIDs(5000, "EVH")
	assert.Error(t, err)
}
