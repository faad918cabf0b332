package shared

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewUnitIdentifiersUnique(t *testing.T) {
	ids := NewUnitIdentifiers("VH1", 100, time.Now())
	require.Len(t, ids, 100)

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		require.True(t, strings.HasPrefix(id, "VH1-"))
		_, dup := seen[id]
		require.False(t, dup, "duplicate identifier %s", id)
		seen[id] = struct{}{}
	}
}

func TestNewUnitIdentifiersZeroCount(t *testing.T) {
	require.Nil(t, NewUnitIdentifiers("VH1", 0, time.Now()))
}
