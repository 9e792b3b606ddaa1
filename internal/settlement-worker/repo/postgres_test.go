package repo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mm2d3d/lottery-platform/internal/settlement"
)

// The id column is uuid: a query that binds an empty string into the
// cursor comparison errors server-side before returning a single row,
// which would dead-letter every draw. The first page must not carry the
// comparison at all.
func TestListPendingQueryFirstPageHasNoCursor(t *testing.T) {
	query, args := listPendingQuery(settlement.TwoD, "2025-03-01", settlement.Evening, "", 500)

	assert.NotContains(t, query, "id >")
	require.Len(t, args, 4)
	for _, a := range args {
		if s, ok := a.(string); ok {
			assert.NotEmpty(t, s)
		}
	}
	assert.Equal(t, 500, args[3])
	assert.Contains(t, query, "ORDER BY id")
	assert.Contains(t, query, "status='PENDING'")
}

func TestListPendingQueryResumesAfterCursor(t *testing.T) {
	cursor := "5b2acb4e-6c1e-4a87-9b63-0d6c9f4be2aa"
	query, args := listPendingQuery(settlement.ThreeD, "2025-03-01", settlement.Evening, cursor, 100)

	assert.Contains(t, query, "id > $4")
	require.Len(t, args, 5)
	assert.Equal(t, cursor, args[3])
	assert.Equal(t, 100, args[4])
	assert.Contains(t, query, "ORDER BY id")
}

// Both branches select the same columns in the same order; Scan depends
// on it.
func TestListPendingQueryBranchesSelectSameColumns(t *testing.T) {
	first, _ := listPendingQuery(settlement.TwoD, "2025-03-01", settlement.Morning, "", 10)
	resumed, _ := listPendingQuery(settlement.TwoD, "2025-03-01", settlement.Morning, "x", 10)

	selectOf := func(q string) string {
		i := strings.Index(q, "FROM")
		require.Positive(t, i)
		return strings.TrimSpace(q[:i])
	}
	assert.Equal(t, selectOf(first), selectOf(resumed))
}
