package orderquery

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderkit/internal/repository"
)

func TestSummaryQueryIsCappedWithoutPage(t *testing.T) {
	sql, args, err := summaryQuerySQL(repository.OrderSearch{}, nil)
	require.NoError(t, err)
	assert.Contains(t, sql, fmt.Sprintf("LIMIT %d", repository.MaxSearchResults))
	assert.NotContains(t, sql, "OFFSET")
	assert.Empty(t, args)
}

func TestSummaryQueryPageReplacesCap(t *testing.T) {
	page, err := repository.NewPage(5, 50)
	require.NoError(t, err)

	sql, _, err := summaryQuerySQL(repository.OrderSearch{}, page)
	require.NoError(t, err)
	assert.Contains(t, sql, "LIMIT 50 OFFSET 5")
	assert.NotContains(t, sql, fmt.Sprintf("LIMIT %d", repository.MaxSearchResults))
}
