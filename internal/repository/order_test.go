package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderkit/internal/domain"
	"orderkit/pkg/predicate"
)

func TestSearchRejectsPaginationWithCollectionJoin(t *testing.T) {
	// A nil DB proves no query can have executed: the strategy/pagination
	// check must fail before touching the executor.
	repo := NewOrderRepository(nil, 0)

	_, err := repo.Search(context.Background(), OrderSearch{}, FetchJoinItems, &Page{Offset: 0, Limit: 10})

	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestSearchRejectsInvalidPage(t *testing.T) {
	repo := NewOrderRepository(nil, 0)

	tests := []struct {
		name string
		page Page
	}{
		{name: "negative offset", page: Page{Offset: -1, Limit: 10}},
		{name: "negative limit", page: Page{Offset: 0, Limit: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Search(context.Background(), OrderSearch{}, FetchLazy, &tt.page)
			var confErr *ConfigurationError
			require.ErrorAs(t, err, &confErr)
		})
	}
}

func TestPageDefaults(t *testing.T) {
	p, err := NewPage(0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestParseFetchStrategy(t *testing.T) {
	tests := []struct {
		name    string
		want    FetchStrategy
		wantErr bool
	}{
		{name: "lazy", want: FetchLazy},
		{name: "join-base", want: FetchJoinBase},
		{name: "join-items", want: FetchJoinItems},
		{name: "eager", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFetchStrategy(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.name, got.String())
		})
	}
}

func TestOrderSearchConditions(t *testing.T) {
	ordered := domain.StatusOrdered

	tests := []struct {
		name     string
		search   OrderSearch
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "unfiltered",
			search:   OrderSearch{},
			wantSQL:  "",
			wantArgs: nil,
		},
		{
			name:     "status only",
			search:   OrderSearch{Status: &ordered},
			wantSQL:  "WHERE o.status = $1",
			wantArgs: []any{"ORDERED"},
		},
		{
			name:     "member name only",
			search:   OrderSearch{MemberName: "park"},
			wantSQL:  "WHERE m.name ILIKE $1",
			wantArgs: []any{"%park%"},
		},
		{
			name:     "both fields AND-ed",
			search:   OrderSearch{Status: &ordered, MemberName: "park"},
			wantSQL:  "WHERE o.status = $1 AND m.name ILIKE $2",
			wantArgs: []any{"ORDERED", "%park%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := predicate.NewWhereBuilder()
			for _, c := range tt.search.Conditions() {
				wb.Add(c)
			}
			sql, args, err := wb.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestUnfilteredSearchIsCapped(t *testing.T) {
	// Without a page the base query must still carry the hard cap, so an
	// unfiltered search can never sweep the whole table.
	sql, args, err := baseQuerySQL(OrderSearch{}, nil, true)
	require.NoError(t, err)
	assert.Contains(t, sql, fmt.Sprintf("LIMIT %d", MaxSearchResults))
	assert.NotContains(t, sql, "OFFSET")
	assert.Empty(t, args)

	// A supplied page replaces the cap with its own window.
	page, err := NewPage(10, 20)
	require.NoError(t, err)
	sql, _, err = baseQuerySQL(OrderSearch{}, page, false)
	require.NoError(t, err)
	assert.Contains(t, sql, "LIMIT 20 OFFSET 10")
	assert.NotContains(t, sql, fmt.Sprintf("LIMIT %d", MaxSearchResults))
}

func TestSearchFilterValuesAreAlwaysBound(t *testing.T) {
	// A hostile member-name must end up as a parameter, never in the SQL.
	hostile := "'; DROP TABLE orders; --"
	search := OrderSearch{MemberName: hostile}

	sql, args, err := predicate.Select("o.order_id").
		From("orders o").
		InnerJoin("members m", "o.member_id = m.member_id").
		Where(search.Conditions()...).
		ToSQL()
	require.NoError(t, err)

	assert.NotContains(t, sql, "DROP TABLE")
	require.Len(t, args, 1)
	assert.Equal(t, "%"+hostile+"%", args[0])
}
