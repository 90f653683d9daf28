package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereBuilderBuild(t *testing.T) {
	tests := []struct {
		name       string
		conditions []Condition
		wantSQL    string
		wantArgs   []any
	}{
		{
			name:     "empty tree yields empty clause",
			wantSQL:  "",
			wantArgs: nil,
		},
		{
			name:       "single equality",
			conditions: []Condition{Eq("status", "ORDERED")},
			wantSQL:    "WHERE status = $1",
			wantArgs:   []any{"ORDERED"},
		},
		{
			name:       "two conditions default to AND",
			conditions: []Condition{Eq("status", "ORDERED"), Gt("price", 1000)},
			wantSQL:    "WHERE status = $1 AND price > $2",
			wantArgs:   []any{"ORDERED", 1000},
		},
		{
			name:       "or connective",
			conditions: []Condition{Eq("kind", "book"), Or(Eq("kind", "album"))},
			wantSQL:    "WHERE kind = $1 OR kind = $2",
			wantArgs:   []any{"book", "album"},
		},
		{
			name:       "negation wraps in NOT",
			conditions: []Condition{Not(Eq("status", "CANCELLED"))},
			wantSQL:    "WHERE NOT (status = $1)",
			wantArgs:   []any{"CANCELLED"},
		},
		{
			name:       "ilike substring",
			conditions: []Condition{Contains("name", "park")},
			wantSQL:    "WHERE name ILIKE $1",
			wantArgs:   []any{"%park%"},
		},
		{
			name:       "in expands placeholders",
			conditions: []Condition{In("order_id", int64(1), int64(2), int64(3))},
			wantSQL:    "WHERE order_id IN ($1, $2, $3)",
			wantArgs:   []any{int64(1), int64(2), int64(3)},
		},
		{
			name:       "between binds both bounds",
			conditions: []Condition{Between("price", 1000, 5000)},
			wantSQL:    "WHERE price BETWEEN $1 AND $2",
			wantArgs:   []any{1000, 5000},
		},
		{
			name:       "null checks bind nothing",
			conditions: []Condition{IsNull("author"), IsNotNull("artist")},
			wantSQL:    "WHERE author IS NULL AND artist IS NOT NULL",
			wantArgs:   nil,
		},
		{
			name: "group nests parentheses and keeps numbering",
			conditions: []Condition{
				Eq("status", "ORDERED"),
				Group(Eq("kind", "book"), Or(Eq("kind", "album"))),
			},
			wantSQL:  "WHERE status = $1 AND (kind = $2 OR kind = $3)",
			wantArgs: []any{"ORDERED", "book", "album"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWhereBuilder()
			for _, c := range tt.conditions {
				wb.Add(c)
			}

			sql, args, err := wb.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestWhereBuilderParamStart(t *testing.T) {
	wb := NewWhereBuilderAt(3)
	wb.Add(Eq("status", "ORDERED"))
	wb.Add(Gt("price", 1000))

	sql, args, err := wb.Build()
	require.NoError(t, err)
	assert.Equal(t, "WHERE status = $3 AND price > $4", sql)
	assert.Equal(t, []any{"ORDERED", 1000}, args)
}

func TestWhereBuilderRejectsEmptyIn(t *testing.T) {
	wb := NewWhereBuilder()
	wb.Add(In("order_id"))

	_, _, err := wb.Build()
	require.Error(t, err)
}

func TestContainsMatchesWildcardsLiterally(t *testing.T) {
	tests := []struct {
		name   string
		needle string
		want   string
	}{
		{name: "percent", needle: "50% off", want: `%50\% off%`},
		{name: "underscore", needle: "a_b", want: `%a\_b%`},
		{name: "backslash", needle: `a\b`, want: `%a\\b%`},
		{name: "plain needle untouched", needle: "park", want: "%park%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWhereBuilder()
			wb.Add(Contains("name", tt.needle))

			sql, args, err := wb.Build()
			require.NoError(t, err)
			assert.Equal(t, "WHERE name ILIKE $1", sql)
			assert.Equal(t, []any{tt.want}, args)
		})
	}
}

func TestValuesAreNeverInlined(t *testing.T) {
	hostile := "'; DROP TABLE orders; --"
	wb := NewWhereBuilder()
	wb.Add(Eq("name", hostile))

	sql, args, err := wb.Build()
	require.NoError(t, err)
	assert.Equal(t, "WHERE name = $1", sql)
	assert.Equal(t, []any{hostile}, args)
}

func TestSelectBuilderToSQL(t *testing.T) {
	sql, args, err := Select("o.order_id", "m.name").
		From("orders o").
		InnerJoin("members m", "o.member_id = m.member_id").
		LeftJoin("deliveries d", "o.delivery_id = d.delivery_id").
		Where(Eq("o.status", "ORDERED")).
		OrderBy("o.order_id", Asc).
		Limit(10).
		Offset(20).
		ToSQL()

	require.NoError(t, err)
	assert.Equal(t,
		"SELECT o.order_id, m.name FROM orders o"+
			" INNER JOIN members m ON o.member_id = m.member_id"+
			" LEFT JOIN deliveries d ON o.delivery_id = d.delivery_id"+
			" WHERE o.status = $1 ORDER BY o.order_id ASC LIMIT 10 OFFSET 20",
		sql)
	assert.Equal(t, []any{"ORDERED"}, args)
}

func TestSelectBuilderRequiresFromAndColumns(t *testing.T) {
	_, _, err := Select("x").ToSQL()
	require.Error(t, err)

	_, _, err = Select().From("orders").ToSQL()
	require.Error(t, err)
}
