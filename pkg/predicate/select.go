package predicate

import (
	"fmt"
	"strings"
)

// JoinType represents a type of JOIN.
type JoinType string

const (
	// InnerJoin represents an INNER JOIN.
	InnerJoin JoinType = "INNER JOIN"
	// LeftJoin represents a LEFT JOIN.
	LeftJoin JoinType = "LEFT JOIN"
)

// Join represents a JOIN clause.
type Join struct {
	Type      JoinType
	Table     string
	Condition string
}

// OrderDirection represents the sort direction.
type OrderDirection string

const (
	// Asc represents ascending order.
	Asc OrderDirection = "ASC"
	// Desc represents descending order.
	Desc OrderDirection = "DESC"
)

// SelectBuilder assembles a SELECT statement from typed parts. Join and
// order-by fragments name schema identifiers only; every value travels
// through the condition tree as a bound parameter.
type SelectBuilder struct {
	columns []string
	from    string
	joins   []Join
	where   []Condition
	orderBy []string
	limit   *int
	offset  *int
}

// Select starts a SELECT statement with the given columns.
func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

// From sets the FROM table (optionally aliased, e.g. "orders o").
func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.from = table
	return b
}

// InnerJoin adds an INNER JOIN.
func (b *SelectBuilder) InnerJoin(table, condition string) *SelectBuilder {
	b.joins = append(b.joins, Join{Type: InnerJoin, Table: table, Condition: condition})
	return b
}

// LeftJoin adds a LEFT JOIN.
func (b *SelectBuilder) LeftJoin(table, condition string) *SelectBuilder {
	b.joins = append(b.joins, Join{Type: LeftJoin, Table: table, Condition: condition})
	return b
}

// Where adds a WHERE condition.
func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

// OrderBy adds an ORDER BY clause.
func (b *SelectBuilder) OrderBy(column string, direction OrderDirection) *SelectBuilder {
	b.orderBy = append(b.orderBy, column+" "+string(direction))
	return b
}

// Limit sets the LIMIT clause.
func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = &limit
	return b
}

// Offset sets the OFFSET clause.
func (b *SelectBuilder) Offset(offset int) *SelectBuilder {
	b.offset = &offset
	return b
}

// ToSQL generates the SQL statement and parameter values.
func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if b.from == "" {
		return "", nil, fmt.Errorf("select builder: FROM table not set")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select builder: no columns")
	}

	var sql strings.Builder
	var args []any

	sql.WriteString("SELECT ")
	sql.WriteString(strings.Join(b.columns, ", "))
	sql.WriteString(" FROM ")
	sql.WriteString(b.from)

	for _, join := range b.joins {
		sql.WriteString(" ")
		sql.WriteString(string(join.Type))
		sql.WriteString(" ")
		sql.WriteString(join.Table)
		sql.WriteString(" ON ")
		sql.WriteString(join.Condition)
	}

	if len(b.where) > 0 {
		wb := NewWhereBuilder()
		wb.conditions = b.where
		whereSQL, whereArgs, err := wb.Build()
		if err != nil {
			return "", nil, fmt.Errorf("failed to build WHERE clause: %w", err)
		}
		if whereSQL != "" {
			sql.WriteString(" ")
			sql.WriteString(whereSQL)
			args = append(args, whereArgs...)
		}
	}

	if len(b.orderBy) > 0 {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(b.orderBy, ", "))
	}

	if b.limit != nil {
		sql.WriteString(fmt.Sprintf(" LIMIT %d", *b.limit))
	}
	if b.offset != nil {
		sql.WriteString(fmt.Sprintf(" OFFSET %d", *b.offset))
	}

	return sql.String(), args, nil
}
