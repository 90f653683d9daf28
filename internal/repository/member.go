package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"orderkit/internal/domain"
	"orderkit/pkg/predicate"
	"orderkit/pkg/querier"
)

const memberColumns = "member_id, name, city, street, zipcode"

// MemberRepository stores members. Lookups are plain key-value reads with no
// fetch-strategy complexity.
type MemberRepository struct {
	db *querier.DB
}

// NewMemberRepository creates a member repository.
func NewMemberRepository(db *querier.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Save inserts the member and fills its generated id.
func (r *MemberRepository) Save(ctx context.Context, tx *querier.Tx, m *domain.Member) error {
	return tx.QueryRow(ctx,
		`INSERT INTO members (name, city, street, zipcode) VALUES ($1, $2, $3, $4) RETURNING member_id`,
		m.Name, m.Address.City, m.Address.Street, m.Address.Zipcode,
	).Scan(&m.ID)
}

// FindByID looks a member up by primary key.
func (r *MemberRepository) FindByID(ctx context.Context, id int64) (*domain.Member, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+memberColumns+" FROM members WHERE member_id = $1", id)

	m, err := scanMember(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, querier.ErrNotFound
	}
	return m, err
}

// FindByName returns all members with exactly the given name.
func (r *MemberRepository) FindByName(ctx context.Context, name string) ([]*domain.Member, error) {
	sql, args, err := predicate.Select(memberColumns).
		From("members").
		Where(predicate.Eq("name", name)).
		ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// FindAll returns every member, ordered by id.
func (r *MemberRepository) FindAll(ctx context.Context) ([]*domain.Member, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+memberColumns+" FROM members ORDER BY member_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// FindOrders returns the ids of a member's orders, recomputing the
// member→orders navigation from the foreign key.
func (r *MemberRepository) FindOrders(ctx context.Context, memberID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		"SELECT order_id FROM orders WHERE member_id = $1 ORDER BY order_id", memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	err := row.Scan(&m.ID, &m.Name, &m.Address.City, &m.Address.Street, &m.Address.Zipcode)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
