// Package service implements the application use cases on top of the
// repositories: registration, ordering, cancellation and the catalog
// updates. Each use case opens exactly one transaction for its writes.
package service

import (
	"context"

	"orderkit/internal/domain"
	"orderkit/internal/repository"
	"orderkit/pkg/querier"
)

// MemberService handles member registration and lookups.
type MemberService struct {
	db      *querier.DB
	members *repository.MemberRepository
}

// NewMemberService creates a member service.
func NewMemberService(db *querier.DB, members *repository.MemberRepository) *MemberService {
	return &MemberService{db: db, members: members}
}

// Join registers a new member. Names are unique at the application level;
// registering an existing name fails with DuplicateError.
func (s *MemberService) Join(ctx context.Context, m *domain.Member) (int64, error) {
	existing, err := s.members.FindByName(ctx, m.Name)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, &domain.DuplicateError{Entity: "member", Name: m.Name}
	}

	err = s.db.WithinTx(ctx, func(tx *querier.Tx) error {
		return s.members.Save(ctx, tx, m)
	})
	if err != nil {
		return 0, err
	}
	return m.ID, nil
}

// FindMembers returns every registered member.
func (s *MemberService) FindMembers(ctx context.Context) ([]*domain.Member, error) {
	return s.members.FindAll(ctx)
}

// FindOne looks a member up by id.
func (s *MemberService) FindOne(ctx context.Context, id int64) (*domain.Member, error) {
	return s.members.FindByID(ctx, id)
}

// FindOrders returns the ids of the member's orders.
func (s *MemberService) FindOrders(ctx context.Context, memberID int64) ([]int64, error) {
	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		return nil, err
	}
	return s.members.FindOrders(ctx, memberID)
}
