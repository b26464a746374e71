package services

import (
	"context"
	"fmt"

	"github.com/agritrack/apiserver/internal/events"
	"github.com/agritrack/apiserver/internal/store"
	"github.com/agritrack/apiserver/types"
)

// FarmerRepository defines persistence operations for farmers.
type FarmerRepository interface {
	List(ctx context.Context, search string, offset, limit int) ([]types.Farmer, int, error)
	Get(ctx context.Context, id types.ID) (types.Farmer, error)
	EmailTaken(ctx context.Context, email string, excludeID types.ID) (bool, error)
	Create(ctx context.Context, farmer types.Farmer) (types.Farmer, error)
	Update(ctx context.Context, farmer types.Farmer) (types.Farmer, error)
	Delete(ctx context.Context, id types.ID) error
}

// FarmerService encapsulates farmer use-cases.
type FarmerService struct {
	repo   FarmerRepository
	events *events.Publisher
}

func NewFarmerService(repo FarmerRepository, publisher *events.Publisher) *FarmerService {
	return &FarmerService{repo: repo, events: publisher}
}

func (s *FarmerService) List(ctx context.Context, search string, offset, limit int) ([]types.Farmer, int, error) {
	return s.repo.List(ctx, search, offset, clampLimit(limit))
}

func (s *FarmerService) Get(ctx context.Context, id types.ID) (types.Farmer, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a farmer. Farmer emails are soft-unique: the schema has no
// constraint, so uniqueness is pre-checked here. The check-then-insert
// window is a known, accepted race.
func (s *FarmerService) Create(ctx context.Context, farmer types.Farmer) (types.Farmer, error) {
	if err := s.checkEmail(ctx, farmer.Email, 0); err != nil {
		return types.Farmer{}, err
	}
	created, err := s.repo.Create(ctx, farmer)
	if err != nil {
		return types.Farmer{}, err
	}
	s.events.EntityChanged(ctx, "farmer", events.ActionCreated, created.ID)
	return created, nil
}

func (s *FarmerService) Update(ctx context.Context, farmer types.Farmer) (types.Farmer, error) {
	if err := s.checkEmail(ctx, farmer.Email, farmer.ID); err != nil {
		return types.Farmer{}, err
	}
	updated, err := s.repo.Update(ctx, farmer)
	if err != nil {
		return types.Farmer{}, err
	}
	s.events.EntityChanged(ctx, "farmer", events.ActionUpdated, updated.ID)
	return updated, nil
}

func (s *FarmerService) Delete(ctx context.Context, id types.ID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.EntityChanged(ctx, "farmer", events.ActionDeleted, id)
	return nil
}

func (s *FarmerService) checkEmail(ctx context.Context, email *string, excludeID types.ID) error {
	if email == nil || *email == "" {
		return nil
	}
	taken, err := s.repo.EmailTaken(ctx, *email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("farmer email already registered: %w", store.ErrConflict)
	}
	return nil
}
