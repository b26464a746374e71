package services

import (
	"context"

	"github.com/agritrack/apiserver/internal/events"
	"github.com/agritrack/apiserver/types"
)

// FarmRepository defines persistence operations for farms.
type FarmRepository interface {
	List(ctx context.Context, search string, offset, limit int) ([]types.Farm, int, error)
	Get(ctx context.Context, id types.ID) (types.Farm, error)
	Create(ctx context.Context, farm types.Farm) (types.Farm, error)
	Update(ctx context.Context, farm types.Farm) (types.Farm, error)
	Delete(ctx context.Context, id types.ID) error
}

// FarmService encapsulates farm use-cases.
type FarmService struct {
	repo   FarmRepository
	events *events.Publisher
}

func NewFarmService(repo FarmRepository, publisher *events.Publisher) *FarmService {
	return &FarmService{repo: repo, events: publisher}
}

func (s *FarmService) List(ctx context.Context, search string, offset, limit int) ([]types.Farm, int, error) {
	return s.repo.List(ctx, search, offset, clampLimit(limit))
}

func (s *FarmService) Get(ctx context.Context, id types.ID) (types.Farm, error) {
	return s.repo.Get(ctx, id)
}

func (s *FarmService) Create(ctx context.Context, farm types.Farm) (types.Farm, error) {
	created, err := s.repo.Create(ctx, farm)
	if err != nil {
		return types.Farm{}, err
	}
	s.events.EntityChanged(ctx, "farm", events.ActionCreated, created.ID)
	return created, nil
}

func (s *FarmService) Update(ctx context.Context, farm types.Farm) (types.Farm, error) {
	updated, err := s.repo.Update(ctx, farm)
	if err != nil {
		return types.Farm{}, err
	}
	s.events.EntityChanged(ctx, "farm", events.ActionUpdated, updated.ID)
	return updated, nil
}

func (s *FarmService) Delete(ctx context.Context, id types.ID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.EntityChanged(ctx, "farm", events.ActionDeleted, id)
	return nil
}
