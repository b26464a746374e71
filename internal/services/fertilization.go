package services

import (
	"context"

	"github.com/agritrack/apiserver/internal/events"
	"github.com/agritrack/apiserver/types"
)

// FertilizationRepository defines persistence operations for fertilization records.
type FertilizationRepository interface {
	List(ctx context.Context, search string, offset, limit int) ([]types.Fertilization, int, error)
	Get(ctx context.Context, id types.ID) (types.Fertilization, error)
	Create(ctx context.Context, record types.Fertilization) (types.Fertilization, error)
	Update(ctx context.Context, record types.Fertilization) (types.Fertilization, error)
	Delete(ctx context.Context, id types.ID) error
}

// FertilizationService encapsulates fertilization use-cases.
type FertilizationService struct {
	repo   FertilizationRepository
	events *events.Publisher
}

func NewFertilizationService(repo FertilizationRepository, publisher *events.Publisher) *FertilizationService {
	return &FertilizationService{repo: repo, events: publisher}
}

func (s *FertilizationService) List(ctx context.Context, search string, offset, limit int) ([]types.Fertilization, int, error) {
	return s.repo.List(ctx, search, offset, clampLimit(limit))
}

func (s *FertilizationService) Get(ctx context.Context, id types.ID) (types.Fertilization, error) {
	return s.repo.Get(ctx, id)
}

func (s *FertilizationService) Create(ctx context.Context, record types.Fertilization) (types.Fertilization, error) {
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return types.Fertilization{}, err
	}
	s.events.EntityChanged(ctx, "fertilization", events.ActionCreated, created.ID)
	return created, nil
}

func (s *FertilizationService) Update(ctx context.Context, record types.Fertilization) (types.Fertilization, error) {
	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return types.Fertilization{}, err
	}
	s.events.EntityChanged(ctx, "fertilization", events.ActionUpdated, updated.ID)
	return updated, nil
}

func (s *FertilizationService) Delete(ctx context.Context, id types.ID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.EntityChanged(ctx, "fertilization", events.ActionDeleted, id)
	return nil
}
