package services

import (
	"context"

	"github.com/agritrack/apiserver/internal/events"
	"github.com/agritrack/apiserver/types"
)

// CropRepository defines persistence operations for crops.
type CropRepository interface {
	List(ctx context.Context, search string, offset, limit int) ([]types.Crop, int, error)
	Get(ctx context.Context, id types.ID) (types.Crop, error)
	Create(ctx context.Context, crop types.Crop) (types.Crop, error)
	Update(ctx context.Context, crop types.Crop) (types.Crop, error)
	Delete(ctx context.Context, id types.ID) error
}

// CropService encapsulates crop use-cases.
type CropService struct {
	repo   CropRepository
	events *events.Publisher
}

func NewCropService(repo CropRepository, publisher *events.Publisher) *CropService {
	return &CropService{repo: repo, events: publisher}
}

func (s *CropService) List(ctx context.Context, search string, offset, limit int) ([]types.Crop, int, error) {
	return s.repo.List(ctx, search, offset, clampLimit(limit))
}

func (s *CropService) Get(ctx context.Context, id types.ID) (types.Crop, error) {
	return s.repo.Get(ctx, id)
}

func (s *CropService) Create(ctx context.Context, crop types.Crop) (types.Crop, error) {
	created, err := s.repo.Create(ctx, crop)
	if err != nil {
		return types.Crop{}, err
	}
	s.events.EntityChanged(ctx, "crop", events.ActionCreated, created.ID)
	return created, nil
}

func (s *CropService) Update(ctx context.Context, crop types.Crop) (types.Crop, error) {
	updated, err := s.repo.Update(ctx, crop)
	if err != nil {
		return types.Crop{}, err
	}
	s.events.EntityChanged(ctx, "crop", events.ActionUpdated, updated.ID)
	return updated, nil
}

func (s *CropService) Delete(ctx context.Context, id types.ID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.EntityChanged(ctx, "crop", events.ActionDeleted, id)
	return nil
}
