package services

import (
	"context"

	"github.com/agritrack/apiserver/internal/events"
	"github.com/agritrack/apiserver/types"
)

// EquipmentRepository defines persistence operations for equipment.
type EquipmentRepository interface {
	List(ctx context.Context, search string, offset, limit int) ([]types.Equipment, int, error)
	Get(ctx context.Context, id types.ID) (types.Equipment, error)
	Create(ctx context.Context, equipment types.Equipment) (types.Equipment, error)
	Update(ctx context.Context, equipment types.Equipment) (types.Equipment, error)
	Delete(ctx context.Context, id types.ID) error
}

// EquipmentService encapsulates equipment use-cases.
type EquipmentService struct {
	repo   EquipmentRepository
	events *events.Publisher
}

func NewEquipmentService(repo EquipmentRepository, publisher *events.Publisher) *EquipmentService {
	return &EquipmentService{repo: repo, events: publisher}
}

func (s *EquipmentService) List(ctx context.Context, search string, offset, limit int) ([]types.Equipment, int, error) {
	return s.repo.List(ctx, search, offset, clampLimit(limit))
}

func (s *EquipmentService) Get(ctx context.Context, id types.ID) (types.Equipment, error) {
	return s.repo.Get(ctx, id)
}

func (s *EquipmentService) Create(ctx context.Context, equipment types.Equipment) (types.Equipment, error) {
	created, err := s.repo.Create(ctx, equipment)
	if err != nil {
		return types.Equipment{}, err
	}
	s.events.EntityChanged(ctx, "equipment", events.ActionCreated, created.ID)
	return created, nil
}

func (s *EquipmentService) Update(ctx context.Context, equipment types.Equipment) (types.Equipment, error) {
	updated, err := s.repo.Update(ctx, equipment)
	if err != nil {
		return types.Equipment{}, err
	}
	s.events.EntityChanged(ctx, "equipment", events.ActionUpdated, updated.ID)
	return updated, nil
}

func (s *EquipmentService) Delete(ctx context.Context, id types.ID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.EntityChanged(ctx, "equipment", events.ActionDeleted, id)
	return nil
}
