package services

import (
	"context"

	"github.com/agritrack/apiserver/internal/events"
	"github.com/agritrack/apiserver/types"
)

// SaleRepository defines persistence operations for sales.
type SaleRepository interface {
	List(ctx context.Context, search string, offset, limit int) ([]types.Sale, int, error)
	Get(ctx context.Context, id types.ID) (types.Sale, error)
	Create(ctx context.Context, sale types.Sale) (types.Sale, error)
	Update(ctx context.Context, sale types.Sale) (types.Sale, error)
	Delete(ctx context.Context, id types.ID) error
}

// SaleService encapsulates sale use-cases.
type SaleService struct {
	repo   SaleRepository
	events *events.Publisher
}

func NewSaleService(repo SaleRepository, publisher *events.Publisher) *SaleService {
	return &SaleService{repo: repo, events: publisher}
}

func (s *SaleService) List(ctx context.Context, search string, offset, limit int) ([]types.Sale, int, error) {
	return s.repo.List(ctx, search, offset, clampLimit(limit))
}

func (s *SaleService) Get(ctx context.Context, id types.ID) (types.Sale, error) {
	return s.repo.Get(ctx, id)
}

func (s *SaleService) Create(ctx context.Context, sale types.Sale) (types.Sale, error) {
	created, err := s.repo.Create(ctx, sale)
	if err != nil {
		return types.Sale{}, err
	}
	s.events.EntityChanged(ctx, "sale", events.ActionCreated, created.ID)
	return created, nil
}

func (s *SaleService) Update(ctx context.Context, sale types.Sale) (types.Sale, error) {
	updated, err := s.repo.Update(ctx, sale)
	if err != nil {
		return types.Sale{}, err
	}
	s.events.EntityChanged(ctx, "sale", events.ActionUpdated, updated.ID)
	return updated, nil
}

func (s *SaleService) Delete(ctx context.Context, id types.ID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.EntityChanged(ctx, "sale", events.ActionDeleted, id)
	return nil
}
