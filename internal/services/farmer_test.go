package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agritrack/apiserver/internal/store"
	"github.com/agritrack/apiserver/types"
)

type fakeFarmerRepo struct {
	farmers map[types.ID]types.Farmer
	nextID  types.ID
}

func newFakeFarmerRepo() *fakeFarmerRepo {
	return &fakeFarmerRepo{farmers: map[types.ID]types.Farmer{}, nextID: 1}
}

func (f *fakeFarmerRepo) List(ctx context.Context, search string, offset, limit int) ([]types.Farmer, int, error) {
	out := make([]types.Farmer, 0, len(f.farmers))
	for _, farmer := range f.farmers {
		out = append(out, farmer)
	}
	return out, len(out), nil
}

func (f *fakeFarmerRepo) Get(ctx context.Context, id types.ID) (types.Farmer, error) {
	farmer, ok := f.farmers[id]
	if !ok {
		return types.Farmer{}, store.ErrNotFound
	}
	return farmer, nil
}

func (f *fakeFarmerRepo) EmailTaken(ctx context.Context, email string, excludeID types.ID) (bool, error) {
	for id, farmer := range f.farmers {
		if id == excludeID {
			continue
		}
		if farmer.Email != nil && *farmer.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFarmerRepo) Create(ctx context.Context, farmer types.Farmer) (types.Farmer, error) {
	farmer.ID = f.nextID
	f.nextID++
	f.farmers[farmer.ID] = farmer
	return farmer, nil
}

func (f *fakeFarmerRepo) Update(ctx context.Context, farmer types.Farmer) (types.Farmer, error) {
	if _, ok := f.farmers[farmer.ID]; !ok {
		return types.Farmer{}, store.ErrNotFound
	}
	f.farmers[farmer.ID] = farmer
	return farmer, nil
}

func (f *fakeFarmerRepo) Delete(ctx context.Context, id types.ID) error {
	if _, ok := f.farmers[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.farmers, id)
	return nil
}

func strPtr(s string) *string { return &s }

func TestFarmerCreateRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeFarmerRepo()
	service := NewFarmerService(repo, nil)

	first, err := service.Create(context.Background(), types.Farmer{
		UserID:   1,
		FullName: "Amina Diallo",
		Gender:   "female",
		Email:    strPtr("amina@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, types.ID(1), first.ID)

	_, err = service.Create(context.Background(), types.Farmer{
		UserID:   1,
		FullName: "Another Amina",
		Gender:   "female",
		Email:    strPtr("amina@example.com"),
	})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestFarmerUpdateKeepsOwnEmail(t *testing.T) {
	repo := newFakeFarmerRepo()
	service := NewFarmerService(repo, nil)

	created, err := service.Create(context.Background(), types.Farmer{
		UserID:   1,
		FullName: "Amina Diallo",
		Gender:   "female",
		Email:    strPtr("amina@example.com"),
	})
	require.NoError(t, err)

	created.FullName = "Amina D."
	updated, err := service.Update(context.Background(), created)
	require.NoError(t, err, "keeping your own email is not a conflict")
	assert.Equal(t, "Amina D.", updated.FullName)
}

func TestFarmerCreateWithoutEmail(t *testing.T) {
	repo := newFakeFarmerRepo()
	service := NewFarmerService(repo, nil)

	created, err := service.Create(context.Background(), types.Farmer{
		UserID:   2,
		FullName: "Kofi Mensah",
		Gender:   "male",
	})
	require.NoError(t, err)
	assert.Nil(t, created.Email)
}
