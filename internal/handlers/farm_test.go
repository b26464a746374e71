package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agritrack/apiserver/internal/services"
	"github.com/agritrack/apiserver/internal/store"
	"github.com/agritrack/apiserver/types"
)

// fakeFarmRepo enforces referential integrity the way postgres would,
// so handlers see the same error taxonomy as in production.
type fakeFarmRepo struct {
	farms        []types.Farm
	knownFarmers map[types.ID]bool
	nextID       types.ID
}

func newFakeFarmRepo(farmerIDs ...types.ID) *fakeFarmRepo {
	known := map[types.ID]bool{}
	for _, id := range farmerIDs {
		known[id] = true
	}
	return &fakeFarmRepo{knownFarmers: known, nextID: 1}
}

func (f *fakeFarmRepo) List(ctx context.Context, search string, offset, limit int) ([]types.Farm, int, error) {
	return f.farms, len(f.farms), nil
}

func (f *fakeFarmRepo) Get(ctx context.Context, id types.ID) (types.Farm, error) {
	for _, farm := range f.farms {
		if farm.ID == id {
			return farm, nil
		}
	}
	return types.Farm{}, store.ErrNotFound
}

func (f *fakeFarmRepo) Create(ctx context.Context, farm types.Farm) (types.Farm, error) {
	if !f.knownFarmers[farm.FarmerID] {
		return types.Farm{}, &store.ForeignKeyError{Reference: "farmer_id"}
	}
	farm.ID = f.nextID
	f.nextID++
	f.farms = append(f.farms, farm)
	return farm, nil
}

func (f *fakeFarmRepo) Update(ctx context.Context, farm types.Farm) (types.Farm, error) {
	if !f.knownFarmers[farm.FarmerID] {
		return types.Farm{}, &store.ForeignKeyError{Reference: "farmer_id"}
	}
	for i := range f.farms {
		if f.farms[i].ID == farm.ID {
			f.farms[i] = farm
			return farm, nil
		}
	}
	return types.Farm{}, store.ErrNotFound
}

func (f *fakeFarmRepo) Delete(ctx context.Context, id types.ID) error {
	for i := range f.farms {
		if f.farms[i].ID == id {
			f.farms = append(f.farms[:i], f.farms[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func newFarmServer(repo *fakeFarmRepo) *httptest.Server {
	router := chi.NewRouter()
	router.Route("/farms", func(r chi.Router) {
		FarmRouter(r, services.NewFarmService(repo, nil))
	})
	return httptest.NewServer(router)
}

func TestFarmCreate(t *testing.T) {
	server := newFarmServer(newFakeFarmRepo(5))
	defer server.Close()

	resp := postJSON(t, server.URL+"/farms", `{"farmer_id":"5","name":"Green Valley","location":"Nakuru","size_acres":12.5,"irrigation":true}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeBody[types.Farm](t, resp)
	assert.Equal(t, types.ID(1), created.ID)
	assert.Equal(t, types.ID(5), created.FarmerID)
	assert.Equal(t, "Green Valley", created.Name)
	assert.True(t, created.Irrigation)
}

func TestFarmCreateUnknownFarmer(t *testing.T) {
	server := newFarmServer(newFakeFarmRepo(5))
	defer server.Close()

	resp := postJSON(t, server.URL+"/farms", `{"farmer_id":99,"name":"Orphan Farm"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody[ErrorResponse](t, resp)
	assert.Contains(t, body.Error, "farmer_id")
}

func TestFarmUpdateRejectsNonNumericFarmerID(t *testing.T) {
	repo := newFakeFarmRepo(5)
	server := newFarmServer(repo)
	defer server.Close()

	resp := postJSON(t, server.URL+"/farms", `{"farmer_id":5,"name":"Green Valley"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[types.Farm](t, resp)

	resp = putJSON(t, server.URL+"/farms/"+created.ID.String(), `{"farmer_id":"abc"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFarmPartialUpdate(t *testing.T) {
	repo := newFakeFarmRepo(5, 6)
	server := newFarmServer(repo)
	defer server.Close()

	resp := postJSON(t, server.URL+"/farms", `{"farmer_id":5,"name":"Green Valley","location":"Nakuru","size_acres":12.5}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[types.Farm](t, resp)

	resp = putJSON(t, server.URL+"/farms/"+created.ID.String(), `{"farmer_id":6,"size_acres":20}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[types.Farm](t, resp)

	assert.Equal(t, types.ID(6), updated.FarmerID)
	assert.Equal(t, 20.0, updated.SizeAcres)
	assert.Equal(t, "Green Valley", updated.Name, "omitted fields are retained")
	assert.Equal(t, "Nakuru", updated.Location)
	assert.Nil(t, updated.Farmer)

	resp = putJSON(t, server.URL+"/farms/"+created.ID.String(), `{"size_acres":-1}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFarmDelete(t *testing.T) {
	server := newFarmServer(newFakeFarmRepo(5))
	defer server.Close()

	resp := postJSON(t, server.URL+"/farms", `{"farmer_id":5,"name":"Green Valley"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[types.Farm](t, resp)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/farms/"+created.ID.String(), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	deleted := decodeBody[MessageResponse](t, resp)
	assert.Equal(t, "farm deleted successfully", deleted.Message)
}
