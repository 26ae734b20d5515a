package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kinworks/kin-engine/pkg/apperrors"
	"github.com/kinworks/kin-engine/pkg/models"
	"github.com/kinworks/kin-engine/pkg/services"
)

type stubPersonService struct {
	person *models.Person
	detail *models.PersonDetail
	err    error
}

var _ services.PersonService = (*stubPersonService)(nil)

func (s *stubPersonService) Create(ctx context.Context, req *services.CreatePersonRequest) (*models.Person, error) {
	return s.person, s.err
}

func (s *stubPersonService) Update(ctx context.Context, id uuid.UUID, req *services.UpdatePersonRequest) (*models.Person, error) {
	return s.person, s.err
}

func (s *stubPersonService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func (s *stubPersonService) Get(ctx context.Context, id uuid.UUID) (*models.PersonDetail, error) {
	return s.detail, s.err
}

func (s *stubPersonService) List(ctx context.Context) ([]*models.Person, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*models.Person{s.person}, nil
}

func (s *stubPersonService) Recent(ctx context.Context, limit int) ([]*models.RecentPerson, error) {
	return nil, s.err
}

func newPersonMux(svc services.PersonService) *http.ServeMux {
	mux := http.NewServeMux()
	NewPersonHandler(svc, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestGetPerson(t *testing.T) {
	id := uuid.New()
	svc := &stubPersonService{
		detail: &models.PersonDetail{Person: models.Person{ID: id, FirstName: "Ama"}},
	}
	mux := newPersonMux(svc)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/family/members/%s", id), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var detail models.PersonDetail
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&detail))
	assert.Equal(t, "Ama", detail.FirstName)
}

func TestGetPersonInvalidID(t *testing.T) {
	mux := newPersonMux(&stubPersonService{})

	req := httptest.NewRequest(http.MethodGet, "/api/family/members/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPersonNotFound(t *testing.T) {
	mux := newPersonMux(&stubPersonService{err: apperrors.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/family/members/%s", uuid.New()), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePerson(t *testing.T) {
	svc := &stubPersonService{person: &models.Person{ID: uuid.New(), FirstName: "Kofi"}}
	mux := newPersonMux(svc)

	body, _ := json.Marshal(services.CreatePersonRequest{
		Person: services.PersonInput{FirstName: "Kofi"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/family/members", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreatePersonInvalidBody(t *testing.T) {
	mux := newPersonMux(&stubPersonService{})

	req := httptest.NewRequest(http.MethodPost, "/api/family/members", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePersonValidationError(t *testing.T) {
	mux := newPersonMux(&stubPersonService{err: fmt.Errorf("%w: first_name is required", apperrors.ErrValidation)})

	req := httptest.NewRequest(http.MethodPost, "/api/family/members", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeletePerson(t *testing.T) {
	mux := newPersonMux(&stubPersonService{})

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/family/members/%s", uuid.New()), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecentInvalidLimit(t *testing.T) {
	mux := newPersonMux(&stubPersonService{})

	req := httptest.NewRequest(http.MethodGet, "/api/family/members/recent?limit=-3", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
