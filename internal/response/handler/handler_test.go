package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"formbridge/internal/form/logic"
	formModels "formbridge/internal/form/models"
	"formbridge/internal/platform/middleware"
	"formbridge/internal/response/models"
	dErrors "formbridge/pkg/domain-errors"
)

type fakeResponseService struct {
	fieldErrs []logic.FieldError
	resp      *models.Response
	err       error
	submitted formModels.AnswerSet
}

func (f *fakeResponseService) Submit(_ context.Context, _ string, answers formModels.AnswerSet) (*models.Response, []logic.FieldError, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	if len(f.fieldErrs) > 0 {
		return nil, f.fieldErrs, nil
	}
	f.submitted = answers
	return f.resp, nil, nil
}

func (f *fakeResponseService) ListByForm(context.Context, string, string) ([]models.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

func (f *fakeResponseService) Get(context.Context, string, string) (*models.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type staticValidator struct{}

func (staticValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	if token != "valid" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return &middleware.JWTClaims{UserID: "owner1"}, nil
}

type ResponseHandlerSuite struct {
	suite.Suite
	svc    *fakeResponseService
	router *chi.Mux
}

func TestResponseHandlerSuite(t *testing.T) {
	suite.Run(t, new(ResponseHandlerSuite))
}

func (s *ResponseHandlerSuite) SetupTest() {
	s.svc = &fakeResponseService{
		resp: &models.Response{ID: "resp1", FormID: "form1", AirtableRecordID: "recA"},
	}
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	h := New(s.svc, staticValidator{}, logger)

	s.router = chi.NewRouter()
	s.router.Route("/api/responses", h.Register)
}

func (s *ResponseHandlerSuite) TestSubmit() {
	s.Run("accepts a submission without authentication", func() {
		body := []byte(`{"answers":{"name":"Ada","tags":["a","b"]}}`)
		req := httptest.NewRequest(http.MethodPost, "/api/responses/form1", bytes.NewBuffer(body))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Require().Equal(http.StatusCreated, rec.Code)

		var resp map[string]string
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.Equal("resp1", resp["id"])
		s.Equal("recA", resp["airtableRecordId"])

		name, _ := s.svc.submitted.Get("name").Scalar()
		s.Equal("Ada", name)
		tags, _ := s.svc.submitted.Get("tags").List()
		s.Equal([]string{"a", "b"}, tags)
	})

	s.Run("returns the validation errors envelope with 400", func() {
		s.svc.fieldErrs = []logic.FieldError{
			{Field: "name", Message: "Name is required"},
			{Field: "role", Message: "Invalid option for Role"},
		}
		defer func() { s.svc.fieldErrs = nil }()

		req := httptest.NewRequest(http.MethodPost, "/api/responses/form1", bytes.NewBufferString(`{"answers":{}}`))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Require().Equal(http.StatusBadRequest, rec.Code)

		var body struct {
			Errors []logic.FieldError `json:"errors"`
		}
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
		s.Require().Len(body.Errors, 2)
		s.Equal("Name is required", body.Errors[0].Message)
		s.Equal("Invalid option for Role", body.Errors[1].Message)
	})

	s.Run("rejects malformed bodies", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/responses/form1", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Require().Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("maps unknown forms to 404", func() {
		s.svc.err = dErrors.New(dErrors.CodeNotFound, "form not found")
		defer func() { s.svc.err = nil }()

		req := httptest.NewRequest(http.MethodPost, "/api/responses/missing", bytes.NewBufferString(`{"answers":{}}`))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Require().Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *ResponseHandlerSuite) TestReadsRequireAuth() {
	req := httptest.NewRequest(http.MethodGet, "/api/responses/form1", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/responses/detail/resp1", nil)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *ResponseHandlerSuite) TestListReturnsEmptyArray() {
	req := httptest.NewRequest(http.MethodGet, "/api/responses/form1", nil)
	req.Header.Set("Authorization", "Bearer valid")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("[]\n", rec.Body.String())
}

func (s *ResponseHandlerSuite) TestGetDetail() {
	req := httptest.NewRequest(http.MethodGet, "/api/responses/detail/resp1", nil)
	req.Header.Set("Authorization", "Bearer valid")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusOK, rec.Code)

	var resp models.Response
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Equal("recA", resp.AirtableRecordID)
}
