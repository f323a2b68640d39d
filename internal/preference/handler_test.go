package preference

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/datatrust/preference-management/internal"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type stubService struct {
	commitResult CommitResult
	commitErr    error
	cloneCount   int
	cloneErr     error
	estimate     EstimateResponse
	estimateErr  error
	resolved     EffectivePreference
	resolveErr   error
}

func (s *stubService) GetAllPreferences(userID int64) ([]*Preference, error)    { return nil, nil }
func (s *stubService) GetGlobalPreferences(userID int64) ([]*Preference, error) { return nil, nil }
func (s *stubService) GetCompanyPreferences(userID int64, companyID string) ([]EffectivePreference, error) {
	return nil, nil
}

func (s *stubService) ResolvePreference(userID int64, dataType string, companyID *string) (EffectivePreference, error) {
	return s.resolved, s.resolveErr
}

func (s *stubService) EstimateCost(userID int64, changes []Change) (EstimateResponse, error) {
	return s.estimate, s.estimateErr
}

func (s *stubService) CommitChanges(ctx context.Context, userID int64, changes []Change) (CommitResult, error) {
	return s.commitResult, s.commitErr
}

func (s *stubService) ClonePreferences(ctx context.Context, userID int64, sourceID, targetCompanyID string) (int, error) {
	return s.cloneCount, s.cloneErr
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := internal.ContextWithUser(req.Context(), &internal.AuthUser{ID: 1, Email: "user@example.com"})
	return req.WithContext(ctx)
}

var _ = ginkgo.Describe("PreferenceHandler", func() {
	var (
		handler *Handler
		stub    *stubService
	)

	ginkgo.BeforeEach(func() {
		stub = &stubService{}
		handler = NewHandler(stub)
	})

	ginkgo.Describe("CommitChanges", func() {
		commitBody := func() []byte {
			b, _ := json.Marshal(CommitDTO{Changes: []ChangeDTO{{DataType: "email", Allowed: true}}})
			return b
		}

		ginkgo.It("should return 200 with the result on success", func() {
			stub.commitResult = CommitResult{Success: true, Cost: 3, BalanceAfter: 97, ChangeCount: 1}

			rec := httptest.NewRecorder()
			handler.CommitChanges(rec, authedRequest(http.MethodPost, "/preferences/commit", commitBody()))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var result CommitResult
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(gomega.Succeed())
			gomega.Expect(result.Success).To(gomega.BeTrue())
			gomega.Expect(result.BalanceAfter).To(gomega.Equal(int64(97)))
		})

		ginkgo.It("should return 402 with the failed result on insufficient tokens", func() {
			stub.commitResult = CommitResult{Success: false, Cost: 7, ChangeCount: 1}
			stub.commitErr = ErrInsufficientTokens

			rec := httptest.NewRecorder()
			handler.CommitChanges(rec, authedRequest(http.MethodPost, "/preferences/commit", commitBody()))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusPaymentRequired))

			var result CommitResult
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(gomega.Succeed())
			gomega.Expect(result.Success).To(gomega.BeFalse())
			gomega.Expect(result.Cost).To(gomega.Equal(int64(7)))
		})

		ginkgo.It("should return 400 for an empty change set", func() {
			b, _ := json.Marshal(CommitDTO{})

			rec := httptest.NewRecorder()
			handler.CommitChanges(rec, authedRequest(http.MethodPost, "/preferences/commit", b))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should return 401 without an authenticated user", func() {
			req := httptest.NewRequest(http.MethodPost, "/preferences/commit", bytes.NewReader(commitBody()))

			rec := httptest.NewRecorder()
			handler.CommitChanges(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("ClonePreferences", func() {
		cloneRequest := func(sourceID string) *http.Request {
			b, _ := json.Marshal(CloneDTO{SourceID: sourceID})
			req := authedRequest(http.MethodPost, "/companies/tech-corp/preferences/clone", b)

			routeCtx := chi.NewRouteContext()
			routeCtx.URLParams.Add("id", "tech-corp")
			return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		}

		ginkgo.It("should return the cloned count on success", func() {
			stub.cloneCount = 3

			rec := httptest.NewRecorder()
			handler.ClonePreferences(rec, cloneRequest("finance-hub"))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"cloned_count":3`))
		})

		ginkgo.It("should return 400 with the error code when cloning a company onto itself", func() {
			stub.cloneErr = ErrSelfClone

			rec := httptest.NewRecorder()
			handler.ClonePreferences(rec, cloneRequest("tech-corp"))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"code":"SELF_CLONE"`))
		})

		ginkgo.It("should return 404 with the error code for an unknown company", func() {
			stub.cloneErr = ErrCompanyNotFound

			rec := httptest.NewRecorder()
			handler.ClonePreferences(rec, cloneRequest("ghost-corp"))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"code":"COMPANY_NOT_FOUND"`))
		})
	})

	ginkgo.Describe("ResolvePreference", func() {
		ginkgo.It("should require the data_type parameter", func() {
			rec := httptest.NewRecorder()
			handler.ResolvePreference(rec, authedRequest(http.MethodGet, "/preferences/resolve", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should return 400 with the error code for an unregistered data type", func() {
			stub.resolveErr = ErrUnknownDataType

			rec := httptest.NewRecorder()
			handler.ResolvePreference(rec, authedRequest(http.MethodGet, "/preferences/resolve?data_type=shoe-size", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"code":"INVALID_DATA_TYPE"`))
		})

		ginkgo.It("should return the resolved value", func() {
			stub.resolved = EffectivePreference{DataType: "email", Allowed: true, IsGlobal: true}

			rec := httptest.NewRecorder()
			handler.ResolvePreference(rec, authedRequest(http.MethodGet, "/preferences/resolve?data_type=email", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var resolved EffectivePreference
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &resolved)).To(gomega.Succeed())
			gomega.Expect(resolved.Allowed).To(gomega.BeTrue())
			gomega.Expect(resolved.IsGlobal).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("EstimateCost", func() {
		ginkgo.It("should return the advisory estimate", func() {
			stub.estimate = EstimateResponse{Cost: 7, CompanyCount: 3, ChangeCount: 3}

			b, _ := json.Marshal(CommitDTO{Changes: []ChangeDTO{{DataType: "email", Allowed: true}}})
			rec := httptest.NewRecorder()
			handler.EstimateCost(rec, authedRequest(http.MethodPost, "/preferences/estimate", b))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"cost":7`))
		})
	})
})
