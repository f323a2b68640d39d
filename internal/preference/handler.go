package preference

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/datatrust/preference-management/internal"
	"github.com/datatrust/preference-management/internal/transport"
	"github.com/datatrust/preference-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetAllPreferences(userID int64) ([]*Preference, error)
	GetGlobalPreferences(userID int64) ([]*Preference, error)
	GetCompanyPreferences(userID int64, companyID string) ([]EffectivePreference, error)
	ResolvePreference(userID int64, dataType string, companyID *string) (EffectivePreference, error)
	EstimateCost(userID int64, changes []Change) (EstimateResponse, error)
	CommitChanges(ctx context.Context, userID int64, changes []Change) (CommitResult, error)
	ClonePreferences(ctx context.Context, userID int64, sourceID, targetCompanyID string) (int, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) GetGlobalPreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	prefs, err := h.Service.GetGlobalPreferences(user.ID)
	if err != nil {
		h.Logger.Error("GetGlobalPreferences: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to get preferences")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"preferences": prefs})
}

func (h *Handler) GetAllPreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	prefs, err := h.Service.GetAllPreferences(user.ID)
	if err != nil {
		h.Logger.Error("GetAllPreferences: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to get preferences")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"preferences": prefs})
}

func (h *Handler) GetCompanyPreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	companyID := chi.URLParam(r, "id")
	if companyID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing company id")
		return
	}

	prefs, err := h.Service.GetCompanyPreferences(user.ID, companyID)
	if err != nil {
		h.Logger.Error("GetCompanyPreferences: service error", "error", err, "company_id", companyID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"company_id":  companyID,
		"preferences": prefs,
	})
}

// ResolvePreference answers one effective-preference query:
// GET /preferences/resolve?data_type=Location&company_id=c1
func (h *Handler) ResolvePreference(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	dataType := r.URL.Query().Get("data_type")
	if dataType == "" {
		h.WriteError(w, http.StatusBadRequest, "data_type query parameter is required")
		return
	}

	var companyID *string
	if v := r.URL.Query().Get("company_id"); v != "" {
		companyID = &v
	}

	resolved, err := h.Service.ResolvePreference(user.ID, dataType, companyID)
	if err != nil {
		h.Logger.Error("ResolvePreference: service error", "error", err, "data_type", dataType, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resolved)
}

func (h *Handler) EstimateCost(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CommitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	estimate, err := h.Service.EstimateCost(user.ID, dto.ToChanges())
	if err != nil {
		h.Logger.Error("EstimateCost: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, estimate)
}

func (h *Handler) CommitChanges(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CommitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Service.CommitChanges(r.Context(), user.ID, dto.ToChanges())
	if err != nil {
		if err == ErrInsufficientTokens {
			h.Logger.Warn("CommitChanges: insufficient tokens",
				"user_id", user.ID,
				"cost", result.Cost)
			h.WriteJSON(w, http.StatusPaymentRequired, result)
			return
		}

		h.Logger.Error("CommitChanges: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CommitChanges: changes committed",
		"user_id", user.ID,
		"change_count", result.ChangeCount,
		"cost", result.Cost)

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ClonePreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	targetCompanyID := chi.URLParam(r, "id")
	if targetCompanyID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing company id")
		return
	}

	var dto CloneDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	clonedCount, err := h.Service.ClonePreferences(r.Context(), user.ID, dto.SourceID, targetCompanyID)
	if err != nil {
		h.Logger.Error("ClonePreferences: service error",
			"error", err,
			"source_id", dto.SourceID,
			"target_company_id", targetCompanyID,
			"user_id", user.ID)

		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ClonePreferences: preferences cloned",
		"user_id", user.ID,
		"source_id", dto.SourceID,
		"target_company_id", targetCompanyID,
		"cloned_count", clonedCount)

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"source_id":         dto.SourceID,
		"target_company_id": targetCompanyID,
		"cloned_count":      clonedCount,
	})
}
