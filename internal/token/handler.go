package token

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/datatrust/preference-management/internal"
	"github.com/datatrust/preference-management/internal/transport"
	"github.com/datatrust/preference-management/pkg/logger"
)

type ServiceAPI interface {
	ListPackages() ([]*Package, error)
	ListTransactions(userID int64, limit int) ([]*Transaction, error)
	Purchase(ctx context.Context, userID int64, dto PurchaseDTO) (*PurchaseResult, error)
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

func (h *Handler) GetPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.Service.ListPackages()
	if err != nil {
		h.Logger.Error("GetPackages: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get token packages")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"packages": packages})
}

func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	txs, err := h.Service.ListTransactions(user.ID, limit)
	if err != nil {
		h.Logger.Error("GetTransactions: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to get transactions")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"transactions": txs})
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto PurchaseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Purchase(r.Context(), user.ID, dto)
	if err != nil {
		h.Logger.Error("Purchase: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}
