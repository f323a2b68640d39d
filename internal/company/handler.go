package company

import (
	"log/slog"
	"net/http"

	"github.com/datatrust/preference-management/internal/transport"
	"github.com/datatrust/preference-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetAllCompanies() ([]*Company, error)
	GetCompanyByID(id string) (*Company, error)
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

func (h *Handler) GetCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Service.GetAllCompanies()
	if err != nil {
		h.Logger.Error("GetCompanies: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get companies")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"companies": companies})
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "id")
	if companyID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing company id")
		return
	}

	company, err := h.Service.GetCompanyByID(companyID)
	if err != nil {
		h.Logger.Error("GetCompany: service error", "error", err, "company_id", companyID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, company)
}
