package datatype

import (
	"log/slog"
	"net/http"

	"github.com/datatrust/preference-management/internal/transport"
	"github.com/datatrust/preference-management/pkg/logger"
)

type ServiceAPI interface {
	ListActive() ([]*DataType, error)
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

func (h *Handler) GetDataTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ListActive()
	if err != nil {
		h.Logger.Error("GetDataTypes: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get data types")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data_types": types})
}
