package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/jobtrack/internal/service"
)

// CompanyHandler serves the public company directory.
type CompanyHandler struct {
	service *service.CompanyService
	logger  *slog.Logger
}

func NewCompanyHandler(service *service.CompanyService, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{service: service, logger: logger}
}

// HandleList returns every company mentioned in the question corpus with
// its question count and a derived logo URL, most-discussed first.
//
// HTTP: GET /api/companies?search=
func (h *CompanyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, companies)
}
