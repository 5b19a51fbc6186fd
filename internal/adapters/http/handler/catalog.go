package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ogurasousui/hr-records/internal/core/catalog"
)

// CatalogHandler は参照データ一覧の HTTP ハンドラです。
type CatalogHandler struct {
	svc catalog.UseCase
}

// NewCatalogHandler は CatalogHandler を生成します。
func NewCatalogHandler(svc catalog.UseCase) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// Register はルートを登録します。
func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/obtenerAreas", h.handleAreas)
	r.Get("/obtenerPaises", h.handleCountries)
	r.Get("/obtenerTiposIdentificacion", h.handleIdentificationTypes)
}

func (h *CatalogHandler) handleAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.svc.ListAreas(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, areas)
}

func (h *CatalogHandler) handleCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.svc.ListCountries(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, countries)
}

func (h *CatalogHandler) handleIdentificationTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.ListIdentificationTypes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, types)
}
