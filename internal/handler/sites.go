package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sanctuary-platform/console/backend/internal/domain"
)

func (h *Handler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name" validate:"required"`
		Slug string `json:"slug" validate:"required,lowercase"`
		City string `json:"city" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	site := &domain.Site{
		Name: req.Name,
		Slug: req.Slug,
		City: req.City,
	}

	if err := h.repository.CreateSite(site); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "sites_slug_key":
			h.badRequest(w, r, errors.New("slug already exists"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "site created", site)
}

func (h *Handler) GetAllSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.repository.GetAllSites()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "sites retrieved", sites)
}

func (h *Handler) GetSite(w http.ResponseWriter, r *http.Request) {
	siteIDParam := chi.URLParam(r, "id")
	siteID, err := strconv.ParseInt(siteIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid site id")
		return
	}

	site, err := h.repository.GetSiteByID(siteID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "site not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "site retrieved", site)
}
