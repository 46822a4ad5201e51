package user

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(filter ListFilter) ([]*View, error)
	Get(actor *internal.Identity, id string) (*View, error)
	Update(actor *internal.Identity, id string, dto UpdateUserDTO) (*View, error)
	Delete(actor *internal.Identity, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// List handles GET /users?departmentId=&year=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		DepartmentID: r.URL.Query().Get("departmentId"),
	}
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "year must be a number")
			return
		}
		filter.Year = year
	}

	views, err := h.Service.List(filter)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{
		"count": len(views),
		"data":  views,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	view, err := h.Service.Get(identity, chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"data": view})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.Update(identity, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"data": view})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	if err := h.Service.Delete(identity, chi.URLParam(r, "id")); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{
		"data":    map[string]interface{}{},
		"message": "User deleted successfully",
	})
}
