package userdata

import (
	"encoding/json"
	"net/http"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(actor *internal.Identity, dto CreateUserDataDTO) (*UserData, error)
	Get(actor *internal.Identity, id string) (*UserData, error)
	ListByUser(actor *internal.Identity, userID string) ([]*UserData, error)
	ListAll(filter ListFilter) ([]*UserData, error)
	Update(actor *internal.Identity, id string, dto UpdateUserDataDTO) (*UserData, error)
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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	var dto CreateUserDataDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.Create(identity, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, transport.Envelope{"data": record})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	record, err := h.Service.Get(identity, chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"data": record})
}

// ListByUser handles GET /user-data/user/{userId}
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	records, err := h.Service.ListByUser(identity, chi.URLParam(r, "userId"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{
		"count": len(records),
		"data":  records,
	})
}

// ListAll handles GET /user-data?departmentId= for admins.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		DepartmentID: r.URL.Query().Get("departmentId"),
	}

	records, err := h.Service.ListAll(filter)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{
		"count": len(records),
		"data":  records,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	var dto UpdateUserDataDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.Update(identity, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"data": record})
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
		"message": "User data deleted successfully",
	})
}
