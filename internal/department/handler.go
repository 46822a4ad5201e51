package department

import (
	"encoding/json"
	"net/http"

	"github.com/asc-academy/evaluation-portal/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetAll() ([]*Department, error)
	GetByID(id string) (*Department, error)
	Create(dto UpsertDepartmentDTO) (*Department, error)
	Update(id string, dto UpsertDepartmentDTO) (*Department, error)
	Delete(id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	depts, err := h.Service.GetAll()
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{
		"count": len(depts),
		"data":  depts,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	dept, err := h.Service.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"data": dept})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto UpsertDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dept, err := h.Service.Create(dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, transport.Envelope{"data": dept})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpsertDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dept, err := h.Service.Update(chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"data": dept})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(chi.URLParam(r, "id")); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{
		"data":    map[string]interface{}{},
		"message": "Department deleted successfully",
	})
}
