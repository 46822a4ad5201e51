package evaluation

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(actor *internal.Identity, dto CreateEvaluationDTO) (*View, error)
	GetByID(actor *internal.Identity, id string) (*View, error)
	ListByUser(actor *internal.Identity, userID string) ([]*View, error)
	List(filter ListFilter) ([]*View, []int, error)
	Update(id string, dto UpdateEvaluationDTO) (*View, error)
	Delete(id string) error
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

// List handles GET /evaluations?departmentId=&year=&evaluationNumber=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		DepartmentID: r.URL.Query().Get("departmentId"),
	}

	var err error
	if filter.Year, err = intQuery(r, "year"); err != nil {
		h.WriteError(w, http.StatusBadRequest, "year must be a number")
		return
	}
	if filter.EvaluationNumber, err = intQuery(r, "evaluationNumber"); err != nil {
		h.WriteError(w, http.StatusBadRequest, "evaluationNumber must be a number")
		return
	}

	views, years, err := h.Service.List(filter)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	envelope := transport.Envelope{
		"count":       len(views),
		"evaluations": views,
	}
	// years accompany the department filter only
	if years != nil {
		envelope["years"] = years
	}
	h.WriteSuccess(w, http.StatusOK, envelope)
}

// ListByUser handles GET /evaluations/user/{userId}
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	views, err := h.Service.ListByUser(identity, chi.URLParam(r, "userId"))
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

	view, err := h.Service.GetByID(identity, chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"data": view})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	var dto CreateEvaluationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.Create(identity, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, transport.Envelope{"data": view})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdateEvaluationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.Update(chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"data": view})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(chi.URLParam(r, "id")); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{
		"data":    map[string]interface{}{},
		"message": "Evaluation deleted successfully",
	})
}

func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
