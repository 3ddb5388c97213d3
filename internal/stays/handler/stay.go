package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"stayworks/internal/stays/service"
	httputil "stayworks/pkg/http"
	"stayworks/pkg/logger"
	"stayworks/pkg/model"
)

type StayHandler struct {
	service service.StayService
	log     *logger.Logger
}

func NewStayHandler(service service.StayService, log *logger.Logger) *StayHandler {
	return &StayHandler{
		service: service,
		log:     log,
	}
}

func (h *StayHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	startDate, err := httputil.ExtractDate(r, "start_date")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	endDate, err := httputil.ExtractDate(r, "end_date")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	report, err := h.service.CheckAvailability(r.Context(), startDate, endDate)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StayHandler) Admit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request model.StayRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Admit", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	stay, err := h.service.Admit(r.Context(), &request)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Admit", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, stay); err != nil {
		h.log.Error("failed to write created response", "handler", "Admit", "operation", "WriteCreated", "error", err)
	}
}

func (h *StayHandler) ListResources(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resources, total, err := h.service.ListResources(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListResources", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, resources, total, len(resources), 0); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListResources", "operation", "WritePaginated", "error", err)
	}
}

func (h *StayHandler) GetResource(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	resource, err := h.service.GetResource(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetResource", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, resource); err != nil {
		h.log.Error("failed to write success response", "handler", "GetResource", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StayHandler) GetReservation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	reservation, err := h.service.GetReservation(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetReservation", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetReservation", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StayHandler) CancelReservation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if _, err := h.service.CancelReservation(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CancelReservation", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *StayHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/stays/availability", h.CheckAvailability)
	router.POST("/api/v1/stays", h.Admit)
	router.GET("/api/v1/resources", h.ListResources)
	router.GET("/api/v1/resources/:id", h.GetResource)
	router.GET("/api/v1/reservations/:id", h.GetReservation)
	router.DELETE("/api/v1/reservations/:id", h.CancelReservation)
}
