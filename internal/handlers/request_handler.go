package handlers

import (
	"encoding/json"
	"net/http"

	"ridereminder/internal/models"
	"ridereminder/internal/services"
)

type RequestHandler struct {
	Service *services.RequestService
}

// envelope is the uniform response shape: a human-readable message plus
// either the payload or the error detail.
type envelope struct {
	Message  string      `json:"message"`
	Response interface{} `json:"response,omitempty"`
	Error    string      `json:"error,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func writeError(w http.ResponseWriter, err error, message string) {
	writeEnvelope(w, requestErrorStatus(err), envelope{Message: message, Error: err.Error()})
}

func (h *RequestHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	uuid := r.URL.Query().Get(":uuid")
	if uuid == "" {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: "Missing user ID."})
		return
	}

	requests, err := h.Service.ListAll(r.Context(), uuid)
	if err != nil {
		writeError(w, err, "An error occurred with this request. Please, try again later.")
		return
	}

	writeEnvelope(w, http.StatusOK, envelope{
		Message:  "Successfully retrieved requests for this user.",
		Response: requests,
	})
}

func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	uuid := r.URL.Query().Get(":uuid")
	if uuid == "" {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: "Missing user ID."})
		return
	}

	var input models.CreateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: "Invalid request!", Error: err.Error()})
		return
	}

	created, err := h.Service.Create(r.Context(), uuid, input)
	if err != nil {
		writeError(w, err, "An error occurred with this request. Please, try again later.")
		return
	}

	writeEnvelope(w, http.StatusOK, envelope{
		Message:  "Request was successfully created.",
		Response: created,
	})
}

func (h *RequestHandler) GetOne(w http.ResponseWriter, r *http.Request) {
	uuid := r.URL.Query().Get(":uuid")
	id := r.URL.Query().Get(":id")
	if uuid == "" || id == "" {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: "Missing user or request ID."})
		return
	}

	request, err := h.Service.GetOne(r.Context(), uuid, id)
	if err != nil {
		writeError(w, err, "An error occurred with this request. Please, try again later.")
		return
	}

	writeEnvelope(w, http.StatusOK, envelope{
		Message:  "Successfully returned request data.",
		Response: request,
	})
}

func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	uuid := r.URL.Query().Get(":uuid")
	id := r.URL.Query().Get(":id")
	if uuid == "" || id == "" {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: "Missing user or request ID."})
		return
	}

	cancelled, err := h.Service.Cancel(r.Context(), uuid, id)
	if err != nil {
		writeError(w, err, "Unable to cancel this request!")
		return
	}

	writeEnvelope(w, http.StatusOK, envelope{
		Message:  "Successfully cancelled this request.",
		Response: cancelled,
	})
}
