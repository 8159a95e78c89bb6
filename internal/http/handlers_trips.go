package http

import (
	"net/http"

	"tripmate/internal/core"
	"tripmate/internal/log"
)

type tripRequest struct {
	Name        string `json:"name"`
	Destination string `json:"destination"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Friends     string `json:"friends"`
	Type        string `json:"type"`
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	trips, err := s.deps.Trips.ListTrips(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripPayloads(trips))
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req tripRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tripType, err := core.ParseTripType(req.Type)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	trip := &core.Trip{
		OwnerID:     user.ID,
		Name:        req.Name,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Friends:     req.Friends,
		Type:        tripType,
	}
	created, err := s.deps.Trips.CreateTrip(r.Context(), trip)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.logger.InfoContext(r.Context(), "trip created",
		log.FieldUserID, user.ID,
		log.FieldTripID, created.ID,
	)
	writeJSON(w, http.StatusCreated, toTripPayload(*created))
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	trip, err := s.deps.Trips.GetTrip(r.Context(), user.ID, r.PathValue("tripID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripPayload(*trip))
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	tripID := r.PathValue("tripID")
	if err := s.deps.Trips.DeleteTrip(r.Context(), user.ID, tripID); err != nil {
		writeDomainError(w, err)
		return
	}
	s.logger.InfoContext(r.Context(), "trip deleted",
		log.FieldUserID, user.ID,
		log.FieldTripID, tripID,
	)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTripSummary(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	summary, err := s.deps.Expenses.Summary(r.Context(), user.ID, r.PathValue("tripID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryPayload(summary))
}
