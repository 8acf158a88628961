package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/export"
	"shareit/internal/service"
)

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var in service.NewBooking
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.bookings.Create(r.Context(), userID, in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.bookings.ListForBooker)
}

func (s *Server) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.bookings.ListForOwner)
}

func (s *Server) listBookings(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, userID int64, state string, from, size *int) ([]*service.BookingDetail, error),
) {
	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, err := queryInt(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	size, err := queryInt(r, "size")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := list(r.Context(), userID, r.URL.Query().Get("state"), from, size)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleExportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := s.bookings.ListForOwner(r.Context(), userID, r.URL.Query().Get("state"), nil, nil)
	if err != nil {
		s.respondError(w, err)
		return
	}

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := export.WriteOwnerBookings(w, views); err != nil {
		s.log.Error().Err(err).Msg("bookings export failed")
	}
}

func (s *Server) handleSetApproval(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.bookings.SetApproval(r.Context(), userID, bookingID, r.URL.Query().Get("approved"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.bookings.GetByID(r.Context(), userID, bookingID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
