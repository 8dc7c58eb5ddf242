package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ivyresort/internal/database"
	"ivyresort/internal/export"
	"ivyresort/internal/models"
	"ivyresort/internal/service"
)

func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listReservations(w, r)
	case http.MethodPost:
		s.createReservation(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleReservationSubroutes dispatches /api/reservations/{id|stats|cleanup|export}.
func (s *HTTPServer) handleReservationSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/reservations/")
	switch rest {
	case "stats":
		s.reservationStats(w, r)
		return
	case "cleanup":
		s.runCleanup(w, r)
		return
	case "export":
		s.exportReservations(w, r)
		return
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "Reservation not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getReservation(w, r, id)
	case http.MethodPut:
		s.updateReservation(w, r, id)
	case http.MethodDelete:
		s.deleteReservation(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) listReservations(w http.ResponseWriter, r *http.Request) {
	var filter models.ReservationFilter
	q := r.URL.Query()
	filter.Status = q.Get("status")
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}
	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since; expected RFC3339")
			return
		}
		filter.Since = since
	}

	reservations, err := s.reservations.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reservations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"data":      reservations,
		"count":     len(reservations),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *HTTPServer) createReservation(w http.ResponseWriter, r *http.Request) {
	var res models.Reservation
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := s.reservations.Create(r.Context(), &res)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    created,
		"message": fmt.Sprintf("Reservation %s created", created.ConfirmationID),
	})
}

func (s *HTTPServer) getReservation(w http.ResponseWriter, r *http.Request, id int64) {
	res, err := s.reservations.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": res})
}

// reservationPatchBody mirrors models.ReservationPatch with JSON names.
// Absent keys stay nil and leave the stored values untouched.
type reservationPatchBody struct {
	GuestName       *string  `json:"guest_name"`
	Email           *string  `json:"email"`
	Phone           *string  `json:"phone"`
	RoomName        *string  `json:"room_name"`
	RoomType        *string  `json:"room_type"`
	CheckIn         *string  `json:"check_in"`
	CheckOut        *string  `json:"check_out"`
	Guests          *int     `json:"guests"`
	TotalAmount     *float64 `json:"total_amount"`
	Currency        *string  `json:"currency"`
	SpecialRequests *string  `json:"special_requests"`
	EmailSent       *bool    `json:"email_sent"`
	Status          *string  `json:"status"`
}

func (s *HTTPServer) updateReservation(w http.ResponseWriter, r *http.Request, id int64) {
	var body reservationPatchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	patch := models.ReservationPatch{
		GuestName:       body.GuestName,
		Email:           body.Email,
		Phone:           body.Phone,
		RoomName:        body.RoomName,
		RoomType:        body.RoomType,
		CheckIn:         body.CheckIn,
		CheckOut:        body.CheckOut,
		Guests:          body.Guests,
		TotalAmount:     body.TotalAmount,
		Currency:        body.Currency,
		SpecialRequests: body.SpecialRequests,
		EmailSent:       body.EmailSent,
		Status:          body.Status,
	}

	updated, err := s.reservations.Update(r.Context(), id, patch)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": updated})
}

func (s *HTTPServer) deleteReservation(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.reservations.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Reservation deleted"})
}

func (s *HTTPServer) reservationStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stats, err := s.reservations.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": stats})
}

func (s *HTTPServer) runCleanup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	deleted, err := s.reservations.Cleanup(r.Context(), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cleanup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"deleted_count": deleted},
	})
}

func (s *HTTPServer) exportReservations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	reservations, err := s.reservations.List(r.Context(), models.ReservationFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reservations")
		return
	}

	fileName := fmt.Sprintf("reservations_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := export.WriteTo(w, reservations); err != nil {
		s.logger.Error().Err(err).Msg("stream export")
	}
}

func (s *HTTPServer) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := s.users.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list users")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": users, "count": len(users)})
	case http.MethodPost:
		var user models.DashboardUser
		if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		created, err := s.users.Create(r.Context(), &user)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": created})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleUserByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := s.users.Get(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": user})
	case http.MethodPut:
		var body struct {
			Name   string `json:"name"`
			Email  string `json:"email"`
			Role   string `json:"role"`
			Active *bool  `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		updated, err := s.users.Update(r.Context(), id, body.Name, body.Email, body.Role, body.Active)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": updated})
	case http.MethodDelete:
		if err := s.users.Delete(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "User deleted"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleRoomTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": s.reservations.RoomTypes()})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// writeServiceError maps service and store errors onto the JSON envelope.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "Reservation not found")
	case errors.Is(err, database.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": "))
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
