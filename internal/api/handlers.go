package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"umbrella-relay/internal/models"
	"umbrella-relay/internal/services"
	"umbrella-relay/internal/ws"
)

type sendOtpRequest struct {
	Email string `json:"email"`
}

type registerRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	EmergencyEmail string `json:"emergencyEmail"`
	Otp            string `json:"otp"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateEmergencyRequest struct {
	Email          string `json:"email"`
	EmergencyEmail string `json:"emergencyEmail"`
}

type espDataRequest struct {
	Email     string  `json:"email"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleSendOtp(w http.ResponseWriter, r *http.Request) {
	var req sendOtpRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		s.writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := s.otpService.Issue(r.Context(), req.Email); err != nil {
		s.logger.Error().Err(err).Str("email", req.Email).Msg("Failed to issue OTP")
		s.writeError(w, http.StatusInternalServerError, "Could not send OTP")
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "OTP sent successfully"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}

	err := s.otpService.Register(r.Context(), req.Email, req.Password, req.EmergencyEmail, req.Otp)
	switch {
	case errors.Is(err, services.ErrNoPendingCode):
		s.writeError(w, http.StatusBadRequest, "No OTP found")
	case errors.Is(err, services.ErrCodeInvalidOrExpired):
		s.writeError(w, http.StatusBadRequest, "Invalid or expired OTP")
	case err != nil:
		s.logger.Error().Err(err).Str("email", req.Email).Msg("Registration failed")
		s.writeError(w, http.StatusInternalServerError, "Registration failed")
	default:
		s.writeJSON(w, http.StatusOK, messageResponse{Message: "Registered successfully"})
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	account, err := s.otpService.Authenticate(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		s.writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case err != nil:
		s.logger.Error().Err(err).Str("email", req.Email).Msg("Login failed")
		s.writeError(w, http.StatusInternalServerError, "Login failed")
	default:
		s.writeJSON(w, http.StatusOK, account)
	}
}

func (s *Server) handleUpdateEmergency(w http.ResponseWriter, r *http.Request) {
	var req updateEmergencyRequest
	if !s.decode(w, r, &req) {
		return
	}

	err := s.accountService.UpdateEmergencyEmail(r.Context(), req.Email, req.EmergencyEmail)
	switch {
	case errors.Is(err, services.ErrAccountNotFound):
		s.writeError(w, http.StatusNotFound, "User not found")
	case err != nil:
		s.logger.Error().Err(err).Str("email", req.Email).Msg("Emergency contact update failed")
		s.writeError(w, http.StatusInternalServerError, "Update failed")
	default:
		s.writeJSON(w, http.StatusOK, messageResponse{Message: "Updated"})
	}
}

func (s *Server) handleEspData(w http.ResponseWriter, r *http.Request) {
	var req espDataRequest
	if !s.decode(w, r, &req) {
		return
	}

	position := models.Position{Latitude: req.Latitude, Longitude: req.Longitude}
	if err := s.accountService.ForwardPosition(r.Context(), position); err != nil {
		s.logger.Error().Err(err).Msg("Position forward failed")
		s.writeError(w, http.StatusInternalServerError, "Forward failed")
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Forwarded to MQTT"})
}

func (s *Server) handleObserver(w http.ResponseWriter, r *http.Request) {
	if err := ws.ServeWs(s.hub, w, r); err != nil {
		s.logger.Error().Err(err).Msg("Websocket upgrade failed")
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, messageResponse{Message: message})
}
