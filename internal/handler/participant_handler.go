package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"tryout-service/internal/service"
	"tryout-service/internal/util"
)

// ParticipantHandler serves the public registration endpoints: OTP
// issuance/verification, registration, login, password issuance and the
// slot counter.
type ParticipantHandler struct {
	otp          *service.OTPService
	registration *service.RegistrationService
	stats        *service.StatsService
}

func NewParticipantHandler(otp *service.OTPService, registration *service.RegistrationService, stats *service.StatsService) *ParticipantHandler {
	return &ParticipantHandler{
		otp:          otp,
		registration: registration,
		stats:        stats,
	}
}

type sendOTPRequest struct {
	Email string `json:"email"`
	Nama  string `json:"nama"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// SendOTP issues a code, or verifies one when called with ?action=verify.
func (h *ParticipantHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("action") == "verify" {
		var req verifyOTPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.OTP == "" {
			respondJSON(w, http.StatusBadRequest, fail("Email dan OTP harus diisi."))
			return
		}

		if err := h.otp.Verify(req.Email, req.OTP); err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, ok("Email berhasil diverifikasi!"))
		return
	}

	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Nama == "" {
		respondJSON(w, http.StatusBadRequest, fail("Email dan nama harus diisi."))
		return
	}

	if err := h.otp.Issue(req.Email, req.Nama); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ok("OTP berhasil dikirim ke email Anda."))
}

// Register creates the participant after the advisory slot-cap check.
func (h *ParticipantHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, fail("Data yang dikirim tidak valid."))
		return
	}

	// Advisory cap; the count and insert are separate round-trips, so a
	// race at the boundary can admit one extra participant.
	full, err := h.stats.SlotsFull()
	if err != nil {
		respondError(w, err)
		return
	}
	if full {
		respondJSON(w, http.StatusBadRequest, fail("Slot pendaftaran sudah penuh."))
		return
	}

	result, err := h.registration.Register(&req)
	if err != nil {
		respondError(w, err)
		return
	}

	if !result.EmailSent {
		respondJSON(w, http.StatusOK,
			fromResult(result, "Pendaftaran berhasil, namun email gagal dikirim. Gunakan fitur lupa password untuk menerima password Anda."))
		return
	}
	respondJSON(w, http.StatusOK, fromResult(result, "Pendaftaran berhasil."))
}

func fromResult(result *service.RegisterResult, message string) response {
	return ok(message).
		with("participantId", result.ParticipantID.String()).
		with("emailSent", result.EmailSent)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies participant credentials.
func (h *ParticipantHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		respondJSON(w, http.StatusBadRequest, fail("Email dan password harus diisi."))
		return
	}

	participant, err := h.registration.Login(req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ok("Login berhasil.").with("user", participant))
}

type sendPasswordRequest struct {
	Email string `json:"email"`
}

// SendPassword emails a fresh password; ?action=reset marks a forced reset.
func (h *ParticipantHandler) SendPassword(w http.ResponseWriter, r *http.Request) {
	var req sendPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondJSON(w, http.StatusBadRequest, fail("Email harus diisi."))
		return
	}

	reset := r.URL.Query().Get("action") == "reset"
	if err := h.registration.IssuePassword(req.Email, reset); err != nil {
		// The calling SDK treats non-2xx as transport errors; a failed
		// dispatch comes back as a logical failure on 200 instead.
		if errors.Is(err, service.ErrDelivery) {
			util.Error("Password email dispatch failed", util.ErrorField(err))
			respondJSON(w, http.StatusOK, fail("Gagal mengirim email password. Silakan coba lagi."))
			return
		}
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ok("Password berhasil dikirim ke email."))
}

// Slots serves the public slot counter.
func (h *ParticipantHandler) Slots(w http.ResponseWriter, r *http.Request) {
	usage, err := h.stats.Slots()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ok("").with("slots", usage))
}
