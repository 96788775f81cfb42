package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"tryout-service/internal/service"
	"tryout-service/internal/util"
)

// response is the wire envelope: {success, message, ...payload}. Callers are
// expected to check success, not just the HTTP status.
type response map[string]interface{}

func ok(message string) response {
	return response{"success": true, "message": message}
}

func fail(message string) response {
	return response{"success": false, "message": message}
}

func (r response) with(key string, value interface{}) response {
	r[key] = value
	return r
}

func respondJSON(w http.ResponseWriter, statusCode int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		util.Error("Failed to encode JSON response", util.ErrorField(err))
	}
}

// respondError logs the cause and maps it to a status code and user-facing
// Indonesian message. Store error text never reaches the client.
func respondError(w http.ResponseWriter, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		util.Error("Request failed", util.ErrorField(err))
	} else {
		util.Warn("Request rejected", util.ErrorField(err))
	}
	respondJSON(w, status, fail(message))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrBadNISN):
		return http.StatusBadRequest, "NISN harus 10 digit angka."
	case errors.Is(err, service.ErrBadEmail):
		return http.StatusBadRequest, "Format email tidak valid."
	case errors.Is(err, service.ErrMissingFields):
		return http.StatusBadRequest, "Semua field harus diisi."
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "Data yang dikirim tidak valid."
	case errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest, "Email atau NISN sudah terdaftar."
	case errors.Is(err, service.ErrOTPNotFound):
		return http.StatusBadRequest, "OTP tidak ditemukan. Silakan minta OTP baru."
	case errors.Is(err, service.ErrOTPExpired):
		return http.StatusBadRequest, "OTP sudah kadaluarsa. Silakan minta OTP baru."
	case errors.Is(err, service.ErrOTPInvalid):
		return http.StatusBadRequest, "OTP tidak valid."
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Email atau password salah."
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Data tidak ditemukan."
	case errors.Is(err, service.ErrConfiguration):
		return http.StatusInternalServerError, "Konfigurasi server tidak lengkap."
	case errors.Is(err, service.ErrDelivery):
		return http.StatusInternalServerError, "Gagal mengirim email. Silakan coba lagi."
	default:
		return http.StatusInternalServerError, "Terjadi kesalahan pada server."
	}
}
