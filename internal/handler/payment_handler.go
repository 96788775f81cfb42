package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tryout-service/internal/model"
	"tryout-service/internal/service"
)

// PaymentHandler serves proof upload and status for participants and the
// review queue/action for admins.
type PaymentHandler struct {
	payments       *service.PaymentService
	maxUploadBytes int64
}

func NewPaymentHandler(payments *service.PaymentService, maxUploadBytes int64) *PaymentHandler {
	return &PaymentHandler{
		payments:       payments,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload accepts a multipart form with participant_id and an image file.
func (h *PaymentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondJSON(w, http.StatusBadRequest, fail("Ukuran file maksimal 5MB."))
		return
	}

	participantID, err := uuid.Parse(r.FormValue("participant_id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, fail("ID peserta tidak valid."))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, fail("Pilih file terlebih dahulu."))
		return
	}
	defer file.Close()

	proof, err := h.payments.UploadProof(participantID, header.Filename, file)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK,
		ok("Bukti transfer berhasil diupload! Menunggu verifikasi admin.").
			with("proof", proof))
}

// Status returns the newest proof for a participant and the card gate.
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	participantID, err := uuid.Parse(r.URL.Query().Get("participant_id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, fail("ID peserta tidak valid."))
		return
	}

	status, err := h.payments.Status(participantID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ok("").
		with("proof", status.Proof).
		with("cardUnlocked", status.CardUnlocked))
}

// List serves the admin review queue, pending proofs by default.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	proofs, err := h.payments.List(r.URL.Query().Get("status"), limit)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ok("").with("proofs", proofs))
}

type reviewRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
}

// Review applies the admin decision to a pending proof.
func (h *PaymentHandler) Review(w http.ResponseWriter, r *http.Request) {
	proofID, err := uuid.Parse(chi.URLParam(r, "proofID"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, fail("ID bukti pembayaran tidak valid."))
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, fail("Data yang dikirim tidak valid."))
		return
	}

	proof, err := h.payments.Review(proofID, req.Status, req.AdminNotes, adminFromContext(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}

	message := "Pembayaran ditolak."
	if proof.Status == model.PaymentStatusVerified {
		message = "Pembayaran berhasil diverifikasi!"
	}
	respondJSON(w, http.StatusOK, ok(message).with("proof", proof))
}
