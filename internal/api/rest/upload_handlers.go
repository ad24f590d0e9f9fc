package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/etros/scorebook/internal/ingest"
	"github.com/etros/scorebook/internal/store"
)

// maxUploadBytes caps the multipart PDF size. Scanned box scores run
// well under this.
const maxUploadBytes = 5 << 20

// UploadBoxScore handles direct ingestion of a box-score PDF.
func (h *Handler) UploadBoxScore(w http.ResponseWriter, r *http.Request) {
	data, fileName, ok := h.readPDF(w, r)
	if !ok {
		return
	}

	result, err := h.ingest.Ingest(r.Context(), data, fileName, identityFromContext(r.Context()))
	if err != nil {
		respondIngestError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// PreviewBoxScore parses a PDF and returns validation findings plus a
// confirmation token, persisting nothing.
func (h *Handler) PreviewBoxScore(w http.ResponseWriter, r *http.Request) {
	data, fileName, ok := h.readPDF(w, r)
	if !ok {
		return
	}

	result, err := h.ingest.Preview(r.Context(), data, fileName)
	if err != nil {
		respondIngestError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type confirmRequest struct {
	Token       string              `json:"token"`
	Adjustments *ingest.Adjustments `json:"adjustments,omitempty"`
}

// ConfirmBoxScore commits a previously previewed document, applying
// any operator adjustments.
func (h *Handler) ConfirmBoxScore(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Token == "" {
		respondError(w, http.StatusBadRequest, "Missing confirmation token", nil)
		return
	}

	result, err := h.ingest.Confirm(r.Context(), req.Token, req.Adjustments, identityFromContext(r.Context()))
	if err != nil {
		respondIngestError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// GetUploadStatus reports the lifecycle state of one upload.
func (h *Handler) GetUploadStatus(w http.ResponseWriter, r *http.Request) {
	uploadID := mux.Vars(r)["uploadID"]

	status, err := h.ingest.Status(r.Context(), uploadID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Upload not found", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch upload status", err)
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// readPDF extracts the "pdf" part of a multipart upload.
func (h *Handler) readPDF(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form", err)
		return nil, "", false
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing 'pdf' file field", err)
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read uploaded file", err)
		return nil, "", false
	}

	return data, header.Filename, true
}

// respondIngestError maps workflow errors onto HTTP statuses: duplicate
// games conflict, bad tokens and unparseable documents are client
// errors, everything else is a server failure.
func respondIngestError(w http.ResponseWriter, err error) {
	var dup *ingest.DuplicateError
	if errors.As(err, &dup) {
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error":              "Game already ingested",
			"status":             http.StatusConflict,
			"existing_upload_id": dup.ExistingUploadID,
			"match_date":         dup.MatchDate,
			"opponent":           dup.Opponent,
		})
		return
	}

	var tok *ingest.TokenError
	if errors.As(err, &tok) {
		respondError(w, http.StatusBadRequest, "Invalid confirmation token", err)
		return
	}

	if errors.Is(err, ingest.ErrUnparseable) {
		respondError(w, http.StatusUnprocessableEntity, "Document could not be parsed as a box score", err)
		return
	}

	respondError(w, http.StatusInternalServerError, "Ingestion failed", err)
}
