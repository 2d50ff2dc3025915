package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"socialflow/internal/domain"
	"socialflow/internal/ingest"
)

// 25 MB, matching the extraction service's upload cap.
const maxUploadBytes = 25 << 20

type submissionRequest struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type uploadResponse struct {
	ID               string `json:"id"`
	SourceKind       string `json:"source_kind"`
	OriginalFilename string `json:"original_filename,omitempty"`
	URL              string `json:"url,omitempty"`
	WordCount        int    `json:"word_count"`
	DetectedTopic    string `json:"detected_topic,omitempty"`
	ProcessedAt      string `json:"processed_at,omitempty"`
}

// CreateSubmission accepts source material as a multipart file upload or a
// JSON body carrying text or a url.
func (a *App) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	material, ok := a.readMaterial(w, r)
	if !ok {
		return
	}

	upload, err := a.Gateway.Submit(r.Context(), material)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, uploadToResponse(upload))
}

func (a *App) readMaterial(w http.ResponseWriter, r *http.Request) (ingest.Material, bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart body")
			return ingest.Material{}, false
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "file field required")
			return ingest.Material{}, false
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "failed to read file")
			return ingest.Material{}, false
		}
		if len(data) > maxUploadBytes {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "file exceeds upload limit")
			return ingest.Material{}, false
		}
		return ingest.Material{Filename: header.Filename, Data: data}, true
	}

	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return ingest.Material{}, false
	}
	return ingest.Material{Text: req.Text, URL: req.URL}, true
}

func uploadToResponse(upload *domain.ContentUpload) uploadResponse {
	resp := uploadResponse{
		ID:               upload.ID,
		SourceKind:       string(upload.SourceKind),
		OriginalFilename: upload.OriginalFilename,
		URL:              upload.URL,
		WordCount:        upload.WordCount,
		DetectedTopic:    upload.DetectedTopic,
	}
	if !upload.ProcessedAt.IsZero() {
		resp.ProcessedAt = upload.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
