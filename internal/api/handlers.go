package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/auth"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/storage"
)

// maxMultipartMemory bounds the in-memory portion of multipart parsing;
// larger file parts spill to disk.
const maxMultipartMemory = 32 << 20

type Handler struct {
	Store  storage.Repository
	Tokens *auth.TokenManager
}

func NewHandler(store storage.Repository, tokens *auth.TokenManager) *Handler {
	return &Handler{Store: store, Tokens: tokens}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// WriteError is an exported helper for returning JSON API errors.
func WriteError(w http.ResponseWriter, status int, err error) {
	writeError(w, status, err)
}

// writeStorageError maps repository failures onto HTTP statuses. Unclassified
// errors come back as a generic 500 so internals never leak to clients.
func writeStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err)
	case storage.IsNotFound(err):
		writeError(w, http.StatusNotFound, err)
	case storage.IsConflict(err):
		writeError(w, http.StatusConflict, err)
	case storage.IsForbidden(err):
		writeError(w, http.StatusForbidden, err)
	case storage.IsInvalid(err):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, fmt.Errorf("internal server error"))
	}
}

func decodeJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
}

// pathParam returns the path remainder after prefix, with surrounding slashes
// stripped.
func pathParam(r *http.Request, prefix string) string {
	return strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
}

func isMultipart(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "multipart/form-data"
}

// formUpload reads one file part from a parsed multipart form. A missing part
// is not an error; callers decide whether the field is required.
func formUpload(r *http.Request, field string) (*storage.MediaUpload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s upload: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s upload: %w", field, err)
	}
	return &storage.MediaUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// publicChannel strips credentials before a channel leaves the API.
func publicChannel(channel models.Channel) models.Channel {
	channel.PasswordHash = ""
	return channel
}

func publicChannels(channels []models.Channel) []models.Channel {
	sanitized := make([]models.Channel, 0, len(channels))
	for _, channel := range channels {
		sanitized = append(sanitized, publicChannel(channel))
	}
	return sanitized
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.Store.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": status})
}
