package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/observability/metrics"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/storage"
)

type videoUpdateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Tags        *[]string `json:"tags"`
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tags = append(tags, strings.TrimSpace(part))
	}
	return tags
}

// UploadVideo accepts a multipart form with the video file, an optional
// thumbnail, and the metadata fields.
func (h *Handler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	caller, ok := h.requireAuthenticatedChannel(w, r)
	if !ok {
		return
	}
	if !isMultipart(r) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("multipart/form-data body required"))
		return
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse form: %w", err))
		return
	}

	videoFile, err := formUpload(r, "video")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if videoFile == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("video file is required"))
		return
	}
	thumbnail, err := formUpload(r, "thumbnail")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	params := storage.CreateVideoParams{
		ChannelID:   caller.ID,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Tags:        splitTags(r.FormValue("tags")),
		Video:       *videoFile,
	}
	if thumbnail != nil {
		params.Thumbnail = *thumbnail
	}

	video, err := h.Store.CreateVideo(params)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	metrics.Default().ObserveVideoEvent("upload")
	writeJSON(w, http.StatusCreated, map[string]models.Video{"video": video})
}

// VideoByID serves GET for playback metadata, POST for metadata updates, and
// DELETE for removal. Updates and deletes require ownership.
func (h *Handler) VideoByID(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "/api/video/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, fmt.Errorf("video not found"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		video, ok := h.Store.GetVideoWithOwner(id)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("video %s not found", id))
			return
		}
		writeJSON(w, http.StatusOK, map[string]storage.VideoWithOwner{"video": video})
	case http.MethodPost:
		h.updateVideo(w, r, id)
	case http.MethodDelete:
		caller, ok := h.requireAuthenticatedChannel(w, r)
		if !ok {
			return
		}
		if err := h.Store.DeleteVideo(id, caller.ID); err != nil {
			writeStorageError(w, err)
			return
		}
		metrics.Default().ObserveVideoEvent("delete")
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (h *Handler) updateVideo(w http.ResponseWriter, r *http.Request, id string) {
	caller, ok := h.requireAuthenticatedChannel(w, r)
	if !ok {
		return
	}

	update := storage.VideoUpdate{}
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("parse form: %w", err))
			return
		}
		if value := r.FormValue("title"); value != "" {
			update.Title = &value
		}
		if value := r.FormValue("description"); value != "" {
			update.Description = &value
		}
		if value := r.FormValue("category"); value != "" {
			update.Category = &value
		}
		if raw := r.FormValue("tags"); raw != "" {
			tags := splitTags(raw)
			update.Tags = &tags
		}
		thumbnail, err := formUpload(r, "thumbnail")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		update.Thumbnail = thumbnail
	} else {
		var req videoUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		update.Title = req.Title
		update.Description = req.Description
		update.Category = req.Category
		update.Tags = req.Tags
	}

	video, err := h.Store.UpdateVideo(id, caller.ID, update)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	metrics.Default().ObserveVideoEvent("update")
	writeJSON(w, http.StatusOK, map[string]models.Video{"video": video})
}

// OwnVideos lists the caller's uploads.
func (h *Handler) OwnVideos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	caller, ok := h.requireAuthenticatedChannel(w, r)
	if !ok {
		return
	}

	videos, err := h.Store.ListChannelVideos(caller.ID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Video{"videos": videos})
}

func (h *Handler) VideosByCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	category := pathParam(r, "/api/video/category/")
	videos, err := h.Store.ListVideosByCategory(category)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Video{"videos": videos})
}

// SubscribedVideos lists uploads from the channels the caller follows.
func (h *Handler) SubscribedVideos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	caller, ok := h.requireAuthenticatedChannel(w, r)
	if !ok {
		return
	}

	videos, err := h.Store.ListSubscribedVideos(caller.ID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Video{"videos": videos})
}

func (h *Handler) LikeVideo(w http.ResponseWriter, r *http.Request) {
	h.reactToVideo(w, r, "/api/video/like/", "like", h.Store.LikeVideo)
}

func (h *Handler) DislikeVideo(w http.ResponseWriter, r *http.Request) {
	h.reactToVideo(w, r, "/api/video/dislike/", "dislike", h.Store.DislikeVideo)
}

func (h *Handler) reactToVideo(w http.ResponseWriter, r *http.Request, prefix, event string, react func(videoID, channelID string) (models.Video, error)) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	caller, ok := h.requireAuthenticatedChannel(w, r)
	if !ok {
		return
	}
	videoID := pathParam(r, prefix)
	if videoID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("video id is required"))
		return
	}

	video, err := react(videoID, caller.ID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	metrics.Default().ObserveReactionEvent(event)
	writeJSON(w, http.StatusOK, map[string]models.Video{"video": video})
}

// AddView bumps the view counter. No authentication: anonymous playback counts.
func (h *Handler) AddView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	videoID := pathParam(r, "/api/video/views/")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("video id is required"))
		return
	}

	video, err := h.Store.AddView(videoID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	metrics.ObserveView()
	writeJSON(w, http.StatusOK, map[string]models.Video{"video": video})
}
