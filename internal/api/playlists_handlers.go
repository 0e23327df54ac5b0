package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/observability/metrics"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/storage"
)

type createPlaylistRequest struct {
	Title string `json:"title"`
}

type playlistVideoRequest struct {
	VideoID string  `json:"videoId"`
	Title   *string `json:"title"`
}

// PlaylistByID serves POST to create a playlist seeded with the video in the
// path, GET to fetch one, and DELETE to remove an emptied playlist.
func (h *Handler) PlaylistByID(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "/api/playlist/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, fmt.Errorf("playlist not found"))
		return
	}

	switch r.Method {
	case http.MethodPost:
		caller, ok := h.requireAuthenticatedChannel(w, r)
		if !ok {
			return
		}
		var req createPlaylistRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		playlist, err := h.Store.CreatePlaylist(caller.ID, id, req.Title)
		if err != nil {
			writeStorageError(w, err)
			return
		}
		metrics.Default().ObservePlaylistEvent("create")
		writeJSON(w, http.StatusCreated, map[string]models.Playlist{"playlist": playlist})
	case http.MethodGet:
		playlist, ok := h.Store.GetPlaylist(id)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("playlist %s not found", id))
			return
		}
		writeJSON(w, http.StatusOK, map[string]models.Playlist{"playlist": playlist})
	case http.MethodDelete:
		caller, ok := h.requireAuthenticatedChannel(w, r)
		if !ok {
			return
		}
		if err := h.Store.DeletePlaylist(id, caller.ID); err != nil {
			writeStorageError(w, err)
			return
		}
		metrics.Default().ObservePlaylistEvent("delete")
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet, http.MethodDelete)
	}
}

// ListPlaylists pages through all playlists. Page and limit come from query
// parameters and fall back to defaults when absent or malformed.
func (h *Handler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	page := parsePositiveInt(r.URL.Query().Get("page"))
	limit := parsePositiveInt(r.URL.Query().Get("limit"))

	result, err := h.Store.ListPlaylists(page, limit)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parsePositiveInt(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return 0
	}
	return value
}

// AddPlaylistVideo appends the video named in the body to the playlist named
// in the path, renames the playlist when a title is given, or both.
func (h *Handler) AddPlaylistVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	caller, ok := h.requireAuthenticatedChannel(w, r)
	if !ok {
		return
	}
	id := pathParam(r, "/api/playlist/add-video/")
	if id == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("playlist id is required"))
		return
	}

	var req playlistVideoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	update := storage.PlaylistUpdate{Title: req.Title}
	if videoID := strings.TrimSpace(req.VideoID); videoID != "" {
		update.VideoID = &videoID
	}
	if update.Title == nil && update.VideoID == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("videoId or title is required"))
		return
	}

	playlist, err := h.Store.UpdatePlaylist(id, caller.ID, update)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	event := "add-video"
	if update.VideoID == nil {
		event = "rename"
	}
	metrics.Default().ObservePlaylistEvent(event)
	writeJSON(w, http.StatusOK, map[string]models.Playlist{"playlist": playlist})
}

// RemovePlaylistVideo drops the video named in the body from the playlist
// named in the path.
func (h *Handler) RemovePlaylistVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	caller, ok := h.requireAuthenticatedChannel(w, r)
	if !ok {
		return
	}
	id := pathParam(r, "/api/playlist/remove-video/")
	if id == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("playlist id is required"))
		return
	}

	var req playlistVideoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	playlist, err := h.Store.RemovePlaylistVideo(id, caller.ID, req.VideoID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	metrics.Default().ObservePlaylistEvent("remove-video")
	writeJSON(w, http.StatusOK, map[string]models.Playlist{"playlist": playlist})
}
