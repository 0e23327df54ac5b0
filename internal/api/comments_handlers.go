package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/observability/metrics"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/storage"
)

type commentRequest struct {
	CommentText string `json:"commentText"`
}

// NewComment attaches a comment to the video named in the path.
func (h *Handler) NewComment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	caller, ok := h.requireAuthenticatedChannel(w, r)
	if !ok {
		return
	}
	videoID := pathParam(r, "/api/comment/new/")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("video id is required"))
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	comment, err := h.Store.CreateComment(videoID, caller.ID, req.CommentText)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	metrics.Default().ObserveCommentEvent("create")
	writeJSON(w, http.StatusCreated, map[string]models.Comment{"comment": comment})
}

// VideoComments lists a video's comments, newest first, each carrying the
// author's display fields.
func (h *Handler) VideoComments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	videoID := pathParam(r, "/api/comment/video/")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("video id is required"))
		return
	}

	comments, err := h.Store.ListVideoComments(videoID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]storage.CommentWithAuthor{"comments": comments})
}

// CommentByID serves PUT for edits and DELETE for removal. Both require the
// caller to be the author.
func (h *Handler) CommentByID(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "/api/comment/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, fmt.Errorf("comment not found"))
		return
	}
	caller, ok := h.requireAuthenticatedChannel(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req commentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		comment, err := h.Store.UpdateComment(id, caller.ID, req.CommentText)
		if err != nil {
			writeStorageError(w, err)
			return
		}
		metrics.Default().ObserveCommentEvent("update")
		writeJSON(w, http.StatusOK, map[string]models.Comment{"comment": comment})
	case http.MethodDelete:
		if err := h.Store.DeleteComment(id, caller.ID); err != nil {
			writeStorageError(w, err)
			return
		}
		metrics.Default().ObserveCommentEvent("delete")
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w, r, http.MethodPut, http.MethodDelete)
	}
}
