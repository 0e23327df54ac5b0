package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/observability/metrics"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/storage"
)

type signupRequest struct {
	ChannelName string `json:"channelName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type channelUpdateRequest struct {
	ChannelName *string `json:"channelName"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	OldPassword string  `json:"oldPassword"`
	NewPassword string  `json:"newPassword"`
}

type authResponse struct {
	Token   string         `json:"token"`
	Channel models.Channel `json:"channel"`
}

func (h *Handler) newAuthResponse(channel models.Channel) (authResponse, error) {
	token, err := h.Tokens.Issue(channel)
	if err != nil {
		return authResponse{}, err
	}
	return authResponse{Token: token, Channel: publicChannel(channel)}, nil
}

// Signup registers a channel. Accepts multipart/form-data with an optional
// logo part, or a plain JSON body.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	params := storage.CreateChannelParams{}
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("parse form: %w", err))
			return
		}
		logo, err := formUpload(r, "logo")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		params = storage.CreateChannelParams{
			ChannelName: r.FormValue("channelName"),
			Email:       r.FormValue("email"),
			Phone:       r.FormValue("phone"),
			Password:    r.FormValue("password"),
			Logo:        logo,
		}
	} else {
		var req signupRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		params = storage.CreateChannelParams{
			ChannelName: req.ChannelName,
			Email:       req.Email,
			Phone:       req.Phone,
			Password:    req.Password,
		}
	}

	channel, err := h.Store.CreateChannel(params)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	response, err := h.newAuthResponse(channel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}
	writeJSON(w, http.StatusCreated, response)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	channel, err := h.Store.AuthenticateChannel(req.Email, req.Password)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	response, err := h.newAuthResponse(channel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// ChannelByID serves GET for the public profile and POST for profile updates.
// Only the account owner may update.
func (h *Handler) ChannelByID(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "/api/user/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, fmt.Errorf("channel not found"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		channel, ok := h.Store.GetChannel(id)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("channel %s not found", id))
			return
		}
		writeJSON(w, http.StatusOK, map[string]models.Channel{"channel": publicChannel(channel)})
	case http.MethodPost:
		h.updateChannel(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (h *Handler) updateChannel(w http.ResponseWriter, r *http.Request, id string) {
	caller, ok := h.requireAuthenticatedChannel(w, r)
	if !ok {
		return
	}
	if caller.ID != id {
		writeError(w, http.StatusForbidden, fmt.Errorf("you may only update your own channel"))
		return
	}

	update := storage.ChannelUpdate{}
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("parse form: %w", err))
			return
		}
		if value := r.FormValue("channelName"); value != "" {
			update.ChannelName = &value
		}
		if value := r.FormValue("email"); value != "" {
			update.Email = &value
		}
		if value := r.FormValue("phone"); value != "" {
			update.Phone = &value
		}
		oldPassword := r.FormValue("oldPassword")
		newPassword := r.FormValue("newPassword")
		if oldPassword != "" || newPassword != "" {
			update.Password = &storage.PasswordChange{Old: oldPassword, New: newPassword}
		}
		logo, err := formUpload(r, "logo")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		update.Logo = logo
	} else {
		var req channelUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		update.ChannelName = req.ChannelName
		update.Email = req.Email
		update.Phone = req.Phone
		if req.OldPassword != "" || req.NewPassword != "" {
			update.Password = &storage.PasswordChange{Old: req.OldPassword, New: req.NewPassword}
		}
	}

	channel, err := h.Store.UpdateChannel(id, update)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]models.Channel{"channel": publicChannel(channel)})
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	caller, ok := h.requireAuthenticatedChannel(w, r)
	if !ok {
		return
	}
	targetID := pathParam(r, "/api/user/subscribe/")
	if targetID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("channel id is required"))
		return
	}

	target, err := h.Store.Subscribe(caller.ID, targetID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	metrics.Default().ObserveSubscriptionEvent("subscribe")
	writeJSON(w, http.StatusOK, map[string]models.Channel{"channel": publicChannel(target)})
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	caller, ok := h.requireAuthenticatedChannel(w, r)
	if !ok {
		return
	}
	targetID := pathParam(r, "/api/user/unsubscribe/")
	if targetID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("channel id is required"))
		return
	}

	target, err := h.Store.Unsubscribe(caller.ID, targetID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	metrics.Default().ObserveSubscriptionEvent("unsubscribe")
	writeJSON(w, http.StatusOK, map[string]models.Channel{"channel": publicChannel(target)})
}

func (h *Handler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	caller, ok := h.requireAuthenticatedChannel(w, r)
	if !ok {
		return
	}

	channels, err := h.Store.ListSubscribedChannels(caller.ID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Channel{"channels": publicChannels(channels)})
}
