package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
)

type contextKey string

const channelContextKey contextKey = "authenticatedChannel"

// ContextWithChannel stores the authenticated channel in the provided context.
func ContextWithChannel(ctx context.Context, channel models.Channel) context.Context {
	return context.WithValue(ctx, channelContextKey, channel)
}

// ChannelFromContext retrieves the authenticated channel from context if present.
func ChannelFromContext(ctx context.Context) (models.Channel, bool) {
	channel, ok := ctx.Value(channelContextKey).(models.Channel)
	return channel, ok
}

// ExtractToken pulls the bearer token from the Authorization header.
func ExtractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return header
}

// AuthenticateRequest validates the bearer token on the request and loads the
// channel it belongs to.
func (h *Handler) AuthenticateRequest(r *http.Request) (models.Channel, error) {
	token := ExtractToken(r)
	if token == "" {
		return models.Channel{}, fmt.Errorf("missing bearer token")
	}
	claims, err := h.Tokens.Verify(token)
	if err != nil {
		return models.Channel{}, fmt.Errorf("invalid or expired token")
	}
	channel, exists := h.Store.GetChannel(claims.Subject)
	if !exists {
		return models.Channel{}, fmt.Errorf("account not found")
	}
	return channel, nil
}

func (h *Handler) requireAuthenticatedChannel(w http.ResponseWriter, r *http.Request) (models.Channel, bool) {
	channel, ok := ChannelFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, fmt.Errorf("authentication required"))
		return models.Channel{}, false
	}
	return channel, true
}
