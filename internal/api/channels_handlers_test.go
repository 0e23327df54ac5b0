package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
)

func TestSignupIssuesToken(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := jsonRequest(t, http.MethodPost, "/api/user/signup", map[string]string{
		"channelName": "Ajay",
		"email":       "ajay@example.com",
		"phone":       "555-0101",
		"password":    "swordfish",
	})
	rec := httptest.NewRecorder()
	handler.Signup(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response authResponse
	decodeBody(t, rec, &response)
	if response.Token == "" {
		t.Fatal("expected a token in the signup response")
	}
	if response.Channel.PasswordHash != "" {
		t.Fatal("expected password hash to be stripped from the response")
	}
	claims, err := handler.Tokens.Verify(response.Token)
	if err != nil {
		t.Fatalf("expected issued token to verify: %v", err)
	}
	if claims.Subject != response.Channel.ID {
		t.Fatalf("expected token subject %s, got %s", response.Channel.ID, claims.Subject)
	}
}

func TestSignupMultipartForm(t *testing.T) {
	handler, _ := newTestHandler(t)

	body, contentType := multipartBody(t, map[string]string{
		"channelName": "Ajay",
		"email":       "ajay@example.com",
		"password":    "swordfish",
	}, map[string][]byte{"logo": []byte("png-bytes")})
	req := httptest.NewRequest(http.MethodPost, "/api/user/signup", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Signup(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	handler, store := newTestHandler(t)
	createHandlerChannel(t, store, "First", "dupe@example.com")

	req := jsonRequest(t, http.MethodPost, "/api/user/signup", map[string]string{
		"channelName": "Second",
		"email":       "dupe@example.com",
		"password":    "swordfish",
	})
	rec := httptest.NewRecorder()
	handler.Signup(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	handler, store := newTestHandler(t)
	createHandlerChannel(t, store, "Ajay", "ajay@example.com")

	req := jsonRequest(t, http.MethodPost, "/api/user/login", map[string]string{
		"email":    "ajay@example.com",
		"password": "wrong",
	})
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid credentials") {
		t.Fatalf("expected opaque credentials error, got %s", rec.Body.String())
	}

	req = jsonRequest(t, http.MethodPost, "/api/user/login", map[string]string{
		"email":    "ajay@example.com",
		"password": "swordfish",
	})
	rec = httptest.NewRecorder()
	handler.Login(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestChannelByIDPublicProfile(t *testing.T) {
	handler, store := newTestHandler(t)
	channel := createHandlerChannel(t, store, "Ajay", "ajay@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/user/"+channel.ID, nil)
	rec := httptest.NewRecorder()
	handler.ChannelByID(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var response map[string]models.Channel
	decodeBody(t, rec, &response)
	if response["channel"].PasswordHash != "" {
		t.Fatal("expected password hash to be stripped")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/user/missing", nil)
	rec = httptest.NewRecorder()
	handler.ChannelByID(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestUpdateChannelOwnerOnly(t *testing.T) {
	handler, store := newTestHandler(t)
	owner := createHandlerChannel(t, store, "Owner", "owner@example.com")
	other := createHandlerChannel(t, store, "Other", "other@example.com")

	req := authed(jsonRequest(t, http.MethodPost, "/api/user/"+owner.ID, map[string]string{
		"channelName": "Hijacked",
	}), other)
	rec := httptest.NewRecorder()
	handler.ChannelByID(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}

	req = authed(jsonRequest(t, http.MethodPost, "/api/user/"+owner.ID, map[string]string{
		"channelName": "Renamed",
	}), owner)
	rec = httptest.NewRecorder()
	handler.ChannelByID(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var response map[string]models.Channel
	decodeBody(t, rec, &response)
	if response["channel"].ChannelName != "Renamed" {
		t.Fatalf("expected rename to apply, got %s", response["channel"].ChannelName)
	}
}

func TestUpdateChannelRequiresAuth(t *testing.T) {
	handler, store := newTestHandler(t)
	owner := createHandlerChannel(t, store, "Owner", "owner@example.com")

	req := jsonRequest(t, http.MethodPost, "/api/user/"+owner.ID, map[string]string{"channelName": "X"})
	rec := httptest.NewRecorder()
	handler.ChannelByID(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestSubscribeEndpoint(t *testing.T) {
	handler, store := newTestHandler(t)
	viewer := createHandlerChannel(t, store, "Viewer", "viewer@example.com")
	creator := createHandlerChannel(t, store, "Creator", "creator@example.com")

	req := authed(httptest.NewRequest(http.MethodPut, "/api/user/subscribe/"+creator.ID, nil), viewer)
	rec := httptest.NewRecorder()
	handler.Subscribe(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var response map[string]models.Channel
	decodeBody(t, rec, &response)
	if response["channel"].Subscribers != 1 {
		t.Fatalf("expected 1 subscriber, got %d", response["channel"].Subscribers)
	}

	// repeating is a conflict
	req = authed(httptest.NewRequest(http.MethodPut, "/api/user/subscribe/"+creator.ID, nil), viewer)
	rec = httptest.NewRecorder()
	handler.Subscribe(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}

	// self subscribe is invalid
	req = authed(httptest.NewRequest(http.MethodPut, "/api/user/subscribe/"+viewer.ID, nil), viewer)
	rec = httptest.NewRecorder()
	handler.Subscribe(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestUnsubscribeEndpoint(t *testing.T) {
	handler, store := newTestHandler(t)
	viewer := createHandlerChannel(t, store, "Viewer", "viewer@example.com")
	creator := createHandlerChannel(t, store, "Creator", "creator@example.com")
	if _, err := store.Subscribe(viewer.ID, creator.ID); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	req := authed(httptest.NewRequest(http.MethodPut, "/api/user/unsubscribe/"+creator.ID, nil), viewer)
	rec := httptest.NewRecorder()
	handler.Unsubscribe(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var response map[string]models.Channel
	decodeBody(t, rec, &response)
	if response["channel"].Subscribers != 0 {
		t.Fatalf("expected 0 subscribers, got %d", response["channel"].Subscribers)
	}

	req = authed(httptest.NewRequest(http.MethodPut, "/api/user/unsubscribe/"+creator.ID, nil), viewer)
	rec = httptest.NewRecorder()
	handler.Unsubscribe(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestSubscribedChannelsEndpoint(t *testing.T) {
	handler, store := newTestHandler(t)
	viewer := createHandlerChannel(t, store, "Viewer", "viewer@example.com")
	creator := createHandlerChannel(t, store, "Creator", "creator@example.com")
	if _, err := store.Subscribe(viewer.ID, creator.ID); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	req := authed(httptest.NewRequest(http.MethodGet, "/api/user/subscribed/channel", nil), viewer)
	rec := httptest.NewRecorder()
	handler.SubscribedChannels(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var response map[string][]models.Channel
	decodeBody(t, rec, &response)
	if len(response["channels"]) != 1 || response["channels"][0].ID != creator.ID {
		t.Fatalf("expected the followed channel, got %v", response["channels"])
	}
	if response["channels"][0].PasswordHash != "" {
		t.Fatal("expected password hash to be stripped from listings")
	}
}

func TestSignupMethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/user/signup", nil)
	rec := httptest.NewRecorder()
	handler.Signup(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("expected Allow header POST, got %q", rec.Header().Get("Allow"))
	}
}
