package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/storage"
)

func TestCreatePlaylistEndpoint(t *testing.T) {
	handler, store := newTestHandler(t)
	owner := createHandlerChannel(t, store, "Owner", "owner@example.com")
	video := createHandlerVideo(t, store, owner.ID, "seed")

	req := authed(jsonRequest(t, http.MethodPost, "/api/playlist/"+video.ID, map[string]string{
		"title": "Favourites",
	}), owner)
	rec := httptest.NewRecorder()
	handler.PlaylistByID(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var response map[string]models.Playlist
	decodeBody(t, rec, &response)
	playlist := response["playlist"]
	if playlist.Title != "Favourites" || len(playlist.VideoIDs) != 1 || playlist.VideoIDs[0] != video.ID {
		t.Fatalf("unexpected playlist payload: %+v", playlist)
	}

	req = authed(jsonRequest(t, http.MethodPost, "/api/playlist/"+video.ID, map[string]string{}), owner)
	rec = httptest.NewRecorder()
	handler.PlaylistByID(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for missing title, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/playlist/"+playlist.ID, nil)
	rec = httptest.NewRecorder()
	handler.PlaylistByID(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestAddAndRemovePlaylistVideoEndpoints(t *testing.T) {
	handler, store := newTestHandler(t)
	owner := createHandlerChannel(t, store, "Owner", "owner@example.com")
	first := createHandlerVideo(t, store, owner.ID, "first")
	second := createHandlerVideo(t, store, owner.ID, "second")
	playlist, err := store.CreatePlaylist(owner.ID, first.ID, "Mix")
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}

	req := authed(jsonRequest(t, http.MethodPost, "/api/playlist/add-video/"+playlist.ID, map[string]string{
		"videoId": second.ID,
	}), owner)
	rec := httptest.NewRecorder()
	handler.AddPlaylistVideo(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var response map[string]models.Playlist
	decodeBody(t, rec, &response)
	if len(response["playlist"].VideoIDs) != 2 {
		t.Fatalf("expected 2 members, got %v", response["playlist"].VideoIDs)
	}

	req = authed(jsonRequest(t, http.MethodPost, "/api/playlist/add-video/"+playlist.ID, map[string]string{
		"videoId": second.ID,
	}), owner)
	rec = httptest.NewRecorder()
	handler.AddPlaylistVideo(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for duplicate member, got %d", rec.Code)
	}

	req = authed(jsonRequest(t, http.MethodPost, "/api/playlist/remove-video/"+playlist.ID, map[string]string{
		"videoId": second.ID,
	}), owner)
	rec = httptest.NewRecorder()
	handler.RemovePlaylistVideo(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &response)
	if len(response["playlist"].VideoIDs) != 1 {
		t.Fatalf("expected 1 member, got %v", response["playlist"].VideoIDs)
	}

	req = authed(jsonRequest(t, http.MethodPost, "/api/playlist/remove-video/"+playlist.ID, map[string]string{
		"videoId": second.ID,
	}), owner)
	rec = httptest.NewRecorder()
	handler.RemovePlaylistVideo(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for absent member, got %d", rec.Code)
	}
}

func TestAddPlaylistVideoRenameEndpoint(t *testing.T) {
	handler, store := newTestHandler(t)
	owner := createHandlerChannel(t, store, "Owner", "owner@example.com")
	first := createHandlerVideo(t, store, owner.ID, "first")
	second := createHandlerVideo(t, store, owner.ID, "second")
	playlist, err := store.CreatePlaylist(owner.ID, first.ID, "Old title")
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}

	// title-only body renames without touching membership
	req := authed(jsonRequest(t, http.MethodPost, "/api/playlist/add-video/"+playlist.ID, map[string]string{
		"title": "New title",
	}), owner)
	rec := httptest.NewRecorder()
	handler.AddPlaylistVideo(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for rename, got %d: %s", rec.Code, rec.Body.String())
	}
	var response map[string]models.Playlist
	decodeBody(t, rec, &response)
	if response["playlist"].Title != "New title" {
		t.Fatalf("expected renamed playlist, got %q", response["playlist"].Title)
	}
	if len(response["playlist"].VideoIDs) != 1 {
		t.Fatalf("expected membership untouched, got %v", response["playlist"].VideoIDs)
	}

	req = authed(jsonRequest(t, http.MethodPost, "/api/playlist/add-video/"+playlist.ID, map[string]string{
		"title":   "Final title",
		"videoId": second.ID,
	}), owner)
	rec = httptest.NewRecorder()
	handler.AddPlaylistVideo(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for rename+append, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &response)
	if response["playlist"].Title != "Final title" || len(response["playlist"].VideoIDs) != 2 {
		t.Fatalf("expected rename and append together, got %+v", response["playlist"])
	}

	req = authed(jsonRequest(t, http.MethodPost, "/api/playlist/add-video/"+playlist.ID, map[string]string{}), owner)
	rec = httptest.NewRecorder()
	handler.AddPlaylistVideo(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for empty body, got %d", rec.Code)
	}
}

func TestDeletePlaylistEndpoint(t *testing.T) {
	handler, store := newTestHandler(t)
	owner := createHandlerChannel(t, store, "Owner", "owner@example.com")
	video := createHandlerVideo(t, store, owner.ID, "member")
	playlist, err := store.CreatePlaylist(owner.ID, video.ID, "Mix")
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}

	req := authed(httptest.NewRequest(http.MethodDelete, "/api/playlist/"+playlist.ID, nil), owner)
	rec := httptest.NewRecorder()
	handler.PlaylistByID(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for non-empty playlist, got %d", rec.Code)
	}

	if _, err := store.RemovePlaylistVideo(playlist.ID, owner.ID, video.ID); err != nil {
		t.Fatalf("RemovePlaylistVideo: %v", err)
	}
	req = authed(httptest.NewRequest(http.MethodDelete, "/api/playlist/"+playlist.ID, nil), owner)
	rec = httptest.NewRecorder()
	handler.PlaylistByID(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if _, ok := store.GetPlaylist(playlist.ID); ok {
		t.Fatal("expected playlist to be gone")
	}
}

func TestListPlaylistsEndpointPagination(t *testing.T) {
	handler, store := newTestHandler(t)
	owner := createHandlerChannel(t, store, "Owner", "owner@example.com")
	video := createHandlerVideo(t, store, owner.ID, "shared")
	for i := 0; i < 5; i++ {
		if _, err := store.CreatePlaylist(owner.ID, video.ID, fmt.Sprintf("playlist-%d", i)); err != nil {
			t.Fatalf("CreatePlaylist %d: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/playlist", nil)
	rec := httptest.NewRecorder()
	handler.ListPlaylists(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var page storage.PlaylistPage
	decodeBody(t, rec, &page)
	if page.Page != 1 || page.Limit != 4 {
		t.Fatalf("expected defaults page=1 limit=4, got page=%d limit=%d", page.Page, page.Limit)
	}
	if len(page.Playlists) != 4 || !page.HasMore {
		t.Fatalf("expected first page of 4 with more, got %d hasMore=%v", len(page.Playlists), page.HasMore)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/playlist?page=2&limit=4", nil)
	rec = httptest.NewRecorder()
	handler.ListPlaylists(rec, req)
	decodeBody(t, rec, &page)
	if len(page.Playlists) != 1 || page.HasMore {
		t.Fatalf("expected final page of 1, got %d hasMore=%v", len(page.Playlists), page.HasMore)
	}

	// malformed paging parameters fall back to defaults
	req = httptest.NewRequest(http.MethodGet, "/api/playlist?page=zero&limit=-3", nil)
	rec = httptest.NewRecorder()
	handler.ListPlaylists(rec, req)
	decodeBody(t, rec, &page)
	if page.Page != 1 || page.Limit != 4 {
		t.Fatalf("expected fallback defaults, got page=%d limit=%d", page.Page, page.Limit)
	}
}
