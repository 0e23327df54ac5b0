package storage

import (
	"testing"
	"time"
)

func TestCreateCommentAndList(t *testing.T) {
	store := newTestStore(t)
	owner := createTestChannel(t, store, "Owner", "owner@example.com")
	viewer := createTestChannel(t, store, "Viewer", "viewer@example.com")
	video := createTestVideo(t, store, owner.ID, "commented")

	first, err := store.CreateComment(video.ID, viewer.ID, "  first!  ")
	if err != nil {
		t.Fatalf("CreateComment returned error: %v", err)
	}
	if first.Text != "first!" {
		t.Fatalf("expected trimmed text, got %q", first.Text)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := store.CreateComment(video.ID, owner.ID, "thanks for watching")
	if err != nil {
		t.Fatalf("CreateComment returned error: %v", err)
	}

	comments, err := store.ListVideoComments(video.ID)
	if err != nil {
		t.Fatalf("ListVideoComments returned error: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].ID != second.ID || comments[1].ID != first.ID {
		t.Fatalf("expected newest first, got %s then %s", comments[0].Text, comments[1].Text)
	}
	if comments[0].ChannelName != "Owner" || comments[1].ChannelName != "Viewer" {
		t.Fatalf("expected author display fields, got %q and %q", comments[0].ChannelName, comments[1].ChannelName)
	}
}

func TestCreateCommentValidation(t *testing.T) {
	store := newTestStore(t)
	owner := createTestChannel(t, store, "Owner", "owner@example.com")
	video := createTestVideo(t, store, owner.ID, "commented")

	if _, err := store.CreateComment(video.ID, owner.ID, "   "); !IsInvalid(err) {
		t.Fatalf("expected invalid error for blank text, got %v", err)
	}
	if _, err := store.CreateComment("missing", owner.ID, "hello"); !IsNotFound(err) {
		t.Fatalf("expected not found for unknown video, got %v", err)
	}
	if _, err := store.CreateComment(video.ID, "missing", "hello"); !IsNotFound(err) {
		t.Fatalf("expected not found for unknown channel, got %v", err)
	}
	if _, err := store.ListVideoComments("missing"); !IsNotFound(err) {
		t.Fatalf("expected not found for unknown video listing, got %v", err)
	}
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	store := newTestStore(t)
	owner := createTestChannel(t, store, "Owner", "owner@example.com")
	author := createTestChannel(t, store, "Author", "author@example.com")
	video := createTestVideo(t, store, owner.ID, "commented")
	comment, err := store.CreateComment(video.ID, author.ID, "draft")
	if err != nil {
		t.Fatalf("CreateComment returned error: %v", err)
	}

	if _, err := store.UpdateComment(comment.ID, owner.ID, "hijacked"); !IsForbidden(err) {
		t.Fatalf("expected forbidden for non-author edit, got %v", err)
	}

	updated, err := store.UpdateComment(comment.ID, author.ID, "final")
	if err != nil {
		t.Fatalf("UpdateComment returned error: %v", err)
	}
	if updated.Text != "final" {
		t.Fatalf("expected edited text, got %q", updated.Text)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) && !updated.UpdatedAt.Equal(updated.CreatedAt) {
		t.Fatalf("expected UpdatedAt at or after CreatedAt, got %v vs %v", updated.UpdatedAt, updated.CreatedAt)
	}

	if _, err := store.UpdateComment("missing", author.ID, "text"); !IsNotFound(err) {
		t.Fatalf("expected not found for unknown comment, got %v", err)
	}
}

func TestDeleteCommentAuthorOnly(t *testing.T) {
	store := newTestStore(t)
	owner := createTestChannel(t, store, "Owner", "owner@example.com")
	author := createTestChannel(t, store, "Author", "author@example.com")
	video := createTestVideo(t, store, owner.ID, "commented")
	comment, err := store.CreateComment(video.ID, author.ID, "temporary")
	if err != nil {
		t.Fatalf("CreateComment returned error: %v", err)
	}

	if err := store.DeleteComment(comment.ID, owner.ID); !IsForbidden(err) {
		t.Fatalf("expected forbidden for non-author delete, got %v", err)
	}
	if err := store.DeleteComment(comment.ID, author.ID); err != nil {
		t.Fatalf("DeleteComment returned error: %v", err)
	}

	comments, err := store.ListVideoComments(video.ID)
	if err != nil {
		t.Fatalf("ListVideoComments returned error: %v", err)
	}
	if len(comments) != 0 {
		t.Fatalf("expected no comments after delete, got %d", len(comments))
	}
	if err := store.DeleteComment(comment.ID, author.ID); !IsNotFound(err) {
		t.Fatalf("expected not found for repeated delete, got %v", err)
	}
}
