package storage

import (
	"sort"
	"strings"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
)

// CreateComment attaches a comment to an existing video.
func (s *Storage) CreateComment(videoID, channelID, text string) (models.Comment, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.Comment{}, invalidErr("commentText is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Videos[videoID]; !ok {
		return models.Comment{}, notFoundErr("video %s not found", videoID)
	}
	if _, ok := s.data.Channels[channelID]; !ok {
		return models.Comment{}, notFoundErr("channel %s not found", channelID)
	}

	now := nowUTC()
	comment := models.Comment{
		ID:        generateID(),
		VideoID:   videoID,
		ChannelID: channelID,
		Text:      trimmed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	updatedData := cloneDataset(s.data)
	updatedData.Comments[comment.ID] = comment
	if err := s.persistDataset(updatedData); err != nil {
		return models.Comment{}, err
	}
	s.data = updatedData

	return comment, nil
}

// ListVideoComments returns the video's comments, newest first, each joined
// with the author's display fields.
func (s *Storage) ListVideoComments(videoID string) ([]CommentWithAuthor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.data.Videos[videoID]; !ok {
		return nil, notFoundErr("video %s not found", videoID)
	}

	comments := make([]CommentWithAuthor, 0)
	for _, comment := range s.data.Comments {
		if comment.VideoID != videoID {
			continue
		}
		entry := CommentWithAuthor{Comment: comment}
		if author, ok := s.data.Channels[comment.ChannelID]; ok {
			entry.ChannelName = author.ChannelName
			entry.LogoURL = author.LogoURL
		}
		comments = append(comments, entry)
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

// UpdateComment rewrites the text. Only the author may edit.
func (s *Storage) UpdateComment(id, callerID, text string) (models.Comment, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.Comment{}, invalidErr("commentText is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updatedData := cloneDataset(s.data)

	comment, ok := updatedData.Comments[id]
	if !ok {
		return models.Comment{}, notFoundErr("comment %s not found", id)
	}
	if comment.ChannelID != callerID {
		return models.Comment{}, forbiddenErr("you do not own this comment")
	}

	comment.Text = trimmed
	comment.UpdatedAt = nowUTC()

	updatedData.Comments[id] = comment
	if err := s.persistDataset(updatedData); err != nil {
		return models.Comment{}, err
	}
	s.data = updatedData

	return comment, nil
}

// DeleteComment removes the comment. Only the author may delete.
func (s *Storage) DeleteComment(id, callerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updatedData := cloneDataset(s.data)

	comment, ok := updatedData.Comments[id]
	if !ok {
		return notFoundErr("comment %s not found", id)
	}
	if comment.ChannelID != callerID {
		return forbiddenErr("you do not own this comment")
	}

	delete(updatedData.Comments, id)
	if err := s.persistDataset(updatedData); err != nil {
		return err
	}
	s.data = updatedData

	return nil
}
