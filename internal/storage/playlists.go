package storage

import (
	"sort"
	"strings"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
)

const (
	defaultPlaylistPage  = 1
	defaultPlaylistLimit = 4
)

// CreatePlaylist starts a playlist seeded with one video.
func (s *Storage) CreatePlaylist(ownerID, videoID, title string) (models.Playlist, error) {
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return models.Playlist{}, invalidErr("title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Channels[ownerID]; !ok {
		return models.Playlist{}, notFoundErr("channel %s not found", ownerID)
	}
	if _, ok := s.data.Videos[videoID]; !ok {
		return models.Playlist{}, notFoundErr("video %s not found", videoID)
	}

	now := nowUTC()
	playlist := models.Playlist{
		ID:        generateID(),
		OwnerID:   ownerID,
		Title:     trimmedTitle,
		VideoIDs:  []string{videoID},
		CreatedAt: now,
		UpdatedAt: now,
	}

	updatedData := cloneDataset(s.data)
	updatedData.Playlists[playlist.ID] = playlist
	if err := s.persistDataset(updatedData); err != nil {
		return models.Playlist{}, err
	}
	s.data = updatedData

	return playlist, nil
}

func (s *Storage) GetPlaylist(id string) (models.Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playlist, ok := s.data.Playlists[id]
	return playlist, ok
}

// ListPlaylists pages through all playlists, newest first. Page numbers start
// at 1; out-of-range pages return an empty slice, not an error.
func (s *Storage) ListPlaylists(page, limit int) (PlaylistPage, error) {
	if page <= 0 {
		page = defaultPlaylistPage
	}
	if limit <= 0 {
		limit = defaultPlaylistLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.Playlist, 0, len(s.data.Playlists))
	for _, playlist := range s.data.Playlists {
		all = append(all, playlist)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return PlaylistPage{
		Playlists: all[start:end],
		Page:      page,
		Limit:     limit,
		Total:     total,
		HasMore:   page*limit < total,
	}, nil
}

// UpdatePlaylist renames the playlist and/or appends one video. Only the owner
// may edit; appending a video already present is rejected.
func (s *Storage) UpdatePlaylist(id, callerID string, update PlaylistUpdate) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updatedData := cloneDataset(s.data)

	playlist, ok := updatedData.Playlists[id]
	if !ok {
		return models.Playlist{}, notFoundErr("playlist %s not found", id)
	}
	if playlist.OwnerID != callerID {
		return models.Playlist{}, forbiddenErr("you do not own this playlist")
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return models.Playlist{}, invalidErr("title cannot be empty")
		}
		playlist.Title = title
	}
	if update.VideoID != nil {
		videoID := strings.TrimSpace(*update.VideoID)
		if videoID == "" {
			return models.Playlist{}, invalidErr("videoId is required")
		}
		if _, exists := updatedData.Videos[videoID]; !exists {
			return models.Playlist{}, notFoundErr("video %s not found", videoID)
		}
		if playlist.Contains(videoID) {
			return models.Playlist{}, conflictErr("video already in playlist")
		}
		playlist.VideoIDs = append(playlist.VideoIDs, videoID)
	}
	playlist.UpdatedAt = nowUTC()

	updatedData.Playlists[id] = playlist
	if err := s.persistDataset(updatedData); err != nil {
		return models.Playlist{}, err
	}
	s.data = updatedData

	return playlist, nil
}

// RemovePlaylistVideo drops one video from the playlist. The video must
// currently be a member.
func (s *Storage) RemovePlaylistVideo(id, callerID, videoID string) (models.Playlist, error) {
	trimmed := strings.TrimSpace(videoID)
	if trimmed == "" {
		return models.Playlist{}, invalidErr("videoId is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updatedData := cloneDataset(s.data)

	playlist, ok := updatedData.Playlists[id]
	if !ok {
		return models.Playlist{}, notFoundErr("playlist %s not found", id)
	}
	if playlist.OwnerID != callerID {
		return models.Playlist{}, forbiddenErr("you do not own this playlist")
	}
	if !playlist.Contains(trimmed) {
		return models.Playlist{}, notFoundErr("video %s not in playlist", trimmed)
	}

	playlist.VideoIDs = removeID(playlist.VideoIDs, trimmed)
	playlist.UpdatedAt = nowUTC()

	updatedData.Playlists[id] = playlist
	if err := s.persistDataset(updatedData); err != nil {
		return models.Playlist{}, err
	}
	s.data = updatedData

	return playlist, nil
}

// DeletePlaylist removes an empty playlist. A playlist that still holds videos
// is protected so membership has to be cleared deliberately first.
func (s *Storage) DeletePlaylist(id, callerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updatedData := cloneDataset(s.data)

	playlist, ok := updatedData.Playlists[id]
	if !ok {
		return notFoundErr("playlist %s not found", id)
	}
	if playlist.OwnerID != callerID {
		return forbiddenErr("you do not own this playlist")
	}
	if len(playlist.VideoIDs) > 0 {
		return conflictErr("playlist is not empty")
	}

	delete(updatedData.Playlists, id)
	if err := s.persistDataset(updatedData); err != nil {
		return err
	}
	s.data = updatedData

	return nil
}
