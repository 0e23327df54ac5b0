package storage

import (
	"strings"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
)

// CreateVideo stores the payloads in the media bucket first, then records the
// metadata. The uploading channel must exist.
func (s *Storage) CreateVideo(params CreateVideoParams) (models.Video, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return models.Video{}, invalidErr("title is required")
	}
	if len(params.Video.Data) == 0 {
		return models.Video{}, invalidErr("video file is required")
	}

	if _, ok := s.GetChannel(params.ChannelID); !ok {
		return models.Video{}, notFoundErr("channel %s not found", params.ChannelID)
	}

	videoObject, err := s.uploadMedia("videos", &params.Video)
	if err != nil {
		return models.Video{}, err
	}
	var thumbObject mediaObject
	if len(params.Thumbnail.Data) > 0 {
		thumbObject, err = s.uploadMedia("thumbnails", &params.Thumbnail)
		if err != nil {
			s.deleteMedia(videoObject.Key)
			return models.Video{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	video := models.Video{
		ID:           generateID(),
		ChannelID:    params.ChannelID,
		Title:        title,
		Description:  strings.TrimSpace(params.Description),
		Category:     strings.TrimSpace(params.Category),
		Tags:         normalizeTags(params.Tags),
		VideoURL:     videoObject.URL,
		VideoKey:     videoObject.Key,
		ThumbnailURL: thumbObject.URL,
		ThumbnailKey: thumbObject.Key,
		LikedBy:      []string{},
		DislikedBy:   []string{},
		CreatedAt:    nowUTC(),
	}

	updatedData := cloneDataset(s.data)
	updatedData.Videos[video.ID] = video
	if err := s.persistDataset(updatedData); err != nil {
		s.deleteMedia(videoObject.Key, thumbObject.Key)
		return models.Video{}, err
	}
	s.data = updatedData

	return video, nil
}

func (s *Storage) GetVideo(id string) (models.Video, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	video, ok := s.data.Videos[id]
	return video, ok
}

// GetVideoWithOwner joins the video with the owning channel's display fields.
func (s *Storage) GetVideoWithOwner(id string) (VideoWithOwner, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	video, ok := s.data.Videos[id]
	if !ok {
		return VideoWithOwner{}, false
	}
	result := VideoWithOwner{Video: video}
	if owner, ok := s.data.Channels[video.ChannelID]; ok {
		result.ChannelName = owner.ChannelName
		result.LogoURL = owner.LogoURL
	}
	return result, true
}

// ListChannelVideos returns the channel's uploads, newest first.
func (s *Storage) ListChannelVideos(channelID string) ([]models.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.data.Channels[channelID]; !ok {
		return nil, notFoundErr("channel %s not found", channelID)
	}

	videos := make([]models.Video, 0)
	for _, video := range s.data.Videos {
		if video.ChannelID == channelID {
			videos = append(videos, video)
		}
	}
	sortVideosNewestFirst(videos)
	return videos, nil
}

// ListVideosByCategory matches the category case-insensitively, newest first.
func (s *Storage) ListVideosByCategory(category string) ([]models.Video, error) {
	normalized := strings.ToLower(strings.TrimSpace(category))
	if normalized == "" {
		return nil, invalidErr("category is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	videos := make([]models.Video, 0)
	for _, video := range s.data.Videos {
		if strings.ToLower(video.Category) == normalized {
			videos = append(videos, video)
		}
	}
	sortVideosNewestFirst(videos)
	return videos, nil
}

// ListSubscribedVideos returns uploads from every channel the account follows,
// merged newest first.
func (s *Storage) ListSubscribedVideos(subscriberID string) ([]models.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subscriber, ok := s.data.Channels[subscriberID]
	if !ok {
		return nil, notFoundErr("channel %s not found", subscriberID)
	}

	followed := make(map[string]struct{}, len(subscriber.SubscribedChannels))
	for _, id := range subscriber.SubscribedChannels {
		followed[id] = struct{}{}
	}

	videos := make([]models.Video, 0)
	for _, video := range s.data.Videos {
		if _, ok := followed[video.ChannelID]; ok {
			videos = append(videos, video)
		}
	}
	sortVideosNewestFirst(videos)
	return videos, nil
}

// UpdateVideo edits metadata. Only the uploading channel may edit, and a
// replaced thumbnail destroys the previous stored object.
func (s *Storage) UpdateVideo(id, callerID string, update VideoUpdate) (models.Video, error) {
	var newThumb mediaObject
	if update.Thumbnail != nil && len(update.Thumbnail.Data) > 0 {
		uploaded, err := s.uploadMedia("thumbnails", update.Thumbnail)
		if err != nil {
			return models.Video{}, err
		}
		newThumb = uploaded
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updatedData := cloneDataset(s.data)

	video, ok := updatedData.Videos[id]
	if !ok {
		s.deleteMedia(newThumb.Key)
		return models.Video{}, notFoundErr("video %s not found", id)
	}
	if video.ChannelID != callerID {
		s.deleteMedia(newThumb.Key)
		return models.Video{}, forbiddenErr("you do not own this video")
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			s.deleteMedia(newThumb.Key)
			return models.Video{}, invalidErr("title cannot be empty")
		}
		video.Title = title
	}
	if update.Description != nil {
		video.Description = strings.TrimSpace(*update.Description)
	}
	if update.Category != nil {
		video.Category = strings.TrimSpace(*update.Category)
	}
	if update.Tags != nil {
		video.Tags = normalizeTags(*update.Tags)
	}

	var replacedThumbKey string
	if newThumb.Key != "" || newThumb.URL != "" {
		replacedThumbKey = video.ThumbnailKey
		video.ThumbnailURL = newThumb.URL
		video.ThumbnailKey = newThumb.Key
	}

	updatedData.Videos[id] = video
	if err := s.persistDataset(updatedData); err != nil {
		s.deleteMedia(newThumb.Key)
		return models.Video{}, err
	}
	s.data = updatedData

	if replacedThumbKey != "" {
		s.deleteMedia(replacedThumbKey)
	}

	return video, nil
}

// DeleteVideo removes the record together with its comments, playlist
// references, and stored media objects. Only the uploader may delete.
func (s *Storage) DeleteVideo(id, callerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updatedData := cloneDataset(s.data)

	video, ok := updatedData.Videos[id]
	if !ok {
		return notFoundErr("video %s not found", id)
	}
	if video.ChannelID != callerID {
		return forbiddenErr("you do not own this video")
	}

	delete(updatedData.Videos, id)
	for commentID, comment := range updatedData.Comments {
		if comment.VideoID == id {
			delete(updatedData.Comments, commentID)
		}
	}
	for playlistID, playlist := range updatedData.Playlists {
		if playlist.Contains(id) {
			playlist.VideoIDs = removeID(playlist.VideoIDs, id)
			playlist.UpdatedAt = nowUTC()
			updatedData.Playlists[playlistID] = playlist
		}
	}

	if err := s.persistDataset(updatedData); err != nil {
		return err
	}
	s.data = updatedData

	s.deleteMedia(video.VideoKey, video.ThumbnailKey)
	return nil
}

// LikeVideo records a like. A like while a dislike is present moves the
// account across; repeating the same reaction is rejected.
func (s *Storage) LikeVideo(videoID, channelID string) (models.Video, error) {
	return s.react(videoID, channelID, true)
}

// DislikeVideo mirrors LikeVideo in the other direction.
func (s *Storage) DislikeVideo(videoID, channelID string) (models.Video, error) {
	return s.react(videoID, channelID, false)
}

func (s *Storage) react(videoID, channelID string, like bool) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updatedData := cloneDataset(s.data)

	video, ok := updatedData.Videos[videoID]
	if !ok {
		return models.Video{}, notFoundErr("video %s not found", videoID)
	}
	if _, ok := updatedData.Channels[channelID]; !ok {
		return models.Video{}, notFoundErr("channel %s not found", channelID)
	}

	switch video.Reaction(channelID) {
	case "liked":
		if like {
			return models.Video{}, conflictErr("video already liked")
		}
		video.LikedBy = removeID(video.LikedBy, channelID)
		video.DislikedBy = append(video.DislikedBy, channelID)
	case "disliked":
		if !like {
			return models.Video{}, conflictErr("video already disliked")
		}
		video.DislikedBy = removeID(video.DislikedBy, channelID)
		video.LikedBy = append(video.LikedBy, channelID)
	default:
		if like {
			video.LikedBy = append(video.LikedBy, channelID)
		} else {
			video.DislikedBy = append(video.DislikedBy, channelID)
		}
	}
	video.Likes = len(video.LikedBy)
	video.Dislikes = len(video.DislikedBy)

	updatedData.Videos[videoID] = video
	if err := s.persistDataset(updatedData); err != nil {
		return models.Video{}, err
	}
	s.data = updatedData

	return video, nil
}

// AddView increments the view counter. No identity is required, so the same
// viewer counts every time.
func (s *Storage) AddView(videoID string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updatedData := cloneDataset(s.data)

	video, ok := updatedData.Videos[videoID]
	if !ok {
		return models.Video{}, notFoundErr("video %s not found", videoID)
	}
	video.Views++

	updatedData.Videos[videoID] = video
	if err := s.persistDataset(updatedData); err != nil {
		return models.Video{}, err
	}
	s.data = updatedData

	return video, nil
}
