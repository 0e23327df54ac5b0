package storage

import (
	"context"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
)

// Repository exposes the datastore operations required by the API handlers.
// Implementations must uphold the relationship invariants documented on the
// model types: subscriber counters mirror the subscribedBy sets, reaction sets
// stay disjoint with counters in lockstep, and playlist membership stays
// duplicate-free.
type Repository interface {
	Ping(ctx context.Context) error

	CreateChannel(params CreateChannelParams) (models.Channel, error)
	AuthenticateChannel(email, password string) (models.Channel, error)
	GetChannel(id string) (models.Channel, bool)
	UpdateChannel(id string, update ChannelUpdate) (models.Channel, error)
	Subscribe(subscriberID, targetID string) (models.Channel, error)
	Unsubscribe(subscriberID, targetID string) (models.Channel, error)
	ListSubscribedChannels(subscriberID string) ([]models.Channel, error)

	CreateVideo(params CreateVideoParams) (models.Video, error)
	GetVideo(id string) (models.Video, bool)
	GetVideoWithOwner(id string) (VideoWithOwner, bool)
	ListChannelVideos(channelID string) ([]models.Video, error)
	ListVideosByCategory(category string) ([]models.Video, error)
	ListSubscribedVideos(subscriberID string) ([]models.Video, error)
	UpdateVideo(id, callerID string, update VideoUpdate) (models.Video, error)
	DeleteVideo(id, callerID string) error
	LikeVideo(videoID, channelID string) (models.Video, error)
	DislikeVideo(videoID, channelID string) (models.Video, error)
	AddView(videoID string) (models.Video, error)

	CreateComment(videoID, channelID, text string) (models.Comment, error)
	ListVideoComments(videoID string) ([]CommentWithAuthor, error)
	UpdateComment(id, callerID, text string) (models.Comment, error)
	DeleteComment(id, callerID string) error

	CreatePlaylist(ownerID, videoID, title string) (models.Playlist, error)
	GetPlaylist(id string) (models.Playlist, bool)
	ListPlaylists(page, limit int) (PlaylistPage, error)
	UpdatePlaylist(id, callerID string, update PlaylistUpdate) (models.Playlist, error)
	RemovePlaylistVideo(id, callerID, videoID string) (models.Playlist, error)
	DeletePlaylist(id, callerID string) error
}

// MediaUpload carries a media payload destined for object storage.
type MediaUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateChannelParams captures the attributes set when registering an account.
type CreateChannelParams struct {
	ChannelName string
	Email       string
	Phone       string
	Password    string
	Logo        *MediaUpload
}

// PasswordChange requires the current password before accepting a new one.
type PasswordChange struct {
	Old string
	New string
}

// ChannelUpdate describes the mutable fields of a channel profile.
type ChannelUpdate struct {
	ChannelName *string
	Email       *string
	Phone       *string
	Password    *PasswordChange
	Logo        *MediaUpload
}

// CreateVideoParams captures the information required to store an upload.
type CreateVideoParams struct {
	ChannelID   string
	Title       string
	Description string
	Category    string
	Tags        []string
	Video       MediaUpload
	Thumbnail   MediaUpload
}

// VideoUpdate describes the mutable metadata of a video.
type VideoUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Tags        *[]string
	Thumbnail   *MediaUpload
}

// PlaylistUpdate optionally renames the playlist and/or appends one video.
type PlaylistUpdate struct {
	Title   *string
	VideoID *string
}

// VideoWithOwner is a video joined with the owning channel's display fields,
// so clients can render the uploader without a second lookup.
type VideoWithOwner struct {
	models.Video
	ChannelName string `json:"channelName"`
	LogoURL     string `json:"logoUrl,omitempty"`
}

// CommentWithAuthor is a comment joined with the author's display fields.
type CommentWithAuthor struct {
	models.Comment
	ChannelName string `json:"channelName"`
	LogoURL     string `json:"logoUrl,omitempty"`
}

// PlaylistPage is one page of the playlist listing.
type PlaylistPage struct {
	Playlists []models.Playlist `json:"playlists"`
	Page      int               `json:"page"`
	Limit     int               `json:"limit"`
	Total     int               `json:"total"`
	HasMore   bool              `json:"hasMore"`
}

var _ Repository = (*Storage)(nil)
