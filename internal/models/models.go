package models

import "time"

// Channel is a user account and its public channel at the same time. The
// subscription graph is denormalised: SubscribedBy lists the accounts
// following this channel while SubscribedChannels lists the channels this
// account follows. Subscribers mirrors len(SubscribedBy) at all times.
type Channel struct {
	ID                 string    `json:"id"`
	ChannelName        string    `json:"channelName"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone,omitempty"`
	PasswordHash       string    `json:"passwordHash,omitempty"`
	LogoURL            string    `json:"logoUrl,omitempty"`
	LogoKey            string    `json:"logoId,omitempty"`
	Subscribers        int       `json:"subscribers"`
	SubscribedBy       []string  `json:"subscribedBy"`
	SubscribedChannels []string  `json:"subscribedChannels"`
	CreatedAt          time.Time `json:"createdAt"`
}

// IsSubscribedBy reports whether the given account currently follows the channel.
func (c Channel) IsSubscribedBy(channelID string) bool {
	for _, id := range c.SubscribedBy {
		if id == channelID {
			return true
		}
	}
	return false
}

// Video is an uploaded asset. LikedBy and DislikedBy are disjoint per account;
// Likes and Dislikes mirror the set sizes. Views is a best-effort monotonic
// counter with no identity gating.
type Video struct {
	ID           string    `json:"id"`
	ChannelID    string    `json:"channelId"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category,omitempty"`
	Tags         []string  `json:"tags"`
	VideoURL     string    `json:"videoUrl,omitempty"`
	VideoKey     string    `json:"videoId,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	ThumbnailKey string    `json:"thumbnailId,omitempty"`
	Likes        int       `json:"likes"`
	Dislikes     int       `json:"dislikes"`
	LikedBy      []string  `json:"likedBy"`
	DislikedBy   []string  `json:"dislikedBy"`
	Views        int64     `json:"views"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Reaction reports the caller's current reaction state for the video.
func (v Video) Reaction(channelID string) string {
	for _, id := range v.LikedBy {
		if id == channelID {
			return "liked"
		}
	}
	for _, id := range v.DislikedBy {
		if id == channelID {
			return "disliked"
		}
	}
	return "none"
}

type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	ChannelID string    `json:"channelId"`
	Text      string    `json:"commentText"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Playlist holds an ordered, duplicate-free sequence of video ids. Only the
// owner may rename it or edit membership, and it can be deleted only once
// VideoIDs is empty.
type Playlist struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	VideoIDs  []string  `json:"videoIds"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Contains reports whether the playlist already holds the video.
func (p Playlist) Contains(videoID string) bool {
	for _, id := range p.VideoIDs {
		if id == videoID {
			return true
		}
	}
	return false
}
