package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
)

// CreateChannel registers a new account. Emails are unique across channels.
func (s *Storage) CreateChannel(params CreateChannelParams) (models.Channel, error) {
	name := strings.TrimSpace(params.ChannelName)
	if name == "" {
		return models.Channel{}, invalidErr("channelName is required")
	}
	email := normalizeEmail(params.Email)
	if email == "" {
		return models.Channel{}, invalidErr("email is required")
	}
	if params.Password == "" {
		return models.Channel{}, invalidErr("password is required")
	}

	passwordHash, err := hashPassword(params.Password)
	if err != nil {
		return models.Channel{}, err
	}

	var logo mediaObject
	if params.Logo != nil && len(params.Logo.Data) > 0 {
		logo, err = s.uploadMedia("logos", params.Logo)
		if err != nil {
			return models.Channel{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data.Channels {
		if existing.Email == email {
			return models.Channel{}, conflictErr("email %s already registered", email)
		}
	}

	channel := models.Channel{
		ID:                 generateID(),
		ChannelName:        name,
		Email:              email,
		Phone:              strings.TrimSpace(params.Phone),
		PasswordHash:       passwordHash,
		LogoURL:            logo.URL,
		LogoKey:            logo.Key,
		Subscribers:        0,
		SubscribedBy:       []string{},
		SubscribedChannels: []string{},
		CreatedAt:          nowUTC(),
	}

	updatedData := cloneDataset(s.data)
	updatedData.Channels[channel.ID] = channel
	if err := s.persistDataset(updatedData); err != nil {
		return models.Channel{}, err
	}
	s.data = updatedData

	return channel, nil
}

// AuthenticateChannel verifies credentials and returns the matching account.
func (s *Storage) AuthenticateChannel(email, password string) (models.Channel, error) {
	if password == "" {
		return models.Channel{}, ErrInvalidCredentials
	}
	normalized := normalizeEmail(email)

	s.mu.RLock()
	var channel models.Channel
	found := false
	for _, existing := range s.data.Channels {
		if existing.Email == normalized {
			channel = existing
			found = true
			break
		}
	}
	s.mu.RUnlock()

	if !found {
		return models.Channel{}, ErrInvalidCredentials
	}
	if err := verifyPassword(channel.PasswordHash, password); err != nil {
		return models.Channel{}, err
	}
	return channel, nil
}

func (s *Storage) GetChannel(id string) (models.Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	channel, ok := s.data.Channels[id]
	return channel, ok
}

// UpdateChannel mutates profile fields. A password change requires the current
// password; a replaced logo destroys the previous stored object.
func (s *Storage) UpdateChannel(id string, update ChannelUpdate) (models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updatedData := cloneDataset(s.data)

	channel, ok := updatedData.Channels[id]
	if !ok {
		return models.Channel{}, notFoundErr("channel %s not found", id)
	}

	if update.ChannelName != nil {
		name := strings.TrimSpace(*update.ChannelName)
		if name == "" {
			return models.Channel{}, invalidErr("channelName cannot be empty")
		}
		channel.ChannelName = name
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if email == "" {
			return models.Channel{}, invalidErr("email cannot be empty")
		}
		for existingID, existing := range updatedData.Channels {
			if existingID == id {
				continue
			}
			if existing.Email == email {
				return models.Channel{}, conflictErr("email %s already in use", email)
			}
		}
		channel.Email = email
	}
	if update.Phone != nil {
		channel.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.Password != nil {
		if err := verifyPassword(channel.PasswordHash, update.Password.Old); err != nil {
			return models.Channel{}, invalidErr("current password is incorrect")
		}
		if update.Password.New == "" {
			return models.Channel{}, invalidErr("new password is required")
		}
		hashed, err := hashPassword(update.Password.New)
		if err != nil {
			return models.Channel{}, err
		}
		channel.PasswordHash = hashed
	}

	var replacedLogoKey string
	if update.Logo != nil && len(update.Logo.Data) > 0 {
		logo, err := s.uploadMedia("logos", update.Logo)
		if err != nil {
			return models.Channel{}, err
		}
		replacedLogoKey = channel.LogoKey
		channel.LogoURL = logo.URL
		channel.LogoKey = logo.Key
	}

	updatedData.Channels[id] = channel
	if err := s.persistDataset(updatedData); err != nil {
		return models.Channel{}, err
	}
	s.data = updatedData

	if replacedLogoKey != "" {
		s.deleteMedia(replacedLogoKey)
	}

	return channel, nil
}

// Subscribe records that the caller follows the target channel. Both sides of
// the relationship and the target's subscriber counter change in one dataset
// write, so a persistence failure leaves neither record touched.
func (s *Storage) Subscribe(subscriberID, targetID string) (models.Channel, error) {
	if subscriberID == targetID {
		return models.Channel{}, invalidErr("cannot subscribe to your own channel")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updatedData := cloneDataset(s.data)

	subscriber, ok := updatedData.Channels[subscriberID]
	if !ok {
		return models.Channel{}, notFoundErr("channel %s not found", subscriberID)
	}
	target, ok := updatedData.Channels[targetID]
	if !ok {
		return models.Channel{}, notFoundErr("channel %s not found", targetID)
	}
	if target.IsSubscribedBy(subscriberID) {
		return models.Channel{}, conflictErr("already subscribed to this channel")
	}

	target.SubscribedBy = append(target.SubscribedBy, subscriberID)
	target.Subscribers = len(target.SubscribedBy)
	subscriber.SubscribedChannels = append(subscriber.SubscribedChannels, targetID)

	updatedData.Channels[targetID] = target
	updatedData.Channels[subscriberID] = subscriber
	if err := s.persistDataset(updatedData); err != nil {
		return models.Channel{}, err
	}
	s.data = updatedData

	return target, nil
}

// Unsubscribe removes the follow relationship from both records symmetrically.
func (s *Storage) Unsubscribe(subscriberID, targetID string) (models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updatedData := cloneDataset(s.data)

	subscriber, ok := updatedData.Channels[subscriberID]
	if !ok {
		return models.Channel{}, notFoundErr("channel %s not found", subscriberID)
	}
	target, ok := updatedData.Channels[targetID]
	if !ok {
		return models.Channel{}, notFoundErr("channel %s not found", targetID)
	}
	if !target.IsSubscribedBy(subscriberID) {
		return models.Channel{}, conflictErr("not subscribed to this channel")
	}

	target.SubscribedBy = removeID(target.SubscribedBy, subscriberID)
	target.Subscribers = len(target.SubscribedBy)
	subscriber.SubscribedChannels = removeID(subscriber.SubscribedChannels, targetID)

	updatedData.Channels[targetID] = target
	updatedData.Channels[subscriberID] = subscriber
	if err := s.persistDataset(updatedData); err != nil {
		return models.Channel{}, err
	}
	s.data = updatedData

	return target, nil
}

// ListSubscribedChannels returns the channels the account follows, ordered by
// channel creation time.
func (s *Storage) ListSubscribedChannels(subscriberID string) ([]models.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subscriber, ok := s.data.Channels[subscriberID]
	if !ok {
		return nil, notFoundErr("channel %s not found", subscriberID)
	}

	channels := make([]models.Channel, 0, len(subscriber.SubscribedChannels))
	for _, id := range subscriber.SubscribedChannels {
		if channel, exists := s.data.Channels[id]; exists {
			channels = append(channels, channel)
		}
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].CreatedAt.Before(channels[j].CreatedAt)
	})
	return channels, nil
}

func (s *Storage) uploadMedia(prefix string, upload *MediaUpload) (mediaObject, error) {
	if upload == nil || len(upload.Data) == 0 {
		return mediaObject{}, nil
	}
	key := fmt.Sprintf("%s/%s", prefix, generateID())
	ctx, cancel := context.WithTimeout(context.Background(), s.mediaConfig.requestTimeout())
	defer cancel()
	object, err := s.mediaClient.Upload(ctx, key, upload.ContentType, upload.Data)
	if err != nil {
		return mediaObject{}, fmt.Errorf("store media object: %w", err)
	}
	return object, nil
}

// deleteMedia is best-effort: a dangling object must not fail the mutation
// that already persisted.
func (s *Storage) deleteMedia(keys ...string) {
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.mediaConfig.requestTimeout())
		_ = s.mediaClient.Delete(ctx, key)
		cancel()
	}
}
