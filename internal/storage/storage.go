package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

var (
	// ErrInvalidCredentials is returned when a login attempt fails. Callers
	// must not leak whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type dataset struct {
	Channels  map[string]models.Channel  `json:"channels"`
	Videos    map[string]models.Video    `json:"videos"`
	Comments  map[string]models.Comment  `json:"comments"`
	Playlists map[string]models.Playlist `json:"playlists"`
}

// Storage is the JSON-file backed repository. Every mutation clones the
// dataset, applies the change, persists the clone atomically, and only then
// swaps it in, so a failed write never leaves partial state behind. The
// two-record subscribe mutation therefore commits as a single dataset write.
type Storage struct {
	mu       sync.RWMutex
	filePath string
	data     dataset
	// persistOverride allows tests to intercept persist operations.
	persistOverride func(dataset) error
	mediaConfig     MediaStorageConfig
	mediaClient     mediaClient
}

// Option mutates storage configuration.
type Option func(*Storage)

// WithMediaStorage configures the external bucket used for video, thumbnail,
// and logo payloads. Without it uploads are accepted but no durable URL is
// produced.
func WithMediaStorage(cfg MediaStorageConfig) Option {
	return func(s *Storage) {
		s.mediaConfig = cfg
	}
}

func newDataset() dataset {
	return dataset{
		Channels:  make(map[string]models.Channel),
		Videos:    make(map[string]models.Video),
		Comments:  make(map[string]models.Comment),
		Playlists: make(map[string]models.Playlist),
	}
}

func (s *Storage) ensureDatasetInitializedLocked() {
	if s.data.Channels == nil {
		s.data.Channels = make(map[string]models.Channel)
	}
	if s.data.Videos == nil {
		s.data.Videos = make(map[string]models.Video)
	}
	if s.data.Comments == nil {
		s.data.Comments = make(map[string]models.Comment)
	}
	if s.data.Playlists == nil {
		s.data.Playlists = make(map[string]models.Playlist)
	}
}

func NewStorage(path string, opts ...Option) (*Storage, error) {
	store := &Storage{filePath: path}
	for _, opt := range opts {
		opt(store)
	}
	store.mediaClient = newMediaClient(store.mediaConfig)
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Storage) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	file, err := os.Open(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		s.data = newDataset()
		return nil
	} else if err != nil {
		return fmt.Errorf("open store file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&s.data); err != nil {
		if errors.Is(err, io.EOF) {
			s.data = newDataset()
			return nil
		}
		return fmt.Errorf("decode store file: %w", err)
	}

	s.ensureDatasetInitializedLocked()

	return nil
}

func (s *Storage) persistDataset(data dataset) error {
	if s.persistOverride != nil {
		if err := s.persistOverride(data); err != nil {
			return err
		}
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "store-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpPath := tmpFile.Name()
	success := false
	defer func() {
		if !success {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	encoder := json.NewEncoder(tmpFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("flush store file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmpPath, s.filePath); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	success = true
	return nil
}

func cloneDataset(src dataset) dataset {
	clone := newDataset()

	for id, channel := range src.Channels {
		cloned := channel
		cloned.SubscribedBy = append([]string(nil), channel.SubscribedBy...)
		cloned.SubscribedChannels = append([]string(nil), channel.SubscribedChannels...)
		clone.Channels[id] = cloned
	}
	for id, video := range src.Videos {
		cloned := video
		cloned.Tags = append([]string(nil), video.Tags...)
		cloned.LikedBy = append([]string(nil), video.LikedBy...)
		cloned.DislikedBy = append([]string(nil), video.DislikedBy...)
		clone.Videos[id] = cloned
	}
	for id, comment := range src.Comments {
		clone.Comments[id] = comment
	}
	for id, playlist := range src.Playlists {
		cloned := playlist
		cloned.VideoIDs = append([]string(nil), playlist.VideoIDs...)
		clone.Playlists[id] = cloned
	}
	return clone
}

// Ping verifies the backing file is still reachable.
func (s *Storage) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := os.Stat(filepath.Dir(s.filePath)); err != nil {
		return fmt.Errorf("stat data dir: %w", err)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func verifyPassword(encodedHash, candidate string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(candidate)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return []string{}
	}
	normalized := make([]string, 0, len(tags))
	seen := make(map[string]struct{})
	for _, tag := range tags {
		trimmed := strings.TrimSpace(strings.ToLower(tag))
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}

func removeID(ids []string, target string) []string {
	filtered := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == target {
			continue
		}
		filtered = append(filtered, id)
	}
	return filtered
}

func sortVideosNewestFirst(videos []models.Video) {
	sort.Slice(videos, func(i, j int) bool {
		return videos[i].CreatedAt.After(videos[j].CreatedAt)
	})
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
