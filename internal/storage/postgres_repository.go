package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
)

// postgresRepository keeps the relationship tables normalised: subscriptions,
// reactions, and playlist membership live in their own tables with composite
// primary keys, so the duplicate guards the JSON store enforces in code fall
// out of the schema here. Multi-row mutations run inside transactions.
type postgresRepository struct {
	pool        *pgxpool.Pool
	cfg         PostgresConfig
	mediaClient mediaClient
}

// pgQuerier is satisfied by both *pgxpool.Pool and pgx.Tx so loaders can run
// inside or outside a transaction.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPostgresRepository opens a Postgres-backed repository and ensures the
// schema exists.
func NewPostgresRepository(cfg PostgresConfig) (*postgresRepository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = cfg.MaxConnections
	}
	if cfg.MinConnections > 0 {
		poolCfg.MinConns = cfg.MinConnections
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckInterval > 0 {
		poolCfg.HealthCheckPeriod = cfg.HealthCheckInterval
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.ApplicationName != "" {
		if poolCfg.ConnConfig.RuntimeParams == nil {
			poolCfg.ConnConfig.RuntimeParams = make(map[string]string)
		}
		poolCfg.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	repo := &postgresRepository{
		pool:        pool,
		cfg:         cfg,
		mediaClient: newMediaClient(cfg.MediaStorage),
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

// Close shuts the pool down, honouring the context deadline.
func (r *postgresRepository) Close(ctx context.Context) error {
	if r == nil || r.pool == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		r.pool.Close()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (r *postgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *postgresRepository) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.cfg.operationTimeout())
}

func (r *postgresRepository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const channelColumns = "id, channel_name, email, phone, password_hash, logo_url, logo_key, created_at"

func scanChannel(row pgx.Row) (models.Channel, error) {
	var channel models.Channel
	err := row.Scan(
		&channel.ID,
		&channel.ChannelName,
		&channel.Email,
		&channel.Phone,
		&channel.PasswordHash,
		&channel.LogoURL,
		&channel.LogoKey,
		&channel.CreatedAt,
	)
	if err != nil {
		return models.Channel{}, err
	}
	channel.CreatedAt = channel.CreatedAt.UTC()
	return channel, nil
}

func (r *postgresRepository) loadChannel(ctx context.Context, q pgQuerier, id string) (models.Channel, error) {
	channel, err := scanChannel(q.QueryRow(ctx, "SELECT "+channelColumns+" FROM channels WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Channel{}, notFoundErr("channel %s not found", id)
	}
	if err != nil {
		return models.Channel{}, fmt.Errorf("load channel %s: %w", id, err)
	}
	if err := r.fillChannelGraph(ctx, q, &channel); err != nil {
		return models.Channel{}, err
	}
	return channel, nil
}

func (r *postgresRepository) fillChannelGraph(ctx context.Context, q pgQuerier, channel *models.Channel) error {
	subscribedBy, err := collectIDs(q.Query(ctx, "SELECT subscriber_id FROM subscriptions WHERE target_id = $1 ORDER BY created_at", channel.ID))
	if err != nil {
		return fmt.Errorf("load subscribers of %s: %w", channel.ID, err)
	}
	subscribedChannels, err := collectIDs(q.Query(ctx, "SELECT target_id FROM subscriptions WHERE subscriber_id = $1 ORDER BY created_at", channel.ID))
	if err != nil {
		return fmt.Errorf("load subscriptions of %s: %w", channel.ID, err)
	}
	channel.SubscribedBy = subscribedBy
	channel.SubscribedChannels = subscribedChannels
	channel.Subscribers = len(subscribedBy)
	return nil
}

func collectIDs(rows pgx.Rows, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresRepository) channelExists(ctx context.Context, q pgQuerier, id string) error {
	var one int
	err := q.QueryRow(ctx, "SELECT 1 FROM channels WHERE id = $1", id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFoundErr("channel %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("check channel %s: %w", id, err)
	}
	return nil
}

func (r *postgresRepository) CreateChannel(params CreateChannelParams) (models.Channel, error) {
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
		logo, err = r.uploadMedia("logos", params.Logo)
		if err != nil {
			return models.Channel{}, err
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
		SubscribedBy:       []string{},
		SubscribedChannels: []string{},
		CreatedAt:          nowUTC(),
	}

	ctx, cancel := r.opCtx()
	defer cancel()
	_, err = r.pool.Exec(ctx,
		"INSERT INTO channels (id, channel_name, email, phone, password_hash, logo_url, logo_key, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		channel.ID, channel.ChannelName, channel.Email, channel.Phone, channel.PasswordHash, channel.LogoURL, channel.LogoKey, channel.CreatedAt,
	)
	if isUniqueViolation(err) {
		r.deleteMedia(logo.Key)
		return models.Channel{}, conflictErr("email %s already registered", email)
	}
	if err != nil {
		r.deleteMedia(logo.Key)
		return models.Channel{}, fmt.Errorf("insert channel: %w", err)
	}
	return channel, nil
}

func (r *postgresRepository) AuthenticateChannel(email, password string) (models.Channel, error) {
	if password == "" {
		return models.Channel{}, ErrInvalidCredentials
	}
	ctx, cancel := r.opCtx()
	defer cancel()

	channel, err := scanChannel(r.pool.QueryRow(ctx,
		"SELECT "+channelColumns+" FROM channels WHERE email = $1", normalizeEmail(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Channel{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Channel{}, fmt.Errorf("load channel by email: %w", err)
	}
	if err := verifyPassword(channel.PasswordHash, password); err != nil {
		return models.Channel{}, err
	}
	if err := r.fillChannelGraph(ctx, r.pool, &channel); err != nil {
		return models.Channel{}, err
	}
	return channel, nil
}

func (r *postgresRepository) GetChannel(id string) (models.Channel, bool) {
	ctx, cancel := r.opCtx()
	defer cancel()
	channel, err := r.loadChannel(ctx, r.pool, id)
	if err != nil {
		return models.Channel{}, false
	}
	return channel, true
}

func (r *postgresRepository) UpdateChannel(id string, update ChannelUpdate) (models.Channel, error) {
	var newLogo mediaObject
	if update.Logo != nil && len(update.Logo.Data) > 0 {
		uploaded, err := r.uploadMedia("logos", update.Logo)
		if err != nil {
			return models.Channel{}, err
		}
		newLogo = uploaded
	}

	ctx, cancel := r.opCtx()
	defer cancel()

	var result models.Channel
	var replacedLogoKey string
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		channel, err := scanChannel(tx.QueryRow(ctx,
			"SELECT "+channelColumns+" FROM channels WHERE id = $1 FOR UPDATE", id))
		if errors.Is(err, pgx.ErrNoRows) {
			return notFoundErr("channel %s not found", id)
		}
		if err != nil {
			return fmt.Errorf("load channel %s: %w", id, err)
		}

		if update.ChannelName != nil {
			name := strings.TrimSpace(*update.ChannelName)
			if name == "" {
				return invalidErr("channelName cannot be empty")
			}
			channel.ChannelName = name
		}
		if update.Email != nil {
			email := normalizeEmail(*update.Email)
			if email == "" {
				return invalidErr("email cannot be empty")
			}
			channel.Email = email
		}
		if update.Phone != nil {
			channel.Phone = strings.TrimSpace(*update.Phone)
		}
		if update.Password != nil {
			if err := verifyPassword(channel.PasswordHash, update.Password.Old); err != nil {
				return invalidErr("current password is incorrect")
			}
			if update.Password.New == "" {
				return invalidErr("new password is required")
			}
			hashed, err := hashPassword(update.Password.New)
			if err != nil {
				return err
			}
			channel.PasswordHash = hashed
		}
		if newLogo.Key != "" || newLogo.URL != "" {
			replacedLogoKey = channel.LogoKey
			channel.LogoURL = newLogo.URL
			channel.LogoKey = newLogo.Key
		}

		_, err = tx.Exec(ctx,
			"UPDATE channels SET channel_name = $2, email = $3, phone = $4, password_hash = $5, logo_url = $6, logo_key = $7 WHERE id = $1",
			channel.ID, channel.ChannelName, channel.Email, channel.Phone, channel.PasswordHash, channel.LogoURL, channel.LogoKey,
		)
		if isUniqueViolation(err) {
			return conflictErr("email %s already in use", channel.Email)
		}
		if err != nil {
			return fmt.Errorf("update channel %s: %w", id, err)
		}
		if err := r.fillChannelGraph(ctx, tx, &channel); err != nil {
			return err
		}
		result = channel
		return nil
	})
	if err != nil {
		r.deleteMedia(newLogo.Key)
		return models.Channel{}, err
	}
	if replacedLogoKey != "" {
		r.deleteMedia(replacedLogoKey)
	}
	return result, nil
}

func (r *postgresRepository) Subscribe(subscriberID, targetID string) (models.Channel, error) {
	if subscriberID == targetID {
		return models.Channel{}, invalidErr("cannot subscribe to your own channel")
	}
	ctx, cancel := r.opCtx()
	defer cancel()

	var target models.Channel
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := r.channelExists(ctx, tx, subscriberID); err != nil {
			return err
		}
		if err := r.channelExists(ctx, tx, targetID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			"INSERT INTO subscriptions (subscriber_id, target_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
			subscriberID, targetID, nowUTC(),
		)
		if err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return conflictErr("already subscribed to this channel")
		}
		target, err = r.loadChannel(ctx, tx, targetID)
		return err
	})
	if err != nil {
		return models.Channel{}, err
	}
	return target, nil
}

func (r *postgresRepository) Unsubscribe(subscriberID, targetID string) (models.Channel, error) {
	ctx, cancel := r.opCtx()
	defer cancel()

	var target models.Channel
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := r.channelExists(ctx, tx, subscriberID); err != nil {
			return err
		}
		if err := r.channelExists(ctx, tx, targetID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			"DELETE FROM subscriptions WHERE subscriber_id = $1 AND target_id = $2",
			subscriberID, targetID,
		)
		if err != nil {
			return fmt.Errorf("delete subscription: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return conflictErr("not subscribed to this channel")
		}
		target, err = r.loadChannel(ctx, tx, targetID)
		return err
	})
	if err != nil {
		return models.Channel{}, err
	}
	return target, nil
}

func (r *postgresRepository) ListSubscribedChannels(subscriberID string) ([]models.Channel, error) {
	ctx, cancel := r.opCtx()
	defer cancel()

	if err := r.channelExists(ctx, r.pool, subscriberID); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		"SELECT c."+strings.ReplaceAll(channelColumns, ", ", ", c.")+
			" FROM channels c JOIN subscriptions s ON s.target_id = c.id WHERE s.subscriber_id = $1 ORDER BY c.created_at",
		subscriberID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subscribed channels: %w", err)
	}
	defer rows.Close()

	channels := []models.Channel{}
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range channels {
		if err := r.fillChannelGraph(ctx, r.pool, &channels[i]); err != nil {
			return nil, err
		}
	}
	return channels, nil
}

const videoColumns = "id, channel_id, title, description, category, tags, video_url, video_key, thumbnail_url, thumbnail_key, views, created_at"

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	err := row.Scan(
		&video.ID,
		&video.ChannelID,
		&video.Title,
		&video.Description,
		&video.Category,
		&video.Tags,
		&video.VideoURL,
		&video.VideoKey,
		&video.ThumbnailURL,
		&video.ThumbnailKey,
		&video.Views,
		&video.CreatedAt,
	)
	if err != nil {
		return models.Video{}, err
	}
	if video.Tags == nil {
		video.Tags = []string{}
	}
	video.CreatedAt = video.CreatedAt.UTC()
	return video, nil
}

func (r *postgresRepository) fillVideoReactions(ctx context.Context, q pgQuerier, video *models.Video) error {
	rows, err := q.Query(ctx,
		"SELECT channel_id, reaction FROM video_reactions WHERE video_id = $1 ORDER BY created_at", video.ID)
	if err != nil {
		return fmt.Errorf("load reactions for %s: %w", video.ID, err)
	}
	defer rows.Close()

	video.LikedBy = []string{}
	video.DislikedBy = []string{}
	for rows.Next() {
		var channelID, reaction string
		if err := rows.Scan(&channelID, &reaction); err != nil {
			return err
		}
		if reaction == "like" {
			video.LikedBy = append(video.LikedBy, channelID)
		} else {
			video.DislikedBy = append(video.DislikedBy, channelID)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	video.Likes = len(video.LikedBy)
	video.Dislikes = len(video.DislikedBy)
	return nil
}

func (r *postgresRepository) loadVideo(ctx context.Context, q pgQuerier, id string) (models.Video, error) {
	video, err := scanVideo(q.QueryRow(ctx, "SELECT "+videoColumns+" FROM videos WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Video{}, notFoundErr("video %s not found", id)
	}
	if err != nil {
		return models.Video{}, fmt.Errorf("load video %s: %w", id, err)
	}
	if err := r.fillVideoReactions(ctx, q, &video); err != nil {
		return models.Video{}, err
	}
	return video, nil
}

func (r *postgresRepository) listVideos(ctx context.Context, query string, args ...any) ([]models.Video, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range videos {
		if err := r.fillVideoReactions(ctx, r.pool, &videos[i]); err != nil {
			return nil, err
		}
	}
	return videos, nil
}

func (r *postgresRepository) CreateVideo(params CreateVideoParams) (models.Video, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return models.Video{}, invalidErr("title is required")
	}
	if len(params.Video.Data) == 0 {
		return models.Video{}, invalidErr("video file is required")
	}

	ctx, cancel := r.opCtx()
	defer cancel()

	if err := r.channelExists(ctx, r.pool, params.ChannelID); err != nil {
		return models.Video{}, err
	}

	videoObject, err := r.uploadMedia("videos", &params.Video)
	if err != nil {
		return models.Video{}, err
	}
	var thumbObject mediaObject
	if len(params.Thumbnail.Data) > 0 {
		thumbObject, err = r.uploadMedia("thumbnails", &params.Thumbnail)
		if err != nil {
			r.deleteMedia(videoObject.Key)
			return models.Video{}, err
		}
	}

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

	_, err = r.pool.Exec(ctx,
		"INSERT INTO videos (id, channel_id, title, description, category, tags, video_url, video_key, thumbnail_url, thumbnail_key, views, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)",
		video.ID, video.ChannelID, video.Title, video.Description, video.Category, video.Tags,
		video.VideoURL, video.VideoKey, video.ThumbnailURL, video.ThumbnailKey, video.Views, video.CreatedAt,
	)
	if err != nil {
		r.deleteMedia(videoObject.Key, thumbObject.Key)
		return models.Video{}, fmt.Errorf("insert video: %w", err)
	}
	return video, nil
}

func (r *postgresRepository) GetVideo(id string) (models.Video, bool) {
	ctx, cancel := r.opCtx()
	defer cancel()
	video, err := r.loadVideo(ctx, r.pool, id)
	if err != nil {
		return models.Video{}, false
	}
	return video, true
}

func (r *postgresRepository) GetVideoWithOwner(id string) (VideoWithOwner, bool) {
	ctx, cancel := r.opCtx()
	defer cancel()
	video, err := r.loadVideo(ctx, r.pool, id)
	if err != nil {
		return VideoWithOwner{}, false
	}
	result := VideoWithOwner{Video: video}
	err = r.pool.QueryRow(ctx,
		"SELECT channel_name, logo_url FROM channels WHERE id = $1", video.ChannelID).
		Scan(&result.ChannelName, &result.LogoURL)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return VideoWithOwner{}, false
	}
	return result, true
}

func (r *postgresRepository) ListChannelVideos(channelID string) ([]models.Video, error) {
	ctx, cancel := r.opCtx()
	defer cancel()
	if err := r.channelExists(ctx, r.pool, channelID); err != nil {
		return nil, err
	}
	return r.listVideos(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE channel_id = $1 ORDER BY created_at DESC", channelID)
}

func (r *postgresRepository) ListVideosByCategory(category string) ([]models.Video, error) {
	normalized := strings.ToLower(strings.TrimSpace(category))
	if normalized == "" {
		return nil, invalidErr("category is required")
	}
	ctx, cancel := r.opCtx()
	defer cancel()
	return r.listVideos(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE lower(category) = $1 ORDER BY created_at DESC", normalized)
}

func (r *postgresRepository) ListSubscribedVideos(subscriberID string) ([]models.Video, error) {
	ctx, cancel := r.opCtx()
	defer cancel()
	if err := r.channelExists(ctx, r.pool, subscriberID); err != nil {
		return nil, err
	}
	return r.listVideos(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE channel_id IN (SELECT target_id FROM subscriptions WHERE subscriber_id = $1) ORDER BY created_at DESC",
		subscriberID)
}

func (r *postgresRepository) UpdateVideo(id, callerID string, update VideoUpdate) (models.Video, error) {
	var newThumb mediaObject
	if update.Thumbnail != nil && len(update.Thumbnail.Data) > 0 {
		uploaded, err := r.uploadMedia("thumbnails", update.Thumbnail)
		if err != nil {
			return models.Video{}, err
		}
		newThumb = uploaded
	}

	ctx, cancel := r.opCtx()
	defer cancel()

	var result models.Video
	var replacedThumbKey string
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		video, err := scanVideo(tx.QueryRow(ctx,
			"SELECT "+videoColumns+" FROM videos WHERE id = $1 FOR UPDATE", id))
		if errors.Is(err, pgx.ErrNoRows) {
			return notFoundErr("video %s not found", id)
		}
		if err != nil {
			return fmt.Errorf("load video %s: %w", id, err)
		}
		if video.ChannelID != callerID {
			return forbiddenErr("you do not own this video")
		}

		if update.Title != nil {
			title := strings.TrimSpace(*update.Title)
			if title == "" {
				return invalidErr("title cannot be empty")
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
		if newThumb.Key != "" || newThumb.URL != "" {
			replacedThumbKey = video.ThumbnailKey
			video.ThumbnailURL = newThumb.URL
			video.ThumbnailKey = newThumb.Key
		}

		_, err = tx.Exec(ctx,
			"UPDATE videos SET title = $2, description = $3, category = $4, tags = $5, thumbnail_url = $6, thumbnail_key = $7 WHERE id = $1",
			video.ID, video.Title, video.Description, video.Category, video.Tags, video.ThumbnailURL, video.ThumbnailKey,
		)
		if err != nil {
			return fmt.Errorf("update video %s: %w", id, err)
		}
		if err := r.fillVideoReactions(ctx, tx, &video); err != nil {
			return err
		}
		result = video
		return nil
	})
	if err != nil {
		r.deleteMedia(newThumb.Key)
		return models.Video{}, err
	}
	if replacedThumbKey != "" {
		r.deleteMedia(replacedThumbKey)
	}
	return result, nil
}

func (r *postgresRepository) DeleteVideo(id, callerID string) error {
	ctx, cancel := r.opCtx()
	defer cancel()

	var videoKey, thumbKey string
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var channelID string
		err := tx.QueryRow(ctx,
			"SELECT channel_id, video_key, thumbnail_key FROM videos WHERE id = $1 FOR UPDATE", id,
		).Scan(&channelID, &videoKey, &thumbKey)
		if errors.Is(err, pgx.ErrNoRows) {
			return notFoundErr("video %s not found", id)
		}
		if err != nil {
			return fmt.Errorf("load video %s: %w", id, err)
		}
		if channelID != callerID {
			return forbiddenErr("you do not own this video")
		}
		if _, err := tx.Exec(ctx, "DELETE FROM videos WHERE id = $1", id); err != nil {
			return fmt.Errorf("delete video %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.deleteMedia(videoKey, thumbKey)
	return nil
}

func (r *postgresRepository) LikeVideo(videoID, channelID string) (models.Video, error) {
	return r.react(videoID, channelID, "like")
}

func (r *postgresRepository) DislikeVideo(videoID, channelID string) (models.Video, error) {
	return r.react(videoID, channelID, "dislike")
}

func (r *postgresRepository) react(videoID, channelID, reaction string) (models.Video, error) {
	ctx, cancel := r.opCtx()
	defer cancel()

	var result models.Video
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var exists int
		err := tx.QueryRow(ctx, "SELECT 1 FROM videos WHERE id = $1", videoID).Scan(&exists)
		if errors.Is(err, pgx.ErrNoRows) {
			return notFoundErr("video %s not found", videoID)
		}
		if err != nil {
			return fmt.Errorf("check video %s: %w", videoID, err)
		}
		if err := r.channelExists(ctx, tx, channelID); err != nil {
			return err
		}

		var current string
		err = tx.QueryRow(ctx,
			"SELECT reaction FROM video_reactions WHERE video_id = $1 AND channel_id = $2 FOR UPDATE",
			videoID, channelID,
		).Scan(&current)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			_, err = tx.Exec(ctx,
				"INSERT INTO video_reactions (video_id, channel_id, reaction, created_at) VALUES ($1, $2, $3, $4)",
				videoID, channelID, reaction, nowUTC())
			if err != nil {
				return fmt.Errorf("insert reaction: %w", err)
			}
		case err != nil:
			return fmt.Errorf("load reaction: %w", err)
		case current == reaction:
			return conflictErr("video already %sd", reaction)
		default:
			_, err = tx.Exec(ctx,
				"UPDATE video_reactions SET reaction = $3, created_at = $4 WHERE video_id = $1 AND channel_id = $2",
				videoID, channelID, reaction, nowUTC())
			if err != nil {
				return fmt.Errorf("update reaction: %w", err)
			}
		}

		result, err = r.loadVideo(ctx, tx, videoID)
		return err
	})
	if err != nil {
		return models.Video{}, err
	}
	return result, nil
}

func (r *postgresRepository) AddView(videoID string) (models.Video, error) {
	ctx, cancel := r.opCtx()
	defer cancel()

	video, err := scanVideo(r.pool.QueryRow(ctx,
		"UPDATE videos SET views = views + 1 WHERE id = $1 RETURNING "+videoColumns, videoID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Video{}, notFoundErr("video %s not found", videoID)
	}
	if err != nil {
		return models.Video{}, fmt.Errorf("increment views for %s: %w", videoID, err)
	}
	if err := r.fillVideoReactions(ctx, r.pool, &video); err != nil {
		return models.Video{}, err
	}
	return video, nil
}

const commentColumns = "id, video_id, channel_id, comment_text, created_at, updated_at"

func scanComment(row pgx.Row) (models.Comment, error) {
	var comment models.Comment
	err := row.Scan(
		&comment.ID,
		&comment.VideoID,
		&comment.ChannelID,
		&comment.Text,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return models.Comment{}, err
	}
	comment.CreatedAt = comment.CreatedAt.UTC()
	comment.UpdatedAt = comment.UpdatedAt.UTC()
	return comment, nil
}

func (r *postgresRepository) CreateComment(videoID, channelID, text string) (models.Comment, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.Comment{}, invalidErr("commentText is required")
	}
	ctx, cancel := r.opCtx()
	defer cancel()

	var exists int
	err := r.pool.QueryRow(ctx, "SELECT 1 FROM videos WHERE id = $1", videoID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Comment{}, notFoundErr("video %s not found", videoID)
	}
	if err != nil {
		return models.Comment{}, fmt.Errorf("check video %s: %w", videoID, err)
	}
	if err := r.channelExists(ctx, r.pool, channelID); err != nil {
		return models.Comment{}, err
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
	_, err = r.pool.Exec(ctx,
		"INSERT INTO comments (id, video_id, channel_id, comment_text, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)",
		comment.ID, comment.VideoID, comment.ChannelID, comment.Text, comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		return models.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return comment, nil
}

func (r *postgresRepository) ListVideoComments(videoID string) ([]CommentWithAuthor, error) {
	ctx, cancel := r.opCtx()
	defer cancel()

	var exists int
	err := r.pool.QueryRow(ctx, "SELECT 1 FROM videos WHERE id = $1", videoID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFoundErr("video %s not found", videoID)
	}
	if err != nil {
		return nil, fmt.Errorf("check video %s: %w", videoID, err)
	}

	rows, err := r.pool.Query(ctx,
		"SELECT c.id, c.video_id, c.channel_id, c.comment_text, c.created_at, c.updated_at, ch.channel_name, ch.logo_url"+
			" FROM comments c JOIN channels ch ON ch.id = c.channel_id"+
			" WHERE c.video_id = $1 ORDER BY c.created_at DESC", videoID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []CommentWithAuthor{}
	for rows.Next() {
		var entry CommentWithAuthor
		err := rows.Scan(
			&entry.ID,
			&entry.VideoID,
			&entry.ChannelID,
			&entry.Text,
			&entry.CreatedAt,
			&entry.UpdatedAt,
			&entry.ChannelName,
			&entry.LogoURL,
		)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		entry.UpdatedAt = entry.UpdatedAt.UTC()
		comments = append(comments, entry)
	}
	return comments, rows.Err()
}

func (r *postgresRepository) UpdateComment(id, callerID, text string) (models.Comment, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.Comment{}, invalidErr("commentText is required")
	}
	ctx, cancel := r.opCtx()
	defer cancel()

	var result models.Comment
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		comment, err := scanComment(tx.QueryRow(ctx,
			"SELECT "+commentColumns+" FROM comments WHERE id = $1 FOR UPDATE", id))
		if errors.Is(err, pgx.ErrNoRows) {
			return notFoundErr("comment %s not found", id)
		}
		if err != nil {
			return fmt.Errorf("load comment %s: %w", id, err)
		}
		if comment.ChannelID != callerID {
			return forbiddenErr("you do not own this comment")
		}
		comment.Text = trimmed
		comment.UpdatedAt = nowUTC()
		if _, err := tx.Exec(ctx,
			"UPDATE comments SET comment_text = $2, updated_at = $3 WHERE id = $1",
			comment.ID, comment.Text, comment.UpdatedAt); err != nil {
			return fmt.Errorf("update comment %s: %w", id, err)
		}
		result = comment
		return nil
	})
	if err != nil {
		return models.Comment{}, err
	}
	return result, nil
}

func (r *postgresRepository) DeleteComment(id, callerID string) error {
	ctx, cancel := r.opCtx()
	defer cancel()

	return r.withTx(ctx, func(tx pgx.Tx) error {
		var channelID string
		err := tx.QueryRow(ctx, "SELECT channel_id FROM comments WHERE id = $1 FOR UPDATE", id).Scan(&channelID)
		if errors.Is(err, pgx.ErrNoRows) {
			return notFoundErr("comment %s not found", id)
		}
		if err != nil {
			return fmt.Errorf("load comment %s: %w", id, err)
		}
		if channelID != callerID {
			return forbiddenErr("you do not own this comment")
		}
		if _, err := tx.Exec(ctx, "DELETE FROM comments WHERE id = $1", id); err != nil {
			return fmt.Errorf("delete comment %s: %w", id, err)
		}
		return nil
	})
}

const playlistColumns = "id, owner_id, title, created_at, updated_at"

func scanPlaylist(row pgx.Row) (models.Playlist, error) {
	var playlist models.Playlist
	err := row.Scan(
		&playlist.ID,
		&playlist.OwnerID,
		&playlist.Title,
		&playlist.CreatedAt,
		&playlist.UpdatedAt,
	)
	if err != nil {
		return models.Playlist{}, err
	}
	playlist.CreatedAt = playlist.CreatedAt.UTC()
	playlist.UpdatedAt = playlist.UpdatedAt.UTC()
	return playlist, nil
}

func (r *postgresRepository) fillPlaylistVideos(ctx context.Context, q pgQuerier, playlist *models.Playlist) error {
	videoIDs, err := collectIDs(q.Query(ctx,
		"SELECT video_id FROM playlist_videos WHERE playlist_id = $1 ORDER BY position", playlist.ID))
	if err != nil {
		return fmt.Errorf("load playlist videos for %s: %w", playlist.ID, err)
	}
	playlist.VideoIDs = videoIDs
	return nil
}

func (r *postgresRepository) CreatePlaylist(ownerID, videoID, title string) (models.Playlist, error) {
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return models.Playlist{}, invalidErr("title is required")
	}
	ctx, cancel := r.opCtx()
	defer cancel()

	now := nowUTC()
	playlist := models.Playlist{
		ID:        generateID(),
		OwnerID:   ownerID,
		Title:     trimmedTitle,
		VideoIDs:  []string{videoID},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := r.channelExists(ctx, tx, ownerID); err != nil {
			return err
		}
		var exists int
		err := tx.QueryRow(ctx, "SELECT 1 FROM videos WHERE id = $1", videoID).Scan(&exists)
		if errors.Is(err, pgx.ErrNoRows) {
			return notFoundErr("video %s not found", videoID)
		}
		if err != nil {
			return fmt.Errorf("check video %s: %w", videoID, err)
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO playlists (id, owner_id, title, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)",
			playlist.ID, playlist.OwnerID, playlist.Title, playlist.CreatedAt, playlist.UpdatedAt); err != nil {
			return fmt.Errorf("insert playlist: %w", err)
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO playlist_videos (playlist_id, video_id, position) VALUES ($1, $2, 0)",
			playlist.ID, videoID); err != nil {
			return fmt.Errorf("insert playlist video: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Playlist{}, err
	}
	return playlist, nil
}

func (r *postgresRepository) GetPlaylist(id string) (models.Playlist, bool) {
	ctx, cancel := r.opCtx()
	defer cancel()

	playlist, err := scanPlaylist(r.pool.QueryRow(ctx,
		"SELECT "+playlistColumns+" FROM playlists WHERE id = $1", id))
	if err != nil {
		return models.Playlist{}, false
	}
	if err := r.fillPlaylistVideos(ctx, r.pool, &playlist); err != nil {
		return models.Playlist{}, false
	}
	return playlist, true
}

func (r *postgresRepository) ListPlaylists(page, limit int) (PlaylistPage, error) {
	if page <= 0 {
		page = defaultPlaylistPage
	}
	if limit <= 0 {
		limit = defaultPlaylistLimit
	}
	ctx, cancel := r.opCtx()
	defer cancel()

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM playlists").Scan(&total); err != nil {
		return PlaylistPage{}, fmt.Errorf("count playlists: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		"SELECT "+playlistColumns+" FROM playlists ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, (page-1)*limit)
	if err != nil {
		return PlaylistPage{}, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	playlists := []models.Playlist{}
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return PlaylistPage{}, err
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return PlaylistPage{}, err
	}
	for i := range playlists {
		if err := r.fillPlaylistVideos(ctx, r.pool, &playlists[i]); err != nil {
			return PlaylistPage{}, err
		}
	}

	return PlaylistPage{
		Playlists: playlists,
		Page:      page,
		Limit:     limit,
		Total:     total,
		HasMore:   page*limit < total,
	}, nil
}

func (r *postgresRepository) UpdatePlaylist(id, callerID string, update PlaylistUpdate) (models.Playlist, error) {
	ctx, cancel := r.opCtx()
	defer cancel()

	var result models.Playlist
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		playlist, err := scanPlaylist(tx.QueryRow(ctx,
			"SELECT "+playlistColumns+" FROM playlists WHERE id = $1 FOR UPDATE", id))
		if errors.Is(err, pgx.ErrNoRows) {
			return notFoundErr("playlist %s not found", id)
		}
		if err != nil {
			return fmt.Errorf("load playlist %s: %w", id, err)
		}
		if playlist.OwnerID != callerID {
			return forbiddenErr("you do not own this playlist")
		}

		if update.Title != nil {
			title := strings.TrimSpace(*update.Title)
			if title == "" {
				return invalidErr("title cannot be empty")
			}
			playlist.Title = title
		}
		if update.VideoID != nil {
			videoID := strings.TrimSpace(*update.VideoID)
			if videoID == "" {
				return invalidErr("videoId is required")
			}
			var exists int
			err := tx.QueryRow(ctx, "SELECT 1 FROM videos WHERE id = $1", videoID).Scan(&exists)
			if errors.Is(err, pgx.ErrNoRows) {
				return notFoundErr("video %s not found", videoID)
			}
			if err != nil {
				return fmt.Errorf("check video %s: %w", videoID, err)
			}
			tag, err := tx.Exec(ctx,
				"INSERT INTO playlist_videos (playlist_id, video_id, position) VALUES ($1, $2, (SELECT COALESCE(MAX(position) + 1, 0) FROM playlist_videos WHERE playlist_id = $1)) ON CONFLICT DO NOTHING",
				id, videoID)
			if err != nil {
				return fmt.Errorf("insert playlist video: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return conflictErr("video already in playlist")
			}
		}

		playlist.UpdatedAt = nowUTC()
		if _, err := tx.Exec(ctx,
			"UPDATE playlists SET title = $2, updated_at = $3 WHERE id = $1",
			playlist.ID, playlist.Title, playlist.UpdatedAt); err != nil {
			return fmt.Errorf("update playlist %s: %w", id, err)
		}
		if err := r.fillPlaylistVideos(ctx, tx, &playlist); err != nil {
			return err
		}
		result = playlist
		return nil
	})
	if err != nil {
		return models.Playlist{}, err
	}
	return result, nil
}

func (r *postgresRepository) RemovePlaylistVideo(id, callerID, videoID string) (models.Playlist, error) {
	trimmed := strings.TrimSpace(videoID)
	if trimmed == "" {
		return models.Playlist{}, invalidErr("videoId is required")
	}
	ctx, cancel := r.opCtx()
	defer cancel()

	var result models.Playlist
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		playlist, err := scanPlaylist(tx.QueryRow(ctx,
			"SELECT "+playlistColumns+" FROM playlists WHERE id = $1 FOR UPDATE", id))
		if errors.Is(err, pgx.ErrNoRows) {
			return notFoundErr("playlist %s not found", id)
		}
		if err != nil {
			return fmt.Errorf("load playlist %s: %w", id, err)
		}
		if playlist.OwnerID != callerID {
			return forbiddenErr("you do not own this playlist")
		}

		tag, err := tx.Exec(ctx,
			"DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2", id, trimmed)
		if err != nil {
			return fmt.Errorf("delete playlist video: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return notFoundErr("video %s not in playlist", trimmed)
		}

		playlist.UpdatedAt = nowUTC()
		if _, err := tx.Exec(ctx,
			"UPDATE playlists SET updated_at = $2 WHERE id = $1", id, playlist.UpdatedAt); err != nil {
			return fmt.Errorf("update playlist %s: %w", id, err)
		}
		if err := r.fillPlaylistVideos(ctx, tx, &playlist); err != nil {
			return err
		}
		result = playlist
		return nil
	})
	if err != nil {
		return models.Playlist{}, err
	}
	return result, nil
}

func (r *postgresRepository) DeletePlaylist(id, callerID string) error {
	ctx, cancel := r.opCtx()
	defer cancel()

	return r.withTx(ctx, func(tx pgx.Tx) error {
		var ownerID string
		err := tx.QueryRow(ctx, "SELECT owner_id FROM playlists WHERE id = $1 FOR UPDATE", id).Scan(&ownerID)
		if errors.Is(err, pgx.ErrNoRows) {
			return notFoundErr("playlist %s not found", id)
		}
		if err != nil {
			return fmt.Errorf("load playlist %s: %w", id, err)
		}
		if ownerID != callerID {
			return forbiddenErr("you do not own this playlist")
		}
		var members int
		if err := tx.QueryRow(ctx,
			"SELECT count(*) FROM playlist_videos WHERE playlist_id = $1", id).Scan(&members); err != nil {
			return fmt.Errorf("count playlist videos: %w", err)
		}
		if members > 0 {
			return conflictErr("playlist is not empty")
		}
		if _, err := tx.Exec(ctx, "DELETE FROM playlists WHERE id = $1", id); err != nil {
			return fmt.Errorf("delete playlist %s: %w", id, err)
		}
		return nil
	})
}

func (r *postgresRepository) uploadMedia(prefix string, upload *MediaUpload) (mediaObject, error) {
	if upload == nil || len(upload.Data) == 0 {
		return mediaObject{}, nil
	}
	key := fmt.Sprintf("%s/%s", prefix, generateID())
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.MediaStorage.requestTimeout())
	defer cancel()
	object, err := r.mediaClient.Upload(ctx, key, upload.ContentType, upload.Data)
	if err != nil {
		return mediaObject{}, fmt.Errorf("store media object: %w", err)
	}
	return object, nil
}

func (r *postgresRepository) deleteMedia(keys ...string) {
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.MediaStorage.requestTimeout())
		_ = r.mediaClient.Delete(ctx, key)
		cancel()
	}
}

var _ Repository = (*postgresRepository)(nil)
