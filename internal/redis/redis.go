package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	redisClient "github.com/go-redis/redis/v8"
	"github.com/sukalov/chordsync/internal/lyrics"
	"github.com/sukalov/chordsync/internal/songbook"
)

const (
	seenKey     = "hymns:seen"
	songbookKey = "hymns:songbook"
	versionKey  = "hymns:version"
)

type DBManager struct {
	client *redisClient.Client
}

// NewDBManager connects to redis. addr is either a full redis:// or rediss://
// URL, or a bare host:port, in which case TLS is used like on the hosted
// instance.
func NewDBManager(addr, password string) (*DBManager, error) {
	opt, err := redisClient.ParseURL(redisURL(addr, password))
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if password != "" && opt.Password == "" {
		opt.Password = password
	}
	return &DBManager{client: redisClient.NewClient(opt)}, nil
}

// redisURL turns a bare host:port into a rediss:// URL with the password
// escaped. Full URLs are returned unchanged.
func redisURL(addr, password string) string {
	if strings.Contains(addr, "://") {
		return addr
	}
	u := url.URL{Scheme: "rediss", Host: addr, User: url.User("default")}
	if password != "" {
		u.User = url.UserPassword("default", password)
	}
	return u.String()
}

func NewDBManagerFromClient(client *redisClient.Client) *DBManager {
	return &DBManager{client: client}
}

func (redis *DBManager) Close() error {
	return redis.client.Close()
}

func (redis *DBManager) Ping(ctx context.Context) error {
	return redis.client.Ping(ctx).Err()
}

// MarkSeen records remoteID and reports whether it was new
func (redis *DBManager) MarkSeen(ctx context.Context, remoteID string) (bool, error) {
	added, err := redis.client.SAdd(ctx, seenKey, remoteID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark %s as seen: %w", remoteID, err)
	}
	return added == 1, nil
}

// ResetSeen forgets every recorded id, so the next crawl starts fresh
func (redis *DBManager) ResetSeen(ctx context.Context) error {
	return redis.client.Del(ctx, seenKey).Err()
}

// SetSongbook stores the whole songbook as a JSON snapshot
func (redis *DBManager) SetSongbook(ctx context.Context, songs []lyrics.Song) error {
	songsJSON, err := json.Marshal(songs)
	if err != nil {
		return err
	}
	return redis.client.Set(ctx, songbookKey, songsJSON, 0).Err()
}

// GetSongbook returns the stored snapshot, or an empty list when there is none
func (redis *DBManager) GetSongbook(ctx context.Context) ([]lyrics.Song, error) {
	data, err := redis.client.Get(ctx, songbookKey).Bytes()
	if err != nil {
		if err == redisClient.Nil {
			return []lyrics.Song{}, nil
		}
		return nil, err
	}
	var songs []lyrics.Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

func (redis *DBManager) SetVersion(ctx context.Context, version songbook.Version) error {
	versionJSON, err := json.Marshal(version)
	if err != nil {
		return err
	}
	return redis.client.Set(ctx, versionKey, versionJSON, 0).Err()
}

// GetVersion returns the stored version, and false when none was stored yet
func (redis *DBManager) GetVersion(ctx context.Context) (songbook.Version, bool, error) {
	var version songbook.Version
	data, err := redis.client.Get(ctx, versionKey).Bytes()
	if err != nil {
		if err == redisClient.Nil {
			return version, false, nil
		}
		return version, false, err
	}
	if err := json.Unmarshal(data, &version); err != nil {
		return version, false, err
	}
	return version, true, nil
}
