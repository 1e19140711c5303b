package resultlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ruslano69/launchdash/pkg/source"
)

// Config - настройки публикации результата загрузки датасета.
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Name     string `yaml:"name"` // имя датасета в ключах Redis
	TTL      int    `yaml:"ttl"`  // seconds, 0 = без срока
}

// LoadResult is the dataset state published after a load attempt.
//
// Redis-ключи:
//
//	SET  launchdash:dataset:<name>:state  <JSON>  EX <ttl>
//	PUB  launchdash:dataset:<name>
type LoadResult struct {
	Dataset     string    `json:"dataset"`
	Source      string    `json:"source"`
	Status      string    `json:"status"` // "success" | "failed"
	Rows        int       `json:"rows"`
	Sites       []string  `json:"sites,omitempty"`
	Checksum    string    `json:"checksum,omitempty"`
	RawChecksum string    `json:"raw_checksum,omitempty"`
	LoadedAt    time.Time `json:"loaded_at"`
	DurationMs  int64     `json:"duration_ms"`
	Error       *string   `json:"error,omitempty"`
}

// NewLoadResult builds the published state from a load outcome.
// res may be nil when loadErr is set.
func NewLoadResult(dataset, src string, res *source.Result, loadErr error, at time.Time) LoadResult {
	out := LoadResult{Dataset: dataset, Source: src, LoadedAt: at.UTC()}
	if loadErr != nil {
		out.Status = "failed"
		msg := loadErr.Error()
		out.Error = &msg
		return out
	}
	out.Status = "success"
	if res != nil {
		out.Source = res.Source
		out.Rows = res.Rows
		out.Sites = res.Table.Sites()
		out.Checksum = res.Checksum
		out.RawChecksum = res.RawChecksum
		out.DurationMs = res.Duration.Milliseconds()
	}
	return out
}

// StateKey returns the polling key for dataset name.
func StateKey(name string) string { return fmt.Sprintf("launchdash:dataset:%s:state", name) }

// Channel returns the pub/sub channel for dataset name.
func Channel(name string) string { return fmt.Sprintf("launchdash:dataset:%s", name) }

// RedisPublisher публикует результат загрузки в Redis
type RedisPublisher struct {
	client *redis.Client
	config Config
}

// NewRedisPublisher создает новый Redis publisher на основе конфигурации
func NewRedisPublisher(config Config) *RedisPublisher {
	if config.Name == "" {
		config.Name = "launches"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	return &RedisPublisher{client: client, config: config}
}

// Publish stores result under the state key and announces it on the channel.
func (p *RedisPublisher) Publish(ctx context.Context, result LoadResult) error {
	if result.Dataset == "" {
		result.Dataset = p.config.Name
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	ttl := time.Duration(p.config.TTL) * time.Second

	if err := p.client.Set(ctx, StateKey(p.config.Name), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	if err := p.client.Publish(ctx, Channel(p.config.Name), payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
