package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"netrecon/internal/core/model"
)

// JSONFileSink writes the finished ScanResult to a single JSON file,
// replacing any previous contents. The simplest orchestrator.ResultSink;
// the CLI does not use it and writes its own output instead.
type JSONFileSink struct {
	Path string
}

func (s *JSONFileSink) Submit(_ context.Context, result *model.ScanResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scan result: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("write scan result: %w", err)
	}
	return nil
}

// RedisStreamConfig mirrors the connection knobs of the teacher's
// Redis client construction, trimmed to what a stream publisher needs.
type RedisStreamConfig struct {
	Addr         string
	Password     string
	Database     int
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	Stream       string
}

// RedisStreamSink publishes the finished ScanResult onto a Redis
// stream, letting a fleet of agents feed one collector without each
// agent knowing who consumes its results.
type RedisStreamSink struct {
	client *redis.Client
	stream string
}

// NewRedisStreamSink dials cfg.Addr and pings it once so a
// misconfigured sink fails fast at startup rather than on the first
// Submit of a long scan.
func NewRedisStreamSink(ctx context.Context, cfg RedisStreamConfig) (*RedisStreamSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.Database,
		DialTimeout:  cfg.DialTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	stream := cfg.Stream
	if stream == "" {
		stream = "netrecon:results"
	}
	return &RedisStreamSink{client: client, stream: stream}, nil
}

func (s *RedisStreamSink) Submit(ctx context.Context, result *model.ScanResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal scan result: %w", err)
	}
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{"target": result.Target, "payload": data},
	}).Err()
}

func (s *RedisStreamSink) Close() error {
	return s.client.Close()
}
