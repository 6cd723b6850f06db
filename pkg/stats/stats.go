package stats

import (
	"fmt"
	"golang.org/x/net/context"
	"sync/atomic"

	"FaceDetection/pkg/redis"
)

const keyPrefix = "face_detection:stats:"

const (
	keyTotal     = keyPrefix + "total"
	keySucceeded = keyPrefix + "succeeded"
	keyFailed    = keyPrefix + "failed"
)

type Snapshot struct {
	Total     int64 `json:"total"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

type IStats interface {
	Record(ctx context.Context, success bool) error
	Snapshot(ctx context.Context) (Snapshot, error)
}

// New returns a Redis backed recorder when client is set, otherwise an
// in-process one.
func New(client redis.IRedis) IStats {
	if client == nil {
		return &memoryStats{}
	}
	return &redisStats{client: client}
}

type memoryStats struct {
	total     atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
}

func (m *memoryStats) Record(_ context.Context, success bool) error {
	m.total.Add(1)
	if success {
		m.succeeded.Add(1)
	} else {
		m.failed.Add(1)
	}
	return nil
}

func (m *memoryStats) Snapshot(_ context.Context) (Snapshot, error) {
	return Snapshot{
		Total:     m.total.Load(),
		Succeeded: m.succeeded.Load(),
		Failed:    m.failed.Load(),
	}, nil
}

type redisStats struct {
	client redis.IRedis
}

func (r *redisStats) Record(ctx context.Context, success bool) error {
	if _, err := r.client.Incr(ctx, keyTotal); err != nil {
		return fmt.Errorf("increment %s: %w", keyTotal, err)
	}

	key := keyFailed
	if success {
		key = keySucceeded
	}
	if _, err := r.client.Incr(ctx, key); err != nil {
		return fmt.Errorf("increment %s: %w", key, err)
	}
	return nil
}

func (r *redisStats) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	targets := []struct {
		key string
		dst *int64
	}{
		{keyTotal, &snap.Total},
		{keySucceeded, &snap.Succeeded},
		{keyFailed, &snap.Failed},
	}

	for _, t := range targets {
		n, err := r.client.GetInt(ctx, t.key)
		if err != nil {
			return Snapshot{}, fmt.Errorf("read %s: %w", t.key, err)
		}
		*t.dst = n
	}
	return snap, nil
}
