package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pastebin-lite/pastebin-lite/models"
)

var _ PasteStore = (*RedisStore)(nil)

// RedisStore implements PasteStore using Redis. Pastes are stored as JSON
// documents; key TTLs handle storage reclamation while availability is still
// evaluated against the embedded expiry timestamp.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts *redis.Options) (*RedisStore, error) {
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

// redisPaste is the JSON document stored under the paste key. Timestamps are
// epoch milliseconds so the consume script can compare them as numbers.
type redisPaste struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	CreatedAtMs int64  `json:"created_at_ms"`
	ExpiresAtMs *int64 `json:"expires_at_ms,omitempty"`
	MaxViews    *int   `json:"max_views,omitempty"`
	ViewCount   int    `json:"view_count"`
}

// consumeViewScript checks availability and increments the view counter in
// one script invocation; Redis runs scripts atomically, which serializes
// concurrent viewers of the same paste.
var consumeViewScript = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
	return 'NOTFOUND'
end
local paste = cjson.decode(data)
local now = tonumber(ARGV[1])
if paste.expires_at_ms and now >= paste.expires_at_ms then
	return 'EXPIRED'
end
if paste.max_views and paste.view_count >= paste.max_views then
	return 'VIEWLIMIT'
end
paste.view_count = paste.view_count + 1
local encoded = cjson.encode(paste)
local ttl = redis.call('PTTL', KEYS[1])
if ttl > 0 then
	redis.call('SET', KEYS[1], encoded, 'PX', ttl)
else
	redis.call('SET', KEYS[1], encoded)
end
return encoded
`)

// Create stores a paste under its key, failing if the key already exists.
func (r *RedisStore) Create(ctx context.Context, paste *models.Paste) error {
	data, err := json.Marshal(toRedisPaste(paste))
	if err != nil {
		return err
	}

	var ttl time.Duration
	if paste.ExpiresAt != nil {
		// Key TTL is reclamation only; a non-positive remainder just means
		// the availability check will reject the paste immediately.
		if until := time.Until(*paste.ExpiresAt); until > 0 {
			ttl = until
		}
	}

	ok, err := r.client.SetNX(ctx, pasteRedisKey(paste.ID), data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrDuplicateID
	}
	return nil
}

// Get retrieves a paste without consuming a view.
func (r *RedisStore) Get(ctx context.Context, id string) (*models.Paste, error) {
	data, err := r.client.Get(ctx, pasteRedisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeRedisPaste(data)
}

// ConsumeView runs the atomic consume script and maps its sentinel replies
// to store errors.
func (r *RedisStore) ConsumeView(ctx context.Context, id string, now time.Time) (*models.Paste, error) {
	res, err := consumeViewScript.Run(ctx, r.client,
		[]string{pasteRedisKey(id)}, now.UnixMilli()).Result()
	if err != nil {
		return nil, err
	}

	reply, ok := res.(string)
	if !ok {
		return nil, errors.New("unexpected reply type from consume script")
	}
	switch reply {
	case "NOTFOUND":
		return nil, ErrNotFound
	case "EXPIRED":
		return nil, ErrExpired
	case "VIEWLIMIT":
		return nil, ErrViewLimit
	}
	return decodeRedisPaste([]byte(reply))
}

// Delete removes the paste key; unknown ids are ignored.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, pasteRedisKey(id)).Err()
}

// PurgeExpired is a no-op: key TTLs handle reclamation.
func (r *RedisStore) PurgeExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

// Ping verifies the Redis connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func pasteRedisKey(id string) string {
	return "paste:" + id
}

func toRedisPaste(paste *models.Paste) *redisPaste {
	doc := &redisPaste{
		ID:          paste.ID,
		Content:     paste.Content,
		CreatedAtMs: paste.CreatedAt.UnixMilli(),
		MaxViews:    paste.MaxViews,
		ViewCount:   paste.ViewCount,
	}
	if paste.ExpiresAt != nil {
		ms := paste.ExpiresAt.UnixMilli()
		doc.ExpiresAtMs = &ms
	}
	return doc
}

func decodeRedisPaste(data []byte) (*models.Paste, error) {
	var doc redisPaste
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	paste := &models.Paste{
		ID:        doc.ID,
		Content:   doc.Content,
		CreatedAt: time.UnixMilli(doc.CreatedAtMs).UTC(),
		MaxViews:  doc.MaxViews,
		ViewCount: doc.ViewCount,
	}
	if doc.ExpiresAtMs != nil {
		expiry := time.UnixMilli(*doc.ExpiresAtMs).UTC()
		paste.ExpiresAt = &expiry
	}
	return paste, nil
}
