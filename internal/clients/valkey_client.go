package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

var (
	valkeyInstance *ValkeyClient
	valkeyOnce     sync.Once
)

// ValkeyClient fronts the analytics endpoints with a short-TTL cache.
// The cache is an optimization only: every operation degrades to a miss
// on any error.
type ValkeyClient struct {
	Client valkey.Client
}

func InitValkey() (*ValkeyClient, error) {
	var initErr error
	valkeyOnce.Do(func() {
		valkeyAddr := os.Getenv("VALKEY_INIT_ADDRESS")
		valkeyPassword := os.Getenv("VALKEY_PASSWORD")
		useTLS := os.Getenv("VALKEY_TLS") == "true"

		opts := valkey.ClientOption{
			InitAddress: []string{
				valkeyAddr,
			},
			Password:         valkeyPassword,
			ConnWriteTimeout: 5 * time.Second,
			SelectDB:         0,
		}

		if useTLS {
			opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
		}

		client, err := valkey.NewClient(opts)
		if err != nil {
			initErr = fmt.Errorf("[ValkeyClient] failed to create Valkey client: %w", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()

		if res := client.Do(ctx, client.B().Ping().Build()); res.Error() != nil {
			initErr = fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", res.Error())
			return
		}

		slog.Info("[ValkeyClient] Successfully connected to valkey")
		valkeyInstance = &ValkeyClient{Client: client}
	})
	if initErr != nil {
		return nil, initErr
	}
	return valkeyInstance, nil
}

func CloseValkey() {
	if valkeyInstance != nil {
		valkeyInstance.Client.Close()
	}
}

// CacheJSON stores value under key with the given TTL. Nil receivers are
// no-ops so callers need no "cache configured?" branches.
func (vc *ValkeyClient) CacheJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if vc == nil {
		return
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		slog.Warn("[ValkeyClient] Failed to encode cache value",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return
	}

	cmd := vc.Client.B().Set().Key(key).Value(string(encoded)).
		Ex(ttl).Build()
	if res := vc.Client.Do(ctx, cmd); res.Error() != nil {
		slog.Warn("[ValkeyClient] Failed to cache value",
			slog.String("key", key),
			slog.String("error", res.Error().Error()))
	}
}

// FetchJSON loads key into out, reporting whether a cached value was
// found and decoded.
func (vc *ValkeyClient) FetchJSON(ctx context.Context, key string, out any) bool {
	if vc == nil {
		return false
	}
	res := vc.Client.Do(ctx, vc.Client.B().Get().Key(key).Build())
	if res.Error() != nil {
		return false
	}
	raw, err := res.ToString()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), out) == nil
}

// InvalidateAnalytics drops all cached analytics payloads, used after a
// record append or delete changes the underlying data.
func (vc *ValkeyClient) InvalidateAnalytics(ctx context.Context, keys ...string) {
	if vc == nil || len(keys) == 0 {
		return
	}
	if res := vc.Client.Do(ctx, vc.Client.B().Del().Key(keys...).Build()); res.Error() != nil {
		slog.Warn("[ValkeyClient] Failed to invalidate analytics cache",
			slog.String("error", res.Error().Error()))
	}
}
