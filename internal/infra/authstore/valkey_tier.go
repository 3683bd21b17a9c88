// Package authstore implements the dual-tier AuthStore: a synchronous
// file-backed primary tier and a fire-and-forget
// Valkey-backed secondary (backup) tier.
package authstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"
)

// ValkeyConfig configures the secondary-tier connection. The env var that
// feeds this is still named MONGODB_URI so existing deployments keep
// their connection-string variable unchanged.
type ValkeyConfig struct {
	Address        string
	Password       string
	DB             int
	KeyPrefix      string
	ConnectTimeout time.Duration
}

// secondaryTier is the backup-tier contract; a fake implementation backs
// the package's tests so they don't require a live Valkey instance.
type secondaryTier interface {
	Get(ctx context.Context, sessionID, fileName string) ([]byte, bool, error)
	Set(ctx context.Context, sessionID, fileName string, data []byte) error
	Delete(ctx context.Context, sessionID, fileName string) error
	List(ctx context.Context, sessionID string) ([]string, error)
	DeleteAll(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
	Close()
}

// valkeyTier is the real secondaryTier: a thin prefixed-key wrapper over
// valkey-go plus SCAN-based listing.
type valkeyTier struct {
	inner     valkeylib.Client
	keyPrefix string
}

func newValkeyTier(cfg ValkeyConfig) (*valkeyTier, error) {
	opts := valkeylib.ClientOption{
		InitAddress: []string{cfg.Address},
		SelectDB:    cfg.DB,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	inner, err := valkeylib.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("authstore: failed to create valkey client: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := inner.Do(ctx, inner.B().Ping().Build()).Error(); err != nil {
		inner.Close()
		return nil, fmt.Errorf("authstore: failed to ping valkey: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "authstore"
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}

	return &valkeyTier{inner: inner, keyPrefix: prefix}, nil
}

func (t *valkeyTier) key(sessionID, fileName string) string {
	return t.keyPrefix + sessionID + ":" + fileName
}

func (t *valkeyTier) Get(ctx context.Context, sessionID, fileName string) ([]byte, bool, error) {
	cmd := t.inner.B().Get().Key(t.key(sessionID, fileName)).Build()
	data, err := t.inner.Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkeylib.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("authstore: valkey get: %w", err)
	}
	return data, true, nil
}

func (t *valkeyTier) Set(ctx context.Context, sessionID, fileName string, data []byte) error {
	cmd := t.inner.B().Set().Key(t.key(sessionID, fileName)).Value(string(data)).Build()
	if err := t.inner.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("authstore: valkey set: %w", err)
	}
	return nil
}

func (t *valkeyTier) Delete(ctx context.Context, sessionID, fileName string) error {
	cmd := t.inner.B().Del().Key(t.key(sessionID, fileName)).Build()
	if err := t.inner.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("authstore: valkey del: %w", err)
	}
	return nil
}

func (t *valkeyTier) List(ctx context.Context, sessionID string) ([]string, error) {
	pattern := t.keyPrefix + sessionID + ":*"
	var names []string
	var cursor uint64
	for {
		cmd := t.inner.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		result, err := t.inner.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("authstore: valkey scan: %w", err)
		}
		prefix := t.keyPrefix + sessionID + ":"
		for _, k := range result.Elements {
			if len(k) > len(prefix) {
				names = append(names, k[len(prefix):])
			}
		}
		cursor = result.Cursor
		if cursor == 0 {
			break
		}
	}
	return names, nil
}

func (t *valkeyTier) DeleteAll(ctx context.Context, sessionID string) error {
	names, err := t.List(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := t.Delete(ctx, sessionID, name); err != nil {
			return err
		}
	}
	return nil
}

func (t *valkeyTier) Ping(ctx context.Context) error {
	return t.inner.Do(ctx, t.inner.B().Ping().Build()).Error()
}

func (t *valkeyTier) Close() {
	t.inner.Close()
}
