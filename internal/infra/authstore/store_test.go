package authstore

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wazmeow/internal/domain/auth"
)

// fakeSecondary is an in-memory secondaryTier used so these tests never
// touch a real Valkey instance.
type fakeSecondary struct {
	mu      sync.Mutex
	data    map[string][]byte
	pingErr error
}

func newFakeSecondary() *fakeSecondary {
	return &fakeSecondary{data: make(map[string][]byte)}
}

func (f *fakeSecondary) key(sessionID, fileName string) string { return sessionID + "/" + fileName }

func (f *fakeSecondary) Get(ctx context.Context, sessionID, fileName string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[f.key(sessionID, fileName)]
	return v, ok, nil
}

func (f *fakeSecondary) Set(ctx context.Context, sessionID, fileName string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[f.key(sessionID, fileName)] = data
	return nil
}

func (f *fakeSecondary) Delete(ctx context.Context, sessionID, fileName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, f.key(sessionID, fileName))
	return nil
}

func (f *fakeSecondary) List(ctx context.Context, sessionID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := sessionID + "/"
	var names []string
	for k := range f.data {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			names = append(names, k[len(prefix):])
		}
	}
	return names, nil
}

func (f *fakeSecondary) DeleteAll(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := sessionID + "/"
	for k := range f.data {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(f.data, k)
		}
	}
	return nil
}

func (f *fakeSecondary) Ping(ctx context.Context) error { return f.pingErr }
func (f *fakeSecondary) Close()                         {}

func newTestStore(t *testing.T) (*Store, *fakeSecondary) {
	t.Helper()
	sec := newFakeSecondary()
	store := newStore(t.TempDir(), sec)
	t.Cleanup(store.Close)
	return store, sec
}

func validCreds(t *testing.T) auth.Creds {
	t.Helper()
	return auth.Creds{
		NoiseKey:          json.RawMessage(`"noise"`),
		SignedIdentityKey: json.RawMessage(`"identity"`),
		Me:                json.RawMessage(`{"id":"1"}`),
		Account:           json.RawMessage(`{"acc":"1"}`),
		Registered:        true,
	}
}

func TestStore_SaveAndLoadCreds(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	h, err := store.Open(ctx, "session_alice")
	require.NoError(t, err)

	require.NoError(t, h.SaveCreds(ctx, validCreds(t)))

	got, err := h.Creds(ctx)
	require.NoError(t, err)
	assert.True(t, got.Registered)
	assert.Equal(t, json.RawMessage(`"noise"`), got.NoiseKey)
}

func TestStore_SaveCreds_RejectsIncompleteWithoutPairing(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	h, err := store.Open(ctx, "session_bob")
	require.NoError(t, err)

	err = h.SaveCreds(ctx, auth.Creds{Registered: true})
	assert.ErrorIs(t, err, auth.ErrInvalidCreds)
}

func TestStore_SaveCreds_AllowsPartialDuringPairing(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	h, err := store.Open(ctx, "session_carol")
	require.NoError(t, err)
	h.MarkPairingInProgress(true)

	err = h.SaveCreds(ctx, auth.Creds{Registered: false})
	assert.NoError(t, err)
}

func TestStore_HasValid(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ok, err := store.HasValid(ctx, "session_dave")
	require.NoError(t, err)
	assert.False(t, ok)

	h, err := store.Open(ctx, "session_dave")
	require.NoError(t, err)
	require.NoError(t, h.SaveCreds(ctx, validCreds(t)))

	ok, err = store.HasValid(ctx, "session_dave")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_GetSetKeyRecords(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	h, err := store.Open(ctx, "session_erin")
	require.NoError(t, err)

	err = h.Set(ctx, []auth.Record{
		{Kind: auth.KindSenderKey, ID: "k1", Value: json.RawMessage(`"v1"`)},
		{Kind: auth.KindSenderKey, ID: "k2", Value: json.RawMessage(`"v2"`)},
	})
	require.NoError(t, err)

	got, err := h.Get(ctx, auth.KindSenderKey, []string{"k1", "k2", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, json.RawMessage(`"v1"`), got["k1"].Value)
}

func TestStore_Set_DeletesOnNilValue(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	h, err := store.Open(ctx, "session_frank")
	require.NoError(t, err)
	require.NoError(t, h.Set(ctx, []auth.Record{{Kind: auth.KindSession, ID: "x", Value: json.RawMessage(`"v"`)}}))
	require.NoError(t, h.Set(ctx, []auth.Record{{Kind: auth.KindSession, ID: "x", Value: nil}}))

	got, err := h.Get(ctx, auth.KindSession, []string{"x"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_PreKeyWritesDebounce(t *testing.T) {
	store, sec := newTestStore(t)
	ctx := context.Background()

	h, err := store.Open(ctx, "session_grace")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, h.Set(ctx, []auth.Record{
			{Kind: auth.KindPreKey, ID: "1", Value: json.RawMessage(`"burst"`)},
		}))
	}

	got, err := h.Get(ctx, auth.KindPreKey, []string{"1"})
	require.NoError(t, err)
	assert.Empty(t, got, "debounced write should not have landed yet")

	time.Sleep(preKeyDebounceWindow + 50*time.Millisecond)

	got, err = h.Get(ctx, auth.KindPreKey, []string{"1"})
	require.NoError(t, err)
	require.Contains(t, got, "1")
	assert.Equal(t, json.RawMessage(`"burst"`), got["1"].Value)

	time.Sleep(backupBatchGap + 50*time.Millisecond)
	_, found, _ := sec.Get(ctx, "session_grace", "pre-key-1.json")
	assert.True(t, found, "coalesced write should still reach the backup tier")
}

func TestStore_InitialSyncRecoversFromSecondary(t *testing.T) {
	sec := newFakeSecondary()
	dir := t.TempDir()
	store := newStore(dir, sec)
	defer store.Close()

	require.NoError(t, sec.Set(context.Background(), "session_henry", "creds.json", []byte(`{"registered":true}`)))

	h, err := store.Open(context.Background(), "session_henry")
	require.NoError(t, err)

	creds, err := h.Creds(context.Background())
	require.NoError(t, err)
	assert.True(t, creds.Registered)
}

func TestStore_Cleanup(t *testing.T) {
	store, sec := newTestStore(t)
	ctx := context.Background()

	h, err := store.Open(ctx, "session_iris")
	require.NoError(t, err)
	require.NoError(t, h.SaveCreds(ctx, validCreds(t)))
	time.Sleep(backupBatchGap + 50*time.Millisecond)

	require.NoError(t, store.Cleanup(ctx, "session_iris"))

	ok, err := store.HasValid(ctx, "session_iris")
	require.NoError(t, err)
	assert.False(t, ok)

	names, _ := sec.List(ctx, "session_iris")
	assert.Empty(t, names)
}

func TestStore_BackupHealthTracksConsecutiveTimeouts(t *testing.T) {
	sec := newFakeSecondary()
	store := newStore(t.TempDir(), sec)
	defer store.Close()

	assert.True(t, store.BackupHealthy())

	sec.mu.Lock()
	sec.pingErr = context.DeadlineExceeded
	sec.mu.Unlock()

	for i := 0; i < unhealthyAfterTimeouts; i++ {
		store.health.probe()
	}
	assert.False(t, store.BackupHealthy())

	sec.mu.Lock()
	sec.pingErr = nil
	sec.mu.Unlock()
	store.health.probe()
	assert.True(t, store.BackupHealthy())
}
