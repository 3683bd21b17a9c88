package authstore

import (
	"context"
	"sync"

	"wazmeow/internal/domain/auth"
)

const initialSyncConcurrency = 90

// Config bundles the primary file root and the secondary Valkey connection.
type Config struct {
	BaseDir string
	Valkey  ValkeyConfig
}

// Store is the dual-tier auth.Store implementation. A single Store is
// shared by every session in the fleet; it owns
// the shared backup queue and health monitor (the secondary tier's health
// is a property of the connection, not of any one session).
type Store struct {
	files     *fileTier
	secondary secondaryTier
	debouncer *preKeyDebouncer
	backups   *backupQueue
	health    *healthMonitor
}

// New builds a Store with a real Valkey-backed secondary tier.
func New(cfg Config) (*Store, error) {
	tier, err := newValkeyTier(cfg.Valkey)
	if err != nil {
		return nil, err
	}
	return newStore(cfg.BaseDir, tier), nil
}

// NewFileOnly builds a Store with the secondary tier disabled: backups are
// dropped on the floor and a recovery initial sync never finds anything.
func NewFileOnly(baseDir string) *Store {
	return newStore(baseDir, disabledTier{})
}

// disabledTier stands in for the secondary tier when no backup store is
// configured. Every operation succeeds without doing anything.
type disabledTier struct{}

func (disabledTier) Get(ctx context.Context, sessionID, fileName string) ([]byte, bool, error) {
	return nil, false, nil
}
func (disabledTier) Set(ctx context.Context, sessionID, fileName string, data []byte) error {
	return nil
}
func (disabledTier) Delete(ctx context.Context, sessionID, fileName string) error { return nil }
func (disabledTier) List(ctx context.Context, sessionID string) ([]string, error) {
	return nil, nil
}
func (disabledTier) DeleteAll(ctx context.Context, sessionID string) error { return nil }
func (disabledTier) Ping(ctx context.Context) error                        { return nil }
func (disabledTier) Close()                                                {}

func newStore(baseDir string, secondary secondaryTier) *Store {
	s := &Store{
		files:     newFileTier(baseDir),
		secondary: secondary,
		health:    newHealthMonitor(secondary),
	}
	s.backups = newBackupQueue(secondary, s.health)
	s.debouncer = newPreKeyDebouncer(func(sessionID, fileName string, data []byte) {
		if err := s.files.write(sessionID, fileName, data); err != nil {
			return
		}
		s.backups.enqueue(backupTask{sessionID: sessionID, fileName: fileName, data: data, isPreKey: true})
	})

	go s.health.run()
	go s.backups.run()
	return s
}

// Open loads (or lazily creates) a Handle for sessionID, triggering a
// recovery initial sync from the secondary tier when the primary tier has
// no local files at all.
func (s *Store) Open(ctx context.Context, sessionID string) (auth.Handle, error) {
	empty, err := s.files.isEmpty(sessionID)
	if err != nil {
		return nil, err
	}
	if empty {
		if err := s.initialSync(ctx, sessionID); err != nil {
			return nil, err
		}
	}
	return newHandle(sessionID, s), nil
}

// initialSync pulls every record the secondary tier holds for sessionID
// into the primary tier, ~90 reads in flight at a time. A failure to reach
// the secondary here is not fatal — it just means recovery didn't happen
// and the session starts from scratch, exactly as if it were brand new.
func (s *Store) initialSync(ctx context.Context, sessionID string) error {
	names, err := s.secondary.List(ctx, sessionID)
	if err != nil || len(names) == 0 {
		return nil
	}

	sem := make(chan struct{}, initialSyncConcurrency)
	var wg sync.WaitGroup
	for _, name := range names {
		name := name
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			data, found, err := s.secondary.Get(ctx, sessionID, name)
			if err != nil || !found {
				return
			}
			_ = s.files.write(sessionID, name, data)
		}()
	}
	wg.Wait()
	return nil
}

// HasValid reports whether sessionID has a structurally valid, registered
// creds record, without opening a Handle.
func (s *Store) HasValid(ctx context.Context, sessionID string) (bool, error) {
	data, found, err := s.files.read(sessionID, "creds.json")
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	creds, err := auth.ParseCreds(data)
	if err != nil {
		return false, nil
	}
	return creds.Validate(false) == nil, nil
}

// Cleanup removes every primary- and secondary-tier record for sessionID.
func (s *Store) Cleanup(ctx context.Context, sessionID string) error {
	if err := s.files.cleanup(sessionID); err != nil {
		return err
	}
	return s.secondary.DeleteAll(ctx, sessionID)
}

// BackupHealthy reports the secondary tier's current health.
func (s *Store) BackupHealthy() bool {
	return s.health.IsHealthy()
}

// Close stops the shared background workers. Call once at process
// shutdown, after every Handle has been closed.
func (s *Store) Close() {
	s.backups.Close()
	s.health.Close()
	s.secondary.Close()
}
