package authstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"wazmeow/internal/domain/auth"
)

// handle implements auth.Handle for one session: file-first reads, a
// synchronous primary write path (debounced for pre-keys), and a
// fire-and-forget backup enqueue for every successful primary write.
type handle struct {
	sessionID string
	store     *Store

	mu                 sync.Mutex // serializes creds writes
	pairingInProgress  bool
}

func newHandle(sessionID string, store *Store) *handle {
	return &handle{sessionID: sessionID, store: store}
}

func (h *handle) SessionID() string { return h.sessionID }

func (h *handle) Get(ctx context.Context, kind auth.KeyKind, ids []string) (map[string]auth.Record, error) {
	out := make(map[string]auth.Record, len(ids))
	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := make(chan error, len(ids))

	for _, id := range ids {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := auth.Record{Kind: kind, ID: id}
			data, found, err := h.store.files.read(h.sessionID, rec.FileName())
			if err != nil {
				errs <- err
				return
			}
			if !found {
				return
			}
			rec.Value = json.RawMessage(data)
			mu.Lock()
			out[id] = rec
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return nil, fmt.Errorf("authstore: get %s: %w", kind, err)
	}
	return out, nil
}

func (h *handle) Set(ctx context.Context, updates []auth.Record) error {
	for _, rec := range updates {
		fileName := rec.FileName()
		if rec.Value == nil {
			if err := h.store.files.delete(h.sessionID, fileName); err != nil {
				return err
			}
			h.store.backups.enqueue(backupTask{sessionID: h.sessionID, fileName: fileName, data: nil})
			continue
		}

		data := []byte(rec.Value)
		if rec.Kind == auth.KindPreKey {
			h.store.debouncer.Schedule(h.sessionID, fileName, data)
			continue
		}
		if err := h.writeAndBackup(fileName, data, rec.Kind == auth.KindPreKey); err != nil {
			return err
		}
	}
	return nil
}

func (h *handle) writeAndBackup(fileName string, data []byte, isPreKey bool) error {
	if err := h.store.files.write(h.sessionID, fileName, data); err != nil {
		return err
	}
	h.store.backups.enqueue(backupTask{sessionID: h.sessionID, fileName: fileName, data: data, isPreKey: isPreKey})
	return nil
}

func (h *handle) Creds(ctx context.Context) (auth.Creds, error) {
	data, found, err := h.store.files.read(h.sessionID, "creds.json")
	if err != nil {
		return auth.Creds{}, err
	}
	if !found {
		return auth.Creds{}, nil
	}
	return auth.ParseCreds(json.RawMessage(data))
}

func (h *handle) SaveCreds(ctx context.Context, creds auth.Creds) error {
	h.mu.Lock() // at-most-one in-flight creds write per session
	defer h.mu.Unlock()

	if err := creds.Validate(h.pairingInProgress); err != nil {
		return err
	}

	data := creds.Raw
	if data == nil {
		var err error
		data, err = json.Marshal(creds)
		if err != nil {
			return fmt.Errorf("authstore: marshal creds: %w", err)
		}
	}
	return h.writeAndBackup("creds.json", data, false)
}

func (h *handle) MarkPairingInProgress(inProgress bool) {
	h.mu.Lock()
	h.pairingInProgress = inProgress
	h.mu.Unlock()
}

func (h *handle) Close(flushFinal bool) error {
	if flushFinal {
		h.store.debouncer.Flush()
	}
	return nil
}
