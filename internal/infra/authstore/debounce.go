package authstore

import (
	"sync"
	"time"
)

const preKeyDebounceWindow = 50 * time.Millisecond

// preKeyDebouncer coalesces bursts of pre-key writes to the same
// (sessionId, fileName) into a single delayed disk write.
type preKeyDebouncer struct {
	mu      sync.Mutex
	pending map[string]*pendingWrite
	write   func(sessionID, fileName string, data []byte)
}

type pendingWrite struct {
	timer *time.Timer
	data  []byte
}

func newPreKeyDebouncer(write func(sessionID, fileName string, data []byte)) *preKeyDebouncer {
	return &preKeyDebouncer{
		pending: make(map[string]*pendingWrite),
		write:   write,
	}
}

func (d *preKeyDebouncer) key(sessionID, fileName string) string {
	return sessionID + "/" + fileName
}

// Schedule replaces any pending write for this key with data and resets the
// coalescing window.
func (d *preKeyDebouncer) Schedule(sessionID, fileName string, data []byte) {
	k := d.key(sessionID, fileName)

	d.mu.Lock()
	defer d.mu.Unlock()

	if pw, ok := d.pending[k]; ok {
		pw.timer.Stop()
		pw.data = data
		pw.timer = time.AfterFunc(preKeyDebounceWindow, func() { d.fire(k, sessionID, fileName) })
		return
	}
	pw := &pendingWrite{data: data}
	pw.timer = time.AfterFunc(preKeyDebounceWindow, func() { d.fire(k, sessionID, fileName) })
	d.pending[k] = pw
}

func (d *preKeyDebouncer) fire(k, sessionID, fileName string) {
	d.mu.Lock()
	pw, ok := d.pending[k]
	if ok {
		delete(d.pending, k)
	}
	d.mu.Unlock()
	if !ok {
		return
	}
	d.write(sessionID, fileName, pw.data)
}

// Flush immediately performs every pending write, used on Handle.Close.
func (d *preKeyDebouncer) Flush() {
	d.mu.Lock()
	pending := d.pending
	d.pending = make(map[string]*pendingWrite)
	d.mu.Unlock()

	for k, pw := range pending {
		pw.timer.Stop()
		sessionID, fileName := splitKey(k)
		d.write(sessionID, fileName, pw.data)
	}
}

func splitKey(k string) (string, string) {
	for i := 0; i < len(k); i++ {
		if k[i] == '/' {
			return k[:i], k[i+1:]
		}
	}
	return k, ""
}
