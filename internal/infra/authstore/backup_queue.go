package authstore

import (
	"context"
	"sync"
	"time"
)

const (
	backupBatchMax      = 90
	backupBatchGap      = 20 * time.Millisecond
	backupBatchTimeout  = 3 * time.Second
	backupQueueCapacity = 4096
)

type backupTask struct {
	sessionID string
	fileName  string
	data      []byte // nil means delete
	isPreKey  bool
}

// backupQueue is the fire-and-forget secondary-tier writer: every primary
// write enqueues a task here, and a single background worker drains it in
// batches of up to 90 with a 20ms gap between batches, each batch bounded
// by a 3s timeout.
type backupQueue struct {
	secondary secondaryTier
	health    *healthMonitor

	tasks chan backupTask
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newBackupQueue(secondary secondaryTier, health *healthMonitor) *backupQueue {
	return &backupQueue{
		secondary: secondary,
		health:    health,
		tasks:     make(chan backupTask, backupQueueCapacity),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (q *backupQueue) run() {
	defer close(q.done)
	for {
		batch, ok := q.collectBatch()
		if len(batch) > 0 {
			q.flush(batch)
		}
		if !ok {
			return
		}
		if len(batch) > 0 {
			select {
			case <-time.After(backupBatchGap):
			case <-q.stop:
				return
			}
		}
	}
}

// collectBatch blocks for the first task, then drains up to backupBatchMax-1
// more without blocking. ok is false once stop has fired and the queue is
// drained.
func (q *backupQueue) collectBatch() ([]backupTask, bool) {
	var batch []backupTask
	select {
	case t := <-q.tasks:
		batch = append(batch, t)
	case <-q.stop:
		return q.drainRemaining(), false
	}
	for len(batch) < backupBatchMax {
		select {
		case t := <-q.tasks:
			batch = append(batch, t)
		default:
			return batch, true
		}
	}
	return batch, true
}

func (q *backupQueue) drainRemaining() []backupTask {
	var batch []backupTask
	for {
		select {
		case t := <-q.tasks:
			batch = append(batch, t)
			if len(batch) >= backupBatchMax {
				return batch
			}
		default:
			return batch
		}
	}
}

func (q *backupQueue) flush(batch []backupTask) {
	ctx, cancel := context.WithTimeout(context.Background(), backupBatchTimeout)
	defer cancel()

	unhealthy := !q.health.IsHealthy()
	for _, t := range batch {
		if t.isPreKey && unhealthy {
			continue
		}
		if t.data == nil {
			_ = q.secondary.Delete(ctx, t.sessionID, t.fileName)
			continue
		}
		_ = q.secondary.Set(ctx, t.sessionID, t.fileName, t.data)
	}
}

// enqueue is fire-and-forget: a full queue silently drops the task rather
// than block the caller's primary-tier write path.
func (q *backupQueue) enqueue(t backupTask) {
	select {
	case q.tasks <- t:
	default:
	}
}

func (q *backupQueue) Close() {
	q.once.Do(func() {
		close(q.stop)
		<-q.done
	})
}
