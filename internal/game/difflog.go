package game

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	auditChanSize      = 1024                   // Buffered records awaiting the writer
	auditMaxPerSec     = 5000                   // Global audit rate limit
	auditFlushSize     = 64                     // Records per batch write
	auditFlushInterval = 100 * time.Millisecond // How often to flush
)

// DiffLog accumulates the ordered change log for one arena.
//
// The in-memory batch is lossless and drained atomically each tick: that is
// the broadcast path and it must preserve emission order. Independently, every
// appended diff can be mirrored to an append-only JSONL audit file through a
// rate-limited async writer; the mirror may drop records under load, the
// broadcast batch never does.
type DiffLog struct {
	mu      sync.Mutex
	pending []Diff

	// Audit mirror
	limiter  *rate.Limiter
	audit    chan auditEntry
	running  atomic.Bool
	stopChan chan struct{}
	stopOnce sync.Once
	writerWg sync.WaitGroup
	file     *os.File

	seq          uint64 // atomic
	droppedCount uint64 // atomic
	totalCount   uint64 // atomic
}

// auditEntry is one JSONL line in the audit trail.
type auditEntry struct {
	Seq       uint64   `json:"seq"`
	Tick      int64    `json:"tick"`
	Timestamp int64    `json:"timestamp"`
	Type      DiffType `json:"type"`
	Payload   any      `json:"payload,omitempty"`
}

// NewDiffLog creates an empty change log. The audit mirror stays off until
// Start is called with a file path.
func NewDiffLog() *DiffLog {
	return &DiffLog{
		limiter:  rate.NewLimiter(auditMaxPerSec, auditMaxPerSec/10),
		audit:    make(chan auditEntry, auditChanSize),
		stopChan: make(chan struct{}),
	}
}

// Append records a diff at the end of the current batch and, when the audit
// mirror is running, offers it to the async writer.
func (l *DiffLog) Append(tick int64, d Diff) {
	l.mu.Lock()
	l.pending = append(l.pending, d)
	l.mu.Unlock()

	atomic.AddUint64(&l.totalCount, 1)

	if !l.running.Load() {
		return
	}
	if !l.limiter.Allow() {
		atomic.AddUint64(&l.droppedCount, 1)
		return
	}
	entry := auditEntry{
		Seq:       atomic.AddUint64(&l.seq, 1),
		Tick:      tick,
		Timestamp: time.Now().UnixNano(),
		Type:      d.Type,
		Payload:   d.Payload,
	}
	select {
	case l.audit <- entry:
	default:
		// Writer is behind; drop the mirror record, never block the tick.
		atomic.AddUint64(&l.droppedCount, 1)
	}
}

// Drain returns the accumulated batch in emission order and clears it.
// Returns nil when nothing changed since the last drain.
func (l *DiffLog) Drain() []Diff {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return nil
	}
	batch := l.pending
	l.pending = nil
	return batch
}

// Len reports the number of pending diffs.
func (l *DiffLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Start opens the audit file and launches the batched writer goroutine.
func (l *DiffLog) Start(filePath string) error {
	if filePath == "" || l.running.Load() {
		return nil
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.file = file
	l.running.Store(true)
	l.writerWg.Add(1)
	go l.writerLoop()
	return nil
}

// Stop flushes outstanding audit records and closes the file.
func (l *DiffLog) Stop() {
	l.stopOnce.Do(func() {
		if !l.running.Load() {
			return
		}
		l.running.Store(false)
		close(l.stopChan)
		l.writerWg.Wait()
		if l.file != nil {
			l.file.Close()
		}
	})
}

func (l *DiffLog) writerLoop() {
	defer l.writerWg.Done()

	ticker := time.NewTicker(auditFlushInterval)
	defer ticker.Stop()

	batch := make([]auditEntry, 0, auditFlushSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		for _, entry := range batch {
			data, err := json.Marshal(entry)
			if err != nil {
				continue
			}
			l.file.Write(data)
			l.file.Write([]byte("\n"))
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-l.stopChan:
			for {
				select {
				case entry := <-l.audit:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		case entry := <-l.audit:
			batch = append(batch, entry)
			if len(batch) >= auditFlushSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Stats returns audit counters for monitoring.
func (l *DiffLog) Stats() map[string]any {
	return map[string]any{
		"total":   atomic.LoadUint64(&l.totalCount),
		"dropped": atomic.LoadUint64(&l.droppedCount),
		"pending": l.Len(),
		"running": l.running.Load(),
	}
}
