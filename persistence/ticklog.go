package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"realmwalk/server/models"
)

// TickEntry is one line of the tick log
type TickEntry struct {
	Tick   uint64          `json:"tick"`
	Time   time.Time       `json:"time"`
	Agents []AgentSnapshot `json:"agents"`
}

// AgentSnapshot is an agent's state at the end of a tick
type AgentSnapshot struct {
	ID      string          `json:"id"`
	Pos     models.Position `json:"pos"`
	Dir     string          `json:"dir"`
	Action  string          `json:"action"`
	OffsetX float64         `json:"offset_x,omitempty"`
	OffsetY float64         `json:"offset_y,omitempty"`
}

// TickLog appends JSONL tick entries to zstd-compressed files, starting a new
// file every hour.
type TickLog struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

// NewTickLog writes under dir/ticks
func NewTickLog(dir string) *TickLog {
	return &TickLog{
		baseDir: filepath.Join(dir, "ticks"),
		prefix:  "ticks",
		now:     time.Now,
	}
}

// WriteTick appends one entry and flushes it to the encoder
func (l *TickLog) WriteTick(entry TickEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	hour := l.now().UTC().Format("2006-01-02-15")
	if hour != l.curHour {
		if err := l.rotateLocked(hour); err != nil {
			return fmt.Errorf("rotate tick log: %w", err)
		}
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return err
	}
	return l.w.Flush()
}

// Close finishes the current file
func (l *TickLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

// PathForHour returns the file used for an hour key (2006-01-02-15)
func (l *TickLog) PathForHour(hour string) string {
	return filepath.Join(l.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", l.prefix, hour))
}

func (l *TickLog) rotateLocked(hour string) error {
	if err := l.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.baseDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.PathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		f.Close()
		return err
	}
	l.f = f
	l.enc = enc
	l.w = bufio.NewWriterSize(enc, 64*1024)
	l.curHour = hour
	return nil
}

func (l *TickLog) closeLocked() error {
	var err error
	if l.w != nil {
		l.w.Flush()
	}
	if l.enc != nil {
		err = l.enc.Close()
		l.enc = nil
	}
	if l.f != nil {
		l.f.Close()
		l.f = nil
	}
	l.w = nil
	l.curHour = ""
	return err
}

// ReadTickLog decodes every entry of one tick log file
func ReadTickLog(path string) ([]TickEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var entries []TickEntry
	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var e TickEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return entries, fmt.Errorf("decode tick entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}
