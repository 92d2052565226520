package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// rotationStamp is the timestamp layout inserted into rotated file names:
// syncstate.log becomes syncstate.20240120T150405.log.
const rotationStamp = "20060102T150405"

// RotationConfig configures log file rotation.
type RotationConfig struct {
	// MaxSize is the size in bytes that triggers rotation. Zero uses 10MB.
	MaxSize int64

	// MaxAge is how many days rotated files are kept. Zero keeps them.
	MaxAge int

	// MaxBackups is how many rotated files are kept. Zero keeps all.
	MaxBackups int

	// Daily also rotates when the calendar day changes.
	Daily bool
}

// DefaultRotationConfig returns 10MB files, five backups, thirty days, daily.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSize:    10 * 1024 * 1024,
		MaxAge:     30,
		MaxBackups: 5,
		Daily:      true,
	}
}

// RotatingWriter is an io.WriteCloser over a log file that rotates by
// size and by day. It is safe for concurrent use within one process.
type RotatingWriter struct {
	fs   afero.Fs
	path string
	cfg  RotationConfig
	now  func() time.Time

	mu       sync.Mutex
	file     afero.File
	size     int64
	openedOn time.Time
}

// NewRotatingWriter opens path on the OS filesystem, creating parent
// directories.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	return newRotatingWriter(afero.NewOsFs(), path, cfg, time.Now)
}

func newRotatingWriter(fsys afero.Fs, path string, cfg RotationConfig, now func() time.Time) (*RotatingWriter, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultRotationConfig().MaxSize
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	w := &RotatingWriter{fs: fsys, path: path, cfg: cfg, now: now}
	if err := w.open(); err != nil {
		return nil, err
	}
	w.prune()
	return w, nil
}

// Write appends p, rotating first if p would overflow MaxSize or the day
// has changed.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, errors.New("log writer closed")
	}

	if w.due(int64(len(p))) {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("rotating log file: %w", err)
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("writing log file: %w", err)
	}
	return n, nil
}

// Close syncs and closes the log file. Closing twice is a no-op.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	syncErr := w.file.Sync()
	closeErr := w.file.Close()
	w.file = nil
	return errors.Join(syncErr, closeErr)
}

func (w *RotatingWriter) open() error {
	f, err := w.fs.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	w.file = f
	w.size = info.Size()
	w.openedOn = info.ModTime()
	if w.size == 0 {
		w.openedOn = w.now()
	}
	return nil
}

// due reports whether the next write of n bytes needs a fresh file.
// An empty file is never rotated for size, so oversized single writes
// still land somewhere.
func (w *RotatingWriter) due(n int64) bool {
	if w.size > 0 && w.size+n > w.cfg.MaxSize {
		return true
	}
	if w.cfg.Daily && w.size > 0 {
		y1, m1, d1 := w.now().Date()
		y2, m2, d2 := w.openedOn.Date()
		return y1 != y2 || m1 != m2 || d1 != d2
	}
	return false
}

func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing current file: %w", err)
	}
	w.file = nil

	if err := w.fs.Rename(w.path, w.backupName()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("renaming log file: %w", err)
	}
	if err := w.open(); err != nil {
		return err
	}
	w.openedOn = w.now()
	w.prune()
	return nil
}

// backupName returns an unused rotated file name for the current time.
func (w *RotatingWriter) backupName() string {
	ext := filepath.Ext(w.path)
	base := strings.TrimSuffix(w.path, ext)
	stamp := w.now().Format(rotationStamp)

	name := fmt.Sprintf("%s.%s%s", base, stamp, ext)
	for seq := 1; ; seq++ {
		if _, err := w.fs.Stat(name); errors.Is(err, fs.ErrNotExist) {
			return name
		}
		name = fmt.Sprintf("%s.%s-%d%s", base, stamp, seq, ext)
	}
}

// backup is a rotated log file found on disk.
type backup struct {
	path    string
	modTime time.Time
}

// backups lists rotated files next to the active log, newest first.
func (w *RotatingWriter) backups() []backup {
	dir := filepath.Dir(w.path)
	active := filepath.Base(w.path)
	ext := filepath.Ext(active)
	prefix := strings.TrimSuffix(active, ext) + "."

	infos, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		return nil
	}

	var found []backup
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || name == active || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		found = append(found, backup{path: filepath.Join(dir, name), modTime: info.ModTime()})
	}

	slices.SortFunc(found, func(a, b backup) int {
		return b.modTime.Compare(a.modTime)
	})
	return found
}

// prune deletes backups beyond MaxBackups or older than MaxAge days.
// Failures are ignored; the next rotation retries.
func (w *RotatingWriter) prune() {
	cutoff := time.Time{}
	if w.cfg.MaxAge > 0 {
		cutoff = w.now().AddDate(0, 0, -w.cfg.MaxAge)
	}

	for i, b := range w.backups() {
		tooMany := w.cfg.MaxBackups > 0 && i >= w.cfg.MaxBackups
		tooOld := !cutoff.IsZero() && b.modTime.Before(cutoff)
		if tooMany || tooOld {
			_ = w.fs.Remove(b.path)
		}
	}
}
