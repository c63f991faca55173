package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/racetelemetry/laprecorder/log"
	"github.com/racetelemetry/laprecorder/pkg/export"
	"github.com/racetelemetry/laprecorder/pkg/model"
)

var ErrNoFolder = errors.New("auto-save folder not set or missing")

// maxSuffix is the last numeric suffix tried before a random one is used.
const maxSuffix = 9999

// AutoSave writes every lap as indented JSON into a folder.
type AutoSave struct {
	fs  afero.Fs
	mu  sync.RWMutex
	dir string
	log *log.Logger
}

type Option func(a *AutoSave)

func WithFs(fs afero.Fs) Option {
	return func(a *AutoSave) {
		a.fs = fs
	}
}

func NewAutoSave(dir string, opts ...Option) *AutoSave {
	ret := &AutoSave{
		fs:  afero.NewOsFs(),
		dir: dir,
		log: log.Default().Named("autosave"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (a *AutoSave) Name() string {
	return "file"
}

// SetDir changes the target folder for subsequent laps.
func (a *AutoSave) SetDir(dir string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if dir != a.dir {
		a.log.Info("auto-save folder changed", log.String("dir", dir))
	}
	a.dir = dir
}

func (a *AutoSave) Dir() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dir
}

func (a *AutoSave) Store(ctx context.Context, rec *model.LapRecord) error {
	_, span := otel.Tracer("lrec.sink").Start(ctx, "file.store")
	defer span.End()

	path, err := a.Save(rec)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.String("path", path))
	a.log.Info("lap saved", log.Int("index", rec.Index), log.String("path", path))
	return nil
}

// Save writes rec and returns the path of the written file.
func (a *AutoSave) Save(rec *model.LapRecord) (string, error) {
	dir := a.Dir()
	if strings.TrimSpace(dir) == "" {
		return "", ErrNoFolder
	}
	if ok, err := afero.DirExists(a.fs, dir); err != nil || !ok {
		return "", fmt.Errorf("%w: %s", ErrNoFolder, dir)
	}
	data, err := export.MarshalIndent(export.FromRecord(rec))
	if err != nil {
		return "", fmt.Errorf("marshal lap %d: %w", rec.Index, err)
	}
	path, err := EnsureUniquePath(a.fs, filepath.Join(dir, rec.SuggestedFileName))
	if err != nil {
		return "", err
	}
	if err := afero.WriteFile(a.fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// EnsureUniquePath returns path if no such file exists. Otherwise the suffixes _2.._9999
// are tried in order and a random suffix is used as last resort.
func EnsureUniquePath(fs afero.Fs, path string) (string, error) {
	exists := func(p string) (bool, error) {
		_, err := fs.Stat(p)
		if err == nil {
			return true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	ok, err := exists(path)
	if err != nil || !ok {
		return path, err
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 2; i <= maxSuffix; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if ok, err = exists(candidate); err != nil {
			return "", err
		} else if !ok {
			return candidate, nil
		}
	}
	return fmt.Sprintf("%s_%s%s", base, strings.ReplaceAll(uuid.NewString(), "-", ""), ext), nil
}
