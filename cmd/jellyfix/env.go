package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Nomadcxx/jellyfix/internal/config"
	"github.com/Nomadcxx/jellyfix/internal/logging"
	"github.com/Nomadcxx/jellyfix/internal/metadata"
	"github.com/Nomadcxx/jellyfix/internal/paths"
	"github.com/Nomadcxx/jellyfix/internal/quality"
	"github.com/Nomadcxx/jellyfix/internal/renamer"
	"github.com/gofrs/flock"
)

// errLocked is returned when another process holds the apply lock
var errLocked = errors.New("another jellyfix apply is running")

// env is what every command needs after loading the config
type env struct {
	cfg      *config.Config
	logger   *logging.Logger
	resolved *recordingResolver
}

func loadEnv() (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.SetOutput(os.Stderr)
	if verbose {
		logger.SetLevel(logging.LevelDebug)
	}
	if quiet {
		logger.SetOutput(nil)
	}

	e := &env{cfg: cfg, logger: logger}
	if cfg.Metadata.Enabled {
		tmdb, err := metadata.NewTMDB(cfg.Metadata.TMDBAPIKey,
			time.Duration(cfg.Metadata.TimeoutSeconds)*time.Second,
			metadata.WithLanguage(cfg.Metadata.Language),
			metadata.WithTMDBLogger(logger))
		switch {
		case err == nil:
			e.resolved = newRecordingResolver(tmdb)
		case errors.Is(err, metadata.ErrNoAPIKey):
			logger.Debug("metadata", "No TMDB API key, metadata lookups disabled")
		default:
			return nil, err
		}
	}
	return e, nil
}

func (e *env) close() {
	e.logger.Close()
}

func (e *env) planner() *renamer.Planner {
	opts := []renamer.Option{renamer.WithLogger(e.logger)}
	if e.resolved != nil {
		opts = append(opts, renamer.WithResolver(e.resolved))
	}
	if e.cfg.Organize.UseProbe {
		opts = append(opts, renamer.WithProber(quality.NewFFProbe(e.cfg.Organize.FFProbeBinary)))
	}
	return renamer.New(e.cfg, opts...)
}

// lock takes the apply lock. With wait set it blocks until the lock is free
// or ctx is done, otherwise it fails fast with errLocked.
func lock(ctx context.Context, wait bool) (*flock.Flock, error) {
	path, err := paths.LockPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("unable to create lock dir: %w", err)
	}

	fl := flock.New(path)
	var ok bool
	if wait {
		ok, err = fl.TryLockContext(ctx, 500*time.Millisecond)
	} else {
		ok, err = fl.TryLock()
	}
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, errLocked
	}
	return fl, nil
}

// absDir resolves dir and checks that it is a directory
func absDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return abs, nil
}

// recordingResolver remembers every successful lookup so apply can fetch
// artwork for the folders it created.
type recordingResolver struct {
	metadata.Resolver

	mu       sync.Mutex
	resolved []metadata.Metadata
}

func newRecordingResolver(r metadata.Resolver) *recordingResolver {
	return &recordingResolver{Resolver: r}
}

func (r *recordingResolver) SearchMovie(ctx context.Context, title string, year int) (*metadata.Metadata, error) {
	return r.record(r.Resolver.SearchMovie(ctx, title, year))
}

func (r *recordingResolver) SearchTVShow(ctx context.Context, title string, year int) (*metadata.Metadata, error) {
	return r.record(r.Resolver.SearchTVShow(ctx, title, year))
}

func (r *recordingResolver) record(md *metadata.Metadata, err error) (*metadata.Metadata, error) {
	if err == nil && md != nil {
		r.mu.Lock()
		r.resolved = append(r.resolved, *md)
		r.mu.Unlock()
	}
	return md, err
}

// Take returns and forgets the recorded lookups.
func (r *recordingResolver) Take() []metadata.Metadata {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.resolved
	r.resolved = nil
	return out
}
