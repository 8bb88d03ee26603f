package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nomadcxx/jellyfix/internal/imagecache"
	"github.com/Nomadcxx/jellyfix/internal/logging"
	"github.com/Nomadcxx/jellyfix/internal/media"
	"github.com/Nomadcxx/jellyfix/internal/metadata"
	"github.com/Nomadcxx/jellyfix/internal/naming"
	"github.com/Nomadcxx/jellyfix/internal/paths"
	"github.com/Nomadcxx/jellyfix/internal/renamer"
	"github.com/Nomadcxx/jellyfix/internal/transfer"
)

const posterFile = "poster.jpg"

// downloadPosters writes poster.jpg into every folder the run moved a video
// into whose name matches a resolved title. It returns the number written.
func downloadPosters(ctx context.Context, e *env, resolved []metadata.Metadata, result *renamer.Result) int {
	if len(resolved) == 0 || result == nil {
		return 0
	}
	dir, err := paths.CacheDir()
	if err != nil {
		e.logger.Warn("metadata", "No cache directory for posters", logging.F("error", err.Error()))
		return 0
	}
	cache, err := imagecache.Open(filepath.Join(dir, "images"), e.cfg.Artwork.CacheDays)
	if err != nil {
		e.logger.Warn("metadata", "Unable to open image cache", logging.F("error", err.Error()))
		return 0
	}
	fetcher := &metadata.PosterFetcher{Cache: cache}
	return writePosters(ctx, e, fetcher, resolved, movedFolders(result))
}

func writePosters(ctx context.Context, e *env, fetcher *metadata.PosterFetcher, resolved []metadata.Metadata, folders []string) int {
	withIDs := e.cfg.Metadata.ProviderIDs
	written := 0
	done := make(map[string]bool)
	for _, md := range resolved {
		if md.PosterPath == "" || done[posterKey(md)] {
			continue
		}
		done[posterKey(md)] = true

		var targets []string
		for _, folder := range folders {
			if folderMatches(filepath.Base(folder), md, withIDs) {
				targets = append(targets, folder)
			}
		}
		if len(targets) == 0 {
			continue
		}

		cached, err := fetcher.Fetch(ctx, md, e.cfg.Artwork.PosterSize)
		if err != nil {
			e.logger.Warn("metadata", "Poster download failed", logging.F("title", md.Title), logging.F("error", err.Error()))
			continue
		}
		data, err := os.ReadFile(cached)
		if err != nil {
			continue
		}
		for _, folder := range targets {
			err := transfer.WriteFileNoOverwrite(filepath.Join(folder, posterFile), data, 0644)
			switch {
			case err == nil:
				written++
				e.logger.Info("metadata", "Poster saved", logging.F("folder", folder))
			case errors.Is(err, transfer.ErrDestinationExists):
			default:
				e.logger.Warn("metadata", "Unable to write poster", logging.F("folder", folder), logging.F("error", err.Error()))
			}
		}
	}
	return written
}

func posterKey(md metadata.Metadata) string {
	return md.Title + "\x00" + md.PosterPath
}

// movedFolders lists the title folders videos were moved into. Season
// folders resolve to their series folder.
func movedFolders(result *renamer.Result) []string {
	seen := make(map[string]bool)
	var folders []string
	for _, o := range result.Executed {
		if o.Status != renamer.StatusOK || o.Op.Type == renamer.OpDelete {
			continue
		}
		dir := filepath.Dir(o.Op.Destination)
		if media.IsSeasonFolder(filepath.Base(dir)) {
			dir = filepath.Dir(dir)
		}
		if !seen[dir] {
			seen[dir] = true
			folders = append(folders, dir)
		}
	}
	return folders
}

// folderMatches reports whether a folder was named after md
func folderMatches(base string, md metadata.Metadata, withIDs bool) bool {
	if withIDs && md.HasIDs() {
		return strings.HasSuffix(base, naming.ProviderSuffix(md.TMDBID, md.IMDBID, md.TVDBID))
	}
	title := naming.FolderName(naming.Sanitize(md.Title), 0)
	return base == title || strings.HasPrefix(base, title+" (")
}
