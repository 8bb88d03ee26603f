package renamer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Nomadcxx/jellyfix/internal/logging"
	"github.com/Nomadcxx/jellyfix/internal/media"
	"github.com/Nomadcxx/jellyfix/internal/metadata"
	"github.com/Nomadcxx/jellyfix/internal/naming"
	"github.com/Nomadcxx/jellyfix/internal/subtitle"
)

// Replan re-derives the operations of one video using corrected metadata
// instead of a lookup, together with its subtitles, NFO and folder extras.
// The result replaces that video's operations in a plan of root; see Splice.
// A video that no longer exists yields no operations.
func (p *Planner) Replan(ctx context.Context, root, video string, md metadata.Metadata) ([]Operation, error) {
	if !media.IsVideo(video) {
		return nil, fmt.Errorf("%w: %s", ErrNotVideo, video)
	}
	root, video = filepath.Clean(root), filepath.Clean(video)
	if _, err := os.Stat(video); err != nil {
		return nil, nil
	}

	scan, err := p.scanner.Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	s := p.newSession(ctx, root, scan)
	s.planVideo(video, &md)
	if len(s.order) == 0 {
		return nil, nil
	}

	var subs []string
	for _, path := range scan.SubtitleFiles {
		if s.companionSubtitle(path) {
			subs = append(subs, path)
		}
	}
	s.planMirabel(subs)
	s.planCompanionSubtitles(subs)
	s.planVariants(subs)
	s.planExtras(s.order, scan.NFOFiles)

	p.logger.Info("planner", "Replanned video",
		logging.F("video", video),
		logging.F("title", md.Title),
		logging.F("operations", len(s.plan.Operations)))
	return s.plan.Operations, nil
}

// companionSubtitle reports whether path belongs to a registered video.
func (s *session) companionSubtitle(path string) bool {
	dir := filepath.Dir(path)
	if m, ok := subtitle.ParseMirabel(path); ok {
		return s.videoFor(dir, m.Base) != nil
	}
	return s.videoFor(dir, subtitle.ParseName(path).Base) != nil
}

// Splice removes the operations of video and its companions from ops and
// inserts replacement where the first of them stood (at the end when none
// did). Companions are the sources replacement touches, subtitles and NFOs
// named after the video, and non-video files the old plan moved from the
// video's folder into the video's old destination folder. Replacement
// operations whose destination is already used by a remaining operation are
// dropped.
func Splice(ops []Operation, video string, replacement []Operation) []Operation {
	excise := make(map[string]bool, len(replacement)+1)
	excise[video] = true
	for _, op := range replacement {
		excise[op.Source] = true
	}

	dir := filepath.Dir(video)
	key := naming.NormalizeKey(media.Stem(video))
	oldDest := ""
	for _, op := range ops {
		if op.Source == video {
			oldDest = filepath.Dir(op.Destination)
		}
	}

	belongs := func(op Operation) bool {
		if excise[op.Source] {
			return true
		}
		if filepath.Dir(op.Source) != dir {
			return false
		}
		if media.IsSubtitle(op.Source) || media.IsNFO(op.Source) {
			base := subtitle.ParseName(op.Source).Base
			if m, ok := subtitle.ParseMirabel(op.Source); ok {
				base = m.Base
			}
			if naming.NormalizeKey(base) == key {
				return true
			}
		}
		return oldDest != "" && oldDest != dir && op.Type != OpDelete &&
			!media.IsVideo(op.Source) && filepath.Dir(op.Destination) == oldDest
	}

	kept := make([]Operation, 0, len(ops))
	insertAt := -1
	for _, op := range ops {
		if belongs(op) {
			if insertAt < 0 {
				insertAt = len(kept)
			}
			continue
		}
		kept = append(kept, op)
	}

	used := make(map[string]bool, len(kept))
	for _, op := range kept {
		used[op.Destination] = true
	}
	var fresh []Operation
	for _, op := range replacement {
		if used[op.Destination] {
			continue
		}
		used[op.Destination] = true
		fresh = append(fresh, op)
	}

	if insertAt < 0 {
		return append(kept, fresh...)
	}
	out := make([]Operation, 0, len(kept)+len(fresh))
	out = append(out, kept[:insertAt]...)
	out = append(out, fresh...)
	return append(out, kept[insertAt:]...)
}
