package renamer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nomadcxx/jellyfix/internal/config"
	"github.com/Nomadcxx/jellyfix/internal/logging"
	"github.com/Nomadcxx/jellyfix/internal/media"
	"github.com/Nomadcxx/jellyfix/internal/metadata"
	"github.com/Nomadcxx/jellyfix/internal/naming"
	"github.com/Nomadcxx/jellyfix/internal/quality"
	"github.com/Nomadcxx/jellyfix/internal/scanner"
	"github.com/Nomadcxx/jellyfix/internal/subtitle"
)

// ErrNotVideo is returned by Replan for a path that is not a video file.
var ErrNotVideo = errors.New("not a video file")

// Planner computes rename plans. A Planner is safe to reuse: every call
// builds its own session state.
type Planner struct {
	cfg      *config.Config
	logger   *logging.Logger
	resolver metadata.Resolver
	prober   quality.Prober
	scanner  *scanner.Scanner
	kept     map[string]bool
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithResolver enables metadata lookups during video planning.
func WithResolver(r metadata.Resolver) Option {
	return func(p *Planner) {
		p.resolver = r
	}
}

// WithProber sets the resolution probe used when a filename has no quality tag.
func WithProber(pr quality.Prober) Option {
	return func(p *Planner) {
		p.prober = pr
	}
}

// New returns a Planner for cfg (defaults when nil).
func New(cfg *config.Config, opts ...Option) *Planner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	p := &Planner{
		cfg:    cfg,
		logger: logging.Nop(),
		kept:   subtitle.CanonicalSet(cfg.Subtitles.KeptLanguages),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.scanner = scanner.New(cfg, scanner.WithLogger(p.logger))
	return p
}

// Plan scans root and plans it.
func (p *Planner) Plan(ctx context.Context, root string) (*Plan, error) {
	root = filepath.Clean(root)
	scan, err := p.scanner.Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	return p.PlanScan(ctx, root, scan)
}

// PlanScan plans an existing scan of root.
func (p *Planner) PlanScan(ctx context.Context, root string, scan *scanner.ScanResult) (*Plan, error) {
	s := p.newSession(ctx, root, scan)

	for _, path := range scan.VideoFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.planVideo(path, nil)
	}

	s.planMirabel(scan.SubtitleFiles)
	s.planCompanionSubtitles(scan.SubtitleFiles)
	s.planVariants(scan.SubtitleFiles)
	s.planExtras(s.order, scan.NFOFiles)
	s.planNonMedia()

	counts := s.plan.Counts()
	p.logger.Info("planner", "Plan complete",
		logging.F("root", s.root),
		logging.F("operations", len(s.plan.Operations)),
		logging.F("renames", counts[OpRename]),
		logging.F("moves", counts[OpMove]+counts[OpMoveRename]),
		logging.F("deletes", counts[OpDelete]),
		logging.F("conflicts", len(s.plan.Conflicts)))
	return s.plan, nil
}

// videoPlan is the decided destination of one video. It is registered in the
// session's stem map so companions can find where their video is going.
type videoPlan struct {
	source  string
	dest    string
	oldDir  string
	newDir  string
	newStem string

	// container is the title's own folder before planning: the movie folder,
	// or the series folder of an episode. newContainer is its replacement.
	container    string
	newContainer string

	tv    bool
	moved bool
}

// session is the working state of one planning pass.
type session struct {
	p    *Planner
	ctx  context.Context
	root string
	scan *scanner.ScanResult
	plan *Plan

	claimed map[string]bool
	planned map[string]bool
	handled map[string]bool

	videos map[string]*videoPlan
	order  []*videoPlan

	anchors  map[string]bool
	extras   map[string][]string
	variants map[string]bool
	nonMedia map[string]bool

	lookups    map[string]*metadata.Metadata
	portuguese map[string]bool
}

func (p *Planner) newSession(ctx context.Context, root string, scan *scanner.ScanResult) *session {
	root = filepath.Clean(root)
	s := &session{
		p:          p,
		ctx:        ctx,
		root:       root,
		scan:       scan,
		plan:       &Plan{Root: root},
		claimed:    make(map[string]bool),
		planned:    make(map[string]bool),
		handled:    make(map[string]bool),
		videos:     make(map[string]*videoPlan),
		anchors:    make(map[string]bool),
		extras:     make(map[string][]string),
		variants:   make(map[string]bool),
		nonMedia:   make(map[string]bool),
		lookups:    make(map[string]*metadata.Metadata),
		portuguese: make(map[string]bool),
	}

	s.findAnchors()

	for _, group := range [][]string{scan.ImageFiles, scan.NFOFiles, scan.OtherFiles} {
		for _, path := range group {
			dir := filepath.Dir(path)
			s.extras[dir] = append(s.extras[dir], path)
		}
	}
	for _, path := range scan.SubtitleFiles {
		if n := subtitle.ParseName(path); n.HasVariant {
			s.variants[variantKey(filepath.Dir(path), n.Base, n.Lang)] = true
		}
	}
	if p.cfg.Cleanup.RemoveNonMedia {
		for _, path := range scan.NonMediaFiles {
			s.nonMedia[path] = true
		}
	}
	return s
}

// findAnchors marks directories that hold more than one title. Titles found
// directly in an anchor get a new subfolder instead of renaming the anchor.
// The scanned root is always an anchor.
func (s *session) findAnchors() {
	titles := make(map[string]map[string]bool)
	for _, path := range s.scan.VideoFiles {
		info := media.Detect(path)
		title, _ := naming.CleanTitle(rawTitle(path, info))
		if title == "" {
			continue
		}
		container := s.containerOf(path, info)
		if titles[container] == nil {
			titles[container] = make(map[string]bool)
		}
		titles[container][naming.NormalizeKey(title)] = true
	}
	for dir, set := range titles {
		if len(set) > 1 {
			s.anchors[dir] = true
		}
	}
	s.anchors[s.root] = true
}

// containerOf returns the folder a title owns: the parent for a movie, the
// parent of a season folder for an episode.
func (s *session) containerOf(path string, info media.MediaInfo) string {
	parent := filepath.Dir(path)
	if info.IsTVShow() && parent != s.root && media.IsSeasonFolder(filepath.Base(parent)) {
		return filepath.Dir(parent)
	}
	return parent
}

func (s *session) isAnchor(dir string) bool {
	if s.anchors[dir] {
		return true
	}
	// never plan folders outside the scanned tree
	rel, err := filepath.Rel(s.root, dir)
	return err != nil || rel == "." || strings.HasPrefix(rel, "..")
}

func stemKey(dir, stem string) string {
	return dir + "\x00" + stem
}

func normalizedStemKey(dir, stem string) string {
	return dir + "\x01" + naming.NormalizeKey(stem)
}

func variantKey(dir, base, lang string) string {
	return dir + "\x00" + naming.NormalizeKey(base) + "\x00" + lang
}

func (s *session) register(vp *videoPlan) {
	stem := media.Stem(vp.source)
	for _, key := range []string{stemKey(vp.oldDir, stem), normalizedStemKey(vp.oldDir, stem)} {
		if _, exists := s.videos[key]; !exists {
			s.videos[key] = vp
		}
	}
	s.order = append(s.order, vp)
}

// videoFor finds the video a companion named base belongs to, by exact stem
// and then by normalized stem.
func (s *session) videoFor(dir, base string) *videoPlan {
	if vp, ok := s.videos[stemKey(dir, base)]; ok {
		return vp
	}
	if vp, ok := s.videos[normalizedStemKey(dir, base)]; ok {
		return vp
	}
	return nil
}

// relocate plans a rename or move. It returns false when nothing was planned.
func (s *session) relocate(src, dst, reason string) bool {
	if src == dst || s.planned[src] {
		return false
	}
	if s.claimed[dst] {
		s.conflict(src, dst, "destination already claimed by another operation")
		return false
	}
	s.emit(Operation{Source: src, Destination: dst, Type: classify(src, dst), Reason: reason})
	return true
}

// remove plans a delete.
func (s *session) remove(src, reason string) bool {
	if s.planned[src] {
		return false
	}
	if s.claimed[src] {
		s.conflict(src, src, "path is the destination of another operation")
		return false
	}
	s.emit(Operation{Source: src, Destination: src, Type: OpDelete, Reason: reason})
	return true
}

func (s *session) emit(op Operation) {
	s.plan.Operations = append(s.plan.Operations, op)
	s.claimed[op.Destination] = true
	s.planned[op.Source] = true
	s.p.logger.Debug("planner", "Planned operation",
		logging.F("type", op.Type.String()),
		logging.F("source", op.Source),
		logging.F("destination", op.Destination))
}

func (s *session) conflict(src, dst, reason string) {
	s.plan.Conflicts = append(s.plan.Conflicts, Conflict{Source: src, Destination: dst, Reason: reason})
	s.p.logger.Warn("planner", "Skipping conflicting operation",
		logging.F("source", src),
		logging.F("destination", dst),
		logging.F("reason", reason))
}

func (s *session) isForeign(lang string) bool {
	return lang != "" && !s.p.kept[lang]
}

// removesForeign reports whether a subtitle in lang is deleted by the foreign
// language rule. Forced subtitles never are.
func (s *session) removesForeign(lang string, forced bool) bool {
	return s.p.cfg.Subtitles.RemoveForeign && !forced && s.isForeign(lang)
}

// tagsPortuguese reports whether an untagged subtitle should gain ".por".
func (s *session) tagsPortuguese(path string, n subtitle.Name) bool {
	if !s.p.cfg.Subtitles.AddMissingLanguage || n.Lang != "" || !strings.EqualFold(n.Ext, ".srt") {
		return false
	}
	if v, ok := s.portuguese[path]; ok {
		return v
	}
	v := subtitle.IsPortuguese(path, s.p.cfg.Subtitles.MinPortugueseWords)
	s.portuguese[path] = v
	return v
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func foreignReason(lang string) string {
	return fmt.Sprintf("Remove foreign language subtitle (%s)", lang)
}
