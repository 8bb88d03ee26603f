package renamer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Nomadcxx/jellyfix/internal/logging"
	"github.com/Nomadcxx/jellyfix/internal/subtitle"
	"github.com/dustin/go-humanize"
)

// planMirabel converts legacy ".pt-BR.hi.srt" names to ".por" before the
// companion phase, following the video when it moves. A legacy file whose
// standard name already exists is a duplicate and is deleted.
func (s *session) planMirabel(files []string) {
	for _, path := range files {
		m, ok := subtitle.ParseMirabel(path)
		if !ok {
			continue
		}
		s.handled[path] = true

		if s.removesForeign("por", m.Forced) {
			s.remove(path, foreignReason("por"))
			continue
		}

		dir := filepath.Dir(path)
		base, targetDir := m.Base, dir
		if vp := s.videoFor(dir, m.Base); vp != nil {
			base, targetDir = vp.newStem, vp.newDir
		}
		dst := filepath.Join(targetDir, m.TargetName(base))
		if fileExists(dst) || fileExists(filepath.Join(dir, m.TargetName(m.Base))) {
			s.remove(path, "Remove legacy Mirabel subtitle (standard name already present)")
			continue
		}
		s.relocate(path, dst, fmt.Sprintf("Convert legacy Mirabel subtitle: %s -> %s", filepath.Base(path), filepath.Base(dst)))
	}
}

// planCompanionSubtitles is phase 2: subtitles whose base name matches a
// video ride along with it, foreign ones are deleted, and variants plus
// untagged files that still need a decision are left for planVariants.
func (s *session) planCompanionSubtitles(files []string) {
	for _, path := range files {
		if s.handled[path] {
			continue
		}
		dir := filepath.Dir(path)
		n := subtitle.ParseName(path)
		vp := s.videoFor(dir, n.Base)
		if vp == nil {
			continue
		}

		switch {
		case s.removesForeign(n.Lang, n.Forced()):
			s.remove(path, foreignReason(n.Lang))
			s.handled[path] = true
		case n.HasVariant:
		case n.Lang == "":
			if !s.tagsPortuguese(path, n) || s.variants[variantKey(dir, n.Base, "por")] {
				continue
			}
			s.followVideo(path, vp, "por", n)
		default:
			s.followVideo(path, vp, n.Lang, n)
		}
	}
}

func (s *session) followVideo(path string, vp *videoPlan, lang string, n subtitle.Name) {
	s.handled[path] = true
	name := subtitle.Render(vp.newStem, lang, n.FlagSuffix(), n.Ext)
	dst := filepath.Join(vp.newDir, name)
	if dst == path {
		return
	}
	reason := fmt.Sprintf("Match video name: %s -> %s", filepath.Base(path), name)
	if n.Lang == "" {
		reason = fmt.Sprintf("Add missing language code (.%s): %s -> %s", lang, filepath.Base(path), name)
	}
	if fileExists(dst) {
		s.conflict(path, dst, "destination already exists")
		return
	}
	s.relocate(path, dst, reason)
}

type variantMember struct {
	path    string
	variant int
	rest    string
	score   float64
	size    int64
}

type variantGroup struct {
	dir     string
	base    string
	lang    string
	ext     string
	members []*variantMember
}

// planVariants is phase 3. Numbered variants (".por2.srt") and untagged
// Portuguese files (as variant 0 of "por") are grouped per directory, base
// and language; the best scored member becomes the canonical file unless
// one already exists. Everything else goes through the residual pass.
func (s *session) planVariants(files []string) {
	groups := make(map[string]*variantGroup)
	var order []string
	var residual []string

	add := func(path string, n subtitle.Name, lang string, variant int) {
		dir := filepath.Dir(path)
		key := variantKey(dir, n.Base, lang) + "\x00" + strings.ToLower(n.Ext)
		g, ok := groups[key]
		if !ok {
			g = &variantGroup{dir: dir, base: n.Base, lang: lang, ext: n.Ext}
			groups[key] = g
			order = append(order, key)
		}
		g.members = append(g.members, &variantMember{
			path:    path,
			variant: variant,
			rest:    strings.TrimPrefix(filepath.Base(path), n.Base),
		})
	}

	for _, path := range files {
		if s.handled[path] || s.planned[path] {
			continue
		}
		n := subtitle.ParseName(path)
		switch {
		case n.Forced():
			residual = append(residual, path)
		case n.HasVariant && s.p.cfg.Subtitles.RenameVariants && !s.removesForeign(n.Lang, false):
			add(path, n, n.Lang, n.Variant)
		case s.tagsPortuguese(path, n):
			add(path, n, "por", 0)
		default:
			residual = append(residual, path)
		}
	}

	for _, key := range order {
		s.resolveGroup(groups[key])
	}
	for _, path := range residual {
		s.planResidual(path)
	}
}

func (s *session) resolveGroup(g *variantGroup) {
	for _, m := range g.members {
		m.score = subtitle.Score(m.path)
		if info, err := os.Stat(m.path); err == nil {
			m.size = info.Size()
		}
		s.p.logger.Debug("planner", "Scored subtitle variant",
			logging.F("path", m.path),
			logging.F("score", m.score),
			logging.F("size", m.size))
	}
	sort.SliceStable(g.members, func(i, j int) bool {
		if g.members[i].score != g.members[j].score {
			return g.members[i].score > g.members[j].score
		}
		return g.members[i].variant < g.members[j].variant
	})

	vp := s.videoFor(g.dir, g.base)
	local := filepath.Join(g.dir, subtitle.Render(g.base, g.lang, "", g.ext))
	target := local
	if vp != nil {
		target = filepath.Join(vp.newDir, subtitle.Render(vp.newStem, g.lang, "", g.ext))
	}
	removeVariants := s.p.cfg.Subtitles.RemoveVariants

	if s.claimed[target] || fileExists(target) || fileExists(local) {
		for _, m := range g.members {
			if removeVariants {
				s.remove(m.path, fmt.Sprintf("Remove duplicate variant %s (%s already exists)", filepath.Base(m.path), filepath.Base(target)))
			} else {
				s.keepVariant(m, vp)
			}
		}
		return
	}

	best := g.members[0]
	if best.score <= 0 {
		s.p.logger.Warn("planner", "All variants invalid, leaving group unrenamed",
			logging.F("dir", g.dir),
			logging.F("base", g.base),
			logging.F("lang", g.lang))
		return
	}
	reason := fmt.Sprintf("Promote best variant %s -> %s (score %.0f, %s)",
		filepath.Base(best.path), filepath.Base(target), best.score, humanize.Bytes(uint64(best.size)))
	if len(g.members) == 1 && best.variant == 0 {
		reason = fmt.Sprintf("Add missing language code (.%s): %s -> %s", g.lang, filepath.Base(best.path), filepath.Base(target))
	}
	if !s.relocate(best.path, target, reason) {
		return
	}

	for _, m := range g.members[1:] {
		if removeVariants {
			s.remove(m.path, fmt.Sprintf("Remove inferior variant %s (score %.0f, %s)",
				filepath.Base(m.path), m.score, humanize.Bytes(uint64(m.size))))
		} else {
			s.keepVariant(m, vp)
		}
	}
}

// keepVariant moves a surviving variant along with its relocated video.
func (s *session) keepVariant(m *variantMember, vp *videoPlan) {
	if vp == nil || !vp.moved {
		return
	}
	dst := filepath.Join(vp.newDir, vp.newStem+m.rest)
	s.relocate(m.path, dst, fmt.Sprintf("Match video name: %s -> %s", filepath.Base(m.path), filepath.Base(dst)))
}

// planResidual handles subtitles outside any variant group: foreign ones are
// deleted, untagged Portuguese ones gain ".por", and the rest follow their
// video when it moves.
func (s *session) planResidual(path string) {
	n := subtitle.ParseName(path)
	dir := filepath.Dir(path)

	if s.removesForeign(n.Lang, n.Forced()) {
		s.remove(path, foreignReason(n.Lang))
		return
	}

	vp := s.videoFor(dir, n.Base)
	if s.tagsPortuguese(path, n) {
		base, targetDir := n.Base, dir
		if vp != nil {
			base, targetDir = vp.newStem, vp.newDir
		}
		name := subtitle.Render(base, "por", n.FlagSuffix(), n.Ext)
		dst := filepath.Join(targetDir, name)
		if fileExists(dst) {
			s.conflict(path, dst, "destination already exists")
			return
		}
		s.relocate(path, dst, fmt.Sprintf("Add missing language code (.por): %s -> %s", filepath.Base(path), name))
		return
	}

	if vp != nil && vp.moved {
		dst := filepath.Join(vp.newDir, vp.newStem+strings.TrimPrefix(filepath.Base(path), n.Base))
		if fileExists(dst) {
			s.conflict(path, dst, "destination already exists")
			return
		}
		s.relocate(path, dst, fmt.Sprintf("Match video name: %s -> %s", filepath.Base(path), filepath.Base(dst)))
	}
}
