package renamer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Nomadcxx/jellyfix/internal/subtitle"
)

// planExtras is phase 4. NFO files named after a relocated video are renamed
// to its new stem; every other file left in a folder the video abandoned is
// moved to the new folder under its own name. Series-level files (tvshow.nfo,
// posters) follow the series folder.
func (s *session) planExtras(videos []*videoPlan, nfos []string) {
	if s.p.cfg.Organize.RenameNFO {
		s.planNFOs(nfos)
	}

	done := make(map[string]bool)
	move := func(from, to string) {
		if from == to || s.isAnchor(from) || done[from+"\x00"+to] {
			return
		}
		done[from+"\x00"+to] = true
		s.moveFolderExtras(from, to)
	}

	for _, vp := range videos {
		if !vp.moved {
			continue
		}
		if vp.tv && vp.oldDir == vp.container {
			// episodes directly in the series folder
			move(vp.oldDir, vp.newContainer)
			continue
		}
		move(vp.oldDir, vp.newDir)
		if vp.tv {
			move(vp.container, vp.newContainer)
		}
	}
}

func (s *session) planNFOs(nfos []string) {
	for _, path := range nfos {
		if s.planned[path] || s.nonMedia[path] || strings.EqualFold(filepath.Base(path), "tvshow.nfo") {
			continue
		}
		n := subtitle.ParseName(path)
		vp := s.videoFor(filepath.Dir(path), n.Base)
		if vp == nil || !vp.moved {
			continue
		}
		dst := filepath.Join(vp.newDir, vp.newStem+filepath.Ext(path))
		if dst == path {
			continue
		}
		if fileExists(dst) {
			s.conflict(path, dst, "destination already exists")
			continue
		}
		s.relocate(path, dst, fmt.Sprintf("Rename NFO to match video: %s -> %s", filepath.Base(path), filepath.Base(dst)))
	}
}

func (s *session) moveFolderExtras(from, to string) {
	for _, path := range s.extras[from] {
		if s.planned[path] || s.nonMedia[path] {
			continue
		}
		dst := filepath.Join(to, filepath.Base(path))
		if fileExists(dst) {
			s.conflict(path, dst, "destination already exists")
			continue
		}
		s.relocate(path, dst, fmt.Sprintf("Move %s with its video folder", filepath.Base(path)))
	}
}

// planNonMedia is phase 5.
func (s *session) planNonMedia() {
	if !s.p.cfg.Cleanup.RemoveNonMedia {
		return
	}
	for _, path := range s.scan.NonMediaFiles {
		if s.planned[path] {
			continue
		}
		s.remove(path, "Remove non-media file")
	}
}
