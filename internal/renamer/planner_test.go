package renamer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Nomadcxx/jellyfix/internal/config"
	"github.com/Nomadcxx/jellyfix/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const portugueseLine = "Você não pode fazer isso porque ela está aqui com uma amiga."

// srt renders n numbered caption blocks of text.
func srt(n int, text string) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d\n00:00:%02d,000 --> 00:00:%02d,500\n%s\n\n", i, i%60, i%60, text)
	}
	return b.String()
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Metadata.Enabled = false
	return cfg
}

func planOf(t *testing.T, cfg *config.Config, root string, opts ...Option) *Plan {
	t.Helper()
	plan, err := New(cfg, opts...).Plan(context.Background(), root)
	require.NoError(t, err)
	return plan
}

// opFor returns the operation whose source is path.
func opFor(t *testing.T, plan *Plan, path string) Operation {
	t.Helper()
	for _, op := range plan.Operations {
		if op.Source == path {
			return op
		}
	}
	require.Failf(t, "no operation", "no operation for %s in %+v", path, plan.Operations)
	return Operation{}
}

func assertUniqueDestinations(t *testing.T, plan *Plan) {
	t.Helper()
	seen := make(map[string]bool)
	for _, op := range plan.Operations {
		assert.False(t, seen[op.Destination], "duplicate destination %s", op.Destination)
		seen[op.Destination] = true
	}
}

func TestPlan_MovieWithSubtitle(t *testing.T) {
	root := t.TempDir()
	video := writeFile(t, root, "The.Matrix.1999.1080p.BluRay.mkv", "video")
	sub := writeFile(t, root, "The.Matrix.1999.1080p.BluRay.eng.srt", srt(3, "Wake up, Neo."))

	plan := planOf(t, config.DefaultConfig(), root)
	require.Len(t, plan.Operations, 2)

	videoOp := plan.Operations[0]
	assert.Equal(t, video, videoOp.Source)
	assert.Equal(t, filepath.Join(root, "The Matrix (1999)", "The Matrix (1999) - 1080p.mkv"), videoOp.Destination)
	assert.Equal(t, OpMoveRename, videoOp.Type)

	subOp := plan.Operations[1]
	assert.Equal(t, sub, subOp.Source)
	assert.Equal(t, filepath.Join(root, "The Matrix (1999)", "The Matrix (1999) - 1080p.eng.srt"), subOp.Destination)
	assert.Equal(t, OpMoveRename, subOp.Type)
	assert.Empty(t, plan.Conflicts)
}

func TestPlan_Episode(t *testing.T) {
	root := t.TempDir()
	video := writeFile(t, root, "Breaking Bad S01E05.mkv", "video")

	plan := planOf(t, testConfig(), root)
	require.Len(t, plan.Operations, 1)
	op := plan.Operations[0]
	assert.Equal(t, video, op.Source)
	assert.Equal(t, filepath.Join(root, "Breaking Bad", "Season 01", "Breaking Bad S01E05.mkv"), op.Destination)
	assert.Equal(t, OpMoveRename, op.Type)
}

func TestPlan_MultiEpisodeAndQuality(t *testing.T) {
	root := t.TempDir()
	video := writeFile(t, root, "Show.Name.S02E01-E02.720p.WEB-DL.mkv", "video")

	plan := planOf(t, testConfig(), root)
	op := opFor(t, plan, video)
	assert.Equal(t, filepath.Join(root, "Show Name", "Season 02", "Show Name S02E01-E02 - 720p.mkv"), op.Destination)
}

func TestPlan_NoOrganizeOnlyRenames(t *testing.T) {
	root := t.TempDir()
	video := writeFile(t, root, "Breaking.Bad.S01E05.mkv", "video")
	cfg := testConfig()
	cfg.Organize.OrganizeFolders = false

	plan := planOf(t, cfg, root)
	op := opFor(t, plan, video)
	assert.Equal(t, filepath.Join(root, "Breaking Bad S01E05.mkv"), op.Destination)
	assert.Equal(t, OpRename, op.Type)
}

func TestPlan_VariantResolution(t *testing.T) {
	root := t.TempDir()
	por2 := writeFile(t, root, "Movie.por2.srt", srt(40, "Olá"))
	por3 := writeFile(t, root, "Movie.por3.srt", srt(10, "Olá"))
	cfg := testConfig()
	cfg.Subtitles.RemoveVariants = true

	plan := planOf(t, cfg, root)
	require.Len(t, plan.Operations, 2)

	promote := opFor(t, plan, por2)
	assert.Equal(t, OpRename, promote.Type)
	assert.Equal(t, filepath.Join(root, "Movie.por.srt"), promote.Destination)

	drop := opFor(t, plan, por3)
	assert.Equal(t, OpDelete, drop.Type)
}

func TestPlan_VariantsKeptWithoutRemoval(t *testing.T) {
	root := t.TempDir()
	por2 := writeFile(t, root, "Movie.por2.srt", srt(5, "Olá"))
	writeFile(t, root, "Movie.por3.srt", srt(20, "Olá"))

	plan := planOf(t, testConfig(), root)
	require.Len(t, plan.Operations, 1)
	assert.Equal(t, filepath.Join(root, "Movie.por.srt"), plan.Operations[0].Destination)
	assert.NotEqual(t, por2, plan.Operations[0].Source)
}

func TestPlan_VariantsAllInvalid(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Movie.eng2.srt", "1\n00:00:01,000 --> x\nHi\n")
	writeFile(t, root, "Movie.eng3.srt", "2\n00:00:01,000 --> y\nHo\n")
	cfg := testConfig()
	cfg.Subtitles.RemoveVariants = true

	plan := planOf(t, cfg, root)
	assert.Empty(t, plan.Operations)
}

func TestPlan_VariantCanonicalExists(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Movie.eng.srt", srt(5, "Hi there"))
	eng2 := writeFile(t, root, "Movie.eng2.srt", srt(50, "Hi there"))

	plan := planOf(t, testConfig(), root)
	assert.Empty(t, plan.Operations)

	cfg := testConfig()
	cfg.Subtitles.RemoveVariants = true
	plan = planOf(t, cfg, root)
	require.Len(t, plan.Operations, 1)
	assert.Equal(t, OpDelete, opFor(t, plan, eng2).Type)
}

func TestPlan_VariantsFollowVideo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Movie.2010.mkv", "video")
	por2 := writeFile(t, root, "Movie.2010.por2.srt", srt(30, "Olá"))
	por3 := writeFile(t, root, "Movie.2010.por3.srt", srt(3, "Olá"))

	plan := planOf(t, testConfig(), root)
	dir := filepath.Join(root, "Movie (2010)")
	assert.Equal(t, filepath.Join(dir, "Movie (2010).por.srt"), opFor(t, plan, por2).Destination)
	assert.Equal(t, filepath.Join(dir, "Movie (2010).por3.srt"), opFor(t, plan, por3).Destination)
	assertUniqueDestinations(t, plan)
}

func TestPlan_ForeignAndForcedSubtitles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Movie.2010.mkv", "video")
	french := writeFile(t, root, "Movie.2010.fre.srt", srt(3, "Bonjour"))
	forced := writeFile(t, root, "Movie.2010.fre.forced.srt", srt(3, "Bonjour"))
	orphanForced := writeFile(t, root, "Other.ger.forced.srt", srt(3, "Hallo"))
	orphanGerman := writeFile(t, root, "Other.ger.srt", srt(3, "Hallo"))

	plan := planOf(t, testConfig(), root)

	frenchOp := opFor(t, plan, french)
	assert.Equal(t, OpDelete, frenchOp.Type)
	assert.Contains(t, frenchOp.Reason, "foreign language")

	forcedOp := opFor(t, plan, forced)
	assert.Equal(t, filepath.Join(root, "Movie (2010)", "Movie (2010).fre.forced.srt"), forcedOp.Destination)

	assert.Equal(t, OpDelete, opFor(t, plan, orphanGerman).Type)
	for _, op := range plan.Operations {
		assert.NotEqual(t, orphanForced, op.Source)
		if op.Type == OpDelete {
			assert.NotContains(t, filepath.Base(op.Source), ".forced.")
		}
	}
}

func TestPlan_ForcedSurviveEmptyKeepList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Movie.2010.mkv", "video")
	writeFile(t, root, "Movie.2010.eng.forced.srt", srt(3, "Hi"))
	writeFile(t, root, "Movie.2010.jpn.forced.srt", srt(3, "Konnichiwa"))

	cfg := testConfig()
	cfg.Subtitles.KeptLanguages = []string{}
	cfg.Subtitles.RemoveVariants = true
	cfg.Cleanup.RemoveNonMedia = true

	plan := planOf(t, cfg, root)
	for _, op := range plan.Operations {
		if op.Type == OpDelete {
			assert.NotContains(t, op.Source, ".forced.", op.Reason)
		}
	}
}

func TestPlan_AddsPortugueseCode(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Movie (2000)/Movie (2000).mkv", "video")
	sub := writeFile(t, root, "Movie (2000)/Movie (2000).srt", srt(6, portugueseLine))
	english := writeFile(t, root, "Movie (2000)/Movie (2000).en.srt", srt(6, "Hi there. Go now."))

	plan := planOf(t, testConfig(), root)
	require.Len(t, plan.Operations, 2)

	op := opFor(t, plan, sub)
	assert.Equal(t, OpRename, op.Type)
	assert.Equal(t, filepath.Join(root, "Movie (2000)", "Movie (2000).por.srt"), op.Destination)

	// "en" is normalized to the canonical code
	assert.Equal(t, filepath.Join(root, "Movie (2000)", "Movie (2000).eng.srt"), opFor(t, plan, english).Destination)
}

func TestPlan_UntaggedPortugueseCompetesWithVariants(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Movie (2000)/Movie (2000).mkv", "video")
	untagged := writeFile(t, root, "Movie (2000)/Movie (2000).srt", srt(30, portugueseLine))
	por2 := writeFile(t, root, "Movie (2000)/Movie (2000).por2.srt", srt(4, portugueseLine))
	cfg := testConfig()
	cfg.Subtitles.RemoveVariants = true

	plan := planOf(t, cfg, root)
	assert.Equal(t, filepath.Join(root, "Movie (2000)", "Movie (2000).por.srt"), opFor(t, plan, untagged).Destination)
	assert.Equal(t, OpDelete, opFor(t, plan, por2).Type)
}

func TestPlan_Mirabel(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Movie.2000.mkv", "video")
	legacy := writeFile(t, root, "Movie.2000.pt-BR.hi.srt", srt(3, portugueseLine))
	legacyForced := writeFile(t, root, "Movie.2000.br.hi.forced.srt", srt(3, portugueseLine))

	plan := planOf(t, testConfig(), root)
	dir := filepath.Join(root, "Movie (2000)")
	assert.Equal(t, filepath.Join(dir, "Movie (2000).por.srt"), opFor(t, plan, legacy).Destination)
	assert.Equal(t, filepath.Join(dir, "Movie (2000).por.forced.srt"), opFor(t, plan, legacyForced).Destination)
}

func TestPlan_MirabelDuplicateDeleted(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Movie (2000)/Movie (2000).mkv", "video")
	writeFile(t, root, "Movie (2000)/Movie (2000).por.srt", srt(3, portugueseLine))
	legacy := writeFile(t, root, "Movie (2000)/Movie (2000).pt-br.hi.srt", srt(3, portugueseLine))

	plan := planOf(t, testConfig(), root)
	require.Len(t, plan.Operations, 1)
	assert.Equal(t, OpDelete, opFor(t, plan, legacy).Type)
}

func TestPlan_ExtrasFollowMovieFolder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "The.Matrix.1999.1080p.BluRay/The.Matrix.1999.1080p.BluRay.mkv", "video")
	nfo := writeFile(t, root, "The.Matrix.1999.1080p.BluRay/The.Matrix.1999.1080p.BluRay.nfo", "<movie/>")
	poster := writeFile(t, root, "The.Matrix.1999.1080p.BluRay/poster.jpg", "jpg")
	notes := writeFile(t, root, "The.Matrix.1999.1080p.BluRay/notes.txt", "notes")

	plan := planOf(t, testConfig(), root)
	dir := filepath.Join(root, "The Matrix (1999)")

	assert.Equal(t, filepath.Join(dir, "The Matrix (1999) - 1080p.nfo"), opFor(t, plan, nfo).Destination)
	assert.Equal(t, filepath.Join(dir, "poster.jpg"), opFor(t, plan, poster).Destination)
	assert.Equal(t, OpMove, opFor(t, plan, poster).Type)
	assert.Equal(t, filepath.Join(dir, "notes.txt"), opFor(t, plan, notes).Destination)
}

func TestPlan_ExtrasSkipExistingDestination(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Old Name/Movie.2001.mkv", "video")
	poster := writeFile(t, root, "Old Name/poster.jpg", "old")
	writeFile(t, root, "Movie (2001)/poster.jpg", "new")

	plan := planOf(t, testConfig(), root)
	for _, op := range plan.Operations {
		assert.NotEqual(t, poster, op.Source)
	}
	require.Len(t, plan.Conflicts, 1)
	assert.Equal(t, poster, plan.Conflicts[0].Source)
}

func TestPlan_VideoDestinationExistsKeepsCompanions(t *testing.T) {
	root := t.TempDir()
	video := writeFile(t, root, "Movie.2010.mkv", "video")
	sub := writeFile(t, root, "Movie.2010.eng.srt", srt(3, "Hello there."))
	existing := writeFile(t, root, "Movie (2010)/Movie (2010).mkv", "other")

	plan := planOf(t, testConfig(), root)
	for _, op := range plan.Operations {
		assert.NotEqual(t, video, op.Source)
		assert.NotEqual(t, sub, op.Source)
	}
	require.Len(t, plan.Conflicts, 1)
	assert.Equal(t, video, plan.Conflicts[0].Source)
	assert.Equal(t, existing, plan.Conflicts[0].Destination)

	_, err := NewExecutor().Execute(context.Background(), plan.Operations, false)
	require.NoError(t, err)
	assert.FileExists(t, video)
	assert.FileExists(t, sub)
	assert.NoFileExists(t, filepath.Join(root, "Movie (2010)", "Movie (2010).eng.srt"))
}

func TestPlan_SeriesLevelFilesFollowSeriesFolder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "breaking.bad/Season 1/Breaking.Bad.S01E01.mkv", "video")
	tvshow := writeFile(t, root, "breaking.bad/tvshow.nfo", "<tvshow/>")
	thumb := writeFile(t, root, "breaking.bad/Season 1/season01-poster.jpg", "jpg")

	plan := planOf(t, testConfig(), root)
	series := filepath.Join(root, "Breaking Bad")
	assert.Equal(t, filepath.Join(series, "tvshow.nfo"), opFor(t, plan, tvshow).Destination)
	assert.Equal(t, filepath.Join(series, "Season 01", "season01-poster.jpg"), opFor(t, plan, thumb).Destination)
}

func TestPlan_CollectionFolderIsAnchor(t *testing.T) {
	root := t.TempDir()
	alien := writeFile(t, root, "Sci-Fi/Alien.1979.mkv", "video")
	aliens := writeFile(t, root, "Sci-Fi/Aliens.1986.mkv", "video")

	plan := planOf(t, testConfig(), root)
	assert.Equal(t, filepath.Join(root, "Sci-Fi", "Alien (1979)", "Alien (1979).mkv"), opFor(t, plan, alien).Destination)
	assert.Equal(t, filepath.Join(root, "Sci-Fi", "Aliens (1986)", "Aliens (1986).mkv"), opFor(t, plan, aliens).Destination)
}

func TestPlan_ProviderSuffixFolderIsKept(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "The Matrix (1999) [tmdbid-603]/The Matrix (1999).mkv", "video")

	plan := planOf(t, testConfig(), root)
	assert.Empty(t, plan.Operations)
}

func TestPlan_YearAdoptedFromFolder(t *testing.T) {
	root := t.TempDir()
	video := writeFile(t, root, "Heat (1995)/Heat.mkv", "video")

	plan := planOf(t, testConfig(), root)
	op := opFor(t, plan, video)
	assert.Equal(t, filepath.Join(root, "Heat (1995)", "Heat (1995).mkv"), op.Destination)
	assert.Equal(t, OpRename, op.Type)
}

func TestPlan_UniqueDestinations(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Movie.2000.mkv", "a")
	writeFile(t, root, "Movie (2000).mkv", "b")
	writeFile(t, root, "Movie.2000.eng.srt", srt(3, "Hi"))
	writeFile(t, root, "Movie (2000).eng.srt", srt(3, "Hi"))

	plan := planOf(t, testConfig(), root)
	assertUniqueDestinations(t, plan)
	assert.NotEmpty(t, plan.Conflicts)
}

func TestPlan_NonMediaCleanup(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Movie (2000)/Movie (2000).mkv", "video")
	junk := writeFile(t, root, "Movie (2000)/RARBG.txt", "junk")
	writeFile(t, root, "Movie (2000)/movie.nfo", "<movie/>")

	plan := planOf(t, testConfig(), root)
	assert.Empty(t, plan.Operations)

	cfg := testConfig()
	cfg.Cleanup.RemoveNonMedia = true
	plan = planOf(t, cfg, root)
	require.Len(t, plan.Operations, 1)
	assert.Equal(t, OpDelete, opFor(t, plan, junk).Type)
}

func TestPlan_MissingRoot(t *testing.T) {
	plan := planOf(t, testConfig(), filepath.Join(t.TempDir(), "missing"))
	assert.Empty(t, plan.Operations)
}

type fakeResolver struct {
	movies map[string]metadata.Metadata
	shows  map[string]metadata.Metadata
	calls  []string
}

func (f *fakeResolver) SearchMovie(ctx context.Context, title string, year int) (*metadata.Metadata, error) {
	f.calls = append(f.calls, "movie:"+title)
	if md, ok := f.movies[title]; ok {
		return &md, nil
	}
	return nil, metadata.ErrNotFound
}

func (f *fakeResolver) SearchTVShow(ctx context.Context, title string, year int) (*metadata.Metadata, error) {
	f.calls = append(f.calls, "tv:"+title)
	if md, ok := f.shows[title]; ok {
		return &md, nil
	}
	return nil, metadata.ErrNotFound
}

func TestPlan_WithResolver(t *testing.T) {
	root := t.TempDir()
	movie := writeFile(t, root, "Matrix.1999.720p.mkv", "video")
	ep1 := writeFile(t, root, "Doctor.Who.S01E01.mkv", "video")
	ep2 := writeFile(t, root, "Doctor.Who.S01E02.mkv", "video")

	resolver := &fakeResolver{
		movies: map[string]metadata.Metadata{"Matrix": {Title: "The Matrix", Year: 1999, TMDBID: 603}},
		shows:  map[string]metadata.Metadata{"Doctor Who": {Title: "Doctor Who", Year: 2005, TVDBID: 78804}},
	}
	cfg := config.DefaultConfig()

	plan := planOf(t, cfg, root, WithResolver(resolver))
	assert.Equal(t, filepath.Join(root, "The Matrix (1999) [tmdbid-603]", "The Matrix (1999) - 720p.mkv"), opFor(t, plan, movie).Destination)
	series := filepath.Join(root, "Doctor Who (2005) [tvdbid-78804]", "Season 01")
	assert.Equal(t, filepath.Join(series, "Doctor Who S01E01.mkv"), opFor(t, plan, ep1).Destination)
	assert.Equal(t, filepath.Join(series, "Doctor Who S01E02.mkv"), opFor(t, plan, ep2).Destination)

	// the series is looked up once
	tvCalls := 0
	for _, c := range resolver.calls {
		if strings.HasPrefix(c, "tv:") {
			tvCalls++
		}
	}
	assert.Equal(t, 1, tvCalls)
}

func TestPlan_ResolverFailureFallsBack(t *testing.T) {
	root := t.TempDir()
	movie := writeFile(t, root, "Unknown.Film.2003.mkv", "video")

	plan := planOf(t, config.DefaultConfig(), root, WithResolver(&fakeResolver{}))
	assert.Equal(t, filepath.Join(root, "Unknown Film (2003)", "Unknown Film (2003).mkv"), opFor(t, plan, movie).Destination)
}

type fakeProber struct{ tag string }

func (f fakeProber) DetectResolution(ctx context.Context, path string) (string, error) {
	return f.tag, nil
}

func TestPlan_ProbeQuality(t *testing.T) {
	root := t.TempDir()
	movie := writeFile(t, root, "Movie.2000.mkv", "video")
	cfg := testConfig()
	cfg.Organize.UseProbe = true

	plan := planOf(t, cfg, root, WithProber(fakeProber{tag: "1080p"}))
	assert.Equal(t, filepath.Join(root, "Movie (2000)", "Movie (2000) - 1080p.mkv"), opFor(t, plan, movie).Destination)

	cfg.Organize.UseProbe = false
	plan = planOf(t, cfg, root, WithProber(fakeProber{tag: "1080p"}))
	assert.Equal(t, filepath.Join(root, "Movie (2000)", "Movie (2000).mkv"), opFor(t, plan, movie).Destination)
}

func TestPlan_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Movie.2000.mkv", "video")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig()).Plan(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlan_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "The.Matrix.1999.1080p.BluRay/The.Matrix.1999.1080p.BluRay.mkv", "video")
	writeFile(t, root, "The.Matrix.1999.1080p.BluRay/The.Matrix.1999.1080p.BluRay.eng.srt", srt(3, "Wake up"))
	writeFile(t, root, "The.Matrix.1999.1080p.BluRay/The.Matrix.1999.1080p.BluRay.nfo", "<movie/>")
	writeFile(t, root, "The.Matrix.1999.1080p.BluRay/poster.jpg", "jpg")
	writeFile(t, root, "Show.Name.S01E01.720p.mkv", "video")
	writeFile(t, root, "Show.Name.S01E02.720p.mkv", "video")
	writeFile(t, root, "Show.Name.S01E02.720p.srt", srt(6, portugueseLine))
	writeFile(t, root, "Heat (1995)/Heat.mkv", "video")
	writeFile(t, root, "Heat (1995)/Heat.por2.srt", srt(8, portugueseLine))
	writeFile(t, root, "Heat (1995)/Heat.por3.srt", srt(2, portugueseLine))
	writeFile(t, root, "Heat (1995)/Heat.pt-BR.hi.srt", srt(2, portugueseLine))

	cfg := testConfig()
	cfg.Organize.DryRun = false
	planner := New(cfg)

	first, err := planner.Plan(context.Background(), root)
	require.NoError(t, err)
	require.NotEmpty(t, first.Operations)
	assertUniqueDestinations(t, first)

	result, err := NewExecutor(WithCleanupRoot(root)).Execute(context.Background(), first.Operations, false)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	assert.Zero(t, result.Stats.Skipped)

	second, err := planner.Plan(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, second.Operations, "second pass: %+v", second.Operations)

	assert.FileExists(t, filepath.Join(root, "The Matrix (1999)", "The Matrix (1999) - 1080p.mkv"))
	assert.FileExists(t, filepath.Join(root, "Show Name", "Season 01", "Show Name S01E02 - 720p.por.srt"))
	assert.NoDirExists(t, filepath.Join(root, "The.Matrix.1999.1080p.BluRay"))
}
