package quality

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTag(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"Movie.2024.2160p.BluRay.mkv", "2160p"},
		{"Movie.2024.4K.UHD.mkv", "2160p"},
		{"Movie.2024.1080p.WEB-DL.mkv", "1080p"},
		{"Movie_1080p_x264", "1080p"},
		{"Movie [720p]", "720p"},
		{"Movie (480p)", "480p"},
		{"Movie.2024.8K.mkv", "8K"},
		{"The Matrix (1999) - 1080p", "1080p"},
		{"Movie.2024.mkv", ""},
		{"Movie 10800p", ""},
		{"Show.S01E01.HDTV", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTag(tt.filename))
		})
	}
}

func TestFromHeight(t *testing.T) {
	tests := []struct {
		height int
		want   Resolution
	}{
		{2160, Resolution2160p},
		{4320, Resolution2160p},
		{1080, Resolution1080p},
		{1088, Resolution1080p},
		{800, Resolution720p},
		{720, Resolution720p},
		{576, Resolution480p},
		{360, ResolutionUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromHeight(tt.height), "height %d", tt.height)
	}
}

func fakeRun(out string, err error) func(context.Context, string, ...string) ([]byte, error) {
	return func(ctx context.Context, binary string, args ...string) ([]byte, error) {
		return []byte(out), err
	}
}

func TestFFProbeDetectResolution(t *testing.T) {
	p := NewFFProbe("")
	p.run = fakeRun(`{"streams":[{"codec_type":"audio"},{"codec_type":"video","width":1920,"height":1080}]}`, nil)

	tag, err := p.DetectResolution(context.Background(), "/media/movie.mkv")
	require.NoError(t, err)
	assert.Equal(t, "1080p", tag)
}

func TestFFProbeNoVideoStream(t *testing.T) {
	p := NewFFProbe("ffprobe")
	p.run = fakeRun(`{"streams":[{"codec_type":"audio"}]}`, nil)

	tag, err := p.DetectResolution(context.Background(), "/media/movie.mkv")
	require.NoError(t, err)
	assert.Empty(t, tag)
}

func TestFFProbeErrors(t *testing.T) {
	p := NewFFProbe("ffprobe")
	_, err := p.DetectResolution(context.Background(), " ")
	assert.Error(t, err)

	p.run = fakeRun("boom", errors.New("exit status 1"))
	_, err = p.DetectResolution(context.Background(), "/media/movie.mkv")
	assert.ErrorContains(t, err, "boom")

	p.run = fakeRun("not json", nil)
	_, err = p.DetectResolution(context.Background(), "/media/movie.mkv")
	assert.ErrorContains(t, err, "ffprobe parse")
}
