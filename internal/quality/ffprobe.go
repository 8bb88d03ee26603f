package quality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// FFProbe detects resolution by running ffprobe against the file.
type FFProbe struct {
	Binary  string
	Timeout time.Duration
	run     func(ctx context.Context, binary string, args ...string) ([]byte, error)
}

// NewFFProbe returns a prober for binary ("ffprobe" when empty).
func NewFFProbe(binary string) *FFProbe {
	return &FFProbe{Binary: binary, Timeout: 10 * time.Second}
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// DetectResolution returns the tag of the first video stream, or "" when the
// stream is smaller than 480 lines or no video stream exists.
func (p *FFProbe) DetectResolution(ctx context.Context, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("ffprobe inspect: empty path")
	}
	binary := strings.TrimSpace(p.Binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	run := p.run
	if run == nil {
		run = runCommand
	}
	output, err := run(ctx, binary, "-v", "error", "-hide_banner", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return "", fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return "", fmt.Errorf("ffprobe parse: %w", err)
	}
	for _, stream := range result.Streams {
		if strings.EqualFold(stream.CodecType, "video") && stream.Height > 0 {
			return FromHeight(stream.Height).Tag(), nil
		}
	}
	return "", nil
}

func runCommand(ctx context.Context, binary string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).Output()
}
