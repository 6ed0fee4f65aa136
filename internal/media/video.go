// Package media prepares raw uploaded bytes for the inference pipeline:
// ingress validation, video frame sampling and audio container checks.
package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spacesedan/echomind/internal/errs"
)

// VideoSampler extracts the temporally middle frame of an encoded clip as
// a standalone JPEG. Stateless per call; nothing is cached across calls.
type VideoSampler struct {
	ffmpegPath  string
	ffprobePath string
}

func NewVideoSampler() *VideoSampler {
	return &VideoSampler{ffmpegPath: "ffmpeg", ffprobePath: "ffprobe"}
}

// MiddleFrameIndex returns the sampled frame index for an n-frame clip.
func MiddleFrameIndex(n int) int {
	return n / 2
}

// SampleMiddleFrame decodes the clip, seeks to frame floor(N/2) and
// re-encodes it as JPEG. A clip with zero frames is a decode failure,
// surfaced as a validation error; no partial recovery is attempted.
func (s *VideoSampler) SampleMiddleFrame(ctx context.Context, videoBytes []byte) ([]byte, error) {
	tmpVideo, err := os.CreateTemp("", "echomind_video_*.mp4")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp video file: %w", err)
	}
	defer os.Remove(tmpVideo.Name())

	if _, err := tmpVideo.Write(videoBytes); err != nil {
		tmpVideo.Close()
		return nil, fmt.Errorf("failed to write temp video file: %w", err)
	}
	tmpVideo.Close()

	frameCount, err := s.frameCount(ctx, tmpVideo.Name())
	if err != nil {
		return nil, errs.ValidationWrap(err, "could not decode video")
	}
	if frameCount == 0 {
		return nil, errs.Validation("video has no frames")
	}

	middle := MiddleFrameIndex(frameCount)
	slog.Debug("[VideoSampler] Extracting middle frame",
		slog.Int("total_frames", frameCount),
		slog.Int("frame_index", middle))

	frame, err := s.extractFrame(ctx, tmpVideo.Name(), middle)
	if err != nil {
		return nil, errs.ValidationWrap(err, "could not read frame from video")
	}
	return frame, nil
}

func (s *VideoSampler) frameCount(ctx context.Context, path string) (int, error) {
	cmd := exec.CommandContext(ctx, s.ffprobePath,
		"-v", "error",
		"-count_frames",
		"-select_streams", "v:0",
		"-show_entries", "stream=nb_read_frames",
		"-of", "default=nokey=1:noprint_wrappers=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	count, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, fmt.Errorf("ffprobe returned unparseable frame count %q", strings.TrimSpace(string(out)))
	}
	return count, nil
}

func (s *VideoSampler) extractFrame(ctx context.Context, path string, index int) ([]byte, error) {
	tmpFrame, err := os.CreateTemp("", "echomind_frame_*.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp frame file: %w", err)
	}
	tmpFrame.Close()
	defer os.Remove(tmpFrame.Name())

	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-y",
		"-i", path,
		"-vf", fmt.Sprintf("select=eq(n\\,%d)", index),
		"-frames:v", "1",
		tmpFrame.Name(),
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame extraction failed: %w (%s)", err, tail(string(out)))
	}

	frame, err := os.ReadFile(tmpFrame.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted frame: %w", err)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("ffmpeg produced an empty frame")
	}
	return frame, nil
}

func tail(s string) string {
	const max = 200
	if len(s) <= max {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s[len(s)-max:])
}
