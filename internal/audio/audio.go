package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpegbin "github.com/mgpai22/karaoke/internal/ffmpeg"
	"github.com/mgpai22/karaoke/internal/timing"
)

type mediaKind int

const (
	kindUnknown mediaKind = iota
	kindAudio
	kindVideo
)

var mediaKinds = map[string]mediaKind{
	".mp3":  kindAudio,
	".wav":  kindAudio,
	".aac":  kindAudio,
	".flac": kindAudio,
	".ogg":  kindAudio,
	".opus": kindAudio,
	".m4a":  kindAudio,
	".aiff": kindAudio,
	".mp4":  kindVideo,
	".mkv":  kindVideo,
	".avi":  kindVideo,
	".mov":  kindVideo,
	".webm": kindVideo,
	".m4v":  kindVideo,
}

func kindOf(path string) mediaKind {
	return mediaKinds[strings.ToLower(filepath.Ext(path))]
}

func IsAudioFile(path string) bool { return kindOf(path) == kindAudio }
func IsVideoFile(path string) bool { return kindOf(path) == kindVideo }
func IsMediaFile(path string) bool { return kindOf(path) != kindUnknown }

// GetDuration asks ffprobe for the container length of a backing track.
// Video containers work too; only the format section is read.
func GetDuration(ctx context.Context, path string) (time.Duration, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("file not found: %s", path)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return 0, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w: %s", err, lastLine(stderr.String()))
	}
	return parseDurationOutput(stdout.Bytes())
}

func parseDurationOutput(data []byte) (time.Duration, error) {
	var report struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(report.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe reported no usable duration %q: %w", report.Format.Duration, err)
	}
	return timing.SecondsToDuration(seconds), nil
}
