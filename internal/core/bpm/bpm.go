// Package bpm estimates a track's tempo by decoding it to raw PCM with
// ffmpeg and piping the stream into an external analyzer.
package bpm

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// CheckFFmpeg checks if ffmpeg is installed and available in the system's PATH.
func CheckFFmpeg(path string) bool {
	_, err := exec.LookPath(path)
	return err == nil
}

// FFmpegDecoder decodes audio files to raw mono 44.1kHz 32-bit float PCM.
type FFmpegDecoder struct {
	Binary string
}

// NewFFmpegDecoder creates a decoder using the given ffmpeg binary.
func NewFFmpegDecoder(binary string) *FFmpegDecoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegDecoder{Binary: binary}
}

// Decode starts ffmpeg and returns its stdout as the PCM stream. Closing the
// stream reaps the process.
func (d *FFmpegDecoder) Decode(ctx context.Context, path string) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, d.Binary,
		"-vn", "-i", path,
		"-ar", "44100",
		"-ac", "1",
		"-f", "f32le",
		"pipe:1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	return &processReader{Reader: stdout, cmd: cmd}, nil
}

// processReader wraps a command's stdout; Close drains the pipe so the
// process can exit, then waits for it.
type processReader struct {
	io.Reader
	cmd *exec.Cmd
}

func (p *processReader) Close() error {
	io.Copy(io.Discard, p.Reader)
	return p.cmd.Wait()
}

// CommandEstimator runs an external analyzer that reads PCM on stdin and
// prints a single beats-per-minute value.
type CommandEstimator struct {
	Binary string
}

// NewCommandEstimator creates an estimator using the given analyzer binary.
func NewCommandEstimator(binary string) *CommandEstimator {
	if binary == "" {
		binary = "bpm"
	}
	return &CommandEstimator{Binary: binary}
}

// Estimate pipes the PCM stream into the analyzer and parses its output.
func (e *CommandEstimator) Estimate(ctx context.Context, pcm io.Reader) (float64, error) {
	cmd := exec.CommandContext(ctx, e.Binary)
	cmd.Stdin = pcm

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run analyzer: %w", err)
	}
	return parseOutput(output)
}

// parseOutput extracts the BPM value from the analyzer's stdout.
func parseOutput(output []byte) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse analyzer output %q: %w", strings.TrimSpace(string(output)), err)
	}
	return value, nil
}
