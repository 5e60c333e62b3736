package detect

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/justyntemme/spotter/internal/debug"
)

// CommandDetector runs an external detection program. The program receives
// the folder as its last argument, writes annotated images to the outputs
// directory itself and prints one JSON object per image on stdout:
//
//	{"image": "/photos/outputs/a.png", "labels": ["dog", "cat"]}
type CommandDetector struct {
	command string
	args    []string
	timeout time.Duration
}

type commandLine struct {
	Image  string   `json:"image"`
	Labels []string `json:"labels"`
}

// NewCommandDetector validates opts and returns a command-backed detector.
func NewCommandDetector(opts Options) (*CommandDetector, error) {
	if strings.TrimSpace(opts.Command) == "" {
		return nil, errors.New("detector command is not configured")
	}
	path, err := exec.LookPath(opts.Command)
	if err != nil {
		return nil, errors.Wrapf(err, "detector command %q", opts.Command)
	}
	return &CommandDetector{
		command: path,
		args:    append([]string(nil), opts.Args...),
		timeout: opts.Timeout,
	}, nil
}

// Detect implements Detector.
func (c *CommandDetector) Detect(ctx context.Context, folder string) ([]Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append(append([]string(nil), c.args...), folder)
	debug.Log(debug.DETECT, "Command: running %s %v", c.command, args)

	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "start %s", filepath.Base(c.command))
	}

	var results []Result
	var parseErr error
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var parsed commandLine
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			// Keep draining stdout so the process is not blocked on a full pipe.
			if parseErr == nil {
				parseErr = errors.Wrapf(err, "parse detector output %q", preview([]byte(line)))
			}
			continue
		}
		if parsed.Image == "" {
			if parseErr == nil {
				parseErr = errors.Errorf("detector output without image path: %q", preview([]byte(line)))
			}
			continue
		}
		path := parsed.Image
		if !filepath.IsAbs(path) {
			path = filepath.Join(folder, path)
		}
		results = append(results, Result{ImagePath: filepath.Clean(path), Labels: parsed.Labels})
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrapf(ctxErr, "%s stopped", filepath.Base(c.command))
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Wrapf(err, "%s: %s", filepath.Base(c.command), msg)
		}
		return nil, errors.Wrap(err, filepath.Base(c.command))
	}
	if scanErr != nil {
		return nil, errors.Wrap(scanErr, "read detector output")
	}
	if parseErr != nil {
		return nil, parseErr
	}

	debug.Log(debug.DETECT, "Command: %d results", len(results))
	return results, nil
}
