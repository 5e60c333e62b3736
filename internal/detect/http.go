package detect

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/justyntemme/spotter/internal/debug"
	"github.com/justyntemme/spotter/internal/fs"
)

// DefaultURL is the inference endpoint used when none is configured.
const DefaultURL = "http://localhost:8000/detect"

// HTTPDetector sends every image in a folder to an inference server, draws
// the returned boxes onto a copy of the image and writes it to the outputs
// directory.
type HTTPDetector struct {
	url       string
	modelType string
	client    *http.Client
	names     []string
	minScore  float64
	workers   int
}

type inferenceRequest struct {
	RequestID string `json:"request_id"`
	Image     string `json:"image"` // Base64 encoded file bytes
	ModelType string `json:"model_type,omitempty"`
}

type inferenceResponse struct {
	LogID   string      `json:"log_id"`
	Errno   int         `json:"errno"`
	ErrMsg  string      `json:"err_msg"`
	Results []detection `json:"results"`
}

type detection struct {
	ClassID  int      `json:"class_id"`
	Label    string   `json:"label"`
	Score    float64  `json:"score"`
	Location Location `json:"location"`
}

// Location is a detection box in source image pixels.
type Location struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewHTTPDetector creates an inference client from opts.
func NewHTTPDetector(opts Options) (*HTTPDetector, error) {
	url := opts.URL
	if url == "" {
		url = DefaultURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	d := &HTTPDetector{
		url:       url,
		modelType: opts.ModelType,
		client:    &http.Client{Timeout: timeout},
		minScore:  opts.MinScore,
		workers:   workers,
	}

	if opts.NamesFile != "" {
		names, err := LoadNames(opts.NamesFile)
		if err != nil {
			return nil, err
		}
		d.names = names
	}
	return d, nil
}

// Close releases idle connections held by the client.
func (d *HTTPDetector) Close() {
	d.client.CloseIdleConnections()
}

// Detect implements Detector.
func (d *HTTPDetector) Detect(ctx context.Context, folder string) ([]Result, error) {
	entries, err := fs.ListImages(folder)
	if err != nil {
		return nil, err
	}

	outDir := fs.OutputsDir(folder)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create outputs directory")
	}

	debug.Log(debug.DETECT, "HTTP: %d images from %q, workers=%d", len(entries), folder, d.workers)

	results := make([]Result, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			outPath := filepath.Join(outDir, e.Name)
			labels, err := d.processImage(gctx, e.Path, outPath)
			if err != nil {
				return errors.Wrapf(err, "detect %s", e.Name)
			}
			results[i] = Result{ImagePath: outPath, Labels: labels}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (d *HTTPDetector) processImage(ctx context.Context, srcPath, outPath string) ([]string, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}

	dets, err := d.infer(ctx, data)
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(dets))
	boxes := make([]box, 0, len(dets))
	for _, det := range dets {
		if det.Score < d.minScore {
			continue
		}
		label := d.labelFor(det)
		labels = append(labels, label)
		boxes = append(boxes, box{Label: label, Location: det.Location})
	}

	if err := writeImage(outPath, annotate(img, boxes)); err != nil {
		return nil, err
	}
	debug.Log(debug.DETECT, "HTTP: %s -> %v", filepath.Base(srcPath), labels)
	return labels, nil
}

func (d *HTTPDetector) infer(ctx context.Context, data []byte) ([]detection, error) {
	body, err := json.Marshal(inferenceRequest{
		RequestID: uuid.NewString(),
		Image:     base64.StdEncoding.EncodeToString(data),
		ModelType: d.modelType,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "send request to inference server at %s", d.url)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("inference server returned status %d: %s", resp.StatusCode, preview(respBody))
	}

	var parsed inferenceResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, errors.Wrapf(err, "parse response (preview: %s)", preview(respBody))
	}
	if parsed.Errno != 0 {
		return nil, errors.Errorf("inference failed: %s (errno: %d)", parsed.ErrMsg, parsed.Errno)
	}
	return parsed.Results, nil
}

func (d *HTTPDetector) labelFor(det detection) string {
	if det.Label != "" {
		return det.Label
	}
	if det.ClassID >= 0 && det.ClassID < len(d.names) && d.names[det.ClassID] != "" {
		return d.names[det.ClassID]
	}
	return fmt.Sprintf("class %d", det.ClassID)
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
