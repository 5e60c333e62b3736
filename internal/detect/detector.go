// Package detect defines the object-detection collaborator used by the view
// state and the engines that implement it.
package detect

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/justyntemme/spotter/internal/debug"
	"github.com/justyntemme/spotter/internal/fs"
)

// Detector runs object detection over every image in a folder. Annotated
// copies are written to the folder's outputs directory; the returned results
// come back in no particular order.
type Detector interface {
	Detect(ctx context.Context, folder string) ([]Result, error)
}

// Result is the label list detected for one image.
type Result struct {
	ImagePath string
	Labels    []string
}

// Engine names a Detector implementation.
type Engine string

const (
	EngineHTTP    Engine = "http"
	EngineCommand Engine = "command"
)

// ParseEngine returns the engine for a config name. Unknown names fall back to HTTP.
func ParseEngine(name string) Engine {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "command", "cmd", "exec":
		return EngineCommand
	default:
		return EngineHTTP
	}
}

// Options configures the engine built by New.
type Options struct {
	Engine    Engine
	URL       string
	ModelType string
	Command   string
	Args      []string
	Timeout   time.Duration
	Workers   int
	NamesFile string
	MinScore  float64
}

// New builds the detector selected by opts.Engine.
func New(opts Options) (Detector, error) {
	debug.Log(debug.DETECT, "New: engine=%s url=%q command=%q", opts.Engine, opts.URL, opts.Command)
	switch opts.Engine {
	case EngineCommand:
		d, err := NewCommandDetector(opts)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		d, err := NewHTTPDetector(opts)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// Normalize prepares raw detector output for index alignment with a sorted
// outputs listing: entries that are not images are dropped, the rest are
// sorted by path and each label list is reduced to a sorted set.
func Normalize(results []Result) ([]Result, error) {
	out := make([]Result, 0, len(results))
	seen := make(map[string]bool, len(results))

	for _, r := range results {
		if !fs.IsImage(r.ImagePath) {
			debug.Log(debug.DETECT, "Normalize: dropping non-image result %q", r.ImagePath)
			continue
		}
		if seen[r.ImagePath] {
			return nil, errors.Errorf("duplicate detection result for %s", r.ImagePath)
		}
		seen[r.ImagePath] = true
		out = append(out, Result{ImagePath: r.ImagePath, Labels: LabelSet(r.Labels)})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ImagePath < out[j].ImagePath
	})
	return out, nil
}

// LabelSet returns the distinct labels in sorted order. The result is never nil.
func LabelSet(labels []string) []string {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
