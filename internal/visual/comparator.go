// Package visual compares page screenshots against stored baselines.
package visual

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/orisano/pixelmatch"
	log "github.com/sirupsen/logrus"

	"github.com/dskochubey/selenium-automation-bundle/internal/browser"
	"github.com/dskochubey/selenium-automation-bundle/internal/config"
)

var (
	ErrMismatch     = errors.New("screenshot does not match baseline")
	ErrSizeMismatch = errors.New("screenshot size differs from baseline")
)

// Result describes one comparison.
type Result struct {
	Baseline   string
	Actual     string
	DiffPixels int
	Created    bool
}

// Comparator stores baselines per platform and browser so each combination
// keeps its own rendering.
type Comparator struct {
	baselineDir string
	outputDir   string
	threshold   float64
	maxDiff     int
	platform    string
	browserName string
	runID       string
	update      bool
}

func NewComparator(cfg *config.AppConfig) *Comparator {
	return &Comparator{
		baselineDir: cfg.Visual.BaselineDir,
		outputDir:   cfg.Visual.OutputDir,
		threshold:   cfg.Visual.Threshold,
		maxDiff:     cfg.Visual.MaxDiffPixels,
		platform:    cfg.Platform,
		browserName: cfg.Browser.Name,
		runID:       uuid.NewString(),
	}
}

// SetUpdate makes Match overwrite baselines instead of comparing against them.
func (c *Comparator) SetUpdate(update bool) {
	c.update = update
}

func (c *Comparator) RunID() string {
	return c.runID
}

func (c *Comparator) baselinePath(key, name string) string {
	return filepath.Join(c.baselineDir, c.platform, c.browserName, key, name+".png")
}

func (c *Comparator) actualPath(key, name string) string {
	return filepath.Join(c.outputDir, c.runID, key, name+".png")
}

// Match takes a screenshot and compares it with the baseline of key/name.
// A missing baseline is created from the screenshot.
func (c *Comparator) Match(ctx context.Context, d browser.Driver, key, name string) (*Result, error) {
	shot, err := d.Screenshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	actual, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	res := &Result{Baseline: c.baselinePath(key, name)}

	if _, errStat := os.Stat(res.Baseline); c.update || os.IsNotExist(errStat) {
		if err = writeFile(res.Baseline, shot); err != nil {
			return nil, err
		}
		log.Infof("Stored baseline %s", res.Baseline)
		res.Created = true
		return res, nil
	}

	baseline, err := readPNG(res.Baseline)
	if err != nil {
		return nil, err
	}

	res.DiffPixels, err = Compare(baseline, actual, c.threshold)
	if err == nil && res.DiffPixels <= c.maxDiff {
		log.Debugf("Screenshot %s/%s matches baseline", key, name)
		return res, nil
	}

	res.Actual = c.actualPath(key, name)
	if errWrite := writeFile(res.Actual, shot); errWrite != nil {
		log.Errorf("Failed to store screenshot %s: %v", res.Actual, errWrite)
	}
	if err != nil {
		return res, fmt.Errorf("%s/%s: %w", key, name, err)
	}
	return res, fmt.Errorf("%w: %s/%s differs in %d pixels (allowed %d), see %s", ErrMismatch, key, name, res.DiffPixels, c.maxDiff, res.Actual)
}

// Compare returns the number of pixels that differ beyond threshold.
func Compare(baseline, actual image.Image, threshold float64) (int, error) {
	if baseline.Bounds().Size() != actual.Bounds().Size() {
		return 0, fmt.Errorf("%w: baseline %v, actual %v", ErrSizeMismatch, baseline.Bounds().Size(), actual.Bounds().Size())
	}
	return pixelmatch.MatchPixel(baseline, actual, pixelmatch.Threshold(threshold))
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
