package visual

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskochubey/selenium-automation-bundle/internal/browser/browsertest"
	"github.com/dskochubey/selenium-automation-bundle/internal/config"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encode(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestComparator(t *testing.T) *Comparator {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Parse([]byte("platform: linux\n"))
	require.NoError(t, err)
	cfg.Visual.BaselineDir = filepath.Join(dir, "baselines")
	cfg.Visual.OutputDir = filepath.Join(dir, "out")
	return NewComparator(cfg)
}

func TestCompare(t *testing.T) {
	black := solid(8, 8, color.Black)

	n, err := Compare(black, solid(8, 8, color.Black), 0.1)
	require.NoError(t, err)
	assert.Zero(t, n)

	dotted := solid(8, 8, color.Black)
	dotted.Set(4, 4, color.White)
	n, err = Compare(black, dotted, 0.1)
	require.NoError(t, err)
	assert.Positive(t, n)

	_, err = Compare(black, solid(8, 9, color.Black), 0.1)
	require.ErrorIs(t, err, ErrSizeMismatch)
}

func TestMatch_CreatesThenCompares(t *testing.T) {
	c := newTestComparator(t)
	d := browsertest.New()
	d.Image = encode(t, solid(8, 8, color.Black))

	res, err := c.Match(context.Background(), d, "demo.LoginPage", "initial")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.FileExists(t, res.Baseline)
	assert.Contains(t, res.Baseline, filepath.Join("linux", "chrome", "demo.LoginPage", "initial.png"))

	res, err = c.Match(context.Background(), d, "demo.LoginPage", "initial")
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Zero(t, res.DiffPixels)
	assert.Empty(t, res.Actual)
}

func TestMatch_Mismatch(t *testing.T) {
	c := newTestComparator(t)
	d := browsertest.New()
	d.Image = encode(t, solid(8, 8, color.Black))
	_, err := c.Match(context.Background(), d, "demo.LoginPage", "initial")
	require.NoError(t, err)

	d.Image = encode(t, solid(8, 8, color.White))
	res, err := c.Match(context.Background(), d, "demo.LoginPage", "initial")
	require.ErrorIs(t, err, ErrMismatch)
	assert.Equal(t, 64, res.DiffPixels)
	assert.FileExists(t, res.Actual)
	assert.Contains(t, res.Actual, c.RunID())
}

func TestMatch_SizeMismatch(t *testing.T) {
	c := newTestComparator(t)
	d := browsertest.New()
	d.Image = encode(t, solid(8, 8, color.Black))
	_, err := c.Match(context.Background(), d, "k", "n")
	require.NoError(t, err)

	d.Image = encode(t, solid(4, 4, color.Black))
	_, err = c.Match(context.Background(), d, "k", "n")
	require.ErrorIs(t, err, ErrSizeMismatch)
}

func TestMatch_Update(t *testing.T) {
	c := newTestComparator(t)
	d := browsertest.New()
	d.Image = encode(t, solid(8, 8, color.Black))
	res, err := c.Match(context.Background(), d, "k", "n")
	require.NoError(t, err)

	c.SetUpdate(true)
	white := encode(t, solid(8, 8, color.White))
	d.Image = white
	res, err = c.Match(context.Background(), d, "k", "n")
	require.NoError(t, err)
	assert.True(t, res.Created)

	stored, err := os.ReadFile(res.Baseline)
	require.NoError(t, err)
	assert.Equal(t, white, stored)
}

func TestMatch_InvalidScreenshot(t *testing.T) {
	c := newTestComparator(t)
	d := browsertest.New()
	d.Image = []byte("not a png")

	_, err := c.Match(context.Background(), d, "k", "n")
	require.Error(t, err)
}
