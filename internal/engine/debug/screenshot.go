// Package debug holds developer aids for the GL front-end.
package debug

import (
	"fmt"
	"image"
	"image/png"
	gomath "math"
	"os"
	"path/filepath"
	"time"
)

// srgb maps a linear 8-bit channel to gamma 2.2, matching what the UI
// applies when it composites the scene.
var srgb = func() (t [256]byte) {
	for i := range t {
		t[i] = byte(gomath.Round(255 * gomath.Pow(float64(i)/255, 1/2.2)))
	}
	return t
}()

// ScreenshotCapture writes framebuffer contents to timestamped PNG files.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewScreenshotCapture creates a new screenshot capture handler.
func NewScreenshotCapture(outputDir, prefix string) *ScreenshotCapture {
	return &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// Image converts linear bottom-up RGBA rows, as read back from the scene
// target, into an opaque gamma-encoded image.
func Image(pixels []byte, width, height int) (*image.RGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := range height {
		src := pixels[(height-1-y)*rowSize:][:rowSize]
		dst := img.Pix[y*img.Stride:][:rowSize]
		for x := 0; x < rowSize; x += 4 {
			dst[x] = srgb[src[x]]
			dst[x+1] = srgb[src[x+1]]
			dst[x+2] = srgb[src[x+2]]
			dst[x+3] = 255
		}
	}
	return img, nil
}

// CaptureFromPixels saves bottom-up RGBA pixels and returns the file
// written.
func (sc *ScreenshotCapture) CaptureFromPixels(pixels []byte, width, height int) (string, error) {
	img, err := Image(pixels, width, height)
	if err != nil {
		return "", err
	}

	if sc.outputDir != "" {
		if err := os.MkdirAll(sc.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	filename := sc.Filename()

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}

// Filename returns the name the next capture is written to.
func (sc *ScreenshotCapture) Filename() string {
	timestamp := sc.now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s.png", sc.prefix, timestamp)
	if sc.outputDir != "" {
		filename = filepath.Join(sc.outputDir, filename)
	}
	return filename
}
