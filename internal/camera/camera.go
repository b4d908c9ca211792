// Package camera is the photo capture boundary. The stores only ever see
// the resulting opaque URI; image bytes are never interpreted.
package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrCanceled is returned when the user backs out without a photo.
var ErrCanceled = errors.New("capture canceled")

// Source selects where the photo comes from.
type Source string

const (
	SourceCamera  Source = "camera"
	SourceLibrary Source = "library"
)

// Picker produces an opaque URI for a captured or selected photo, or
// ErrCanceled.
type Picker interface {
	Pick(ctx context.Context, source Source) (string, error)
}

// FilePicker fulfils capture requests from a pre-selected file on disk,
// copying it into the workspace photo directory. It stands in for the
// device camera when driving the stores from the CLI.
type FilePicker struct {
	// SourcePath is the file to ingest; empty means the user canceled.
	SourcePath string
	// Dir receives the copies, e.g. <workspace>/.mzstay/photos.
	Dir string
}

func (p FilePicker) Pick(ctx context.Context, _ Source) (string, error) {
	if p.SourcePath == "" {
		return "", ErrCanceled
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src, err := os.Open(p.SourcePath)
	if err != nil {
		return "", fmt.Errorf("open photo: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.New().String() + filepath.Ext(p.SourcePath)
	destPath := filepath.Join(p.Dir, name)
	dest, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer dest.Close()
	if _, err := io.Copy(dest, src); err != nil {
		return "", fmt.Errorf("copy photo: %w", err)
	}
	abs, err := filepath.Abs(destPath)
	if err != nil {
		abs = destPath
	}
	return "file://" + abs, nil
}
