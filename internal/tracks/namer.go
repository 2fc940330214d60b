// ABOUTME: Default output file names
// ABOUTME: Generates timestamped recording paths that do not collide with existing files
package tracks

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const timestampLayout = "20060102_150405"

// Namer builds <dir>/<prefix>_<YYYYMMDD>_<HHMMSS><ext>
type Namer struct {
	Dir string
	Ext string // with dot, default .opus
	Now func() time.Time
}

// NewNamer creates a namer for dir and extension
func NewNamer(dir, ext string) *Namer {
	return &Namer{Dir: dir, Ext: ext, Now: time.Now}
}

// DefaultName returns an unused path, appending _2, _3... on collision.
// The directory is created if missing.
func (n *Namer) DefaultName(prefix string) (string, error) {
	dir := n.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create recording directory: %w", err)
	}

	ext := n.Ext
	if ext == "" {
		ext = ".opus"
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}

	base := fmt.Sprintf("%s_%s", prefix, now().Format(timestampLayout))
	path := filepath.Join(dir, base+ext)
	for i := 2; fileExists(path); i++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
	}
	return path, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
