// Package assets materializes bundled resources on disk so external
// programs, such as the notification server, can load them by path.
package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// IconName is the file name of the provisioned icon.
const IconName = "icon.svg"

//go:embed icon.svg
var icon []byte

// Provisioner writes bundled assets into a directory.
type Provisioner struct {
	fs  afero.Fs
	dir string
}

// NewProvisioner creates a Provisioner writing into dir on fs.
func NewProvisioner(fs afero.Fs, dir string) *Provisioner {
	return &Provisioner{fs: fs, dir: dir}
}

// DefaultDir returns the per-user cache directory for appName.
func DefaultDir(appName string) (string, error) {
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating cache directory: %w", err)
	}
	return filepath.Join(cache, appName), nil
}

// ProvisionIcon writes the icon if it is missing or stale and returns its
// absolute path.
func (p *Provisioner) ProvisionIcon() (string, error) {
	dir, err := filepath.Abs(p.dir)
	if err != nil {
		return "", fmt.Errorf("resolving asset directory: %w", err)
	}
	path := filepath.Join(dir, IconName)

	existing, err := afero.ReadFile(p.fs, path)
	if err == nil && bytes.Equal(existing, icon) {
		return path, nil
	}

	if err := p.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating asset directory: %w", err)
	}

	// Write to a temporary name first so a reader never sees a partial icon.
	tmp := path + ".tmp"
	if err := afero.WriteFile(p.fs, tmp, icon, 0o644); err != nil {
		return "", fmt.Errorf("writing icon: %w", err)
	}
	if err := p.fs.Rename(tmp, path); err != nil {
		_ = p.fs.Remove(tmp)
		return "", fmt.Errorf("installing icon: %w", err)
	}

	return path, nil
}
