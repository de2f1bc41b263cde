package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	credentialsDirName  = ".credentials"
	tokenFileName       = "token.json"
	credentialsFileName = "credentials.json"
)

// Paths computes the fixed filesystem locations used by mcp-gmail. All paths
// are derived from a single anchor directory so results do not depend on the
// process working directory.
type Paths struct {
	anchor string
}

var (
	defaultPaths     *Paths
	defaultPathsErr  error
	defaultPathsOnce sync.Once
)

// DefaultPaths returns paths anchored at the directory containing the
// installed binary. The anchor is resolved once per process; symlinks are
// evaluated so `go install`ed symlink wrappers behave like the real binary.
func DefaultPaths() (*Paths, error) {
	defaultPathsOnce.Do(func() {
		defaultPaths, defaultPathsErr = pathsFromExecutable()
	})
	return defaultPaths, defaultPathsErr
}

func pathsFromExecutable() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return NewPaths(filepath.Dir(exe))
}

// NewPaths returns paths anchored at the given directory. The anchor is made
// absolute so every derived path is absolute as well.
func NewPaths(anchor string) (*Paths, error) {
	abs, err := filepath.Abs(anchor)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve anchor %s: %w", anchor, err)
	}
	return &Paths{anchor: abs}, nil
}

// Anchor returns the absolute anchor directory.
func (p *Paths) Anchor() string {
	return p.anchor
}

// CredentialsDir returns the directory the OAuth token is stored under.
func (p *Paths) CredentialsDir() string {
	return filepath.Join(p.anchor, credentialsDirName)
}

// TokenPath returns the location of the persisted OAuth token.
func (p *Paths) TokenPath() string {
	return filepath.Join(p.CredentialsDir(), tokenFileName)
}

// CredentialsFile returns the location of the Google-issued client
// credentials file.
func (p *Paths) CredentialsFile() string {
	return filepath.Join(p.anchor, credentialsFileName)
}
