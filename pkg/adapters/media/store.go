// Package media stores generated documents and uploaded assets on the local filesystem
// and maps them to the URL paths they are served from.
package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/aretw0/printdesk/pkg/domain"
)

// Well-known media sub directories.
const (
	DirOutputs = "data_output"
	DirAssets  = "report/assets"
)

// maxNameAttempts bounds the suffixed names tried when a file name is taken.
const maxNameAttempts = 16

// ErrOutsideRoot is returned for paths escaping the media root.
var ErrOutsideRoot = errors.New("path escapes media root")

// Store implements ports.MediaStore on a directory.
type Store struct {
	root   string
	prefix string
}

// New creates a store rooted at dir, served under urlPrefix (e.g. "/media/").
func New(dir, urlPrefix string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid media root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &Store{root: abs, prefix: urlPrefix}, nil
}

// Root returns the absolute media directory.
func (s *Store) Root() string { return s.root }

// Prefix returns the URL prefix media is served under.
func (s *Store) Prefix() string { return s.prefix }

// cleanRel turns rel into a slash separated path that cannot climb above the root.
func cleanRel(rel string) string {
	return strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(rel)), "/")
}

func (s *Store) resolve(rel string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(cleanRel(rel)))
	if full != s.root && !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}

// Write stores data under dir/name. An existing file is never overwritten: a short
// random suffix is added to the name instead.
func (s *Store) Write(ctx context.Context, dir, name string, data []byte) (string, error) {
	name = filepath.Base(filepath.Clean(name))
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name")
	}

	folder, err := s.resolve(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			name = base + "_" + uuid.NewString()[:8] + ext
		}
		f, err := os.OpenFile(filepath.Join(folder, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) && attempt < maxNameAttempts {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", name, err)
		}
		_, werr := f.Write(data)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			_ = os.Remove(f.Name())
			return "", fmt.Errorf("failed to write %s: %w", name, werr)
		}
		break
	}
	return s.url(dir, name), nil
}

func (s *Store) url(dir, name string) string {
	dir = cleanRel(dir)
	if dir == "" {
		return s.prefix + name
	}
	return s.prefix + dir + "/" + name
}

// Remove deletes the file behind a URL path. Missing files are ignored.
func (s *Store) Remove(ctx context.Context, urlPath string) error {
	if !strings.HasPrefix(urlPath, s.prefix) {
		return fmt.Errorf("%q is not a media url", urlPath)
	}
	full, err := s.resolve(strings.TrimPrefix(urlPath, s.prefix))
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", urlPath, err)
	}
	return nil
}

// List describes the regular files stored directly under dir.
func (s *Store) List(ctx context.Context, dir string) ([]domain.Asset, error) {
	folder, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(folder)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []domain.Asset
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Asset{
			Name: e.Name(),
			URL:  s.url(dir, e.Name()),
			Size: info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Path returns the filesystem path of a stored file name under dir.
func (s *Store) Path(dir, name string) (string, error) {
	return s.resolve(path.Join(filepath.ToSlash(dir), name))
}
