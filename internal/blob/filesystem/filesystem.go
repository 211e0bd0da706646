// Package filesystem stores blobs as files in a local directory. References
// are file names of the form <unix-millis>-<sanitized original name>.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fancystore/storeadmin/internal/blob"
)

const maxNameAttempts = 16

// Store is a directory-backed blob backend.
type Store struct {
	dir     string
	baseURL string
	now     func() time.Time
}

// New returns a store rooted at dir. The directory is created by Init.
func New(dir, baseURL string) *Store {
	return &Store{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

func (s *Store) Name() string { return "filesystem" }

// Init creates the upload directory.
func (s *Store) Init(context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir %s: %w", s.dir, err)
	}
	return nil
}

// Put writes obj to a new file. Names collide only when two uploads of the same
// file land in the same millisecond; the timestamp is bumped until O_EXCL
// succeeds.
func (s *Store) Put(ctx context.Context, obj *blob.Object, filename string) (string, error) {
	base := sanitizeFilename(filename, obj.ContentType)
	ts := s.now().UnixMilli()

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		name := strconv.FormatInt(ts+int64(attempt), 10) + "-" + base
		path := filepath.Join(s.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", name, err)
		}

		_, werr := f.Write(obj.Data)
		cerr := f.Close()
		if err := errors.Join(werr, cerr); err != nil {
			_ = os.Remove(path)
			return "", fmt.Errorf("write %s: %w", name, err)
		}
		return name, nil
	}
	return "", fmt.Errorf("no free file name for %q after %d attempts", base, maxNameAttempts)
}

func (s *Store) Get(_ context.Context, ref string) (*blob.Object, error) {
	path, ok := s.resolve(ref)
	if !ok {
		return nil, blob.ErrNotFound
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, blob.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}

	return &blob.Object{Data: data, ContentType: mimetype.Detect(data).String()}, nil
}

func (s *Store) Remove(_ context.Context, ref string) error {
	path, ok := s.resolve(ref)
	if !ok {
		return blob.ErrNotFound
	}
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return blob.ErrNotFound
	}
	return err
}

// URL returns the static path the file is served from.
func (s *Store) URL(ref string) string {
	return s.baseURL + "/uploads/" + url.PathEscape(ref)
}

func (s *Store) Ping(context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

// resolve maps ref to a path inside the upload directory. References that
// could escape it are rejected.
func (s *Store) resolve(ref string) (string, bool) {
	if ref == "" || ref == "." || ref == ".." ||
		strings.ContainsAny(ref, `/\`) || strings.Contains(ref, "..") {
		return "", false
	}
	return filepath.Join(s.dir, ref), true
}

// sanitizeFilename keeps the base name of filename restricted to a safe
// alphabet and makes sure it carries an extension for contentType.
func sanitizeFilename(filename, contentType string) string {
	name := filename
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	name = strings.TrimLeft(b.String(), ".")

	if name == "" {
		name = "image"
	}
	if filepath.Ext(name) == "" {
		if m := mimetype.Lookup(contentType); m != nil {
			name += m.Extension()
		}
	}
	return name
}
