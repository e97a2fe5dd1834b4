// Package blobstore keeps uploaded images on disk, one file per distinct
// content hash.
//
// A blob lives at <root>/<h[0]>/.../<h[depth-1]>/<hash>. Identical uploads
// share one file; callers decide when a blob is no longer referenced and
// call Delete.
package blobstore

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"pattern-sphere-be/pkg/apperror"

	"github.com/gabriel-vasile/mimetype"
)

var hashPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

type Config struct {
	Root         string
	Depth        int
	MaxBytes     int64
	AllowedTypes []string
	PublicPrefix string
}

// Upload describes a checked and stored blob.
type Upload struct {
	Hash     string
	Filename string
	MimeType string
	Size     int64
	// Stored is true when this call wrote the file, false when it already existed.
	Stored bool
}

type Store struct {
	root         string
	depth        int
	maxBytes     int64
	allowed      []string
	publicPrefix string
}

func New(cfg Config) *Store {
	depth := cfg.Depth
	if depth < 0 {
		depth = 0
	}
	if depth > 8 {
		depth = 8
	}
	allowed := make([]string, 0, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			allowed = append(allowed, t)
		}
	}
	return &Store{
		root:         cfg.Root,
		depth:        depth,
		maxBytes:     cfg.MaxBytes,
		allowed:      allowed,
		publicPrefix: strings.TrimRight(cfg.PublicPrefix, "/"),
	}
}

// Hash returns the hex SHA-1 of data.
func Hash(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// ValidHash reports whether hash has the shape produced by Hash.
func ValidHash(hash string) bool {
	return hashPattern.MatchString(hash)
}

// CheckAndStore validates an upload by size and sniffed content type, then
// persists it under its content hash unless a blob with that hash exists.
func (s *Store) CheckAndStore(data []byte, filename string) (*Upload, error) {
	if len(data) == 0 {
		return nil, apperror.Validation("%s: no file selected", displayName(filename))
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, apperror.Validation("file size of %d exceeds maximum supported size of %d for %s", len(data), s.maxBytes, displayName(filename))
	}

	mtype := mimetype.Detect(data)
	if !s.isAllowed(mtype) {
		return nil, apperror.Validation("MIME type %s of uploaded file %s isn't supported as an image", mtype.String(), displayName(filename))
	}

	upload := &Upload{
		Hash:     Hash(data),
		Filename: filepath.Base(strings.TrimSpace(filename)),
		MimeType: mtype.String(),
		Size:     int64(len(data)),
	}
	if upload.Filename == "." || upload.Filename == string(filepath.Separator) {
		upload.Filename = ""
	}

	path, err := s.PathFor(upload.Hash)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		return upload, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, apperror.Storage(err)
	}

	if err := writeAtomic(path, data); err != nil {
		return nil, apperror.Storage(fmt.Errorf("could not store upload for %s: %w", displayName(filename), err))
	}
	upload.Stored = true
	return upload, nil
}

// PathFor maps hash to its file location, creating intermediate directories.
// It never creates the blob itself.
func (s *Store) PathFor(hash string) (string, error) {
	if !ValidHash(hash) {
		return "", apperror.Validation("malformed content hash %q", hash)
	}
	dir := s.dirFor(hash)
	if err := os.MkdirAll(dir, 0o775); err != nil {
		return "", apperror.Storage(fmt.Errorf("failed to create directory tree for file upload: %w", err))
	}
	return filepath.Join(dir, hash), nil
}

// Exists reports whether a blob with this hash is stored.
func (s *Store) Exists(hash string) bool {
	if !ValidHash(hash) {
		return false
	}
	_, err := os.Stat(s.locate(hash))
	return err == nil
}

// Delete unlinks the blob. It returns false when the blob was not present or
// could not be removed.
func (s *Store) Delete(hash string) bool {
	if !ValidHash(hash) {
		return false
	}
	return os.Remove(s.locate(hash)) == nil
}

// Open returns a reader over the blob together with its sniffed MIME type.
func (s *Store) Open(hash string) (io.ReadCloser, string, error) {
	if !ValidHash(hash) {
		return nil, "", apperror.NotFound("image", hash)
	}
	path := s.locate(hash)
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", apperror.NotFound("image", hash)
		}
		return nil, "", apperror.Storage(err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", apperror.Storage(err)
	}
	return f, mtype.String(), nil
}

// PublicURL is the address the image responder serves the blob from.
func (s *Store) PublicURL(hash string) string {
	return s.publicPrefix + "/" + hash
}

func (s *Store) isAllowed(mtype *mimetype.MIME) bool {
	for _, a := range s.allowed {
		if mtype.Is(a) {
			return true
		}
	}
	return false
}

func (s *Store) dirFor(hash string) string {
	parts := make([]string, 0, s.depth+1)
	parts = append(parts, s.root)
	for i := 0; i < s.depth; i++ {
		parts = append(parts, hash[i:i+1])
	}
	return filepath.Join(parts...)
}

func (s *Store) locate(hash string) string {
	return filepath.Join(s.dirFor(hash), hash)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o664); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func displayName(filename string) string {
	if strings.TrimSpace(filename) == "" {
		return "upload"
	}
	return filename
}
