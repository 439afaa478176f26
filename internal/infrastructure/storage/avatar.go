// Package storage persists uploaded profile pictures.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/codecraftkids/codecraft-api/pkg/helpers"
)

// objectName builds a collision-resistant name: <unix millis>-<8 hex><ext>.
func objectName(now time.Time, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8], ext)
}

// LocalAvatarStore writes files under Dir and returns /uploads/<name> style paths.
type LocalAvatarStore struct {
	Dir       string
	URLPrefix string
	Now       func() time.Time
}

func NewLocalAvatarStore(dir string) (*LocalAvatarStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalAvatarStore{Dir: dir, URLPrefix: "/uploads", Now: time.Now}, nil
}

func (s *LocalAvatarStore) Save(_ context.Context, _ string, filename, _ string, r io.Reader) (string, error) {
	name := objectName(s.Now(), filename)
	f, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path.Join(s.URLPrefix, name), nil
}

// Delete removes a file saved under Dir; a missing file is not an error.
func (s *LocalAvatarStore) Delete(_ context.Context, location string) error {
	name := path.Base(location)
	if name == "." || name == "/" || !strings.HasPrefix(location, s.URLPrefix+"/") {
		return fmt.Errorf("not a local avatar: %q", location)
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// GCSAvatarStore uploads to avatars/<userID>/<name> in Bucket and returns the public URL.
type GCSAvatarStore struct {
	Client *storage.Client
	Bucket string
	Now    func() time.Time
}

func NewGCSAvatarStore(client *storage.Client, bucket string) *GCSAvatarStore {
	return &GCSAvatarStore{Client: client, Bucket: bucket, Now: time.Now}
}

func (s *GCSAvatarStore) Save(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error) {
	objectPath := path.Join("avatars", userID, objectName(s.Now(), filename))
	return helpers.UploadObject(ctx, s.Client, s.Bucket, objectPath, contentType, r)
}

// Delete removes an object previously uploaded by Save.
func (s *GCSAvatarStore) Delete(ctx context.Context, location string) error {
	prefix := helpers.PublicURL(s.Bucket, "")
	if !strings.HasPrefix(location, prefix) {
		return fmt.Errorf("not an avatar in bucket %s: %q", s.Bucket, location)
	}
	return helpers.DeleteObject(ctx, s.Client, s.Bucket, strings.TrimPrefix(location, prefix))
}
