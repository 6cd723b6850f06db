package archive

import (
	"fmt"
	"golang.org/x/net/context"
	"os"
	"path/filepath"

	"FaceDetection/pkg/s3"
)

const (
	DriverNone  = "none"
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Image is a received image worth keeping.
type Image struct {
	Name     string
	Format   string
	Data     []byte
	Checksum string
}

func (i Image) FileName() string {
	if i.Format == "" {
		return i.Name
	}
	return i.Name + "." + i.Format
}

func (i Image) ContentType() string {
	if i.Format == "" {
		return "application/octet-stream"
	}
	return "image/" + i.Format
}

type IArchive interface {
	Save(ctx context.Context, img Image) (string, error)
}

type localArchive struct {
	dir string
}

func NewLocal(dir string) (IArchive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive dir %s: %w", dir, err)
	}
	return &localArchive{dir: dir}, nil
}

func (a *localArchive) Save(_ context.Context, img Image) (string, error) {
	location := filepath.Join(a.dir, filepath.Base(img.FileName()))
	if err := os.WriteFile(location, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", location, err)
	}
	return location, nil
}

type s3Archive struct {
	client s3.ItfS3
	prefix string
}

func NewS3(client s3.ItfS3, prefix string) IArchive {
	return &s3Archive{client: client, prefix: prefix}
}

func (a *s3Archive) Save(ctx context.Context, img Image) (string, error) {
	var metadata map[string]string
	if img.Checksum != "" {
		metadata = map[string]string{"Blake2b-256": img.Checksum}
	}
	return a.client.UploadBytes(ctx, a.prefix+img.FileName(), img.ContentType(), img.Data, metadata)
}
