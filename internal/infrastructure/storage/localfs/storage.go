package localfs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage keeps attachment bytes on local disk, keyed by tenant and email.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/storage"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// SaveAttachment writes the attachment under <base>/<tenant>/<email>/<name>
// and returns the relative path plus the content digest.
func (s *Storage) SaveAttachment(_ context.Context, tenantID, emailID, filename string, data []byte) (string, string, error) {
	name := sanitizeFilename(filename)
	if name == "" {
		name = "attachment.bin"
	}

	dir := filepath.Join(s.basePath, sanitizeFilename(tenantID), sanitizeFilename(emailID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create attachment dir: %w", err)
	}

	fullPath := filepath.Join(dir, name)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("write attachment: %w", err)
	}

	rel, err := filepath.Rel(s.basePath, fullPath)
	if err != nil {
		return "", "", fmt.Errorf("relativize attachment path: %w", err)
	}

	sum := sha256.Sum256(data)
	return rel, hex.EncodeToString(sum[:]), nil
}

func (s *Storage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.basePath, path))
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	return f, nil
}

// sanitizeFilename strips path separators and traversal sequences so a hostile
// attachment name cannot escape the storage root.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '\x00':
			return '_'
		}
		return r
	}, name)
	return strings.TrimSpace(name)
}
