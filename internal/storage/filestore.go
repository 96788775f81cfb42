package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tryout-service/internal/util"
)

var ErrUnsupportedType = errors.New("unsupported file type")

// Image extensions accepted for transfer receipts.
var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// FileStore persists uploaded proof images under a single directory with
// collision-free names: <participantID>-<unix millis>.<ext>.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the uploaded content and returns the stored path.
func (s *FileStore) Save(participantID, originalName string, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrUnsupportedType
	}

	name := fmt.Sprintf("%s-%d%s", participantID, time.Now().UnixMilli(), ext)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create proof file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write proof file: %w", err)
	}

	util.Info("Payment proof stored",
		util.String("participant_id", participantID),
		util.String("path", path))
	return path, nil
}

// Remove deletes a stored proof, used to compensate a failed record insert.
func (s *FileStore) Remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		util.Warn("Failed to remove proof file",
			util.String("path", path),
			util.ErrorField(err))
	}
}
