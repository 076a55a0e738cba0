package documents

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const MaxDocumentSize = 10 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// Store writes uploaded receipts and ID cards under dir. Stored names are
// random so nothing user-supplied ever reaches the filesystem path.
type Store struct {
	dir string
	log *logging.Logger
	now func() time.Time
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir, log: logging.L().Named("documents"), now: time.Now}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save copies r to a new file and returns its metadata. Files over
// MaxDocumentSize or with an unknown extension are refused.
func (s *Store) Save(original, contentType string, r io.Reader) (models.Document, error) {
	ext := strings.ToLower(filepath.Ext(original))
	if !allowedExtensions[ext] {
		return models.Document{}, fmt.Errorf("%q: %w", original, models.ErrInvalidDocument)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return models.Document{}, fmt.Errorf("create document: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, MaxDocumentSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > MaxDocumentSize {
		err = fmt.Errorf("%q: %w", original, models.ErrInvalidDocument)
	}
	if err != nil {
		os.Remove(path)
		return models.Document{}, err
	}

	s.log.Info("document stored", zap.String("name", name), zap.String("original", original), zap.Int64("size", n))
	return models.Document{
		Name:        name,
		Original:    filepath.Base(original),
		ContentType: contentType,
		Size:        n,
		UploadedAt:  s.now(),
	}, nil
}

func (s *Store) SaveUpload(fh *multipart.FileHeader) (models.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return models.Document{}, err
	}
	defer f.Close()

	return s.Save(fh.Filename, fh.Header.Get("Content-Type"), f)
}

// Remove deletes a stored document; a missing file is not an error.
func (s *Store) Remove(name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("%q: %w", name, models.ErrInvalidDocument)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
