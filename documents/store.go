package documents

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/mindforge/mindmap-api/logger"
	"github.com/mindforge/mindmap-api/models"
	"gorm.io/gorm"
)

var (
	ErrMissingIdentity = errors.New("user id and email are required")
	ErrNotPDF          = errors.New("only PDF files are allowed")
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store persists uploaded documents: bytes on disk, metadata in the database.
// The metadata row is authoritative; file cleanup on delete is best-effort.
type Store struct {
	db        *gorm.DB
	uploadDir string
	log       *logger.Logger
	now       func() time.Time
}

func NewStore(db *gorm.DB, uploadDir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Store{db: db, uploadDir: uploadDir, log: log.With("service", "documents"), now: time.Now}, nil
}

// Save writes the file and then the metadata row. If the row cannot be
// written the file is removed again so no orphan remains on disk.
func (s *Store) Save(userID, userEmail, filename string, data []byte) (*models.Document, error) {
	userID = strings.TrimSpace(userID)
	userEmail = strings.TrimSpace(userEmail)
	if userID == "" || userEmail == "" {
		return nil, ErrMissingIdentity
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, ErrNotPDF
	}

	suffix, err := gonanoid.New(8)
	if err != nil {
		return nil, err
	}
	uploadedAt := s.now().Unix()
	stored := fmt.Sprintf("%s_%d_%s_%s", userID, uploadedAt, suffix, sanitizeFilename(filename))
	path := filepath.Join(s.uploadDir, stored)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing upload: %w", err)
	}

	doc := &models.Document{
		UserID:         userID,
		UserEmail:      userEmail,
		Filename:       filename,
		StoredFilename: stored,
		FilePath:       path,
		FileSize:       int64(len(data)),
		UploadedAt:     uploadedAt,
	}
	if err := s.db.Create(doc).Error; err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			s.log.Warn("could not remove file after failed metadata write", "path", path, "error", rmErr)
		}
		return nil, fmt.Errorf("saving document metadata: %w", err)
	}
	return doc, nil
}

// ListFor returns the user's documents, newest first.
func (s *Store) ListFor(userID string) ([]models.Document, error) {
	var docs []models.Document
	err := s.db.
		Where("user_id = ?", userID).
		Order("uploaded_at DESC, id DESC").
		Find(&docs).Error
	return docs, err
}

func (s *Store) Get(id uint) (*models.Document, error) {
	var doc models.Document
	if err := s.db.First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete removes the metadata row first, then tries to remove the file. A
// failed file removal is logged and otherwise ignored.
func (s *Store) Delete(id uint) error {
	doc, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&models.Document{}, id).Error; err != nil {
		return err
	}
	if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
		s.log.Warn("could not remove document file", "path", doc.FilePath, "error", err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	return unsafeFilenameChars.ReplaceAllString(base, "_")
}
