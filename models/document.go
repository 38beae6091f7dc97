package models

// Document is the metadata row for an uploaded PDF. The row is the source of
// truth; the file on disk is advisory and cleaned up best-effort on delete.
type Document struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         string `gorm:"not null;index"`
	UserEmail      string `gorm:"not null"`
	Filename       string `gorm:"not null"`
	StoredFilename string `gorm:"not null"`
	FilePath       string `gorm:"not null"`
	FileSize       int64  `gorm:"not null"`
	UploadedAt     int64  `gorm:"not null"` // unix seconds
}
