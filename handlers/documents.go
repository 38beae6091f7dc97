package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mindforge/mindmap-api/documents"
	"github.com/mindforge/mindmap-api/pdftext"
	"gorm.io/gorm"
)

// minExtractedChars is the threshold below which extracted text is treated as
// "no meaningful content" rather than outlined.
const minExtractedChars = 100

// UploadPDF serves POST /api/upload-pdf. The body is capped before any bytes
// are persisted, so an oversized upload never leaves a document record
// behind.
func (a *API) UploadPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.Cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(a.Cfg.MaxUploadBytes); err != nil {
		if isTooLarge(err) {
			respondError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 16MB")
			return
		}
		respondError(w, http.StatusBadRequest, "No file provided")
		return
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		respondError(w, http.StatusBadRequest, "No file selected")
		return
	}

	userID := strings.TrimSpace(r.FormValue("user_id"))
	userEmail := strings.TrimSpace(r.FormValue("user_email"))
	if userID == "" || userEmail == "" {
		respondError(w, http.StatusUnauthorized, "User authentication required")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		if isTooLarge(err) {
			respondError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 16MB")
			return
		}
		respondError(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	doc, err := a.Documents.Save(userID, userEmail, header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotPDF):
			respondError(w, http.StatusBadRequest, "Only PDF files are allowed")
		case errors.Is(err, documents.ErrMissingIdentity):
			respondError(w, http.StatusUnauthorized, "User authentication required")
		default:
			a.Log.Error("document save failed", "user_id", userID, "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to save document metadata")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "File uploaded successfully",
		"document_id": doc.ID,
		"filename":    doc.Filename,
		"size":        doc.FileSize,
	})
}

// ListDocuments serves GET /api/user-documents?user_id=...
func (a *API) ListDocuments(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		respondError(w, http.StatusBadRequest, "User ID required")
		return
	}

	docs, err := a.Documents.ListFor(userID)
	if err != nil {
		a.Log.Error("document listing failed", "user_id", userID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch documents")
		return
	}

	type documentSummary struct {
		ID         uint   `json:"id"`
		Filename   string `json:"filename"`
		FileSize   int64  `json:"file_size"`
		UploadedAt int64  `json:"uploaded_at"`
	}
	summaries := make([]documentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, documentSummary{
			ID:         doc.ID,
			Filename:   doc.Filename,
			FileSize:   doc.FileSize,
			UploadedAt: doc.UploadedAt,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"documents": summaries})
}

// DeleteDocument serves DELETE /api/delete-document/{docID}.
func (a *API) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("docID"), 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid document id")
		return
	}

	if err := a.Documents.Delete(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "Document not found")
			return
		}
		a.Log.Error("document delete failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Document deleted successfully",
	})
}

// PDFMindMap serves GET /api/pdf-mindmap/{docID}: extract the stored PDF's
// text and outline it into the same shape topic generation produces.
func (a *API) PDFMindMap(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("docID"), 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid document id")
		return
	}

	doc, err := a.Documents.Get(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "Document not found")
			return
		}
		a.Log.Error("document lookup failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate mindmap")
		return
	}

	if _, err := os.Stat(doc.FilePath); err != nil {
		respondError(w, http.StatusNotFound, "PDF file not found on server")
		return
	}

	text, err := a.Extractor.Extract(doc.FilePath)
	if err != nil {
		var extractionErr *pdftext.ExtractionError
		if errors.As(err, &extractionErr) {
			a.Log.Warn("pdf text extraction failed", "id", id, "error", err)
		} else {
			a.Log.Error("pdf text extraction failed", "id", id, "error", err)
		}
		respondError(w, http.StatusInternalServerError, "Failed to generate mindmap")
		return
	}

	if utf8.RuneCountInString(text) < minExtractedChars {
		respondError(w, http.StatusBadRequest, "Could not extract meaningful text from PDF")
		return
	}

	respondJSON(w, http.StatusOK, a.Outliner.Outline(text))
}

func isTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}
	// multipart may rewrap the limit error without preserving the chain.
	return err != nil && strings.Contains(err.Error(), "request body too large")
}
