package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/agritrack/apiserver/internal/storage"
	"github.com/go-chi/chi/v5"
)

const maxImageBytes = 5 << 20

// maxUploadBytes caps the whole multipart request body: the image limit
// plus slack for the text fields and multipart framing. Bodies past the cap
// are cut off mid-stream rather than ingested and then rejected.
const maxUploadBytes = maxImageBytes + 1<<20

// allowedImageTypes maps accepted image extensions to their content type.
var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// UploadsHandler serves stored profile images.
type UploadsHandler struct {
	storage *storage.Storage
}

func NewUploadsHandler(store *storage.Storage) *UploadsHandler {
	return &UploadsHandler{storage: store}
}

// UploadsRouter registers the image serving route on the given router.
func UploadsRouter(r chi.Router, store *storage.Storage) {
	handler := NewUploadsHandler(store)
	r.Get("/{filename}", handler.GetImage)
}

// GetImage streams one stored image.
func (h *UploadsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	contentType, err := imageContentType(filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	object, err := h.storage.Get(r.Context(), filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		slog.Error("open stored image failed", "filename", filename, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, object); err != nil {
		slog.Error("stream stored image failed", "filename", filename, "error", err)
	}
}

// imageContentType validates a stored image filename and returns its content
// type. Names with path separators or unknown extensions are rejected.
func imageContentType(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", errors.New("invalid filename")
	}
	contentType, ok := allowedImageTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", errors.New("invalid filename")
	}
	return contentType, nil
}

// parseImageForm parses a multipart form carrying a profile image. The body
// is wrapped in a MaxBytesReader first, so an oversize upload stops at the
// cap instead of being read to completion before the size check.
func parseImageForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errors.New("image exceeds the 5MB size limit")
		}
		return errors.New("invalid multipart form")
	}
	return nil
}

// formFile returns the first uploaded file for the named field, or nil when
// the field is absent.
func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// saveProfileImage validates and stores an uploaded image under a randomized
// filename, returning the stored name.
func saveProfileImage(ctx context.Context, store *storage.Storage, fileHeader *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	contentType, ok := allowedImageTypes[ext]
	if !ok {
		return "", errors.New("only image files (jpeg, jpg, png, gif) are allowed")
	}
	if fileHeader.Size > maxImageBytes {
		return "", errors.New("image exceeds the 5MB size limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", errors.New("failed to read uploaded image")
	}
	defer file.Close()

	key := fmt.Sprintf("imagePhoto-%d-%s%s", time.Now().UnixMilli(), randomHex(8), ext)
	if err := store.Put(ctx, key, file, fileHeader.Size, contentType); err != nil {
		slog.Error("store uploaded image failed", "key", key, "error", err)
		return "", errors.New("failed to store uploaded image")
	}
	return key, nil
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
