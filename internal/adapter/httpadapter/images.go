package httpadapter

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/couchcryptid/travel-journal/internal/domain"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

type imageList struct {
	Items  []domain.ImageObject `json:"items"`
	Prefix string               `json:"prefix"`
	Bucket string               `json:"bucket"`
}

type deleteImageRequest struct {
	Key string `json:"key"`
}

type deleteImageResponse struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUpload {
		s.writeError(w, domain.ErrTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			s.writeError(w, domain.ErrTooLarge)
			return
		}
		s.writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp files only

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, fmt.Errorf("file is required: %w", domain.ErrInvalidInput))
		return
	}
	defer file.Close()

	img, err := s.images.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("image uploaded", "key", img.FileID, "size", header.Size)
	writeJSON(w, http.StatusOK, img)
}

func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	prefix := q.Get("prefix")

	maxKeys := 0
	if raw := q.Get("maxKeys"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, fmt.Errorf("maxKeys must be a non-negative integer: %w", domain.ErrInvalidInput))
			return
		}
		maxKeys = n
	}

	items, err := s.images.List(r.Context(), prefix, maxKeys)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if prefix == "" {
		prefix = s.images.Prefix()
	}
	writeJSON(w, http.StatusOK, imageList{Items: items, Prefix: prefix, Bucket: s.images.Bucket()})
}

func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	var in deleteImageRequest
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	if in.Key == "" {
		s.writeError(w, fmt.Errorf("key is required: %w", domain.ErrInvalidInput))
		return
	}
	if err := s.images.Delete(r.Context(), in.Key); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("image deleted", "key", in.Key)
	writeJSON(w, http.StatusOK, deleteImageResponse{Success: true, Key: in.Key})
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}
