package httpadapter

import (
	"net/http"

	"github.com/couchcryptid/travel-journal/internal/domain"
)

// --- posts ---

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.journal.ListPosts(r.Context(), s.isAdmin(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.journal.GetPost(r.Context(), r.PathValue("id"), s.isAdmin(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var in domain.Post
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.journal.CreatePost(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var in domain.Post
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.journal.UpdatePost(r.Context(), r.PathValue("id"), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.DeletePost(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- gallery ---

func (s *Server) handleListGallery(w http.ResponseWriter, r *http.Request) {
	items, err := s.journal.ListGallery(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateGalleryItem(w http.ResponseWriter, r *http.Request) {
	var in domain.GalleryItem
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	item, err := s.journal.CreateGalleryItem(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateGalleryItem(w http.ResponseWriter, r *http.Request) {
	var in domain.GalleryItem
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	item, err := s.journal.UpdateGalleryItem(r.Context(), r.PathValue("id"), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteGalleryItem(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.DeleteGalleryItem(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- profile ---

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.journal.GetProfile(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var in domain.Profile
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.journal.SaveProfile(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
