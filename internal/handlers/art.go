package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fvacek/unplayer/internal/logging"
)

// ArtResponse carries a cached or sibling artwork path. The path is
// empty when no artwork matched.
type ArtResponse struct {
	Art string `json:"art"`
}

// GetRandomArt returns a random artwork path, optionally narrowed by
// artist, artist plus album, or genre query parameters.
func (h *Handlers) GetRandomArt(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	artist := q.Get("artist")
	album := q.Get("album")
	genre := q.Get("genre")

	ctx := r.Context()
	var (
		art string
		err error
	)
	switch {
	case artist != "" && album != "":
		art, err = h.store.RandomArtForAlbum(ctx, artist, album)
	case artist != "":
		art, err = h.store.RandomArtForArtist(ctx, artist)
	case genre != "":
		art, err = h.store.RandomArtForGenre(ctx, genre)
	default:
		art, err = h.store.RandomArt(ctx)
	}
	if err != nil {
		logging.Error("failed to look up artwork: %v", err)
		writeJSONError(w, "failed to look up artwork", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, ArtResponse{Art: art})
}

// AssignArtRequest names an album and the image file to attach to it.
type AssignArtRequest struct {
	Artist    string `json:"artist"`
	Album     string `json:"album"`
	ImagePath string `json:"imagePath"`
}

// AssignArt copies the given image into the artwork cache and points
// every track of the album at it.
func (h *Handlers) AssignArt(w http.ResponseWriter, r *http.Request) {
	var req AssignArtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Artist == "" || req.Album == "" || req.ImagePath == "" {
		writeJSONError(w, "artist, album and imagePath are required", http.StatusBadRequest)
		return
	}

	cached, err := h.library.AssignArt(r.Context(), req.Artist, req.Album, req.ImagePath)
	if err != nil {
		logging.Error("failed to assign artwork: %v", err)
		writeJSONError(w, "failed to assign artwork", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, ArtResponse{Art: cached})
}
