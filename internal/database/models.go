package database

// TrackRow is the subset of a tracks row the reconciliation engine
// needs: identity, location, change detection and artwork reference.
type TrackRow struct {
	ID      int
	Path    string
	ModTime int64 // epoch millis at last successful scan
	ArtPath string
}

// Stats summarizes the index for the status API.
type Stats struct {
	Artists  int `json:"artists"`
	Albums   int `json:"albums"`
	Tracks   int `json:"tracks"`
	Duration int `json:"duration"` // seconds, counted once per track id
}
