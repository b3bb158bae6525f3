package tags

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	dhowden "github.com/dhowden/tag"
	"go.senan.xyz/taglib"

	"github.com/fvacek/unplayer/internal/logging"
)

// Info holds everything the index stores about one audio file. Artist,
// album and genre are multi-valued; empty slices mean the tag is absent.
type Info struct {
	Title       string
	Artists     []string
	Albums      []string
	Genres      []string
	Year        int
	TrackNumber int
	DiscNumber  string
	Duration    int // seconds
	ArtData     []byte
}

// Reader extracts track metadata from a file whose MIME type has
// already been verified as a supported audio type.
type Reader interface {
	Extract(path, mimeType string) (Info, error)
}

// New returns the default TagLib-backed Reader.
func New() Reader {
	return &taglibReader{}
}

type taglibReader struct{}

func (r *taglibReader) Extract(path, mimeType string) (Info, error) {
	values, err := taglib.ReadTags(path)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Title:       first(values[taglib.Title]),
		Artists:     clean(values[taglib.Artist]),
		Albums:      clean(values[taglib.Album]),
		Genres:      clean(values[taglib.Genre]),
		Year:        parseYear(first(values[taglib.Date])),
		TrackNumber: parseNumber(first(values[taglib.TrackNumber])),
		DiscNumber:  first(values[taglib.DiscNumber]),
	}

	if info.Title == "" {
		base := filepath.Base(path)
		info.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	props, err := taglib.ReadProperties(path)
	if err != nil {
		logging.Debug("failed to read audio properties of %s: %v", path, err)
	} else {
		info.Duration = int(props.Length.Seconds())
	}

	info.ArtData = embeddedArt(path)

	return info, nil
}

// embeddedArt returns the first embedded picture of the file, or nil.
func embeddedArt(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	m, err := dhowden.ReadFrom(f)
	if err != nil {
		return nil
	}
	pic := m.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil
	}
	return pic.Data
}

func first(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func clean(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseNumber reads a leading integer from values like "3" or "3/12".
func parseNumber(s string) int {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseYear reads the year from a date tag like "2003" or "2003-04-01".
func parseYear(s string) int {
	if len(s) > 4 {
		s = s[:4]
	}
	return parseNumber(s)
}
