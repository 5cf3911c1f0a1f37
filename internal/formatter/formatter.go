// package formatter writes library playlists to files (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/shared"
)

// Format names accepted by [Write].
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// imageClient fetches cover art for Markdown exports.
var imageClient = &http.Client{Timeout: 30 * time.Second}

// Formats lists the supported export formats.
func Formats() []string {
	return []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}
}

// ValidFormat reports whether f is a supported export format.
func ValidFormat(f string) bool {
	for _, s := range Formats() {
		if s == f {
			return true
		}
	}
	return false
}

// Slug turns a playlist name into a file-safe base name: "Rock Classics" -> "rock-classics".
func Slug(name string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "playlist"
	}
	return s
}

// Metadata describes an exported playlist without its tracks.
type Metadata struct {
	Name       string    `json:"name"`
	TrackCount int       `json:"track_count"`
	ExportedAt time.Time `json:"exported_at"`
}

// ExportToCSV converts a playlist to CSV with columns: Position, ID, VideoID, Title, Artist, URL
func ExportToCSV(pl models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "VideoID", "Title", "Artist", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range pl.Tracks {
		record := []string{
			strconv.Itoa(i + 1),
			track.ID,
			track.VideoID,
			track.Title,
			track.Artist,
			shared.WatchURL(track.VideoID),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown renders a playlist as a Markdown document with an optional cover image.
func ExportToMarkdown(pl models.Playlist, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", pl.Name)
	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(pl.Tracks))

	buf.WriteString("## Tracks\n\n")
	for i, track := range pl.Tracks {
		fmt.Fprintf(&buf, "%d. [%s - %s](%s)\n", i+1, track.Artist, track.Title, shared.WatchURL(track.VideoID))
	}
	return buf.Bytes(), nil
}

// ExportToText renders a playlist as plain text
func ExportToText(pl models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", pl.Name)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(pl.Tracks))
	for i, track := range pl.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.Artist, track.Title)
	}
	return buf.Bytes(), nil
}

// ExportToJSON encodes the playlist with its tracks.
func ExportToJSON(pl models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(pl, true)
}

// ToMetadataJSON encodes the playlist [Metadata].
func ToMetadataJSON(pl models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(Metadata{Name: pl.Name, TrackCount: len(pl.Tracks), ExportedAt: time.Now().UTC()}, true)
}

// DownloadImage fetches an image and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	resp, err := imageClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport creates {base}_tracks.csv and {base}_metadata.json.
func WriteCSVExport(pl models.Playlist, base string) (*CSVExportResult, error) {
	if base == "" {
		base = Slug(pl.Name)
	}

	csvData, err := ExportToCSV(pl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}
	tracksFile := base + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	meta, err := ToMetadataJSON(pl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}
	metadataFile := base + "_metadata.json"
	if err := os.WriteFile(metadataFile, meta, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{TracksFile: tracksFile, MetadataFile: metadataFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport writes {dir}/README.md and, when imageURL downloads, {dir}/cover.jpg.
//
// A failed cover download is not an error; the document is written without it.
func WriteMarkdownExport(pl models.Playlist, dir, imageURL string) (*MarkdownExportResult, error) {
	if dir == "" {
		dir = Slug(pl.Name)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: dir, Files: []string{}}

	var cover string
	if imageURL != "" {
		if data, err := DownloadImage(imageURL); err == nil {
			path := filepath.Join(dir, "cover.jpg")
			if err := os.WriteFile(path, data, 0644); err == nil {
				cover = "cover.jpg"
				result.CoverImage = path
				result.Files = append(result.Files, path)
			}
		}
	}

	md, err := ExportToMarkdown(pl, cover)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}
	mdFile := filepath.Join(dir, "README.md")
	if err := os.WriteFile(mdFile, md, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)
	return result, nil
}

// WriteTextExport writes the plain text rendering to path, defaulting to {slug}_tracks.txt.
func WriteTextExport(pl models.Playlist, path string) (string, error) {
	if path == "" {
		path = Slug(pl.Name) + "_tracks.txt"
	}
	data, err := ExportToText(pl)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}

// WriteJSONExport writes the JSON rendering to path, defaulting to {slug}.json.
func WriteJSONExport(pl models.Playlist, path string) (string, error) {
	if path == "" {
		path = Slug(pl.Name) + ".json"
	}
	data, err := ExportToJSON(pl)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("JSON write failed: %w", err)
	}
	return path, nil
}

// Write exports pl into dir in the given format and returns the files created.
// The cover for Markdown exports is the first track's album art.
func Write(pl models.Playlist, format, dir string) ([]string, error) {
	base := filepath.Join(dir, Slug(pl.Name))

	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(pl, base)
		if err != nil {
			return nil, fmt.Errorf("CSV export failed: %w", err)
		}
		return []string{res.TracksFile, res.MetadataFile}, nil
	case FormatMarkdown:
		var cover string
		if len(pl.Tracks) > 0 {
			cover = pl.Tracks[0].AlbumArt
		}
		res, err := WriteMarkdownExport(pl, base, cover)
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		return res.Files, nil
	case FormatText:
		path, err := WriteTextExport(pl, base+"_tracks.txt")
		if err != nil {
			return nil, fmt.Errorf("text export failed: %w", err)
		}
		return []string{path}, nil
	case FormatJSON, "":
		path, err := WriteJSONExport(pl, base+".json")
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteManifest encodes v as indented JSON to path.
func WriteManifest(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
