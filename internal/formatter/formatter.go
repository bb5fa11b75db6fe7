// package formatter exports collections to CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// Format is an export file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat accepts json, csv, markdown (md) and txt (text).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (json, csv, markdown, txt)", shared.ErrInvalidArgument, s)
	}
}

// CollectionMetadata is a collection without its movies.
type CollectionMetadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"userId"`
	IsPublic    bool      `json:"isPublic"`
	MovieCount  int       `json:"movieCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Metadata summarizes c.
func Metadata(c models.Collection) CollectionMetadata {
	return CollectionMetadata{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		OwnerID:     c.OwnerID,
		IsPublic:    c.IsPublic,
		MovieCount:  len(c.Movies),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func runtimeOf(m models.Movie) string {
	if m.Runtime == nil {
		return ""
	}
	return shared.FormatRuntime(*m.Runtime)
}

// movieLine renders "Title (Year)" with the year omitted when unknown.
func movieLine(m models.Movie) string {
	if year := shared.ReleaseYear(m.ReleaseDate); year != "" {
		return fmt.Sprintf("%s (%s)", m.Title, year)
	}
	return m.Title
}

// ExportToCSV converts a collection to CSV with columns: ID, Title, Year, Rating, Runtime, Genres
func ExportToCSV(c models.Collection) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Rating", "Runtime", "Genres"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range c.Movies {
		runtime := ""
		if m.Runtime != nil {
			runtime = strconv.Itoa(*m.Runtime)
		}
		record := []string{
			strconv.Itoa(m.ID),
			m.Title,
			shared.ReleaseYear(m.ReleaseDate),
			strconv.FormatFloat(m.VoteAverage, 'f', 1, 64),
			runtime,
			strings.Join(m.GenreNames(), "|"),
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

// ExportToMarkdown converts a collection to Markdown with an optional cover image
func ExportToMarkdown(c models.Collection, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", c.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if c.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", c.Description)
	}

	fmt.Fprintf(&buf, "**Movies**: %d\n", len(c.Movies))
	fmt.Fprintf(&buf, "**Visibility**: %s\n", shared.VisibilityString(c.IsPublic))
	fmt.Fprintf(&buf, "**Updated**: %s\n\n", c.UpdatedAt.Format("2006-01-02"))

	buf.WriteString("## Movies\n\n")
	for i, m := range c.Movies {
		details := []string{fmt.Sprintf("%.1f", m.VoteAverage)}
		if rt := runtimeOf(m); rt != "" {
			details = append(details, rt)
		}
		fmt.Fprintf(&buf, "%d. %s [%s]\n", i+1, movieLine(m), strings.Join(details, ", "))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a collection to plain text
func ExportToText(c models.Collection) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Watchlist: %s\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", c.Description)
	}
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(c.Movies))

	for i, m := range c.Movies {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, movieLine(m))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a full collection, movies included, to indented JSON
func ExportToJSON(c models.Collection) ([]byte, error) {
	return shared.MarshalJSON(c, true)
}

// ToMetadataJSON generates indented JSON of the collection metadata (without movies)
func ToMetadataJSON(c models.Collection) ([]byte, error) {
	return shared.MarshalJSON(Metadata(c), true)
}

// DownloadImage downloads an image with client and returns the raw bytes.
//
// A nil client uses a client with a 30 second timeout.
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	MoviesFile   string
	MetadataFile string
}

// WriteCSVExport writes {base}_movies.csv and {base}_metadata.json.
//
// The base path defaults to the collection ID.
func WriteCSVExport(c models.Collection, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = c.ID
	}

	csvData, err := ExportToCSV(c)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	moviesFile := baseFilepath + "_movies.csv"
	if err := os.WriteFile(moviesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(c)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{MoviesFile: moviesFile, MetadataFile: metadataFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport writes {dir}/README.md and, when cover is non-empty, {dir}/cover.jpg.
//
// The directory defaults to the collection ID.
func WriteMarkdownExport(c models.Collection, outputDir string, cover []byte) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = c.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	var coverFilename string
	if len(cover) > 0 {
		coverPath := filepath.Join(outputDir, "cover.jpg")
		if err := os.WriteFile(coverPath, cover, 0644); err != nil {
			return nil, fmt.Errorf("failed to save cover image: %w", err)
		}
		coverFilename = "cover.jpg"
		result.CoverImage = coverPath
		result.Files = append(result.Files, coverPath)
	}

	mdData, err := ExportToMarkdown(c, coverFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}

// WriteTextExport writes a plain text listing, defaulting to {collection.ID}_movies.txt.
func WriteTextExport(c models.Collection, path string) (string, error) {
	if path == "" {
		path = c.ID + "_movies.txt"
	}

	textData, err := ExportToText(c)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport writes the full collection, defaulting to {collection.ID}.json.
func WriteJSONExport(c models.Collection, path string) (string, error) {
	if path == "" {
		path = c.ID + ".json"
	}

	data, err := ExportToJSON(c)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}

// Write renders c to w in format. Markdown is rendered without a cover.
func Write(w io.Writer, c models.Collection, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = ExportToCSV(c)
	case FormatMarkdown:
		data, err = ExportToMarkdown(c, "")
	case FormatText:
		data, err = ExportToText(c)
	default:
		data, err = ExportToJSON(c)
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
