package formatter

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	th "github.com/desertthunder/marquee/internal/testing"
)

func testCollection() models.Collection {
	created := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	matrix := th.SampleMovie(603, "The Matrix")
	noRuntime := models.Movie{ID: 78, Title: "Blade Runner", ReleaseDate: "", VoteAverage: 7.9}
	return models.Collection{
		ID:          "w1",
		Name:        "Favorites",
		Description: "All-time favorites",
		OwnerID:     "1",
		IsPublic:    true,
		Movies:      []models.Movie{matrix, noRuntime},
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Hour),
	}
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in   string
		want Format
	}{
		{in: "", want: FormatJSON},
		{in: "JSON", want: FormatJSON},
		{in: "csv", want: FormatCSV},
		{in: "md", want: FormatMarkdown},
		{in: "markdown", want: FormatMarkdown},
		{in: "text", want: FormatText},
		{in: " txt ", want: FormatText},
	}
	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestExporters(t *testing.T) {
	c := testCollection()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(c)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		output := string(data)

		if !strings.Contains(output, "ID,Title,Year,Rating,Runtime,Genres") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "603,The Matrix,1999,8.2,120,Action") {
			t.Errorf("CSV missing matrix row, got: %s", output)
		}
		if !strings.Contains(output, "78,Blade Runner,,7.9,,") {
			t.Errorf("CSV missing blade runner row, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		t.Run("without cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(c, "")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}
			output := string(data)

			for _, want := range []string{
				"# Favorites",
				"**Description**: All-time favorites",
				"**Movies**: 2",
				"**Visibility**: Public",
				"**Updated**: 2024-01-02",
				"## Movies",
				"1. The Matrix (1999) [8.2, 2h 0m]",
				"2. Blade Runner [7.9]",
			} {
				if !strings.Contains(output, want) {
					t.Errorf("Markdown missing %q, got: %s", want, output)
				}
			}
			if strings.Contains(output, "![Cover]") {
				t.Error("Markdown should not reference a cover")
			}
		})

		t.Run("with cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(c, "cover.jpg")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}
			if !strings.Contains(string(data), "![Cover](cover.jpg)") {
				t.Errorf("Markdown missing cover image reference")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		private := c
		private.IsPublic = false
		data, err := ExportToText(private)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		output := string(data)

		for _, want := range []string{"Watchlist: Favorites", "Description: All-time favorites", "Movies: 2", "1. The Matrix (1999)", "2. Blade Runner"} {
			if !strings.Contains(output, want) {
				t.Errorf("Text missing %q", want)
			}
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(c)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		output := string(data)
		for _, want := range []string{`"id": "w1"`, `"userId": "1"`, `"isPublic": true`, `"title": "The Matrix"`} {
			if !strings.Contains(output, want) {
				t.Errorf("JSON missing %s", want)
			}
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(c)
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}
		output := string(data)
		if !strings.Contains(output, `"movieCount": 2`) {
			t.Errorf("metadata missing movie count: %s", output)
		}
		if strings.Contains(output, "The Matrix") {
			t.Errorf("metadata should not include movies")
		}
	})

	t.Run("Write", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, c, FormatText); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "Watchlist: Favorites") {
			t.Errorf("unexpected output %s", buf.String())
		}

		if err := Write(&th.FWriter{}, c, FormatCSV); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestDownloadImage(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyURL", func(t *testing.T) {
		if _, err := DownloadImage(ctx, nil, ""); err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg-bytes"))
		}))
		defer server.Close()

		data, err := DownloadImage(ctx, server.Client(), server.URL+"/w342/a.jpg")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "jpeg-bytes" {
			t.Errorf("unexpected body %q", data)
		}
	})

	t.Run("NonOK", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		if _, err := DownloadImage(ctx, server.Client(), server.URL); err == nil {
			t.Error("expected error for 404")
		}
	})

	t.Run("ReadFailure", func(t *testing.T) {
		client := &http.Client{Transport: th.NewMockRoundTripper(&http.Response{
			StatusCode: http.StatusOK,
			Body:       &th.FCloser{},
			Header:     make(http.Header),
		}, nil)}
		if _, err := DownloadImage(ctx, client, "http://images.invalid/a.jpg"); err == nil {
			t.Error("expected read error")
		}
	})
}

func TestWriters(t *testing.T) {
	c := testCollection()

	t.Run("WriteCSVExport", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "favorites")
		result, err := WriteCSVExport(c, base)
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}

		if result.MoviesFile != base+"_movies.csv" || result.MetadataFile != base+"_metadata.json" {
			t.Errorf("unexpected result %+v", result)
		}
		th.AssertFileExists(t, result.MoviesFile)
		th.AssertFileExists(t, result.MetadataFile)

		if !strings.Contains(th.MustReadFile(t, result.MoviesFile), "The Matrix") {
			t.Errorf("CSV missing movie data")
		}
		if !strings.Contains(th.MustReadFile(t, result.MetadataFile), "Favorites") {
			t.Errorf("metadata missing name")
		}
	})

	t.Run("WriteCSVExport Bad Path", func(t *testing.T) {
		if _, err := WriteCSVExport(c, filepath.Join(t.TempDir(), "missing", "x")); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("Without Cover", func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "w1")
			result, err := WriteMarkdownExport(c, dir, nil)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.CoverImage != "" || len(result.Files) != 1 {
				t.Errorf("unexpected result %+v", result)
			}
			content := th.MustReadFile(t, filepath.Join(dir, "README.md"))
			if !strings.Contains(content, "# Favorites") {
				t.Errorf("Markdown missing title")
			}
		})

		t.Run("With Cover", func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "w1")
			result, err := WriteMarkdownExport(c, dir, []byte("img"))
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.CoverImage != filepath.Join(dir, "cover.jpg") || len(result.Files) != 2 {
				t.Errorf("unexpected result %+v", result)
			}
			th.AssertFileExists(t, result.CoverImage)
			if !strings.Contains(th.MustReadFile(t, filepath.Join(dir, "README.md")), "![Cover](cover.jpg)") {
				t.Errorf("Markdown missing cover reference")
			}
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "w1.txt")
		got, err := WriteTextExport(c, path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		if !strings.Contains(th.MustReadFile(t, path), "1. The Matrix (1999)") {
			t.Errorf("Text missing listing")
		}
	})

	t.Run("WriteJSONExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "w1.json")
		if _, err := WriteJSONExport(c, path); err != nil {
			t.Fatalf("WriteJSONExport failed: %v", err)
		}
		if !strings.Contains(th.MustReadFile(t, path), `"Favorites"`) {
			t.Errorf("JSON missing name")
		}
	})

	t.Run("WriteBulkExportManifest", func(t *testing.T) {
		result := &BulkExportResult{
			OwnerID:           "1",
			TotalCollections:  2,
			SuccessfulExports: 1,
			FailedExports:     1,
			Results: []ExportResult{
				{CollectionID: "w1", CollectionName: "Favorites", Success: true, Files: []string{"w1.json"}},
				{CollectionID: "w2", CollectionName: "Watch Later", Error: errors.New("disk full")},
			},
		}

		path := filepath.Join(t.TempDir(), "export_manifest.json")
		if err := WriteBulkExportManifest(result, FormatCSV, path); err != nil {
			t.Fatalf("WriteBulkExportManifest failed: %v", err)
		}

		content := th.MustReadFile(t, path)
		for _, want := range []string{
			`"format": "csv"`,
			`"owner_id": "1"`,
			`"total_collections": 2`,
			`"successful_exports": 1`,
			`"failed_exports": 1`,
			`"status": "success"`,
			`"status": "failed"`,
			`"error": "disk full"`,
		} {
			if !strings.Contains(content, want) {
				t.Errorf("manifest missing %s", want)
			}
		}

		if err := WriteBulkExportManifest(result, FormatCSV, filepath.Join(t.TempDir(), "nope", "m.json")); err == nil {
			t.Error("expected error for missing directory")
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("manifest should still exist: %v", err)
		}
	})
}
