package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/stores"
)

func TestBulkExport(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		format         formatter.Format
		owner          string
		wantSuccess    int
		validateResult func(t *testing.T, result *formatter.BulkExportResult, dir string)
	}{
		{
			name:        "json export",
			format:      formatter.FormatJSON,
			owner:       stores.DemoOwnerID,
			wantSuccess: 2,
			validateResult: func(t *testing.T, result *formatter.BulkExportResult, dir string) {
				for _, id := range []string{"w1", "w2"} {
					if _, err := os.Stat(filepath.Join(dir, id+".json")); err != nil {
						t.Errorf("JSON file not created for %s: %v", id, err)
					}
				}
			},
		},
		{
			name:        "csv export",
			format:      formatter.FormatCSV,
			owner:       stores.DemoOwnerID,
			wantSuccess: 2,
			validateResult: func(t *testing.T, result *formatter.BulkExportResult, dir string) {
				for _, res := range result.Results {
					if len(res.Files) != 2 {
						t.Errorf("CSV export should create 2 files, got %d", len(res.Files))
					}
				}
			},
		},
		{
			name:        "text export",
			format:      formatter.FormatText,
			owner:       stores.AdminOwnerID,
			wantSuccess: 1,
			validateResult: func(t *testing.T, result *formatter.BulkExportResult, dir string) {
				if _, err := os.Stat(filepath.Join(dir, "w3_movies.txt")); err != nil {
					t.Errorf("text file not created: %v", err)
				}
			},
		},
		{
			name:        "markdown export",
			format:      formatter.FormatMarkdown,
			owner:       stores.DemoOwnerID,
			wantSuccess: 2,
			validateResult: func(t *testing.T, result *formatter.BulkExportResult, dir string) {
				if _, err := os.Stat(filepath.Join(dir, "w1", "README.md")); err != nil {
					t.Errorf("README not created: %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			engine := NewEngine(nil, seededStore(t), WithLogger(quietLogger()))
			progress := make(chan ProgressUpdate, 32)

			result, err := engine.BulkExport(ctx, progress, tt.owner, BulkExportOpts{Format: tt.format, OutputDir: dir, NumWorkers: 2})
			if err != nil {
				t.Fatalf("BulkExport failed: %v", err)
			}

			if result.SuccessfulExports != tt.wantSuccess || result.FailedExports != 0 {
				t.Errorf("expected %d successes, got %d (failed %d)", tt.wantSuccess, result.SuccessfulExports, result.FailedExports)
			}
			if result.TotalCollections != tt.wantSuccess || len(result.Results) != tt.wantSuccess {
				t.Errorf("unexpected totals %+v", result)
			}
			if result.ManifestPath != filepath.Join(dir, "export_manifest.json") {
				t.Errorf("unexpected manifest path %s", result.ManifestPath)
			}

			data, err := os.ReadFile(result.ManifestPath)
			if err != nil {
				t.Fatalf("manifest not written: %v", err)
			}
			var manifest map[string]any
			if err := json.Unmarshal(data, &manifest); err != nil {
				t.Fatalf("manifest is not JSON: %v", err)
			}
			if manifest["format"] != string(tt.format) || manifest["owner_id"] != tt.owner {
				t.Errorf("unexpected manifest %v", manifest)
			}

			tt.validateResult(t, result, dir)

			close(progress)
			var messages []string
			for u := range progress {
				messages = append(messages, u.Message)
			}
			if len(messages) == 0 || !strings.HasPrefix(messages[0], "Found") {
				t.Errorf("expected listing update first, got %v", messages)
			}
		})
	}

	t.Run("Unknown Owner", func(t *testing.T) {
		engine := NewEngine(nil, seededStore(t), WithLogger(quietLogger()))
		_, err := engine.BulkExport(ctx, nil, "nobody", BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("No Store", func(t *testing.T) {
		engine := NewEngine(nil, nil)
		if _, err := engine.BulkExport(ctx, nil, "1", BulkExportOpts{}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Per Collection Failure", func(t *testing.T) {
		dir := t.TempDir()
		// A directory where w1.json should go makes that one write fail.
		if err := os.Mkdir(filepath.Join(dir, "w1.json"), 0755); err != nil {
			t.Fatal(err)
		}

		engine := NewEngine(nil, seededStore(t), WithLogger(quietLogger()))
		result, err := engine.BulkExport(ctx, nil, stores.DemoOwnerID, BulkExportOpts{OutputDir: dir})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if result.SuccessfulExports != 1 || result.FailedExports != 1 {
			t.Errorf("expected 1 success and 1 failure, got %+v", result)
		}
		for _, res := range result.Results {
			if res.CollectionID == "w1" && (res.Success || res.Error == nil) {
				t.Errorf("w1 should have failed: %+v", res)
			}
		}
	})

	t.Run("Markdown Covers", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			if !strings.HasPrefix(r.URL.Path, "/w500/") {
				t.Errorf("unexpected cover path %s", r.URL.Path)
			}
			w.Write([]byte("jpeg"))
		}))
		defer server.Close()

		dir := t.TempDir()
		engine := NewEngine(nil, seededStore(t),
			WithLogger(quietLogger()),
			WithImages(services.NewImages(server.URL)),
			WithHTTPClient(server.Client()),
		)

		result, err := engine.BulkExport(ctx, nil, stores.DemoOwnerID, BulkExportOpts{
			Format:    formatter.FormatMarkdown,
			OutputDir: dir,
			Covers:    true,
			RateLimit: 100,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if result.SuccessfulExports != 2 {
			t.Fatalf("expected 2 successes, got %+v", result)
		}
		if hits.Load() != 2 {
			t.Errorf("expected one cover download per watchlist, got %d", hits.Load())
		}
		if _, err := os.Stat(filepath.Join(dir, "w1", "cover.jpg")); err != nil {
			t.Errorf("cover not written: %v", err)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		engine := NewEngine(nil, seededStore(t), WithLogger(quietLogger()))
		_, err := engine.BulkExport(cctx, nil, stores.DemoOwnerID, BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
