package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
)

// CollectionSource lists collections for export. [stores.CollectionStore] satisfies it.
type CollectionSource interface {
	ListByOwner(ownerID string) []models.Collection
	Find(id string) (models.Collection, bool)
}

// FeedRow is one category row of the home feed.
type FeedRow struct {
	Category models.Category
	Label    string
	Page     models.MoviePage
	Err      error
}

// Feed is the home screen: one row per category, in [models.Categories] order.
type Feed struct {
	Rows []FeedRow
}

// Failed returns the rows that could not be loaded.
func (f *Feed) Failed() []FeedRow {
	var failed []FeedRow
	for _, r := range f.Rows {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Engine runs catalog fan-outs and collection exports.
type Engine struct {
	catalog     services.Catalog
	collections CollectionSource
	images      services.Images
	httpClient  *http.Client
	logger      *log.Logger
}

// EngineOption configures an [Engine].
type EngineOption func(*Engine)

// WithImages sets the image URL builder used for export covers.
func WithImages(images services.Images) EngineOption {
	return func(e *Engine) { e.images = images }
}

// WithHTTPClient sets the client used to download covers.
func WithHTTPClient(client *http.Client) EngineOption {
	return func(e *Engine) { e.httpClient = client }
}

// WithLogger sets the engine logger.
func WithLogger(logger *log.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an [Engine]. Either dependency may be nil; operations needing it return [shared.ErrServiceUnavailable].
func NewEngine(catalog services.Catalog, collections CollectionSource, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:     catalog,
		collections: collections,
		images:      services.NewImages(""),
		logger:      shared.NewLogger(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// HomeFeed loads page of every category concurrently.
//
// A failing category is reported on its row; an error is returned only when every row failed.
func (e *Engine) HomeFeed(ctx context.Context, page int) (*Feed, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	type indexed struct {
		idx int
		row FeedRow
	}

	categories := models.Categories()
	p := pool.NewWithResults[indexed]().WithMaxGoroutines(len(categories))
	for i, category := range categories {
		p.Go(func() indexed {
			result, err := e.catalog.ListByCategory(ctx, category, page)
			return indexed{idx: i, row: FeedRow{Category: category, Label: category.Label(), Page: result, Err: err}}
		})
	}

	results := p.Wait()
	sort.Slice(results, func(a, b int) bool { return results[a].idx < results[b].idx })

	feed := &Feed{Rows: make([]FeedRow, 0, len(results))}
	var errs []error
	for _, r := range results {
		if r.row.Err != nil {
			e.logger.Warn("feed row failed", "category", r.row.Category, "error", r.row.Err)
			errs = append(errs, fmt.Errorf("%s: %w", r.row.Category, r.row.Err))
		}
		feed.Rows = append(feed.Rows, r.row)
	}

	if len(errs) == len(categories) {
		return feed, errors.Join(errs...)
	}
	return feed, nil
}
