// Package tasks runs operations that span several requests, with progress reporting for the CLI and TUI.
//
// # Operations
//
//  1. [Engine.HomeFeed] : the four category rows of the home screen
//     - Fetched concurrently with a [pool.ResultPool]
//     - Rows keep [models.Categories] order; a failed row carries its error
//
//  2. [Engine.BulkExport] : every watchlist of one user written to disk
//     - Worker pool over a jobs channel, at most 10 workers
//     - Optional cover download per watchlist, paced by a [rate.Limiter]
//     - Writes export_manifest.json summarizing successes and failures
//
// # Progress Reporting
//
// Updates are sent with select/default so a slow or absent reader never blocks the operation.
package tasks
