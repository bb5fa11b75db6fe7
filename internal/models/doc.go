// Package models defines the domain entities of marquee and the persistence interfaces.
//
// Catalog values are decoded verbatim from the movie provider and never mutated locally:
//   - [Movie] : a listing entry; details fill genres and runtime
//   - [MovieDetails] : a movie with videos, credits and recommendations
//   - [MoviePage] : one page of a listing or search
//   - [Genre], [Category]
//
// Application values:
//   - [Identity] : the current user's profile, held by the session store
//   - [Collection] : a watchlist owned by an identity; no movie appears twice
//   - [Account] : a persisted login implementing [Model] for the SQLite authenticator
//
// The Repository[T] interface defines standard CRUD operations for database access.
package models
