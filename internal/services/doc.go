// Package services adapts the external movie catalog.
//
// [TMDBService] implements [Catalog] against The Movie Database v3 API. Requests carry the api_key query parameter,
// or a v4 read access token as a Bearer header through an oauth2 static token source, and are paced by a token-bucket limiter.
// Failures are never retried.
//
// [Images] builds poster, backdrop and profile URLs for the provider's image CDN.
package services
