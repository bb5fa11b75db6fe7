// Package server provides HTTP routing, middleware and the JSON API used by `marquee serve`.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers "METHOD /path" patterns on an [http.ServeMux], so path wildcards
// such as {id} are available through [http.Request.PathValue].
//
// # API
//
// [API] exposes the session store, the catalog and the collection store:
//
//	GET    /api/health
//	GET    /api/session                          current identity
//	POST   /api/session/login                    {email, password}
//	POST   /api/session/register                 {username, email, password}
//	POST   /api/session/logout
//	GET    /api/feed                             all category rows
//	GET    /api/movies?category=&page=
//	GET    /api/movies/search?q=&page=
//	GET    /api/movies/{id}
//	GET    /api/genres
//	GET    /api/watchlists                       the current user's watchlists
//	GET    /api/watchlists/public
//	GET    /api/watchlists/current
//	POST   /api/watchlists                       {name, description, isPublic}
//	GET    /api/watchlists/{id}
//	PATCH  /api/watchlists/{id}                  {name?, description?, isPublic?}
//	DELETE /api/watchlists/{id}
//	POST   /api/watchlists/{id}/current
//	POST   /api/watchlists/{id}/movies           {movieId}
//	DELETE /api/watchlists/{id}/movies/{movieId}
//	GET    /api/admin/stats                      admins only
//
// Errors are written as {"error": "..."} with the status from [StatusFor]. Only the owner or an admin
// may change a watchlist; private watchlists of other users answer 404.
//
// The session is process-wide: the server serves the one person using this installation.
package server
