// Package stores holds the application state containers.
//
// [SessionStore] tracks the current identity and persists it through an [IdentitySlot]; credentials are checked by an [Authenticator].
// [CollectionStore] owns the watchlists and the current selection.
//
// Both stores publish an immutable snapshot to subscribers synchronously after every change.
// Neither store logs or retries; errors are returned wrapped around the sentinels in the shared package.
package stores
