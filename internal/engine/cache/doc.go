// Package cache keeps recent prediction results on disk with TTL expiration.
//
// Entries are JSON files under ~/.ecopredict/cache/, one per distinct score
// input. The key is a SHA256 of the normalized input, so repeated predictions
// for the same household (the form re-submitted, the HTTP API polled) are
// answered without recomputing and survive across CLI invocations until the
// TTL lapses.
package cache
