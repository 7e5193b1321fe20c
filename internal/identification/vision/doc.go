// Package vision provides the HTTP client for the card-recognition service.
// The service accepts uploaded image URLs and returns zero or more candidate
// identifications; the metadata is structured but unreliable, so callers must
// resolve it against the catalog before trusting it.
package vision
