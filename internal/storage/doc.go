// Package storage uploads captured card images to the blob store and returns
// fetchable URLs. Orphaned uploads from abandoned sessions are the storage
// layer's problem; this client never deletes.
package storage
