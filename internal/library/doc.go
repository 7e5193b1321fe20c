// Package library owns the SQLite database shared by the catalog, collection,
// credit, and preference stores. It applies schema migrations on open and
// enforces single-writer access with a lock file next to the database, so a
// second carddex process cannot corrupt in-flight writes.
package library
