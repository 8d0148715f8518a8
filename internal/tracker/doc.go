// Package tracker implements content-addressed change detection. Files are
// fingerprinted with SHA-256 over their raw bytes; a file is re-indexed when
// its fingerprint is missing or differs from the stored one, or when a force
// rebuild is requested.
package tracker
