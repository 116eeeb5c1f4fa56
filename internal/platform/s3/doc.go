// Package s3 provides a client for S3-compatible object storage.
//
// It backs the remote state store and the fleet advisory lock. The client
// uses path-style addressing so self-hosted MinIO endpoints work without
// wildcard DNS.
package s3
