package main

import "errors"

var (
	// Peer closed (or went idle) before sending anything. Not an error for logging purposes.
	errConnectionClosedEarly = errors.New("connection closed before request")

	errMalformedRequest     = errors.New("malformed request")
	errUnresolvedHost       = errors.New("unresolved host")
	errFileNotFound         = errors.New("file not found")
	errErrorDocumentMissing = errors.New("error document missing")
	errFilesystem           = errors.New("filesystem error")

	// ErrServerClosed is returned by Serve once Close has been called.
	ErrServerClosed = errors.New("vhttpd: server closed")
)
