package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
)

const (
	defaultDocument = "index.html"
	errorDocument   = "404.html"
)

// Resource is a file resolved inside a document root, ready to be served.
type Resource struct {
	LocalFilePath string
	Status        int
	Body          []byte
}

// localPath maps a decoded request path to a file below documentRoot.
// The result is always documentRoot itself or inside it.
func localPath(documentRoot, requestPath string) (string, error) {
	if requestPath == "" || strings.HasSuffix(requestPath, "/") {
		requestPath += defaultDocument
	}

	// Cleaning a rooted path drops every ".." that would climb above "/".
	cleanPath := path.Clean("/" + requestPath)
	localFilePath := filepath.Join(documentRoot, filepath.FromSlash(cleanPath))

	rel, err := filepath.Rel(documentRoot, localFilePath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes document root", errFileNotFound, requestPath)
	}
	return localFilePath, nil
}

// resolveResource reads the file a request path names. A missing file
// resolves to the root's error document with status 404. The returned
// error is one of errFileNotFound, errErrorDocumentMissing or
// errFilesystem (all wrapped) and is informational when a Resource is
// also returned.
func resolveResource(documentRoot, requestPath string) (Resource, error) {
	localFilePath, err := localPath(documentRoot, requestPath)
	if err == nil {
		var body []byte
		localFilePath, body, err = readDocument(localFilePath)
		if err == nil {
			return Resource{LocalFilePath: localFilePath, Status: 200, Body: body}, nil
		}
	}

	if !isNotFound(err) {
		return Resource{}, fmt.Errorf("%w: %v", errFilesystem, err)
	}
	return notFoundResource(documentRoot, err)
}

// readDocument reads a file, falling back to the directory's default
// document when p names a directory.
func readDocument(p string) (string, []byte, error) {
	info, err := os.Stat(p)
	if err != nil {
		return p, nil, err
	}
	if info.IsDir() {
		p = filepath.Join(p, defaultDocument)
	}
	body, err := os.ReadFile(p)
	return p, body, err
}

func notFoundResource(documentRoot string, cause error) (Resource, error) {
	errorDocumentPath := filepath.Join(documentRoot, errorDocument)
	body, err := os.ReadFile(errorDocumentPath)
	if err != nil {
		return Resource{
			LocalFilePath: errorDocumentPath,
			Status:        404,
			Body:          builtinErrorBody(404),
		}, fmt.Errorf("%w: %s: %v", errErrorDocumentMissing, errorDocumentPath, err)
	}

	return Resource{
		LocalFilePath: errorDocumentPath,
		Status:        404,
		Body:          body,
	}, fmt.Errorf("%w: %v", errFileNotFound, cause)
}

func isNotFound(err error) bool {
	// "/index.html/x" fails with ENOTDIR rather than ENOENT
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) || errors.Is(err, errFileNotFound)
}
