package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

type Request struct {
	Method  string
	Path    string
	Version string
	Headers http.Header
}

// Host returns the Host header, looked up case-insensitively.
func (r *Request) Host() string {
	return r.Headers.Get("Host")
}

// readRequest parses one request from r. At most maxSize bytes are
// consumed; a request line plus header block that does not fit is
// malformed. Zero bytes before EOF (or an idle timeout) yields
// errConnectionClosedEarly.
func readRequest(r io.Reader, maxSize int64) (*Request, error) {
	reader := bufio.NewReader(io.LimitReader(r, maxSize))

	// Distinguish "peer said nothing" from a truncated request line.
	if _, err := reader.Peek(1); err != nil {
		if err == io.EOF || os.IsTimeout(err) {
			return nil, errConnectionClosedEarly
		}
		return nil, err
	}

	method, rawTarget, version, err := parseRequestLine(reader)
	if err != nil {
		return nil, err
	}

	if method != http.MethodGet {
		return nil, fmt.Errorf("%w: unsupported method %q", errMalformedRequest, method)
	}
	if version != "HTTP/1.1" && version != "HTTP/1.0" {
		return nil, fmt.Errorf("%w: unsupported HTTP version %q", errMalformedRequest, version)
	}

	headers, err := readHeaders(reader)
	if err != nil {
		return nil, err
	}

	path, err := decodeTarget(rawTarget)
	if err != nil {
		return nil, err
	}

	return &Request{
		Method:  method,
		Path:    path,
		Version: version,
		Headers: headers,
	}, nil
}

func parseRequestLine(reader *bufio.Reader) (string, string, string, error) {
	// Read the Request-Line (e.g., "GET /hello.txt HTTP/1.1")
	requestLine, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", "", "", fmt.Errorf("%w: unterminated request line", errMalformedRequest)
		}
		return "", "", "", err
	}

	requestLine = strings.TrimRight(requestLine, "\r\n")

	parts := strings.Split(requestLine, " ")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("%w: invalid request line %q", errMalformedRequest, requestLine)
	}

	return parts[0], parts[1], parts[2], nil
}

// decodeTarget strips the query and fragment from an origin-form target
// and percent-decodes what is left.
func decodeTarget(rawTarget string) (string, error) {
	if !strings.HasPrefix(rawTarget, "/") {
		return "", fmt.Errorf("%w: target %q is not an absolute path", errMalformedRequest, rawTarget)
	}

	rawPath, _, _ := strings.Cut(rawTarget, "?")
	rawPath, _, _ = strings.Cut(rawPath, "#")

	decodedPath, err := url.PathUnescape(rawPath)
	if err != nil {
		return "", fmt.Errorf("%w: invalid path: %v", errMalformedRequest, err)
	}
	if strings.ContainsRune(decodedPath, 0) {
		return "", fmt.Errorf("%w: NUL byte in path", errMalformedRequest)
	}

	return decodedPath, nil
}
