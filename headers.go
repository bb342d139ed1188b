package main

import (
	"bufio"
	"fmt"
	"net/http"
	"strings"
)

// readHeaders consumes header lines up to and including the empty line
// that ends the header block. Running out of input first is an error: the
// block has to fit in the bounded reader.
func readHeaders(reader *bufio.Reader) (http.Header, error) {
	headers := http.Header{}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated header block: %v", errMalformedRequest, err)
		}

		// Empty line means we reached the end of the headers (CRLF or bare LF)
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		// Split in exactly two parts because there might be colons in the values (ports, user agent, etc)
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: header line without colon: %q", errMalformedRequest, line)
		}

		name = strings.TrimSpace(name)
		if name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("%w: invalid header name %q", errMalformedRequest, name)
		}

		headers.Add(name, strings.TrimSpace(value))
	}

	return headers, nil
}
