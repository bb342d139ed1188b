package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
)

const contentType = "text/html"

type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

func newResponse(status int, body []byte) *Response {
	return &Response{Status: status, ContentType: contentType, Body: body}
}

// newErrorResponse answers with the built-in body for status.
func newErrorResponse(status int) *Response {
	return newResponse(status, builtinErrorBody(status))
}

// builtinErrorBody is the body used when no error document is available.
// Simple, efficient, refined.
func builtinErrorBody(status int) []byte {
	return []byte(fmt.Sprintf("<h1>%d %s</h1>\r\n", status, http.StatusText(status)))
}

// buildResponse frames res. The header set and order are fixed; nothing
// else is ever emitted.
func buildResponse(res *Response, serverName string) []byte {
	header := "HTTP/1.1 " + strconv.Itoa(res.Status) + " " + http.StatusText(res.Status) + "\r\n" +
		"Server: " + serverName + "\r\n" +
		// len() counts bytes, which is what Content-Length wants for multi-byte bodies
		"Content-Length: " + strconv.Itoa(len(res.Body)) + "\r\n" +
		"Content-Type: " + res.ContentType + "\r\n" +
		"\r\n"

	response := make([]byte, 0, len(header)+len(res.Body))
	response = append(response, header...)
	return append(response, res.Body...)
}

func writeResponse(w io.Writer, res *Response, serverName string) error {
	_, err := w.Write(buildResponse(res, serverName))
	return err
}
