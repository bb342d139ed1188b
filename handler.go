package main

import (
	"errors"
	"io"
	"net"
	"os"
	"time"
)

// connHandler serves exactly one request on one connection and then
// closes it. It owns the connection and every buffer it reads into.
type connHandler struct {
	srv    *Server
	conn   net.Conn
	remote string
	req    *Request
	root   string
	res    *Response
	closed bool
}

// stateFunc is one step of the pipeline; it returns the next step, or nil
// once the connection is closed.
type stateFunc func(*connHandler) stateFunc

func newConnHandler(srv *Server, conn net.Conn) *connHandler {
	remote := "-"
	if addr := conn.RemoteAddr(); addr != nil {
		remote = addr.String()
	}
	return &connHandler{srv: srv, conn: conn, remote: remote}
}

func (h *connHandler) serve() {
	defer func() {
		if r := recover(); r != nil {
			h.srv.log.Critical("panic serving %s: %v", h.remote, r)
			closeConnection(h)
		}
	}()

	for state := readingRequest; state != nil; {
		state = state(h)
	}
}

func (h *connHandler) timeout() time.Duration {
	return time.Duration(h.srv.config.Timeout) * time.Second
}

func readingRequest(h *connHandler) stateFunc {
	h.conn.SetReadDeadline(time.Now().Add(h.timeout()))

	req, err := readRequest(h.conn, int64(h.srv.config.MaxRequestSize))
	switch {
	case err == nil:
		h.req = req
		return resolvingHost
	case errors.Is(err, errConnectionClosedEarly):
		h.srv.log.Debug("%s: %v", h.remote, err)
		return closeConnection
	case os.IsTimeout(err):
		// Idle or slow clients are expected; don't make noise about them
		h.srv.log.Debug("%s: read timeout: %v", h.remote, err)
		return closeConnection
	case errors.Is(err, errMalformedRequest):
		h.srv.log.Info("%s: %v", h.remote, err)
		h.res = newErrorResponse(400)
		return responding
	default:
		h.srv.log.Warn("%s: error reading request: %v", h.remote, err)
		return closeConnection
	}
}

func resolvingHost(h *connHandler) stateFunc {
	root, ok := h.srv.hosts.Resolve(h.req.Host())
	if !ok {
		h.srv.log.Info("%s: %v %q", h.remote, errUnresolvedHost, h.req.Host())
		h.res = newErrorResponse(400)
		return responding
	}
	h.root = root
	return resolvingPath
}

func resolvingPath(h *connHandler) stateFunc {
	resource, err := resolveResource(h.root, h.req.Path)
	switch {
	case err == nil:
		h.res = newResponse(resource.Status, resource.Body)
	case errors.Is(err, errErrorDocumentMissing):
		h.srv.log.Error("%s: %v", h.req.Host(), err)
		h.res = newResponse(resource.Status, resource.Body)
	case errors.Is(err, errFileNotFound):
		h.srv.log.Debug("%s: %v", h.req.Host(), err)
		h.res = newResponse(resource.Status, resource.Body)
	default:
		h.srv.log.Error("%s: error serving %s: %v", h.req.Host(), h.req.Path, err)
		h.res = newErrorResponse(500)
	}
	return responding
}

func responding(h *connHandler) stateFunc {
	h.conn.SetWriteDeadline(time.Now().Add(h.timeout()))

	if err := writeResponse(h.conn, h.res, h.srv.config.ServerName); err != nil {
		h.srv.log.Warn("%s: error writing response: %v", h.remote, err)
	}
	h.srv.log.Info("%s", accessLogLine(h.res.Status, h.req, h.remote))
	return closeConnection
}

const (
	lingerTimeout  = 500 * time.Millisecond
	lingerMaxBytes = 64 << 10
)

func closeConnection(h *connHandler) stateFunc {
	if h.closed {
		return nil
	}
	h.closed = true

	// Closing with unread input makes the kernel send RST, which can
	// destroy a response the client has not read yet (oversized or
	// malformed requests). Half-close and drain a little first.
	if cw, ok := h.conn.(interface{ CloseWrite() error }); ok && h.res != nil {
		if cw.CloseWrite() == nil {
			h.conn.SetReadDeadline(time.Now().Add(lingerTimeout))
			io.CopyN(io.Discard, h.conn, lingerMaxBytes)
		}
	}
	h.conn.Close()
	return nil
}
