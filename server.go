package main

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/astaxie/beego/logs"
)

// Server accepts connections and serves one request on each.
type Server struct {
	config Config
	hosts  *VirtualHostTable
	log    *logs.BeeLogger

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

func NewServer(config Config, hosts *VirtualHostTable, log *logs.BeeLogger) *Server {
	return &Server{config: config, hosts: hosts, log: log}
}

// ListenAndServe binds config.Listen and serves until Close. A bind error
// is returned as is; the caller should treat it as fatal.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln, handling each in its own goroutine, and
// takes ownership of ln. It returns ErrServerClosed after Close.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()

	s.log.Info("listening on %s", ln.Addr())

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() || errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}
			// Anything else (EMFILE, ECONNABORTED, ...) is about this one accept
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff *= 2; backoff > time.Second {
				backoff = time.Second
			}
			s.log.Warn("accept error: %v; retrying in %v", err, backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		go newConnHandler(s, conn).serve()
	}
}

// Addr returns the bound address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops the accept loop. Connections already accepted run to
// completion.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
