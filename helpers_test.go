package main

import (
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/astaxie/beego/logs"
)

type mockAddr struct {
	str string
}

func (m mockAddr) Network() string { return "" }
func (m mockAddr) String() string  { return m.str }

// mockConn reads from in and records everything written to out.
type mockConn struct {
	in     io.Reader
	out    bytes.Buffer
	closed int
}

func newMockConn(request string) *mockConn {
	return &mockConn{in: bytes.NewBufferString(request)}
}

func (m *mockConn) Read(b []byte) (int, error)         { return m.in.Read(b) }
func (m *mockConn) Write(b []byte) (int, error)        { return m.out.Write(b) }
func (m *mockConn) Close() error                       { m.closed++; return nil }
func (m *mockConn) LocalAddr() net.Addr                { return mockAddr{"(server)"} }
func (m *mockConn) RemoteAddr() net.Addr               { return mockAddr{"(client)"} }
func (m *mockConn) SetDeadline(t time.Time) error      { return nil }
func (m *mockConn) SetReadDeadline(t time.Time) error  { return nil }
func (m *mockConn) SetWriteDeadline(t time.Time) error { return nil }

func testLogger(t *testing.T) *logs.BeeLogger {
	t.Helper()
	logger, err := newLogger("error")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return logger
}

// writeSite creates a document root holding files (slash-separated
// relative path -> content).
func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func testConfig(hosts ...VirtualHost) Config {
	c := defaultConfig()
	c.Timeout = 2
	c.VirtualHosts = hosts
	return c
}

func newTestServer(t *testing.T, config Config) *Server {
	t.Helper()
	hosts, err := NewVirtualHostTable(config.VirtualHosts)
	if err != nil {
		t.Fatal(err)
	}
	return NewServer(config, hosts, testLogger(t))
}

// startServer serves config on a loopback port until the test ends.
func startServer(t *testing.T, config Config) string {
	t.Helper()
	srv := newTestServer(t, config)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()
	t.Cleanup(func() {
		srv.Close()
		<-done
	})
	return ln.Addr().String()
}

// roundTrip sends raw on a fresh connection and returns everything the
// server wrote before closing.
func roundTrip(t *testing.T, addr, raw string) string {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	if _, err := io.WriteString(conn, raw); err != nil {
		t.Fatal(err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	return string(reply)
}

func get(host, path string) string {
	return "GET " + path + " HTTP/1.1\r\nHost: " + host + "\r\nUser-Agent: vhttpd-test\r\n\r\n"
}

func expectedResponse(status int, body string) string {
	return string(buildResponse(newResponse(status, []byte(body)), defaultServerName))
}
