/*
	vhttpd is a small HTTP/1.1 static web server with name-based virtual hosts.
	One GET request per connection, fixed text/html responses, no keep-alive.

	HTTP/1.1 protocol specification: https://www.rfc-editor.org/rfc/rfc7230
*/

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var (
	configPath = flag.String("config", "./main.conf", "path to the ini or json config file")
	rootFlag   = flag.String("root", "", "serve this single document root for every host (no config file needed)")
	listenFlag = flag.String("listen", "", "bind address, overrides Listen from the config file")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "vhttpd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := startupConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(config.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Flush()

	hosts, err := NewVirtualHostTable(config.VirtualHosts)
	if err != nil {
		return err
	}
	for _, dup := range hosts.Duplicates() {
		logger.Warn("virtual host %q configured more than once; only the first entry is used", dup)
	}
	for _, vh := range hosts.Hosts() {
		logger.Info("virtual host %s -> %s", vh.Hostname, vh.DocumentRoot)
	}

	server := NewServer(config, hosts, logger)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		logger.Info("received %v, shutting down", sig)
		server.Close()
	}()

	logger.Info("Server is up! Timeout: %ds; Max request size: %d bytes", config.Timeout, config.MaxRequestSize)
	err = server.ListenAndServe()
	if errors.Is(err, ErrServerClosed) {
		return nil
	}
	return err
}

// startupConfig picks the deployment mode: -root serves one directory for
// every host, otherwise the config file describes the virtual hosts.
func startupConfig() (Config, error) {
	var (
		config Config
		err    error
	)
	if *rootFlag != "" {
		config = defaultConfig()
		config.VirtualHosts = []VirtualHost{{Hostname: CatchAll, DocumentRoot: *rootFlag}}
	} else if config, err = loadConfig(*configPath); err != nil {
		return Config{}, err
	}

	if *listenFlag != "" {
		config.Listen = *listenFlag
	}
	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
