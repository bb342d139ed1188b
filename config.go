package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/astaxie/beego/config"
)

const (
	defaultListen         = "127.0.0.1:5000"
	defaultTimeout        = 5
	defaultMaxRequestSize = 8192
	defaultServerName     = "vhttpd"
	defaultLogLevel       = "info"
)

type Config struct {
	Listen         string
	Timeout        int // seconds
	MaxRequestSize int // bytes, request line plus headers
	ServerName     string
	LogLevel       string
	VirtualHosts   []VirtualHost
}

func defaultConfig() Config {
	return Config{
		Listen:         defaultListen,
		Timeout:        defaultTimeout,
		MaxRequestSize: defaultMaxRequestSize,
		ServerName:     defaultServerName,
		LogLevel:       defaultLogLevel,
	}
}

// loadConfig reads an ini (Key=Value) or, for a .json extension, a json
// config file. Relative document roots are resolved against the working
// directory.
func loadConfig(configPath string) (Config, error) {
	adapter := "ini"
	if strings.EqualFold(filepath.Ext(configPath), ".json") {
		adapter = "json"
	}

	cnf, err := config.NewConfig(adapter, configPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	c := defaultConfig()
	c.Listen = cnf.DefaultString("Listen", c.Listen)
	c.ServerName = cnf.DefaultString("ServerName", c.ServerName)
	c.LogLevel = cnf.DefaultString("LogLevel", c.LogLevel)

	if c.Timeout, err = intSetting(cnf, "Timeout", c.Timeout); err != nil {
		return Config{}, err
	}
	if c.MaxRequestSize, err = intSetting(cnf, "MaxRequestSize", c.MaxRequestSize); err != nil {
		return Config{}, err
	}

	switch adapter {
	case "json":
		c.VirtualHosts, err = jsonVirtualHosts(cnf)
	default:
		c.VirtualHosts, err = iniVirtualHosts(cnf)
	}
	if err != nil {
		return Config{}, err
	}

	// Single-root mode, or the fallback after every named host.
	if root := cnf.String("DocumentRoot"); root != "" {
		c.VirtualHosts = append(c.VirtualHosts, VirtualHost{Hostname: CatchAll, DocumentRoot: root})
	}

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// intSetting differs from DefaultInt in that a present but unparsable
// value is an error rather than silently replaced.
func intSetting(cnf config.Configer, key string, def int) (int, error) {
	v, err := cnf.Int(key)
	if err == nil {
		return v, nil
	}
	if !hasKey(cnf, key) {
		return def, nil
	}
	return 0, fmt.Errorf("invalid %s: %v", key, err)
}

func hasKey(cnf config.Configer, key string) bool {
	if cnf.String(key) != "" {
		return true
	}
	// json containers expose non-string values only through DIY
	_, err := cnf.DIY(key)
	return err == nil
}

// iniVirtualHosts parses "VirtualHosts = host root;host root".
func iniVirtualHosts(cnf config.Configer) ([]VirtualHost, error) {
	var hosts []VirtualHost
	for _, entry := range cnf.Strings("VirtualHosts") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Fields(entry)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid virtual host entry %q: want \"hostname documentroot\"", entry)
		}
		hosts = append(hosts, VirtualHost{Hostname: fields[0], DocumentRoot: fields[1]})
	}
	return hosts, nil
}

// jsonVirtualHosts parses "VirtualHosts": [{"Hostname": .., "DocumentRoot": ..}].
func jsonVirtualHosts(cnf config.Configer) ([]VirtualHost, error) {
	raw, err := cnf.DIY("VirtualHosts")
	if err != nil {
		// key absent
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid VirtualHosts: want a list, got %T", raw)
	}

	hosts := make([]VirtualHost, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid VirtualHosts[%d]: want an object, got %T", i, item)
		}
		hostname, _ := obj["Hostname"].(string)
		root, _ := obj["DocumentRoot"].(string)
		hosts = append(hosts, VirtualHost{Hostname: hostname, DocumentRoot: root})
	}
	return hosts, nil
}

// validate checks limits and makes every document root absolute. Roots
// must be existing directories.
func (c *Config) validate() error {
	if c.Listen == "" {
		return fmt.Errorf("empty Listen address")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid Timeout %d: must be positive", c.Timeout)
	}
	if c.MaxRequestSize <= 0 {
		return fmt.Errorf("invalid MaxRequestSize %d: must be positive", c.MaxRequestSize)
	}
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("invalid LogLevel %q", c.LogLevel)
	}
	if len(c.VirtualHosts) == 0 {
		return fmt.Errorf("no DocumentRoot or VirtualHosts configured")
	}

	for i, vh := range c.VirtualHosts {
		if strings.TrimSpace(vh.Hostname) == "" || vh.DocumentRoot == "" {
			return fmt.Errorf("virtual host %d: hostname and document root are required", i)
		}
		root, err := absDir(vh.DocumentRoot)
		if err != nil {
			return fmt.Errorf("virtual host %q: %w", vh.Hostname, err)
		}
		c.VirtualHosts[i].DocumentRoot = root
	}
	return nil
}

func absDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("document root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("document root %s is not a directory", abs)
	}
	return abs, nil
}
