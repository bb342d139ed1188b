package main

import (
	"fmt"
	"strings"

	"github.com/astaxie/beego/logs"
	"github.com/fatih/color"
)

var logLevels = map[string]int{
	"debug": logs.LevelDebug,
	"info":  logs.LevelInformational,
	"warn":  logs.LevelWarning,
	"error": logs.LevelError,
}

// newLogger builds a console logger at the named level.
func newLogger(level string) (*logs.BeeLogger, error) {
	l, ok := logLevels[strings.ToLower(level)]
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	logger := logs.NewLogger()
	if err := logger.SetLogger(logs.AdapterConsole, fmt.Sprintf(`{"level":%d}`, l)); err != nil {
		return nil, err
	}
	logger.SetLevel(l)
	return logger, nil
}

var (
	statusOK          = color.New(color.FgGreen).SprintFunc()
	statusClientError = color.New(color.FgYellow).SprintFunc()
	statusServerError = color.New(color.FgRed).SprintFunc()
)

func colorStatus(status int) string {
	switch {
	case status >= 500:
		return statusServerError(status)
	case status >= 400:
		return statusClientError(status)
	default:
		return statusOK(status)
	}
}

// accessLogLine formats one access log entry. req may be nil when the
// request could not be parsed.
func accessLogLine(status int, req *Request, remote string) string {
	method, path, host, userAgent := "-", "-", "-", "-"
	if req != nil {
		method, path = req.Method, req.Path
		if h := req.Host(); h != "" {
			host = h
		}
		if ua := req.Headers.Get("User-Agent"); ua != "" {
			userAgent = ua
		}
	}
	return fmt.Sprintf("%s %s %s host=%s - %s (%s)", colorStatus(status), method, path, host, remote, userAgent)
}
