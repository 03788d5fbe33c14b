package models

import (
	"strings"
	"time"

	"github.com/golang/glog"
)

// Usage encapsulates a request and the key metrics around it, such as the
// time spent serving it and the endpoint
type Usage struct {
	Method        string
	URL           string
	EndPointURL   string
	UserAgent     string
	HTTPStatus    int
	IPAddr        string
	ContentLength int
	TimeSpent     time.Duration
	Error         string
}

// SendUsage is called at the end of processing a request and records info
// about the request in the log
func SendUsage(
	c *Context,
	statusCode int,
	contentLength int,
	dur time.Duration,
	errors []string,
) {
	if !glog.V(1) {
		return
	}

	m := Usage{
		Method:        c.GetHTTPMethod(),
		URL:           c.Request.URL.String(),
		EndPointURL:   strings.Split(c.Request.URL.String(), "?")[0],
		UserAgent:     c.Request.UserAgent(),
		HTTPStatus:    statusCode,
		ContentLength: contentLength,
		TimeSpent:     dur,
		Error:         strings.Join(errors, ", "),
	}
	if c.IP != nil {
		m.IPAddr = c.IP.String()
	}

	glog.Infof(
		"%s %s %d %dB %s %s %q",
		m.Method,
		m.EndPointURL,
		m.HTTPStatus,
		m.ContentLength,
		m.TimeSpent,
		m.IPAddr,
		m.Error,
	)
}
