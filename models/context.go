package models

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/golang/glog"

	e "github.com/microcosm-cc/newsfeed/errors"
)

// Context carries a single request through a controller
type Context struct {
	Request        *http.Request
	ResponseWriter http.ResponseWriter
	StartTime      time.Time
	IP             net.IP
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Status    int       `json:"status"`
	ErrorCode e.ErrCode `json:"errorCode,omitempty"`
	Errors    []string  `json:"error"`
}

// MakeContext builds the Context for a request
func MakeContext(
	request *http.Request,
	responseWriter http.ResponseWriter,
) *Context {
	return &Context{
		Request:        request,
		ResponseWriter: responseWriter,
		StartTime:      time.Now(),
		IP:             GetRequestIP(request),
	}
}

// GetRequestIP returns the remote address of the request, without port
func GetRequestIP(request *http.Request) net.IP {
	host, _, _ := net.SplitHostPort(request.RemoteAddr)
	return net.ParseIP(host)
}

// GetHTTPMethod returns the request method, honouring method overrides sent
// on a POST by clients that cannot send anything else
func (c *Context) GetHTTPMethod() string {
	m := c.Request.Method

	if m == http.MethodPost {
		if c.Request.Header.Get("X-HTTP-Method-Override") != "" {
			m = strings.ToUpper(c.Request.Header.Get("X-HTTP-Method-Override"))
		}
		if c.Request.URL.Query().Get("method") != "" {
			m = strings.ToUpper(c.Request.URL.Query().Get("method"))
		}

		switch m {
		case http.MethodDelete,
			http.MethodGet,
			http.MethodHead,
			http.MethodOptions,
			http.MethodPost:
		default:
			// If it wasn't one of the above then let's just use what we know
			// is safe
			return c.Request.Method
		}
	}

	return m
}

// Respond marshals data and writes it with statusCode
func (c *Context) Respond(data interface{}, statusCode int, errs []string) error {
	output, err := json.Marshal(data)
	if err != nil {
		glog.Errorf("json.Marshal(data) %+v", err)
		http.Error(c.ResponseWriter, err.Error(), http.StatusInternalServerError)
		return err
	}

	c.ResponseWriter.Header().Set("Content-Type", "application/json")
	c.ResponseWriter.Header().Set("Access-Control-Allow-Origin", "*")
	// The body is cached here, downstream caches would outlive a purge
	c.ResponseWriter.Header().Set(`Cache-Control`, `no-cache, max-age=0`)

	// Prevent chunking
	contentLength := len(output)
	c.ResponseWriter.Header().Set("Content-Length", strconv.Itoa(contentLength))

	SendUsage(c, statusCode, contentLength, time.Since(c.StartTime), errs)

	return c.WriteResponse(output, statusCode)
}

// WriteResponse ultimately does the job of writing the response
func (c *Context) WriteResponse(output []byte, statusCode int) error {
	c.ResponseWriter.WriteHeader(statusCode)

	// HEAD requests return no body
	if c.GetHTTPMethod() == http.MethodHead {
		return nil
	}

	_, err := c.ResponseWriter.Write(output)
	if err == nil {
		return nil
	}

	// "broken pipe" indicates the client disconnected, which is expected, but
	// we log as warning in case multiple clients do this at once and it hints
	// at network issues
	if errors.Is(err, syscall.EPIPE) {
		glog.Warningf(
			"Error writing %s response to %s : %+v",
			c.GetHTTPMethod(),
			c.Request.URL.String(),
			err,
		)
		return err
	}

	glog.Errorf(
		"Error writing %s response to %s : %+v",
		c.GetHTTPMethod(),
		c.Request.URL.String(),
		err,
	)
	return err
}

// RespondWithOptions answers an OPTIONS request
func (c *Context) RespondWithOptions(options []string) error {
	c.ResponseWriter.Header().Set("Allow", strings.Join(options, ","))
	c.ResponseWriter.Header().Set("Content-Length", "0")
	c.ResponseWriter.WriteHeader(http.StatusOK)
	return nil
}

// RespondWithStatus responds with a status code and no body
func (c *Context) RespondWithStatus(statusCode int) error {
	c.ResponseWriter.Header().Set("Content-Length", "0")
	c.ResponseWriter.WriteHeader(statusCode)
	SendUsage(c, statusCode, 0, time.Since(c.StartTime), nil)
	return nil
}

// RespondWithError responds with the status and its RFC 2616 description
func (c *Context) RespondWithError(statusCode int) error {
	return c.RespondWithErrorMessage(http.StatusText(statusCode), statusCode)
}

// RespondWithErrorMessage responds with a status and a message
func (c *Context) RespondWithErrorMessage(message string, statusCode int) error {
	return c.Respond(
		ErrorResponse{Status: statusCode, Errors: []string{message}},
		statusCode,
		[]string{message},
	)
}

// RespondWithErrorDetail responds with the error's message and code, served
// with the status the code maps to
func (c *Context) RespondWithErrorDetail(err error) error {
	statusCode := e.HTTPStatus(err)
	return c.Respond(
		ErrorResponse{
			Status:    statusCode,
			ErrorCode: e.Code(err),
			Errors:    []string{err.Error()},
		},
		statusCode,
		[]string{err.Error()},
	)
}

// RespondWithData responds with 200 and data as the body
func (c *Context) RespondWithData(data interface{}) error {
	return c.Respond(data, http.StatusOK, nil)
}
