package controller

import (
	"net/http"

	"github.com/microcosm-cc/newsfeed/models"
)

var (
	// BuildVersion and BuildDate are set via ldflags during build
	BuildVersion = "development"
	BuildDate    = "unknown"
)

// VersionHandler is a web handler that returns build information
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	c := models.MakeContext(r, w)

	switch c.GetHTTPMethod() {
	case http.MethodOptions:
		c.RespondWithOptions([]string{"OPTIONS", "GET"})
		return
	case http.MethodGet:
		version := map[string]string{
			"version": BuildVersion,
			"date":    BuildDate,
		}
		c.RespondWithData(version)
		return
	default:
		c.RespondWithError(http.StatusMethodNotAllowed)
		return
	}
}
