package controller

import (
	"net/http"

	"github.com/microcosm-cc/newsfeed/models"
)

// NewsController serves the news corpus
type NewsController struct {
	Repository *models.NewsRepository
}

// NewsHandler is a web handler
func (ctl *NewsController) NewsHandler(w http.ResponseWriter, r *http.Request) {
	c := models.MakeContext(r, w)

	switch c.GetHTTPMethod() {
	case http.MethodOptions:
		c.RespondWithOptions([]string{"OPTIONS", "GET", "HEAD"})
		return
	case http.MethodGet, http.MethodHead:
		ctl.ReadMany(c)
	default:
		c.RespondWithError(http.StatusMethodNotAllowed)
		return
	}
}

// ReadMany handles GET for the collection
func (ctl *NewsController) ReadMany(c *models.Context) {
	news, err := ctl.Repository.FindAll(c.Request.Context())
	if err != nil {
		c.RespondWithErrorDetail(err)
		return
	}

	c.RespondWithData(news)
}

// CacheHandler is a web handler for the cache in front of the corpus
func (ctl *NewsController) CacheHandler(w http.ResponseWriter, r *http.Request) {
	c := models.MakeContext(r, w)

	switch c.GetHTTPMethod() {
	case http.MethodOptions:
		c.RespondWithOptions([]string{"OPTIONS", "GET", "DELETE"})
		return
	case http.MethodGet:
		c.RespondWithData(CacheStats{
			Key:   ctl.Repository.CacheKey(),
			Stats: ctl.Repository.Stats(),
		})
	case http.MethodDelete:
		ctl.Repository.Purge()
		c.RespondWithStatus(http.StatusNoContent)
	default:
		c.RespondWithError(http.StatusMethodNotAllowed)
		return
	}
}
