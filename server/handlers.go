package server

import (
	"net/http"

	"github.com/microcosm-cc/newsfeed/controller"
)

func handlers(news *controller.NewsController) map[string]func(http.ResponseWriter, *http.Request) {
	return map[string]func(http.ResponseWriter, *http.Request){
		"/news": news.NewsHandler,

		"/api/v1/news":       news.NewsHandler,
		"/api/v1/news/cache": news.CacheHandler,

		"/api/v1/version": controller.VersionHandler,
	}
}
