package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/robfig/cron"

	"github.com/microcosm-cc/newsfeed/controller"
)

// shutdownTimeout bounds how long in-flight requests get to finish, a miss
// can take as long as the configured cache delay
const shutdownTimeout = 10 * time.Second

// NewRouter registers every handler
func NewRouter(news *controller.NewsController) *mux.Router {
	r := mux.NewRouter()

	for url, handler := range handlers(news) {
		r.HandleFunc(url, handler)
	}

	return r
}

// StartServer owns the http process and cron jobs. It blocks until ctx is
// done or the listener fails.
func StartServer(
	ctx context.Context,
	port int64,
	news *controller.NewsController,
	jobs map[string]func(),
) error {

	// Set up the cron jobs
	c := cron.New()
	for schedule, job := range jobs {
		if err := c.AddFunc(schedule, job); err != nil {
			return fmt.Errorf("scheduling %q: %w", schedule, err)
		}
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewRouter(news),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	if glog.V(2) {
		glog.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
