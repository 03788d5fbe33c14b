package server

import (
	"github.com/golang/glog"

	"github.com/microcosm-cc/newsfeed/models"
)

// Field name   | Mandatory? | Allowed values  | Allowed special characters
// ----------   | ---------- | --------------  | --------------------------
// Seconds      | Yes        | 0-59            | * / , -
// Minutes      | Yes        | 0-59            | * / , -
// Hours        | Yes        | 0-23            | * / , -
// Day of month | Yes        | 1-31            | * / , - ?
// Month        | Yes        | 1-12 or JAN-DEC | * / , -
// Day of week  | Yes        | 0-6 or SUN-SAT  | * / , - ?

// Jobs returns the scheduled jobs keyed by schedule. An empty purgeSchedule
// leaves the cache populated for the life of the process.
func Jobs(purgeSchedule string, repo *models.NewsRepository) map[string]func() {
	jobs := map[string]func(){}

	if purgeSchedule != "" {
		jobs[purgeSchedule] = func() {
			if glog.V(2) {
				glog.Infof("scheduled purge of cache key %s", repo.CacheKey())
			}
			repo.Purge()
		}
	}

	return jobs
}
