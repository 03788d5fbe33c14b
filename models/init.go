package models

import (
	"encoding/gob"
)

func init() {
	// Required by the memcache backed store
	gob.Register(News{})
	gob.Register([]News{})
}
