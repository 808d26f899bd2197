package hero

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// BatchRequest is the admin request body for POST /admin/heroes/batch.
type BatchRequest struct {
	StartID int64 `json:"start_id" validate:"gte=0"`
	Count   int   `json:"count" validate:"gte=0"`
}

type RemoteSearchResponse struct {
	Name    string `json:"name"`
	Results any    `json:"results"`
}

// queryInt reads an integer query parameter; malformed values yield def.
func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
