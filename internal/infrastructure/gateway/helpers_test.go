package gateway

import (
	"encoding/json"
	"net/http"
	"sync"
)

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// capture records values seen by a test server handler.
type capture struct {
	mu     sync.Mutex
	values map[string]string
}

func (c *capture) set(k, v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = map[string]string{}
	}
	c.values[k] = v
}

func (c *capture) get(k string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[k]
}
