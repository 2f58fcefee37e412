package mockserver

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/regform/internal/log"
	"github.com/zjrosen/regform/internal/registration"
)

// accounts holds usernames accepted by the endpoint until they expire.
// A nil *accounts accepts everything and remembers nothing.
type accounts struct {
	ttl   time.Duration
	cache *gocache.Cache
}

func newAccounts(ttl time.Duration) *accounts {
	if ttl <= 0 {
		return nil
	}
	// No janitor: Add treats an expired entry as absent, and a janitor
	// goroutine would outlive the server.
	return &accounts{
		ttl:   ttl,
		cache: gocache.New(ttl, 0),
	}
}

// Reserve records v under its username, case-insensitively. It reports
// false when the name is already held. Safe for concurrent use.
func (a *accounts) Reserve(v registration.Values) bool {
	if a == nil {
		return true
	}
	if err := a.cache.Add(strings.ToLower(v.Username), v, a.ttl); err != nil {
		log.Debug(log.CatServer, "username already registered", "username", v.Username)
		return false
	}
	log.Debug(log.CatServer, "username reserved", "username", v.Username, "ttl", a.ttl)
	return true
}
