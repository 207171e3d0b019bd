package cache

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPageCacheStoresAndPurges(t *testing.T) {
	pc := NewPageCache(8, time.Minute)
	pc.Set("GET /", Page{Status: http.StatusOK, Body: []byte("home")})

	got, ok := pc.Get("GET /")
	assert.True(t, ok)
	assert.Equal(t, "home", string(got.Body))
	assert.Equal(t, 1, pc.Len())

	pc.Purge()
	_, ok = pc.Get("GET /")
	assert.False(t, ok)
}

func TestPageCacheExpires(t *testing.T) {
	pc := NewPageCache(8, 20*time.Millisecond)
	pc.Set("GET /", Page{Status: http.StatusOK, Body: []byte("home")})

	assert.Eventually(t, func() bool {
		_, ok := pc.Get("GET /")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestPageCacheEvictsOldest(t *testing.T) {
	pc := NewPageCache(2, time.Minute)
	pc.Set("a", Page{Body: []byte("a")})
	pc.Set("b", Page{Body: []byte("b")})
	pc.Set("c", Page{Body: []byte("c")})

	_, ok := pc.Get("a")
	assert.False(t, ok)
	_, ok = pc.Get("c")
	assert.True(t, ok)
}
