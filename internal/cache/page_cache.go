// Package cache holds rendered pages for a bounded time.
package cache

import (
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Page is a rendered response ready to be replayed.
type Page struct {
	Status int
	Header http.Header
	Body   []byte
}

// PageCache is a size- and time-bounded LRU of rendered pages. It is safe
// for concurrent use.
type PageCache struct {
	lru *expirable.LRU[string, Page]
	ttl time.Duration
}

func NewPageCache(size int, ttl time.Duration) *PageCache {
	return &PageCache{
		lru: expirable.NewLRU[string, Page](size, nil, ttl),
		ttl: ttl,
	}
}

func (pc *PageCache) Get(key string) (Page, bool) {
	return pc.lru.Get(key)
}

func (pc *PageCache) Set(key string, page Page) {
	pc.lru.Add(key, page)
}

// Purge drops every cached page.
func (pc *PageCache) Purge() {
	pc.lru.Purge()
}

func (pc *PageCache) Len() int {
	return pc.lru.Len()
}

func (pc *PageCache) TTL() time.Duration {
	return pc.ttl
}
