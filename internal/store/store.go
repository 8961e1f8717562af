// Package store implements the key-value persistence port that holds each
// session's saved recipe list.
package store

import (
	"context"
	"strings"
)

// KVStore is a string store keyed by name. Implementations give no
// transactional or size guarantees beyond a single Set.
type KVStore interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// namespaced prefixes every key with a session namespace.
type namespaced struct {
	inner  KVStore
	prefix string
}

// Namespaced scopes store to ns so that every browser session gets its own keys.
func Namespaced(store KVStore, ns string) KVStore {
	return &namespaced{inner: store, prefix: "session:" + strings.TrimSpace(ns) + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}
