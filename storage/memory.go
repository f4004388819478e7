package storage

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore is an in-process object store for development and tests.
// Its signed URLs are served by ServeHTTP when mounted under the base URL.
// URLs carry an HMAC over the key and expiry, keyed per store instance.
type MemoryStore struct {
	mu         sync.RWMutex
	objects    map[string]memoryObject
	baseURL    string
	signingKey []byte
	now        func() time.Time
}

func NewMemoryStore(baseURL string) *MemoryStore {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("memory store signing key: %v", err))
	}
	return &MemoryStore{
		objects:    make(map[string]memoryObject),
		baseURL:    baseURL,
		signingKey: key,
		now:        time.Now,
	}
}

func (m *MemoryStore) signature(key string, expires int64) string {
	mac := hmac.New(sha256.New, m.signingKey)
	fmt.Fprintf(mac, "%s|%d", key, expires)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (m *MemoryStore) validSignature(key string, expires int64, sig string) bool {
	if sig == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(m.signature(key, expires)))
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("empty object key")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[key] = memoryObject{data: buf, contentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	}
	expires := m.now().Add(ttl).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("signature", m.signature(key, expires))
	return fmt.Sprintf("%s/%s?%s", m.baseURL, url.PathEscape(key), q.Encode()), nil
}

func (m *MemoryStore) DeleteMany(_ context.Context, keys []string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.objects, k)
	}
	m.mu.Unlock()
	return nil
}

// Get returns a stored object's bytes and content type.
func (m *MemoryStore) Get(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.data, obj.contentType, ok
}

// Keys lists stored keys in lexical order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	m.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// ServeHTTP serves an object named by the request path (mount it behind
// http.StripPrefix) while its signed URL is authentic and not expired.
func (m *MemoryStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/")
	q := r.URL.Query()
	expires, err := strconv.ParseInt(q.Get("expires"), 10, 64)
	if err != nil || !m.validSignature(key, expires, q.Get("signature")) {
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}
	if m.now().Unix() > expires {
		http.Error(w, "link expired", http.StatusForbidden)
		return
	}
	data, contentType, ok := m.Get(key)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(data)
	}
}
