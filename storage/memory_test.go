package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore("http://files.test")
	m.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	require.NoError(t, m.Put(ctx, "u1/aadhaarFront-a", []byte("front"), "image/png"))
	require.NoError(t, m.Put(ctx, "u1/aadhaarBack-b", []byte("back"), "image/jpeg"))
	assert.Equal(t, []string{"u1/aadhaarBack-b", "u1/aadhaarFront-a"}, m.Keys())

	signed, err := m.SignedURL(ctx, "u1/aadhaarFront-a", time.Hour)
	require.NoError(t, err)
	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "/u1%2FaadhaarFront-a", u.EscapedPath())
	assert.Equal(t, "1700003600", u.Query().Get("expires"))
	assert.Equal(t, m.signature("u1/aadhaarFront-a", 1_700_003_600), u.Query().Get("signature"))

	_, err = m.SignedURL(ctx, "u1/missing", time.Hour)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, m.DeleteMany(ctx, []string{"u1/aadhaarFront-a", "u1/never-existed"}))
	assert.Equal(t, []string{"u1/aadhaarBack-b"}, m.Keys())
}

func TestMemoryStorePutCopiesData(t *testing.T) {
	m := NewMemoryStore("http://files.test")
	data := []byte("original")
	require.NoError(t, m.Put(context.Background(), "k", data, "image/png"))
	data[0] = 'X'

	got, contentType, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, "original", string(got))
	assert.Equal(t, "image/png", contentType)

	assert.Error(t, m.Put(context.Background(), "", data, "image/png"))
}

func TestMemoryStoreServeHTTP(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore("http://files.test/files")
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }
	require.NoError(t, m.Put(ctx, "u1/panCardImage-x", []byte("pan"), "image/png"))

	signed, err := m.SignedURL(ctx, "u1/panCardImage-x", time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(signed)
	require.NoError(t, err)

	handler := http.StripPrefix("/files/", m)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, u.RequestURI(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pan", rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	now = now.Add(2 * time.Minute)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, u.RequestURI(), nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	now = now.Add(-2 * time.Minute)
	require.NoError(t, m.DeleteMany(ctx, []string{"u1/panCardImage-x"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, u.RequestURI(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMemoryStoreRejectsTamperedLinks(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore("http://files.test/files")
	m.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	require.NoError(t, m.Put(ctx, "u1/panCardImage-x", []byte("pan"), "image/png"))
	require.NoError(t, m.Put(ctx, "u2/panCardImage-y", []byte("other"), "image/png"))

	signed, err := m.SignedURL(ctx, "u1/panCardImage-x", time.Minute)
	require.NoError(t, err)
	handler := http.StripPrefix("/files/", m)

	tamper := func(edit func(u *url.URL, q url.Values)) string {
		u, err := url.Parse(signed)
		require.NoError(t, err)
		q := u.Query()
		edit(u, q)
		u.RawQuery = q.Encode()
		return u.RequestURI()
	}

	tests := map[string]string{
		"extended expiry": tamper(func(_ *url.URL, q url.Values) { q.Set("expires", "99999999999") }),
		"no signature":    tamper(func(_ *url.URL, q url.Values) { q.Del("signature") }),
		"forged signature": tamper(func(_ *url.URL, q url.Values) {
			q.Set("signature", strings.Repeat("A", len(q.Get("signature"))))
		}),
		"other key": tamper(func(u *url.URL, _ url.Values) {
			u.Path = "/files/u2/panCardImage-y"
			u.RawPath = ""
		}),
		"signed by another store": func() string {
			other := NewMemoryStore("http://files.test/files")
			other.now = m.now
			require.NoError(t, other.Put(ctx, "u1/panCardImage-x", []byte("pan"), "image/png"))
			s, err := other.SignedURL(ctx, "u1/panCardImage-x", time.Minute)
			require.NoError(t, err)
			u, err := url.Parse(s)
			require.NoError(t, err)
			return u.RequestURI()
		}(),
	}
	for name, uri := range tests {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, uri, nil))
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}
