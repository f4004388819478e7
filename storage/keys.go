package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// DocumentKey builds the object key for one uploaded document:
// <userID>/<field>-<ulid>. The ULID carries t's millisecond timestamp, so
// repeated attempts by the same user never collide.
func DocumentKey(userID, field string, t time.Time) string {
	id := ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy())
	return fmt.Sprintf("%s/%s-%s", userID, field, id.String())
}

// ParseDocumentKey splits a key built by DocumentKey.
func ParseDocumentKey(key string) (userID, field string, ok bool) {
	userID, rest, found := strings.Cut(key, "/")
	if !found || userID == "" || strings.Contains(rest, "/") {
		return "", "", false
	}
	i := strings.LastIndexByte(rest, '-')
	if i <= 0 {
		return "", "", false
	}
	if _, err := ulid.ParseStrict(rest[i+1:]); err != nil {
		return "", "", false
	}
	return userID, rest[:i], true
}
