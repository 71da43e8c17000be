// Package xid generates prefixed, collision-resistant record ids.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New returns an id like "tx-1756710000000000000-9f2c01ab34cd56ef".
// The timestamp keeps ids roughly sortable by creation time; the random
// suffix makes collisions between registers practically impossible.
func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}
