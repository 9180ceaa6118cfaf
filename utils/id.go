package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewDiscussionID generates a history entry identifier of the form
// disc_<timestamp>_<random>.
func NewDiscussionID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("disc_%d_%d", time.Now().UnixMilli(), time.Now().Nanosecond())
	}
	return fmt.Sprintf("disc_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(b))
}
