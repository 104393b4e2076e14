package store

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
func newRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// NewReportID mints a short, user-facing report id that exists() reports as unused.
func NewReportID(exists func(id string) bool) string {
	for i := 0; i < 50; i++ {
		id, err := newRandomID("rep")
		if err != nil {
			break
		}
		if exists == nil || !exists(id) {
			return id
		}
	}
	// crypto/rand failed or we kept colliding; a nanosecond stamp is unique enough in-process.
	return fmt.Sprintf("rep-%d", time.Now().UnixNano())
}

// NewActivityID returns a time-ordered UUID so ids sort with the log.
func NewActivityID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
