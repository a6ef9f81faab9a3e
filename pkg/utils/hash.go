package utils

import (
	"crypto/md5"
	"fmt"
)

// HashString returns the md5 hex digest of input, used for cache keys.
func HashString(input string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(input)))
}
