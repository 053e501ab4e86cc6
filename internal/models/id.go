package models

import (
	"fmt"
	"strconv"
	"strings"
)

// IDPrefix starts every generated product ID.
const IDPrefix = "P"

// GenerateUniqueID returns IDPrefix followed by one more than the highest
// numeric suffix among conventional IDs, zero padded to three digits. IDs that
// do not follow the convention are ignored, so the caller must still check
// the result against the store.
func GenerateUniqueID(products []Product) string {
	highest := 0
	for _, p := range products {
		if !strings.HasPrefix(p.ID, IDPrefix) {
			continue
		}
		if n := leadingNumber(p.ID[len(IDPrefix):]); n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", IDPrefix, highest+1)
}

// leadingNumber parses the run of digits at the start of s, 0 if there is none.
func leadingNumber(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
