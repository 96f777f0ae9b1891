package ids

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// New returns a lowercase ULID. ULIDs sort by creation time.
func New() string {
	return strings.ToLower(ulid.Make().String())
}

// Valid reports whether s parses as a ULID.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(strings.ToUpper(s))
	return err == nil
}
