package queue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xraph/triage"
)

// Key returns the store key for an exception id under prefix.
func Key(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

// ParseKey extracts the exception id from a key built by Key.
func ParseKey(prefix, key string) (int64, error) {
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return 0, fmt.Errorf("%w: key %q lacks prefix %q", triage.ErrInvalidArgument, key, prefix)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: key %q has no numeric id", triage.ErrInvalidArgument, key)
	}
	return id, nil
}
