package cache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeyFor builds a stable cache key from an operation kind and its query
// parameters. Parameter order does not matter.
func KeyFor(kind string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)

	digest := xxhash.New()
	writeField(digest, kind)
	for _, k := range names {
		// length prefixes keep every name and value boundary unambiguous
		writeField(digest, k)
		writeField(digest, params[k])
	}

	return fmt.Sprintf("slideshare_%s_%016x", sanitizeKey(kind), digest.Sum64())
}

func writeField(d *xxhash.Digest, s string) {
	_, _ = d.WriteString(strconv.Itoa(len(s)))
	_, _ = d.WriteString(":")
	_, _ = d.WriteString(s)
}

// sanitizeKey ensures the key is safe for use as a filename
func sanitizeKey(key string) string {
	unsafe := []string{"/", "\\", ":", "?", "&", "=", "#", "<", ">", "|", "*", "\"", " "}
	result := key
	for _, char := range unsafe {
		result = strings.ReplaceAll(result, char, "_")
	}
	if len(result) > 200 {
		return fmt.Sprintf("hash_%016x", xxhash.Sum64String(key))
	}
	return result
}
