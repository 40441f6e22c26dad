// Package hashalg validates the digest algorithm identifiers handed to
// implementations under test. Names follow the multihash table ("md5",
// "sha1", "sha2-256", ...), so every identifier the driver accepts has a
// registered code.
package hashalg

import (
	"fmt"
	"sort"

	"github.com/multiformats/go-multihash"
)

// Code returns the multihash code registered for name.
func Code(name string) (uint64, error) {
	code, ok := multihash.Names[name]
	if !ok {
		return 0, fmt.Errorf("hashalg: unknown algorithm %q", name)
	}
	return code, nil
}

// Supported returns every registered algorithm name in sorted order.
func Supported() []string {
	names := make([]string, 0, len(multihash.Names))
	for name := range multihash.Names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
