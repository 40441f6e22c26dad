package hashalg

import (
	"sort"
	"testing"
)

func TestCode_KnownAlgorithms(t *testing.T) {
	for _, name := range []string{"md5", "sha1", "sha2-256", "sha2-512"} {
		if _, err := Code(name); err != nil {
			t.Fatalf("Code(%q): %v", name, err)
		}
	}
}

func TestCode_UnknownAlgorithm(t *testing.T) {
	if _, err := Code("md6"); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}

func TestSupported_SortedAndNonEmpty(t *testing.T) {
	names := Supported()
	if len(names) == 0 {
		t.Fatal("no supported algorithms")
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("names not sorted: %v", names)
	}
}
