package util

import "testing"

func TestStorageKey(t *testing.T) {
	cases := []struct {
		ns    string
		epoch uint64
		key   string
		want  string
	}{
		{"user", 0, "1", "l2:user:0:1"},
		{"user", 12, "a:b", "l2:user:12:a:b"},
		{"", 1, "", "l2::1:"},
	}
	for _, tc := range cases {
		if got := StorageKey("l2", tc.ns, tc.epoch, tc.key); got != tc.want {
			t.Fatalf("StorageKey(%q,%d,%q)=%q want %q", tc.ns, tc.epoch, tc.key, got, tc.want)
		}
	}
}
