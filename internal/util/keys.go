package util

import "strconv"

// StorageKey namespaces a user key for a shared byte store:
//
//	<prefix>:<namespace>:<epoch>:<key>
//
// Advancing epoch makes every key written under an older epoch unreachable.
func StorageKey(prefix, namespace string, epoch uint64, key string) string {
	b := make([]byte, 0, len(prefix)+len(namespace)+len(key)+24)
	b = append(b, prefix...)
	b = append(b, ':')
	b = append(b, namespace...)
	b = append(b, ':')
	b = strconv.AppendUint(b, epoch, 10)
	b = append(b, ':')
	b = append(b, key...)
	return string(b)
}
