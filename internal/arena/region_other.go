//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package arena

// mapAnon falls back to heap memory when anonymous mappings are not available.
func mapAnon(size int) ([]byte, func([]byte) error, error) {
	return make([]byte, size), nil, nil
}
