package middleware

import "strings"

// pathSet matches request paths exactly or by prefix
type pathSet struct {
	exact    map[string]struct{}
	prefixes []string
}

func newPathSet(paths, prefixes []string) pathSet {
	s := pathSet{exact: make(map[string]struct{}, len(paths)), prefixes: prefixes}
	for _, p := range paths {
		s.exact[p] = struct{}{}
	}
	return s
}

func (s pathSet) match(path string) bool {
	if _, ok := s.exact[path]; ok {
		return true
	}
	for _, prefix := range s.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
