// Package utils holds miscellaneous utility functions shared by the agent
// core and monitors.
package utils

// MergeStringMaps merges n maps with a later map's keys overriding earlier
// maps.  The result is always a freshly allocated map.
func MergeStringMaps(maps ...map[string]string) map[string]string {
	ret := map[string]string{}

	for _, m := range maps {
		for k, v := range m {
			ret[k] = v
		}
	}

	return ret
}

// CloneStringMap makes a shallow copy of a map[string]string
func CloneStringMap(m map[string]string) map[string]string {
	m2 := make(map[string]string)
	for k, v := range m {
		m2[k] = v
	}
	return m2
}

// FirstNonZero returns the first int that is not zero, otherwise 0
func FirstNonZero(ns ...int) int {
	for _, n := range ns {
		if n != 0 {
			return n
		}
	}
	return 0
}
