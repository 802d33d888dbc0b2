package models

import "strconv"

// KeyPath appends a table key to a dotted path such as "server.ports".
func KeyPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// IndexPath appends an array index to a path, e.g. "servers[2]".
func IndexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}
