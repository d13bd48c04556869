package cache

import "fmt"

// GenerateKey creates a cache key with prefix and ID.
func GenerateKey(prefix string, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// GenerateKeyWithParams creates a cache key with multiple parameters.
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key = fmt.Sprintf("%s:%v", key, param)
	}
	return key
}

// BuildPattern creates a glob pattern matching every key under prefix.
func BuildPattern(prefix string) string {
	return fmt.Sprintf("%s*", prefix)
}
