// Package kvstore provides the durable key-value boundary used to persist snapshot history.
// Values are opaque byte blobs; callers choose a Codec to turn typed values into bytes.
package kvstore

import "errors"

// ErrPersistence marks every failure that originates in a backing store
var ErrPersistence = errors.New("persistence failure")

// Store is a get/set/remove/list key-value store
type Store interface {
	// Get returns the value for key and whether it exists
	Get(key string) ([]byte, bool, error)
	// Set upserts the value for key
	Set(key string, value []byte) error
	// Remove deletes key; removing a missing key is not an error
	Remove(key string) error
	// Keys lists keys with the given prefix in ascending order
	Keys(prefix string) ([]string, error)
}

// Key joins a namespace and a key the way every caller stores values ("ns:key")
func Key(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + ":" + key
}
