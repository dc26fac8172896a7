package kvstore

import (
	"github.com/google/uuid"
)

const (
	prefixNode     = byte(0x01) // node:nodeID -> nodeRecord
	prefixProperty = byte(0x02) // prop:nodeID:name -> propertyRecord
	prefixPath     = byte(0x03) // path:path -> nodeID
)

func nodeKey(id uuid.UUID) []byte {
	return append([]byte{prefixNode}, id[:]...)
}

func propertyPrefix(id uuid.UUID) []byte {
	return append([]byte{prefixProperty}, id[:]...)
}

func propertyKey(id uuid.UUID, name string) []byte {
	return append(propertyPrefix(id), name...)
}

func pathKey(path string) []byte {
	return append([]byte{prefixPath}, path...)
}
