// Package backend opens the repository implementations by name.
package backend

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/qom/internal/kvstore"
	"github.com/roach88/qom/internal/repository"
	"github.com/roach88/qom/internal/store"
)

// Kind names a repository implementation.
type Kind string

const (
	// Memory keeps nodes in a map. Nothing survives Close.
	Memory Kind = "memory"

	// SQLite stores nodes in a SQLite database file.
	SQLite Kind = "sqlite"

	// Badger stores nodes in a Badger key-value directory.
	Badger Kind = "badger"
)

// Kinds lists every supported kind.
var Kinds = []Kind{Memory, SQLite, Badger}

// ParseKind parses a kind name. The empty string selects Memory.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case "":
		return Memory, nil
	case Memory, SQLite, Badger:
		return k, nil
	default:
		return "", fmt.Errorf("unknown store %q (want one of %v)", s, Kinds)
	}
}

// Open opens a repository of the given kind at path. An empty path opens
// the store in memory; Memory ignores path.
func Open(kind Kind, path string, logger *slog.Logger) (repository.Repository, error) {
	switch kind {
	case Memory, "":
		return repository.NewMemory(), nil
	case SQLite:
		if path == "" {
			path = ":memory:"
		}
		var opts []store.StoreOption
		if logger != nil {
			opts = append(opts, store.WithLogger(logger))
		}
		return store.Open(path, opts...)
	case Badger:
		return kvstore.Open(kvstore.Options{
			Dir:      path,
			InMemory: path == "",
			Logger:   logger,
		})
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}
