package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/roach88/qom/internal/ir"
	"github.com/roach88/qom/internal/qom"
	"github.com/roach88/qom/internal/repository"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("kvstore: store is closed")

// Options configures Open.
type Options struct {
	// Dir is the data directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps all data in memory; nothing is written to disk.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// Logger receives store events. Badger's own logging is silenced.
	Logger *slog.Logger
}

// Store is a Badger-backed repository. Safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// Compile-time interface check.
var _ repository.Repository = (*Store)(nil)

// Open opens or creates a store.
func Open(opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true).WithDir("").WithValueDir("")
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database. Closing twice is not an error.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) ensureOpen() error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return nil
}

func (s *Store) withView(fn func(txn *badger.Txn) error) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	return s.db.View(fn)
}

func (s *Store) withUpdate(fn func(txn *badger.Txn) error) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	return s.db.Update(fn)
}

// PutNode stores node, replacing any properties previously stored under
// its ID. A different node already stored at the same path is an error.
func (s *Store) PutNode(ctx context.Context, node ir.Node) error {
	if err := node.Validate(); err != nil {
		return fmt.Errorf("put node: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.withUpdate(func(txn *badger.Txn) error {
		if err := checkPathFree(txn, node.Path, node.ID); err != nil {
			return err
		}

		// Drop the old path index entry if the node moved.
		if item, err := txn.Get(nodeKey(node.ID)); err == nil {
			var old nodeRecord
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &old) }); err != nil {
				return fmt.Errorf("decode node: %w", err)
			}
			if old.Path != node.Path {
				if err := txn.Delete(pathKey(old.Path)); err != nil {
					return err
				}
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := deleteProperties(txn, node.ID); err != nil {
			return err
		}

		rec, err := json.Marshal(nodeRecord{Path: node.Path})
		if err != nil {
			return err
		}
		if err := txn.Set(nodeKey(node.ID), rec); err != nil {
			return err
		}
		if err := txn.Set(pathKey(node.Path), node.ID[:]); err != nil {
			return err
		}

		for pos, p := range node.Properties {
			data, err := encodeProperty(pos, p)
			if err != nil {
				return fmt.Errorf("encode property %q: %w", p.Name, err)
			}
			if err := txn.Set(propertyKey(node.ID, p.Name), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put node %s: %w", node.Path, err)
	}

	s.logger.Debug("node stored", "path", node.Path, "id", node.ID, "properties", len(node.Properties))
	return nil
}

func checkPathFree(txn *badger.Txn, path string, id uuid.UUID) error {
	item, err := txn.Get(pathKey(path))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	owner, err := uuid.FromBytes(raw)
	if err != nil {
		return fmt.Errorf("path index %q: %w", path, err)
	}
	if owner != id {
		return fmt.Errorf("path %q already stored for node %s", path, owner)
	}
	return nil
}

// deleteProperties removes every property record of a node.
func deleteProperties(txn *badger.Txn, id uuid.UUID) error {
	opts := badgerIterOptsKeyOnly(propertyPrefix(id))
	it := txn.NewIterator(opts)

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// DeleteNode removes a node and its properties. Deleting a missing node
// is not an error.
func (s *Store) DeleteNode(ctx context.Context, node ir.NodeRef) error {
	err := s.withUpdate(func(txn *badger.Txn) error {
		item, err := txn.Get(nodeKey(node.ID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var rec nodeRecord
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
			return fmt.Errorf("decode node: %w", err)
		}
		if err := deleteProperties(txn, node.ID); err != nil {
			return err
		}
		if err := txn.Delete(pathKey(rec.Path)); err != nil {
			return err
		}
		return txn.Delete(nodeKey(node.ID))
	})
	if err != nil {
		return fmt.Errorf("delete node %s: %w", node, err)
	}
	return nil
}

// GetValue implements qom.ValueSource. A missing property is Null; a
// missing node wraps repository.ErrNodeNotFound.
func (s *Store) GetValue(ctx context.Context, node ir.NodeRef, property string) (qom.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result qom.Result
	err := s.withView(func(txn *badger.Txn) error {
		item, err := txn.Get(propertyKey(node.ID, property))
		if errors.Is(err, badger.ErrKeyNotFound) {
			if _, err := txn.Get(nodeKey(node.ID)); errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", repository.ErrNodeNotFound, node)
			} else if err != nil {
				return err
			}
			result = qom.Null{}
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			_, p, err := decodeProperty(property, val)
			if err != nil {
				return err
			}
			result = qom.PropertyResult(p)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrNodeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get value %s/%s: %w", node.Path, property, err)
	}
	return result, nil
}

// LengthOf implements qom.ValueSource with the repository-wide metric.
func (s *Store) LengthOf(v ir.Value) int64 {
	return ir.Length(v)
}

// Node reads one node with all of its properties.
func (s *Store) Node(ctx context.Context, id uuid.UUID) (ir.Node, error) {
	var node ir.Node
	err := s.withView(func(txn *badger.Txn) error {
		item, err := txn.Get(nodeKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", repository.ErrNodeNotFound, id)
		}
		if err != nil {
			return err
		}
		var rec nodeRecord
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
			return fmt.Errorf("decode node: %w", err)
		}
		node, err = readNode(txn, id, rec.Path)
		return err
	})
	if err != nil {
		return ir.Node{}, err
	}
	return node, nil
}

// Nodes returns every stored node ordered by path.
func (s *Store) Nodes(ctx context.Context) ([]ir.Node, error) {
	nodes := []ir.Node{}
	err := s.withView(func(txn *badger.Txn) error {
		it := txn.NewIterator(badgerIterOptsPrefetchValues([]byte{prefixNode}, 100))
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id, err := uuid.FromBytes(item.Key()[1:])
			if err != nil {
				return fmt.Errorf("invalid node key: %w", err)
			}
			var rec nodeRecord
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
				return fmt.Errorf("decode node %s: %w", id, err)
			}
			n, err := readNode(txn, id, rec.Path)
			if err != nil {
				return err
			}
			nodes = append(nodes, n)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Path < nodes[j].Path })
	return nodes, nil
}

func readNode(txn *badger.Txn, id uuid.UUID, path string) (ir.Node, error) {
	prefix := propertyPrefix(id)
	it := txn.NewIterator(badgerIterOptsPrefetchValues(prefix, 0))
	defer it.Close()

	type positioned struct {
		pos int
		p   ir.Property
	}
	var props []positioned
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		name := string(item.Key()[len(prefix):])
		err := item.Value(func(val []byte) error {
			pos, p, err := decodeProperty(name, val)
			if err != nil {
				return err
			}
			props = append(props, positioned{pos: pos, p: p})
			return nil
		})
		if err != nil {
			return ir.Node{}, fmt.Errorf("node %s: %w", path, err)
		}
	}

	sort.Slice(props, func(i, j int) bool { return props[i].pos < props[j].pos })
	node := ir.Node{ID: id, Path: path}
	for _, pp := range props {
		node.Properties = append(node.Properties, pp.p)
	}
	return node, nil
}
