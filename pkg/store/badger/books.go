package badger

import (
	"context"
	"fmt"
	"sort"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/pagekeep/pagekeep/internal/logger"
	"github.com/pagekeep/pagekeep/pkg/store"
)

// PutBook writes the metadata row and all blob keys in one transaction.
// A prior copy with the same ID is fully replaced, including a stale
// cover when the new save has none.
func (s *BookStore) PutBook(ctx context.Context, meta store.BookMetadata, blob store.BookBlob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if meta.ID == "" {
		return store.NewInvalidArgumentError("book ID must not be empty")
	}
	if meta.ID != blob.BookID {
		return store.NewInvalidArgumentError("metadata and blob book IDs disagree")
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		metaBytes, err := encodeMetadata(&meta)
		if err != nil {
			return err
		}
		if err := txn.Set(keyMetadata(meta.ID), metaBytes); err != nil {
			return fmt.Errorf("failed to store book metadata: %w", err)
		}
		if err := txn.Set(keyBlobData(meta.ID), blob.Data); err != nil {
			return fmt.Errorf("failed to store book data: %w", err)
		}
		if len(blob.CoverData) > 0 {
			if err := txn.Set(keyCoverData(meta.ID), blob.CoverData); err != nil {
				return fmt.Errorf("failed to store cover data: %w", err)
			}
		} else if err := txn.Delete(keyCoverData(meta.ID)); err != nil {
			return fmt.Errorf("failed to clear stale cover data: %w", err)
		}
		if err := txn.Set(keyContentType(meta.ID), []byte(blob.ContentType)); err != nil {
			return fmt.Errorf("failed to store content type: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug("book persisted",
		logger.KeyBookID, meta.ID,
		logger.KeySize, meta.FileSizeBytes)
	return nil
}

// DeleteBook removes all keys for id in one transaction. Deleting an
// uncached book is a no-op.
func (s *BookStore) DeleteBook(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return store.NewInvalidArgumentError("book ID must not be empty")
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		for _, key := range [][]byte{
			keyMetadata(id),
			keyBlobData(id),
			keyCoverData(id),
			keyContentType(id),
		} {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("failed to delete key %q: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug("book deleted", logger.KeyBookID, id)
	return nil
}

// GetMetadata returns the metadata row for id.
func (s *BookStore) GetMetadata(ctx context.Context, id string) (*store.BookMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var meta *store.BookMetadata
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyMetadata(id))
		if err == badgerdb.ErrKeyNotFound {
			return store.NewNotFoundError(id)
		}
		if err != nil {
			return fmt.Errorf("failed to read book metadata: %w", err)
		}

		return item.Value(func(val []byte) error {
			var decErr error
			meta, decErr = decodeMetadata(val)
			return decErr
		})
	})
	if err != nil {
		return nil, err
	}

	return meta, nil
}

// GetBlob returns the blob row for id, assembled from the data, cover
// and content type keys.
func (s *BookStore) GetBlob(ctx context.Context, id string) (*store.BookBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blob := &store.BookBlob{BookID: id}
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyBlobData(id))
		if err == badgerdb.ErrKeyNotFound {
			return store.NewNotFoundError(id)
		}
		if err != nil {
			return fmt.Errorf("failed to read book data: %w", err)
		}
		blob.Data, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("failed to copy book data: %w", err)
		}

		coverItem, err := txn.Get(keyCoverData(id))
		if err == nil {
			blob.CoverData, err = coverItem.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("failed to copy cover data: %w", err)
			}
		} else if err != badgerdb.ErrKeyNotFound {
			return fmt.Errorf("failed to read cover data: %w", err)
		}

		typeItem, err := txn.Get(keyContentType(id))
		if err == nil {
			typeBytes, err := typeItem.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("failed to copy content type: %w", err)
			}
			blob.ContentType = string(typeBytes)
		} else if err != badgerdb.ErrKeyNotFound {
			return fmt.Errorf("failed to read content type: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return blob, nil
}

// GetCover returns the cover image for id without touching the book
// data key. A cached book without a cover returns (nil, nil).
func (s *BookStore) GetCover(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cover []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		// Presence is defined by the metadata key. The cover key alone
		// cannot distinguish "not cached" from "cached without cover".
		if _, err := txn.Get(keyMetadata(id)); err == badgerdb.ErrKeyNotFound {
			return store.NewNotFoundError(id)
		} else if err != nil {
			return fmt.Errorf("failed to probe book metadata: %w", err)
		}

		item, err := txn.Get(keyCoverData(id))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read cover data: %w", err)
		}
		cover, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("failed to copy cover data: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cover, nil
}

// ListMetadata returns every metadata row ordered by CachedAt, oldest
// first, with ID as tiebreaker. Blob values are never touched.
func (s *BookStore) ListMetadata(ctx context.Context) ([]store.BookMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var books []store.BookMetadata
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(prefixMetadata)
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if len(books)%100 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			err := it.Item().Value(func(val []byte) error {
				meta, err := decodeMetadata(val)
				if err != nil {
					return err
				}
				books = append(books, *meta)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list book metadata: %w", err)
	}

	sort.Slice(books, func(i, j int) bool {
		if !books[i].CachedAt.Equal(books[j].CachedAt) {
			return books[i].CachedAt.Before(books[j].CachedAt)
		}
		return books[i].ID < books[j].ID
	})

	return books, nil
}

// HasBook reports whether a metadata row exists for id.
func (s *BookStore) HasBook(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var exists bool
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(keyMetadata(id))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to probe book metadata: %w", err)
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return exists, nil
}

// Clear removes every key in the database in one transaction. The store
// owns the whole keyspace, so no prefix filtering is needed.
func (s *BookStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var removed int
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false

		// Collect keys first, then delete: mutating under an open
		// iterator is undefined in badger.
		it := txn.NewIterator(opts)
		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("failed to delete key %q: %w", key, err)
			}
		}
		removed = len(keys)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear book store: %w", err)
	}

	logger.Info("book store cleared", logger.KeyCount, removed)
	return nil
}
