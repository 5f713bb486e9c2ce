// Package utxostore persists the UTXO set between batches.
package utxostore

import (
	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/utxo"
	"github.com/kaspanet/ledgerselect/infrastructure/db/database"
	"github.com/kaspanet/ledgerselect/infrastructure/logger"
	"github.com/pkg/errors"
)

var (
	utxoSetBucket = database.MakeBucket([]byte("utxo-set"))
	commitmentKey = database.MakeBucket([]byte("utxo-set-metadata")).Key([]byte("commitment"))
)

// ErrCommitmentMismatch is returned by LoadUTXOSet when the stored entries do
// not match the commitment stored alongside them.
var ErrCommitmentMismatch = errors.New("stored UTXO set does not match its commitment")

// Store reads and writes a UTXO set in a database.
type Store struct {
	db database.Database
}

// New returns a Store over db.
func New(db database.Database) *Store {
	return &Store{db: db}
}

// HasUTXOSet returns whether a UTXO set was ever saved into the store.
func (s *Store) HasUTXOSet() (bool, error) {
	return s.db.Has(commitmentKey)
}

// StoredCommitment returns the commitment saved with the last UTXO set.
// It returns database.ErrNotFound if no set was saved.
func (s *Store) StoredCommitment() (*externalapi.DomainHash, error) {
	commitmentBytes, err := s.db.Get(commitmentKey)
	if err != nil {
		return nil, err
	}
	return externalapi.NewDomainHashFromByteSlice(commitmentBytes)
}

// LoadUTXOSet reads the stored UTXO set and verifies it against its
// commitment. An empty store yields an empty set.
func (s *Store) LoadUTXOSet() (utxo.Collection, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "LoadUTXOSet")
	defer onEnd()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.RollbackUnlessClosed()

	utxoSet, err := readUTXOSet(tx)
	if err != nil {
		return nil, err
	}

	commitmentBytes, err := tx.Get(commitmentKey)
	if database.IsNotFoundError(err) {
		if utxoSet.Len() != 0 {
			return nil, errors.Wrapf(ErrCommitmentMismatch, "%d entries are stored without a commitment", utxoSet.Len())
		}
		return utxoSet, nil
	}
	if err != nil {
		return nil, err
	}
	storedCommitment, err := externalapi.NewDomainHashFromByteSlice(commitmentBytes)
	if err != nil {
		return nil, err
	}
	commitment, err := utxo.Commitment(utxoSet)
	if err != nil {
		return nil, err
	}
	if !commitment.Equal(storedCommitment) {
		return nil, errors.Wrapf(ErrCommitmentMismatch, "stored commitment %s, computed %s",
			storedCommitment, commitment)
	}

	log.Debugf("Loaded %d UTXO entries with commitment %s", utxoSet.Len(), commitment)
	return utxoSet, nil
}

func readUTXOSet(accessor database.DataAccessor) (utxo.Collection, error) {
	cursor, err := accessor.Cursor(utxoSetBucket)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	utxoSet := utxo.NewCollection()
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			return nil, err
		}
		outpoint, err := utxo.DeserializeOutpoint(key.Suffix())
		if err != nil {
			return nil, errors.Wrapf(err, "malformed stored outpoint %x", key.Suffix())
		}
		value, err := cursor.Value()
		if err != nil {
			return nil, err
		}
		entry, err := utxo.DeserializeUTXOEntry(value)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed stored entry for outpoint %s", outpoint)
		}
		utxoSet.Add(outpoint, entry)
	}
	return utxoSet, nil
}

// SaveUTXOSet replaces the stored UTXO set with utxoSet and its commitment in
// a single atomic write. It returns the new commitment.
func (s *Store) SaveUTXOSet(utxoSet externalapi.ReadOnlyUTXOSet) (*externalapi.DomainHash, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "SaveUTXOSet")
	defer onEnd()

	commitment, err := utxo.Commitment(utxoSet)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.RollbackUnlessClosed()

	stored, err := readUTXOSet(tx)
	if err != nil {
		return nil, err
	}

	removed := 0
	iterator := stored.Iterator()
	defer iterator.Close()
	for ok := iterator.First(); ok; ok = iterator.Next() {
		outpoint, _, err := iterator.Get()
		if err != nil {
			return nil, err
		}
		if utxoSet.Contains(outpoint) {
			continue
		}
		key, err := outpointKey(outpoint)
		if err != nil {
			return nil, err
		}
		err = tx.Delete(key)
		if err != nil {
			return nil, err
		}
		removed++
	}

	added := 0
	newIterator := utxoSet.Iterator()
	defer newIterator.Close()
	for ok := newIterator.First(); ok; ok = newIterator.Next() {
		outpoint, entry, err := newIterator.Get()
		if err != nil {
			return nil, err
		}
		if storedEntry, ok := stored.Get(outpoint); ok && storedEntry.Equal(entry) {
			continue
		}
		key, err := outpointKey(outpoint)
		if err != nil {
			return nil, err
		}
		value, err := utxo.SerializeUTXOEntry(entry)
		if err != nil {
			return nil, err
		}
		err = tx.Put(key, value)
		if err != nil {
			return nil, err
		}
		added++
	}

	err = tx.Put(commitmentKey, commitment.ByteSlice())
	if err != nil {
		return nil, err
	}
	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	log.Debugf("Saved UTXO set: %d entries added, %d removed, commitment %s", added, removed, commitment)
	return commitment, nil
}

func outpointKey(outpoint *externalapi.DomainOutpoint) (*database.Key, error) {
	outpointBytes, err := utxo.SerializeOutpoint(outpoint)
	if err != nil {
		return nil, err
	}
	return utxoSetBucket.Key(outpointBytes), nil
}
