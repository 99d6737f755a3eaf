package memo

import (
	memdb "github.com/hashicorp/go-memdb"
	"github.com/on-the-ground/effstack/effects"
	"go.uber.org/zap"
)

const (
	memoTable = "memo"
	slotIndex = "id"
	ownerIdx  = "owner"
)

type memdbSlot struct {
	ID    string
	Seq   int
	Value any
}

func memoSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			memoTable: {
				Name: memoTable,
				Indexes: map[string]*memdb.IndexSchema{
					slotIndex: {
						Name:   slotIndex,
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "ID"},
								&memdb.IntFieldIndex{Field: "Seq"},
							},
						},
					},
					ownerIdx: {
						Name:    ownerIdx,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
				},
			},
		},
	}
}

// MemDBCache is a transactional in-memory Cache. Ids must not be empty.
type MemDBCache struct {
	db *memdb.MemDB
}

var _ Cache = MemDBCache{}

func NewMemDBCache() (MemDBCache, error) {
	db, err := memdb.NewMemDB(memoSchema())
	if err != nil {
		return MemDBCache{}, err
	}
	return MemDBCache{db: db}, nil
}

func (m MemDBCache) Get(key Key) (any, bool) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(memoTable, slotIndex, key.ID, key.Seq)
	if err != nil || raw == nil {
		return nil, false
	}
	return raw.(*memdbSlot).Value, true
}

func (m MemDBCache) Put(key Key, value any) {
	txn := m.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert(memoTable, &memdbSlot{ID: key.ID, Seq: key.Seq, Value: value}); err != nil {
		effects.Logger().Warn("memo slot not stored", zap.Stringer("key", key), zap.Error(err))
		return
	}
	txn.Commit()
}

func (m MemDBCache) Reset(id string) {
	m.deleteAll(ownerIdx, id)
}

func (m MemDBCache) Clear() {
	m.deleteAll(ownerIdx+"_prefix", "")
}

func (m MemDBCache) deleteAll(index string, id string) {
	txn := m.db.Txn(true)
	defer txn.Abort()

	if _, err := txn.DeleteAll(memoTable, index, id); err != nil {
		effects.Logger().Warn("memo slots not deleted", zap.String("id", id), zap.Error(err))
		return
	}
	txn.Commit()
}
