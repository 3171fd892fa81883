package holdings

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/db"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"

	"github.com/pkg/errors"
)

var (
	ErrNotInCache = errors.New("Not in cache")
)

const storageKey = "vault"
const storageSubKey = "holdings"

type cacheUpdate struct {
	h        *state.Holding
	modified bool // true when modified since last write to storage.
	lock     sync.Mutex
}

var cache map[state.Account]*cacheUpdate
var cacheLock sync.Mutex

// Save puts a single holding in cache. A CacheItem is returned and should be
// put in a CacheChannel to be written to storage asynchronously, or be
// synchronously written to storage by immediately calling Write.
func Save(ctx context.Context, dbConn *db.DB, h *state.Holding) (*CacheItem, error) {
	cacheLock.Lock()
	defer cacheLock.Unlock()

	if cache == nil {
		cache = make(map[state.Account]*cacheUpdate)
	}

	cu, exists := cache[h.Account]

	if exists {
		cu.lock.Lock()
		cu.h = h
		cu.modified = true
		cu.lock.Unlock()
	} else {
		cache[h.Account] = &cacheUpdate{h: h, modified: true}
	}

	return NewCacheItem(h.Account), nil
}

// List provides the storage keys of all holdings.
func List(ctx context.Context, dbConn *db.DB) ([]string, error) {
	path := fmt.Sprintf("%s/%s", storageKey, storageSubKey)

	return dbConn.List(ctx, path)
}

// Fetch fetches a single holding from storage and places it in the cache.
func Fetch(ctx context.Context, dbConn *db.DB, account state.Account) (*state.Holding, error) {
	cacheLock.Lock()
	defer cacheLock.Unlock()

	if cache == nil {
		cache = make(map[state.Account]*cacheUpdate)
	}

	cu, exists := cache[account]
	if exists {
		// Copy so the object in cache will not be unintentionally modified
		// (by reference). We don't want it modified unless Save is called.
		cu.lock.Lock()
		defer cu.lock.Unlock()
		return cu.h.Copy(), nil
	}

	key := buildStoragePath(account)

	b, err := dbConn.Fetch(ctx, key)
	if err != nil {
		if err == db.ErrNotFound {
			return nil, ErrNotFound
		}

		return nil, errors.Wrap(err, "Failed to fetch holding")
	}

	readResult, err := deserializeHolding(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "Failed to deserialize holding")
	}

	cache[account] = &cacheUpdate{h: readResult, modified: false}

	return readResult.Copy(), nil
}

// Reset clears the cache.
func Reset(ctx context.Context) {
	cacheLock.Lock()
	defer cacheLock.Unlock()

	cache = nil
}

// WriteCache writes all modified holdings to storage.
func WriteCache(ctx context.Context, dbConn *db.DB) error {
	cacheLock.Lock()
	defer cacheLock.Unlock()

	if cache == nil {
		return nil
	}

	for _, cu := range cache {
		cu.lock.Lock()
		if cu.modified {
			if err := write(ctx, dbConn, cu.h); err != nil {
				cu.lock.Unlock()
				return err
			}
			cu.modified = false
		}
		cu.lock.Unlock()
	}
	return nil
}

// WriteCacheUpdate updates storage for an item from the cache if it has been
// modified since the last write.
func WriteCacheUpdate(ctx context.Context, dbConn *db.DB, account state.Account) error {
	cacheLock.Lock()
	defer cacheLock.Unlock()

	if cache == nil {
		cache = make(map[state.Account]*cacheUpdate)
	}

	cu, exists := cache[account]
	if !exists {
		return ErrNotInCache
	}

	cu.lock.Lock()
	defer cu.lock.Unlock()

	if !cu.modified {
		return nil
	}

	if err := write(ctx, dbConn, cu.h); err != nil {
		return err
	}

	cu.modified = false
	return nil
}

func write(ctx context.Context, dbConn *db.DB, h *state.Holding) error {
	data, err := serializeHolding(h)
	if err != nil {
		return errors.Wrap(err, "Failed to serialize holding")
	}

	if err := dbConn.Put(ctx, buildStoragePath(h.Account), data); err != nil {
		return err
	}

	return nil
}

// buildStoragePath returns the storage path for an account's holding.
func buildStoragePath(account state.Account) string {
	return fmt.Sprintf("%s/%s/%x", storageKey, storageSubKey, account.Bytes())
}

func serializeHolding(h *state.Holding) ([]byte, error) {
	var buf bytes.Buffer

	// Version
	if err := binary.Write(&buf, binary.LittleEndian, uint8(0)); err != nil {
		return nil, err
	}

	if _, err := buf.Write(h.Account.Bytes()); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, h.Balance); err != nil {
		return nil, err
	}

	if err := h.FirstHeldAt.Serialize(&buf); err != nil {
		return nil, err
	}
	if err := h.StreakStartedAt.Serialize(&buf); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint64(h.HeldDuration)); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, h.WeightedShare); err != nil {
		return nil, err
	}

	if err := serializeBigInt(&buf, h.Correction); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, h.Withdrawn); err != nil {
		return nil, err
	}

	if err := h.CreatedAt.Serialize(&buf); err != nil {
		return nil, err
	}
	if err := h.UpdatedAt.Serialize(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func deserializeHolding(buf *bytes.Reader) (*state.Holding, error) {
	var result state.Holding

	// Version
	var version uint8
	if err := binary.Read(buf, binary.LittleEndian, &version); err != nil {
		return &result, err
	}
	if version != 0 {
		return &result, fmt.Errorf("Unknown version : %d", version)
	}

	if _, err := buf.Read(result.Account[:]); err != nil {
		return &result, err
	}

	if err := binary.Read(buf, binary.LittleEndian, &result.Balance); err != nil {
		return &result, err
	}

	var err error
	result.FirstHeldAt, err = state.DeserializeTimestamp(buf)
	if err != nil {
		return &result, err
	}
	result.StreakStartedAt, err = state.DeserializeTimestamp(buf)
	if err != nil {
		return &result, err
	}

	var heldDuration uint64
	if err := binary.Read(buf, binary.LittleEndian, &heldDuration); err != nil {
		return &result, err
	}
	result.HeldDuration = time.Duration(heldDuration)

	if err := binary.Read(buf, binary.LittleEndian, &result.WeightedShare); err != nil {
		return &result, err
	}

	result.Correction, err = deserializeBigInt(buf)
	if err != nil {
		return &result, err
	}

	if err := binary.Read(buf, binary.LittleEndian, &result.Withdrawn); err != nil {
		return &result, err
	}

	result.CreatedAt, err = state.DeserializeTimestamp(buf)
	if err != nil {
		return &result, err
	}
	result.UpdatedAt, err = state.DeserializeTimestamp(buf)
	if err != nil {
		return &result, err
	}

	return &result, nil
}

// serializeBigInt writes a signed big integer as a sign byte followed by a
// length prefixed magnitude.
func serializeBigInt(buf *bytes.Buffer, value *big.Int) error {
	var sign uint8
	if value.Sign() < 0 {
		sign = 1
	}
	if err := binary.Write(buf, binary.LittleEndian, sign); err != nil {
		return err
	}

	b := value.Bytes()
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	if _, err := buf.Write(b); err != nil {
		return err
	}
	return nil
}

func deserializeBigInt(buf *bytes.Reader) (*big.Int, error) {
	var sign uint8
	if err := binary.Read(buf, binary.LittleEndian, &sign); err != nil {
		return nil, err
	}

	var length uint32
	if err := binary.Read(buf, binary.LittleEndian, &length); err != nil {
		return nil, err
	}

	b := make([]byte, length)
	if _, err := buf.Read(b); err != nil {
		return nil, err
	}

	result := new(big.Int).SetBytes(b)
	if sign == 1 {
		result.Neg(result)
	}
	return result, nil
}
