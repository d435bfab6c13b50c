package sealbox

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/absfs/absfs"
	"github.com/google/uuid"
)

// KeyRecord is a key held by a Vault
type KeyRecord struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the record is past its expiration at now
func (r KeyRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// StoredKey is a listing entry. Listings include expired records with
// Expired set; they are never silently dropped.
type StoredKey struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Expired   bool      `json:"expired"`
}

// Vault is a local store of generated keys with per-record expiration.
// Expiration is evaluated when a record is accessed; there is no
// background sweep. All methods are safe for concurrent use.
type Vault struct {
	mu         sync.RWMutex
	records    map[string]KeyRecord
	now        func() time.Time
	defaultTTL time.Duration
	store      *vaultStore
	closed     bool
}

// VaultOption configures a Vault
type VaultOption func(*Vault)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) VaultOption {
	return func(v *Vault) {
		v.now = now
	}
}

// WithDefaultTTL sets the expiration used by Issue when none is given
func WithDefaultTTL(ttl time.Duration) VaultOption {
	return func(v *Vault) {
		v.defaultTTL = ttl
	}
}

// WithStore persists records as JSON at name in fsys. Existing records
// are loaded when the vault is opened and the file is rewritten after
// every change.
func WithStore(fsys absfs.FileSystem, name string) VaultOption {
	return func(v *Vault) {
		v.store = &vaultStore{fs: fsys, path: name}
	}
}

// NewVault opens a vault. Without WithStore the records live only in memory.
func NewVault(opts ...VaultOption) (*Vault, error) {
	v := &Vault{
		records:    make(map[string]KeyRecord),
		now:        time.Now,
		defaultTTL: DefaultKeyTTL,
	}
	for _, opt := range opts {
		opt(v)
	}

	if v.defaultTTL < 0 {
		return nil, NewValidationError("default_ttl", v.defaultTTL, "cannot be negative")
	}

	if v.store != nil {
		records, err := v.store.load()
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			v.records[r.ID] = r
		}
	}
	return v, nil
}

// StoreKey saves key under id with expiration now+ttl, replacing any
// record with the same id. A zero ttl stores an already expired record.
func (v *Vault) StoreKey(id, key string, ttl time.Duration) (KeyRecord, error) {
	if err := ValidateID(id); err != nil {
		return KeyRecord{}, err
	}
	if ttl < 0 {
		return KeyRecord{}, NewValidationError("ttl", ttl, "cannot be negative")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return KeyRecord{}, ErrVaultClosed
	}

	now := v.now()
	record := KeyRecord{
		ID:        id,
		Key:       key,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	prev, existed := v.records[id]
	v.records[id] = record
	if err := v.persistLocked(); err != nil {
		if existed {
			v.records[id] = prev
		} else {
			delete(v.records, id)
		}
		return KeyRecord{}, err
	}
	return record, nil
}

// StoreKeyHours is StoreKey with the expiration given in hours
func (v *Vault) StoreKeyHours(id, key string, hours float64) (KeyRecord, error) {
	ttl, err := HoursToTTL(hours)
	if err != nil {
		return KeyRecord{}, err
	}
	return v.StoreKey(id, key, ttl)
}

// HoursToTTL converts an expiration in hours to a duration. NaN, infinite,
// negative and out of range values fail with a *ValidationError.
func HoursToTTL(hours float64) (time.Duration, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0, NewValidationError("hours", hours, "must be a finite number")
	}
	if hours < 0 {
		return 0, NewValidationError("hours", hours, "cannot be negative")
	}
	d := hours * float64(time.Hour)
	if d >= float64(math.MaxInt64) {
		return 0, NewValidationError("hours", hours, fmt.Sprintf("must be less than %.0f", float64(math.MaxInt64)/float64(time.Hour)))
	}
	return time.Duration(d), nil
}

// Issue generates a key with opts, stores it under a new random id and
// returns the record. A ttl of zero selects the vault's default TTL.
func (v *Vault) Issue(opts KeyOptions, ttl time.Duration) (KeyRecord, error) {
	key, err := GenerateKey(opts)
	if err != nil {
		return KeyRecord{}, err
	}
	if ttl == 0 {
		ttl = v.defaultTTL
	}
	return v.StoreKey(uuid.NewString(), key, ttl)
}

// RetrieveKey returns the key stored under id. It fails with
// ErrKeyNotFound when there is no record and ErrKeyExpired when the
// record is past its expiration.
func (v *Vault) RetrieveKey(id string) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.closed {
		return "", ErrVaultClosed
	}

	record, ok := v.records[id]
	if !ok {
		return "", &VaultError{ID: id, Err: ErrKeyNotFound}
	}
	if record.Expired(v.now()) {
		return "", &VaultError{ID: id, Err: ErrKeyExpired}
	}
	return record.Key, nil
}

// ListStoredKeys returns every record sorted by id, expired ones flagged.
func (v *Vault) ListStoredKeys() ([]StoredKey, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.closed {
		return nil, ErrVaultClosed
	}

	now := v.now()
	keys := make([]StoredKey, 0, len(v.records))
	for _, r := range v.records {
		keys = append(keys, StoredKey{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
			ExpiresAt: r.ExpiresAt,
			Expired:   r.Expired(now),
		})
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].ID < keys[j].ID
	})
	return keys, nil
}

// DeleteKey removes the record for id. Deleting a missing id is a no-op.
func (v *Vault) DeleteKey(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrVaultClosed
	}

	prev, ok := v.records[id]
	if !ok {
		return nil
	}
	delete(v.records, id)
	if err := v.persistLocked(); err != nil {
		v.records[id] = prev
		return err
	}
	return nil
}

// PurgeExpired removes every expired record and returns how many were removed.
func (v *Vault) PurgeExpired() (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return 0, ErrVaultClosed
	}

	now := v.now()
	removed := make(map[string]KeyRecord)
	for id, r := range v.records {
		if r.Expired(now) {
			removed[id] = r
			delete(v.records, id)
		}
	}
	if len(removed) == 0 {
		return 0, nil
	}
	if err := v.persistLocked(); err != nil {
		for id, r := range removed {
			v.records[id] = r
		}
		return 0, err
	}
	return len(removed), nil
}

// Len returns the number of records, expired ones included
func (v *Vault) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.records)
}

// Close flushes the store and drops all records from memory. Further
// calls fail with ErrVaultClosed. Closing twice is a no-op.
func (v *Vault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil
	}
	err := v.persistLocked()
	clear(v.records)
	v.closed = true
	return err
}

func (v *Vault) persistLocked() error {
	if v.store == nil {
		return nil
	}
	records := make([]KeyRecord, 0, len(v.records))
	for _, r := range v.records {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
	return v.store.save(records)
}
