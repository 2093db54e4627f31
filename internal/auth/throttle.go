package auth

import (
	"encoding/gob"
	"time"
)

const (
	DefaultMaxFailedAttempts     = 5
	DefaultLockoutDuration       = 15 * time.Minute
	DefaultMaxTrackedIdentifiers = 6
)

func init() {
	// Cookie backed sessions gob-encode their values.
	gob.Register(ThrottleKey{})
	gob.Register(AttemptRecord{})
	gob.Register(ThrottleIndexKey(""))
	gob.Register(ThrottleIndex{})
}

// ThrottleConfig configures the Throttle.
type ThrottleConfig struct {
	// MaxFailedAttempts is the number of consecutive failures that locks an identifier.
	MaxFailedAttempts int
	// LockoutDuration is how long a lock lasts.
	LockoutDuration time.Duration
	// MaxTrackedIdentifiers caps the number of records kept in one session.
	// A cookie session holds at most 4096 bytes.
	MaxTrackedIdentifiers int
}

// DefaultThrottleConfig returns the default throttle configuration.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		MaxFailedAttempts:     DefaultMaxFailedAttempts,
		LockoutDuration:       DefaultLockoutDuration,
		MaxTrackedIdentifiers: DefaultMaxTrackedIdentifiers,
	}
}

// ThrottleKey is the session key under which the attempts for an identifier are kept.
type ThrottleKey struct {
	Identifier string
}

// ThrottleIndexKey is the type of the session key under which the ThrottleIndex is kept.
type ThrottleIndexKey string

const throttleIndexKey ThrottleIndexKey = "throttle-index"

// ThrottleIndex lists the normalized identifiers that have a record in the session,
// least recently failed first.
type ThrottleIndex []string

// AttemptRecord is the throttle state for one identifier.
// A zero LockedUntil means the identifier is not locked.
type AttemptRecord struct {
	Failed      int
	LockedUntil time.Time
	LastFailure time.Time
}

// Status is a read-only view on the throttle state of an identifier.
type Status struct {
	Failed      int
	LockedUntil time.Time
	// Remaining is the number of failures left before the identifier is locked.
	Remaining int
}

// Locked reports whether the status was locked at time now.
func (s Status) Locked(now time.Time) bool {
	return now.Before(s.LockedUntil)
}

// Throttle counts failed logins per identifier and locks the identifier for
// a while once too many failures happened in a row.
//
// An identifier is in one of three states:
//   - clear: no record in the session.
//   - warning: a record with failures but no lock.
//   - locked: a record with LockedUntil in the future.
//
// Expired locks are not swept, they are cleared by the next RecordFailure for
// the same identifier.
//
// A session tracks at most MaxTrackedIdentifiers records. Every RecordFailure drops
// unlocked records whose last failure is older than LockoutDuration, and when the
// session is still over the limit the least recently failed unlocked records are
// evicted. Locked records are only evicted when every tracked record is locked.
//
// State is kept in the SessionContext that is passed to every call, the Throttle
// itself is stateless and safe for concurrent use. Because the state lives in the
// client's session, a client that starts a new session starts with a clear record.
type Throttle struct {
	cfg ThrottleConfig

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

// NewThrottle creates a Throttle. Zero or negative config values are replaced by their defaults.
func NewThrottle(cfg ThrottleConfig) *Throttle {
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = DefaultMaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = DefaultLockoutDuration
	}
	if cfg.MaxTrackedIdentifiers <= 0 {
		cfg.MaxTrackedIdentifiers = DefaultMaxTrackedIdentifiers
	}

	return &Throttle{
		cfg:     cfg,
		NowFunc: time.Now,
	}
}

// Config returns the effective configuration.
func (t *Throttle) Config() ThrottleConfig {
	return t.cfg
}

// IsLocked reports whether identifier is currently locked. It never modifies the session.
func (t *Throttle) IsLocked(sess SessionContext, identifier string) bool {
	rec, ok := t.record(sess, identifier)
	if !ok {
		return false
	}

	return t.NowFunc().Before(rec.LockedUntil)
}

// RecordFailure registers a failed attempt for identifier and returns the new status.
//
// If the identifier was locked and the lock expired, the record is cleared first
// and this failure counts as the first one. Failures while the lock is still active
// are counted, but don't extend the lock.
func (t *Throttle) RecordFailure(sess SessionContext, identifier string) Status {
	now := t.NowFunc()

	rec, _ := t.record(sess, identifier)
	if !rec.LockedUntil.IsZero() && !now.Before(rec.LockedUntil) {
		rec = AttemptRecord{}
	}

	rec.Failed++
	rec.LastFailure = now
	if rec.LockedUntil.IsZero() && rec.Failed >= t.cfg.MaxFailedAttempts {
		rec.LockedUntil = now.Add(t.cfg.LockoutDuration)
	}

	key := throttleKey(identifier)
	sess.Set(key, rec)
	t.track(sess, key.Identifier, now)

	return t.status(rec)
}

// Reset clears the record of identifier.
func (t *Throttle) Reset(sess SessionContext, identifier string) {
	key := throttleKey(identifier)
	sess.Clear(key)

	index := t.index(sess)
	kept := make(ThrottleIndex, 0, len(index))
	for _, id := range index {
		if id != key.Identifier {
			kept = append(kept, id)
		}
	}

	if len(kept) == len(index) {
		return
	}
	if len(kept) == 0 {
		sess.Clear(throttleIndexKey)
		return
	}
	sess.Set(throttleIndexKey, kept)
}

// track moves current to the back of the index and bounds the number of records in sess.
func (t *Throttle) track(sess SessionContext, current string, now time.Time) {
	kept := make(ThrottleIndex, 0, t.cfg.MaxTrackedIdentifiers+1)
	for _, id := range t.index(sess) {
		if id == current {
			continue
		}

		rec, ok := t.record(sess, id)
		if !ok {
			continue
		}
		if !now.Before(rec.LockedUntil) && now.Sub(rec.LastFailure) >= t.cfg.LockoutDuration {
			sess.Clear(throttleKey(id))
			continue
		}

		kept = append(kept, id)
	}
	kept = append(kept, current)

	for len(kept) > t.cfg.MaxTrackedIdentifiers {
		// current is last and never evicted.
		evict := 0
		for i, id := range kept[:len(kept)-1] {
			rec, _ := t.record(sess, id)
			if !now.Before(rec.LockedUntil) {
				evict = i
				break
			}
		}

		sess.Clear(throttleKey(kept[evict]))
		kept = append(kept[:evict], kept[evict+1:]...)
	}

	sess.Set(throttleIndexKey, kept)
}

func (t *Throttle) index(sess SessionContext) ThrottleIndex {
	v, ok := sess.Get(throttleIndexKey)
	if !ok {
		return nil
	}

	index, _ := v.(ThrottleIndex)
	return index
}

// Status returns the current state of identifier without modifying the session.
// An expired lock is reported as it is stored.
func (t *Throttle) Status(sess SessionContext, identifier string) Status {
	rec, _ := t.record(sess, identifier)
	return t.status(rec)
}

func (t *Throttle) status(rec AttemptRecord) Status {
	remaining := t.cfg.MaxFailedAttempts - rec.Failed
	if remaining < 0 {
		remaining = 0
	}

	return Status{
		Failed:      rec.Failed,
		LockedUntil: rec.LockedUntil,
		Remaining:   remaining,
	}
}

func (t *Throttle) record(sess SessionContext, identifier string) (AttemptRecord, bool) {
	v, ok := sess.Get(throttleKey(identifier))
	if !ok {
		return AttemptRecord{}, false
	}

	rec, ok := v.(AttemptRecord)
	return rec, ok
}

func throttleKey(identifier string) ThrottleKey {
	return ThrottleKey{
		Identifier: NormalizeIdentifier(identifier),
	}
}
