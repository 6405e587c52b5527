package vaccine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"maskedvaccine/internal/domain/fhe"

	"golang.org/x/exp/slog"
)

// DefaultRevealDelay is the cosmetic pause of the cache tier.
const DefaultRevealDelay = 500 * time.Millisecond

// Deps are the collaborators of a Session. Instance, Signer and Ledger may
// be nil; operations that need them are then unavailable.
type Deps struct {
	Instance    fhe.Instance
	Signer      Signer
	Ledger      Ledger
	Cache       *Cache
	Tags        TagGenerator
	Now         func() time.Time
	RevealDelay time.Duration
	Log         *slog.Logger
}

// Session is the client-side protocol state of one signer: the in-memory
// record index, the active record, the last reconciliation result, the last
// submitted decryption request per record and the last status message.
//
// Operations are single-flight from the caller's perspective. The mutex
// only keeps the fields consistent; it does not coalesce or order calls.
type Session struct {
	instance    fhe.Instance
	signer      Signer
	ledger      Ledger
	cache       *Cache
	tags        TagGenerator
	now         func() time.Time
	revealDelay time.Duration
	log         *slog.Logger

	mu      sync.RWMutex
	records []uint64
	active  uint64
	result  *Result
	pending map[uint64]DecryptionRequest
	status  string
}

func NewSession(d Deps) *Session {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Tags == nil {
		d.Tags = RandomTags{}
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Cache == nil {
		d.Cache = NewCache(nil, d.Log)
	}
	return &Session{
		instance:    d.Instance,
		signer:      d.Signer,
		ledger:      d.Ledger,
		cache:       d.Cache,
		tags:        d.Tags,
		now:         d.Now,
		revealDelay: d.RevealDelay,
		log:         d.Log.With("component", "vaccine_session"),
		pending:     make(map[uint64]DecryptionRequest),
	}
}

// CanWrite reports whether create and authorize can be submitted.
func (s *Session) CanWrite() bool {
	return s.instance != nil && s.signer != nil && s.ledger != nil
}

// CanRequestDecryption reports whether a request can be submitted for the
// active record.
func (s *Session) CanRequestDecryption() bool {
	return s.CanWrite() && s.Active() != 0
}

// CanDecrypt reports whether decrypt can do better than UNRESOLVED for the
// active record: the payload is cached or the ledger can be queried.
// Decryption needs neither a signer nor an encryption instance.
func (s *Session) CanDecrypt() bool {
	id := s.Active()
	if id == 0 {
		return false
	}
	if s.ledger != nil {
		return true
	}
	_, ok := s.cache.Get(id)
	return ok
}

// Missing names the absent dependencies of write operations.
func (s *Session) Missing() []string {
	var out []string
	if s.instance == nil {
		out = append(out, "encryption instance")
	}
	if s.signer == nil {
		out = append(out, "signer")
	}
	if s.ledger == nil {
		out = append(out, "contract binding")
	}
	return out
}

// Records returns the record index in creation order.
func (s *Session) Records() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uint64, len(s.records))
	copy(out, s.records)
	return out
}

// Active returns the active record id, zero if none.
func (s *Session) Active() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Result returns the last reconciliation result of the active record.
func (s *Session) Result() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil || s.result.RecordID != s.active {
		return nil
	}
	r := *s.result
	return &r
}

// Pending returns the last submitted decryption request for id.
func (s *Session) Pending(id uint64) (DecryptionRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.pending[id]
	return r, ok
}

// Status is the last user-visible status message.
func (s *Session) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Cache exposes the local record cache.
func (s *Session) Cache() *Cache {
	return s.cache
}

// SelectRecord makes id the active record and drops any stale result.
func (s *Session) SelectRecord(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectLocked(id)
	s.status = fmt.Sprintf("selected record #%d", id)
}

func (s *Session) selectLocked(id uint64) {
	s.active = id
	s.result = nil
}

func (s *Session) setStatus(format string, args ...any) {
	s.mu.Lock()
	s.status = fmt.Sprintf(format, args...)
	s.mu.Unlock()
}

func (s *Session) encrypt(ctx context.Context, stage func(fhe.Input)) (*fhe.Encrypted, error) {
	in := s.instance.CreateEncryptedInput(s.ledger.Contract(), s.signer.Address())
	stage(in)
	enc, err := in.Encrypt(ctx)
	if err != nil {
		return nil, fmt.Errorf("encrypt input: %w", err)
	}
	if len(enc.Handles) == 0 {
		return nil, fmt.Errorf("encrypt input: no handles returned")
	}
	return enc, nil
}

func shortAddress(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
