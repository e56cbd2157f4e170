package mockrelayer

import (
	"sync"
	"time"

	"github.com/renegade-fi/external-match-client/pkg/model"
)

// quoteEntry tracks one issued quote until it expires or is consumed.
type quoteEntry struct {
	quote     model.SignedQuote
	expiresAt time.Time
	consumed  bool
}

// quoteStore holds issued quotes keyed by their signature. Quotes are
// single-use: assembling consumes the entry, a second assembly misses.
type quoteStore struct {
	mu     sync.Mutex
	quotes map[string]*quoteEntry
	ttl    time.Duration
}

func newQuoteStore(ttl time.Duration) *quoteStore {
	return &quoteStore{
		quotes: make(map[string]*quoteEntry),
		ttl:    ttl,
	}
}

func (s *quoteStore) put(sq model.SignedQuote, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[sq.Signature] = &quoteEntry{
		quote:     sq,
		expiresAt: now.Add(s.ttl),
	}
}

// consume returns the quote for signature and marks it used. A miss means
// the quote is unknown, expired, or already consumed — indistinguishable to
// the caller, exactly as the venue behaves.
func (s *quoteStore) consume(signature string, now time.Time) (model.SignedQuote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.quotes[signature]
	if !ok || entry.consumed || now.After(entry.expiresAt) {
		return model.SignedQuote{}, false
	}
	entry.consumed = true
	return entry.quote, true
}
