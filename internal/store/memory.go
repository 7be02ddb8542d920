package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"financeia/internal/core"
)

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu       sync.Mutex
	users    []core.User
	cards    []core.CreditCard
	txs      []core.Transaction
	payments map[int64]map[string]bool

	nextUserID int64
	nextCardID int64
	nextTxID   int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payments: make(map[int64]map[string]bool)}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.NotFound("user", email)
}

func (s *MemoryStore) InsertUser(_ context.Context, u core.User) (int64, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := u.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return 0, core.Validationf("email %q already registered", u.Email)
		}
	}
	s.nextUserID++
	u.ID = s.nextUserID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users = append(s.users, u)
	return u.ID, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, core.NotFound("user", "")
}

func (s *MemoryStore) CreateCard(_ context.Context, c core.CreditCard) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCardID++
	c.ID = s.nextCardID
	s.cards = append(s.cards, c)
	return c.ID, nil
}

func (s *MemoryStore) UpdateCard(_ context.Context, c core.CreditCard) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cards {
		if s.cards[i].ID == c.ID && s.cards[i].UserID == c.UserID {
			s.cards[i] = c
			return nil
		}
	}
	return core.NotFound("card", "")
}

func (s *MemoryStore) GetCard(_ context.Context, userID, cardID int64) (core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cards {
		if c.ID == cardID && c.UserID == userID {
			return c, nil
		}
	}
	return core.CreditCard{}, core.NotFound("card", "")
}

func (s *MemoryStore) ListCards(_ context.Context, userID int64) ([]core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.CreditCard
	for _, c := range s.cards {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) AddTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTxID++
	tx.ID = s.nextTxID
	s.txs = append(s.txs, tx)
	return tx.ID, nil
}

func (s *MemoryStore) ListCardTransactions(_ context.Context, cardID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.CardID == cardID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkPaid(_ context.Context, cardID int64, cycle string, _ int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.payments[cardID] == nil {
		s.payments[cardID] = make(map[string]bool)
	}
	s.payments[cardID][cycle] = true
	return nil
}

func (s *MemoryStore) PaidCycles(_ context.Context, cardID int64) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.payments[cardID]))
	for cycle, paid := range s.payments[cardID] {
		out[cycle] = paid
	}
	return out, nil
}

// AllCards returns every card in the store; the alert worker scans them all.
func (s *MemoryStore) AllCards(_ context.Context) ([]core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.CreditCard(nil), s.cards...), nil
}
