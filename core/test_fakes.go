package core

import (
	"context"
	"sync"
	"time"
)

// FakeAuthStorage is a test-only fake implementing AuthStorage. It stores
// rows in maps and exposes error fields for behavior injection.
type FakeAuthStorage struct {
	mu       sync.RWMutex
	users    map[string]*User           // key: user ID
	tokens   map[string]*MagicLinkToken // key: token hash
	sessions map[string]*Session        // key: session hash

	createErr error
	getErr    error
	deleteErr error
	updateErr error
}

func NewFakeAuthStorage() *FakeAuthStorage {
	return &FakeAuthStorage{
		users:    make(map[string]*User),
		tokens:   make(map[string]*MagicLinkToken),
		sessions: make(map[string]*Session),
	}
}

// UserStorage implementation

func (f *FakeAuthStorage) CreateUser(ctx context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *FakeAuthStorage) GetUserByID(ctx context.Context, id string) (*User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrUserNotFound
}

func (f *FakeAuthStorage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *FakeAuthStorage) MarkEmailVerified(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.EmailVerified = true
	return nil
}

// TokenStorage implementation

func (f *FakeAuthStorage) CreateToken(ctx context.Context, t *MagicLinkToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *t
	f.tokens[t.ID] = &cp
	return nil
}

func (f *FakeAuthStorage) GetToken(ctx context.Context, id string) (*MagicLinkToken, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if t, ok := f.tokens[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, ErrTokenNotFound
}

func (f *FakeAuthStorage) GetLatestUserToken(ctx context.Context, userID string) (*MagicLinkToken, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	var latest *MagicLinkToken
	for _, t := range f.tokens {
		if t.UserID != userID {
			continue
		}
		if latest == nil || t.CreatedAt > latest.CreatedAt {
			latest = t
		}
	}
	if latest == nil {
		return nil, ErrTokenNotFound
	}
	cp := *latest
	return &cp, nil
}

func (f *FakeAuthStorage) DeleteToken(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.tokens, id)
	return nil
}

func (f *FakeAuthStorage) DeleteUserTokens(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for id, t := range f.tokens {
		if t.UserID == userID {
			delete(f.tokens, id)
		}
	}
	return nil
}

func (f *FakeAuthStorage) DeleteExpiredTokens(ctx context.Context, now int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	count := 0
	for id, t := range f.tokens {
		if t.ExpiresAt < now {
			delete(f.tokens, id)
			count++
		}
	}
	return count, nil
}

// SessionStorage implementation

func (f *FakeAuthStorage) CreateSession(ctx context.Context, s *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *FakeAuthStorage) GetSessionWithUser(ctx context.Context, id string) (*Session, *User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, nil, f.getErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}
	u, ok := f.users[s.UserID]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}
	sc, uc := *s, *u
	return &sc, &uc, nil
}

func (f *FakeAuthStorage) UpdateSessionExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.ExpiresAt = expiresAt
	return nil
}

func (f *FakeAuthStorage) DeleteSession(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.sessions, id)
	return nil
}

func (f *FakeAuthStorage) DeleteUserSessions(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for id, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, id)
		}
	}
	return nil
}

// counters for assertions

func (f *FakeAuthStorage) TokenCount(userID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	count := 0
	for _, t := range f.tokens {
		if t.UserID == userID {
			count++
		}
	}
	return count
}

func (f *FakeAuthStorage) SessionCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.sessions)
}

// FakeMailer records sends and fails on demand.
type FakeMailer struct {
	mu      sync.Mutex
	sends   []SentMail
	sendErr error
}

type SentMail struct {
	To   string
	Link string
	TTL  time.Duration
}

func NewFakeMailer() *FakeMailer {
	return &FakeMailer{}
}

func (f *FakeMailer) SendMagicLink(ctx context.Context, to, link string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sends = append(f.sends, SentMail{To: to, Link: link, TTL: ttl})
	return nil
}

func (f *FakeMailer) Sends() []SentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentMail(nil), f.sends...)
}
