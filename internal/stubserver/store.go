package stubserver

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arklim/riskdash-client/internal/core/domain"
)

var (
	errUserNotFound  = errors.New("stubserver: user not found")
	errDuplicateUser = errors.New("stubserver: email already registered")
	errBadPassword   = errors.New("stubserver: invalid credentials")
)

type stubUser struct {
	identity     domain.Identity
	passwordHash string
}

// memoryStore backs the stub server: users keyed by ID plus a per-user
// notification list, newest first.
type memoryStore struct {
	mu            sync.Mutex
	users         map[string]*stubUser
	byEmail       map[string]string
	notifications map[string][]domain.Notification
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:         make(map[string]*stubUser),
		byEmail:       make(map[string]string),
		notifications: make(map[string][]domain.Notification),
	}
}

func (s *memoryStore) createUser(reg domain.Registration, role domain.Role) (domain.Identity, error) {
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	if email == "" || reg.Password == "" {
		return domain.Identity{}, errBadPassword
	}

	hash, err := hashPassword(reg.Password)
	if err != nil {
		return domain.Identity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return domain.Identity{}, errDuplicateUser
	}

	now := time.Now().UTC()
	identity := domain.Identity{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Role:      role,
		Status:    domain.AccountStatusActive,
		CreatedAt: &now,
	}

	s.users[identity.ID] = &stubUser{identity: identity, passwordHash: hash}
	s.byEmail[email] = identity.ID

	return identity, nil
}

func (s *memoryStore) authenticate(email, password string) (domain.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	id, ok := s.byEmail[email]
	var user *stubUser
	if ok {
		user = s.users[id]
	}
	s.mu.Unlock()

	if user == nil {
		return domain.Identity{}, errBadPassword
	}

	match, err := verifyPassword(password, user.passwordHash)
	if err != nil {
		return domain.Identity{}, err
	}
	if !match {
		return domain.Identity{}, errBadPassword
	}

	return user.identity, nil
}

func (s *memoryStore) getUser(id string) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return domain.Identity{}, errUserNotFound
	}
	return user.identity, nil
}

func (s *memoryStore) listNotifications(userID string) domain.NotificationList {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.notifications[userID]
	list := domain.NotificationList{
		Notifications: make([]domain.Notification, len(items)),
	}
	copy(list.Notifications, items)
	for _, n := range items {
		if !n.Read {
			list.UnreadCount++
		}
	}
	return list
}

func (s *memoryStore) addNotification(userID string, n domain.Notification) domain.Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications[userID] = append([]domain.Notification{n}, s.notifications[userID]...)
	return n
}

func (s *memoryStore) markRead(userID, id string) (domain.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.notifications[userID]
	for i := range items {
		if items[i].ID == id {
			items[i].Read = true
			return items[i], true
		}
	}
	return domain.Notification{}, false
}

func (s *memoryStore) markAllRead(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.notifications[userID]
	for i := range items {
		items[i].Read = true
	}
}

func (s *memoryStore) deleteNotification(userID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.notifications[userID]
	for i := range items {
		if items[i].ID == id {
			s.notifications[userID] = append(items[:i], items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *memoryStore) deleteAllNotifications(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.notifications, userID)
}
