package store

import (
	"fmt"
	"sync"
	"time"

	"context"

	"proximity-service/internal/models"
	"proximity-service/pkg/geo"
)

// MemoryStore is an in-process UserStore with the same transaction
// semantics as the mongo implementation. Unit tests for the
// relationship and proximity services run against it; the failure
// injection hooks let tests reach every error path without a backend.
type MemoryStore struct {
	mu    sync.Mutex
	docs  map[string]*models.User
	order []string

	// failUpdate makes the next UpdateField on uid return the given
	// error (once), inside or outside a transaction.
	failUpdate map[string]error

	// pendingConflicts aborts that many transaction commits with a
	// simulated write conflict before letting one through, mirroring
	// the backend's transparent retry.
	pendingConflicts int

	// TxAttempts counts transaction function invocations, retries
	// included.
	TxAttempts int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:       make(map[string]*models.User),
		failUpdate: make(map[string]error),
	}
}

// FailNextUpdate arranges for the next UpdateField touching uid to
// fail with err.
func (s *MemoryStore) FailNextUpdate(uid string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUpdate[uid] = err
}

// InjectConflicts makes the next n transaction attempts conflict
// before committing. The store retries them transparently.
func (s *MemoryStore) InjectConflicts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingConflicts = n
}

func (s *MemoryStore) Get(_ context.Context, uid string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(uid)
}

func (s *MemoryStore) getLocked(uid string) (*models.User, error) {
	doc, ok := s.docs[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(doc), nil
}

func (s *MemoryStore) UpdateField(_ context.Context, uid string, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeInjectedError(uid); err != nil {
		return err
	}

	doc, ok := s.docs[uid]
	if !ok {
		return ErrNotFound
	}
	return setField(doc, field, value)
}

func (s *MemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[user.UID]; ok {
		return ErrAlreadyExists
	}
	for _, existing := range s.docs {
		if existing.EmailAddress == user.EmailAddress || existing.PhoneNumber == user.PhoneNumber {
			return ErrAlreadyExists
		}
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.docs[user.UID] = cloneUser(user)
	s.order = append(s.order, user.UID)
	return nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, uid := range s.order {
		if s.docs[uid].EmailAddress == email {
			return cloneUser(s.docs[uid]), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListAll(_ context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*models.User, 0, len(s.order))
	for _, uid := range s.order {
		users = append(users, cloneUser(s.docs[uid]))
	}
	return users, nil
}

// RunTransaction stages every write and commits all of them only if fn
// succeeds. Injected conflicts discard the staging area and re-run fn,
// the same way the mongo driver re-runs its transaction callback.
func (s *MemoryStore) RunTransaction(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		s.TxAttempts++
		tx := &memoryTx{store: s, staged: make(map[string]*models.User)}

		if err := fn(tx); err != nil {
			return err
		}

		if s.pendingConflicts > 0 {
			s.pendingConflicts--
			continue
		}

		for uid, doc := range tx.staged {
			doc.UpdatedAt = time.Now()
			s.docs[uid] = doc
		}
		return nil
	}
}

type memoryTx struct {
	store  *MemoryStore
	staged map[string]*models.User
}

func (t *memoryTx) Get(uid string) (*models.User, error) {
	if doc, ok := t.staged[uid]; ok {
		return cloneUser(doc), nil
	}
	return t.store.getLocked(uid)
}

func (t *memoryTx) UpdateField(uid string, field string, value any) error {
	if err := t.store.takeInjectedError(uid); err != nil {
		return err
	}

	doc, ok := t.staged[uid]
	if !ok {
		committed, exists := t.store.docs[uid]
		if !exists {
			return ErrNotFound
		}
		doc = cloneUser(committed)
		t.staged[uid] = doc
	}
	return setField(doc, field, value)
}

func (s *MemoryStore) takeInjectedError(uid string) error {
	if err, ok := s.failUpdate[uid]; ok {
		delete(s.failUpdate, uid)
		return err
	}
	return nil
}

func setField(u *models.User, field string, value any) error {
	switch field {
	case FieldFriendsList:
		u.FriendsList = cloneList(value.([]string))
	case FieldFriendRequests:
		u.FriendRequests = cloneList(value.([]string))
	case FieldSentFriendRequests:
		u.SentFriendRequests = cloneList(value.([]string))
	case FieldBlockedList:
		u.BlockedList = cloneList(value.([]string))
	case FieldLocationSharedWith:
		u.LocationSharedWith = cloneList(value.([]string))
	case FieldLocationSharedBy:
		u.LocationSharedBy = cloneList(value.([]string))
	case FieldLastKnownLocation:
		if value == nil {
			u.LastKnownLocation = nil
			return nil
		}
		p := value.(geo.Point)
		u.LastKnownLocation = &p
	case FieldIsOnline:
		u.IsOnline = value.(bool)
	case FieldProfilePicture:
		u.ProfilePicture = value.(string)
	case FieldFirstName:
		u.FirstName = value.(string)
	case FieldLastName:
		u.LastName = value.(string)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

func cloneUser(u *models.User) *models.User {
	out := *u
	out.FriendsList = cloneList(u.FriendsList)
	out.FriendRequests = cloneList(u.FriendRequests)
	out.SentFriendRequests = cloneList(u.SentFriendRequests)
	out.BlockedList = cloneList(u.BlockedList)
	out.LocationSharedWith = cloneList(u.LocationSharedWith)
	out.LocationSharedBy = cloneList(u.LocationSharedBy)
	if u.LastKnownLocation != nil {
		loc := *u.LastKnownLocation
		out.LastKnownLocation = &loc
	}
	return &out
}

func cloneList(list []string) []string {
	if list == nil {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}
