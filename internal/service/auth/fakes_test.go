package auth_test

import (
	"context"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/clusterboard/dashboard-api/internal/model"
	"github.com/clusterboard/dashboard-api/internal/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) add(username, password string, perms model.PermissionMap) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[username] = &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Enabled:      true,
		Permissions:  perms,
	}
}

func (r *fakeUserRepo) enabled(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	return ok && u.Enabled
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.Username] = &copied
	return nil
}

func (r *fakeUserRepo) SetEnabled(_ context.Context, username string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Enabled = enabled
	return nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

type fakeAttemptRepo struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{counts: make(map[string]int)}
}

func (r *fakeAttemptRepo) count(username string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[username]
}

func (r *fakeAttemptRepo) Get(_ context.Context, username string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[username], nil
}

func (r *fakeAttemptRepo) Increment(_ context.Context, username string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[username]++
	return r.counts[username], nil
}

func (r *fakeAttemptRepo) Reset(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.counts, username)
	return nil
}
