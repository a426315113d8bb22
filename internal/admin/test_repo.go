package admin

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fcacademy/academyweb/internal/auth"
	"github.com/fcacademy/academyweb/pkg"
)

var (
	_ accountsRepo      = (*TestRepo)(nil)
	_ auth.AccountStore = (*TestRepo)(nil)
)

// TestRepo keeps admin accounts in memory, applying the same rules as Repo.
type TestRepo struct {
	mutex    sync.Mutex
	accounts map[int]*Account
	lastID   int
	Err      error
}

func NewTestRepo() *TestRepo {
	return &TestRepo{
		accounts: map[int]*Account{},
	}
}

// AddAccount hashes the password with bcrypt.MinCost and stores the account.
func (r *TestRepo) AddAccount(username, password string) (*Account, error) {
	hash, err := pkg.HashPassword(password, 4)
	if err != nil {
		return nil, err
	}
	return r.Create(context.Background(), username, hash)
}

func (r *TestRepo) List(_ context.Context) ([]Account, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.sorted(), nil
}

func (r *TestRepo) Get(_ context.Context, id int) (*Account, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	accountCopy := *account
	return &accountCopy, nil
}

func (r *TestRepo) GetByUsername(_ context.Context, username string) (*Account, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, account := range r.accounts {
		if account.Username == username {
			accountCopy := *account
			return &accountCopy, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (r *TestRepo) PasswordHash(_ context.Context, username string) (string, error) {
	if r.Err != nil {
		return "", r.Err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, account := range r.accounts {
		if account.Username == username {
			return account.PasswordHash, nil
		}
	}
	return "", auth.ErrUnknownAccount
}

func (r *TestRepo) Count(_ context.Context) (int, error) {
	if r.Err != nil {
		return 0, r.Err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.accounts), nil
}

func (r *TestRepo) Create(_ context.Context, username, passwordHash string) (*Account, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.usernameTaken(username, 0) {
		return nil, ErrUsernameTaken
	}
	r.lastID++
	account := &Account{
		ID:           r.lastID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	r.accounts[account.ID] = account

	accountCopy := *account
	return &accountCopy, nil
}

func (r *TestRepo) UpdatePassword(_ context.Context, id int, passwordHash string) error {
	if r.Err != nil {
		return r.Err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.PasswordHash = passwordHash
	return nil
}

func (r *TestRepo) Update(_ context.Context, id int, username, passwordHash *string) (*Account, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	if username != nil && r.usernameTaken(*username, id) {
		return nil, ErrUsernameTaken
	}
	if username != nil {
		account.Username = *username
	}
	if passwordHash != nil {
		account.PasswordHash = *passwordHash
	}

	accountCopy := *account
	return &accountCopy, nil
}

func (r *TestRepo) Delete(_ context.Context, id int, actingUsername string) error {
	if r.Err != nil {
		return r.Err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := checkDeletable(r.sorted(), id, actingUsername); err != nil {
		return err
	}
	delete(r.accounts, id)
	return nil
}

func (r *TestRepo) sorted() []Account {
	accounts := make([]Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		accounts = append(accounts, *account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})
	return accounts
}

func (r *TestRepo) usernameTaken(username string, exceptID int) bool {
	for id, account := range r.accounts {
		if id != exceptID && account.Username == username {
			return true
		}
	}
	return false
}
