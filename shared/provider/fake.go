package provider

import (
	"context"
	"fmt"
	"sync"
)

// FakeProvider is an in-memory IdentityProvider for unit tests and local
// development. Duplicate emails are rejected the way a real provider would
// reject them, which is what makes re-running bootstrap safe.
type FakeProvider struct {
	mu         sync.Mutex
	nextID     int
	accounts   map[string]fakeAccount // keyed by email
	roles      []Role
	grants     map[string][]string // userID -> roleIDs
	tokenCalls int

	// Failure switches for exercising partial-failure paths.
	FailCreateAccount bool
	FailListRoles     bool
	FailAssignRole    bool
	FailUserToken     bool
}

type fakeAccount struct {
	userID   string
	password string
}

// NewFakeProvider creates an empty fake with the given role catalog.
func NewFakeProvider(roles ...Role) *FakeProvider {
	return &FakeProvider{
		accounts: make(map[string]fakeAccount),
		roles:    roles,
		grants:   make(map[string][]string),
	}
}

func (f *FakeProvider) CreateAccount(ctx context.Context, account Account) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailCreateAccount {
		return "", fmt.Errorf("%w: create account unavailable", ErrProvider)
	}
	if existing, ok := f.accounts[account.Email]; ok {
		// Duplicate emails keep the original account and id.
		return existing.userID, nil
	}

	f.nextID++
	userID := fmt.Sprintf("auth0|%06d", f.nextID)
	f.accounts[account.Email] = fakeAccount{userID: userID, password: account.Password}
	return userID, nil
}

func (f *FakeProvider) ListRoles(ctx context.Context) ([]Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailListRoles {
		return nil, fmt.Errorf("%w: role catalog unavailable", ErrProvider)
	}
	return append([]Role(nil), f.roles...), nil
}

func (f *FakeProvider) AssignRole(ctx context.Context, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailAssignRole {
		return fmt.Errorf("%w: role assignment unavailable", ErrProvider)
	}
	f.grants[userID] = append(f.grants[userID], roleID)
	return nil
}

func (f *FakeProvider) IssueToken(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokenCalls++
	return fmt.Sprintf("fake-management-token-%d", f.tokenCalls), nil
}

func (f *FakeProvider) IssueUserToken(ctx context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailUserToken {
		return "", fmt.Errorf("%w: token endpoint unavailable", ErrProvider)
	}
	account, ok := f.accounts[email]
	if !ok || account.password != password {
		return "", fmt.Errorf("%w: invalid credentials", ErrProvider)
	}
	return "fake-access-token-" + account.userID, nil
}

// Grants returns the role ids granted to a user, for test assertions.
func (f *FakeProvider) Grants(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.grants[userID]...)
}

// AccountCount returns the number of provider accounts, for test assertions.
func (f *FakeProvider) AccountCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.accounts)
}

var _ IdentityProvider = (*FakeProvider)(nil)
