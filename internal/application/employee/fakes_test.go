package employee_test

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
	"github.com/mohammadpnp/employee-import/internal/domain/task"
)

type fakeRunner struct {
	mu          sync.Mutex
	groups      [][]task.Unit
	after       []task.Unit
	afterGroups []task.GroupHandle
	tasks       map[string][]task.Task
	groupErr    error
	afterErr    error
	listErr     error
}

func (f *fakeRunner) Submit(ctx context.Context, unit task.Unit) (task.UnitHandle, error) {
	return task.UnitHandle{ID: "unit-1"}, nil
}

func (f *fakeRunner) SubmitGroup(ctx context.Context, units []task.Unit) (task.GroupHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.groupErr != nil {
		return task.GroupHandle{}, f.groupErr
	}
	f.groups = append(f.groups, units)
	return task.GroupHandle{ID: fmt.Sprintf("group-%d", len(f.groups)), Size: len(units)}, nil
}

func (f *fakeRunner) SubmitAfter(ctx context.Context, unit task.Unit, dependsOn task.GroupHandle) (task.UnitHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.afterErr != nil {
		return task.UnitHandle{}, f.afterErr
	}
	f.after = append(f.after, unit)
	f.afterGroups = append(f.afterGroups, dependsOn)
	return task.UnitHandle{ID: fmt.Sprintf("notify-%d", len(f.after))}, nil
}

func (f *fakeRunner) ListByGroup(ctx context.Context, groupID string) ([]task.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tasks[groupID], nil
}

// fakeStore is an in-memory record store keyed by work email.
type fakeStore struct {
	mu        sync.Mutex
	byEmail   map[string]string
	created   []domain.NewEmployee
	lookups   []string
	createErr error
	failAfter int
	lookupErr error
}

func newFakeStore(existing ...string) *fakeStore {
	store := &fakeStore{byEmail: map[string]string{}, failAfter: -1}
	for i, email := range existing {
		store.byEmail[email] = fmt.Sprintf("existing-%d", i)
	}
	return store
}

func (f *fakeStore) FindByWorkEmail(ctx context.Context, email string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lookups = append(f.lookups, email)
	if f.lookupErr != nil {
		return "", false, f.lookupErr
	}
	id, ok := f.byEmail[email]
	return id, ok, nil
}

func (f *fakeStore) Create(ctx context.Context, fields domain.NewEmployee) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil && len(f.created) >= f.failAfter {
		return "", f.createErr
	}

	id := fmt.Sprintf("emp-%d", len(f.created)+1)
	f.created = append(f.created, fields)
	if fields.WorkEmail != nil {
		f.byEmail[*fields.WorkEmail] = id
	}
	return id, nil
}

func (f *fakeStore) createdNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.created))
	for _, fields := range f.created {
		names = append(names, fields.Name)
	}
	return names
}
