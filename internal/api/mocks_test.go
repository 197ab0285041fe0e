package api

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/taskcycle/taskcycle-api/internal/domain"
	"github.com/taskcycle/taskcycle-api/internal/service/auth"
	"github.com/taskcycle/taskcycle-api/internal/service/taskgen"
	"github.com/taskcycle/taskcycle-api/internal/store"
)

// In-memory test doubles for the handler dependencies.

type fakeUserStore struct {
	usersByEmail map[string]*domain.User
	createErr    error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{usersByEmail: make(map[string]*domain.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.usersByEmail[user.Email]; exists {
		return store.ErrEmailExists
	}
	s.usersByEmail[user.Email] = user
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range s.usersByEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := s.usersByEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) WithTx(tx *sql.Tx) store.UserStore { return s }

type fakeTaskStore struct {
	tasks     map[uuid.UUID]*domain.Task
	createErr error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *fakeTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

func (s *fakeTaskStore) ListTemplates(ctx context.Context) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range s.tasks {
		if task.IsRecurring() {
			out = append(out, task)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) ListInstances(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range s.tasks {
		if task.IsInstance && task.ParentTaskID == parentID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) CreateInstances(ctx context.Context, instances []*domain.Task) error {
	for _, inst := range instances {
		s.tasks[inst.ID] = inst
	}
	return nil
}

func (s *fakeTaskStore) RecordGeneration(ctx context.Context, template *domain.Task) error {
	existing, ok := s.tasks[template.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	existing.Recurrence.Count = template.Recurrence.Count
	existing.GeneratedThrough = template.GeneratedThrough
	return nil
}

func (s *fakeTaskStore) UpdateDueDate(ctx context.Context, id uuid.UUID, dueDate *time.Time) error {
	task, ok := s.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.DueDate = dueDate
	return nil
}

func (s *fakeTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return s }

type stubJWTService struct {
	token       string
	generateErr error
	claims      *auth.Claims
	validateErr error
}

func (s *stubJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.generateErr != nil {
		return "", s.generateErr
	}
	return s.token, nil
}

func (s *stubJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return s.claims, nil
}

type stubPasswordVerifier struct {
	hashErr    error
	compareErr error
}

func (s *stubPasswordVerifier) Hash(password string) (string, error) {
	if s.hashErr != nil {
		return "", s.hashErr
	}
	return "hashed:" + password, nil
}

func (s *stubPasswordVerifier) Compare(hashedPassword, password string) error {
	return s.compareErr
}

type stubGenerator struct {
	summary *taskgen.Summary
	err     error

	lastHorizon time.Time
}

func (g *stubGenerator) GenerateForTemplate(
	ctx context.Context,
	templateID uuid.UUID,
	horizon time.Time,
) (*taskgen.Summary, error) {
	g.lastHorizon = horizon
	if g.err != nil {
		return nil, g.err
	}
	if g.summary != nil {
		return g.summary, nil
	}
	return &taskgen.Summary{TemplateID: templateID}, nil
}
