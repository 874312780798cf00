package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wak1e7/todolistapp/internal/cache"
	apperrors "github.com/wak1e7/todolistapp/internal/errors"
	"github.com/wak1e7/todolistapp/internal/model"
	"github.com/wak1e7/todolistapp/internal/repository"
)

const taskListCacheTTL = 5 * time.Minute

// TaskService enforces ownership around task CRUD. Every gated operation runs
// the same sequence: resolve the caller to a user record, resolve the task,
// then compare owner ids. Usernames are resolved to stable numeric ids on
// every call; the ownership comparison itself is never done on usernames.
type TaskService interface {
	Create(ctx context.Context, username, title, description string, completed bool) (*model.Task, error)
	ListAll(ctx context.Context, username string) ([]model.Task, error)
	ListPending(ctx context.Context, username string) ([]model.Task, error)
	GetByID(ctx context.Context, username string, id uint) (*model.Task, error)
	Update(ctx context.Context, username string, id uint, title, description string, completed bool) (*model.Task, error)
	PatchCompletion(ctx context.Context, username string, id uint, completed bool) (*model.Task, error)
	Delete(ctx context.Context, username string, id uint) error
}

type taskService struct {
	tasks repository.TaskRepository
	users repository.UserRepository
	cache *cache.Client
}

// NewTaskService builds a TaskService with repositories and list cache.
func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, cache *cache.Client) TaskService {
	return &taskService{tasks: tasks, users: users, cache: cache}
}

func taskListKeys(ownerID uint) []string {
	return []string{
		fmt.Sprintf("tasks:all:%d", ownerID),
		fmt.Sprintf("tasks:pending:%d", ownerID),
	}
}

func (s *taskService) resolveUser(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *taskService) resolveTask(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return task, nil
}

// assertOwnerOrAdmin is the single ownership gate shared by every gated
// operation. Owner match is strict equality on numeric ids; the admin role
// bypasses ownership entirely.
func assertOwnerOrAdmin(user *model.User, task *model.Task) error {
	if task.OwnerID == user.ID || user.IsAdmin() {
		return nil
	}
	return apperrors.ErrForbidden
}

func (s *taskService) invalidateLists(ctx context.Context, ownerID uint) {
	_ = s.cache.Delete(ctx, taskListKeys(ownerID)...)
}

// Create persists a new task owned by the caller.
func (s *taskService) Create(ctx context.Context, username, title, description string, completed bool) (*model.Task, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:       title,
		Description: description,
		Completed:   completed,
		OwnerID:     user.ID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.invalidateLists(ctx, user.ID)
	return task, nil
}

// ListAll returns every task owned by the caller.
func (s *taskService) ListAll(ctx context.Context, username string) ([]model.Task, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}

	key := taskListKeys(user.ID)[0]
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached []model.Task
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	tasks, err := s.tasks.FindByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	if payload, err := json.Marshal(tasks); err == nil {
		_ = s.cache.Set(ctx, key, payload, taskListCacheTTL)
	}
	return tasks, nil
}

// ListPending returns the caller's tasks that are not completed.
func (s *taskService) ListPending(ctx context.Context, username string) ([]model.Task, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}

	key := taskListKeys(user.ID)[1]
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached []model.Task
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	tasks, err := s.tasks.FindPendingByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list pending tasks: %w", err)
	}

	if payload, err := json.Marshal(tasks); err == nil {
		_ = s.cache.Set(ctx, key, payload, taskListCacheTTL)
	}
	return tasks, nil
}

// GetByID returns one task. Missing tasks report not-found before any
// ownership comparison happens.
func (s *taskService) GetByID(ctx context.Context, username string, id uint) (*model.Task, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	task, err := s.resolveTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := assertOwnerOrAdmin(user, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update replaces all mutable fields of a task.
func (s *taskService) Update(ctx context.Context, username string, id uint, title, description string, completed bool) (*model.Task, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	task, err := s.resolveTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := assertOwnerOrAdmin(user, task); err != nil {
		return nil, err
	}

	task.Title = title
	task.Description = description
	task.Completed = completed
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	s.invalidateLists(ctx, task.OwnerID)
	return task, nil
}

// PatchCompletion mutates only the completed flag.
func (s *taskService) PatchCompletion(ctx context.Context, username string, id uint, completed bool) (*model.Task, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	task, err := s.resolveTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := assertOwnerOrAdmin(user, task); err != nil {
		return nil, err
	}

	task.Completed = completed
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("patch task: %w", err)
	}
	s.invalidateLists(ctx, task.OwnerID)
	return task, nil
}

// Delete removes a task permanently.
func (s *taskService) Delete(ctx context.Context, username string, id uint) error {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return err
	}
	task, err := s.resolveTask(ctx, id)
	if err != nil {
		return err
	}
	if err := assertOwnerOrAdmin(user, task); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.invalidateLists(ctx, task.OwnerID)
	return nil
}
