package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "github.com/wak1e7/todolistapp/internal/errors"
	"github.com/wak1e7/todolistapp/internal/model"
)

// MockTaskRepository is a mock implementation of repository.TaskRepository.
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Save(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByOwner(ctx context.Context, ownerID uint) ([]model.Task, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) FindPendingByOwner(ctx context.Context, ownerID uint) ([]model.Task, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var (
	alice = &model.User{ID: 1, Username: "alice", Role: model.RoleUser}
	bob   = &model.User{ID: 2, Username: "bob", Role: model.RoleUser}
	root  = &model.User{ID: 3, Username: "root", Role: model.RoleAdmin}
)

func expectUser(m *MockUserRepository, user *model.User) {
	m.On("FindByUsername", mock.Anything, user.Username).Return(user, nil)
}

func TestTaskService_Create(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTasks := new(MockTaskRepository)
	expectUser(mockUsers, alice)
	mockTasks.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)

	svc := NewTaskService(mockTasks, mockUsers, nil)
	task, err := svc.Create(context.Background(), "alice", "Buy milk", "2 liters", false)

	assert.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2 liters", task.Description)
	assert.False(t, task.Completed)
	assert.Equal(t, alice.ID, task.OwnerID)
	mockTasks.AssertExpectations(t)
}

func TestTaskService_Create_UserNotFound(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTasks := new(MockTaskRepository)
	mockUsers.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	svc := NewTaskService(mockTasks, mockUsers, nil)
	task, err := svc.Create(context.Background(), "ghost", "Buy milk", "", false)

	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.Nil(t, task)
	mockTasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTaskService_OwnershipGate(t *testing.T) {
	// task 7 belongs to alice
	task7 := func() *model.Task {
		return &model.Task{ID: 7, Title: "Buy milk", OwnerID: alice.ID}
	}

	tests := []struct {
		name          string
		caller        *model.User
		expectedError error
	}{
		{"owner passes", alice, nil},
		{"other user forbidden", bob, apperrors.ErrForbidden},
		{"admin bypasses ownership", root, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/get", func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			mockTasks := new(MockTaskRepository)
			expectUser(mockUsers, tt.caller)
			mockTasks.On("FindByID", mock.Anything, uint(7)).Return(task7(), nil)

			svc := NewTaskService(mockTasks, mockUsers, nil)
			got, err := svc.GetByID(context.Background(), tt.caller.Username, 7)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, uint(7), got.ID)
			}
		})

		t.Run(tt.name+"/update", func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			mockTasks := new(MockTaskRepository)
			expectUser(mockUsers, tt.caller)
			mockTasks.On("FindByID", mock.Anything, uint(7)).Return(task7(), nil)
			if tt.expectedError == nil {
				mockTasks.On("Save", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)
			}

			svc := NewTaskService(mockTasks, mockUsers, nil)
			got, err := svc.Update(context.Background(), tt.caller.Username, 7, "New title", "new desc", true)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, got)
				mockTasks.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "New title", got.Title)
				assert.Equal(t, "new desc", got.Description)
				assert.True(t, got.Completed)
				assert.Equal(t, alice.ID, got.OwnerID) // owner never reassigned
			}
		})

		t.Run(tt.name+"/patch", func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			mockTasks := new(MockTaskRepository)
			expectUser(mockUsers, tt.caller)
			mockTasks.On("FindByID", mock.Anything, uint(7)).Return(task7(), nil)
			if tt.expectedError == nil {
				mockTasks.On("Save", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)
			}

			svc := NewTaskService(mockTasks, mockUsers, nil)
			got, err := svc.PatchCompletion(context.Background(), tt.caller.Username, 7, true)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.True(t, got.Completed)
				assert.Equal(t, "Buy milk", got.Title) // only completed changes
			}
		})

		t.Run(tt.name+"/delete", func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			mockTasks := new(MockTaskRepository)
			expectUser(mockUsers, tt.caller)
			mockTasks.On("FindByID", mock.Anything, uint(7)).Return(task7(), nil)
			if tt.expectedError == nil {
				mockTasks.On("Delete", mock.Anything, uint(7)).Return(nil)
			}

			svc := NewTaskService(mockTasks, mockUsers, nil)
			err := svc.Delete(context.Background(), tt.caller.Username, 7)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				mockTasks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				mockTasks.AssertExpectations(t)
			}
		})
	}
}

func TestTaskService_NotFoundBeforeOwnership(t *testing.T) {
	// a missing task reports not-found even to a non-owner caller
	mockUsers := new(MockUserRepository)
	mockTasks := new(MockTaskRepository)
	expectUser(mockUsers, bob)
	mockTasks.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewTaskService(mockTasks, mockUsers, nil)
	_, err := svc.GetByID(context.Background(), "bob", 99)

	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	assert.NotErrorIs(t, err, apperrors.ErrForbidden)
}

func TestTaskService_Lists(t *testing.T) {
	all := []model.Task{
		{ID: 1, Title: "Buy milk", OwnerID: alice.ID, Completed: false},
		{ID: 2, Title: "Walk dog", OwnerID: alice.ID, Completed: true},
		{ID: 3, Title: "Read book", OwnerID: alice.ID, Completed: false},
	}
	pending := []model.Task{all[0], all[2]}

	mockUsers := new(MockUserRepository)
	mockTasks := new(MockTaskRepository)
	expectUser(mockUsers, alice)
	mockTasks.On("FindByOwner", mock.Anything, alice.ID).Return(all, nil)
	mockTasks.On("FindPendingByOwner", mock.Anything, alice.ID).Return(pending, nil)

	svc := NewTaskService(mockTasks, mockUsers, nil)

	gotAll, err := svc.ListAll(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Equal(t, all, gotAll)

	gotPending, err := svc.ListPending(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Equal(t, pending, gotPending)

	for _, task := range gotPending {
		assert.False(t, task.Completed)
		assert.Contains(t, gotAll, task)
	}
}
