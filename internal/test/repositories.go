package test

import (
	"context"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string, telegramChatID int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if telegramChatID != 0 {
		if _, err := s.GetByTelegramChatID(ctx, telegramChatID); err == nil {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash, TelegramChatID: telegramChatID}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByTelegramChatID finds the user linked to chatID.
func (s *UserRepositoryStub) GetByTelegramChatID(ctx context.Context, chatID int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, user := range s.ByID {
		if chatID != 0 && user.TelegramChatID == chatID {
			return user, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// SetTelegramChatID links chatID to the user unless another user holds it.
func (s *UserRepositoryStub) SetTelegramChatID(ctx context.Context, userID, chatID int64) error {
	if s.Err != nil {
		return s.Err
	}
	user, ok := s.ByID[userID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if owner, err := s.GetByTelegramChatID(ctx, chatID); err == nil && owner.ID != userID {
		return domainErrors.ErrAlreadyExists
	}
	user.TelegramChatID = chatID
	return nil
}

var _ repository.UserRepository = (*UserRepositoryStub)(nil)
