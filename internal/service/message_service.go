package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

// DefaultMaxLength 推文最大字符数（按 rune 计）
const DefaultMaxLength = 280

// MessageService 推文；只有作者能删
type MessageService interface {
	Create(ctx context.Context, authorID int64, text string) (*model.Message, error)
	GetByID(ctx context.Context, messageID int64) (*model.Message, error)
	Delete(ctx context.Context, requesterID, messageID int64) error
	ListByAuthor(ctx context.Context, authorID int64, limit int) ([]*model.Message, error)
}

type messageService struct {
	store       *repository.Store
	invalidator FeedInvalidator
	maxLength   int
	now         func() time.Time
}

func NewMessageService(store *repository.Store, invalidator FeedInvalidator, maxLength int) MessageService {
	if invalidator == nil {
		invalidator = nopInvalidator{}
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &messageService{
		store:       store,
		invalidator: invalidator,
		maxLength:   maxLength,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *messageService) validate(text string) error {
	if n := utf8.RuneCountInString(text); n > s.maxLength {
		return validation(fmt.Sprintf("content is %d characters, max %d", n, s.maxLength))
	}
	if strings.TrimSpace(text) == "" {
		return validation("content must not be empty")
	}
	return nil
}

func (s *messageService) Create(ctx context.Context, authorID int64, text string) (*model.Message, error) {
	if err := s.validate(text); err != nil {
		return nil, err
	}
	m := &model.Message{AuthorID: authorID, Content: text, CreatedAt: s.now()}
	err := s.store.InTx(ctx, func(r *repository.Repositories) error {
		if err := r.Messages.Create(ctx, m); err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateAudience(ctx, s.store, s.invalidator, authorID)
	return m, nil
}

func (s *messageService) GetByID(ctx context.Context, messageID int64) (*model.Message, error) {
	var m *model.Message
	err := s.store.InTx(ctx, func(r *repository.Repositories) error {
		var err error
		m, err = getMessage(ctx, r, messageID)
		return err
	})
	return m, err
}

// Delete 非作者与被锁定同样报 Conflict，不区分"不是你的"
func (s *messageService) Delete(ctx context.Context, requesterID, messageID int64) error {
	var authorID int64
	err := s.store.InTx(ctx, func(r *repository.Repositories) error {
		m, err := getMessage(ctx, r, messageID)
		if err != nil {
			return err
		}
		if m.AuthorID != requesterID {
			return conflict("message", messageID, "locked")
		}
		authorID = m.AuthorID
		if err := r.Messages.Delete(ctx, messageID); err != nil {
			return fmt.Errorf("delete message: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	invalidateAudience(ctx, s.store, s.invalidator, authorID)
	return nil
}

func (s *messageService) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]*model.Message, error) {
	var out []*model.Message
	err := s.store.InTx(ctx, func(r *repository.Repositories) error {
		if err := mustExistUser(ctx, r, authorID); err != nil {
			return err
		}
		var err error
		out, err = r.Messages.ListByAuthors(ctx, []int64{authorID}, limit, 0)
		return err
	})
	return out, err
}
