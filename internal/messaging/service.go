package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bargen/bargen-backend/pkg/auth"
	"github.com/bargen/bargen-backend/pkg/db/models"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MaxContentLength = 2000

type MessageDTO struct {
	ID        uuid.UUID       `json:"id"`
	From      types.Principal `json:"from"`
	To        types.Principal `json:"to"`
	Content   string          `json:"content"`
	ProductID uuid.UUID       `json:"productId"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ThreadDTO summarizes one conversation about a product with one counterpart.
type ThreadDTO struct {
	ProductID    uuid.UUID       `json:"productId"`
	Counterpart  types.Principal `json:"counterpart"`
	LastMessage  MessageDTO      `json:"lastMessage"`
	MessageCount int             `json:"messageCount"`
}

type SendInput struct {
	To        types.Principal
	Content   string
	ProductID uuid.UUID
}

type messageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListForProduct(ctx context.Context, productID uuid.UUID, principal types.Principal) ([]models.Message, error)
	ListForParticipant(ctx context.Context, principal types.Principal) ([]models.Message, error)
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type Service interface {
	SendMessage(ctx context.Context, caller auth.Caller, input SendInput) (*MessageDTO, error)
	GetChatMessages(ctx context.Context, caller auth.Caller, productID uuid.UUID) ([]MessageDTO, error)
	ListThreads(ctx context.Context, caller auth.Caller) ([]ThreadDTO, error)
}

type service struct {
	repo     messageRepository
	products productLoader
}

func NewService(repo messageRepository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("message repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) SendMessage(ctx context.Context, caller auth.Caller, input SendInput) (*MessageDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to send messages")
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content is required")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "message must be at most %d characters", MaxContentLength)
	}
	to := types.ParsePrincipal(input.To.String())
	if to.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}
	if to == caller.Principal {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot message yourself")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	msg := &models.Message{
		ProductID: input.ProductID,
		Sender:    caller.Principal,
		Recipient: to,
		Content:   content,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send message")
	}
	dto := fromModel(*msg)
	return &dto, nil
}

// GetChatMessages tolerates deleted products: history stays readable.
func (s *service) GetChatMessages(ctx context.Context, caller auth.Caller, productID uuid.UUID) ([]MessageDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to read messages")
	}
	rows, err := s.repo.ListForProduct(ctx, productID, caller.Principal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	out := make([]MessageDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

// ListThreads groups the caller's messages by product and counterpart, most
// recently active thread first.
func (s *service) ListThreads(ctx context.Context, caller auth.Caller) ([]ThreadDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to read messages")
	}
	rows, err := s.repo.ListForParticipant(ctx, caller.Principal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list threads")
	}

	type threadKey struct {
		product     uuid.UUID
		counterpart types.Principal
	}
	index := map[threadKey]int{}
	threads := make([]ThreadDTO, 0)
	for _, row := range rows {
		counterpart := row.Recipient
		if counterpart == caller.Principal {
			counterpart = row.Sender
		}
		key := threadKey{product: row.ProductID, counterpart: counterpart}
		if i, ok := index[key]; ok {
			threads[i].MessageCount++
			continue
		}
		index[key] = len(threads)
		threads = append(threads, ThreadDTO{
			ProductID:    row.ProductID,
			Counterpart:  counterpart,
			LastMessage:  fromModel(row),
			MessageCount: 1,
		})
	}
	return threads, nil
}

func fromModel(m models.Message) MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		From:      m.Sender,
		To:        m.Recipient,
		Content:   m.Content,
		ProductID: m.ProductID,
		CreatedAt: m.CreatedAt,
	}
}
