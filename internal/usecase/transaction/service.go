package transaction

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/asset-escrow/internal/domain/entity"
	"github.com/ignatzorin/asset-escrow/internal/domain/repository"
	"github.com/ignatzorin/asset-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/asset-escrow/internal/logger"
	"github.com/ignatzorin/asset-escrow/internal/pkg/apperror"
)

// EventTransactionMessage - событие WebSocket о новом сообщении в сделке.
const EventTransactionMessage = "transaction.message"

// Notifier доставляет события участникам сделки.
type Notifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// CredentialSealer шифрует данные доступа перед сохранением.
type CredentialSealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// MetricsRecorder учитывает результаты операций.
type MetricsRecorder interface {
	RecordOperation(operation, outcome string)
}

// Service управляет жизненным циклом escrow-сделки.
type Service struct {
	repo     repository.TransactionRepository
	listings repository.ListingProvider
	sealer   CredentialSealer
	notifier Notifier
	metrics  MetricsRecorder
	now      func() time.Time
}

func NewService(repo repository.TransactionRepository, listings repository.ListingProvider, sealer CredentialSealer) *Service {
	return &Service{
		repo:     repo,
		listings: listings,
		sealer:   sealer,
		now:      time.Now,
	}
}

// SetNotifier устанавливает канал уведомлений участников.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) SetMetrics(m MetricsRecorder) {
	s.metrics = m
}

// SetClock подменяет источник времени (для тестов).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create открывает сделку по лоту от имени покупателя.
func (s *Service) Create(ctx context.Context, input CreateInput) (t *entity.Transaction, err error) {
	defer s.observe("create", &err)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	listing, err := s.listings.GetListing(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t, err = entity.NewTransaction(input.BuyerID, listing, now)
	if err != nil {
		return nil, err
	}

	msg := entity.NewSystemMessage(t.ID, input.BuyerID, entity.MessageTransactionInitiated, now)
	if err := s.repo.Create(ctx, t, msg); err != nil {
		return nil, err
	}

	s.logTransition(t, input.BuyerID, "", t.Status)
	s.notify(t, msg)
	return t, nil
}

// SendCredentials фиксирует передачу данных доступа продавцом. Повторная отправка разрешена.
func (s *Service) SendCredentials(ctx context.Context, input SendCredentialsInput) (t *entity.Transaction, err error) {
	defer s.observe("send_credentials", &err)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	t, err = s.repo.FindByID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}

	previous := t.Status
	now := s.now()
	if err := t.SendCredentials(input.ActorID, now); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Note)
	if content == "" {
		content = entity.MessageCredentialsSent
	}
	msg, err := entity.NewMessage(t.ID, input.ActorID, content, input.Attachments, now)
	if err != nil {
		return nil, err
	}

	if input.Credentials != "" {
		if s.sealer == nil {
			return nil, apperror.New(apperror.ErrCodeInternal, "шифрование данных доступа не настроено")
		}
		sealed, err := s.sealer.Seal([]byte(input.Credentials))
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось зашифровать данные доступа")
		}
		msg.SealedCredentials = sealed
	}

	return s.commit(ctx, t, previous, input.ActorID, msg)
}

// Verify подтверждает получение актива покупателем и завершает сделку.
func (s *Service) Verify(ctx context.Context, input VerifyInput) (t *entity.Transaction, err error) {
	defer s.observe("verify", &err)

	t, err = s.repo.FindByID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}

	previous := t.Status
	now := s.now()
	if err := t.Verify(input.ActorID, now); err != nil {
		return nil, err
	}

	msg := entity.NewSystemMessage(t.ID, input.ActorID, entity.MessageAssetVerified, now)
	return s.commit(ctx, t, previous, input.ActorID, msg)
}

// Dispute открывает спор от имени покупателя или продавца.
func (s *Service) Dispute(ctx context.Context, input DisputeInput) (t *entity.Transaction, err error) {
	defer s.observe("dispute", &err)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	t, err = s.repo.FindByID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}

	previous := t.Status
	now := s.now()
	role, err := t.Dispute(input.ActorID, input.Reason, now)
	if err != nil {
		return nil, err
	}

	msg := entity.NewSystemMessage(t.ID, input.ActorID, entity.DisputeOpenedMessage(role, *t.DisputeReason), now)
	return s.commit(ctx, t, previous, input.ActorID, msg)
}

// Cancel отменяет сделку до передачи данных доступа. Доступно только продавцу.
func (s *Service) Cancel(ctx context.Context, input CancelInput) (t *entity.Transaction, err error) {
	defer s.observe("cancel", &err)

	t, err = s.repo.FindByID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}

	previous := t.Status
	now := s.now()
	if err := t.Cancel(input.ActorID, now); err != nil {
		return nil, err
	}

	msg := entity.NewSystemMessage(t.ID, input.ActorID, entity.MessageTransactionCancelled, now)
	return s.commit(ctx, t, previous, input.ActorID, msg)
}

// Get возвращает сделку участнику.
func (s *Service) Get(ctx context.Context, id, actorID uuid.UUID) (*entity.Transaction, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsParticipant(actorID) {
		return nil, apperror.ErrNotParticipant
	}
	return t, nil
}

// ListMine возвращает сделки пользователя, новые первыми.
func (s *Service) ListMine(ctx context.Context, actorID uuid.UUID, role valueobject.PartyRole) ([]*entity.Transaction, error) {
	return s.repo.ListByUser(ctx, actorID, role)
}

// ListMessages возвращает ленту сообщений сделки в порядке создания.
func (s *Service) ListMessages(ctx context.Context, id, actorID uuid.UUID) ([]*entity.Message, error) {
	if _, err := s.Get(ctx, id, actorID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, id)
}

// RevealCredentials расшифровывает последние переданные продавцом данные доступа.
func (s *Service) RevealCredentials(ctx context.Context, id, actorID uuid.UUID) (string, error) {
	messages, err := s.ListMessages(ctx, id, actorID)
	if err != nil {
		return "", err
	}

	for i := len(messages) - 1; i >= 0; i-- {
		if !messages[i].HasCredentials() {
			continue
		}
		if s.sealer == nil {
			return "", apperror.New(apperror.ErrCodeInternal, "шифрование данных доступа не настроено")
		}
		plaintext, err := s.sealer.Open(messages[i].SealedCredentials)
		if err != nil {
			return "", apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось расшифровать данные доступа")
		}
		return string(plaintext), nil
	}
	return "", apperror.ErrCredentialsNotSent
}

// QuoteFees рассчитывает комиссии для цены до покупки.
func (s *Service) QuoteFees(amount float64) (valueobject.FeeBreakdown, error) {
	value, err := valueobject.AmountFromFloat(amount)
	if err != nil {
		return valueobject.FeeBreakdown{}, err
	}
	return valueobject.ComputeFees(value)
}

// commit сохраняет переход с условием на прежний статус и сообщение одной операцией.
func (s *Service) commit(ctx context.Context, t *entity.Transaction, previous valueobject.TransactionStatus, actorID uuid.UUID, msg *entity.Message) (*entity.Transaction, error) {
	updated, err := s.repo.Update(ctx, repository.TransactionUpdate{
		ID:             t.ID,
		ExpectedStatus: previous,
		Status:         t.Status,
		DisputeReason:  t.DisputeReason,
		Message:        msg,
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(updated, actorID, previous, updated.Status)
	s.notify(updated, msg)
	return updated, nil
}

// notify вызывается синхронно после фиксации перехода, чтобы участники
// получали события в порядке переходов. Hub только ставит событие в очередь.
func (s *Service) notify(t *entity.Transaction, msg *entity.Message) {
	if s.notifier == nil {
		return
	}

	event := newMessageEvent(t, msg)
	for _, userID := range []uuid.UUID{t.BuyerID, t.SellerID} {
		if err := s.notifier.BroadcastToUser(userID, EventTransactionMessage, event); err != nil {
			logger.Log.WithFields(logrus.Fields{
				"transaction_id": t.ID,
				"user_id":        userID,
				"error":          err.Error(),
			}).Warn("escrow: не удалось отправить уведомление")
		}
	}
}

func (s *Service) logTransition(t *entity.Transaction, actorID uuid.UUID, from, to valueobject.TransactionStatus) {
	logger.Log.WithFields(logrus.Fields{
		"transaction_id": t.ID,
		"actor_id":       actorID,
		"from":           string(from),
		"to":             string(to),
	}).Info("escrow: статус сделки изменён")
}

func (s *Service) observe(operation string, errp *error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if *errp != nil {
		outcome = string(apperror.CodeOf(*errp))
	}
	s.metrics.RecordOperation(operation, outcome)
}
