package transaction

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/asset-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/asset-escrow/internal/validation"
)

// CreateInput - входные данные для открытия сделки.
type CreateInput struct {
	BuyerID   uuid.UUID
	ListingID uuid.UUID
}

func (in CreateInput) Validate() error {
	if in.BuyerID == uuid.Nil {
		return apperror.ErrUnauthorized
	}
	if in.ListingID == uuid.Nil {
		return apperror.New(apperror.ErrCodeValidation, "не указан лот")
	}
	return nil
}

// SendCredentialsInput - данные доступа, которые продавец передаёт покупателю.
type SendCredentialsInput struct {
	TransactionID uuid.UUID
	ActorID       uuid.UUID
	Credentials   string
	Note          string
	Attachments   []string
}

func (in SendCredentialsInput) Validate() error {
	if strings.TrimSpace(in.Credentials) == "" && strings.TrimSpace(in.Note) == "" && len(in.Attachments) == 0 {
		return apperror.New(apperror.ErrCodeValidation, "нужно передать данные доступа, комментарий или вложения")
	}
	if err := validation.ValidateCredentials(in.Credentials); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if note := strings.TrimSpace(in.Note); note != "" {
		if err := validation.ValidateMessageContent(note); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if err := validation.ValidateAttachments(in.Attachments); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return nil
}

type VerifyInput struct {
	TransactionID uuid.UUID
	ActorID       uuid.UUID
}

// DisputeInput - открытие спора. Непустота причины проверяется в доменной сущности.
type DisputeInput struct {
	TransactionID uuid.UUID
	ActorID       uuid.UUID
	Reason        string
}

func (in DisputeInput) Validate() error {
	if err := validation.ValidateDisputeReason(in.Reason); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return nil
}

type CancelInput struct {
	TransactionID uuid.UUID
	ActorID       uuid.UUID
}
