package services

import (
	"context"
	"errors"
	"strings"

	"geniustrading/logger"
	"geniustrading/metrics"
	"geniustrading/models"
	"geniustrading/storage"
	"geniustrading/utils"

	"github.com/rs/zerolog"
)

type KycInput struct {
	DocumentType   string
	DocumentNumber string
	FullName       string
	DateOfBirth    string
	Nationality    string
	Address        string
	PhoneNumber    string
	DocumentKey    string
}

type Kyc struct {
	store storage.Storage
	log   zerolog.Logger
}

func NewKyc(store storage.Storage) *Kyc {
	return &Kyc{store: store, log: logger.For("kyc")}
}

func (in KycInput) validate() error {
	required := []struct{ name, value string }{
		{"documentType", in.DocumentType},
		{"documentNumber", in.DocumentNumber},
		{"fullName", in.FullName},
		{"dateOfBirth", in.DateOfBirth},
		{"nationality", in.Nationality},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return utils.NewError(utils.ErrValidation, f.name+" is required")
		}
	}
	if len(strings.TrimSpace(in.Address)) < 10 {
		return utils.NewError(utils.ErrValidation, "address must be at least 10 characters")
	}
	if len(strings.TrimSpace(in.PhoneNumber)) < 10 {
		return utils.NewError(utils.ErrValidation, "phoneNumber must be at least 10 characters")
	}
	return nil
}

// Submit stores a pending KYC record. A user may resubmit only when they have
// no record yet or their latest one was rejected.
func (k *Kyc) Submit(ctx context.Context, userID uint, in KycInput) (*models.Kyc, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	rec := &models.Kyc{
		UserID:         userID,
		DocumentType:   strings.TrimSpace(in.DocumentType),
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),
		FullName:       strings.TrimSpace(in.FullName),
		DateOfBirth:    strings.TrimSpace(in.DateOfBirth),
		Nationality:    strings.TrimSpace(in.Nationality),
		Address:        strings.TrimSpace(in.Address),
		PhoneNumber:    strings.TrimSpace(in.PhoneNumber),
		DocumentKey:    utils.StringPtr(strings.TrimSpace(in.DocumentKey)),
		Status:         models.KycPending,
	}

	err := k.store.WithTx(ctx, func(s storage.Storage) error {
		latest, err := s.GetLatestKycByUser(ctx, userID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return err
		case latest.Status != models.KycRejected:
			return utils.NewError(utils.ErrConflict, "KYC already submitted")
		}
		return s.CreateKyc(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	k.log.Info().Uint("user_id", userID).Uint("kyc_id", rec.ID).Msg("kyc submitted")
	return rec, nil
}

// Latest returns the user's most recent submission, or nil when none exists.
func (k *Kyc) Latest(ctx context.Context, userID uint) (*models.Kyc, error) {
	rec, err := k.store.GetLatestKycByUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

func (k *Kyc) List(ctx context.Context, status string) ([]models.Kyc, error) {
	if status != "" && !models.ValidKycStatus(status) {
		return nil, utils.NewError(utils.ErrValidation, "invalid status filter")
	}
	return k.store.ListKyc(ctx, status)
}

// Review sets the record status and mirrors it onto the owner's kycStatus in
// the same database transaction.
func (k *Kyc) Review(ctx context.Context, id uint, status, rejectionReason string) (*models.Kyc, error) {
	if !models.ValidKycStatus(status) {
		return nil, utils.NewError(utils.ErrValidation, "status must be one of: pending, approved, rejected")
	}
	var updated *models.Kyc
	err := k.store.WithTx(ctx, func(s storage.Storage) error {
		rec, err := s.UpdateKycStatus(ctx, id, status, strings.TrimSpace(rejectionReason))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return utils.NewError(utils.ErrNotFound, "KYC record not found")
			}
			return err
		}
		if _, err := s.UpdateUserKycStatus(ctx, rec.UserID, status); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return utils.NewError(utils.ErrNotFound, "User not found")
			}
			return err
		}
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordKycDecision(status)
	k.log.Info().Uint("kyc_id", id).Uint("user_id", updated.UserID).Str("status", status).Msg("kyc reviewed")
	return updated, nil
}
