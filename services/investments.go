package services

import (
	"context"
	"fmt"
	"strings"

	"geniustrading/logger"
	"geniustrading/metrics"
	"geniustrading/models"
	"geniustrading/storage"
	"geniustrading/utils"

	"github.com/rs/zerolog"
)

type InvestmentInput struct {
	PlanType    string
	Amount      int64
	DailyReturn int64
	Duration    int
}

type Investments struct {
	store  storage.Storage
	strict bool
	log    zerolog.Logger
}

func NewInvestments(store storage.Storage, strict bool) *Investments {
	return &Investments{store: store, strict: strict, log: logger.For("investments")}
}

// Create records an active investment for user.
//
// Without strict mode the client-supplied plan, return and duration are
// stored as given: no plan bounds, KYC or balance check, and the balance is
// not debited. Strict mode validates against the catalogue, requires
// approved KYC for non-admins and debits the amount atomically.
func (s *Investments) Create(ctx context.Context, user *models.User, in InvestmentInput) (*models.Investment, error) {
	in.PlanType = strings.ToLower(strings.TrimSpace(in.PlanType))
	if in.PlanType == "" {
		return nil, utils.NewError(utils.ErrValidation, "planType is required")
	}
	if in.Amount <= 0 {
		return nil, utils.NewError(utils.ErrValidation, "amount must be greater than 0")
	}
	if in.DailyReturn < 0 || in.Duration < 0 {
		return nil, utils.NewError(utils.ErrValidation, "dailyReturn and duration cannot be negative")
	}

	inv := &models.Investment{
		UserID:      user.ID,
		PlanType:    in.PlanType,
		Amount:      in.Amount,
		DailyReturn: in.DailyReturn,
		Duration:    in.Duration,
		Status:      models.InvestmentActive,
	}

	if !s.strict {
		if err := s.store.CreateInvestment(ctx, inv); err != nil {
			return nil, err
		}
		s.created(inv)
		return inv, nil
	}

	plan, ok := FindPlan(in.PlanType)
	if !ok {
		return nil, utils.NewError(utils.ErrValidation, "Unknown investment plan")
	}
	if !plan.InRange(in.Amount) {
		return nil, utils.NewError(utils.ErrValidation,
			fmt.Sprintf("Amount must be between %d and %d for the %s plan", plan.MinAmount, plan.MaxAmount, plan.Type))
	}
	if !user.IsAdmin() && user.KycStatus != models.KycApproved {
		return nil, utils.NewError(utils.ErrForbidden, "KYC verification must be approved before investing")
	}
	inv.DailyReturn = plan.DailyReturn(in.Amount)
	inv.Duration = plan.Duration

	err := s.store.WithTx(ctx, func(tx storage.Storage) error {
		if err := applyEffect(ctx, tx, user.ID, BalanceEffect{Debit: in.Amount}); err != nil {
			return err
		}
		return tx.CreateInvestment(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordBalanceMovement("debit", in.Amount)
	s.created(inv)
	return inv, nil
}

func (s *Investments) created(inv *models.Investment) {
	metrics.RecordInvestment(inv.PlanType)
	s.log.Info().Uint("user_id", inv.UserID).Uint("investment_id", inv.ID).Str("plan", inv.PlanType).Int64("amount", inv.Amount).Msg("investment created")
}

func (s *Investments) ListForUser(ctx context.Context, userID uint) ([]models.Investment, error) {
	return s.store.ListInvestmentsByUser(ctx, userID)
}

func (s *Investments) ListAll(ctx context.Context) ([]models.Investment, error) {
	return s.store.ListInvestments(ctx)
}
