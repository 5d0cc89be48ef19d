package service

import (
	"context"
	"fmt"

	"github.com/rabi-77/ecommerce-sub000/internal/model"
	"github.com/rabi-77/ecommerce-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultWalletPageSize = 10
	maxWalletPageSize     = 100
)

// walletService implements WalletService.
type walletService struct {
	walletRepo repository.WalletRepository
	logger     zerolog.Logger
}

// NewWalletService creates a new wallet service.
func NewWalletService(walletRepo repository.WalletRepository, logger zerolog.Logger) WalletService {
	return &walletService{
		walletRepo: walletRepo,
		logger:     logger.With().Str("service", "wallet").Logger(),
	}
}

// Credit adds amount to the user's wallet in its own transaction.
func (s *walletService) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, entry model.WalletEntry) (txn *model.WalletTransaction, err error) {
	if !amount.IsPositive() {
		s.logger.Debug().Str("user_id", userID.String()).Str("amount", amount.String()).Msg("skipping non-positive credit")
		return nil, nil
	}

	tx, err := s.walletRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	txn, err = s.walletRepo.Credit(ctx, tx, userID, amount, entry)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to credit wallet")
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit wallet credit: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("amount", amount.String()).
		Str("source", entry.Source).
		Str("balance", txn.BalanceAfter.String()).
		Msg("wallet credited")

	return txn, nil
}

// Debit takes amount from the user's wallet in its own transaction.
func (s *walletService) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, entry model.WalletEntry) (txn *model.WalletTransaction, err error) {
	if !amount.IsPositive() {
		return nil, model.ErrInvalidAmount
	}

	tx, err := s.walletRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	txn, err = s.walletRepo.Debit(ctx, tx, userID, amount, entry)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Str("amount", amount.String()).Msg("wallet debit rejected")
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit wallet debit: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("amount", amount.String()).
		Str("source", entry.Source).
		Str("balance", txn.BalanceAfter.String()).
		Msg("wallet debited")

	return txn, nil
}

// GetWallet returns the balance and one page of transactions, newest first.
func (s *walletService) GetWallet(ctx context.Context, userID uuid.UUID, page, limit int) (*model.WalletPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultWalletPageSize
	}
	if limit > maxWalletPageSize {
		limit = maxWalletPageSize
	}

	balance, err := s.walletRepo.GetBalance(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get wallet balance")
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	txns, total, err := s.walletRepo.ListTransactions(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list wallet transactions")
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if txns == nil {
		txns = []model.WalletTransaction{}
	}

	s.logger.Debug().
		Str("user_id", userID.String()).
		Int("page", page).
		Int("total", total).
		Msg("wallet retrieved")

	return &model.WalletPage{
		Balance:      balance,
		Transactions: txns,
		Page:         page,
		Limit:        limit,
		Total:        total,
		TotalPages:   (total + limit - 1) / limit,
	}, nil
}
