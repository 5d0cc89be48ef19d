package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type walletRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewWalletRepository creates a new PostgreSQL-backed wallet repository.
func NewWalletRepository(pool *pgxpool.Pool, logger zerolog.Logger) WalletRepository {
	return &walletRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "wallet").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *walletRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Credit upserts the wallet, adds amount and appends a transaction.
func (r *walletRepository) Credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal, entry model.WalletEntry) (*model.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, nil
	}

	now := time.Now()
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `
		INSERT INTO wallets (user_id, balance, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = wallets.balance + EXCLUDED.balance, updated_at = EXCLUDED.updated_at
		RETURNING balance
	`, userID, amount, now).Scan(&balance)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to credit wallet")
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	txn, err := r.appendTransaction(ctx, tx, userID, model.TransactionCredit, amount, balance, entry, now)
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("user_id", userID.String()).
		Str("amount", amount.String()).
		Str("balance", balance.String()).
		Str("source", entry.Source).
		Msg("wallet credited")

	return txn, nil
}

// Debit subtracts amount and appends a transaction.
func (r *walletRepository) Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal, entry model.WalletEntry) (*model.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, model.ErrInvalidAmount
	}

	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		if isNoRows(err) {
			r.logger.Warn().Str("user_id", userID.String()).Msg("debit against missing wallet")
			return nil, model.ErrInsufficientBalance
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to lock wallet")
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}

	if balance.LessThan(amount) {
		r.logger.Warn().
			Str("user_id", userID.String()).
			Str("balance", balance.String()).
			Str("amount", amount.String()).
			Msg("insufficient wallet balance")
		return nil, model.ErrInsufficientBalance
	}

	now := time.Now()
	balance = balance.Sub(amount)
	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = $2, updated_at = $3 WHERE user_id = $1`, userID, balance, now); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to debit wallet")
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}

	txn, err := r.appendTransaction(ctx, tx, userID, model.TransactionDebit, amount, balance, entry, now)
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("user_id", userID.String()).
		Str("amount", amount.String()).
		Str("balance", balance.String()).
		Str("source", entry.Source).
		Msg("wallet debited")

	return txn, nil
}

func (r *walletRepository) appendTransaction(ctx context.Context, tx pgx.Tx, userID uuid.UUID, typ model.TransactionType,
	amount, balanceAfter decimal.Decimal, entry model.WalletEntry, at time.Time) (*model.WalletTransaction, error) {
	txn := &model.WalletTransaction{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         typ,
		Amount:       amount,
		Source:       entry.Source,
		OrderID:      entry.OrderID,
		Description:  entry.Description,
		BalanceAfter: balanceAfter,
		CreatedAt:    at,
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO wallet_transactions (id, user_id, type, amount, source, order_id, description, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, txn.ID, txn.UserID, txn.Type, txn.Amount, txn.Source, txn.OrderID, txn.Description, txn.BalanceAfter, txn.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to record wallet transaction")
		return nil, fmt.Errorf("failed to record wallet transaction: %w", err)
	}

	return txn, nil
}

// GetBalance returns the stored balance, zero when the wallet does not exist.
func (r *walletRepository) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.pool.QueryRow(ctx, `SELECT balance FROM wallets WHERE user_id = $1`, userID).Scan(&balance)
	if err != nil {
		if isNoRows(err) {
			return decimal.Zero, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query wallet")
		return decimal.Zero, fmt.Errorf("failed to query wallet: %w", err)
	}
	return balance, nil
}

// ListTransactions returns one page of transactions newest first and the total count.
func (r *walletRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.WalletTransaction, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM wallet_transactions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to count wallet transactions")
		return nil, 0, fmt.Errorf("failed to count wallet transactions: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, type, amount, source, order_id, description, balance_after, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query wallet transactions")
		return nil, 0, fmt.Errorf("failed to query wallet transactions: %w", err)
	}
	defer rows.Close()

	txns := []model.WalletTransaction{}
	for rows.Next() {
		var t model.WalletTransaction
		err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Source, &t.OrderID, &t.Description, &t.BalanceAfter, &t.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan wallet transaction row")
			return nil, 0, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		txns = append(txns, t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating wallet transaction rows")
		return nil, 0, fmt.Errorf("error iterating wallet transactions: %w", err)
	}

	return txns, total, nil
}

// HasOrderDebit reports whether a payment debit exists for the order.
func (r *walletRepository) HasOrderDebit(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM wallet_transactions
			WHERE order_id = $1 AND type = $2 AND source = $3
		)
	`, orderID, model.TransactionDebit, model.SourceOrderPayment).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to check order debit")
		return false, fmt.Errorf("failed to check order debit: %w", err)
	}
	return exists, nil
}
