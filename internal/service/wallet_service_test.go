package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletService_Credit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	entry := model.WalletEntry{Source: model.SourceAdjustment, Description: "goodwill"}

	t.Run("commits a positive credit", func(t *testing.T) {
		repo := new(MockWalletRepository)
		tx := new(MockTx)
		svc := NewWalletService(repo, zerolog.Nop())

		repo.On("BeginTx", ctx).Return(tx, nil)
		repo.On("Credit", ctx, tx, userID, dec("25.50"), entry).
			Return(&model.WalletTransaction{Type: model.TransactionCredit, Amount: dec("25.50"), BalanceAfter: dec("125.50")}, nil)
		tx.On("Commit", ctx).Return(nil)

		txn, err := svc.Credit(ctx, userID, dec("25.50"), entry)

		require.NoError(t, err)
		assert.True(t, dec("125.50").Equal(txn.BalanceAfter))
		assert.True(t, tx.committed)
		repo.AssertExpectations(t)
	})

	t.Run("non-positive amount is a no-op", func(t *testing.T) {
		repo := new(MockWalletRepository)
		svc := NewWalletService(repo, zerolog.Nop())

		for _, amount := range []decimal.Decimal{decimal.Zero, dec("-1")} {
			txn, err := svc.Credit(ctx, userID, amount, entry)
			assert.NoError(t, err)
			assert.Nil(t, txn)
		}
		repo.AssertNotCalled(t, "BeginTx", ctx)
	})

	t.Run("repository failure rolls back", func(t *testing.T) {
		repo := new(MockWalletRepository)
		tx := new(MockTx)
		svc := NewWalletService(repo, zerolog.Nop())

		repo.On("BeginTx", ctx).Return(tx, nil)
		repo.On("Credit", ctx, tx, userID, dec("10"), entry).Return(nil, errors.New("database error"))
		tx.On("Rollback", ctx).Return(nil)

		_, err := svc.Credit(ctx, userID, dec("10"), entry)

		assert.Error(t, err)
		assert.True(t, tx.rolledBack)
		assert.False(t, tx.committed)
	})
}

func TestWalletService_Debit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	entry := model.WalletEntry{Source: model.SourceOrderPayment}

	t.Run("invalid amount", func(t *testing.T) {
		repo := new(MockWalletRepository)
		svc := NewWalletService(repo, zerolog.Nop())

		_, err := svc.Debit(ctx, userID, decimal.Zero, entry)

		assert.ErrorIs(t, err, model.ErrInvalidAmount)
		repo.AssertNotCalled(t, "BeginTx", ctx)
	})

	t.Run("insufficient balance leaves nothing committed", func(t *testing.T) {
		repo := new(MockWalletRepository)
		tx := new(MockTx)
		svc := NewWalletService(repo, zerolog.Nop())

		repo.On("BeginTx", ctx).Return(tx, nil)
		repo.On("Debit", ctx, tx, userID, dec("99"), entry).Return(nil, model.ErrInsufficientBalance)
		tx.On("Rollback", ctx).Return(nil)

		txn, err := svc.Debit(ctx, userID, dec("99"), entry)

		assert.ErrorIs(t, err, model.ErrInsufficientBalance)
		assert.Nil(t, txn)
		assert.True(t, tx.rolledBack)
		assert.False(t, tx.committed)
	})

	t.Run("success", func(t *testing.T) {
		repo := new(MockWalletRepository)
		tx := new(MockTx)
		svc := NewWalletService(repo, zerolog.Nop())

		repo.On("BeginTx", ctx).Return(tx, nil)
		repo.On("Debit", ctx, tx, userID, dec("40"), entry).
			Return(&model.WalletTransaction{Type: model.TransactionDebit, BalanceAfter: dec("60")}, nil)
		tx.On("Commit", ctx).Return(nil)

		txn, err := svc.Debit(ctx, userID, dec("40"), entry)

		require.NoError(t, err)
		assert.Equal(t, model.TransactionDebit, txn.Type)
		assert.True(t, tx.committed)
	})
}

func TestWalletService_GetWallet(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	tests := []struct {
		name           string
		page           int
		limit          int
		expectedLimit  int
		expectedOffset int
		total          int
		expectedPages  int
	}{
		{name: "defaults", page: 0, limit: 0, expectedLimit: 10, expectedOffset: 0, total: 25, expectedPages: 3},
		{name: "second page", page: 2, limit: 5, expectedLimit: 5, expectedOffset: 5, total: 10, expectedPages: 2},
		{name: "limit capped", page: 1, limit: 1000, expectedLimit: 100, expectedOffset: 0, total: 0, expectedPages: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockWalletRepository)
			svc := NewWalletService(repo, zerolog.Nop())

			repo.On("GetBalance", ctx, userID).Return(dec("42"), nil)
			repo.On("ListTransactions", ctx, userID, tt.expectedLimit, tt.expectedOffset).Return(nil, tt.total, nil)

			page, err := svc.GetWallet(ctx, userID, tt.page, tt.limit)

			require.NoError(t, err)
			assert.True(t, dec("42").Equal(page.Balance))
			assert.Equal(t, tt.expectedLimit, page.Limit)
			assert.Equal(t, tt.expectedPages, page.TotalPages)
			assert.NotNil(t, page.Transactions)
			repo.AssertExpectations(t)
		})
	}
}
