package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		from  model.OrderStatus
		to    model.OrderStatus
		want  bool
	}{
		{"admin pending to processing", ActorAdmin, model.StatusPending, model.StatusProcessing, true},
		{"admin pending to out for delivery", ActorAdmin, model.StatusPending, model.StatusOutForDelivery, true},
		{"admin pending to delivered", ActorAdmin, model.StatusPending, model.StatusDelivered, false},
		{"admin shipped to delivered", ActorAdmin, model.StatusShipped, model.StatusDelivered, true},
		{"admin out for delivery to cancelled", ActorAdmin, model.StatusOutForDelivery, model.StatusCancelled, true},
		{"admin delivered to returned", ActorAdmin, model.StatusDelivered, model.StatusReturned, true},
		{"admin delivered to cancelled", ActorAdmin, model.StatusDelivered, model.StatusCancelled, false},
		{"admin processing back to pending", ActorAdmin, model.StatusProcessing, model.StatusPending, false},
		{"admin from cancelled", ActorAdmin, model.StatusCancelled, model.StatusPending, false},
		{"admin from returned", ActorAdmin, model.StatusReturned, model.StatusDelivered, false},
		{"customer pending to cancelled", ActorCustomer, model.StatusPending, model.StatusCancelled, true},
		{"customer out for delivery to cancelled", ActorCustomer, model.StatusOutForDelivery, model.StatusCancelled, true},
		{"customer delivered to returned", ActorCustomer, model.StatusDelivered, model.StatusReturned, true},
		{"customer pending to processing", ActorCustomer, model.StatusPending, model.StatusProcessing, false},
		{"customer shipped to delivered", ActorCustomer, model.StatusShipped, model.StatusDelivered, false},
		{"customer delivered to cancelled", ActorCustomer, model.StatusDelivered, model.StatusCancelled, false},
		{"nobody leaves payment_failed", ActorAdmin, model.StatusPaymentFailed, model.StatusPending, false},
		{"unknown actor", Actor("robot"), model.StatusPending, model.StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.actor, tt.from, tt.to))
		})
	}
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(ActorAdmin, model.StatusPending, model.StatusShipped))

	err := Check(ActorCustomer, model.StatusPending, model.StatusShipped)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidTransition))
	assert.Contains(t, err.Error(), "customer")
}

func TestTerminal(t *testing.T) {
	assert.True(t, Terminal(model.StatusCancelled))
	assert.True(t, Terminal(model.StatusReturned))
	assert.True(t, Terminal(model.StatusPaymentFailed))
	assert.False(t, Terminal(model.StatusDelivered))
	assert.False(t, Terminal(model.StatusPending))
}

func TestApply_Delivered(t *testing.T) {
	now := time.Now()

	t.Run("COD becomes paid", func(t *testing.T) {
		order := &model.Order{Status: model.StatusShipped, PaymentMethod: model.PaymentCOD}
		Apply(order, model.StatusDelivered, now)

		assert.Equal(t, model.StatusDelivered, order.Status)
		assert.True(t, order.IsDelivered)
		require.NotNil(t, order.DeliveredAt)
		assert.True(t, order.IsPaid)
		require.NotNil(t, order.PaidAt)
	})

	t.Run("wallet keeps original payment time", func(t *testing.T) {
		paidAt := now.Add(-48 * time.Hour)
		order := &model.Order{Status: model.StatusShipped, PaymentMethod: model.PaymentWallet, IsPaid: true, PaidAt: &paidAt}
		Apply(order, model.StatusDelivered, now)

		assert.True(t, order.IsDelivered)
		assert.Equal(t, paidAt, *order.PaidAt)
	})
}

func TestApply_Cancelled(t *testing.T) {
	order := &model.Order{Status: model.StatusPending}
	Apply(order, model.StatusCancelled, time.Now())

	assert.Equal(t, model.StatusCancelled, order.Status)
	assert.NotNil(t, order.CancellationDate)
	assert.False(t, order.IsDelivered)
}

func TestCanFailPayment(t *testing.T) {
	assert.True(t, CanFailPayment(&model.Order{Status: model.StatusPending}))
	assert.False(t, CanFailPayment(&model.Order{Status: model.StatusPending, IsPaid: true}))
	assert.False(t, CanFailPayment(&model.Order{Status: model.StatusProcessing}))
}

func TestItemCancellable(t *testing.T) {
	assert.True(t, ItemCancellable(model.StatusPending))
	assert.True(t, ItemCancellable(model.StatusProcessing))
	assert.False(t, ItemCancellable(model.StatusShipped))
	assert.False(t, ItemCancellable(model.StatusDelivered))
}

func TestReturnEligible(t *testing.T) {
	tests := []struct {
		name string
		item model.OrderItem
		want bool
	}{
		{"fresh item", model.OrderItem{}, true},
		{"cancelled", model.OrderItem{IsCancelled: true}, false},
		{"already returned", model.OrderItem{IsReturned: true, ReturnStatus: model.ReturnApproved}, false},
		{"request pending", model.OrderItem{ReturnStatus: model.ReturnPending}, false},
		{"request rejected", model.OrderItem{ReturnStatus: model.ReturnRejected}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReturnEligible(&tt.item))
		})
	}
}

func TestWithinReturnWindow(t *testing.T) {
	now := time.Now()
	delivered := now.Add(-3 * 24 * time.Hour)
	order := &model.Order{DeliveredAt: &delivered}

	assert.True(t, WithinReturnWindow(order, 7*24*time.Hour, now))
	assert.False(t, WithinReturnWindow(order, 2*24*time.Hour, now))
	assert.True(t, WithinReturnWindow(order, 0, now))
	assert.False(t, WithinReturnWindow(&model.Order{}, 7*24*time.Hour, now))
}

func TestRollupReturnStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []model.ReturnStatus
		last     model.ReturnStatus
		want     model.ReturnStatus
	}{
		{"all pending", []model.ReturnStatus{model.ReturnPending, model.ReturnPending}, "", model.ReturnPending},
		{"some pending", []model.ReturnStatus{model.ReturnPending, model.ReturnNone}, "", model.ReturnPartialPending},
		{"pending with approved", []model.ReturnStatus{model.ReturnPending, model.ReturnApproved}, "", model.ReturnPending},
		{"all approved", []model.ReturnStatus{model.ReturnApproved, model.ReturnApproved}, model.ReturnApproved, model.ReturnApproved},
		{"rejected last", []model.ReturnStatus{model.ReturnNone, model.ReturnNone}, model.ReturnRejected, model.ReturnRejected},
		{"nothing requested", []model.ReturnStatus{model.ReturnNone}, "", model.ReturnNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &model.Order{}
			for _, s := range tt.statuses {
				order.Items = append(order.Items, model.OrderItem{ReturnStatus: s})
			}
			order.Items = append(order.Items, model.OrderItem{IsCancelled: true})
			assert.Equal(t, tt.want, RollupReturnStatus(order, tt.last))
		})
	}
}

func TestAllReturnedAndAllCancelled(t *testing.T) {
	order := &model.Order{Items: []model.OrderItem{
		{IsReturned: true},
		{IsCancelled: true},
	}}
	assert.True(t, AllReturned(order))
	assert.False(t, AllCancelled(order))

	order.Items[0] = model.OrderItem{IsCancelled: true}
	assert.False(t, AllReturned(order))
	assert.True(t, AllCancelled(order))

	assert.False(t, AllCancelled(&model.Order{}))
}
