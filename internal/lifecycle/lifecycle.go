// Package lifecycle holds the order and item status transition rules.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/model"
)

// Actor is who is asking for a status change.
type Actor string

const (
	ActorAdmin    Actor = "admin"
	ActorCustomer Actor = "customer"
)

var adminTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.StatusPending:        {model.StatusProcessing, model.StatusShipped, model.StatusOutForDelivery, model.StatusCancelled},
	model.StatusProcessing:     {model.StatusShipped, model.StatusOutForDelivery, model.StatusCancelled},
	model.StatusShipped:        {model.StatusOutForDelivery, model.StatusDelivered, model.StatusCancelled},
	model.StatusOutForDelivery: {model.StatusDelivered, model.StatusCancelled},
	model.StatusDelivered:      {model.StatusReturned},
}

var customerTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.StatusPending:        {model.StatusCancelled},
	model.StatusProcessing:     {model.StatusCancelled},
	model.StatusShipped:        {model.StatusCancelled},
	model.StatusOutForDelivery: {model.StatusCancelled},
	model.StatusDelivered:      {model.StatusReturned},
}

func transitionsFor(actor Actor) map[model.OrderStatus][]model.OrderStatus {
	switch actor {
	case ActorAdmin:
		return adminTransitions
	case ActorCustomer:
		return customerTransitions
	}
	return nil
}

// CanTransition reports whether actor may move an order from one status to another.
func CanTransition(actor Actor, from, to model.OrderStatus) bool {
	for _, s := range transitionsFor(actor)[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Check returns ErrInvalidTransition wrapped with detail when the move is not allowed.
func Check(actor Actor, from, to model.OrderStatus) error {
	if CanTransition(actor, from, to) {
		return nil
	}
	return fmt.Errorf("%w: %s cannot move order from %q to %q", model.ErrInvalidTransition, actor, from, to)
}

// Terminal reports whether no actor can move an order out of status.
func Terminal(status model.OrderStatus) bool {
	return len(adminTransitions[status]) == 0 && len(customerTransitions[status]) == 0
}

// Apply sets the new status and the fields that go with entering it.
// It does not check the transition.
func Apply(order *model.Order, to model.OrderStatus, now time.Time) {
	order.Status = to
	order.UpdatedAt = now

	switch to {
	case model.StatusDelivered:
		order.IsDelivered = true
		order.DeliveredAt = &now
		if order.PaymentMethod == model.PaymentCOD && !order.IsPaid {
			order.IsPaid = true
			order.PaidAt = &now
		}
	case model.StatusCancelled:
		order.CancellationDate = &now
	}
}

// CanFailPayment reports whether the gateway may mark the order's payment as failed.
func CanFailPayment(order *model.Order) bool {
	return order.Status == model.StatusPending && !order.IsPaid
}

// ItemCancellable reports whether single items may be cancelled in this order status.
func ItemCancellable(status model.OrderStatus) bool {
	return status == model.StatusPending || status == model.StatusProcessing
}

// ReturnEligible reports whether a return may be requested for the item.
// A pending or rejected request blocks a new one until it is reset.
func ReturnEligible(item *model.OrderItem) bool {
	return !item.IsCancelled && !item.IsReturned && item.ReturnStatus == model.ReturnNone
}

// WithinReturnWindow reports whether now is still inside the return window of a delivered order.
func WithinReturnWindow(order *model.Order, window time.Duration, now time.Time) bool {
	if order.DeliveredAt == nil {
		return false
	}
	if window <= 0 {
		return true
	}
	return !now.After(order.DeliveredAt.Add(window))
}

// RollupReturnStatus derives the order-level return status from its items.
// last is the outcome of the verification that triggered the rollup, if any.
func RollupReturnStatus(order *model.Order, last model.ReturnStatus) model.ReturnStatus {
	var considered, pending, approved int
	for i := range order.Items {
		it := &order.Items[i]
		if it.IsCancelled {
			continue
		}
		considered++
		switch it.ReturnStatus {
		case model.ReturnPending:
			pending++
		case model.ReturnApproved:
			approved++
		}
	}

	switch {
	case pending > 0 && pending+approved == considered:
		return model.ReturnPending
	case pending > 0:
		return model.ReturnPartialPending
	case considered > 0 && approved == considered:
		return model.ReturnApproved
	case last == model.ReturnRejected:
		return model.ReturnRejected
	case approved > 0:
		return model.ReturnApproved
	}
	return model.ReturnNone
}

// AllReturned reports whether every non-cancelled item has been returned.
func AllReturned(order *model.Order) bool {
	returned := 0
	for i := range order.Items {
		it := &order.Items[i]
		if it.IsCancelled {
			continue
		}
		if !it.IsReturned {
			return false
		}
		returned++
	}
	return returned > 0
}

// AllCancelled reports whether every item has been cancelled.
func AllCancelled(order *model.Order) bool {
	for i := range order.Items {
		if !order.Items[i].IsCancelled {
			return false
		}
	}
	return len(order.Items) > 0
}
