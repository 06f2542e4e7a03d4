package orderservice

import (
	"context"

	"github.com/VladisB/cosmarket/internal/domain"
	"go.uber.org/zap"
)

var allowedItemStatuses = map[domain.ItemStatus]bool{
	domain.ItemCancelled: true,
	domain.ItemPaid:      true,
	domain.ItemSent:      true,
	domain.ItemReceived:  true,
}

// UpdateItemStatus applies a seller action (ship, mark-received, cancel) to
// one order item and synchronously recomputes the parent order's aggregate
// status within the same transaction.
func (s *Service) UpdateItemStatus(ctx context.Context, userID int, storeSlug, itemSlug string, newStatus domain.ItemStatus) error {
	store, err := s.storeRepo.GetBySlug(ctx, storeSlug)
	if err != nil {
		return err
	}
	if store == nil {
		return ErrStoreNotFound
	}
	if store.OwnerID != userID {
		return ErrForbidden
	}

	item, err := s.orderRepo.GetItemBySlugForSeller(ctx, itemSlug, store.ID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrItemNotFound
	}

	if !allowedItemStatuses[newStatus] {
		return ErrInvalidStatus
	}
	if newStatus == item.Status {
		return ErrSameStatus
	}
	if item.Status.Terminal() {
		return ErrItemFinal
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		if err := s.orderRepo.UpdateItemStatus(ctx, item.ID, newStatus); err != nil {
			return err
		}
		return s.RecomputeOrderStatus(ctx, item.OrderID)
	})
	if err != nil {
		return err
	}

	order, err := s.orderRepo.GetByID(ctx, item.OrderID)
	if err != nil {
		zap.L().Error("can't load order for notification", zap.Error(err))
		return nil
	}
	item.Status = newStatus
	s.notifier.ItemStatusChanged(order, item)

	return nil
}

// RecomputeOrderStatus derives the order status from its item statuses:
// all Cancelled makes the order Cancelled; otherwise the first of
// Created, Paid, Sent present among the items wins; the order is Done once
// every non-cancelled item has been Received.
func (s *Service) RecomputeOrderStatus(ctx context.Context, orderID int) error {
	statuses, err := s.orderRepo.GetItemStatuses(ctx, orderID)
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		return nil
	}

	counts := map[domain.ItemStatus]int{}
	for _, st := range statuses {
		counts[st]++
	}

	var status domain.OrderStatus
	switch {
	case counts[domain.ItemCancelled] == len(statuses):
		status = domain.OrderCancelled
	case counts[domain.ItemCreated] > 0:
		status = domain.OrderCreated
	case counts[domain.ItemPaid] > 0:
		status = domain.OrderPaid
	case counts[domain.ItemSent] > 0:
		status = domain.OrderProcessing
	case counts[domain.ItemReceived] == len(statuses)-counts[domain.ItemCancelled]:
		status = domain.OrderDone
	default:
		return nil
	}

	return s.orderRepo.UpdateStatus(ctx, orderID, status)
}
