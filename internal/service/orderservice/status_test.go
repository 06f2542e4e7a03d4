package orderservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/VladisB/cosmarket/internal/domain"
)

func TestUpdateItemStatus(t *testing.T) {
	seller := 7
	store := &domain.Store{ID: 2, Slug: "my-store", OwnerID: seller}
	item := func(status domain.ItemStatus) *domain.OrderItem {
		return &domain.OrderItem{ID: 100, Slug: "1234567890", OrderID: 10, SellerID: 2, Status: status}
	}

	tests := []struct {
		name          string
		userID        int
		newStatus     domain.ItemStatus
		prepareMock   func(m *mocks)
		expectedError error
	}{
		{
			name:      "item shipped and order moves to Processing",
			userID:    seller,
			newStatus: domain.ItemSent,
			prepareMock: func(m *mocks) {
				m.storeRepo.EXPECT().GetBySlug(gomock.Any(), "my-store").Return(store, nil)
				m.orderRepo.EXPECT().GetItemBySlugForSeller(gomock.Any(), "1234567890", 2).
					Return(item(domain.ItemPaid), nil)
				m.orderRepo.EXPECT().UpdateItemStatus(gomock.Any(), 100, domain.ItemSent).Return(nil)
				m.orderRepo.EXPECT().GetItemStatuses(gomock.Any(), 10).
					Return([]domain.ItemStatus{domain.ItemSent, domain.ItemPaid}, nil)
				m.orderRepo.EXPECT().UpdateStatus(gomock.Any(), 10, domain.OrderProcessing).Return(nil)
				m.orderRepo.EXPECT().GetByID(gomock.Any(), 10).Return(&domain.Order{ID: 10}, nil)
				m.notifier.EXPECT().ItemStatusChanged(gomock.Any(), gomock.Any())
			},
		},
		{
			name:      "unknown store",
			userID:    seller,
			newStatus: domain.ItemSent,
			prepareMock: func(m *mocks) {
				m.storeRepo.EXPECT().GetBySlug(gomock.Any(), "my-store").Return(nil, nil)
			},
			expectedError: ErrStoreNotFound,
		},
		{
			name:      "store owned by another user",
			userID:    99,
			newStatus: domain.ItemSent,
			prepareMock: func(m *mocks) {
				m.storeRepo.EXPECT().GetBySlug(gomock.Any(), "my-store").Return(store, nil)
			},
			expectedError: ErrForbidden,
		},
		{
			name:      "item not sold by this store",
			userID:    seller,
			newStatus: domain.ItemSent,
			prepareMock: func(m *mocks) {
				m.storeRepo.EXPECT().GetBySlug(gomock.Any(), "my-store").Return(store, nil)
				m.orderRepo.EXPECT().GetItemBySlugForSeller(gomock.Any(), "1234567890", 2).Return(nil, nil)
			},
			expectedError: ErrItemNotFound,
		},
		{
			name:      "Created is not a seller-settable status",
			userID:    seller,
			newStatus: domain.ItemCreated,
			prepareMock: func(m *mocks) {
				m.storeRepo.EXPECT().GetBySlug(gomock.Any(), "my-store").Return(store, nil)
				m.orderRepo.EXPECT().GetItemBySlugForSeller(gomock.Any(), "1234567890", 2).
					Return(item(domain.ItemPaid), nil)
			},
			expectedError: ErrInvalidStatus,
		},
		{
			name:      "same status is rejected",
			userID:    seller,
			newStatus: domain.ItemSent,
			prepareMock: func(m *mocks) {
				m.storeRepo.EXPECT().GetBySlug(gomock.Any(), "my-store").Return(store, nil)
				m.orderRepo.EXPECT().GetItemBySlugForSeller(gomock.Any(), "1234567890", 2).
					Return(item(domain.ItemSent), nil)
			},
			expectedError: ErrSameStatus,
		},
		{
			name:      "received item is terminal",
			userID:    seller,
			newStatus: domain.ItemSent,
			prepareMock: func(m *mocks) {
				m.storeRepo.EXPECT().GetBySlug(gomock.Any(), "my-store").Return(store, nil)
				m.orderRepo.EXPECT().GetItemBySlugForSeller(gomock.Any(), "1234567890", 2).
					Return(item(domain.ItemReceived), nil)
			},
			expectedError: ErrItemFinal,
		},
		{
			name:      "cancelled item is terminal",
			userID:    seller,
			newStatus: domain.ItemSent,
			prepareMock: func(m *mocks) {
				m.storeRepo.EXPECT().GetBySlug(gomock.Any(), "my-store").Return(store, nil)
				m.orderRepo.EXPECT().GetItemBySlugForSeller(gomock.Any(), "1234567890", 2).
					Return(item(domain.ItemCancelled), nil)
			},
			expectedError: ErrItemFinal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			err := service.UpdateItemStatus(context.Background(), tt.userID, "my-store", "1234567890", tt.newStatus)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecomputeOrderStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []domain.ItemStatus
		expected *domain.OrderStatus
	}{
		{
			name:     "all cancelled makes the order Cancelled",
			statuses: []domain.ItemStatus{domain.ItemCancelled, domain.ItemCancelled},
			expected: statusPtr(domain.OrderCancelled),
		},
		{
			name:     "any created keeps the order Created",
			statuses: []domain.ItemStatus{domain.ItemCreated, domain.ItemReceived},
			expected: statusPtr(domain.OrderCreated),
		},
		{
			name:     "any paid wins over sent and received",
			statuses: []domain.ItemStatus{domain.ItemPaid, domain.ItemSent, domain.ItemReceived},
			expected: statusPtr(domain.OrderPaid),
		},
		{
			name:     "any sent makes the order Processing",
			statuses: []domain.ItemStatus{domain.ItemSent, domain.ItemReceived},
			expected: statusPtr(domain.OrderProcessing),
		},
		{
			name:     "all received makes the order Done",
			statuses: []domain.ItemStatus{domain.ItemReceived, domain.ItemReceived},
			expected: statusPtr(domain.OrderDone),
		},
		{
			name:     "received plus cancelled still makes the order Done",
			statuses: []domain.ItemStatus{domain.ItemReceived, domain.ItemCancelled},
			expected: statusPtr(domain.OrderDone),
		},
		{
			name:     "no items leaves the status unchanged",
			statuses: nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			m.orderRepo.EXPECT().GetItemStatuses(gomock.Any(), 10).Return(tt.statuses, nil)
			if tt.expected != nil {
				m.orderRepo.EXPECT().UpdateStatus(gomock.Any(), 10, *tt.expected).Return(nil)
			}

			err := service.RecomputeOrderStatus(context.Background(), 10)
			assert.NoError(t, err)
		})
	}
}

func statusPtr(s domain.OrderStatus) *domain.OrderStatus { return &s }
