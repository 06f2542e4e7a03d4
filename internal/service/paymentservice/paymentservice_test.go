package paymentservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/VladisB/cosmarket/internal/config"
	"github.com/VladisB/cosmarket/internal/domain"
	"github.com/VladisB/cosmarket/internal/dto"
	"github.com/VladisB/cosmarket/internal/pg"
)

type mocks struct {
	orderRepo       *MockOrderRepo
	cardRepo        *MockCardRepo
	storeRepo       *MockStoreRepo
	productRepo     *MockProductRepo
	transactionRepo *MockTransactionRepo
	gateway         *MockGateway
	notifier        *MockNotifier
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		orderRepo:       NewMockOrderRepo(ctrl),
		cardRepo:        NewMockCardRepo(ctrl),
		storeRepo:       NewMockStoreRepo(ctrl),
		productRepo:     NewMockProductRepo(ctrl),
		transactionRepo: NewMockTransactionRepo(ctrl),
		gateway:         NewMockGateway(ctrl),
		notifier:        NewMockNotifier(ctrl),
	}
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()

	cfg := &config.Config{PlatformStoreID: 1, CommissionBPS: 500}
	service := New(m.orderRepo, m.cardRepo, m.storeRepo, m.productRepo,
		m.transactionRepo, m.gateway, txManager, m.notifier, cfg)
	return service, m
}

func intPtr(i int) *int { return &i }

func TestPayOrder(t *testing.T) {
	platformID := 1
	sellerID := 2
	buyer := 7

	newOrder := func() *domain.Order {
		return &domain.Order{
			ID:              10,
			Slug:            "12345678-9012",
			CustomerID:      intPtr(buyer),
			CardID:          5,
			TotalOrderPrice: 300,
			Status:          domain.OrderCreated,
			Items: []domain.OrderItem{
				{ID: 100, OrderID: 10, ProductID: 50, SellerID: sellerID, Quantity: 2, Price: 150, Status: domain.ItemCreated},
			},
		}
	}

	tests := []struct {
		name          string
		userID        *int
		prepareMock   func(m *mocks)
		expectedError error
	}{
		{
			name:   "successful settlement with commission split",
			userID: intPtr(buyer),
			prepareMock: func(m *mocks) {
				order := newOrder()
				m.orderRepo.EXPECT().GetBySlugForUpdate(gomock.Any(), order.Slug).Return(order, nil)
				m.cardRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 5).Return(&domain.Card{ID: 5, Balance: 500}, nil)
				m.productRepo.EXPECT().DecrementStock(gomock.Any(), 50, 2).Return(true, nil)
				m.cardRepo.EXPECT().AddBalance(gomock.Any(), 5, int64(-300)).Return(nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, txn *domain.Transaction) error {
						assert.Equal(t, domain.TxnPurchase, txn.Type)
						assert.Equal(t, int64(300), txn.Amount)
						return nil
					})
				m.storeRepo.EXPECT().AddBalance(gomock.Any(), sellerID, int64(285)).Return(nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, txn *domain.Transaction) error {
						assert.Equal(t, domain.TxnSale, txn.Type)
						assert.Equal(t, int64(300), txn.Amount)
						return nil
					})
				m.storeRepo.EXPECT().AddBalance(gomock.Any(), platformID, int64(15)).Return(nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, txn *domain.Transaction) error {
						assert.Equal(t, domain.TxnCommission, txn.Type)
						assert.Equal(t, int64(15), txn.Amount)
						return nil
					})
				m.orderRepo.EXPECT().SetItemsStatus(gomock.Any(), 10, domain.ItemPaid).Return(nil)
				m.orderRepo.EXPECT().UpdateStatus(gomock.Any(), 10, domain.OrderPaid).Return(nil)
				m.notifier.EXPECT().OrderPaid(gomock.Any())
			},
		},
		{
			name:   "platform store sale carries no commission",
			userID: intPtr(buyer),
			prepareMock: func(m *mocks) {
				order := newOrder()
				order.Items[0].SellerID = platformID
				m.orderRepo.EXPECT().GetBySlugForUpdate(gomock.Any(), order.Slug).Return(order, nil)
				m.cardRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 5).Return(&domain.Card{ID: 5, Balance: 500}, nil)
				m.productRepo.EXPECT().DecrementStock(gomock.Any(), 50, 2).Return(true, nil)
				m.cardRepo.EXPECT().AddBalance(gomock.Any(), 5, int64(-300)).Return(nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
				m.storeRepo.EXPECT().AddBalance(gomock.Any(), platformID, int64(300)).Return(nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, txn *domain.Transaction) error {
						assert.Equal(t, domain.TxnSale, txn.Type)
						assert.Equal(t, int64(300), txn.Amount)
						return nil
					})
				m.orderRepo.EXPECT().SetItemsStatus(gomock.Any(), 10, domain.ItemPaid).Return(nil)
				m.orderRepo.EXPECT().UpdateStatus(gomock.Any(), 10, domain.OrderPaid).Return(nil)
				m.notifier.EXPECT().OrderPaid(gomock.Any())
			},
		},
		{
			name:   "order not found",
			userID: intPtr(buyer),
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().GetBySlugForUpdate(gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			expectedError: ErrOrderNotFound,
		},
		{
			name:   "order belongs to another user",
			userID: intPtr(99),
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().GetBySlugForUpdate(gomock.Any(), gomock.Any()).Return(newOrder(), nil)
			},
			expectedError: ErrForbidden,
		},
		{
			name:   "anonymous caller cannot pay an owned order",
			userID: nil,
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().GetBySlugForUpdate(gomock.Any(), gomock.Any()).Return(newOrder(), nil)
			},
			expectedError: ErrForbidden,
		},
		{
			name:   "already paid order is rejected",
			userID: intPtr(buyer),
			prepareMock: func(m *mocks) {
				order := newOrder()
				order.Status = domain.OrderPaid
				m.orderRepo.EXPECT().GetBySlugForUpdate(gomock.Any(), gomock.Any()).Return(order, nil)
			},
			expectedError: ErrInvalidState,
		},
		{
			name:   "insufficient funds",
			userID: intPtr(buyer),
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().GetBySlugForUpdate(gomock.Any(), gomock.Any()).Return(newOrder(), nil)
				m.cardRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 5).Return(&domain.Card{ID: 5, Balance: 299}, nil)
			},
			expectedError: ErrInsufficientFunds,
		},
		{
			name:   "out of stock product aborts the settlement",
			userID: intPtr(buyer),
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().GetBySlugForUpdate(gomock.Any(), gomock.Any()).Return(newOrder(), nil)
				m.cardRepo.EXPECT().GetByIDForUpdate(gomock.Any(), 5).Return(&domain.Card{ID: 5, Balance: 500}, nil)
				m.productRepo.EXPECT().DecrementStock(gomock.Any(), 50, 2).Return(false, nil)
			},
			expectedError: ErrProductUnavailable,
		},
		{
			name:   "repo failure is returned",
			userID: intPtr(buyer),
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().GetBySlugForUpdate(gomock.Any(), gomock.Any()).Return(nil, errors.New("some error"))
			},
			expectedError: errors.New("some error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			order, err := service.PayOrder(context.Background(), tt.userID, "12345678-9012")
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
				assert.Nil(t, order)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.OrderPaid, order.Status)
				for _, item := range order.Items {
					assert.Equal(t, domain.ItemPaid, item.Status)
				}
			}
		})
	}
}

func TestCreateDeposit(t *testing.T) {
	buyer := 7
	card := &domain.Card{ID: 5, UUID: "card-uuid", UserID: intPtr(buyer), Balance: 100}

	tests := []struct {
		name          string
		userID        *int
		amount        int64
		prepareMock   func(m *mocks)
		expectedError error
	}{
		{
			name:   "successful deposit registration",
			userID: intPtr(buyer),
			amount: 1000,
			prepareMock: func(m *mocks) {
				m.cardRepo.EXPECT().GetByUUID(gomock.Any(), "card-uuid").Return(card, nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, txn *domain.Transaction) error {
						assert.Equal(t, domain.TxnDeposit, txn.Type)
						assert.Equal(t, domain.TxnStatusPending, txn.Status)
						assert.Equal(t, int64(1000), txn.Amount)
						txn.ID = 42
						return nil
					})
				m.gateway.EXPECT().CreatePayment(gomock.Any(), int64(1000), gomock.Any(), "card-uuid").
					Return("https://gateway.example/pay/abc", nil)
			},
		},
		{
			name:          "non-positive amount",
			userID:        intPtr(buyer),
			amount:        0,
			prepareMock:   func(m *mocks) {},
			expectedError: ErrInvalidAmount,
		},
		{
			name:   "unknown card",
			userID: intPtr(buyer),
			amount: 1000,
			prepareMock: func(m *mocks) {
				m.cardRepo.EXPECT().GetByUUID(gomock.Any(), "card-uuid").Return(nil, nil)
			},
			expectedError: ErrCardNotFound,
		},
		{
			name:   "card owned by another user",
			userID: intPtr(99),
			amount: 1000,
			prepareMock: func(m *mocks) {
				m.cardRepo.EXPECT().GetByUUID(gomock.Any(), "card-uuid").Return(card, nil)
			},
			expectedError: ErrForbidden,
		},
		{
			// The mock rejects any Finalize call: the transaction must stay
			// Pending so a late webhook can still complete the deposit.
			name:   "gateway failure leaves the deposit pending",
			userID: intPtr(buyer),
			amount: 1000,
			prepareMock: func(m *mocks) {
				m.cardRepo.EXPECT().GetByUUID(gomock.Any(), "card-uuid").Return(card, nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, txn *domain.Transaction) error {
						assert.Equal(t, domain.TxnStatusPending, txn.Status)
						return nil
					})
				m.gateway.EXPECT().CreatePayment(gomock.Any(), int64(1000), gomock.Any(), "card-uuid").
					Return("", errors.New("gateway down"))
			},
			expectedError: errors.New("gateway down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			resp, err := service.CreateDeposit(context.Background(), tt.userID, "card-uuid", tt.amount)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
				assert.Nil(t, resp)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, resp.TransactionUUID)
				assert.Equal(t, "https://gateway.example/pay/abc", resp.ConfirmationURL)
			}
		})
	}
}

func TestHandleCallback(t *testing.T) {
	cardID := 5
	pendingTxn := func() *domain.Transaction {
		return &domain.Transaction{
			ID:     42,
			UUID:   "txn-uuid",
			CardID: &cardID,
			Type:   domain.TxnDeposit,
			Amount: 1000,
			Status: domain.TxnStatusPending,
		}
	}
	callback := func(event string, income int64) *dto.CallbackDTO {
		return &dto.CallbackDTO{
			Event: event,
			Object: dto.CallbackObjectDTO{
				Metadata: dto.CallbackMetadataDTO{
					TransactionUUID: "txn-uuid",
					CardUUID:        "card-uuid",
				},
				IncomeAmount: income,
			},
		}
	}

	tests := []struct {
		name          string
		cb            *dto.CallbackDTO
		prepareMock   func(m *mocks)
		expectedError error
	}{
		{
			name: "successful payment credits the card",
			cb:   callback("payment.succeeded", 1000),
			prepareMock: func(m *mocks) {
				m.transactionRepo.EXPECT().GetByUUIDForUpdate(gomock.Any(), "txn-uuid").Return(pendingTxn(), nil)
				m.cardRepo.EXPECT().GetByUUIDForUpdate(gomock.Any(), "card-uuid").Return(&domain.Card{ID: cardID, UUID: "card-uuid"}, nil)
				m.cardRepo.EXPECT().AddBalance(gomock.Any(), cardID, int64(1000)).Return(nil)
				m.transactionRepo.EXPECT().Finalize(gomock.Any(), 42, domain.TxnStatusSuccess, int64(1000)).Return(nil)
			},
		},
		{
			name: "confirmed amount supersedes the requested one",
			cb:   callback("payment.succeeded", 950),
			prepareMock: func(m *mocks) {
				m.transactionRepo.EXPECT().GetByUUIDForUpdate(gomock.Any(), "txn-uuid").Return(pendingTxn(), nil)
				m.cardRepo.EXPECT().GetByUUIDForUpdate(gomock.Any(), "card-uuid").Return(&domain.Card{ID: cardID, UUID: "card-uuid"}, nil)
				m.cardRepo.EXPECT().AddBalance(gomock.Any(), cardID, int64(950)).Return(nil)
				m.transactionRepo.EXPECT().Finalize(gomock.Any(), 42, domain.TxnStatusSuccess, int64(950)).Return(nil)
			},
		},
		{
			name: "replay of a finalized transaction is a no-op",
			cb:   callback("payment.succeeded", 1000),
			prepareMock: func(m *mocks) {
				txn := pendingTxn()
				txn.Status = domain.TxnStatusSuccess
				m.transactionRepo.EXPECT().GetByUUIDForUpdate(gomock.Any(), "txn-uuid").Return(txn, nil)
			},
		},
		{
			name: "canceled payment finalizes without crediting",
			cb:   callback("payment.canceled", 0),
			prepareMock: func(m *mocks) {
				m.transactionRepo.EXPECT().GetByUUIDForUpdate(gomock.Any(), "txn-uuid").Return(pendingTxn(), nil)
				m.transactionRepo.EXPECT().Finalize(gomock.Any(), 42, domain.TxnStatusCanceled, int64(1000)).Return(nil)
			},
		},
		{
			name:          "unrecognized event",
			cb:            callback("payment.refunded", 0),
			prepareMock:   func(m *mocks) {},
			expectedError: ErrUnrecognizedEvent,
		},
		{
			name: "unknown transaction",
			cb:   callback("payment.succeeded", 1000),
			prepareMock: func(m *mocks) {
				m.transactionRepo.EXPECT().GetByUUIDForUpdate(gomock.Any(), "txn-uuid").Return(nil, nil)
			},
			expectedError: ErrTransactionNotFound,
		},
		{
			name: "card mismatch is rejected",
			cb:   callback("payment.succeeded", 1000),
			prepareMock: func(m *mocks) {
				m.transactionRepo.EXPECT().GetByUUIDForUpdate(gomock.Any(), "txn-uuid").Return(pendingTxn(), nil)
				m.cardRepo.EXPECT().GetByUUIDForUpdate(gomock.Any(), "card-uuid").Return(&domain.Card{ID: 99, UUID: "card-uuid"}, nil)
			},
			expectedError: ErrCardNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			err := service.HandleCallback(context.Background(), tt.cb)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetCard(t *testing.T) {
	buyer := 7
	card := &domain.Card{ID: 5, UUID: "card-uuid", UserID: intPtr(buyer), Balance: 100}

	t.Run("card with transactions", func(t *testing.T) {
		service, m := NewMock(t)
		m.cardRepo.EXPECT().GetByUUID(gomock.Any(), "card-uuid").Return(card, nil)
		m.transactionRepo.EXPECT().ListByCardID(gomock.Any(), 5).Return([]domain.Transaction{
			{UUID: "t1", Type: domain.TxnDeposit, Amount: 100, Status: domain.TxnStatusSuccess},
		}, nil)

		got, txns, err := service.GetCard(context.Background(), intPtr(buyer), "card-uuid")
		assert.NoError(t, err)
		assert.Equal(t, card, got)
		assert.Len(t, txns, 1)
	})

	t.Run("foreign card is forbidden", func(t *testing.T) {
		service, m := NewMock(t)
		m.cardRepo.EXPECT().GetByUUID(gomock.Any(), "card-uuid").Return(card, nil)

		_, _, err := service.GetCard(context.Background(), intPtr(99), "card-uuid")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown card", func(t *testing.T) {
		service, m := NewMock(t)
		m.cardRepo.EXPECT().GetByUUID(gomock.Any(), "missing").Return(nil, nil)

		_, _, err := service.GetCard(context.Background(), intPtr(buyer), "missing")
		assert.ErrorIs(t, err, ErrCardNotFound)
	})
}
