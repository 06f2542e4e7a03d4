package paymentservice

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/VladisB/cosmarket/internal/config"
	"github.com/VladisB/cosmarket/internal/domain"
	"github.com/VladisB/cosmarket/internal/dto"
	"github.com/VladisB/cosmarket/internal/pg"
	"github.com/VladisB/cosmarket/pkg/metrics"
)

type OrderRepo interface {
	GetBySlugForUpdate(ctx context.Context, slug string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int, status domain.OrderStatus) error
	SetItemsStatus(ctx context.Context, orderID int, status domain.ItemStatus) error
}

type CardRepo interface {
	GetByIDForUpdate(ctx context.Context, id int) (*domain.Card, error)
	GetByUUID(ctx context.Context, cardUUID string) (*domain.Card, error)
	GetByUUIDForUpdate(ctx context.Context, cardUUID string) (*domain.Card, error)
	AddBalance(ctx context.Context, cardID int, delta int64) error
}

type StoreRepo interface {
	AddBalance(ctx context.Context, storeID int, delta int64) error
}

type ProductRepo interface {
	DecrementStock(ctx context.Context, productID, quantity int) (bool, error)
}

type TransactionRepo interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	GetByUUIDForUpdate(ctx context.Context, txnUUID string) (*domain.Transaction, error)
	Finalize(ctx context.Context, id int, status string, amount int64) error
	ListByCardID(ctx context.Context, cardID int) ([]domain.Transaction, error)
}

type Gateway interface {
	CreatePayment(ctx context.Context, amount int64, txnUUID, cardUUID string) (string, error)
}

type Notifier interface {
	OrderPaid(order *domain.Order)
}

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrCardNotFound        = errors.New("card not found")
	ErrForbidden           = errors.New("not allowed to use this resource")
	ErrInvalidState        = errors.New("order is not payable in its current status")
	ErrInsufficientFunds   = errors.New("card balance is too low")
	ErrProductUnavailable  = errors.New("product is out of stock or inactive")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrUnrecognizedEvent   = errors.New("unrecognized callback event")
	ErrTransactionNotFound = errors.New("transaction not found")
)

const (
	eventPaymentSucceeded = "payment.succeeded"
	eventPaymentCanceled  = "payment.canceled"
)

type Service struct {
	orderRepo       OrderRepo
	cardRepo        CardRepo
	storeRepo       StoreRepo
	productRepo     ProductRepo
	transactionRepo TransactionRepo
	gateway         Gateway
	txManager       pg.TXManager
	notifier        Notifier
	platformStoreID int
	commissionBPS   int64
}

func New(orderRepo OrderRepo, cardRepo CardRepo, storeRepo StoreRepo, productRepo ProductRepo,
	transactionRepo TransactionRepo, gateway Gateway, txManager pg.TXManager, notifier Notifier,
	cfg *config.Config) *Service {
	return &Service{
		orderRepo:       orderRepo,
		cardRepo:        cardRepo,
		storeRepo:       storeRepo,
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		gateway:         gateway,
		txManager:       txManager,
		notifier:        notifier,
		platformStoreID: cfg.PlatformStoreID,
		commissionBPS:   int64(cfg.CommissionBPS),
	}
}

// PayOrder settles an order from the buyer's card in one transaction: funds
// check, stock decrement, card debit, per-item seller credits with the
// platform commission carved out, then the Paid status flip. Any failure
// rolls the whole settlement back.
func (s *Service) PayOrder(ctx context.Context, userID *int, slug string) (*domain.Order, error) {
	var order *domain.Order

	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.GetBySlugForUpdate(ctx, slug)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.CustomerID != nil && (userID == nil || *order.CustomerID != *userID) {
			return ErrForbidden
		}
		if order.Status != domain.OrderCreated {
			return ErrInvalidState
		}

		card, err := s.cardRepo.GetByIDForUpdate(ctx, order.CardID)
		if err != nil {
			return err
		}
		if card == nil {
			return ErrCardNotFound
		}
		if card.Balance < order.TotalOrderPrice {
			return ErrInsufficientFunds
		}

		for _, item := range order.Items {
			ok, err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return ErrProductUnavailable
			}
		}

		if err := s.debitCard(ctx, card, order); err != nil {
			return err
		}
		for i := range order.Items {
			if err := s.settleItem(ctx, card, order, &order.Items[i]); err != nil {
				return err
			}
		}

		if err := s.orderRepo.SetItemsStatus(ctx, order.ID, domain.ItemPaid); err != nil {
			return err
		}
		return s.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderPaid)
	})
	if err != nil {
		metrics.SettlementsFailed.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	order.Status = domain.OrderPaid
	for i := range order.Items {
		order.Items[i].Status = domain.ItemPaid
	}
	metrics.OrdersPaid.Inc()
	s.notifier.OrderPaid(order)

	return order, nil
}

// debitCard takes the full order total off the buyer card and records the
// Purchase ledger entry.
func (s *Service) debitCard(ctx context.Context, card *domain.Card, order *domain.Order) error {
	if err := s.cardRepo.AddBalance(ctx, card.ID, -order.TotalOrderPrice); err != nil {
		return err
	}
	return s.transactionRepo.Create(ctx, &domain.Transaction{
		UUID:    uuid.NewString(),
		CardID:  &card.ID,
		Type:    domain.TxnPurchase,
		Amount:  order.TotalOrderPrice,
		Status:  domain.TxnStatusSuccess,
		OrderID: &order.ID,
	})
}

// settleItem credits the item's seller. The Sale ledger entry always carries
// the full item total; the commission is carved out of the seller's balance
// credit and recorded as its own entry. The platform's own store keeps
// everything.
func (s *Service) settleItem(ctx context.Context, card *domain.Card, order *domain.Order, item *domain.OrderItem) error {
	itemTotal := item.TotalPrice()

	var commission int64
	if item.SellerID != s.platformStoreID {
		commission = domain.RoundHalfEven(itemTotal*s.commissionBPS, 10000)
	}

	if err := s.storeRepo.AddBalance(ctx, item.SellerID, itemTotal-commission); err != nil {
		return err
	}
	err := s.transactionRepo.Create(ctx, &domain.Transaction{
		UUID:        uuid.NewString(),
		CardID:      &card.ID,
		Type:        domain.TxnSale,
		Amount:      itemTotal,
		Status:      domain.TxnStatusSuccess,
		OrderID:     &order.ID,
		OrderItemID: &item.ID,
		SellerID:    &item.SellerID,
	})
	if err != nil {
		return err
	}

	if commission == 0 {
		return nil
	}
	if err := s.storeRepo.AddBalance(ctx, s.platformStoreID, commission); err != nil {
		return err
	}
	return s.transactionRepo.Create(ctx, &domain.Transaction{
		UUID:        uuid.NewString(),
		CardID:      &card.ID,
		Type:        domain.TxnCommission,
		Amount:      commission,
		Status:      domain.TxnStatusSuccess,
		OrderID:     &order.ID,
		OrderItemID: &item.ID,
		SellerID:    &s.platformStoreID,
	})
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrProductUnavailable):
		return "product_unavailable"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrCardNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

// CreateDeposit opens a Pending deposit on the ledger and registers the
// payment with the gateway. The balance is only credited when the gateway
// webhook confirms.
func (s *Service) CreateDeposit(ctx context.Context, userID *int, cardUUID string, amount int64) (*dto.DepositResponseDTO, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	card, err := s.cardRepo.GetByUUID(ctx, cardUUID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrCardNotFound
	}
	if card.UserID != nil && (userID == nil || *card.UserID != *userID) {
		return nil, ErrForbidden
	}

	txn := &domain.Transaction{
		UUID:   uuid.NewString(),
		CardID: &card.ID,
		Type:   domain.TxnDeposit,
		Amount: amount,
		Status: domain.TxnStatusPending,
	}
	if err := s.transactionRepo.Create(ctx, txn); err != nil {
		return nil, err
	}

	confirmationURL, err := s.gateway.CreatePayment(ctx, amount, txn.UUID, card.UUID)
	if err != nil {
		// The gateway may have accepted the payment even though the call
		// failed. The transaction stays Pending so a later webhook, or
		// manual reconciliation, can still complete it.
		zap.L().Error("can't register payment with gateway", zap.String("txn", txn.UUID), zap.Error(err))
		return nil, err
	}

	metrics.DepositsCreated.Inc()
	return &dto.DepositResponseDTO{
		TransactionUUID: txn.UUID,
		ConfirmationURL: confirmationURL,
	}, nil
}

// HandleCallback completes a Pending deposit from the gateway webhook. The
// transaction row lock plus the Pending guard make replays no-ops, so the
// gateway can deliver the same event more than once.
func (s *Service) HandleCallback(ctx context.Context, cb *dto.CallbackDTO) error {
	if cb.Event != eventPaymentSucceeded && cb.Event != eventPaymentCanceled {
		return ErrUnrecognizedEvent
	}

	return s.txManager.Begin(ctx, func(ctx context.Context) error {
		txn, err := s.transactionRepo.GetByUUIDForUpdate(ctx, cb.Object.Metadata.TransactionUUID)
		if err != nil {
			return err
		}
		if txn == nil {
			return ErrTransactionNotFound
		}
		if txn.Status != domain.TxnStatusPending {
			zap.L().Info("callback replay ignored", zap.String("txn", txn.UUID), zap.String("status", txn.Status))
			return nil
		}

		if cb.Event == eventPaymentCanceled {
			return s.transactionRepo.Finalize(ctx, txn.ID, domain.TxnStatusCanceled, txn.Amount)
		}

		card, err := s.cardRepo.GetByUUIDForUpdate(ctx, cb.Object.Metadata.CardUUID)
		if err != nil {
			return err
		}
		if card == nil || txn.CardID == nil || card.ID != *txn.CardID {
			return ErrCardNotFound
		}

		// The gateway may settle a different amount than requested, for
		// example after currency conversion. The confirmed amount wins.
		amount := cb.Object.IncomeAmount
		if amount <= 0 {
			amount = txn.Amount
		}

		if err := s.cardRepo.AddBalance(ctx, card.ID, amount); err != nil {
			return err
		}
		if err := s.transactionRepo.Finalize(ctx, txn.ID, domain.TxnStatusSuccess, amount); err != nil {
			return err
		}
		metrics.DepositsConfirmed.Inc()
		return nil
	})
}

// GetCard returns the card with its full transaction history, newest first.
func (s *Service) GetCard(ctx context.Context, userID *int, cardUUID string) (*domain.Card, []domain.Transaction, error) {
	card, err := s.cardRepo.GetByUUID(ctx, cardUUID)
	if err != nil {
		return nil, nil, err
	}
	if card == nil {
		return nil, nil, ErrCardNotFound
	}
	if card.UserID != nil && (userID == nil || *card.UserID != *userID) {
		return nil, nil, ErrForbidden
	}

	txns, err := s.transactionRepo.ListByCardID(ctx, card.ID)
	if err != nil {
		return nil, nil, err
	}
	return card, txns, nil
}
