package orderservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/VladisB/cosmarket/internal/domain"
	"github.com/VladisB/cosmarket/internal/pg"
	"github.com/VladisB/cosmarket/pkg/metrics"
	"github.com/VladisB/cosmarket/pkg/validate"
	"go.uber.org/zap"
)

type OrderRepo interface {
	Create(ctx context.Context, order *domain.Order) error
	GetBySlug(ctx context.Context, slug string) (*domain.Order, error)
	GetByID(ctx context.Context, id int) (*domain.Order, error)
	GetOrdersByCustomer(ctx context.Context, userID int) ([]domain.Order, error)
	GetItemBySlugForSeller(ctx context.Context, itemSlug string, storeID int) (*domain.OrderItem, error)
	UpdateItemStatus(ctx context.Context, itemID int, status domain.ItemStatus) error
	GetItemStatuses(ctx context.Context, orderID int) ([]domain.ItemStatus, error)
	UpdateStatus(ctx context.Context, orderID int, status domain.OrderStatus) error
}

type ProductRepo interface {
	GetByID(ctx context.Context, id int) (*domain.Product, error)
}

type CardRepo interface {
	GetByID(ctx context.Context, id int) (*domain.Card, error)
	Create(ctx context.Context, userID *int, cardNumber string) (*domain.Card, error)
}

type UserRepo interface {
	GetAddressByID(ctx context.Context, id int) (*domain.Address, error)
	CreateAddress(ctx context.Context, userID *int, address string) (*domain.Address, error)
	GetUserByID(ctx context.Context, id int) (*domain.User, error)
}

type StoreRepo interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Store, error)
}

type Notifier interface {
	OrderCreated(order *domain.Order)
	ItemStatusChanged(order *domain.Order, item *domain.OrderItem)
}

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrOwnership     = errors.New("referenced card or address belongs to another user")
	ErrForbidden     = errors.New("not allowed to manage this store")
	ErrStoreNotFound = errors.New("store not found")
	ErrOrderNotFound = errors.New("order not found")
	ErrItemNotFound  = errors.New("order item not found")
	ErrInvalidStatus = errors.New("invalid status value")
	ErrSameStatus    = errors.New("the new status is the same as the current status")
	ErrItemFinal     = errors.New("order item is in a terminal status")
)

// ValidationError reports a bad input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// CartLine is one materialized cart position. The unit price is captured
// from the catalog during checkout, never recomputed later.
type CartLine struct {
	ProductID int
	Quantity  int
}

// CheckoutInput is the validated form of a checkout request.
type CheckoutInput struct {
	Items       []CartLine
	Name        string
	PhoneNumber string
	Email       string
	AddressID   *int
	Address     string
	CardID      *int
	CardNumber  string
}

type Service struct {
	orderRepo   OrderRepo
	productRepo ProductRepo
	cardRepo    CardRepo
	userRepo    UserRepo
	storeRepo   StoreRepo
	txManager   pg.TXManager
	notifier    Notifier
}

func New(orderRepo OrderRepo, productRepo ProductRepo, cardRepo CardRepo, userRepo UserRepo,
	storeRepo StoreRepo, txManager pg.TXManager, notifier Notifier) *Service {
	return &Service{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cardRepo:    cardRepo,
		userRepo:    userRepo,
		storeRepo:   storeRepo,
		txManager:   txManager,
		notifier:    notifier,
	}
}

// Checkout turns a cart snapshot into a persisted order in status Created.
// Anonymous card/address records are created before the order transaction,
// the order and its items are committed atomically, and the "order created"
// notification is fired after commit.
func (s *Service) Checkout(ctx context.Context, userID *int, in CheckoutInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}

	if err := s.fillContactDefaults(ctx, userID, &in); err != nil {
		return nil, err
	}
	if err := validateContact(&in); err != nil {
		return nil, err
	}

	address, err := s.resolveAddress(ctx, userID, &in)
	if err != nil {
		return nil, err
	}
	card, err := s.resolveCard(ctx, userID, &in)
	if err != nil {
		return nil, err
	}

	items, total, err := s.buildItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		CustomerID:      userID,
		Name:            in.Name,
		PhoneNumber:     in.PhoneNumber,
		Email:           in.Email,
		AddressID:       address.ID,
		CardID:          card.ID,
		TotalOrderPrice: total,
		Status:          domain.OrderCreated,
		Items:           items,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		zap.L().Error("can't create order", zap.Error(err))
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	s.notifier.OrderCreated(order)

	return order, nil
}

// fillContactDefaults pulls missing contact fields from the authenticated
// buyer's profile; anonymous buyers must supply everything.
func (s *Service) fillContactDefaults(ctx context.Context, userID *int, in *CheckoutInput) error {
	if userID == nil || (in.Name != "" && in.PhoneNumber != "" && in.Email != "") {
		return nil
	}
	user, err := s.userRepo.GetUserByID(ctx, *userID)
	if err != nil {
		return err
	}
	if user == nil {
		return &ValidationError{Field: "customer", Msg: "unknown user"}
	}
	if in.Name == "" {
		in.Name = user.FirstName
	}
	if in.PhoneNumber == "" {
		in.PhoneNumber = user.PhoneNumber
	}
	if in.Email == "" {
		in.Email = user.Email
	}
	return nil
}

func validateContact(in *CheckoutInput) error {
	if !validate.IsName(in.Name) {
		return &ValidationError{Field: "name", Msg: "incorrect name format"}
	}
	if !validate.IsPhoneNumber(in.PhoneNumber) {
		return &ValidationError{Field: "phone_number", Msg: "incorrect phone number format"}
	}
	if !validate.IsEmail(in.Email) {
		return &ValidationError{Field: "email", Msg: "incorrect email format"}
	}
	return nil
}

func (s *Service) resolveAddress(ctx context.Context, userID *int, in *CheckoutInput) (*domain.Address, error) {
	if in.AddressID != nil {
		address, err := s.userRepo.GetAddressByID(ctx, *in.AddressID)
		if err != nil {
			return nil, err
		}
		if address == nil {
			return nil, &ValidationError{Field: "address_id", Msg: "unknown address"}
		}
		if address.UserID != nil && (userID == nil || *address.UserID != *userID) {
			return nil, ErrOwnership
		}
		return address, nil
	}

	if in.Address == "" {
		return nil, &ValidationError{Field: "address", Msg: "address is required"}
	}
	return s.userRepo.CreateAddress(ctx, userID, in.Address)
}

func (s *Service) resolveCard(ctx context.Context, userID *int, in *CheckoutInput) (*domain.Card, error) {
	if in.CardID != nil {
		card, err := s.cardRepo.GetByID(ctx, *in.CardID)
		if err != nil {
			return nil, err
		}
		if card == nil {
			return nil, &ValidationError{Field: "card_id", Msg: "unknown card"}
		}
		if card.UserID != nil && (userID == nil || *card.UserID != *userID) {
			return nil, ErrOwnership
		}
		return card, nil
	}

	if !validate.IsCardNumber(in.CardNumber) {
		return nil, &ValidationError{Field: "card_number", Msg: "incorrect card number format"}
	}
	return s.cardRepo.Create(ctx, userID, in.CardNumber)
}

// buildItems snapshots the catalog price of every line. The snapshot is the
// post-discount price; later catalog changes do not affect the order.
func (s *Service) buildItems(ctx context.Context, lines []CartLine) ([]domain.OrderItem, int64, error) {
	items := make([]domain.OrderItem, 0, len(lines))
	var total int64
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, 0, &ValidationError{Field: "quantity", Msg: "quantity must be positive"}
		}
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, 0, err
		}
		if product == nil || !product.IsActive {
			return nil, 0, &ValidationError{Field: "product_id", Msg: fmt.Sprintf("product %d is not available", line.ProductID)}
		}

		price := product.RealPrice()
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			SellerID:  product.StoreID,
			Quantity:  line.Quantity,
			Price:     price,
			Status:    domain.ItemCreated,
		})
		total += int64(line.Quantity) * price
	}
	return items, total, nil
}

func (s *Service) GetOrder(ctx context.Context, userID *int, slug string) (*domain.Order, error) {
	order, err := s.orderRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.CustomerID != nil && (userID == nil || *order.CustomerID != *userID) {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *Service) GetOrders(ctx context.Context, userID int) ([]domain.Order, error) {
	orders, err := s.orderRepo.GetOrdersByCustomer(ctx, userID)
	if err != nil {
		zap.L().Error("can't get orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}
