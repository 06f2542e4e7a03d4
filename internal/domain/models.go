package domain

import "time"

// Order and order item statuses are stored as small integers, matching the
// values used in the public API.
type OrderStatus int

const (
	OrderCancelled  OrderStatus = 0
	OrderCreated    OrderStatus = 1
	OrderPaid       OrderStatus = 2
	OrderProcessing OrderStatus = 3
	OrderDone       OrderStatus = 4
)

func (s OrderStatus) String() string {
	switch s {
	case OrderCancelled:
		return "Cancelled"
	case OrderCreated:
		return "Created"
	case OrderPaid:
		return "Paid"
	case OrderProcessing:
		return "Processing"
	case OrderDone:
		return "Done"
	}
	return "Unknown"
}

type ItemStatus int

const (
	ItemCancelled ItemStatus = 0
	ItemCreated   ItemStatus = 1
	ItemPaid      ItemStatus = 2
	ItemSent      ItemStatus = 3
	ItemReceived  ItemStatus = 4
)

func (s ItemStatus) String() string {
	switch s {
	case ItemCancelled:
		return "Cancelled"
	case ItemCreated:
		return "Created"
	case ItemPaid:
		return "Paid"
	case ItemSent:
		return "Sent"
	case ItemReceived:
		return "Received"
	}
	return "Unknown"
}

// Terminal reports whether no further transition is allowed for the item.
func (s ItemStatus) Terminal() bool {
	return s == ItemCancelled || s == ItemReceived
}

const (
	TxnDeposit    = "Deposit"
	TxnPurchase   = "Purchase"
	TxnSale       = "Sale"
	TxnCommission = "Commission"
)

const (
	TxnStatusPending  = "Pending"
	TxnStatusSuccess  = "Success"
	TxnStatusCanceled = "Canceled"
)

type User struct {
	ID          int       `db:"id"`
	Login       string    `db:"login"`
	FirstName   string    `db:"first_name"`
	PhoneNumber string    `db:"phone_number"`
	Email       string    `db:"email"`
	CreatedAt   time.Time `db:"created_at"`
}

type Address struct {
	ID        int       `db:"id"`
	UserID    *int      `db:"user_id"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}

// Card is the buyer payment account. Balance is in integer minor currency
// units and never goes negative; every change is backed by a Transaction row.
type Card struct {
	ID         int       `db:"id"`
	UUID       string    `db:"uuid"`
	UserID     *int      `db:"user_id"`
	CardNumber string    `db:"card_number"`
	Balance    int64     `db:"balance"`
	CreatedAt  time.Time `db:"created_at"`
}

type Store struct {
	ID        int       `db:"id"`
	Slug      string    `db:"slug"`
	Title     string    `db:"title"`
	OwnerID   int       `db:"owner_id"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
}

// Product carries the catalog fields checkout and settlement need.
// InStock == nil means the product does not track stock and is never
// decremented.
type Product struct {
	ID       int    `db:"id"`
	StoreID  int    `db:"store_id"`
	Title    string `db:"title"`
	Price    int64  `db:"price"`
	Discount *int   `db:"discount"`
	InStock  *int   `db:"in_stock"`
	IsActive bool   `db:"is_active"`
}

// RealPrice is the unit price after the active discount, if any.
func (p *Product) RealPrice() int64 {
	if p.Discount == nil || *p.Discount == 0 {
		return p.Price
	}
	return p.Price - RoundHalfEven(p.Price*int64(*p.Discount), 100)
}

// RoundHalfEven divides n by d rounding halves to the nearest even quotient,
// so repeated money splits do not drift in either direction. Discount and
// commission amounts both go through it.
func RoundHalfEven(n, d int64) int64 {
	q := n / d
	r := n % d
	switch {
	case 2*r < d:
		return q
	case 2*r > d:
		return q + 1
	case q%2 == 0:
		return q
	default:
		return q + 1
	}
}

// Transaction is an immutable ledger record. Only the status of a Pending
// deposit ever changes after creation.
type Transaction struct {
	ID          int       `db:"id"`
	UUID        string    `db:"uuid"`
	CardID      *int      `db:"card_id"`
	Type        string    `db:"type"`
	Amount      int64     `db:"amount"`
	Status      string    `db:"status"`
	OrderID     *int      `db:"order_id"`
	OrderItemID *int      `db:"order_item_id"`
	SellerID    *int      `db:"seller_id"`
	CreatedAt   time.Time `db:"created_at"`
}

type Order struct {
	ID              int         `db:"id"`
	Slug            string      `db:"slug"`
	CustomerID      *int        `db:"customer_id"`
	Name            string      `db:"name"`
	PhoneNumber     string      `db:"phone_number"`
	Email           string      `db:"email"`
	AddressID       int         `db:"address_id"`
	CardID          int         `db:"card_id"`
	TotalOrderPrice int64       `db:"total_order_price"`
	Status          OrderStatus `db:"status"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`

	Items []OrderItem `db:"-"`
}

type OrderItem struct {
	ID        int        `db:"id"`
	Slug      string     `db:"slug"`
	OrderID   int        `db:"order_id"`
	ProductID int        `db:"product_id"`
	SellerID  int        `db:"seller_id"`
	Quantity  int        `db:"quantity"`
	Price     int64      `db:"price"`
	Status    ItemStatus `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

func (i *OrderItem) TotalPrice() int64 {
	return int64(i.Quantity) * i.Price
}
