package orderrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/VladisB/cosmarket/internal/domain"
	"github.com/VladisB/cosmarket/internal/pg"
	"go.uber.org/zap"
)

const maxSlugAttempts = 5

var ErrSlugExhausted = errors.New("can't generate a unique slug")

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

const orderColumns = `id, slug, customer_id, name, phone_number, email, address_id, card_id, total_order_price, status, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(&order.ID, &order.Slug, &order.CustomerID, &order.Name, &order.PhoneNumber,
		&order.Email, &order.AddressID, &order.CardID, &order.TotalOrderPrice, &order.Status,
		&order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't scan order", zap.Error(err))
		return nil, err
	}
	return &order, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create persists the order and its items in one transaction. Slugs are
// random digit strings regenerated on collision, invisible to the caller.
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		if err := r.insertOrder(ctx, order); err != nil {
			return err
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			if err := r.insertItem(ctx, &order.Items[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) insertOrder(ctx context.Context, order *domain.Order) error {
	query := `
        INSERT INTO orders (slug, customer_id, name, phone_number, email, address_id, card_id, total_order_price, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at
    `
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		order.Slug = newOrderSlug()
		err := r.db.QueryRow(ctx, query, order.Slug, order.CustomerID, order.Name, order.PhoneNumber,
			order.Email, order.AddressID, order.CardID, order.TotalOrderPrice, order.Status).
			Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			zap.L().Error("can't save order", zap.Error(err))
			return err
		}
		return nil
	}
	return ErrSlugExhausted
}

func (r *Repository) insertItem(ctx context.Context, item *domain.OrderItem) error {
	query := `
        INSERT INTO order_items (slug, order_id, product_id, quantity, price, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at
    `
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		item.Slug = newItemSlug()
		err := r.db.QueryRow(ctx, query, item.Slug, item.OrderID, item.ProductID, item.Quantity,
			item.Price, item.Status).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			zap.L().Error("can't save order item", zap.Error(err))
			return err
		}
		return nil
	}
	return ErrSlugExhausted
}

func (r *Repository) GetBySlug(ctx context.Context, slug string) (*domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE slug = $1
    `
	order, err := scanOrder(r.db.QueryRow(ctx, query, slug))
	if err != nil || order == nil {
		return order, err
	}
	if order.Items, err = r.loadItems(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

// GetBySlugForUpdate locks the order row so concurrent settlements of the
// same order serialize on the status guard.
func (r *Repository) GetBySlugForUpdate(ctx context.Context, slug string) (*domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE slug = $1
        FOR UPDATE
    `
	order, err := scanOrder(r.db.QueryRow(ctx, query, slug))
	if err != nil || order == nil {
		return order, err
	}
	if order.Items, err = r.loadItems(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *Repository) loadItems(ctx context.Context, orderID int) ([]domain.OrderItem, error) {
	query := `
        SELECT i.id, i.slug, i.order_id, i.product_id, p.store_id, i.quantity, i.price, i.status, i.created_at, i.updated_at
        FROM order_items i
        JOIN products p ON p.id = i.product_id
        WHERE i.order_id = $1
        ORDER BY i.id
    `
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		zap.L().Error("can't get order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(&item.ID, &item.Slug, &item.OrderID, &item.ProductID, &item.SellerID,
			&item.Quantity, &item.Price, &item.Status, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			zap.L().Error("can't scan order item row", zap.Error(err))
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) GetOrdersByCustomer(ctx context.Context, userID int) ([]domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE customer_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		err := rows.Scan(&order.ID, &order.Slug, &order.CustomerID, &order.Name, &order.PhoneNumber,
			&order.Email, &order.AddressID, &order.CardID, &order.TotalOrderPrice, &order.Status,
			&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			zap.L().Error("can't scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, orderID int, status domain.OrderStatus) error {
	query := `
        UPDATE orders
        SET status = $1, updated_at = now()
        WHERE id = $2
    `
	if _, err := r.db.Exec(ctx, query, status, orderID); err != nil {
		zap.L().Error("can't update order status", zap.Error(err))
		return err
	}
	return nil
}

// GetItemBySlugForSeller resolves a seller-addressed item: the item must
// belong to a product of the given store.
func (r *Repository) GetItemBySlugForSeller(ctx context.Context, itemSlug string, storeID int) (*domain.OrderItem, error) {
	query := `
        SELECT i.id, i.slug, i.order_id, i.product_id, p.store_id, i.quantity, i.price, i.status, i.created_at, i.updated_at
        FROM order_items i
        JOIN products p ON p.id = i.product_id
        WHERE i.slug = $1 AND p.store_id = $2
    `
	var item domain.OrderItem
	err := r.db.QueryRow(ctx, query, itemSlug, storeID).Scan(&item.ID, &item.Slug, &item.OrderID,
		&item.ProductID, &item.SellerID, &item.Quantity, &item.Price, &item.Status,
		&item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get order item", zap.Error(err))
		return nil, err
	}
	return &item, nil
}

func (r *Repository) UpdateItemStatus(ctx context.Context, itemID int, status domain.ItemStatus) error {
	query := `
        UPDATE order_items
        SET status = $1, updated_at = now()
        WHERE id = $2
    `
	if _, err := r.db.Exec(ctx, query, status, itemID); err != nil {
		zap.L().Error("can't update order item status", zap.Error(err))
		return err
	}
	return nil
}

// SetItemsStatus moves every item of an order at once; settlement uses it to
// mark all items Paid.
func (r *Repository) SetItemsStatus(ctx context.Context, orderID int, status domain.ItemStatus) error {
	query := `
        UPDATE order_items
        SET status = $1, updated_at = now()
        WHERE order_id = $2
    `
	if _, err := r.db.Exec(ctx, query, status, orderID); err != nil {
		zap.L().Error("can't update order items status", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) GetItemStatuses(ctx context.Context, orderID int) ([]domain.ItemStatus, error) {
	query := `
        SELECT status
        FROM order_items
        WHERE order_id = $1
    `
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		zap.L().Error("can't get order item statuses", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var statuses []domain.ItemStatus
	for rows.Next() {
		var s domain.ItemStatus
		if err := rows.Scan(&s); err != nil {
			zap.L().Error("can't scan order item status", zap.Error(err))
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE id = $1
    `
	return scanOrder(r.db.QueryRow(ctx, query, id))
}
