package dto

import (
	"time"

	"github.com/VladisB/cosmarket/internal/domain"
)

type CheckoutItemDTO struct {
	ProductID int `json:"product_id" example:"10"`
	Quantity  int `json:"quantity" example:"2"`
}

// CheckoutRequestDTO carries the materialized cart plus the buyer's contact,
// address and payment selections. Either the saved ids or the raw values may
// be supplied; raw values create ownerless records.
type CheckoutRequestDTO struct {
	Items       []CheckoutItemDTO `json:"items"`
	Name        string            `json:"name" example:"Anna"`
	PhoneNumber string            `json:"phone_number" example:"+79261234567"`
	Email       string            `json:"email" example:"anna@example.com"`
	AddressID   *int              `json:"address_id,omitempty" example:"3"`
	Address     string            `json:"address,omitempty" example:"Moscow, Arbat st. 1"`
	CardID      *int              `json:"card_id,omitempty" example:"5"`
	CardNumber  string            `json:"card_number,omitempty" example:"4561261212345467"`
}

type OrderItemResponseDTO struct {
	Slug       string `json:"slug" example:"1234567890"`
	ProductID  int    `json:"product_id" example:"10"`
	Quantity   int    `json:"quantity" example:"2"`
	Price      int64  `json:"price" example:"1500"`
	TotalPrice int64  `json:"total_price" example:"3000"`
	Status     string `json:"status" example:"Created"`
}

type OrderResponseDTO struct {
	Slug            string                 `json:"slug" example:"12345678-9012"`
	Items           []OrderItemResponseDTO `json:"items"`
	TotalOrderPrice int64                  `json:"total_order_price" example:"3000"`
	Status          string                 `json:"status" example:"Created"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func NewOrderResponse(order *domain.Order) OrderResponseDTO {
	resp := OrderResponseDTO{
		Slug:            order.Slug,
		TotalOrderPrice: order.TotalOrderPrice,
		Status:          order.Status.String(),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, OrderItemResponseDTO{
			Slug:       item.Slug,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			Price:      item.Price,
			TotalPrice: item.TotalPrice(),
			Status:     item.Status.String(),
		})
	}
	return resp
}
