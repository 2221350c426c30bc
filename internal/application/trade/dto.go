package trade

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/storeadmin/backend/internal/domain/catalog"
	"github.com/storeadmin/backend/internal/domain/identity"
	"github.com/storeadmin/backend/internal/domain/trade"
)

// ==================== Order DTOs ====================

// OrderListFilter represents the query of an order listing.
// A search of at least three characters wins over the status filter.
type OrderListFilter struct {
	Status string `form:"status" binding:"omitempty,oneof=Pending Processing Shipped Delivered Canceled"`
	Search string `form:"search"`
}

// LineItemResponse represents one product entry of an order
type LineItemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddressResponse represents the shipping address of an order
type AddressResponse struct {
	AddressOne string `json:"address_one"`
	AddressTwo string `json:"address_two"`
	Country    string `json:"country"`
	ZipCode    string `json:"zip_code"`
	Phone      string `json:"phone"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              string             `json:"id"`
	OrderNumber     string             `json:"order_number"`
	Status          string             `json:"status"`
	Date            time.Time          `json:"date"`
	Total           decimal.Decimal    `json:"total"`
	UserID          string             `json:"user_id"`
	CustomerEmail   string             `json:"customer_email"`
	Shipping        AddressResponse    `json:"shipping"`
	Items           []LineItemResponse `json:"items"`
	StepIndex       int                `json:"step_index"`
	NextActionLabel string             `json:"next_action_label"`
	CanCancel       bool               `json:"can_cancel"`
}

// UserSummary is the customer shown next to an order
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	ImageURL string `json:"image_url"`
	Online   bool   `json:"online"`
}

// OrderDetailResponse is an order with its customer. User is nil when the
// user document does not exist.
type OrderDetailResponse struct {
	OrderResponse
	User *UserSummary `json:"user"`
}

// ProductSummary is the product shown on an order line
type ProductSummary struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	CategoryName string          `json:"category_name"`
	BrandName    string          `json:"brand_name"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     string          `json:"image_url"`
}

// ToOrderResponse converts an order to its response
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]LineItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = LineItemResponse{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status.String(),
		Date:          o.Date,
		Total:         o.Total,
		UserID:        o.UserID,
		CustomerEmail: o.CustomerEmail,
		Shipping: AddressResponse{
			AddressOne: o.Shipping.Line1,
			AddressTwo: o.Shipping.Line2,
			Country:    o.Shipping.Country,
			ZipCode:    o.Shipping.ZipCode,
			Phone:      o.Shipping.Phone,
		},
		Items:           items,
		StepIndex:       o.Status.StepIndex(),
		NextActionLabel: o.Status.NextActionLabel(),
		CanCancel:       o.Status.CanCancel(),
	}
}

// ToUserSummary converts a user to its summary
func ToUserSummary(u *identity.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		ImageURL: u.ImageURL,
		Online:   u.Online,
	}
}

// ToProductSummary converts a resolved product to its summary.
// The first image is the product thumbnail.
func ToProductSummary(p *catalog.Product) *ProductSummary {
	if p == nil {
		return nil
	}
	s := &ProductSummary{
		ID:           p.ID,
		Name:         p.Name,
		CategoryName: p.CategoryName,
		BrandName:    p.BrandName,
		Price:        p.Price,
	}
	if len(p.Images) > 0 {
		s.ImageURL = p.Images[0].URL
	}
	return s
}
