package persistence

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/storeadmin/backend/internal/domain/catalog"
	"github.com/storeadmin/backend/internal/domain/identity"
	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/domain/shared/valueobject"
	"github.com/storeadmin/backend/internal/domain/trade"
)

// Collection names
const (
	CollectionCategories = "categories"
	CollectionBrands     = "brands"
	CollectionProducts   = "products"
	CollectionOrders     = "orders"
	CollectionUsers      = "users"
	CollectionAdmins     = "admins"
	CollectionPackage    = "package"
)

func favoritesCollection(userID string) string {
	return CollectionUsers + "/" + userID + "/favorites"
}

// Category

func encodeCategory(c *catalog.Category) map[string]any {
	return map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"imagePath":   c.ImagePath,
	}
}

func decodeCategory(id string, data map[string]any) (*catalog.Category, error) {
	return &catalog.Category{
		BaseEntity:  shared.BaseEntity{ID: id},
		Name:        cast.ToString(data["name"]),
		Description: cast.ToString(data["description"]),
		ImagePath:   cast.ToString(data["imagePath"]),
	}, nil
}

// Brand

func encodeBrand(b *catalog.Brand) map[string]any {
	return map[string]any{
		"name":        b.Name,
		"description": b.Description,
	}
}

func decodeBrand(id string, data map[string]any) (*catalog.Brand, error) {
	return &catalog.Brand{
		BaseEntity:  shared.BaseEntity{ID: id},
		Name:        cast.ToString(data["name"]),
		Description: cast.ToString(data["description"]),
	}, nil
}

// Product

func encodeProduct(p *catalog.Product) map[string]any {
	paths := make([]any, len(p.ImagePaths))
	for i, path := range p.ImagePaths {
		paths[i] = path
	}
	return map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"categoryId":  p.CategoryID,
		"brandId":     p.BrandID,
		"price":       p.Price.InexactFloat64(),
		"featured":    p.Featured,
		"imagePaths":  paths,
	}
}

func decodeProduct(id string, data map[string]any) (*catalog.Product, error) {
	price, err := decodeDecimal(data["price"])
	if err != nil {
		return nil, fmt.Errorf("product %s: price: %w", id, err)
	}
	paths, err := cast.ToStringSliceE(orEmptySlice(data["imagePaths"]))
	if err != nil {
		return nil, fmt.Errorf("product %s: imagePaths: %w", id, err)
	}
	return &catalog.Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(id),
		Name:              cast.ToString(data["name"]),
		Description:       cast.ToString(data["description"]),
		CategoryID:        cast.ToString(data["categoryId"]),
		BrandID:           cast.ToString(data["brandId"]),
		Price:             price,
		Featured:          cast.ToBool(data["featured"]),
		ImagePaths:        paths,
	}, nil
}

// Order

func encodeOrder(o *trade.Order) map[string]any {
	items := make([]any, len(o.Items))
	for i, item := range o.Items {
		items[i] = map[string]any{
			"productId": item.ProductID,
			"quantity":  int64(item.Quantity),
		}
	}
	return map[string]any{
		"orderId":       o.OrderNumber,
		"orderStatus":   string(o.Status),
		"orderDate":     o.Date,
		"totalPaid":     o.Total.InexactFloat64(),
		"userId":        o.UserID,
		"customerEmail": o.CustomerEmail,
		"addressOne":    o.Shipping.Line1,
		"addressTwo":    o.Shipping.Line2,
		"country":       o.Shipping.Country,
		"zipCode":       o.Shipping.ZipCode,
		"phone":         o.Shipping.Phone,
		"products":      items,
	}
}

func decodeOrder(id string, data map[string]any) (*trade.Order, error) {
	status, err := trade.ParseOrderStatus(cast.ToString(data["orderStatus"]))
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", id, err)
	}
	total, err := decodeDecimal(data["totalPaid"])
	if err != nil {
		return nil, fmt.Errorf("order %s: totalPaid: %w", id, err)
	}
	date, err := decodeTime(data["orderDate"])
	if err != nil {
		return nil, fmt.Errorf("order %s: orderDate: %w", id, err)
	}

	rawItems, err := cast.ToSliceE(orEmptySlice(data["products"]))
	if err != nil {
		return nil, fmt.Errorf("order %s: products: %w", id, err)
	}
	items := make([]trade.LineItem, 0, len(rawItems))
	for i, raw := range rawItems {
		m, err := cast.ToStringMapE(raw)
		if err != nil {
			return nil, fmt.Errorf("order %s: products[%d]: %w", id, i, err)
		}
		items = append(items, trade.LineItem{
			ProductID: cast.ToString(m["productId"]),
			Quantity:  cast.ToInt(m["quantity"]),
		})
	}

	return &trade.Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(id),
		OrderNumber:       cast.ToString(data["orderId"]),
		Status:            status,
		Date:              date,
		Total:             total,
		UserID:            cast.ToString(data["userId"]),
		CustomerEmail:     cast.ToString(data["customerEmail"]),
		Shipping: valueobject.ShippingAddress{
			Line1:   cast.ToString(data["addressOne"]),
			Line2:   cast.ToString(data["addressTwo"]),
			Country: cast.ToString(data["country"]),
			ZipCode: cast.ToString(data["zipCode"]),
			Phone:   cast.ToString(data["phone"]),
		},
		Items: items,
	}, nil
}

// User

func encodeUser(u *identity.User) map[string]any {
	return map[string]any{
		"username":     u.Username,
		"email":        u.Email,
		"phone":        u.Phone,
		"userImageUrl": u.ImageURL,
		"userStatus":   u.Online,
	}
}

func decodeUser(id string, data map[string]any) (*identity.User, error) {
	return &identity.User{
		BaseEntity: shared.BaseEntity{ID: id},
		Username:   cast.ToString(data["username"]),
		Email:      cast.ToString(data["email"]),
		Phone:      cast.ToString(data["phone"]),
		ImageURL:   cast.ToString(data["userImageUrl"]),
		Online:     cast.ToBool(data["userStatus"]),
	}, nil
}

// Admin

func encodeAdmin(a *identity.Admin) map[string]any {
	return map[string]any{
		"superAdmin": a.SuperAdmin,
	}
}

func decodeAdmin(id string, data map[string]any) (*identity.Admin, error) {
	return &identity.Admin{
		BaseEntity: shared.BaseEntity{ID: id},
		SuperAdmin: cast.ToBool(data["superAdmin"]),
	}, nil
}

// Field coercion

func decodeDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return t, nil
	case string:
		if t == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(t)
	case int64:
		return decimal.NewFromInt(t), nil
	case float64:
		return decimal.NewFromFloat(t), nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(f), nil
}

func decodeTime(v any) (time.Time, error) {
	if v == nil {
		return time.Time{}, nil
	}
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	return cast.ToTimeE(v)
}

func orEmptySlice(v any) any {
	if v == nil {
		return []any{}
	}
	return v
}
