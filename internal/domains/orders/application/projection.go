package application

import (
	"github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-service/internal/domains/orders/domain"
)

func toResponse(order *domain.Order, message string) *types.OrderResponse {
	items := make([]types.ItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, types.ItemView{
			SKUCode:   item.SKUCode,
			Quantity:  item.Quantity,
			Price:     item.Price,
			LineTotal: item.LineTotal(),
		})
	}
	return &types.OrderResponse{
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Message:     message,
		Total:       order.Total(),
		Items:       items,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
		Version:     order.Version,
	}
}
