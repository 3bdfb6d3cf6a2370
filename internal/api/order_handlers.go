package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
)

// OrderListInput fetches one page of orders.
type OrderListInput struct {
	Body struct {
		ShopAuth
		PageToken string `json:"page_token,omitempty" doc:"Opaque cursor from a previous page"`
		PageSize  int    `json:"page_size,omitempty" minimum:"0" maximum:"250"`
	}
}

// OrderListOutput returns a page of orders and the cursor for the next one.
type OrderListOutput struct {
	Body struct {
		Orders        []domain.Order `json:"orders"`
		NextPageToken string         `json:"next_page_token,omitempty" doc:"Empty when no further pages exist"`
	}
}

// OrderGetInput addresses one order.
type OrderGetInput struct {
	Body struct {
		ShopAuth
		OrderID string `json:"order_id" minLength:"1"`
	}
}

// OrderOutput returns one order.
type OrderOutput struct {
	Body struct {
		Order *domain.Order `json:"order"`
	}
}

// registerOrderRoutes registers the order read endpoints. Orders pass
// through opaquely; the server never mutates them.
func (s *Server) registerOrderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "orders-list",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders/list",
		Summary:     "List orders",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, input *OrderListInput) (*OrderListOutput, error) {
		orders, next, err := s.services.Products.ListOrders(ctx, input.Body.Creds(), input.Body.PageToken, input.Body.PageSize)
		if err != nil {
			return nil, huma.Error502BadGateway("Listing orders failed", err)
		}
		resp := &OrderListOutput{}
		resp.Body.Orders = orders
		resp.Body.NextPageToken = next
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "orders-get",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders/get",
		Summary:     "Get order",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, input *OrderGetInput) (*OrderOutput, error) {
		order, err := s.services.Products.GetOrder(ctx, input.Body.Creds(), input.Body.OrderID)
		if err != nil {
			return nil, huma.Error502BadGateway("Fetching order failed", err)
		}
		resp := &OrderOutput{}
		resp.Body.Order = order
		return resp, nil
	})
}
