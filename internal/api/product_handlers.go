package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/syncer"
	"github.com/tarifflyapp/tariffly-server/internal/tagmeta"
)

// ProductItem is one synchronized product with its decoded metadata.
type ProductItem struct {
	Product  domain.Product `json:"product"`
	Metadata MetadataDTO    `json:"metadata"`
}

func productItems(items []syncer.Item) []ProductItem {
	out := make([]ProductItem, 0, len(items))
	for _, it := range items {
		out = append(out, ProductItem{Product: it.Product, Metadata: metadataDTO(it.Meta)})
	}
	return out
}

// ProductListInput walks the full collection with an optional status filter.
type ProductListInput struct {
	Body struct {
		ShopAuth
		Filter string `json:"filter,omitempty" doc:"Status filter: pending, approved or modified; empty matches everything"`
	}
}

// ProductListOutput returns the filtered items and their count.
type ProductListOutput struct {
	Body struct {
		Items []ProductItem `json:"items"`
		Count int           `json:"count" doc:"Number of items returned"`
	}
}

// ProductCountOutput returns only the filtered count.
type ProductCountOutput struct {
	Body struct {
		Count int `json:"count"`
	}
}

// ProductSearchInput searches titles and vendors across the full collection.
type ProductSearchInput struct {
	Body struct {
		ShopAuth
		Term   string `json:"term" minLength:"1" doc:"Case-insensitive search term"`
		Filter string `json:"filter,omitempty" doc:"Status filter applied before matching"`
	}
}

// ProductSearchOutput returns capped matches plus the total match count.
type ProductSearchOutput struct {
	Body struct {
		Items []ProductItem `json:"items"`
		Count int           `json:"count" doc:"Total matches, including those beyond the response cap"`
	}
}

// ProductIDInput addresses one product. Both the bare numeric ID and the
// URI-style global ID are accepted.
type ProductIDInput struct {
	Body struct {
		ShopAuth
		ProductID string `json:"product_id" minLength:"1" doc:"Product ID, numeric or gid form"`
	}
}

// ProductOutput returns one product with its decoded metadata.
type ProductOutput struct {
	Body struct {
		Product  *domain.Product `json:"product"`
		Metadata MetadataDTO     `json:"metadata"`
	}
}

// MetadataSaveInput rewrites a product's metadata tags.
type MetadataSaveInput struct {
	Body struct {
		ShopAuth
		ProductID  string  `json:"product_id" minLength:"1"`
		Code       *string `json:"code,omitempty" doc:"HS code to tag; omit to clear"`
		Confidence *int    `json:"confidence,omitempty" minimum:"0" maximum:"100" doc:"Confidence to tag; omit to clear"`
		Status     string  `json:"status,omitempty" doc:"Review status to tag: pending, approved or modified; omit to clear"`
	}
}

// ProductWriteInput creates or updates a product.
type ProductWriteInput struct {
	Body struct {
		ShopAuth
		ProductID   string   `json:"product_id,omitempty" doc:"Required for update, ignored on create"`
		Title       string   `json:"title,omitempty"`
		BodyHTML    string   `json:"body_html,omitempty"`
		Vendor      string   `json:"vendor,omitempty"`
		ProductType string   `json:"product_type,omitempty"`
		Tags        []string `json:"tags,omitempty"`
	}
}

// MessageOutput acknowledges an operation with no payload.
type MessageOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

func messageOutput(msg string) *MessageOutput {
	resp := &MessageOutput{}
	resp.Body.Message = msg
	return resp
}

// registerProductRoutes registers the catalog synchronization and product
// CRUD endpoints. All of them carry shop credentials in the body.
func (s *Server) registerProductRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "products-list",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/list",
		Summary:     "List products",
		Description: "Walks the shop's full collection page by page and returns items passing the status filter.",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *ProductListInput) (*ProductListOutput, error) {
		items, err := s.services.Products.ListProducts(ctx, input.Body.Creds(), input.Body.Filter)
		if err != nil {
			return nil, huma.Error502BadGateway("Listing products failed", err)
		}
		resp := &ProductListOutput{}
		resp.Body.Items = productItems(items)
		resp.Body.Count = len(resp.Body.Items)
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "products-count",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/count",
		Summary:     "Count products",
		Description: "Walks the shop's full collection and counts items passing the status filter. Defaults to pending when no filter is given.",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *ProductListInput) (*ProductCountOutput, error) {
		filter := input.Body.Filter
		if filter == "" {
			filter = "pending"
		}
		count, err := s.services.Products.CountProducts(ctx, input.Body.Creds(), filter)
		if err != nil {
			return nil, huma.Error502BadGateway("Counting products failed", err)
		}
		resp := &ProductCountOutput{}
		resp.Body.Count = count
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "products-search",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/search",
		Summary:     "Search products",
		Description: "Searches titles and vendors across the full collection. At most 20 items are returned; the count covers every match.",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *ProductSearchInput) (*ProductSearchOutput, error) {
		items, total, err := s.services.Products.SearchProducts(ctx, input.Body.Creds(), input.Body.Filter, input.Body.Term)
		if err != nil {
			return nil, huma.Error502BadGateway("Searching products failed", err)
		}
		resp := &ProductSearchOutput{}
		resp.Body.Items = productItems(items)
		resp.Body.Count = total
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "products-get",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/get",
		Summary:     "Get product",
		Description: "Fetches one product and decodes its metadata tags.",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *ProductIDInput) (*ProductOutput, error) {
		p, md, err := s.services.Products.GetMetadata(ctx, input.Body.Creds(), input.Body.ProductID)
		if err != nil {
			return nil, huma.Error502BadGateway("Fetching product failed", err)
		}
		resp := &ProductOutput{}
		resp.Body.Product = p
		resp.Body.Metadata = metadataDTO(md)
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "products-save-metadata",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/metadata",
		Summary:     "Save product metadata",
		Description: "Rewrites the product's metadata tags from the given values. Omitted fields clear their tag.",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *MetadataSaveInput) (*ProductOutput, error) {
		md := tagmeta.Metadata{
			Code:       input.Body.Code,
			Confidence: input.Body.Confidence,
			Status:     tagmeta.Status(input.Body.Status),
		}
		p, decoded, err := s.services.Products.SaveMetadata(ctx, input.Body.Creds(), input.Body.ProductID, md)
		if err != nil {
			return nil, huma.Error502BadGateway("Saving metadata failed", err)
		}
		resp := &ProductOutput{}
		resp.Body.Product = p
		resp.Body.Metadata = metadataDTO(decoded)
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "products-create",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/create",
		Summary:     "Create product",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *ProductWriteInput) (*ProductOutput, error) {
		p, err := s.services.Products.CreateProduct(ctx, input.Body.Creds(), domain.Product{
			Title:       input.Body.Title,
			BodyHTML:    input.Body.BodyHTML,
			Vendor:      input.Body.Vendor,
			ProductType: input.Body.ProductType,
			Tags:        input.Body.Tags,
		})
		if err != nil {
			return nil, huma.Error502BadGateway("Creating product failed", err)
		}
		resp := &ProductOutput{}
		resp.Body.Product = p
		resp.Body.Metadata = metadataDTO(tagmeta.Decode(p.Tags))
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "products-update",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/update",
		Summary:     "Update product",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *ProductWriteInput) (*ProductOutput, error) {
		p, err := s.services.Products.UpdateProduct(ctx, input.Body.Creds(), domain.Product{
			ID:          input.Body.ProductID,
			Title:       input.Body.Title,
			BodyHTML:    input.Body.BodyHTML,
			Vendor:      input.Body.Vendor,
			ProductType: input.Body.ProductType,
			Tags:        input.Body.Tags,
		})
		if err != nil {
			return nil, huma.Error502BadGateway("Updating product failed", err)
		}
		resp := &ProductOutput{}
		resp.Body.Product = p
		resp.Body.Metadata = metadataDTO(tagmeta.Decode(p.Tags))
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "products-delete",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/delete",
		Summary:     "Delete product",
		Tags:        []string{"Products"},
	}, func(ctx context.Context, input *ProductIDInput) (*MessageOutput, error) {
		if err := s.services.Products.DeleteProduct(ctx, input.Body.Creds(), input.Body.ProductID); err != nil {
			return nil, huma.Error502BadGateway("Deleting product failed", err)
		}
		return messageOutput("product deleted"), nil
	})

	s.registerImageRoutes()
}
