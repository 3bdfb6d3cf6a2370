package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/service"
)

// ImageListOutput returns a product's images.
type ImageListOutput struct {
	Body struct {
		Images []domain.ProductImage `json:"images"`
	}
}

// ImageCreateInput attaches an image by source URL or base64 attachment.
type ImageCreateInput struct {
	Body struct {
		ShopAuth
		ProductID  string `json:"product_id" minLength:"1"`
		Src        string `json:"src,omitempty" doc:"Image source URL"`
		Attachment string `json:"attachment,omitempty" doc:"Base64 image payload, 20MB decoded cap"`
		Alt        string `json:"alt,omitempty"`
	}
}

// ImageUpdateInput moves an image or changes its alt text.
type ImageUpdateInput struct {
	Body struct {
		ShopAuth
		ProductID string `json:"product_id" minLength:"1"`
		ImageID   string `json:"image_id" minLength:"1"`
		Position  int    `json:"position,omitempty" minimum:"0"`
		Alt       string `json:"alt,omitempty"`
	}
}

// ImageDeleteInput removes an image from a product.
type ImageDeleteInput struct {
	Body struct {
		ShopAuth
		ProductID string `json:"product_id" minLength:"1"`
		ImageID   string `json:"image_id" minLength:"1"`
	}
}

// ImageOutput returns one image.
type ImageOutput struct {
	Body struct {
		Image *domain.ProductImage `json:"image"`
	}
}

// registerImageRoutes registers the product image endpoints.
func (s *Server) registerImageRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "images-list",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/images/list",
		Summary:     "List product images",
		Tags:        []string{"Images"},
	}, func(ctx context.Context, input *ProductIDInput) (*ImageListOutput, error) {
		images, err := s.services.Products.ListImages(ctx, input.Body.Creds(), input.Body.ProductID)
		if err != nil {
			return nil, huma.Error502BadGateway("Listing images failed", err)
		}
		resp := &ImageListOutput{}
		resp.Body.Images = images
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "images-create",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/images/create",
		Summary:     "Attach product image",
		Description: "Attaches an image by source URL or base64 attachment. Exactly one of src and attachment is required.",
		Tags:        []string{"Images"},
	}, func(ctx context.Context, input *ImageCreateInput) (*ImageOutput, error) {
		image, err := s.services.Products.CreateImage(ctx, input.Body.Creds(), service.CreateImageRequest{
			ProductID:  input.Body.ProductID,
			Src:        input.Body.Src,
			Attachment: input.Body.Attachment,
			Alt:        input.Body.Alt,
		})
		if err != nil {
			return nil, huma.Error502BadGateway("Creating image failed", err)
		}
		resp := &ImageOutput{}
		resp.Body.Image = image
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "images-update",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/images/update",
		Summary:     "Update product image",
		Tags:        []string{"Images"},
	}, func(ctx context.Context, input *ImageUpdateInput) (*ImageOutput, error) {
		image, err := s.services.Products.UpdateImage(ctx, input.Body.Creds(), input.Body.ProductID, input.Body.ImageID, input.Body.Position, input.Body.Alt)
		if err != nil {
			return nil, huma.Error502BadGateway("Updating image failed", err)
		}
		resp := &ImageOutput{}
		resp.Body.Image = image
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "images-delete",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/images/delete",
		Summary:     "Delete product image",
		Tags:        []string{"Images"},
	}, func(ctx context.Context, input *ImageDeleteInput) (*MessageOutput, error) {
		if err := s.services.Products.DeleteImage(ctx, input.Body.Creds(), input.Body.ProductID, input.Body.ImageID); err != nil {
			return nil, huma.Error502BadGateway("Deleting image failed", err)
		}
		return messageOutput("image deleted"), nil
	})
}
