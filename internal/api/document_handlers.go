package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tarifflyapp/tariffly-server/internal/documents"
)

// DocumentUploadInput stores a PDF document for a shop.
type DocumentUploadInput struct {
	Body struct {
		ShopOnly
		Filename string `json:"filename,omitempty" doc:"Stored filename; defaults to document.pdf"`
		Payload  string `json:"payload" minLength:"1" doc:"Base64 PDF payload"`
	}
}

// DocumentGetInput requests a download link for a stored document.
type DocumentGetInput struct {
	Body struct {
		ShopOnly
		Key string `json:"key" minLength:"1" doc:"Object key returned by upload"`
	}
}

// DocumentOutput returns the stored object and its presigned URL.
type DocumentOutput struct {
	Body struct {
		Document *documents.Document `json:"document"`
	}
}

// requireDocuments rejects document operations when object storage is not
// configured.
func (s *Server) requireDocuments() (*documents.Service, error) {
	if s.services.Documents == nil {
		return nil, huma.Error503ServiceUnavailable("document storage is not configured")
	}
	return s.services.Documents, nil
}

// registerDocumentRoutes registers the customs document endpoints.
func (s *Server) registerDocumentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "documents-upload",
		Method:      http.MethodPost,
		Path:        "/api/v1/documents/upload",
		Summary:     "Upload document",
		Description: "Stores a base64 PDF under the shop's prefix and returns a presigned download URL. Requires an authenticated operator.",
		Tags:        []string{"Documents"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *DocumentUploadInput) (*DocumentOutput, error) {
		if _, err := GetUserID(ctx); err != nil {
			return nil, err
		}
		svc, err := s.requireDocuments()
		if err != nil {
			return nil, err
		}
		doc, err := svc.Upload(ctx, input.Body.Shop, input.Body.Filename, input.Body.Payload)
		if err != nil {
			return nil, huma.Error400BadRequest("Upload failed", err)
		}
		if link, err := svc.PresignDownload(ctx, doc.Key); err == nil {
			doc.URL = link.URL
			doc.URLExpires = link.URLExpires
		}
		resp := &DocumentOutput{}
		resp.Body.Document = doc
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "documents-get",
		Method:      http.MethodPost,
		Path:        "/api/v1/documents/get",
		Summary:     "Get document link",
		Description: "Returns a fresh presigned download URL for a stored document. Requires an authenticated operator.",
		Tags:        []string{"Documents"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *DocumentGetInput) (*DocumentOutput, error) {
		if _, err := GetUserID(ctx); err != nil {
			return nil, err
		}
		svc, err := s.requireDocuments()
		if err != nil {
			return nil, err
		}
		doc, err := svc.PresignDownload(ctx, input.Body.Key)
		if err != nil {
			return nil, huma.Error400BadRequest("Presign failed", err)
		}
		resp := &DocumentOutput{}
		resp.Body.Document = doc
		return resp, nil
	})
}
