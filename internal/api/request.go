package api

import (
	"github.com/tarifflyapp/tariffly-server/internal/service"
	"github.com/tarifflyapp/tariffly-server/internal/tagmeta"
)

// ShopAuth carries the shop identity every catalog-facing request operates
// on. The credential is the shop's Admin API access token; it is forwarded
// upstream and never stored.
type ShopAuth struct {
	Shop       string `json:"shop" minLength:"1" doc:"Shop domain, e.g. demo.myshopify.com"`
	Credential string `json:"credential" minLength:"1" doc:"Admin API access token for the shop"`
}

// Creds converts the wire fields into service credentials.
func (a ShopAuth) Creds() service.ShopCredentials {
	return service.ShopCredentials{ShopDomain: a.Shop, AccessToken: a.Credential}
}

// ShopOnly identifies a shop for operations that read local state and never
// touch the remote catalog.
type ShopOnly struct {
	Shop string `json:"shop" minLength:"1" doc:"Shop domain"`
}

// MetadataDTO is the wire form of decoded tag metadata.
type MetadataDTO struct {
	Code       *string `json:"code,omitempty" doc:"HS code, when tagged"`
	Confidence *int    `json:"confidence,omitempty" doc:"Detection confidence 0-100, when tagged"`
	Status     string  `json:"status" doc:"Effective review status; untagged products count as pending"`
}

func metadataDTO(md tagmeta.Metadata) MetadataDTO {
	return MetadataDTO{
		Code:       md.Code,
		Confidence: md.Confidence,
		Status:     string(md.EffectiveStatus()),
	}
}
