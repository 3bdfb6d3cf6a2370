// Package duties wraps the HS-code lookup provider. One lookup submits a
// product name and plain-text description and yields candidate customs codes
// with confidence percentages.
package duties

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/tarifflyapp/tariffly-server/internal/errors"
)

const defaultTimeout = 30 * time.Second

// Suggestion is one candidate classification from the provider.
type Suggestion struct {
	Code        string `json:"code"`
	Confidence  int    `json:"confidence"` // 0-100
	Description string `json:"description,omitempty"`
}

// Client is the HS-code lookup provider client.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// New creates a provider client.
func New(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// WithHTTPClient overrides the transport. Test hook.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// lookupRequest matches the provider's JSON:API-flavored request shape.
type lookupRequest struct {
	Data struct {
		Attributes struct {
			ProductName        string `json:"product_name"`
			ProductDescription string `json:"product_description"`
			ProductCategory    string `json:"product_category"`
			CountryCode        string `json:"country_code"`
		} `json:"attributes"`
	} `json:"data"`
}

// lookupResponse covers both response shapes the provider emits: suggestion
// lists under data.attributes and lookup items under included.
type lookupResponse struct {
	Data struct {
		Attributes struct {
			Suggestions []rawSuggestion `json:"suggestions"`
		} `json:"attributes"`
	} `json:"data"`
	Included []struct {
		Type       string `json:"type"`
		Attributes struct {
			HSCode      string  `json:"hs_code"`
			Confidence  float64 `json:"confidence"`
			Description string  `json:"description"`
		} `json:"attributes"`
	} `json:"included"`
	Errors []struct {
		Detail string `json:"detail"`
	} `json:"errors"`
}

type rawSuggestion struct {
	HSCode      string  `json:"hs_code"`
	Confidence  float64 `json:"confidence"` // fraction 0-1
	Description string  `json:"description"`
}

// Classify looks up candidate HS codes for a product. The description must
// already be stripped of HTML. Confidence is always the provider-supplied
// fraction rounded to a percentage, regardless of which response shape
// carried it.
func (c *Client) Classify(ctx context.Context, name, description, category string) ([]Suggestion, error) {
	if c.apiKey == "" {
		return nil, errors.Validation("duties provider API key not configured")
	}

	var reqBody lookupRequest
	reqBody.Data.Attributes.ProductName = name
	reqBody.Data.Attributes.ProductDescription = description
	reqBody.Data.Attributes.ProductCategory = category
	reqBody.Data.Attributes.CountryCode = "US"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal lookup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hs_lookups", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	c.logger.Debug("duties lookup", "product", name)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeRemoteFetch, "duties request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeRemoteFetch, "read duties response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.RemoteFetch(resp.StatusCode, string(raw))
	}

	var body lookupResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errors.Wrap(err, errors.CodeRemoteFetch, "decode duties response")
	}

	suggestions := make([]Suggestion, 0, len(body.Data.Attributes.Suggestions))
	for _, s := range body.Data.Attributes.Suggestions {
		suggestions = append(suggestions, Suggestion{
			Code:        s.HSCode,
			Confidence:  roundPercent(s.Confidence),
			Description: s.Description,
		})
	}

	// Secondary shape: lookup items under included.
	if len(suggestions) == 0 {
		for _, inc := range body.Included {
			if inc.Type != "hs_lookup_item" || inc.Attributes.HSCode == "" {
				continue
			}
			suggestions = append(suggestions, Suggestion{
				Code:        inc.Attributes.HSCode,
				Confidence:  roundPercent(inc.Attributes.Confidence),
				Description: inc.Attributes.Description,
			})
		}
	}

	if len(suggestions) == 0 {
		return nil, errors.NotFound("no classification candidates returned")
	}
	return suggestions, nil
}

// roundPercent converts a 0-1 fraction to a 0-100 integer. Values already
// above 1 are treated as percentages and clamped.
func roundPercent(f float64) int {
	if f > 1 {
		if f > 100 {
			return 100
		}
		return int(math.Round(f))
	}
	if f < 0 {
		return 0
	}
	return int(math.Round(f * 100))
}
