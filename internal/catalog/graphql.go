package catalog

import (
	"bytes"
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/errors"
	"github.com/tarifflyapp/tariffly-server/internal/ratelimit"
)

// productsQuery pages through the catalog with cursor pagination.
const productsQuery = `
query Products($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    edges {
      node {
        id
        title
        descriptionHtml
        vendor
        productType
        tags
        featuredImage { url }
        variants(first: 1) { edges { node { price } } }
      }
    }
    pageInfo {
      hasNextPage
      endCursor
    }
  }
}`

// GraphQLClient talks to the Admin GraphQL API and implements Client with
// cursor pagination.
type GraphQLClient struct {
	http       *http.Client
	limiter    *ratelimit.KeyedRateLimiter
	apiVersion string
	shop       string
	credential string
	baseURL    string // overridable for tests
}

// NewGraphQLClient creates a GraphQL client bound to one shop and credential.
func NewGraphQLClient(httpClient *http.Client, limiter *ratelimit.KeyedRateLimiter, apiVersion, shop, credential string) *GraphQLClient {
	return &GraphQLClient{
		http:       httpClient,
		limiter:    limiter,
		apiVersion: apiVersion,
		shop:       shop,
		credential: credential,
		baseURL:    "https://" + shop,
	}
}

// WithBaseURL overrides the shop base URL. Test hook for httptest servers.
func (c *GraphQLClient) WithBaseURL(base string) *GraphQLClient {
	c.baseURL = base
	return c
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLEnvelope struct {
	Data   jsontext.Value `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type gqlProductNode struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	DescriptionHTML string   `json:"descriptionHtml"`
	Vendor          string   `json:"vendor"`
	ProductType     string   `json:"productType"`
	Tags            []string `json:"tags"`
	FeaturedImage   *struct {
		URL string `json:"url"`
	} `json:"featuredImage"`
	Variants struct {
		Edges []struct {
			Node struct {
				Price string `json:"price"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

func (n gqlProductNode) toDomain() domain.Product {
	out := domain.Product{
		ID:          domain.NormalizeProductID(n.ID),
		Title:       n.Title,
		BodyHTML:    n.DescriptionHTML,
		Vendor:      n.Vendor,
		ProductType: n.ProductType,
		Tags:        trimAll(n.Tags),
	}
	if n.FeaturedImage != nil {
		out.Image = n.FeaturedImage.URL
	}
	if len(n.Variants.Edges) > 0 {
		out.Price = n.Variants.Edges[0].Node.Price
	}
	return out
}

func trimAll(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// FetchPage implements Client using cursor pagination. The next token is the
// page's end cursor when more pages remain, empty otherwise.
func (c *GraphQLClient) FetchPage(ctx context.Context, pageToken string, pageSize int) (*Page, error) {
	if err := checkPageSize(pageSize); err != nil {
		return nil, err
	}

	variables := map[string]any{"first": pageSize}
	if pageToken != "" {
		variables["after"] = pageToken
	}

	var payload struct {
		Products struct {
			Edges []struct {
				Node gqlProductNode `json:"node"`
			} `json:"edges"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"products"`
	}
	if err := c.post(ctx, productsQuery, variables, &payload); err != nil {
		return nil, err
	}

	page := &Page{Items: make([]domain.Product, 0, len(payload.Products.Edges))}
	for _, edge := range payload.Products.Edges {
		page.Items = append(page.Items, edge.Node.toDomain())
	}
	if payload.Products.PageInfo.HasNextPage {
		page.NextToken = payload.Products.PageInfo.EndCursor
	}
	return page, nil
}

// post executes one GraphQL request with rate limiting. Transport failures
// and GraphQL-level errors both surface as remote fetch errors.
func (c *GraphQLClient) post(ctx context.Context, query string, variables map[string]any, dest any) error {
	if err := c.limiter.Wait(ctx, c.shop); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/admin/api/" + c.apiVersion + "/graphql.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.credential)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CodeRemoteFetch, "catalog request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.CodeRemoteFetch, "read catalog response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.RemoteFetch(resp.StatusCode, string(raw))
	}

	var envelope graphQLEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return errors.Wrap(err, errors.CodeRemoteFetch, "decode catalog response")
	}
	if len(envelope.Errors) > 0 {
		return errors.RemoteFetch(resp.StatusCode, envelope.Errors[0].Message)
	}

	return json.Unmarshal(envelope.Data, dest)
}

// PostGraphQL executes an arbitrary Admin GraphQL operation and decodes the
// data payload into dest. Used by the billing service for subscription
// mutations.
func (c *GraphQLClient) PostGraphQL(ctx context.Context, query string, variables map[string]any, dest any) error {
	return c.post(ctx, query, variables, dest)
}
