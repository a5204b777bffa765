package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"jewelry/catalog/internal/config"
	"jewelry/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const (
	categoriesPath  = "/api/admin/categories"
	categoryPath    = "/api/admin/categories/{id}"
	productsPath    = "/api/admin/products"
	uploadPath      = "/api/upload"
	metalPricesPath = "/api/metal-prices"
)

type AdminClient interface {
	ListCategories(ctx context.Context) ([]domain.CategoryRecord, error)
	GetCategory(ctx context.Context, id string) (*domain.CategoryDocument, error)
	CreateCategory(ctx context.Context, payload domain.CategoryFormState) (string, error)
	UpdateCategory(ctx context.Context, id string, payload domain.CategoryFormState) (string, error)
	RenameCategory(ctx context.Context, id string, payload domain.RenamePayload) error
	ListProducts(ctx context.Context) ([]domain.ProductSummary, error)
	Upload(ctx context.Context, fileName string, content io.Reader) (string, error)
	CurrentPrices(ctx context.Context) ([]domain.MetalPrice, error)
}

type adminClient struct {
	rl         ratelimit.Limiter
	config     config.APIConfig
	httpClient *resty.Client
	session    *Session
}

// NewAdminClient builds the admin API client. Interceptors run on every
// response, in order, after the body has been received.
func NewAdminClient(cfg config.APIConfig, session *Session, interceptors ...Interceptor) AdminClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json").
		SetLogger(log.StandardLogger())

	for _, interceptor := range interceptors {
		interceptor := interceptor
		client.AddResponseMiddleware(func(_ *resty.Client, resp *resty.Response) error {
			return interceptor(resp)
		})
	}

	rps := cfg.MaxRequestsPerSecond
	if rps <= 0 {
		rps = 10
	}

	return &adminClient{
		rl:         ratelimit.New(rps),
		config:     cfg,
		httpClient: client,
		session:    session,
	}
}

func (c *adminClient) ListCategories(ctx context.Context) ([]domain.CategoryRecord, error) {
	body, err := c.do(ctx, http.MethodGet, categoriesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories, err := decodeCategories(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	log.Debugf("Fetched %d categories", len(categories))
	return categories, nil
}

func (c *adminClient) GetCategory(ctx context.Context, id string) (*domain.CategoryDocument, error) {
	body, err := c.do(ctx, http.MethodGet, categoryPath, func(r *resty.Request) {
		r.SetPathParam("id", id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get category %s: %w", id, err)
	}

	doc, err := decodeCategory(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode category %s: %w", id, err)
	}
	return doc, nil
}

func (c *adminClient) CreateCategory(ctx context.Context, payload domain.CategoryFormState) (string, error) {
	body, err := c.do(ctx, http.MethodPost, categoriesPath, func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(payload)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create category: %w", err)
	}

	id := savedID(body)
	log.Infof("✅ Created category %q (%s)", payload.Name, id)
	return id, nil
}

func (c *adminClient) UpdateCategory(ctx context.Context, id string, payload domain.CategoryFormState) (string, error) {
	body, err := c.do(ctx, http.MethodPut, categoryPath, func(r *resty.Request) {
		r.SetPathParam("id", id).SetHeader("Content-Type", "application/json").SetBody(payload)
	})
	if err != nil {
		return "", fmt.Errorf("failed to update category %s: %w", id, err)
	}

	if echoed := savedID(body); echoed != "" {
		id = echoed
	}
	log.Infof("✅ Updated category %q (%s)", payload.Name, id)
	return id, nil
}

func (c *adminClient) RenameCategory(ctx context.Context, id string, payload domain.RenamePayload) error {
	_, err := c.do(ctx, http.MethodPut, categoryPath, func(r *resty.Request) {
		r.SetPathParam("id", id).SetHeader("Content-Type", "application/json").SetBody(payload)
	})
	if err != nil {
		return fmt.Errorf("failed to rename category %s: %w", id, err)
	}
	return nil
}

func (c *adminClient) ListProducts(ctx context.Context) ([]domain.ProductSummary, error) {
	body, err := c.do(ctx, http.MethodGet, productsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products, err := decodeProducts(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (c *adminClient) Upload(ctx context.Context, fileName string, content io.Reader) (string, error) {
	body, err := c.do(ctx, http.MethodPost, uploadPath, func(r *resty.Request) {
		r.SetFileReader("file", fileName, content)
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", fileName, err)
	}

	url, err := decodeUploadURL(body)
	if err != nil {
		return "", err
	}

	log.Infof("📤 Uploaded %s to %s", fileName, url)
	return url, nil
}

func (c *adminClient) CurrentPrices(ctx context.Context) ([]domain.MetalPrice, error) {
	body, err := c.do(ctx, http.MethodGet, metalPricesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get metal prices: %w", err)
	}

	prices, err := decodePrices(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode metal prices: %w", err)
	}
	return prices, nil
}

// do sends one request and returns the body of a 2xx response. Nothing is
// retried unless api.retry_count says so.
func (c *adminClient) do(ctx context.Context, method, path string, build func(r *resty.Request)) ([]byte, error) {
	if !c.session.Active() {
		return nil, ErrNotAuthenticated
	}

	c.rl.Take()

	req := c.httpClient.R().SetContext(ctx)
	if token := c.session.Token(); token != "" {
		req.SetAuthToken(token)
	}
	if build != nil {
		build(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.IsError() {
		return nil, newAPIError(resp.StatusCode(), resp.Bytes())
	}

	return resp.Bytes(), nil
}
