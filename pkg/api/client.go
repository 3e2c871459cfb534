// Package api fetches the reference data the service-report form depends on:
// clients, equipment, spare parts, suppliers and the standard maintenance
// procedure list. All fetches run before the form is built; nothing in the
// form or document pipeline talks to the network.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fieldservice/reportgen/pkg/refdata"
)

type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger injects the structured logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithToken sets the bearer token attached to every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// Client talks to the management API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

// New constructs a client for the given base URL.
func New(baseURL string, options ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("api: invalid base URL: %w", err)
	}

	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(client)
	}
	return client, nil
}

type clientDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type equipmentDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serialNumber"`
	Contract     string `json:"contract"`
}

type partDTO struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	PartNumber  string `json:"partNumber"`
}

type supplierDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type procedureDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Clients fetches the client catalog.
func (c *Client) Clients(ctx context.Context) (*refdata.Catalog, error) {
	var dtos []clientDTO
	if err := c.getJSON(ctx, "/clients", &dtos); err != nil {
		return nil, err
	}
	entries := make([]refdata.Entry, 0, len(dtos))
	for _, dto := range dtos {
		entries = append(entries, refdata.Entry{
			ID:    refdata.ID(dto.ID),
			Label: dto.Name,
			Meta:  map[string]string{"contact": dto.Contact},
		})
	}
	return refdata.NewCatalog(entries), nil
}

// Equipment fetches the equipment catalog.
func (c *Client) Equipment(ctx context.Context) (*refdata.Catalog, error) {
	var dtos []equipmentDTO
	if err := c.getJSON(ctx, "/equipment", &dtos); err != nil {
		return nil, err
	}
	entries := make([]refdata.Entry, 0, len(dtos))
	for _, dto := range dtos {
		entries = append(entries, refdata.Entry{
			ID:    refdata.ID(dto.ID),
			Label: dto.Name,
			Meta: map[string]string{
				"serialNumber": dto.SerialNumber,
				"contract":     dto.Contract,
			},
		})
	}
	return refdata.NewCatalog(entries), nil
}

// Parts fetches the spare-part catalog.
func (c *Client) Parts(ctx context.Context) (*refdata.Catalog, error) {
	var dtos []partDTO
	if err := c.getJSON(ctx, "/parts", &dtos); err != nil {
		return nil, err
	}
	entries := make([]refdata.Entry, 0, len(dtos))
	for _, dto := range dtos {
		entries = append(entries, refdata.Entry{
			ID:    refdata.ID(dto.ID),
			Label: dto.Description,
			Meta:  map[string]string{"partNumber": dto.PartNumber},
		})
	}
	return refdata.NewCatalog(entries), nil
}

// Suppliers fetches the supplier catalog.
func (c *Client) Suppliers(ctx context.Context) (*refdata.Catalog, error) {
	var dtos []supplierDTO
	if err := c.getJSON(ctx, "/suppliers", &dtos); err != nil {
		return nil, err
	}
	entries := make([]refdata.Entry, 0, len(dtos))
	for _, dto := range dtos {
		entries = append(entries, refdata.Entry{ID: refdata.ID(dto.ID), Label: dto.Name})
	}
	return refdata.NewCatalog(entries), nil
}

// Procedures fetches the standard maintenance procedure list.
func (c *Client) Procedures(ctx context.Context) (*refdata.Catalog, error) {
	var dtos []procedureDTO
	if err := c.getJSON(ctx, "/standard-procedures", &dtos); err != nil {
		return nil, err
	}
	entries := make([]refdata.Entry, 0, len(dtos))
	for _, dto := range dtos {
		entries = append(entries, refdata.Entry{ID: refdata.ID(dto.ID), Label: dto.Name})
	}
	return refdata.NewCatalog(entries), nil
}

// ReferenceData fetches all five catalogs concurrently. The first failure
// cancels the remaining fetches and is returned.
func (c *Client) ReferenceData(ctx context.Context) (refdata.Set, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		set refdata.Set
		mu  sync.Mutex
		wg  sync.WaitGroup

		firstErr error
	)

	fetch := func(name string, run func(context.Context) (*refdata.Catalog, error), assign func(*refdata.Catalog)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			catalog, err := run(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.logger.WithError(err).WithField("catalog", name).Error("reference data fetch failed")
				if firstErr == nil {
					firstErr = fmt.Errorf("api: fetch %s: %w", name, err)
					cancel()
				}
				return
			}
			assign(catalog)
		}()
	}

	fetch("clients", c.Clients, func(catalog *refdata.Catalog) { set.Clients = catalog })
	fetch("equipment", c.Equipment, func(catalog *refdata.Catalog) { set.Equipment = catalog })
	fetch("parts", c.Parts, func(catalog *refdata.Catalog) { set.Parts = catalog })
	fetch("suppliers", c.Suppliers, func(catalog *refdata.Catalog) { set.Suppliers = catalog })
	fetch("standard-procedures", c.Procedures, func(catalog *refdata.Catalog) { set.Procedures = catalog })
	wg.Wait()

	if firstErr != nil {
		return refdata.Set{}, firstErr
	}

	c.logger.WithFields(logrus.Fields{
		"clients":    set.Clients.Len(),
		"equipment":  set.Equipment.Len(),
		"parts":      set.Parts.Len(),
		"procedures": set.Procedures.Len(),
	}).Debug("reference data loaded")
	return set, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("api: build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api: get %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s: %w", path, err)
	}
	return nil
}
