package xero

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
)

// PageSize is the page size FetchAll uses on paged endpoints.
const PageSize = 1000

// pagedEndpoints accept the page and pageSize parameters.
var pagedEndpoints = map[string]bool{
	"BankTransactions": true,
	"Contacts":         true,
	"CreditNotes":      true,
	"Invoices":         true,
	"ManualJournals":   true,
	"Overpayments":     true,
	"Payments":         true,
	"Prepayments":      true,
	"PurchaseOrders":   true,
	"Quotes":           true,
}

// collectionKeys are response keys that differ from the endpoint name.
var collectionKeys = map[string]string{
	"Organisation": "Organisations",
}

// Ensure source implements the interface.
var _ driven.PagedSource = (*source)(nil)

// source reads one endpoint of one tenant.
type source struct {
	client   *Client
	tenantID string
	endpoint string
}

func (s *source) Endpoint() string {
	return s.endpoint
}

func (s *source) url(elems ...string) string {
	u := s.client.config.BaseURL + "/" + s.endpoint
	for _, elem := range elems {
		u += "/" + url.PathEscape(elem)
	}
	return u
}

func (s *source) collectionKey() string {
	if key, ok := collectionKeys[s.endpoint]; ok {
		return key
	}
	return s.endpoint
}

// PageSize returns PageSize for paged endpoints and 0 otherwise.
func (s *source) PageSize() int {
	if pagedEndpoints[s.endpoint] {
		return PageSize
	}
	return 0
}

// FetchAll returns every entity, walking pages where the endpoint has them.
func (s *source) FetchAll(ctx context.Context) ([]domain.Entity, error) {
	size := s.PageSize()
	if size == 0 {
		body, err := s.client.get(ctx, s.tenantID, s.url(), nil, nil)
		if err != nil {
			return nil, err
		}
		return entities(body, s.collectionKey())
	}

	var all []domain.Entity
	for page := 1; ; page++ {
		batch, err := s.FetchFiltered(ctx, driven.FetchOptions{Page: page, PageSize: size})
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		all = append(all, batch...)
		if len(batch) < size {
			return all, nil
		}
	}
}

// FetchFiltered returns one batch selected by opts.
func (s *source) FetchFiltered(ctx context.Context, opts driven.FetchOptions) ([]domain.Entity, error) {
	query := url.Values{}
	if opts.Offset > 0 {
		query.Set("offset", strconv.FormatInt(opts.Offset, 10))
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.Where != "" {
		query.Set("where", opts.Where)
	}

	var header http.Header
	if !opts.Since.IsZero() {
		header = http.Header{}
		header.Set(HeaderIfModifiedSince, opts.Since.UTC().Format(http.TimeFormat))
	}

	body, err := s.client.get(ctx, s.tenantID, s.url(), query, header)
	if err != nil {
		return nil, err
	}
	return entities(body, s.collectionKey())
}

// FetchByID returns the first entity of /{endpoint}/{id}.
func (s *source) FetchByID(ctx context.Context, id string) (domain.Entity, error) {
	body, err := s.client.get(ctx, s.tenantID, s.url(id), nil, nil)
	if err != nil {
		return nil, err
	}
	list, err := entities(body, s.collectionKey())
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, s.endpoint, id)
	}
	return list[0], nil
}

// FetchAttachments returns the raw attachment listing of one entity.
func (s *source) FetchAttachments(ctx context.Context, id string) (domain.Entity, error) {
	body, err := s.client.get(ctx, s.tenantID, s.url(id, "Attachments"), nil, nil)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return domain.Entity(`[]`), nil
	}
	normalised, err := NormaliseDates(body)
	if err != nil {
		return nil, fmt.Errorf("normalise dates: %w", err)
	}
	return domain.Entity(normalised), nil
}

// entities splits the array under key into normalised entities.
func entities(body []byte, key string) ([]domain.Entity, error) {
	if len(body) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrUnexpectedResponse)
	}
	list := gjson.GetBytes(body, gjson.Escape(key))
	if !list.Exists() {
		return nil, nil
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: %s is not an array", ErrUnexpectedResponse, key)
	}

	items := list.Array()
	out := make([]domain.Entity, 0, len(items))
	for _, item := range items {
		normalised, err := NormaliseDates([]byte(item.Raw))
		if err != nil {
			return nil, fmt.Errorf("normalise dates: %w", err)
		}
		out = append(out, domain.Entity(normalised))
	}
	return out, nil
}
