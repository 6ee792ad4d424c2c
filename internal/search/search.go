// Package search keeps an Elasticsearch index of sellable products.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
)

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

type Index struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(cfg Config, transport http.RoundTripper) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return client, nil
}

func New(es *elasticsearch.Client, index string) *Index {
	if index == "" {
		index = "products"
	}
	return &Index{es: es, index: index}
}

// Ping fails unless the cluster answers the info endpoint.
func (i *Index) Ping(ctx context.Context) error {
	res, err := i.es.Info(i.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch info: %s", res.Status())
	}
	return nil
}

type document struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SalePrice   string `json:"sale_price"`
	ImageURL    string `json:"image_url"`
}

// IndexProduct upserts p, or removes it from the index when archived.
func (i *Index) IndexProduct(ctx context.Context, p *models.Product) error {
	if p.Archived {
		return i.DeleteProduct(ctx, p.ID)
	}
	body, err := json.Marshal(document{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		SalePrice:   p.SalePrice.StringFixed(2),
		ImageURL:    p.ImageURL,
	})
	if err != nil {
		return err
	}

	res, err := i.es.Index(i.index, bytes.NewReader(body),
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product: %s", errorBody(res.Body, res.Status()))
	}
	return nil
}

func (i *Index) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := i.es.Delete(i.index, id.String(), i.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete product: %s", errorBody(res.Body, res.Status()))
	}
	return nil
}

// Search runs a fuzzy multi_match over name and description and returns the
// matching product ids in score order.
func (i *Index) Search(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"_source": []string{"id"},
		"from":    from,
		"size":    size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", errorBody(res.Body, res.Status()))
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := uuid.Parse(hit.Source.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return r.Hits.Total.Value, ids, nil
}

func errorBody(r io.Reader, status string) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4<<10))
	if len(b) == 0 {
		return status
	}
	return status + ": " + string(b)
}
