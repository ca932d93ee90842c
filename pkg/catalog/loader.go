package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"catalog-assist-be/pkg/vectorindex"
)

// Category is one entry of the first-tier corpus.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Product is one entry of the second-tier corpus. The JSON field names
// follow the export format of the upstream catalog system.
type Product struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ProductID   string `json:"productid,omitempty"`
	Article     string `json:"article,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Country     string `json:"country,omitempty"`
	EtimClass   string `json:"etimclass,omitempty"`
}

// LoadCategories reads the category list and converts it to index
// documents. The embedded text is the name plus the description when
// one is present.
func LoadCategories(path string) ([]vectorindex.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}

	var categories []Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("decode categories %s: %w", path, err)
	}

	docs := make([]vectorindex.Document, 0, len(categories))
	for i, c := range categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("categories %s: entry %d has no name", path, i)
		}
		content := c.Name
		if c.Description != "" {
			content += ". " + c.Description
		}
		docs = append(docs, vectorindex.Document{
			Content:  content,
			Metadata: map[string]any{"name": c.Name, "description": c.Description},
		})
	}
	return docs, nil
}

// LoadProducts reads every *.json file in dir. Each file holds the
// products of one category; the category name is the file name without
// the extension.
func LoadProducts(dir string) ([]vectorindex.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read product dir: %w", err)
	}

	var docs []vectorindex.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		category := strings.TrimSuffix(entry.Name(), ".json")
		path := filepath.Join(dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read products %s: %w", path, err)
		}
		var products []Product
		if err := json.Unmarshal(data, &products); err != nil {
			return nil, fmt.Errorf("decode products %s: %w", path, err)
		}

		for i, p := range products {
			if strings.TrimSpace(p.Name) == "" {
				return nil, fmt.Errorf("products %s: entry %d has no name", path, i)
			}
			content := p.Name
			if p.Description != "" {
				content += ". " + p.Description
			}
			docs = append(docs, vectorindex.Document{
				Content: content,
				Metadata: map[string]any{
					"name":        p.Name,
					"description": p.Description,
					"productid":   p.ProductID,
					"article":     p.Article,
					"brand":       p.Brand,
					"country":     p.Country,
					"etimclass":   p.EtimClass,
					"category":    category,
				},
			})
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("product dir %s: no products found", dir)
	}
	return docs, nil
}
