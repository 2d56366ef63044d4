package search

import (
	"context"
	"encoding/json"
	"fmt"
)

// IndexVersion tracks the current mapping version, stored in each index's _meta.
// Increment this whenever index mappings change.
const IndexVersion = 1

// CheckIndexVersion reports whether an index is missing or was created with an older mapping
func (c *Client) CheckIndexVersion(ctx context.Context, indexName string) (bool, error) {
	res, err := c.es.Indices.GetMapping(
		c.es.Indices.GetMapping.WithIndex(indexName),
		c.es.Indices.GetMapping.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("failed to get index mapping: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return true, nil
	}
	if res.IsError() {
		return false, fmt.Errorf("error getting index mapping: %s", res.Status())
	}

	var mappingResp map[string]struct {
		Mappings struct {
			Meta struct {
				Version int `json:"version"`
			} `json:"_meta"`
		} `json:"mappings"`
	}
	if err := json.NewDecoder(res.Body).Decode(&mappingResp); err != nil {
		// Unreadable mapping: rebuild it
		return true, nil
	}

	return mappingResp[indexName].Mappings.Meta.Version < IndexVersion, nil
}

// DeleteIndex deletes an index; a missing index is not an error
func (c *Client) DeleteIndex(ctx context.Context, indexName string) error {
	res, err := c.es.Indices.Delete(
		[]string{indexName},
		c.es.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("error deleting index: %s", res.Status())
	}

	return nil
}
