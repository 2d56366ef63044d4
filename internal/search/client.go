package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/creativehub/nexus/internal/telemetry"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
)

// Index names
const (
	IndexProjects = "nexus-projects"
	IndexProfiles = "nexus-profiles"
)

// Client wraps the Elasticsearch client with Nexus-specific indices and queries
type Client struct {
	es *elasticsearch.Client
}

// NewClient creates a new Elasticsearch client and verifies the connection
func NewClient(ctx context.Context, esURL string) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esURL},
		Transport: telemetry.NewInstrumentedTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &Client{es: es}
	if err := client.Ping(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// Ping checks that the cluster answers
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Info(c.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch info: %s", res.Status())
	}
	return nil
}

// InitializeIndices creates missing indices and recreates outdated ones.
// It reports whether any index was (re)created and so needs a backfill.
func (c *Client) InitializeIndices(ctx context.Context) (bool, error) {
	created := false
	for name, mapping := range map[string]map[string]interface{}{
		IndexProjects: projectsMapping(),
		IndexProfiles: profilesMapping(),
	} {
		outdated, err := c.CheckIndexVersion(ctx, name)
		if err != nil {
			return created, err
		}
		if !outdated {
			continue
		}
		if err := c.DeleteIndex(ctx, name); err != nil {
			return created, err
		}
		if err := c.createIndex(ctx, name, mapping); err != nil {
			return created, fmt.Errorf("failed to create %s index: %w", name, err)
		}
		created = true
	}
	return created, nil
}

func projectsMapping() map[string]interface{} {
	return map[string]interface{}{
		"mappings": map[string]interface{}{
			"_meta": map[string]interface{}{"version": IndexVersion},
			"properties": map[string]interface{}{
				"id": map[string]interface{}{"type": "keyword"},
				"title": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{"type": "keyword"},
						"suggest": map[string]interface{}{"type": "completion", "analyzer": "simple"},
					},
				},
				"description": map[string]interface{}{"type": "text", "analyzer": "standard"},
				"tags": map[string]interface{}{
					"type":   "text",
					"fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword"}},
				},
				"owner_id": map[string]interface{}{"type": "keyword"},
				"owner_username": map[string]interface{}{
					"type":   "text",
					"fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword"}},
				},
				"category":      map[string]interface{}{"type": "keyword"},
				"media_type":    map[string]interface{}{"type": "keyword"},
				"like_count":    map[string]interface{}{"type": "integer"},
				"save_count":    map[string]interface{}{"type": "integer"},
				"comment_count": map[string]interface{}{"type": "integer"},
				"view_count":    map[string]interface{}{"type": "integer"},
				"created_at":    map[string]interface{}{"type": "date"},
			},
		},
	}
}

func profilesMapping() map[string]interface{} {
	return map[string]interface{}{
		"mappings": map[string]interface{}{
			"_meta": map[string]interface{}{"version": IndexVersion},
			"properties": map[string]interface{}{
				"id": map[string]interface{}{"type": "keyword"},
				"username": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{"type": "keyword"},
						"suggest": map[string]interface{}{"type": "completion", "analyzer": "simple"},
					},
				},
				"display_name":        map[string]interface{}{"type": "text", "analyzer": "standard"},
				"bio":                 map[string]interface{}{"type": "text", "analyzer": "standard"},
				"skills":              map[string]interface{}{"type": "text"},
				"availability_status": map[string]interface{}{"type": "keyword"},
				"project_count":       map[string]interface{}{"type": "integer"},
				"created_at":          map[string]interface{}{"type": "date"},
			},
		},
	}
}

// createIndex creates an Elasticsearch index with the given mapping
func (c *Client) createIndex(ctx context.Context, indexName string, mapping map[string]interface{}) error {
	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err := c.es.Indices.Create(indexName,
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
		c.es.Indices.Create.WithContext(ctx),
	)
	return checkResponse(res, err, "creating index")
}

func (c *Client) indexDocument(ctx context.Context, index, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	ctx, span := telemetry.TraceExternalCall(ctx, "elasticsearch", "index")
	res, err := c.es.Index(index, bytes.NewReader(body),
		c.es.Index.WithDocumentID(id),
		c.es.Index.WithContext(ctx),
	)
	err = checkResponse(res, err, "indexing "+index)
	telemetry.EndExternalCall(span, err)
	return err
}

func (c *Client) deleteDocument(ctx context.Context, index, id string) error {
	res, err := c.es.Delete(index, id, c.es.Delete.WithContext(ctx))
	if err == nil && res.StatusCode == 404 {
		// Already gone
		res.Body.Close()
		return nil
	}
	return checkResponse(res, err, "deleting from "+index)
}

// IndexProject indexes a project document for search
func (c *Client) IndexProject(ctx context.Context, doc ProjectDoc) error {
	return c.indexDocument(ctx, IndexProjects, doc.ID, doc)
}

// IndexProfile indexes a profile document for search
func (c *Client) IndexProfile(ctx context.Context, doc ProfileDoc) error {
	return c.indexDocument(ctx, IndexProfiles, doc.ID, doc)
}

// DeleteProject removes a project from the search index
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.deleteDocument(ctx, IndexProjects, projectID)
}

// DeleteProfile removes a profile from the search index
func (c *Client) DeleteProfile(ctx context.Context, profileID string) error {
	return c.deleteDocument(ctx, IndexProfiles, profileID)
}

// Hits is an ordered page of matching document IDs
type Hits struct {
	IDs   []string
	Total int64
}

// ProjectSearchParams contains parameters for project search
type ProjectSearchParams struct {
	Query     string
	Category  string
	MediaType string
	Limit     int
	Offset    int
}

// SearchProjects runs a relevance search over projects with optional filters
func (c *Client) SearchProjects(ctx context.Context, params ProjectSearchParams) (*Hits, error) {
	return c.search(ctx, IndexProjects, buildProjectQuery(params))
}

func buildProjectQuery(params ProjectSearchParams) map[string]interface{} {
	filters := []map[string]interface{}{}
	if params.Category != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"category": params.Category}})
	}
	if params.MediaType != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"media_type": params.MediaType}})
	}

	boolQuery := map[string]interface{}{"filter": filters}
	if params.Query != "" {
		boolQuery["must"] = []map[string]interface{}{{
			"multi_match": map[string]interface{}{
				"query":     params.Query,
				"fields":    []string{"title^3", "tags^2", "description", "owner_username"},
				"fuzziness": "AUTO",
			},
		}}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			// Engagement nudges relevance without overriding it
			"function_score": map[string]interface{}{
				"query": map[string]interface{}{"bool": boolQuery},
				"functions": []map[string]interface{}{
					{"field_value_factor": map[string]interface{}{"field": "like_count", "factor": 3.0, "modifier": "log1p", "missing": 0}},
					{"field_value_factor": map[string]interface{}{"field": "save_count", "factor": 4.0, "modifier": "log1p", "missing": 0}},
					{"field_value_factor": map[string]interface{}{"field": "comment_count", "factor": 2.0, "modifier": "log1p", "missing": 0}},
				},
				"score_mode": "sum",
				"boost_mode": "sum",
			},
		},
		"from":    params.Offset,
		"size":    params.Limit,
		"_source": false,
		"sort": []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"created_at": map[string]interface{}{"order": "desc"}},
		},
	}
}

// SearchProfiles searches profiles by username, display name, bio and skills
func (c *Client) SearchProfiles(ctx context.Context, query string, limit, offset int) (*Hits, error) {
	return c.search(ctx, IndexProfiles, map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"username^3", "display_name^2", "skills^1.5", "bio^0.5"},
				"fuzziness": "AUTO",
			},
		},
		"from":    offset,
		"size":    limit,
		"_source": false,
	})
}

func (c *Client) search(ctx context.Context, index string, query map[string]interface{}) (*Hits, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	ctx, span := telemetry.TraceExternalCall(ctx, "elasticsearch", "search")
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		telemetry.EndExternalCall(span, err)
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		err := responseError(res, "searching "+index)
		telemetry.EndExternalCall(span, err)
		return nil, err
	}

	var searchResp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		telemetry.EndExternalCall(span, err)
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	telemetry.EndExternalCall(span, nil)

	hits := &Hits{IDs: make([]string, 0, len(searchResp.Hits.Hits)), Total: searchResp.Hits.Total.Value}
	for _, hit := range searchResp.Hits.Hits {
		hits.IDs = append(hits.IDs, hit.ID)
	}
	return hits, nil
}

// SuggestCompletions returns completion-suggester matches for project titles and usernames
func (c *Client) SuggestCompletions(ctx context.Context, prefix string, size int) ([]Suggestion, error) {
	var out []Suggestion

	projects, err := c.complete(ctx, IndexProjects, "title.suggest", prefix, size)
	if err != nil {
		return nil, err
	}
	for _, opt := range projects {
		out = append(out, Suggestion{Kind: KindProject, Text: opt.Text, ID: opt.ID})
	}

	profiles, err := c.complete(ctx, IndexProfiles, "username.suggest", prefix, size)
	if err != nil {
		return nil, err
	}
	for _, opt := range profiles {
		out = append(out, Suggestion{Kind: KindProfile, Text: opt.Text, ID: opt.Text})
	}

	return out, nil
}

type completionOption struct {
	Text string `json:"text"`
	ID   string `json:"_id"`
}

func (c *Client) complete(ctx context.Context, index, field, prefix string, size int) ([]completionOption, error) {
	body, err := json.Marshal(map[string]interface{}{
		"_source": false,
		"suggest": map[string]interface{}{
			"completion_suggest": map[string]interface{}{
				"prefix": prefix,
				"completion": map[string]interface{}{
					"field":           field,
					"size":            size,
					"skip_duplicates": true,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal suggest query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute suggest: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError(res, "suggesting from "+index)
	}

	var suggestResp struct {
		Suggest struct {
			Completion []struct {
				Options []completionOption `json:"options"`
			} `json:"completion_suggest"`
		} `json:"suggest"`
	}
	if err := json.NewDecoder(res.Body).Decode(&suggestResp); err != nil {
		return nil, fmt.Errorf("failed to decode suggest response: %w", err)
	}
	if len(suggestResp.Suggest.Completion) == 0 {
		return nil, nil
	}
	return suggestResp.Suggest.Completion[0].Options, nil
}

// checkResponse closes the body and turns transport or API failures into errors
func checkResponse(res *esapi.Response, err error, action string) error {
	if err != nil {
		return fmt.Errorf("failed %s: %w", action, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError(res, action)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

func responseError(res *esapi.Response, action string) error {
	var errResp map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&errResp); err != nil {
		return fmt.Errorf("error %s: [%s]", action, res.Status())
	}
	return fmt.Errorf("error %s: [%s] %v", action, res.Status(), errResp["error"])
}
