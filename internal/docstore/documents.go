package docstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Document is one stored document: a server-assigned id plus raw data
type Document struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Decode unmarshals the document data into out
func (d Document) Decode(out interface{}) error {
	return json.Unmarshal(d.Data, out)
}

// Collection is a snapshot of a collection plus its change counter
type Collection struct {
	Documents []Document `json:"documents"`
	Version   int64      `json:"version"`
}

// CreateDocument stores data as a new document and returns its generated id
func (c *Client) CreateDocument(ctx context.Context, collection string, data interface{}) (string, error) {
	if !c.IsLoggedIn() {
		return "", ErrNotLoggedIn
	}

	var resp struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/collections/"+url.PathEscape(collection), data, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// GetDocument fetches one document; ErrNotFound when absent
func (c *Client) GetDocument(ctx context.Context, collection, id string) (Document, error) {
	if !c.IsLoggedIn() {
		return Document{}, ErrNotLoggedIn
	}

	var doc Document
	err := c.do(ctx, http.MethodGet,
		"/api/v1/collections/"+url.PathEscape(collection)+"/documents/"+url.PathEscape(id), nil, &doc)
	return doc, err
}

// UpdateDocument merges patch into the stored document
func (c *Client) UpdateDocument(ctx context.Context, collection, id string, patch interface{}) error {
	if !c.IsLoggedIn() {
		return ErrNotLoggedIn
	}

	return c.do(ctx, http.MethodPatch,
		"/api/v1/collections/"+url.PathEscape(collection)+"/documents/"+url.PathEscape(id), patch, nil)
}

// DeleteDocument removes a document; deleting an absent one succeeds
func (c *Client) DeleteDocument(ctx context.Context, collection, id string) error {
	if !c.IsLoggedIn() {
		return ErrNotLoggedIn
	}

	return c.do(ctx, http.MethodDelete,
		"/api/v1/collections/"+url.PathEscape(collection)+"/documents/"+url.PathEscape(id), nil, nil)
}

// ListDocuments returns the full collection snapshot
func (c *Client) ListDocuments(ctx context.Context, collection string) (Collection, error) {
	return c.fetchCollection(ctx, collection, "", "")
}

// QueryDocuments returns the documents whose field equals the given value
func (c *Client) QueryDocuments(ctx context.Context, collection, field, equals string) (Collection, error) {
	return c.fetchCollection(ctx, collection, field, equals)
}

// Record fetches the account's backing record document. ErrNotFound means
// the account exists for auth but has no store-side record; data writes
// must be refused in that state.
func (c *Client) Record(ctx context.Context) (Document, error) {
	if !c.IsLoggedIn() {
		return Document{}, ErrNotLoggedIn
	}

	var doc Document
	err := c.do(ctx, http.MethodGet, "/api/v1/record", nil, &doc)
	return doc, err
}

func (c *Client) fetchCollection(ctx context.Context, collection, field, equals string) (Collection, error) {
	if !c.IsLoggedIn() {
		return Collection{}, ErrNotLoggedIn
	}

	path := "/api/v1/collections/" + url.PathEscape(collection)
	if field != "" {
		path += "?field=" + url.QueryEscape(field) + "&equals=" + url.QueryEscape(equals)
	}

	var coll Collection
	err := c.do(ctx, http.MethodGet, path, nil, &coll)
	return coll, err
}
