package riak

import (
	"context"

	"github.com/tautek/riak/pbc"
)

// SetYokozunaSchema uploads a Solr schema. The server acknowledges with a
// Put response.
func (c *Client) SetYokozunaSchema(ctx context.Context, name, content []byte) error {
	req := &pbc.SchemaPutReq{Schema: YokozunaSchema{Name: name, Content: content}}
	return c.call(ctx, pbc.CodeYokozunaSchemaPutReq, pbc.CodeYokozunaSchemaPutResp, req, nil)
}

// GetYokozunaSchema returns the content of a schema.
func (c *Client) GetYokozunaSchema(ctx context.Context, name []byte) ([]byte, error) {
	var resp pbc.SchemaGetResp
	req := &pbc.SchemaGetReq{Name: name}
	if err := c.call(ctx, pbc.CodeYokozunaSchemaGetReq, pbc.CodeYokozunaSchemaGetResp, req, &resp); err != nil {
		return nil, err
	}
	return resp.Schema.Content, nil
}

// SetYokozunaIndex creates a search index. The server acknowledges with a
// Put response.
func (c *Client) SetYokozunaIndex(ctx context.Context, index YokozunaIndex) error {
	req := &pbc.IndexPutReq{Index: index}
	return c.call(ctx, pbc.CodeYokozunaIndexPutReq, pbc.CodeYokozunaIndexPutResp, req, nil)
}

// GetYokozunaIndex returns the named index. A nil name returns every index.
func (c *Client) GetYokozunaIndex(ctx context.Context, name []byte) ([]YokozunaIndex, error) {
	var resp pbc.IndexGetResp
	req := &pbc.IndexGetReq{Name: name}
	if err := c.call(ctx, pbc.CodeYokozunaIndexGetReq, pbc.CodeYokozunaIndexGetResp, req, &resp); err != nil {
		return nil, err
	}
	return resp.Index, nil
}

// DeleteYokozunaIndex drops a search index. The server acknowledges with a
// Delete response.
func (c *Client) DeleteYokozunaIndex(ctx context.Context, name []byte) error {
	req := &pbc.IndexDeleteReq{Name: name}
	return c.call(ctx, pbc.CodeYokozunaIndexDeleteReq, pbc.CodeYokozunaIndexDeleteResp, req, nil)
}
