package riak

import (
	"context"

	"github.com/tautek/riak/pbc"
)

// Search runs a Solr query against a search index.
func (c *Client) Search(ctx context.Context, req SearchQueryReq) (SearchQueryResp, error) {
	var resp pbc.SearchQueryResp
	if err := c.call(ctx, pbc.CodeSearchQueryReq, pbc.CodeSearchQueryResp, &req, &resp); err != nil {
		return SearchQueryResp{}, err
	}
	return resp, nil
}
