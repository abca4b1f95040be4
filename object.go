package riak

import (
	"context"

	"github.com/tautek/riak/pbc"
)

// StoreObject writes an object. The response is empty unless the request
// sets ReturnBody or ReturnHead, or leaves Key nil so the server generates
// one.
func (c *Client) StoreObject(ctx context.Context, req StoreObjectReq) (StoreObjectResp, error) {
	var resp pbc.StoreObjectResp
	if err := c.call(ctx, pbc.CodePutReq, pbc.CodePutResp, &req, &resp); err != nil {
		return StoreObjectResp{}, err
	}
	return resp, nil
}

// FetchObject reads an object. A missing key is not an error: the response
// has no Content.
func (c *Client) FetchObject(ctx context.Context, req FetchObjectReq) (FetchObjectResp, error) {
	var resp pbc.FetchObjectResp
	if err := c.call(ctx, pbc.CodeGetReq, pbc.CodeGetResp, &req, &resp); err != nil {
		return FetchObjectResp{}, err
	}
	return resp, nil
}

// DeleteObject removes an object. Deleting a missing key succeeds.
func (c *Client) DeleteObject(ctx context.Context, req DeleteObjectReq) error {
	return c.call(ctx, pbc.CodeDelReq, pbc.CodeDelResp, &req, nil)
}

// FetchPreflist returns the partitions responsible for bucket/key, primaries
// and fallbacks.
func (c *Client) FetchPreflist(ctx context.Context, bucket, key []byte) ([]PreflistItem, error) {
	var resp pbc.PreflistResp
	req := &pbc.PreflistReq{Bucket: bucket, Key: key}
	if err := c.call(ctx, pbc.CodeGetBucketKeyPreflistReq, pbc.CodeGetBucketKeyPreflistResp, req, &resp); err != nil {
		return nil, err
	}
	return resp.Preflist, nil
}
