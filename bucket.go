package riak

import (
	"context"

	"github.com/tautek/riak/pbc"
)

// StreamBuckets starts listing every bucket of the default bucket type.
// The stream runs on its own connection; Close it when done.
func (c *Client) StreamBuckets(ctx context.Context) (*BucketStream, error) {
	return c.streamBuckets(ctx, nil)
}

// StreamBucketsOfType lists the buckets of one bucket type.
func (c *Client) StreamBucketsOfType(ctx context.Context, bucketType []byte) (*BucketStream, error) {
	return c.streamBuckets(ctx, bucketType)
}

func (c *Client) streamBuckets(ctx context.Context, bucketType []byte) (*BucketStream, error) {
	req := &pbc.ListBucketsReq{
		Stream:  pbc.Bool(true),
		Timeout: serverTimeout(c.cfg.Timeout),
		Type:    bucketType,
	}
	return openStream(ctx, c, pbc.CodeListBucketsReq, pbc.CodeListBucketsResp,
		req.Marshal,
		func(payload []byte) ([][]byte, bool, error) {
			var resp pbc.ListBucketsResp
			if err := resp.Unmarshal(payload); err != nil {
				return nil, false, err
			}
			return resp.Buckets, resp.Done, nil
		})
}

// ListBuckets returns every bucket name. Listing buckets walks every key in
// the cluster and is expensive.
func (c *Client) ListBuckets(ctx context.Context) ([][]byte, error) {
	stream, err := c.StreamBuckets(ctx)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	return stream.All(ctx)
}

// StreamKeys starts listing the keys of bucket.
// The stream runs on its own connection; Close it when done.
func (c *Client) StreamKeys(ctx context.Context, bucket []byte) (*KeyStream, error) {
	return c.streamKeys(ctx, nil, bucket)
}

// StreamKeysOfType lists the keys of a bucket under a bucket type.
func (c *Client) StreamKeysOfType(ctx context.Context, bucketType, bucket []byte) (*KeyStream, error) {
	return c.streamKeys(ctx, bucketType, bucket)
}

func (c *Client) streamKeys(ctx context.Context, bucketType, bucket []byte) (*KeyStream, error) {
	req := &pbc.ListKeysReq{
		Bucket:  bucket,
		Timeout: serverTimeout(c.cfg.Timeout),
		Type:    bucketType,
	}
	return openStream(ctx, c, pbc.CodeListKeysReq, pbc.CodeListKeysResp,
		req.Marshal,
		func(payload []byte) ([][]byte, bool, error) {
			var resp pbc.ListKeysResp
			if err := resp.Unmarshal(payload); err != nil {
				return nil, false, err
			}
			return resp.Keys, resp.Done, nil
		})
}

// ListKeys returns every key of bucket.
func (c *Client) ListKeys(ctx context.Context, bucket []byte) ([][]byte, error) {
	stream, err := c.StreamKeys(ctx, bucket)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	return stream.All(ctx)
}

// SetBucketProperties updates the properties of bucket. Nil fields of props
// are left unchanged.
func (c *Client) SetBucketProperties(ctx context.Context, bucket []byte, props BucketProps) error {
	req := &pbc.SetBucketReq{Bucket: bucket, Props: props}
	return c.call(ctx, pbc.CodeSetBucketReq, pbc.CodeSetBucketResp, req, nil)
}

// GetBucketProperties returns the properties of bucket.
func (c *Client) GetBucketProperties(ctx context.Context, bucket []byte) (BucketProps, error) {
	var resp pbc.GetBucketResp
	req := &pbc.GetBucketReq{Bucket: bucket}
	if err := c.call(ctx, pbc.CodeGetBucketReq, pbc.CodeGetBucketResp, req, &resp); err != nil {
		return BucketProps{}, err
	}
	return resp.Props, nil
}

// SetBucketTypeProperties updates the properties of a bucket type.
func (c *Client) SetBucketTypeProperties(ctx context.Context, bucketType []byte, props BucketProps) error {
	req := &pbc.SetBucketTypeReq{Type: bucketType, Props: props}
	return c.call(ctx, pbc.CodeSetBucketTypeReq, pbc.CodeSetBucketTypeResp, req, nil)
}

// GetBucketTypeProperties returns the properties of a bucket type.
func (c *Client) GetBucketTypeProperties(ctx context.Context, bucketType []byte) (BucketProps, error) {
	var resp pbc.GetBucketResp
	req := &pbc.GetBucketTypeReq{Type: bucketType}
	if err := c.call(ctx, pbc.CodeGetBucketTypeReq, pbc.CodeGetBucketTypeResp, req, &resp); err != nil {
		return BucketProps{}, err
	}
	return resp.Props, nil
}

// ResetBucket restores the default properties of bucket. A nil bucketType
// means the default type.
func (c *Client) ResetBucket(ctx context.Context, bucketType, bucket []byte) error {
	req := &pbc.ResetBucketReq{Bucket: bucket, Type: bucketType}
	return c.call(ctx, pbc.CodeResetBucketReq, pbc.CodeResetBucketResp, req, nil)
}
