package pbc

// ListBucketsReq mirrors RpbListBucketsReq. With Stream set the server
// answers with a sequence of ListBucketsResp frames ending on Done.
type ListBucketsReq struct {
	Timeout *uint32 // milliseconds
	Stream  *bool
	Type    []byte
}

func (r *ListBucketsReq) Marshal() ([]byte, error) {
	e := encoder{}
	e.optUint32(1, r.Timeout)
	e.optBool(2, r.Stream)
	e.optBytes(3, r.Type)
	return e.b, nil
}

func (r *ListBucketsReq) Unmarshal(payload []byte) error {
	*r = ListBucketsReq{}
	return decode("RpbListBucketsReq", payload, func(f field) error {
		switch f.num {
		case 1:
			r.Timeout = f.uint32p()
		case 2:
			r.Stream = f.boolp()
		case 3:
			r.Type = f.bytes()
		}
		return nil
	})
}

// ListBucketsResp is one batch of bucket names.
type ListBucketsResp struct {
	Buckets [][]byte
	Done    bool
}

func (r *ListBucketsResp) Marshal() ([]byte, error) {
	e := encoder{}
	e.repBytes(1, r.Buckets)
	if r.Done {
		e.boolean(2, true)
	}
	return e.b, nil
}

func (r *ListBucketsResp) Unmarshal(payload []byte) error {
	*r = ListBucketsResp{}
	return decode("RpbListBucketsResp", payload, func(f field) error {
		switch f.num {
		case 1:
			r.Buckets = append(r.Buckets, f.bytes())
		case 2:
			r.Done = f.boolean()
		}
		return nil
	})
}

// ListKeysReq mirrors RpbListKeysReq. Key listing is always streamed.
type ListKeysReq struct {
	Bucket  []byte
	Timeout *uint32 // milliseconds
	Type    []byte
}

func (r *ListKeysReq) Marshal() ([]byte, error) {
	if r.Bucket == nil {
		return nil, missingField("RpbListKeysReq", "bucket")
	}
	e := encoder{}
	e.bytes(1, r.Bucket)
	e.optUint32(2, r.Timeout)
	e.optBytes(3, r.Type)
	return e.b, nil
}

func (r *ListKeysReq) Unmarshal(payload []byte) error {
	*r = ListKeysReq{}
	return decode("RpbListKeysReq", payload, func(f field) error {
		switch f.num {
		case 1:
			r.Bucket = f.bytes()
		case 2:
			r.Timeout = f.uint32p()
		case 3:
			r.Type = f.bytes()
		}
		return nil
	})
}

// ListKeysResp is one batch of keys.
type ListKeysResp struct {
	Keys [][]byte
	Done bool
}

func (r *ListKeysResp) Marshal() ([]byte, error) {
	e := encoder{}
	e.repBytes(1, r.Keys)
	if r.Done {
		e.boolean(2, true)
	}
	return e.b, nil
}

func (r *ListKeysResp) Unmarshal(payload []byte) error {
	*r = ListKeysResp{}
	return decode("RpbListKeysResp", payload, func(f field) error {
		switch f.num {
		case 1:
			r.Keys = append(r.Keys, f.bytes())
		case 2:
			r.Done = f.boolean()
		}
		return nil
	})
}
