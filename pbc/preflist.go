package pbc

// PreflistReq mirrors RpbGetBucketKeyPreflistReq.
type PreflistReq struct {
	Bucket []byte
	Key    []byte
	Type   []byte
}

func (r *PreflistReq) Marshal() ([]byte, error) {
	if r.Bucket == nil {
		return nil, missingField("RpbGetBucketKeyPreflistReq", "bucket")
	}
	if r.Key == nil {
		return nil, missingField("RpbGetBucketKeyPreflistReq", "key")
	}
	e := encoder{}
	e.bytes(1, r.Bucket)
	e.bytes(2, r.Key)
	e.optBytes(3, r.Type)
	return e.b, nil
}

func (r *PreflistReq) Unmarshal(payload []byte) error {
	*r = PreflistReq{}
	return decode("RpbGetBucketKeyPreflistReq", payload, func(f field) error {
		switch f.num {
		case 1:
			r.Bucket = f.bytes()
		case 2:
			r.Key = f.bytes()
		case 3:
			r.Type = f.bytes()
		}
		return nil
	})
}

// PreflistItem is one partition responsible for a bucket/key.
type PreflistItem struct {
	Partition int64
	Node      []byte
	Primary   bool
}

func (p *PreflistItem) appendTo(b []byte) []byte {
	e := encoder{b: b}
	e.varint(1, uint64(p.Partition))
	e.bytes(2, p.Node)
	e.boolean(3, p.Primary)
	return e.b
}

func decodePreflistItem(payload []byte) (PreflistItem, error) {
	var p PreflistItem
	var seen [3]bool
	err := decode("RpbBucketKeyPreflistItem", payload, func(f field) error {
		switch f.num {
		case 1:
			p.Partition, seen[0] = f.int64(), true
		case 2:
			p.Node, seen[1] = f.bytes(), true
		case 3:
			p.Primary, seen[2] = f.boolean(), true
		}
		return nil
	})
	if err != nil {
		return PreflistItem{}, err
	}
	for i, name := range []string{"partition", "node", "primary"} {
		if !seen[i] {
			return PreflistItem{}, missingField("RpbBucketKeyPreflistItem", name)
		}
	}
	return p, nil
}

// PreflistResp mirrors RpbGetBucketKeyPreflistResp.
type PreflistResp struct {
	Preflist []PreflistItem
}

func (r *PreflistResp) Marshal() ([]byte, error) {
	e := encoder{}
	for i := range r.Preflist {
		e.message(1, &r.Preflist[i])
	}
	return e.b, nil
}

func (r *PreflistResp) Unmarshal(payload []byte) error {
	*r = PreflistResp{}
	return decode("RpbGetBucketKeyPreflistResp", payload, func(f field) error {
		if f.num == 1 {
			item, err := decodePreflistItem(f.bytes())
			if err != nil {
				return err
			}
			r.Preflist = append(r.Preflist, item)
		}
		return nil
	})
}
