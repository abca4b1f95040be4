package pbc

// Link is a one-way pointer from an object to another bucket/key.
type Link struct {
	Bucket []byte
	Key    []byte
	Tag    []byte
}

func (l *Link) appendTo(b []byte) []byte {
	e := encoder{b: b}
	e.optBytes(1, l.Bucket)
	e.optBytes(2, l.Key)
	e.optBytes(3, l.Tag)
	return e.b
}

func decodeLink(payload []byte) (Link, error) {
	var l Link
	err := decode("RpbLink", payload, func(f field) error {
		switch f.num {
		case 1:
			l.Bucket = f.bytes()
		case 2:
			l.Key = f.bytes()
		case 3:
			l.Tag = f.bytes()
		}
		return nil
	})
	return l, err
}

// Content is one value of an object. An object with siblings carries
// several.
type Content struct {
	Value           []byte
	ContentType     []byte
	Charset         []byte
	ContentEncoding []byte
	VTag            []byte
	Links           []Link
	LastMod         *uint32
	LastModUsecs    *uint32
	UserMeta        []Pair
	Indexes         []Pair
	Deleted         *bool
	TTL             *uint32
}

func (c *Content) appendTo(b []byte) []byte {
	e := encoder{b: b}
	e.bytes(1, c.Value)
	e.optBytes(2, c.ContentType)
	e.optBytes(3, c.Charset)
	e.optBytes(4, c.ContentEncoding)
	e.optBytes(5, c.VTag)
	for i := range c.Links {
		e.message(6, &c.Links[i])
	}
	e.optUint32(7, c.LastMod)
	e.optUint32(8, c.LastModUsecs)
	appendPairs(&e, 9, c.UserMeta)
	appendPairs(&e, 10, c.Indexes)
	e.optBool(11, c.Deleted)
	e.optUint32(12, c.TTL)
	return e.b
}

func decodeContent(payload []byte) (Content, error) {
	var c Content
	var hasValue bool
	err := decode("RpbContent", payload, func(f field) error {
		switch f.num {
		case 1:
			c.Value, hasValue = f.bytes(), true
		case 2:
			c.ContentType = f.bytes()
		case 3:
			c.Charset = f.bytes()
		case 4:
			c.ContentEncoding = f.bytes()
		case 5:
			c.VTag = f.bytes()
		case 6:
			l, err := decodeLink(f.bytes())
			if err != nil {
				return err
			}
			c.Links = append(c.Links, l)
		case 7:
			c.LastMod = f.uint32p()
		case 8:
			c.LastModUsecs = f.uint32p()
		case 9:
			p, err := decodePair(f.bytes())
			if err != nil {
				return err
			}
			c.UserMeta = append(c.UserMeta, p)
		case 10:
			p, err := decodePair(f.bytes())
			if err != nil {
				return err
			}
			c.Indexes = append(c.Indexes, p)
		case 11:
			c.Deleted = f.boolp()
		case 12:
			c.TTL = f.uint32p()
		}
		return nil
	})
	if err != nil {
		return Content{}, err
	}
	if !hasValue {
		return Content{}, missingField("RpbContent", "value")
	}
	return c, nil
}

// FetchObjectReq mirrors RpbGetReq.
type FetchObjectReq struct {
	Bucket        []byte
	Key           []byte
	R             *uint32
	PR            *uint32
	BasicQuorum   *bool
	NotfoundOK    *bool
	IfModified    []byte // vclock; the server answers Unchanged when it still matches
	Head          *bool
	DeletedVClock *bool
	Timeout       *uint32 // milliseconds
	SloppyQuorum  *bool
	NVal          *uint32
	Type          []byte
}

func (r *FetchObjectReq) Marshal() ([]byte, error) {
	if r.Bucket == nil {
		return nil, missingField("RpbGetReq", "bucket")
	}
	if r.Key == nil {
		return nil, missingField("RpbGetReq", "key")
	}
	e := encoder{}
	e.bytes(1, r.Bucket)
	e.bytes(2, r.Key)
	e.optUint32(3, r.R)
	e.optUint32(4, r.PR)
	e.optBool(5, r.BasicQuorum)
	e.optBool(6, r.NotfoundOK)
	e.optBytes(7, r.IfModified)
	e.optBool(8, r.Head)
	e.optBool(9, r.DeletedVClock)
	e.optUint32(10, r.Timeout)
	e.optBool(11, r.SloppyQuorum)
	e.optUint32(12, r.NVal)
	e.optBytes(13, r.Type)
	return e.b, nil
}

func (r *FetchObjectReq) Unmarshal(payload []byte) error {
	*r = FetchObjectReq{}
	return decode("RpbGetReq", payload, func(f field) error {
		switch f.num {
		case 1:
			r.Bucket = f.bytes()
		case 2:
			r.Key = f.bytes()
		case 3:
			r.R = f.uint32p()
		case 4:
			r.PR = f.uint32p()
		case 5:
			r.BasicQuorum = f.boolp()
		case 6:
			r.NotfoundOK = f.boolp()
		case 7:
			r.IfModified = f.bytes()
		case 8:
			r.Head = f.boolp()
		case 9:
			r.DeletedVClock = f.boolp()
		case 10:
			r.Timeout = f.uint32p()
		case 11:
			r.SloppyQuorum = f.boolp()
		case 12:
			r.NVal = f.uint32p()
		case 13:
			r.Type = f.bytes()
		}
		return nil
	})
}

// FetchObjectResp mirrors RpbGetResp. A missing object has no Content.
type FetchObjectResp struct {
	Content   []Content
	VClock    []byte
	Unchanged *bool
}

func (r *FetchObjectResp) Marshal() ([]byte, error) {
	e := encoder{}
	for i := range r.Content {
		e.message(1, &r.Content[i])
	}
	e.optBytes(2, r.VClock)
	e.optBool(3, r.Unchanged)
	return e.b, nil
}

func (r *FetchObjectResp) Unmarshal(payload []byte) error {
	*r = FetchObjectResp{}
	return decode("RpbGetResp", payload, func(f field) error {
		switch f.num {
		case 1:
			c, err := decodeContent(f.bytes())
			if err != nil {
				return err
			}
			r.Content = append(r.Content, c)
		case 2:
			r.VClock = f.bytes()
		case 3:
			r.Unchanged = f.boolp()
		}
		return nil
	})
}

// StoreObjectReq mirrors RpbPutReq. A nil Key asks the server to generate
// one, which is returned in StoreObjectResp.Key.
type StoreObjectReq struct {
	Bucket        []byte
	Key           []byte
	VClock        []byte
	Content       Content
	W             *uint32
	DW            *uint32
	ReturnBody    *bool
	PW            *uint32
	IfNotModified *bool
	IfNoneMatch   *bool
	ReturnHead    *bool
	Timeout       *uint32 // milliseconds
	Asis          *bool
	SloppyQuorum  *bool
	NVal          *uint32
	Type          []byte
}

func (r *StoreObjectReq) Marshal() ([]byte, error) {
	if r.Bucket == nil {
		return nil, missingField("RpbPutReq", "bucket")
	}
	if r.Content.Value == nil {
		return nil, missingField("RpbContent", "value")
	}
	e := encoder{}
	e.bytes(1, r.Bucket)
	e.optBytes(2, r.Key)
	e.optBytes(3, r.VClock)
	e.message(4, &r.Content)
	e.optUint32(5, r.W)
	e.optUint32(6, r.DW)
	e.optBool(7, r.ReturnBody)
	e.optUint32(8, r.PW)
	e.optBool(9, r.IfNotModified)
	e.optBool(10, r.IfNoneMatch)
	e.optBool(11, r.ReturnHead)
	e.optUint32(12, r.Timeout)
	e.optBool(13, r.Asis)
	e.optBool(14, r.SloppyQuorum)
	e.optUint32(15, r.NVal)
	e.optBytes(16, r.Type)
	return e.b, nil
}

func (r *StoreObjectReq) Unmarshal(payload []byte) error {
	*r = StoreObjectReq{}
	return decode("RpbPutReq", payload, func(f field) error {
		var err error
		switch f.num {
		case 1:
			r.Bucket = f.bytes()
		case 2:
			r.Key = f.bytes()
		case 3:
			r.VClock = f.bytes()
		case 4:
			r.Content, err = decodeContent(f.bytes())
		case 5:
			r.W = f.uint32p()
		case 6:
			r.DW = f.uint32p()
		case 7:
			r.ReturnBody = f.boolp()
		case 8:
			r.PW = f.uint32p()
		case 9:
			r.IfNotModified = f.boolp()
		case 10:
			r.IfNoneMatch = f.boolp()
		case 11:
			r.ReturnHead = f.boolp()
		case 12:
			r.Timeout = f.uint32p()
		case 13:
			r.Asis = f.boolp()
		case 14:
			r.SloppyQuorum = f.boolp()
		case 15:
			r.NVal = f.uint32p()
		case 16:
			r.Type = f.bytes()
		}
		return err
	})
}

// StoreObjectResp mirrors RpbPutResp. It is empty unless the request asked
// for the body or head, or the server generated the key.
type StoreObjectResp struct {
	Content []Content
	VClock  []byte
	Key     []byte
}

func (r *StoreObjectResp) Marshal() ([]byte, error) {
	e := encoder{}
	for i := range r.Content {
		e.message(1, &r.Content[i])
	}
	e.optBytes(2, r.VClock)
	e.optBytes(3, r.Key)
	return e.b, nil
}

func (r *StoreObjectResp) Unmarshal(payload []byte) error {
	*r = StoreObjectResp{}
	return decode("RpbPutResp", payload, func(f field) error {
		switch f.num {
		case 1:
			c, err := decodeContent(f.bytes())
			if err != nil {
				return err
			}
			r.Content = append(r.Content, c)
		case 2:
			r.VClock = f.bytes()
		case 3:
			r.Key = f.bytes()
		}
		return nil
	})
}

// DeleteObjectReq mirrors RpbDelReq.
type DeleteObjectReq struct {
	Bucket       []byte
	Key          []byte
	RW           *uint32
	VClock       []byte
	R            *uint32
	W            *uint32
	PR           *uint32
	PW           *uint32
	DW           *uint32
	Timeout      *uint32 // milliseconds
	SloppyQuorum *bool
	NVal         *uint32
	Type         []byte
}

func (r *DeleteObjectReq) Marshal() ([]byte, error) {
	if r.Bucket == nil {
		return nil, missingField("RpbDelReq", "bucket")
	}
	if r.Key == nil {
		return nil, missingField("RpbDelReq", "key")
	}
	e := encoder{}
	e.bytes(1, r.Bucket)
	e.bytes(2, r.Key)
	e.optUint32(3, r.RW)
	e.optBytes(4, r.VClock)
	e.optUint32(5, r.R)
	e.optUint32(6, r.W)
	e.optUint32(7, r.PR)
	e.optUint32(8, r.PW)
	e.optUint32(9, r.DW)
	e.optUint32(10, r.Timeout)
	e.optBool(11, r.SloppyQuorum)
	e.optUint32(12, r.NVal)
	e.optBytes(13, r.Type)
	return e.b, nil
}

func (r *DeleteObjectReq) Unmarshal(payload []byte) error {
	*r = DeleteObjectReq{}
	return decode("RpbDelReq", payload, func(f field) error {
		switch f.num {
		case 1:
			r.Bucket = f.bytes()
		case 2:
			r.Key = f.bytes()
		case 3:
			r.RW = f.uint32p()
		case 4:
			r.VClock = f.bytes()
		case 5:
			r.R = f.uint32p()
		case 6:
			r.W = f.uint32p()
		case 7:
			r.PR = f.uint32p()
		case 8:
			r.PW = f.uint32p()
		case 9:
			r.DW = f.uint32p()
		case 10:
			r.Timeout = f.uint32p()
		case 11:
			r.SloppyQuorum = f.boolp()
		case 12:
			r.NVal = f.uint32p()
		case 13:
			r.Type = f.bytes()
		}
		return nil
	})
}
