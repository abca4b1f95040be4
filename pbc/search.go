package pbc

// SearchQueryReq mirrors RpbSearchQueryReq.
type SearchQueryReq struct {
	Q       []byte
	Index   []byte
	Rows    *uint32
	Start   *uint32
	Sort    []byte
	Filter  []byte
	DF      []byte // default field
	Op      []byte // default operator, "and" or "or"
	FL      [][]byte
	Presort []byte
}

func (r *SearchQueryReq) Marshal() ([]byte, error) {
	if r.Q == nil {
		return nil, missingField("RpbSearchQueryReq", "q")
	}
	if r.Index == nil {
		return nil, missingField("RpbSearchQueryReq", "index")
	}
	e := encoder{}
	e.bytes(1, r.Q)
	e.bytes(2, r.Index)
	e.optUint32(3, r.Rows)
	e.optUint32(4, r.Start)
	e.optBytes(5, r.Sort)
	e.optBytes(6, r.Filter)
	e.optBytes(7, r.DF)
	e.optBytes(8, r.Op)
	e.repBytes(9, r.FL)
	e.optBytes(10, r.Presort)
	return e.b, nil
}

func (r *SearchQueryReq) Unmarshal(payload []byte) error {
	*r = SearchQueryReq{}
	return decode("RpbSearchQueryReq", payload, func(f field) error {
		switch f.num {
		case 1:
			r.Q = f.bytes()
		case 2:
			r.Index = f.bytes()
		case 3:
			r.Rows = f.uint32p()
		case 4:
			r.Start = f.uint32p()
		case 5:
			r.Sort = f.bytes()
		case 6:
			r.Filter = f.bytes()
		case 7:
			r.DF = f.bytes()
		case 8:
			r.Op = f.bytes()
		case 9:
			r.FL = append(r.FL, f.bytes())
		case 10:
			r.Presort = f.bytes()
		}
		return nil
	})
}

// SearchDoc is one matching document as a list of field/value pairs.
type SearchDoc struct {
	Fields []Pair
}

func (d *SearchDoc) appendTo(b []byte) []byte {
	e := encoder{b: b}
	appendPairs(&e, 1, d.Fields)
	return e.b
}

// Get returns the first value stored under name.
func (d *SearchDoc) Get(name string) ([]byte, bool) {
	for _, p := range d.Fields {
		if string(p.Key) == name {
			return p.Value, true
		}
	}
	return nil, false
}

// SearchQueryResp mirrors RpbSearchQueryResp.
type SearchQueryResp struct {
	Docs     []SearchDoc
	MaxScore *float32
	NumFound *uint32
}

func (r *SearchQueryResp) Marshal() ([]byte, error) {
	e := encoder{}
	for i := range r.Docs {
		e.message(1, &r.Docs[i])
	}
	e.optFloat32(2, r.MaxScore)
	e.optUint32(3, r.NumFound)
	return e.b, nil
}

func (r *SearchQueryResp) Unmarshal(payload []byte) error {
	*r = SearchQueryResp{}
	return decode("RpbSearchQueryResp", payload, func(f field) error {
		switch f.num {
		case 1:
			var doc SearchDoc
			err := decode("RpbSearchDoc", f.bytes(), func(df field) error {
				if df.num != 1 {
					return nil
				}
				p, err := decodePair(df.bytes())
				if err != nil {
					return err
				}
				doc.Fields = append(doc.Fields, p)
				return nil
			})
			if err != nil {
				return err
			}
			r.Docs = append(r.Docs, doc)
		case 2:
			r.MaxScore = f.float32p()
		case 3:
			r.NumFound = f.uint32p()
		}
		return nil
	})
}
