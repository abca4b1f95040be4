package pbc

// YokozunaIndex describes a search index.
type YokozunaIndex struct {
	Name   []byte
	Schema []byte
	NVal   *uint32
}

func (x *YokozunaIndex) appendTo(b []byte) []byte {
	e := encoder{b: b}
	e.bytes(1, x.Name)
	e.optBytes(2, x.Schema)
	e.optUint32(3, x.NVal)
	return e.b
}

func decodeYokozunaIndex(payload []byte) (YokozunaIndex, error) {
	var x YokozunaIndex
	var hasName bool
	err := decode("RpbYokozunaIndex", payload, func(f field) error {
		switch f.num {
		case 1:
			x.Name, hasName = f.bytes(), true
		case 2:
			x.Schema = f.bytes()
		case 3:
			x.NVal = f.uint32p()
		}
		return nil
	})
	if err != nil {
		return YokozunaIndex{}, err
	}
	if !hasName {
		return YokozunaIndex{}, missingField("RpbYokozunaIndex", "name")
	}
	return x, nil
}

// IndexGetReq mirrors RpbYokozunaIndexGetReq. A nil Name lists every index.
type IndexGetReq struct {
	Name []byte
}

func (r *IndexGetReq) Marshal() ([]byte, error) {
	e := encoder{}
	e.optBytes(1, r.Name)
	return e.b, nil
}

func (r *IndexGetReq) Unmarshal(payload []byte) error {
	*r = IndexGetReq{}
	return decode("RpbYokozunaIndexGetReq", payload, func(f field) error {
		if f.num == 1 {
			r.Name = f.bytes()
		}
		return nil
	})
}

// IndexGetResp mirrors RpbYokozunaIndexGetResp.
type IndexGetResp struct {
	Index []YokozunaIndex
}

func (r *IndexGetResp) Marshal() ([]byte, error) {
	e := encoder{}
	for i := range r.Index {
		e.message(1, &r.Index[i])
	}
	return e.b, nil
}

func (r *IndexGetResp) Unmarshal(payload []byte) error {
	*r = IndexGetResp{}
	return decode("RpbYokozunaIndexGetResp", payload, func(f field) error {
		if f.num == 1 {
			x, err := decodeYokozunaIndex(f.bytes())
			if err != nil {
				return err
			}
			r.Index = append(r.Index, x)
		}
		return nil
	})
}

// IndexPutReq mirrors RpbYokozunaIndexPutReq. The reply is CodePutResp.
type IndexPutReq struct {
	Index   YokozunaIndex
	Timeout *uint32 // milliseconds
}

func (r *IndexPutReq) Marshal() ([]byte, error) {
	if r.Index.Name == nil {
		return nil, missingField("RpbYokozunaIndex", "name")
	}
	e := encoder{}
	e.message(1, &r.Index)
	e.optUint32(2, r.Timeout)
	return e.b, nil
}

func (r *IndexPutReq) Unmarshal(payload []byte) error {
	*r = IndexPutReq{}
	return decode("RpbYokozunaIndexPutReq", payload, func(f field) error {
		var err error
		switch f.num {
		case 1:
			r.Index, err = decodeYokozunaIndex(f.bytes())
		case 2:
			r.Timeout = f.uint32p()
		}
		return err
	})
}

// IndexDeleteReq mirrors RpbYokozunaIndexDeleteReq. The reply is CodeDelResp.
type IndexDeleteReq struct {
	Name []byte
}

func (r *IndexDeleteReq) Marshal() ([]byte, error) {
	if r.Name == nil {
		return nil, missingField("RpbYokozunaIndexDeleteReq", "name")
	}
	e := encoder{}
	e.bytes(1, r.Name)
	return e.b, nil
}

func (r *IndexDeleteReq) Unmarshal(payload []byte) error {
	*r = IndexDeleteReq{}
	return decode("RpbYokozunaIndexDeleteReq", payload, func(f field) error {
		if f.num == 1 {
			r.Name = f.bytes()
		}
		return nil
	})
}

// YokozunaSchema is a named Solr schema document.
type YokozunaSchema struct {
	Name    []byte
	Content []byte
}

func (s *YokozunaSchema) appendTo(b []byte) []byte {
	e := encoder{b: b}
	e.bytes(1, s.Name)
	e.optBytes(2, s.Content)
	return e.b
}

func decodeYokozunaSchema(payload []byte) (YokozunaSchema, error) {
	var s YokozunaSchema
	var hasName bool
	err := decode("RpbYokozunaSchema", payload, func(f field) error {
		switch f.num {
		case 1:
			s.Name, hasName = f.bytes(), true
		case 2:
			s.Content = f.bytes()
		}
		return nil
	})
	if err != nil {
		return YokozunaSchema{}, err
	}
	if !hasName {
		return YokozunaSchema{}, missingField("RpbYokozunaSchema", "name")
	}
	return s, nil
}

// SchemaPutReq mirrors RpbYokozunaSchemaPutReq. The reply is CodePutResp.
type SchemaPutReq struct {
	Schema YokozunaSchema
}

func (r *SchemaPutReq) Marshal() ([]byte, error) {
	if r.Schema.Name == nil {
		return nil, missingField("RpbYokozunaSchema", "name")
	}
	e := encoder{}
	e.message(1, &r.Schema)
	return e.b, nil
}

func (r *SchemaPutReq) Unmarshal(payload []byte) error {
	*r = SchemaPutReq{}
	return decode("RpbYokozunaSchemaPutReq", payload, func(f field) error {
		var err error
		if f.num == 1 {
			r.Schema, err = decodeYokozunaSchema(f.bytes())
		}
		return err
	})
}

// SchemaGetReq mirrors RpbYokozunaSchemaGetReq.
type SchemaGetReq struct {
	Name []byte
}

func (r *SchemaGetReq) Marshal() ([]byte, error) {
	if r.Name == nil {
		return nil, missingField("RpbYokozunaSchemaGetReq", "name")
	}
	e := encoder{}
	e.bytes(1, r.Name)
	return e.b, nil
}

func (r *SchemaGetReq) Unmarshal(payload []byte) error {
	*r = SchemaGetReq{}
	return decode("RpbYokozunaSchemaGetReq", payload, func(f field) error {
		if f.num == 1 {
			r.Name = f.bytes()
		}
		return nil
	})
}

// SchemaGetResp mirrors RpbYokozunaSchemaGetResp.
type SchemaGetResp struct {
	Schema YokozunaSchema
}

func (r *SchemaGetResp) Marshal() ([]byte, error) {
	e := encoder{}
	e.message(1, &r.Schema)
	return e.b, nil
}

func (r *SchemaGetResp) Unmarshal(payload []byte) error {
	*r = SchemaGetResp{}
	var hasSchema bool
	err := decode("RpbYokozunaSchemaGetResp", payload, func(f field) error {
		var err error
		if f.num == 1 {
			hasSchema = true
			r.Schema, err = decodeYokozunaSchema(f.bytes())
		}
		return err
	})
	if err != nil {
		return err
	}
	if !hasSchema {
		return missingField("RpbYokozunaSchemaGetResp", "schema")
	}
	return nil
}
