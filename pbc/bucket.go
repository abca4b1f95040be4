package pbc

// ModFun names an Erlang module/function pair, used for hooks and key
// hashing functions.
type ModFun struct {
	Module   []byte
	Function []byte
}

func (m *ModFun) appendTo(b []byte) []byte {
	e := encoder{b: b}
	e.bytes(1, m.Module)
	e.bytes(2, m.Function)
	return e.b
}

func decodeModFun(payload []byte) (*ModFun, error) {
	m := &ModFun{}
	var hasModule, hasFunction bool
	err := decode("RpbModFun", payload, func(f field) error {
		switch f.num {
		case 1:
			m.Module, hasModule = f.bytes(), true
		case 2:
			m.Function, hasFunction = f.bytes(), true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !hasModule {
		return nil, missingField("RpbModFun", "module")
	}
	if !hasFunction {
		return nil, missingField("RpbModFun", "function")
	}
	return m, nil
}

// CommitHook is either an Erlang ModFun or the name of a JavaScript function.
type CommitHook struct {
	ModFun *ModFun
	Name   []byte
}

func (h *CommitHook) appendTo(b []byte) []byte {
	e := encoder{b: b}
	if h.ModFun != nil {
		e.message(1, h.ModFun)
	}
	e.optBytes(2, h.Name)
	return e.b
}

func decodeCommitHook(payload []byte) (CommitHook, error) {
	var h CommitHook
	err := decode("RpbCommitHook", payload, func(f field) error {
		switch f.num {
		case 1:
			mf, err := decodeModFun(f.bytes())
			if err != nil {
				return err
			}
			h.ModFun = mf
		case 2:
			h.Name = f.bytes()
		}
		return nil
	})
	return h, err
}

// ReplMode is the multi-datacenter replication mode of a bucket.
type ReplMode uint32

const (
	ReplFalse    ReplMode = 0
	ReplRealtime ReplMode = 1
	ReplFullsync ReplMode = 2
	ReplTrue     ReplMode = 3
)

// BucketProps mirrors RpbBucketProps. Nil fields are left untouched by a set
// and were not reported by a get.
type BucketProps struct {
	NVal          *uint32
	AllowMult     *bool
	LastWriteWins *bool
	Precommit     []CommitHook
	HasPrecommit  *bool
	Postcommit    []CommitHook
	HasPostcommit *bool
	ChashKeyfun   *ModFun
	Linkfun       *ModFun
	OldVClock     *uint32
	YoungVClock   *uint32
	BigVClock     *uint32
	SmallVClock   *uint32
	PR            *uint32
	R             *uint32
	W             *uint32
	PW            *uint32
	DW            *uint32
	RW            *uint32
	BasicQuorum   *bool
	NotfoundOK    *bool
	Backend       []byte
	Search        *bool
	Repl          *ReplMode
	SearchIndex   []byte
	Datatype      []byte
	Consistent    *bool
	WriteOnce     *bool
	HllPrecision  *uint32
	TTL           *uint32
}

func (p *BucketProps) appendTo(b []byte) []byte {
	e := encoder{b: b}
	e.optUint32(1, p.NVal)
	e.optBool(2, p.AllowMult)
	e.optBool(3, p.LastWriteWins)
	for i := range p.Precommit {
		e.message(4, &p.Precommit[i])
	}
	e.optBool(5, p.HasPrecommit)
	for i := range p.Postcommit {
		e.message(6, &p.Postcommit[i])
	}
	e.optBool(7, p.HasPostcommit)
	if p.ChashKeyfun != nil {
		e.message(8, p.ChashKeyfun)
	}
	if p.Linkfun != nil {
		e.message(9, p.Linkfun)
	}
	e.optUint32(10, p.OldVClock)
	e.optUint32(11, p.YoungVClock)
	e.optUint32(12, p.BigVClock)
	e.optUint32(13, p.SmallVClock)
	e.optUint32(14, p.PR)
	e.optUint32(15, p.R)
	e.optUint32(16, p.W)
	e.optUint32(17, p.PW)
	e.optUint32(18, p.DW)
	e.optUint32(19, p.RW)
	e.optBool(20, p.BasicQuorum)
	e.optBool(21, p.NotfoundOK)
	e.optBytes(22, p.Backend)
	e.optBool(23, p.Search)
	if p.Repl != nil {
		e.varint(24, uint64(*p.Repl))
	}
	e.optBytes(25, p.SearchIndex)
	e.optBytes(26, p.Datatype)
	e.optBool(27, p.Consistent)
	e.optBool(28, p.WriteOnce)
	e.optUint32(29, p.HllPrecision)
	e.optUint32(30, p.TTL)
	return e.b
}

func (p *BucketProps) Marshal() ([]byte, error) {
	return p.appendTo(nil), nil
}

func (p *BucketProps) Unmarshal(payload []byte) error {
	*p = BucketProps{}
	return decode("RpbBucketProps", payload, func(f field) error {
		var err error
		switch f.num {
		case 1:
			p.NVal = f.uint32p()
		case 2:
			p.AllowMult = f.boolp()
		case 3:
			p.LastWriteWins = f.boolp()
		case 4:
			var h CommitHook
			if h, err = decodeCommitHook(f.bytes()); err == nil {
				p.Precommit = append(p.Precommit, h)
			}
		case 5:
			p.HasPrecommit = f.boolp()
		case 6:
			var h CommitHook
			if h, err = decodeCommitHook(f.bytes()); err == nil {
				p.Postcommit = append(p.Postcommit, h)
			}
		case 7:
			p.HasPostcommit = f.boolp()
		case 8:
			p.ChashKeyfun, err = decodeModFun(f.bytes())
		case 9:
			p.Linkfun, err = decodeModFun(f.bytes())
		case 10:
			p.OldVClock = f.uint32p()
		case 11:
			p.YoungVClock = f.uint32p()
		case 12:
			p.BigVClock = f.uint32p()
		case 13:
			p.SmallVClock = f.uint32p()
		case 14:
			p.PR = f.uint32p()
		case 15:
			p.R = f.uint32p()
		case 16:
			p.W = f.uint32p()
		case 17:
			p.PW = f.uint32p()
		case 18:
			p.DW = f.uint32p()
		case 19:
			p.RW = f.uint32p()
		case 20:
			p.BasicQuorum = f.boolp()
		case 21:
			p.NotfoundOK = f.boolp()
		case 22:
			p.Backend = f.bytes()
		case 23:
			p.Search = f.boolp()
		case 24:
			mode := ReplMode(f.uint32())
			p.Repl = &mode
		case 25:
			p.SearchIndex = f.bytes()
		case 26:
			p.Datatype = f.bytes()
		case 27:
			p.Consistent = f.boolp()
		case 28:
			p.WriteOnce = f.boolp()
		case 29:
			p.HllPrecision = f.uint32p()
		case 30:
			p.TTL = f.uint32p()
		}
		return err
	})
}

// Merge copies every field set in other onto p.
func (p *BucketProps) Merge(other *BucketProps) {
	if other.NVal != nil {
		p.NVal = other.NVal
	}
	if other.AllowMult != nil {
		p.AllowMult = other.AllowMult
	}
	if other.LastWriteWins != nil {
		p.LastWriteWins = other.LastWriteWins
	}
	if other.Precommit != nil {
		p.Precommit = other.Precommit
	}
	if other.HasPrecommit != nil {
		p.HasPrecommit = other.HasPrecommit
	}
	if other.Postcommit != nil {
		p.Postcommit = other.Postcommit
	}
	if other.HasPostcommit != nil {
		p.HasPostcommit = other.HasPostcommit
	}
	if other.ChashKeyfun != nil {
		p.ChashKeyfun = other.ChashKeyfun
	}
	if other.Linkfun != nil {
		p.Linkfun = other.Linkfun
	}
	if other.OldVClock != nil {
		p.OldVClock = other.OldVClock
	}
	if other.YoungVClock != nil {
		p.YoungVClock = other.YoungVClock
	}
	if other.BigVClock != nil {
		p.BigVClock = other.BigVClock
	}
	if other.SmallVClock != nil {
		p.SmallVClock = other.SmallVClock
	}
	if other.PR != nil {
		p.PR = other.PR
	}
	if other.R != nil {
		p.R = other.R
	}
	if other.W != nil {
		p.W = other.W
	}
	if other.PW != nil {
		p.PW = other.PW
	}
	if other.DW != nil {
		p.DW = other.DW
	}
	if other.RW != nil {
		p.RW = other.RW
	}
	if other.BasicQuorum != nil {
		p.BasicQuorum = other.BasicQuorum
	}
	if other.NotfoundOK != nil {
		p.NotfoundOK = other.NotfoundOK
	}
	if other.Backend != nil {
		p.Backend = other.Backend
	}
	if other.Search != nil {
		p.Search = other.Search
	}
	if other.Repl != nil {
		p.Repl = other.Repl
	}
	if other.SearchIndex != nil {
		p.SearchIndex = other.SearchIndex
	}
	if other.Datatype != nil {
		p.Datatype = other.Datatype
	}
	if other.Consistent != nil {
		p.Consistent = other.Consistent
	}
	if other.WriteOnce != nil {
		p.WriteOnce = other.WriteOnce
	}
	if other.HllPrecision != nil {
		p.HllPrecision = other.HllPrecision
	}
	if other.TTL != nil {
		p.TTL = other.TTL
	}
}

// GetBucketReq asks for the properties of a bucket.
type GetBucketReq struct {
	Bucket []byte
	Type   []byte
}

func (r *GetBucketReq) Marshal() ([]byte, error) {
	if r.Bucket == nil {
		return nil, missingField("RpbGetBucketReq", "bucket")
	}
	e := encoder{}
	e.bytes(1, r.Bucket)
	e.optBytes(2, r.Type)
	return e.b, nil
}

func (r *GetBucketReq) Unmarshal(payload []byte) error {
	*r = GetBucketReq{}
	return decode("RpbGetBucketReq", payload, func(f field) error {
		switch f.num {
		case 1:
			r.Bucket = f.bytes()
		case 2:
			r.Type = f.bytes()
		}
		return nil
	})
}

// GetBucketResp answers both CodeGetBucketReq and CodeGetBucketTypeReq.
type GetBucketResp struct {
	Props BucketProps
}

func (r *GetBucketResp) Marshal() ([]byte, error) {
	e := encoder{}
	e.message(1, &r.Props)
	return e.b, nil
}

func (r *GetBucketResp) Unmarshal(payload []byte) error {
	*r = GetBucketResp{}
	var hasProps bool
	err := decode("RpbGetBucketResp", payload, func(f field) error {
		if f.num == 1 {
			hasProps = true
			return r.Props.Unmarshal(f.bytes())
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !hasProps {
		return missingField("RpbGetBucketResp", "props")
	}
	return nil
}

// SetBucketReq updates the properties of a bucket.
type SetBucketReq struct {
	Bucket []byte
	Props  BucketProps
	Type   []byte
}

func (r *SetBucketReq) Marshal() ([]byte, error) {
	if r.Bucket == nil {
		return nil, missingField("RpbSetBucketReq", "bucket")
	}
	e := encoder{}
	e.bytes(1, r.Bucket)
	e.message(2, &r.Props)
	e.optBytes(3, r.Type)
	return e.b, nil
}

func (r *SetBucketReq) Unmarshal(payload []byte) error {
	*r = SetBucketReq{}
	return decode("RpbSetBucketReq", payload, func(f field) error {
		switch f.num {
		case 1:
			r.Bucket = f.bytes()
		case 2:
			return r.Props.Unmarshal(f.bytes())
		case 3:
			r.Type = f.bytes()
		}
		return nil
	})
}

// ResetBucketReq restores the default properties of a bucket.
type ResetBucketReq struct {
	Bucket []byte
	Type   []byte
}

func (r *ResetBucketReq) Marshal() ([]byte, error) {
	if r.Bucket == nil {
		return nil, missingField("RpbResetBucketReq", "bucket")
	}
	e := encoder{}
	e.bytes(1, r.Bucket)
	e.optBytes(2, r.Type)
	return e.b, nil
}

func (r *ResetBucketReq) Unmarshal(payload []byte) error {
	*r = ResetBucketReq{}
	return decode("RpbResetBucketReq", payload, func(f field) error {
		switch f.num {
		case 1:
			r.Bucket = f.bytes()
		case 2:
			r.Type = f.bytes()
		}
		return nil
	})
}

// GetBucketTypeReq asks for the properties of a bucket type.
type GetBucketTypeReq struct {
	Type []byte
}

func (r *GetBucketTypeReq) Marshal() ([]byte, error) {
	if r.Type == nil {
		return nil, missingField("RpbGetBucketTypeReq", "type")
	}
	e := encoder{}
	e.bytes(1, r.Type)
	return e.b, nil
}

func (r *GetBucketTypeReq) Unmarshal(payload []byte) error {
	*r = GetBucketTypeReq{}
	return decode("RpbGetBucketTypeReq", payload, func(f field) error {
		if f.num == 1 {
			r.Type = f.bytes()
		}
		return nil
	})
}

// SetBucketTypeReq updates the properties of a bucket type.
type SetBucketTypeReq struct {
	Type  []byte
	Props BucketProps
}

func (r *SetBucketTypeReq) Marshal() ([]byte, error) {
	if r.Type == nil {
		return nil, missingField("RpbSetBucketTypeReq", "type")
	}
	e := encoder{}
	e.bytes(1, r.Type)
	e.message(2, &r.Props)
	return e.b, nil
}

func (r *SetBucketTypeReq) Unmarshal(payload []byte) error {
	*r = SetBucketTypeReq{}
	return decode("RpbSetBucketTypeReq", payload, func(f field) error {
		switch f.num {
		case 1:
			r.Type = f.bytes()
		case 2:
			return r.Props.Unmarshal(f.bytes())
		}
		return nil
	})
}
