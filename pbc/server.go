package pbc

import "google.golang.org/protobuf/encoding/protowire"

// ErrorResp is the payload of a CodeErrorResp frame.
type ErrorResp struct {
	ErrMsg  []byte
	ErrCode uint32
}

func (r *ErrorResp) appendTo(b []byte) []byte {
	e := encoder{b: b}
	e.bytes(1, r.ErrMsg)
	e.varint(2, uint64(r.ErrCode))
	return e.b
}

func (r *ErrorResp) Marshal() ([]byte, error) {
	return r.appendTo(nil), nil
}

func (r *ErrorResp) Unmarshal(payload []byte) error {
	*r = ErrorResp{}
	var hasMsg, hasCode bool
	err := decode("RpbErrorResp", payload, func(f field) error {
		switch f.num {
		case 1:
			r.ErrMsg, hasMsg = f.bytes(), true
		case 2:
			r.ErrCode, hasCode = f.uint32(), true
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !hasMsg {
		return missingField("RpbErrorResp", "errmsg")
	}
	if !hasCode {
		return missingField("RpbErrorResp", "errcode")
	}
	return nil
}

// ServerInfoResp is the reply to CodeGetServerInfoReq.
type ServerInfoResp struct {
	Node          []byte
	ServerVersion []byte
}

func (r *ServerInfoResp) Marshal() ([]byte, error) {
	e := encoder{}
	e.optBytes(1, r.Node)
	e.optBytes(2, r.ServerVersion)
	return e.b, nil
}

func (r *ServerInfoResp) Unmarshal(payload []byte) error {
	*r = ServerInfoResp{}
	return decode("RpbGetServerInfoResp", payload, func(f field) error {
		switch f.num {
		case 1:
			r.Node = f.bytes()
		case 2:
			r.ServerVersion = f.bytes()
		}
		return nil
	})
}

// Pair is a generic key/value pair used for user metadata, secondary
// indexes and search document fields.
type Pair struct {
	Key   []byte
	Value []byte
}

func (p *Pair) appendTo(b []byte) []byte {
	e := encoder{b: b}
	e.bytes(1, p.Key)
	e.optBytes(2, p.Value)
	return e.b
}

func (p *Pair) unmarshal(payload []byte) error {
	return decode("RpbPair", payload, func(f field) error {
		switch f.num {
		case 1:
			p.Key = f.bytes()
		case 2:
			p.Value = f.bytes()
		}
		return nil
	})
}

func appendPairs(e *encoder, num protowire.Number, pairs []Pair) {
	for i := range pairs {
		e.message(num, &pairs[i])
	}
}

func decodePair(b []byte) (Pair, error) {
	var p Pair
	err := p.unmarshal(b)
	return p, err
}
