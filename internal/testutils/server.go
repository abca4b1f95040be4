package testutils

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tautek/riak/internal"
	"github.com/tautek/riak/pbc"
	"github.com/zeebo/xxh3"
)

const (
	// DefaultBatchSize is the number of names per listing frame.
	DefaultBatchSize = 2

	// RingSize is the number of partitions of the fake ring.
	RingSize = 64

	defaultType = "default"
)

// HandlerFunc answers one request frame in place of the built-in logic.
// It may write any bytes to w. Returning an error closes the connection.
type HandlerFunc func(w io.Writer, payload []byte) error

// FakeServer is an in-memory Riak node speaking the protocol buffers
// framing over a real TCP listener. It keeps objects, bucket properties,
// search schemas and indexes, and answers listings in several frames.
type FakeServer struct {
	listener net.Listener
	wg       sync.WaitGroup

	// BatchSize is read on every listing; set it before issuing the request.
	BatchSize int

	Node    string
	Version string
	Nodes   []string

	mu          sync.Mutex
	objects     map[string]map[string]*storedObject // "type/bucket" -> key
	bucketProps map[string]pbc.BucketProps
	typeProps   map[string]pbc.BucketProps
	schemas     map[string][]byte
	indexes     map[string]pbc.YokozunaIndex
	handlers    map[pbc.MessageCode][]HandlerFunc
	down        map[string]bool
	conns       map[net.Conn]struct{}
	counter     uint64
	closed      bool

	accepted atomic.Int64
	requests atomic.Int64
}

type storedObject struct {
	bucketType []byte
	bucket     []byte
	key        []byte
	vclock     []byte
	content    pbc.Content
}

// NewFakeServer starts a server on a random local port.
func NewFakeServer() (*FakeServer, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	s := &FakeServer{
		listener:    listener,
		BatchSize:   DefaultBatchSize,
		Node:        "riak@127.0.0.1",
		Version:     "2.9.10",
		Nodes:       []string{"riak1@127.0.0.1", "riak2@127.0.0.1", "riak3@127.0.0.1"},
		objects:     make(map[string]map[string]*storedObject),
		bucketProps: make(map[string]pbc.BucketProps),
		typeProps:   map[string]pbc.BucketProps{defaultType: defaultProps()},
		schemas:     map[string][]byte{"_yz_default": []byte("<schema name=\"_yz_default\"/>")},
		indexes:     make(map[string]pbc.YokozunaIndex),
		handlers:    make(map[pbc.MessageCode][]HandlerFunc),
		down:        make(map[string]bool),
		conns:       make(map[net.Conn]struct{}),
	}

	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Addr returns the listener address.
func (s *FakeServer) Addr() string {
	return s.listener.Addr().String()
}

// Close stops the listener and drops every open connection.
func (s *FakeServer) Close() error {
	err := s.listener.Close()

	s.mu.Lock()
	s.closed = true
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

// Accepted returns the number of connections accepted so far.
func (s *FakeServer) Accepted() int {
	return int(s.accepted.Load())
}

// Requests returns the number of request frames read so far.
func (s *FakeServer) Requests() int {
	return int(s.requests.Load())
}

// Handle queues a one-shot handler for the next request with code.
// Handlers for the same code run in the order they were queued.
func (s *FakeServer) Handle(code pbc.MessageCode, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[code] = append(s.handlers[code], fn)
}

// FailNext makes the next request with code answer with an RpbErrorResp.
func (s *FakeServer) FailNext(code pbc.MessageCode, errCode uint32, msg string) {
	s.Handle(code, func(w io.Writer, _ []byte) error {
		_, err := w.Write(ErrorFrame(errCode, msg))
		return err
	})
}

// SetNodeDown marks a ring node unavailable; its preflist entries are served
// by fallbacks.
func (s *FakeServer) SetNodeDown(node string, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down[node] = down
}

func (s *FakeServer) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.accepted.Add(1)

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serve(conn)
		}()
	}
}

func (s *FakeServer) serve(conn net.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	reader := bufio.NewReader(conn)
	for {
		code, payload, err := pbc.ReadFrame(reader, 0)
		if err != nil {
			return
		}
		s.requests.Add(1)

		if fn := s.nextHandler(code); fn != nil {
			if err := fn(conn, payload); err != nil {
				return
			}
			continue
		}

		var out bytes.Buffer
		if err := s.dispatch(&out, code, payload); err != nil {
			out.Reset()
			out.Write(ErrorFrame(0, err.Error()))
		}
		if _, err := conn.Write(out.Bytes()); err != nil {
			return
		}
	}
}

func (s *FakeServer) nextHandler(code pbc.MessageCode) HandlerFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.handlers[code]
	if len(queue) == 0 {
		return nil
	}
	s.handlers[code] = queue[1:]
	return queue[0]
}

// dispatch writes the reply frames for one request. A returned error is sent
// back to the client as an RpbErrorResp.
func (s *FakeServer) dispatch(w *bytes.Buffer, code pbc.MessageCode, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch code {
	case pbc.CodePingReq:
		return reply(w, pbc.CodePingResp, nil)

	case pbc.CodeGetServerInfoReq:
		return reply(w, pbc.CodeGetServerInfoResp, &pbc.ServerInfoResp{
			Node:          []byte(s.Node),
			ServerVersion: []byte(s.Version),
		})

	case pbc.CodeGetReq:
		var req pbc.FetchObjectReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		return reply(w, pbc.CodeGetResp, s.fetch(&req))

	case pbc.CodePutReq:
		var req pbc.StoreObjectReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		resp, err := s.store(&req)
		if err != nil {
			return err
		}
		return reply(w, pbc.CodePutResp, resp)

	case pbc.CodeDelReq:
		var req pbc.DeleteObjectReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		if bucket := s.objects[bucketID(req.Type, req.Bucket)]; bucket != nil {
			delete(bucket, string(req.Key))
		}
		return reply(w, pbc.CodeDelResp, nil)

	case pbc.CodeListBucketsReq:
		var req pbc.ListBucketsReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		names := s.bucketNames(req.Type)
		return s.writeBatches(w, names, func(batch [][]byte, done bool) pbc.Marshaler {
			return &pbc.ListBucketsResp{Buckets: batch, Done: done}
		}, pbc.CodeListBucketsResp)

	case pbc.CodeListKeysReq:
		var req pbc.ListKeysReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		keys := s.keys(req.Type, req.Bucket)
		return s.writeBatches(w, keys, func(batch [][]byte, done bool) pbc.Marshaler {
			return &pbc.ListKeysResp{Keys: batch, Done: done}
		}, pbc.CodeListKeysResp)

	case pbc.CodeGetBucketReq:
		var req pbc.GetBucketReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		props, err := s.props(req.Type, req.Bucket)
		if err != nil {
			return err
		}
		return reply(w, pbc.CodeGetBucketResp, &pbc.GetBucketResp{Props: props})

	case pbc.CodeSetBucketReq:
		var req pbc.SetBucketReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		if _, ok := s.typeProps[typeName(req.Type)]; !ok {
			return fmt.Errorf("no_type")
		}
		id := bucketID(req.Type, req.Bucket)
		props := s.bucketProps[id]
		props.Merge(&req.Props)
		s.bucketProps[id] = props
		return reply(w, pbc.CodeSetBucketResp, nil)

	case pbc.CodeResetBucketReq:
		var req pbc.ResetBucketReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		delete(s.bucketProps, bucketID(req.Type, req.Bucket))
		return reply(w, pbc.CodeResetBucketResp, nil)

	case pbc.CodeGetBucketTypeReq:
		var req pbc.GetBucketTypeReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		props, ok := s.typeProps[string(req.Type)]
		if !ok {
			return fmt.Errorf("no_type")
		}
		return reply(w, pbc.CodeGetBucketTypeResp, &pbc.GetBucketResp{Props: props})

	case pbc.CodeSetBucketTypeReq:
		var req pbc.SetBucketTypeReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		props, ok := s.typeProps[string(req.Type)]
		if !ok {
			props = defaultProps()
		}
		props.Merge(&req.Props)
		s.typeProps[string(req.Type)] = props
		return reply(w, pbc.CodeSetBucketTypeResp, nil)

	case pbc.CodeGetBucketKeyPreflistReq:
		var req pbc.PreflistReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		props, err := s.props(req.Type, req.Bucket)
		if err != nil {
			return err
		}
		return reply(w, pbc.CodeGetBucketKeyPreflistResp, &pbc.PreflistResp{
			Preflist: s.preflist(req.Bucket, req.Key, int(*props.NVal)),
		})

	case pbc.CodeYokozunaSchemaPutReq:
		var req pbc.SchemaPutReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		s.schemas[string(req.Schema.Name)] = req.Schema.Content
		return reply(w, pbc.CodeYokozunaSchemaPutResp, nil)

	case pbc.CodeYokozunaSchemaGetReq:
		var req pbc.SchemaGetReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		content, ok := s.schemas[string(req.Name)]
		if !ok {
			return fmt.Errorf("notfound")
		}
		return reply(w, pbc.CodeYokozunaSchemaGetResp, &pbc.SchemaGetResp{
			Schema: pbc.YokozunaSchema{Name: req.Name, Content: content},
		})

	case pbc.CodeYokozunaIndexPutReq:
		var req pbc.IndexPutReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		index := req.Index
		if index.Schema == nil {
			index.Schema = []byte("_yz_default")
		}
		if _, ok := s.schemas[string(index.Schema)]; !ok {
			return fmt.Errorf("Schema %s does not exist", index.Schema)
		}
		if index.NVal == nil {
			index.NVal = pbc.Uint32(3)
		}
		s.indexes[string(index.Name)] = index
		return reply(w, pbc.CodeYokozunaIndexPutResp, nil)

	case pbc.CodeYokozunaIndexGetReq:
		var req pbc.IndexGetReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		var resp pbc.IndexGetResp
		if req.Name != nil {
			index, ok := s.indexes[string(req.Name)]
			if !ok {
				return fmt.Errorf("notfound")
			}
			resp.Index = append(resp.Index, index)
		} else {
			for _, name := range sortedKeys(s.indexes) {
				resp.Index = append(resp.Index, s.indexes[name])
			}
		}
		return reply(w, pbc.CodeYokozunaIndexGetResp, &resp)

	case pbc.CodeYokozunaIndexDeleteReq:
		var req pbc.IndexDeleteReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		if _, ok := s.indexes[string(req.Name)]; !ok {
			return fmt.Errorf("notfound")
		}
		delete(s.indexes, string(req.Name))
		return reply(w, pbc.CodeYokozunaIndexDeleteResp, nil)

	case pbc.CodeSearchQueryReq:
		var req pbc.SearchQueryReq
		if err := req.Unmarshal(payload); err != nil {
			return err
		}
		resp, err := s.search(&req)
		if err != nil {
			return err
		}
		return reply(w, pbc.CodeSearchQueryResp, resp)
	}

	return fmt.Errorf("Unknown message code: %d", uint8(code))
}

func (s *FakeServer) fetch(req *pbc.FetchObjectReq) *pbc.FetchObjectResp {
	obj := s.objects[bucketID(req.Type, req.Bucket)][string(req.Key)]
	if obj == nil {
		return &pbc.FetchObjectResp{}
	}
	if req.IfModified != nil && bytes.Equal(req.IfModified, obj.vclock) {
		return &pbc.FetchObjectResp{Unchanged: pbc.Bool(true)}
	}

	content := obj.content
	if req.Head != nil && *req.Head {
		content.Value = []byte{}
	}
	return &pbc.FetchObjectResp{Content: []pbc.Content{content}, VClock: obj.vclock}
}

func (s *FakeServer) store(req *pbc.StoreObjectReq) (*pbc.StoreObjectResp, error) {
	if _, ok := s.typeProps[typeName(req.Type)]; !ok {
		return nil, fmt.Errorf("no_type")
	}

	id := bucketID(req.Type, req.Bucket)
	bucket := s.objects[id]
	if bucket == nil {
		bucket = make(map[string]*storedObject)
		s.objects[id] = bucket
	}

	s.counter++
	resp := &pbc.StoreObjectResp{}

	key := req.Key
	if key == nil {
		key = []byte(hexHash(id, s.counter))
		resp.Key = key
	}

	existing := bucket[string(key)]
	if req.IfNoneMatch != nil && *req.IfNoneMatch && existing != nil {
		return nil, fmt.Errorf("match_found")
	}
	if req.IfNotModified != nil && *req.IfNotModified &&
		(existing == nil || !bytes.Equal(existing.vclock, req.VClock)) {
		return nil, fmt.Errorf("modified")
	}

	now := time.Now()
	content := req.Content
	content.VTag = []byte(hexHash(string(content.Value), s.counter))
	content.LastMod = pbc.Uint32(uint32(now.Unix()))
	content.LastModUsecs = pbc.Uint32(uint32(now.Nanosecond() / 1000))

	obj := &storedObject{
		bucketType: req.Type,
		bucket:     req.Bucket,
		key:        key,
		vclock:     vclock(id, key, s.counter),
		content:    content,
	}
	bucket[string(key)] = obj

	switch {
	case req.ReturnBody != nil && *req.ReturnBody:
		resp.Content = []pbc.Content{obj.content}
		resp.VClock = obj.vclock
	case req.ReturnHead != nil && *req.ReturnHead:
		head := obj.content
		head.Value = []byte{}
		resp.Content = []pbc.Content{head}
		resp.VClock = obj.vclock
	}
	return resp, nil
}

// props returns the type defaults overlaid with the bucket settings.
func (s *FakeServer) props(bucketType, bucket []byte) (pbc.BucketProps, error) {
	props, ok := s.typeProps[typeName(bucketType)]
	if !ok {
		return pbc.BucketProps{}, fmt.Errorf("no_type")
	}
	if custom, ok := s.bucketProps[bucketID(bucketType, bucket)]; ok {
		props.Merge(&custom)
	}
	return props, nil
}

// preflist walks nVal consecutive partitions from the key's ring slot. A
// down node is replaced by the next live one and reported as a fallback.
func (s *FakeServer) preflist(bucket, key []byte, nVal int) []pbc.PreflistItem {
	if nVal <= 0 {
		return nil
	}
	partitions := internal.Ring{Partitions: RingSize}.Preflist(bucket, key, nVal)
	start := partitions[0]

	items := make([]pbc.PreflistItem, 0, nVal)
	for i, partition := range partitions {
		node := s.Nodes[(start+i)%len(s.Nodes)]
		item := pbc.PreflistItem{Partition: int64(partition), Node: []byte(node), Primary: true}

		if s.down[node] {
			item.Primary = false
			for j := 1; j < len(s.Nodes); j++ {
				fallback := s.Nodes[(start+i+j)%len(s.Nodes)]
				if !s.down[fallback] {
					item.Node = []byte(fallback)
					break
				}
			}
		}
		items = append(items, item)
	}
	return items
}

// search matches "*:*" or "field:term" against objects of the buckets
// whose search_index property names the index. Supported fields are
// _yz_rk (key), _yz_rb (bucket) and value (substring of the value).
func (s *FakeServer) search(req *pbc.SearchQueryReq) (*pbc.SearchQueryResp, error) {
	if _, ok := s.indexes[string(req.Index)]; !ok {
		return nil, fmt.Errorf("No index <<\"%s\">> found.", req.Index)
	}

	field, term, ok := strings.Cut(string(req.Q), ":")
	if !ok {
		return nil, fmt.Errorf("syntax error in query %q", req.Q)
	}

	resp := &pbc.SearchQueryResp{}
	for _, id := range sortedKeys(s.objects) {
		bucket := s.objects[id]
		for _, k := range sortedKeys(bucket) {
			obj := bucket[k]
			props, err := s.props(obj.bucketType, obj.bucket)
			if err != nil || !bytes.Equal(props.SearchIndex, req.Index) {
				continue
			}
			if !matches(obj, field, term) {
				continue
			}
			resp.Docs = append(resp.Docs, pbc.SearchDoc{Fields: []pbc.Pair{
				{Key: []byte("_yz_rb"), Value: obj.bucket},
				{Key: []byte("_yz_rk"), Value: obj.key},
				{Key: []byte("score"), Value: []byte("1.0")},
				{Key: []byte("value"), Value: obj.content.Value},
			}})
		}
	}

	found := uint32(len(resp.Docs))
	resp.NumFound = &found
	if found > 0 {
		score := float32(1)
		resp.MaxScore = &score
	}

	start := 0
	if req.Start != nil {
		start = min(int(*req.Start), len(resp.Docs))
	}
	resp.Docs = resp.Docs[start:]
	if req.Rows != nil && int(*req.Rows) < len(resp.Docs) {
		resp.Docs = resp.Docs[:*req.Rows]
	}
	return resp, nil
}

func matches(obj *storedObject, field, term string) bool {
	if field == "*" && term == "*" {
		return true
	}
	switch field {
	case "_yz_rk":
		return string(obj.key) == term
	case "_yz_rb":
		return string(obj.bucket) == term
	case "value":
		return bytes.Contains(obj.content.Value, []byte(term))
	}
	return false
}

func (s *FakeServer) bucketNames(bucketType []byte) [][]byte {
	prefix := typeName(bucketType) + "/"
	var names [][]byte
	for _, id := range sortedKeys(s.objects) {
		if name, ok := strings.CutPrefix(id, prefix); ok && len(s.objects[id]) > 0 {
			names = append(names, []byte(name))
		}
	}
	return names
}

func (s *FakeServer) keys(bucketType, bucket []byte) [][]byte {
	objects := s.objects[bucketID(bucketType, bucket)]
	keys := make([][]byte, 0, len(objects))
	for _, k := range sortedKeys(objects) {
		keys = append(keys, []byte(k))
	}
	return keys
}

// writeBatches splits items into frames of BatchSize. The last frame has
// done set and carries the remaining items, if any.
func (s *FakeServer) writeBatches(w *bytes.Buffer, items [][]byte, build func([][]byte, bool) pbc.Marshaler, code pbc.MessageCode) error {
	size := s.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	for len(items) > size {
		if err := reply(w, code, build(items[:size], false)); err != nil {
			return err
		}
		items = items[size:]
	}
	return reply(w, code, build(items, true))
}

func reply(w *bytes.Buffer, code pbc.MessageCode, record pbc.Marshaler) error {
	var payload []byte
	if record != nil {
		var err error
		if payload, err = record.Marshal(); err != nil {
			return err
		}
	}
	return pbc.WriteFrame(w, code, payload)
}

func defaultProps() pbc.BucketProps {
	return pbc.BucketProps{
		NVal:          pbc.Uint32(3),
		AllowMult:     pbc.Bool(false),
		LastWriteWins: pbc.Bool(false),
		HasPrecommit:  pbc.Bool(false),
		HasPostcommit: pbc.Bool(false),
		OldVClock:     pbc.Uint32(86400),
		YoungVClock:   pbc.Uint32(20),
		BigVClock:     pbc.Uint32(50),
		SmallVClock:   pbc.Uint32(50),
		PR:            pbc.Uint32(0),
		R:             pbc.Uint32(pbc.QuorumQuorum),
		W:             pbc.Uint32(pbc.QuorumQuorum),
		PW:            pbc.Uint32(0),
		DW:            pbc.Uint32(pbc.QuorumQuorum),
		RW:            pbc.Uint32(pbc.QuorumQuorum),
		BasicQuorum:   pbc.Bool(false),
		NotfoundOK:    pbc.Bool(true),
	}
}

func typeName(bucketType []byte) string {
	if len(bucketType) == 0 {
		return defaultType
	}
	return string(bucketType)
}

func bucketID(bucketType, bucket []byte) string {
	return typeName(bucketType) + "/" + string(bucket)
}

func hexHash(s string, counter uint64) string {
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], counter)
	sum := xxh3.Hash(append([]byte(s), seed[:]...))
	binary.BigEndian.PutUint64(seed[:], sum)
	return hex.EncodeToString(seed[:])
}

func vclock(id string, key []byte, counter uint64) []byte {
	return []byte("vc:" + hexHash(id+"/"+string(key), counter))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
