package riak

import "github.com/tautek/riak/pbc"

// Request and response records. They are the wire records themselves, so
// what a caller fills in is exactly what goes on the wire.
type (
	BucketProps  = pbc.BucketProps
	CommitHook   = pbc.CommitHook
	ModFun       = pbc.ModFun
	ReplMode     = pbc.ReplMode
	Content      = pbc.Content
	Link         = pbc.Link
	Pair         = pbc.Pair
	PreflistItem = pbc.PreflistItem

	FetchObjectReq  = pbc.FetchObjectReq
	FetchObjectResp = pbc.FetchObjectResp
	StoreObjectReq  = pbc.StoreObjectReq
	StoreObjectResp = pbc.StoreObjectResp
	DeleteObjectReq = pbc.DeleteObjectReq

	YokozunaIndex  = pbc.YokozunaIndex
	YokozunaSchema = pbc.YokozunaSchema

	SearchQueryReq  = pbc.SearchQueryReq
	SearchQueryResp = pbc.SearchQueryResp
	SearchDoc       = pbc.SearchDoc
)

// Symbolic quorum values for R, W, PR, PW, DW and RW.
const (
	QuorumOne     = pbc.QuorumOne
	QuorumQuorum  = pbc.QuorumQuorum
	QuorumAll     = pbc.QuorumAll
	QuorumDefault = pbc.QuorumDefault
)

// ServerInfo identifies the node answering on a connection.
type ServerInfo struct {
	Node    string
	Version string
}
