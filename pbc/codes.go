package pbc

import "strconv"

// MessageCode identifies the record carried by a frame.
type MessageCode uint8

const (
	CodeErrorResp                MessageCode = 0
	CodePingReq                  MessageCode = 1
	CodePingResp                 MessageCode = 2
	CodeGetClientIDReq           MessageCode = 3
	CodeGetClientIDResp          MessageCode = 4
	CodeSetClientIDReq           MessageCode = 5
	CodeSetClientIDResp          MessageCode = 6
	CodeGetServerInfoReq         MessageCode = 7
	CodeGetServerInfoResp        MessageCode = 8
	CodeGetReq                   MessageCode = 9
	CodeGetResp                  MessageCode = 10
	CodePutReq                   MessageCode = 11
	CodePutResp                  MessageCode = 12
	CodeDelReq                   MessageCode = 13
	CodeDelResp                  MessageCode = 14
	CodeListBucketsReq           MessageCode = 15
	CodeListBucketsResp          MessageCode = 16
	CodeListKeysReq              MessageCode = 17
	CodeListKeysResp             MessageCode = 18
	CodeGetBucketReq             MessageCode = 19
	CodeGetBucketResp            MessageCode = 20
	CodeSetBucketReq             MessageCode = 21
	CodeSetBucketResp            MessageCode = 22
	CodeMapRedReq                MessageCode = 23
	CodeMapRedResp               MessageCode = 24
	CodeIndexReq                 MessageCode = 25
	CodeIndexResp                MessageCode = 26
	CodeSearchQueryReq           MessageCode = 27
	CodeSearchQueryResp          MessageCode = 28
	CodeResetBucketReq           MessageCode = 29
	CodeResetBucketResp          MessageCode = 30
	CodeGetBucketTypeReq         MessageCode = 31
	CodeSetBucketTypeReq         MessageCode = 32
	CodeGetBucketKeyPreflistReq  MessageCode = 33
	CodeGetBucketKeyPreflistResp MessageCode = 34
	CodeYokozunaIndexGetReq      MessageCode = 54
	CodeYokozunaIndexGetResp     MessageCode = 55
	CodeYokozunaIndexPutReq      MessageCode = 56
	CodeYokozunaIndexDeleteReq   MessageCode = 57
	CodeYokozunaSchemaGetReq     MessageCode = 58
	CodeYokozunaSchemaGetResp    MessageCode = 59
	CodeYokozunaSchemaPutReq     MessageCode = 60
)

// Some requests are answered with another request's response code.
const (
	CodeGetBucketTypeResp       = CodeGetBucketResp
	CodeSetBucketTypeResp       = CodeSetBucketResp
	CodeYokozunaIndexPutResp    = CodePutResp
	CodeYokozunaIndexDeleteResp = CodeDelResp
	CodeYokozunaSchemaPutResp   = CodePutResp
)

var codeNames = map[MessageCode]string{
	CodeErrorResp:                "RpbErrorResp",
	CodePingReq:                  "RpbPingReq",
	CodePingResp:                 "RpbPingResp",
	CodeGetClientIDReq:           "RpbGetClientIdReq",
	CodeGetClientIDResp:          "RpbGetClientIdResp",
	CodeSetClientIDReq:           "RpbSetClientIdReq",
	CodeSetClientIDResp:          "RpbSetClientIdResp",
	CodeGetServerInfoReq:         "RpbGetServerInfoReq",
	CodeGetServerInfoResp:        "RpbGetServerInfoResp",
	CodeGetReq:                   "RpbGetReq",
	CodeGetResp:                  "RpbGetResp",
	CodePutReq:                   "RpbPutReq",
	CodePutResp:                  "RpbPutResp",
	CodeDelReq:                   "RpbDelReq",
	CodeDelResp:                  "RpbDelResp",
	CodeListBucketsReq:           "RpbListBucketsReq",
	CodeListBucketsResp:          "RpbListBucketsResp",
	CodeListKeysReq:              "RpbListKeysReq",
	CodeListKeysResp:             "RpbListKeysResp",
	CodeGetBucketReq:             "RpbGetBucketReq",
	CodeGetBucketResp:            "RpbGetBucketResp",
	CodeSetBucketReq:             "RpbSetBucketReq",
	CodeSetBucketResp:            "RpbSetBucketResp",
	CodeMapRedReq:                "RpbMapRedReq",
	CodeMapRedResp:               "RpbMapRedResp",
	CodeIndexReq:                 "RpbIndexReq",
	CodeIndexResp:                "RpbIndexResp",
	CodeSearchQueryReq:           "RpbSearchQueryReq",
	CodeSearchQueryResp:          "RpbSearchQueryResp",
	CodeResetBucketReq:           "RpbResetBucketReq",
	CodeResetBucketResp:          "RpbResetBucketResp",
	CodeGetBucketTypeReq:         "RpbGetBucketTypeReq",
	CodeSetBucketTypeReq:         "RpbSetBucketTypeReq",
	CodeGetBucketKeyPreflistReq:  "RpbGetBucketKeyPreflistReq",
	CodeGetBucketKeyPreflistResp: "RpbGetBucketKeyPreflistResp",
	CodeYokozunaIndexGetReq:      "RpbYokozunaIndexGetReq",
	CodeYokozunaIndexGetResp:     "RpbYokozunaIndexGetResp",
	CodeYokozunaIndexPutReq:      "RpbYokozunaIndexPutReq",
	CodeYokozunaIndexDeleteReq:   "RpbYokozunaIndexDeleteReq",
	CodeYokozunaSchemaGetReq:     "RpbYokozunaSchemaGetReq",
	CodeYokozunaSchemaGetResp:    "RpbYokozunaSchemaGetResp",
	CodeYokozunaSchemaPutReq:     "RpbYokozunaSchemaPutReq",
}

func (c MessageCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "MessageCode(" + strconv.Itoa(int(c)) + ")"
}
