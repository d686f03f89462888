// Package api is the wire contract of the totpkeeper.AccountService gRPC
// service: message types, a JSON codec registered under the "json"
// content-subtype, the service descriptor and a client stub.
package api

import (
	"encoding/json"

	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"google.golang.org/grpc/encoding"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return common.JSONCodecName }
