// Package api defines the moves.v1 Connect services: request and response
// messages, procedure names, handler constructors and clients.
//
// Messages are plain Go structs carried by a JSON codec, so the services can
// be called with any Connect client or with curl:
//
//	curl -X POST -H 'Content-Type: application/json' \
//	  -H 'Authorization: Bearer <token>' \
//	  -d '{"group_id":"..."}' http://localhost:8080/moves.v1.MoveService/ListMoves
package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

const codecNameJSON = "json"

// jsonCodec marshals messages with encoding/json.
type jsonCodec struct {
	name string
}

var _ connect.Codec = jsonCodec{}

func (c jsonCodec) Name() string { return c.name }

func (jsonCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, message)
}

// handlerOptions registers the JSON codec under the content type names
// Connect accepts for JSON, ahead of any caller options.
func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{
		connect.WithCodec(jsonCodec{name: codecNameJSON}),
		connect.WithCodec(jsonCodec{name: codecNameJSON + "; charset=utf-8"}),
	}, opts...)
}

// clientOptions makes clients speak JSON, ahead of any caller options.
func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{
		connect.WithCodec(jsonCodec{name: codecNameJSON}),
	}, opts...)
}
