package transport

import (
	"github.com/richard-senior/footy/pkg/protocol"
)

// Transport carries JSON-RPC requests in and responses out
type Transport interface {
	ReadRequest() (*protocol.JsonRpcRequest, error)
	WriteResponse(*protocol.JsonRpcResponse) error
}
