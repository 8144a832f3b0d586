package session

import (
	"fmt"

	"github.com/outofforest/quicchat/wire"
)

// ServerState is the state of the server side of the exchange.
type ServerState int

// Server states.
const (
	ServerCreated ServerState = iota
	ServerHelloSent
	ServerAwaitingRequest
	ServerRequestReceived
	ServerReplySent
	ServerClosed
)

func (s ServerState) String() string {
	switch s {
	case ServerCreated:
		return "Created"
	case ServerHelloSent:
		return "HelloSent"
	case ServerAwaitingRequest:
		return "AwaitingRequest"
	case ServerRequestReceived:
		return "RequestReceived"
	case ServerReplySent:
		return "ReplySent"
	case ServerClosed:
		return "Closed"
	default:
		return fmt.Sprintf("ServerState(%d)", int(s))
	}
}

// ClientState is the state of the client side of the exchange.
type ClientState int

// Client states.
const (
	ClientAwaitingHello ClientState = iota
	ClientAwaitingRequest
	ClientAwaitingReply
	ClientClosed
)

func (s ClientState) String() string {
	switch s {
	case ClientAwaitingHello:
		return "AwaitingHello"
	case ClientAwaitingRequest:
		return "AwaitingRequest"
	case ClientAwaitingReply:
		return "AwaitingReply"
	case ClientClosed:
		return "Closed"
	default:
		return fmt.Sprintf("ClientState(%d)", int(s))
	}
}

// Matches reports whether reply is the valid answer to request.
func Matches(request wire.Request, reply wire.Reply) bool {
	switch request.(type) {
	case *wire.GetAll:
		_, ok := reply.(*wire.Messages)
		return ok
	case *wire.GetLen:
		_, ok := reply.(*wire.MessagesLen)
		return ok
	case *wire.Post, *wire.Clear:
		_, ok := reply.(*wire.OK)
		return ok
	default:
		return false
	}
}
