package server

import (
	"github.com/outofforest/quicchat/store"
	"github.com/outofforest/quicchat/wire"
)

func apply(s *store.Store, req wire.Request) (wire.Reply, error) {
	switch r := req.(type) {
	case *wire.GetAll:
		return &wire.Messages{Messages: s.Snapshot()}, nil
	case *wire.GetLen:
		return &wire.MessagesLen{Length: s.Len()}, nil
	case *wire.Post:
		if err := s.Append(r.Content); err != nil {
			return nil, err
		}
		return &wire.OK{}, nil
	case *wire.Clear:
		s.Clear()
		return &wire.OK{}, nil
	default:
		return nil, nil
	}
}
