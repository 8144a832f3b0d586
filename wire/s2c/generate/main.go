package main

import (
	"github.com/outofforest/proton"
	"github.com/outofforest/quicchat/wire"
)

//go:generate go run .

func main() {
	proton.Generate("../s2c.proton.go",
		proton.Message(wire.Hello{}),
		proton.Message(wire.Messages{}),
		proton.Message(wire.MessagesLen{}),
		proton.Message(wire.OK{}),
	)
}
