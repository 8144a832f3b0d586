package main

import (
	"github.com/outofforest/proton"
	"github.com/outofforest/quicchat/wire"
)

//go:generate go run .

func main() {
	proton.Generate("../c2s.proton.go",
		proton.Message(wire.GetAll{}),
		proton.Message(wire.GetLen{}),
		proton.Message(wire.Post{}),
		proton.Message(wire.Clear{}),
	)
}
