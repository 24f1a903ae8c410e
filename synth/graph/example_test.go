package graph_test

import (
	"fmt"

	"github.com/cwbudde/algo-synth/synth/graph"
)

// gainNode scales its input by a fixed amount. Processors embed
// graph.Node for the plumbing and implement ProcessBlock.
type gainNode struct {
	graph.Node
	amount float64
}

func newGainNode(source *graph.Output, amount float64) *gainNode {
	g := &gainNode{amount: amount}
	g.InitNode(g, 1, 1)
	g.Plug(source, 0)

	return g
}

func (g *gainNode) ProcessBlock(n int) {
	in := g.Source(0)
	out := g.Output(0).Buffer()
	for i := range n {
		out[i] = g.amount * in.At(i)
	}
}

func ExampleRouter() {
	router := graph.NewRouter(graph.Config{SampleRate: 48000, BlockSize: 4})

	input := graph.NewControlOutput(0.5)
	gain := newGainNode(input, 2)
	router.Add(gain)
	router.RegisterOutput("main", gain.Output(0))

	router.ProcessBlock(4)
	fmt.Println(router.Output("main").Buffer())

	// Output:
	// [1 1 1 1]
}
