// Package pipeline implements the per-real-channel DAG of audio-thread
// nodes: input, processor, mixer, output. The graph is validated
// acyclic and topologically sorted once at build time, then walked in
// that order once per output block.
package pipeline

import "amplitude/internal/amerr"

// NodeID is unique within one Pipeline.
type NodeID int

// Kind distinguishes the four node roles.
type Kind int

const (
	Input Kind = iota
	Processor
	Mixer
	Output
)

// Node is implemented by every pipeline stage. Provide returns this
// node's current output buffer (call-by-reference; the pipeline runner
// does not copy it). Consume receives a provider's buffer for nodes
// that pull from more than one source (Mixer) or exactly one
// (Processor, Output).
type Node interface {
	ID() NodeID
	Kind() Kind
	Providers() []NodeID
	// Reset is called once per audio block before the topo walk begins.
	Reset()
	// Provide returns this node's output for the current block. Input
	// nodes return their externally-fed buffer; Processor/Mixer nodes
	// return the buffer they computed from their providers' Provide
	// results, which the runner passes via Consume beforehand.
	Provide() [][]float32
	// Consume is called once per provider, in topo order, before this
	// node's own Provide is read by its consumers. Processors are
	// expected to be in-place-safe on the provider buffer; mixers
	// accumulate into an internally-owned buffer allocated at
	// construction time, sized to the engine's block size.
	Consume(providerID NodeID, buf [][]float32)
}

// Pipeline is a validated, topologically sorted node graph.
type Pipeline struct {
	nodes map[NodeID]Node
	order []NodeID
	output NodeID
}

// Build validates nodes as acyclic and computes a topological order via
// Kahn's algorithm. It returns an error if a cycle is detected or a
// provider id is unknown.
func Build(nodes []Node) (*Pipeline, error) {
	byID := make(map[NodeID]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID()] = n
	}
	indegree := make(map[NodeID]int, len(nodes))
	consumers := make(map[NodeID][]NodeID)
	for _, n := range nodes {
		for _, p := range n.Providers() {
			if _, ok := byID[p]; !ok {
				return nil, amerr.New(amerr.InvalidParameter, "pipeline: unknown provider id referenced")
			}
			indegree[n.ID()]++
			consumers[p] = append(consumers[p], n.ID())
		}
	}

	var queue []NodeID
	for _, n := range nodes {
		if indegree[n.ID()] == 0 {
			queue = append(queue, n.ID())
		}
	}
	var order []NodeID
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, c := range consumers[id] {
			indegree[c]--
			if indegree[c] == 0 {
				queue = append(queue, c)
			}
		}
	}
	if len(order) != len(nodes) {
		return nil, amerr.New(amerr.InvalidParameter, "pipeline: graph contains a cycle")
	}

	var output NodeID
	foundOutput := false
	for _, n := range nodes {
		if n.Kind() == Output {
			output = n.ID()
			foundOutput = true
		}
	}
	if !foundOutput {
		return nil, amerr.New(amerr.InvalidParameter, "pipeline: graph has no Output node")
	}

	return &Pipeline{nodes: byID, order: order, output: output}, nil
}

// RunBlock resets every node, then walks the topo order once, routing
// each node's Provide result to its consumers' Consume before moving on.
func (p *Pipeline) RunBlock() [][]float32 {
	for _, id := range p.order {
		p.nodes[id].Reset()
	}
	for _, id := range p.order {
		n := p.nodes[id]
		for _, consumerID := range p.order {
			consumer := p.nodes[consumerID]
			for _, providerID := range consumer.Providers() {
				if providerID == id {
					consumer.Consume(id, n.Provide())
				}
			}
		}
	}
	return p.nodes[p.output].Provide()
}
