package packedtrie

import (
	"encoding/binary"
	"slices"

	"github.com/tamirms/packedtrie/internal/encoding"
	"github.com/zeebo/xxh3"
)

const noNode = ^uint32(0)

// merge collapses structurally equal nodes into one representative. Nodes
// are visited in post-order so that child edges already point at their
// representatives when a node is compared. Equality is exact on the
// record words; the hash only selects a bucket.
//
// Children must be sorted. The root is never redirected. The builder
// ends compacted.
func (b *Builder) merge() {
	n := len(b.nodes)
	repr := make([]uint32, n)
	for i := range repr {
		repr[i] = noNode
	}
	buckets := make(map[uint64][]uint32, n/2)
	var scratch []byte

	register := func(node uint32) uint32 {
		words := b.nodes[node]
		scratch = scratch[:0]
		for _, w := range words {
			scratch = binary.LittleEndian.AppendUint32(scratch, w)
		}
		h := xxh3.Hash(scratch)
		for _, cand := range buckets[h] {
			if slices.Equal(b.nodes[cand], words) {
				return cand
			}
		}
		buckets[h] = append(buckets[h], node)
		return node
	}

	repr[terminalNode] = register(terminalNode)

	type frame struct {
		node uint32
		next int
	}
	stack := []frame{{node: rootNode}}
	visiting := make([]bool, n)
	visiting[rootNode] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		words := b.nodes[top.node]
		if top.next < encoding.NumChildren(words[0]) {
			child := encoding.Target(words[1+top.next])
			top.next++
			if repr[child] == noNode && !visiting[child] {
				visiting[child] = true
				stack = append(stack, frame{node: child})
			}
			continue
		}

		node := top.node
		stack = stack[:len(stack)-1]
		for i := 1; i < len(words); i++ {
			words[i] = encoding.SetTarget(words[i], repr[encoding.Target(words[i])])
		}
		if node == rootNode {
			repr[node] = node
			continue
		}
		repr[node] = register(node)
	}

	b.compact()
}

// compact drops unreachable nodes and renumbers the rest densely in
// breadth-first order. The root stays 0 and the terminal stays 1 even
// when no edge points at it.
func (b *Builder) compact() {
	remap := make([]uint32, len(b.nodes))
	for i := range remap {
		remap[i] = noNode
	}
	order := []uint32{rootNode, terminalNode}
	remap[rootNode] = 0
	remap[terminalNode] = 1
	for i := 0; i < len(order); i++ {
		for _, w := range b.nodes[order[i]][1:] {
			t := encoding.Target(w)
			if remap[t] == noNode {
				remap[t] = uint32(len(order))
				order = append(order, t)
			}
		}
	}

	nodes := make([][]uint32, len(order))
	for i, old := range order {
		words := b.nodes[old]
		for j := 1; j < len(words); j++ {
			words[j] = encoding.SetTarget(words[j], remap[encoding.Target(words[j])])
		}
		nodes[i] = words
	}
	b.nodes = nodes
	b.frozen = make([]bool, len(nodes))
	b.frozen[terminalNode] = true
}
