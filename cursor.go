package packedtrie

import (
	"fmt"

	streamerrors "github.com/tamirms/packedtrie/errors"
	"github.com/tamirms/packedtrie/internal/encoding"
)

// Cursor drives a Builder one character at a time. It is the import path
// for serialized tries that share subtrees by reference:
//
//	c, _ := b.Cursor()
//	c.InsertChar("w")  // node id 1
//	c.InsertChar("a")  // node id 2
//	c.MarkEOW()
//	c.BackStep(1)      // back at id 1
//	c.InsertChar("e")
//	c.Reference(2)     // "we" now shares the subtree below "wa"
//
// The root has id 0. Every node reached at the end of an InsertChar that
// has no id yet gets the next one. Reference redirects the edge that led
// to the current node and freezes the target, so later insertions through
// it copy instead of mutating shared structure.
//
// A builder has at most one live cursor: Cursor, Insert and Build
// invalidate earlier cursors. Any error returned by a cursor method
// aborts the build.
type Cursor struct {
	b        *Builder
	gen      uint64
	disposed bool

	// frame stack; index 0 is the root
	nodes []uint32
	slots []int // child slot in the parent frame
	backs []int // frame to return to when stepping back over this character

	ids  []uint32          // id -> node
	idOf map[uint32]uint32 // node -> id
}

// Cursor returns a new cursor positioned at the root.
func (b *Builder) Cursor() (*Cursor, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	b.cursorGen++
	return &Cursor{
		b:     b,
		gen:   b.cursorGen,
		nodes: []uint32{rootNode},
		slots: []int{-1},
		backs: []int{0},
		ids:   []uint32{rootNode},
		idOf:  map[uint32]uint32{rootNode: 0},
	}, nil
}

func (c *Cursor) check() error {
	if err := c.b.usable(); err != nil {
		return err
	}
	if c.disposed || c.gen != c.b.cursorGen {
		return c.b.fail(streamerrors.ErrCursorDisposed)
	}
	return nil
}

func (c *Cursor) top() int { return len(c.nodes) - 1 }

// InsertChar descends along char, creating edges as needed. A non-ASCII
// character descends one edge per UTF-8 byte; BackStep treats it as one
// step.
func (c *Cursor) InsertChar(char string) error {
	if err := c.check(); err != nil {
		return err
	}
	b := c.b
	seq := b.chars.Sequence(char)
	if len(seq) == 0 {
		return nil
	}

	back := c.top()
	for _, ch := range seq {
		node := c.nodes[c.top()]
		pos, ok := b.findChild(node, ch)
		var child uint32
		if ok {
			child = encoding.Target(b.nodes[node][1+pos])
		} else {
			n, err := b.newNode(encoding.Header(0, false, 0))
			if err != nil {
				return b.fail(err)
			}
			if err := b.thaw(c.nodes, c.slots); err != nil {
				return b.fail(err)
			}
			pos, err = b.appendChild(c.nodes[c.top()], ch, n)
			if err != nil {
				return b.fail(err)
			}
			child = n
		}
		c.nodes = append(c.nodes, child)
		c.slots = append(c.slots, pos)
		c.backs = append(c.backs, back)
	}

	node := c.nodes[c.top()]
	if _, ok := c.idOf[node]; !ok {
		c.idOf[node] = uint32(len(c.ids))
		c.ids = append(c.ids, node)
	}
	return nil
}

// MarkEOW marks the current node as the end of a word. Marking the root
// is ignored since empty words are never stored.
func (c *Cursor) MarkEOW() error {
	if err := c.check(); err != nil {
		return err
	}
	if c.top() == 0 {
		return nil
	}
	b := c.b
	if encoding.IsEOW(b.nodes[c.nodes[c.top()]][0]) {
		return nil
	}
	if err := b.thaw(c.nodes, c.slots); err != nil {
		return b.fail(err)
	}
	node := c.nodes[c.top()]
	b.nodes[node][0] = encoding.SetEOW(b.nodes[node][0], true)
	return nil
}

// Reference replaces the current node with the node that received id.
// The edge that led here is redirected and the target subtree is frozen.
func (c *Cursor) Reference(id int) error {
	if err := c.check(); err != nil {
		return err
	}
	b := c.b
	if id < 0 || id >= len(c.ids) {
		return b.fail(fmt.Errorf("%w: %d", streamerrors.ErrUnknownReference, id))
	}
	top := c.top()
	if top == 0 {
		return b.fail(streamerrors.ErrReferenceAtRoot)
	}
	target := c.ids[id]
	for _, n := range c.nodes[:top] {
		if n == target {
			return b.fail(fmt.Errorf("%w: %d is an ancestor of the cursor", streamerrors.ErrUnknownReference, id))
		}
	}

	if err := b.thaw(c.nodes[:top], c.slots[:top]); err != nil {
		return b.fail(err)
	}
	parent := b.nodes[c.nodes[top-1]]
	slot := 1 + c.slots[top]
	parent[slot] = encoding.SetTarget(parent[slot], target)
	b.freeze(target)
	c.nodes[top] = target
	return nil
}

// BackStep moves up n characters.
func (c *Cursor) BackStep(n int) error {
	if err := c.check(); err != nil {
		return err
	}
	for range n {
		top := c.top()
		if top == 0 {
			return c.b.fail(fmt.Errorf("%w: %d steps", streamerrors.ErrBacktrackTooFar, n))
		}
		keep := c.backs[top] + 1
		c.nodes = c.nodes[:keep]
		c.slots = c.slots[:keep]
		c.backs = c.backs[:keep]
	}
	return nil
}

// Dispose releases the cursor. Further use returns ErrCursorDisposed.
func (c *Cursor) Dispose() {
	c.disposed = true
	c.nodes = nil
	c.slots = nil
	c.backs = nil
	c.ids = nil
	c.idOf = nil
}
