// Package lineage implements the append-only provenance log for the Helix
// kernel. Every transition, registration, projection, and bind appends one
// immutable node; nodes form a DAG that can be traced, explained, and merged.
// Implements: prd002-lineage-log; docs/ARCHITECTURE § Lineage.
package lineage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/helix/pkg/types"
)

// Subscriber receives a copy of every appended node. Delivery is
// fire-and-forget: the log never blocks on a subscriber.
type Subscriber func(types.LineageNode)

// Log is an append-only record of operations. Append is the single point of
// global ordering for the log and is atomic; reads do not block on it beyond
// the read lock.
type Log struct {
	mu        sync.RWMutex
	nodes     map[string]*types.LineageNode
	order     []string
	currentID string
	subs      []Subscriber
}

// New creates an empty log.
func New() *Log {
	return &Log{nodes: make(map[string]*types.LineageNode)}
}

// Restore rebuilds a log from snapshot nodes in their original append order.
// The currentID is adopted as-is; callers pass the id persisted alongside the
// nodes.
func Restore(nodes []types.LineageNode, currentID string) *Log {
	l := New()
	for i := range nodes {
		n := nodes[i]
		l.nodes[n.NodeID] = &n
		l.order = append(l.order, n.NodeID)
	}
	l.currentID = currentID
	return l
}

// newNodeID generates a UUID v7 node id, falling back to v4 if v7 fails.
func newNodeID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Append records one operation. Every parent must already exist in the log;
// ErrUnknownParent is returned otherwise. This existence rule is what makes
// cycles structurally impossible, so traversals need no cycle detection.
func (l *Log) Append(operation, summary string, parents ...string) (*types.LineageNode, error) {
	l.mu.Lock()
	for _, p := range parents {
		if _, ok := l.nodes[p]; !ok {
			l.mu.Unlock()
			return nil, types.ErrUnknownParent
		}
	}
	node := &types.LineageNode{
		NodeID:    newNodeID(),
		Operation: operation,
		CreatedAt: time.Now(),
		ParentIDs: append([]string(nil), parents...),
		Summary:   summary,
	}
	l.nodes[node.NodeID] = node
	l.order = append(l.order, node.NodeID)
	l.currentID = node.NodeID
	subs := l.subs
	l.mu.Unlock()

	for _, sub := range subs {
		go sub(*node)
	}
	return node, nil
}

// Subscribe registers a subscriber for future appends. Each notification runs
// in its own goroutine.
func (l *Log) Subscribe(sub Subscriber) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs = append(l.subs, sub)
}

// CurrentID returns the id of the most recently appended node, or "" for an
// empty log.
func (l *Log) CurrentID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentID
}

// Get returns a copy of the node with the given id.
func (l *Log) Get(id string) (types.LineageNode, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n, ok := l.nodes[id]
	if !ok {
		return types.LineageNode{}, types.ErrNodeNotFound
	}
	return *n, nil
}

// Len returns the number of nodes in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.nodes)
}

// Nodes returns copies of all nodes in append order.
func (l *Log) Nodes() []types.LineageNode {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]types.LineageNode, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.nodes[id])
	}
	return out
}

// TraceBack walks the ancestry of the node with the given id breadth-first,
// visiting each ancestor exactly once. An empty id starts from the current
// node. The start node is included first in the result.
func (l *Log) TraceBack(id string) ([]types.LineageNode, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if id == "" {
		id = l.currentID
	}
	start, ok := l.nodes[id]
	if !ok {
		return nil, types.ErrNodeNotFound
	}

	visited := map[string]bool{start.NodeID: true}
	queue := []*types.LineageNode{start}
	var out []types.LineageNode
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		out = append(out, *n)
		for _, pid := range n.ParentIDs {
			if visited[pid] {
				continue
			}
			parent, ok := l.nodes[pid]
			if !ok {
				return nil, types.ErrUnknownParent
			}
			visited[pid] = true
			queue = append(queue, parent)
		}
	}
	return out, nil
}

// Explain renders the traced ancestry of the given node as an ordered list of
// operation names, newest first.
func (l *Log) Explain(id string) ([]string, error) {
	trace, err := l.TraceBack(id)
	if err != nil {
		return nil, err
	}
	ops := make([]string, len(trace))
	for i, n := range trace {
		ops[i] = n.Operation
	}
	return ops, nil
}

// MergeWith unions the other log's nodes into this one. Ids are globally
// unique, so collisions do not occur; when both logs carry the same node the
// existing copy wins. The more recent of the two current nodes becomes the
// merged current node.
func (l *Log) MergeWith(other *Log) {
	if other == nil || other == l {
		return
	}
	otherNodes := other.Nodes()
	otherCurrent := other.CurrentID()

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range otherNodes {
		n := otherNodes[i]
		if _, ok := l.nodes[n.NodeID]; ok {
			continue
		}
		l.nodes[n.NodeID] = &n
		l.order = append(l.order, n.NodeID)
	}
	if otherCurrent != "" {
		cur, haveCur := l.nodes[l.currentID]
		oc, haveOther := l.nodes[otherCurrent]
		switch {
		case !haveCur && haveOther:
			l.currentID = otherCurrent
		case haveCur && haveOther && oc.CreatedAt.After(cur.CreatedAt):
			l.currentID = otherCurrent
		}
	}
}
