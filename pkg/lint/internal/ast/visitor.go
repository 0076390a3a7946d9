// Package ast provides syntax tree traversal for the checker and rules.
package ast

import (
	"iter"

	"github.com/leapstack-labs/sqla2lint/pkg/core"
)

// Walk traverses a tree depth-first, parent before children, and calls fn
// for each node. If fn returns false, the node's children are skipped.
func Walk(node core.Node, fn func(node core.Node) bool) {
	if core.IsNil(node) {
		return
	}
	if !fn(node) {
		return
	}
	for _, child := range node.Children() {
		Walk(child, fn)
	}
}

// Preorder yields every node in pre-order: parent first, then children in
// source order.
func Preorder(root core.Node) iter.Seq[core.Node] {
	return func(yield func(core.Node) bool) {
		preorder(root, yield)
	}
}

func preorder(node core.Node, yield func(core.Node) bool) bool {
	if core.IsNil(node) {
		return true
	}
	if !yield(node) {
		return false
	}
	for _, child := range node.Children() {
		if !preorder(child, yield) {
			return false
		}
	}
	return true
}

// Collect returns all nodes of the given kind in pre-order.
func Collect(root core.Node, kind core.Kind) []core.Node {
	var nodes []core.Node
	for n := range Preorder(root) {
		if n.Kind() == kind {
			nodes = append(nodes, n)
		}
	}
	return nodes
}
