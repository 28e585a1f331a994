package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/query"
)

// Node is a record in a parent/child tree
type Node struct {
	Record   interfaces.Record
	ID       string
	Level    int
	Children []*Node
}

// BuildHierarchy links records by idColumn and parentColumn. The parent is the
// first value of parentColumn; records whose parent is missing from records
// (or is themselves) become roots. When no record is a root the result is the
// records as a flat list. Siblings are ordered with cmp (nil keeps input order).
// Records on a parent cycle that no root reaches are appended as extra roots.
func BuildHierarchy(records []interfaces.Record, idColumn, parentColumn string, cmp func(a, b interfaces.Record) int, ctx *query.Context) []*Node {
	nodes := make([]*Node, len(records))
	byID := make(map[string]*Node, len(records))
	for i, rec := range records {
		n := &Node{Record: rec, ID: strings.TrimSpace(rec.Text(idColumn))}
		nodes[i] = n
		if n.ID != "" {
			// Later records win a duplicate ID
			byID[n.ID] = n
		}
	}

	var roots []*Node
	for _, n := range nodes {
		parentID := ""
		if cell, ok := n.Record.Get(parentColumn); ok {
			parentID = strings.TrimSpace(cell.First())
		}
		parent, ok := byID[parentID]
		if parentID == "" || !ok || parent == n {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	if len(roots) == 0 && len(nodes) > 0 {
		ctx.Log("warn", "[HIERARCHY_FLAT] No root records; showing a flat list")
		for _, n := range nodes {
			n.Children = nil
		}
		sortNodes(nodes, cmp)
		return nodes
	}

	sortNodes(roots, cmp)
	visited := make(map[*Node]bool, len(nodes))
	for _, r := range roots {
		assignLevels(r, 0, cmp, visited)
	}
	var stranded []*Node
	for _, n := range nodes {
		if !visited[n] {
			stranded = append(stranded, n)
		}
	}
	if len(stranded) > 0 {
		ctx.Log("warn", fmt.Sprintf("[HIERARCHY_CYCLE] %d records are on a parent cycle; shown as roots", len(stranded)))
		for _, n := range stranded {
			n.Children = nil
			n.Level = 0
			visited[n] = true
		}
		sortNodes(stranded, cmp)
		roots = append(roots, stranded...)
	}
	return roots
}

func assignLevels(n *Node, level int, cmp func(a, b interfaces.Record) int, visited map[*Node]bool) {
	visited[n] = true
	n.Level = level
	sortNodes(n.Children, cmp)
	for _, c := range n.Children {
		assignLevels(c, level+1, cmp, visited)
	}
}

func sortNodes(nodes []*Node, cmp func(a, b interfaces.Record) int) {
	if cmp == nil || len(nodes) < 2 {
		return
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return cmp(nodes[i].Record, nodes[j].Record) < 0
	})
}

// Flatten walks the tree depth first, parents before children
func Flatten(roots []*Node) []*Node {
	var out []*Node
	var walk func(ns []*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(roots)
	return out
}
