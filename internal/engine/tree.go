package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/abenov/tenderhub-eval/internal/model"
)

// sectionNode is one arena entry of the BOQ tree: the section record plus
// the ids of its direct child sections and its own items, both in display
// order. Child ids instead of pointers keep the arena free of cycles even
// when the input is not.
type sectionNode struct {
	section  model.BoqSection
	children []uuid.UUID
	items    []model.BoqItem
}

type boqTree struct {
	roots []uuid.UUID
	nodes map[uuid.UUID]*sectionNode
}

// buildTree reconstructs the section forest from flat section and item
// records. Ordering is deterministic: sort order first, then display code,
// then id, for both sections and items. A cycle or dangling reference in
// stored data fails the build rather than producing a half-correct sheet.
func buildTree(sections []model.BoqSection, items []model.BoqItem) (*boqTree, error) {
	tree := &boqTree{nodes: make(map[uuid.UUID]*sectionNode, len(sections))}

	for _, section := range sections {
		if _, exists := tree.nodes[section.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate section %s", ErrDataIntegrity, section.ID)
		}
		tree.nodes[section.ID] = &sectionNode{section: section}
	}

	for _, section := range sections {
		if section.ParentSectionID == nil {
			tree.roots = append(tree.roots, section.ID)
			continue
		}
		parent, ok := tree.nodes[*section.ParentSectionID]
		if !ok {
			return nil, fmt.Errorf("%w: section %s references missing parent %s",
				ErrDataIntegrity, section.ID, *section.ParentSectionID)
		}
		parent.children = append(parent.children, section.ID)
	}

	for _, item := range items {
		node, ok := tree.nodes[item.SectionID]
		if !ok {
			return nil, fmt.Errorf("%w: item %s references missing section %s",
				ErrDataIntegrity, item.ID, item.SectionID)
		}
		node.items = append(node.items, item)
	}

	tree.sortSectionIDs(tree.roots)
	for _, node := range tree.nodes {
		tree.sortSectionIDs(node.children)
		sort.Slice(node.items, func(i, j int) bool {
			a, b := node.items[i], node.items[j]
			if a.SortOrder != b.SortOrder {
				return a.SortOrder < b.SortOrder
			}
			if a.ItemNumber != b.ItemNumber {
				return a.ItemNumber < b.ItemNumber
			}
			return a.ID.String() < b.ID.String()
		})
	}

	if err := tree.checkAcyclic(len(sections)); err != nil {
		return nil, err
	}
	return tree, nil
}

func (t *boqTree) sortSectionIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := t.nodes[ids[i]].section, t.nodes[ids[j]].section
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if a.SectionNumber != b.SectionNumber {
			return a.SectionNumber < b.SectionNumber
		}
		return a.ID.String() < b.ID.String()
	})
}

// checkAcyclic verifies every section is reachable from a root. A section
// caught in a parent cycle never joins the root forest, so an incomplete
// traversal is exactly a cycle.
func (t *boqTree) checkAcyclic(total int) error {
	visited := make(map[uuid.UUID]bool, total)
	stack := append([]uuid.UUID(nil), t.roots...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		stack = append(stack, t.nodes[id].children...)
	}
	if len(visited) != total {
		return fmt.Errorf("%w: %d of %d sections unreachable from roots (cycle)",
			ErrDataIntegrity, total-len(visited), total)
	}
	return nil
}

// walk visits every section depth first: the section itself, then its child
// sections, then nothing more (items hang off the node). This is the row
// order of the final sheet.
func (t *boqTree) walk(fn func(depth int, node *sectionNode)) {
	var visit func(id uuid.UUID, depth int)
	visit = func(id uuid.UUID, depth int) {
		node := t.nodes[id]
		fn(depth, node)
		for _, child := range node.children {
			visit(child, depth+1)
		}
	}
	for _, root := range t.roots {
		visit(root, 0)
	}
}
