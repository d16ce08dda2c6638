package category

import "github.com/fekuna/omnipos-storefront-service/internal/model"

// BuildTree nests a flat category list under its parents and returns the
// roots in input order. Categories whose parent is absent from the list are
// treated as roots.
func BuildTree(flat []model.Category) []model.Category {
	byParent := make(map[string][]int, len(flat))
	present := make(map[string]bool, len(flat))
	for _, c := range flat {
		present[c.ID] = true
	}

	var roots []int
	for i, c := range flat {
		if c.ParentID == nil || *c.ParentID == "" || !present[*c.ParentID] || *c.ParentID == c.ID {
			roots = append(roots, i)
			continue
		}
		byParent[*c.ParentID] = append(byParent[*c.ParentID], i)
	}

	visited := make(map[string]bool, len(flat))
	var attach func(i int) model.Category
	attach = func(i int) model.Category {
		c := flat[i]
		visited[c.ID] = true
		c.Children = nil
		for _, child := range byParent[c.ID] {
			if visited[flat[child].ID] {
				continue
			}
			c.Children = append(c.Children, attach(child))
		}
		return c
	}

	tree := make([]model.Category, 0, len(roots))
	for _, i := range roots {
		tree = append(tree, attach(i))
	}
	return tree
}
