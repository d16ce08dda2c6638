package category

import (
	"testing"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cat(id string, parent string) model.Category {
	c := model.Category{BaseModel: model.BaseModel{ID: id}, Name: id}
	if parent != "" {
		c.ParentID = &parent
	}
	return c
}

func TestBuildTree(t *testing.T) {
	tree := BuildTree([]model.Category{
		cat("apparel", ""),
		cat("shoes", "apparel"),
		cat("running", "shoes"),
		cat("bags", ""),
		cat("orphan", "missing"),
	})

	require.Len(t, tree, 3)
	assert.Equal(t, "apparel", tree[0].ID)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "shoes", tree[0].Children[0].ID)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, "running", tree[0].Children[0].Children[0].ID)
	assert.Equal(t, "bags", tree[1].ID)
	assert.Equal(t, "orphan", tree[2].ID)
}

func TestBuildTree_SelfParentIsRoot(t *testing.T) {
	tree := BuildTree([]model.Category{cat("loop", "loop")})
	require.Len(t, tree, 1)
	assert.Empty(t, tree[0].Children)
}
