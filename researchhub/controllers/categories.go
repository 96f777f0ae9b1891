package controllers

import (
	"researchhub/researchhub/catalog"
	"researchhub/researchhub/utils/apperrors"
)

type CategoryController struct {
	catalog *catalog.Catalog
}

func NewCategoryController(c *catalog.Catalog) *CategoryController {
	return &CategoryController{catalog: c}
}

func (c *CategoryController) Get(name string) (catalog.Category, error) {
	cat, ok := c.catalog.Get(name)
	if !ok {
		return catalog.Category{}, apperrors.NotFound("Category not found")
	}
	return cat, nil
}

func (c *CategoryController) Names() []string {
	return c.catalog.Names()
}
