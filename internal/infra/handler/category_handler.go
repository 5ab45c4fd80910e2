package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-payment-reminder/internal/app"
)

type CategoryHandler struct {
	service *app.CategoryService
}

func NewCategoryHandler(service *app.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		service: service,
	}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	var req ListCategoriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)

		return
	}

	output, err := h.service.List(c.Request.Context(), req.Kind)
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, fromCategories(output))
}

func (h *CategoryHandler) RefreshCategories(c *gin.Context) {
	output, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, fromCategories(output))
}

func (h *CategoryHandler) AddCategory(c *gin.Context) {
	var req AddCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)

		return
	}

	output, err := h.service.Add(c.Request.Context(), app.AddCategoryInput{
		Name: req.Name,
		Kind: req.Kind,
	})
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusCreated, CategoryResponse(output))
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", h.AddCategory)
		categories.POST("/refresh", h.RefreshCategories)
		categories.DELETE("/:id", h.DeleteCategory)
	}
}
