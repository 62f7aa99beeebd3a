package http

import (
	"net/http"

	"marketplace_admin/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// ListCategories godoc
// @Summary Все категории
// @Tags categories
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Category}
// @Router /api/v1/categories [get]
func (r *Routers) ListCategories(c echo.Context) error {
	const op = "http.routers.ListCategories"

	cats, err := r.CategoryService.GetAll(c.Request().Context())
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(cats))
}

// ListActiveCategories godoc
// @Summary Активные категории
// @Tags categories
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Category}
// @Router /api/v1/categories/active [get]
func (r *Routers) ListActiveCategories(c echo.Context) error {
	const op = "http.routers.ListActiveCategories"

	cats, err := r.CategoryService.GetActive(c.Request().Context())
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(cats))
}

// GetCategory godoc
// @Summary Категория по id
// @Tags categories
// @Produce json
// @Param id path string true "ID категории"
// @Success 200 {object} response.Response{data=models.Category}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/categories/{id} [get]
func (r *Routers) GetCategory(c echo.Context) error {
	const op = "http.routers.GetCategory"

	cat, err := r.CategoryService.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(cat))
}
