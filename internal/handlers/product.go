package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kondarsoft/marketplace/internal/logging"
	"github.com/kondarsoft/marketplace/internal/models"
	"github.com/kondarsoft/marketplace/internal/util"
)

type ProductHandler struct {
	DB *gorm.DB
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id := c.Param("id")

	var product models.Product
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.String(http.StatusNotFound, "Product not found")
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, product)
}

// GetProducts serves the marketplace listing: newest first, fixed page size,
// optionally narrowed to products shipping to the given country.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	shipsTo := c.QueryParam("shipsTo")
	page := parseIntDefault(c.QueryParam("currentPage"), 1)
	if page < 1 {
		page = 1
	}

	ctx := c.Request().Context()
	q := h.DB.WithContext(ctx).Model(&models.Product{})
	if shipsTo != "" {
		// Array elements are stored quoted, so matching the quoted token is
		// an exact element match, not a substring one.
		q = q.Where("ships_to LIKE ?", `%"`+shipsTo+`"%`)
	}

	var products []models.Product
	if err := q.
		Order("id DESC").
		Limit(util.MarketplacePageSize).
		Offset((page - 1) * util.MarketplacePageSize).
		Find(&products).Error; err != nil {
		logging.FromContext(ctx).Error("Error getting products", "error", err)
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, products)
}
