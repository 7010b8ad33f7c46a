package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kondarsoft/marketplace/internal/handlers"
)

type Deps struct {
	DB                *gorm.DB
	WishlistHandler   *handlers.WishlistHandler
	CartHandler       *handlers.CartHandler
	ProductHandler    *handlers.ProductHandler
	AccountHandler    *handlers.AccountHandler
	ConsultantHandler *handlers.ConsultantHandler
	SearchHandler     *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		sqlDB, err := d.DB.DB()
		if err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		if err := sqlDB.PingContext(c.Request().Context()); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api")

	api.POST("/add-to-wishlist", d.WishlistHandler.Add)
	api.GET("/get-wishlist", d.WishlistHandler.Get)
	api.DELETE("/wishlist/:productId", d.WishlistHandler.Remove)

	cart := api.Group("/cart")
	cart.POST("/add-to-cart", d.CartHandler.AddToCart)
	cart.POST("/create-cart", d.CartHandler.CreateCart)
	cart.GET("/get-cart", d.CartHandler.GetCart)

	api.GET("/get-products", d.ProductHandler.GetProducts)
	api.GET("/products/:id", d.ProductHandler.GetProduct)
	api.GET("/search", d.SearchHandler.Search)

	api.POST("/create-account", d.AccountHandler.CreateAccount)

	api.POST("/match-with-consultant", d.ConsultantHandler.Match)
	api.GET("/get-consultant", d.ConsultantHandler.Get)
	api.POST("/send-message", d.ConsultantHandler.SendMessage)
	api.POST("/send-message-to-consultant", d.ConsultantHandler.SendMessageToConsultant)
}
