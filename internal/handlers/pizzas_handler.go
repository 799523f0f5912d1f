package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/royal-pizza/internal/catalog"
)

// RegisterPizzaRoutes registers the read-only menu routes.
func RegisterPizzaRoutes(r gin.IRouter, menu Menu) {
	r.GET("/pizzas", func(c *gin.Context) {
		pizzas, err := menu.ListAvailable(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if pizzas == nil {
			pizzas = []catalog.Pizza{}
		}
		c.JSON(http.StatusOK, pizzas)
	})

	r.GET("/pizzas/:id", func(c *gin.Context) {
		id := c.Param("id")
		p, err := menu.GetPizza(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Pizza with id %s not found", id)})
			return
		}
		c.JSON(http.StatusOK, p)
	})
}
