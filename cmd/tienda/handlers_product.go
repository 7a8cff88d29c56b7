package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/MikeMC777/tienda/internal/httpx"
	"github.com/MikeMC777/tienda/internal/product"
)

// listProductsHandler godoc
// @Summary      List products
// @Description  Insertion order. skip is accepted as an alias of offset.
// @Tags         products
// @Produce      json
// @Param        offset  query     int  false  "offset"  default(0)
// @Param        skip    query     int  false  "alias of offset"
// @Param        limit   query     int  false  "page size, max 100"  default(100)
// @Success      200     {object}  product.ListResponse
// @Failure      400     {object}  httpx.ErrorBody
// @Router       /products [get]
func listProductsHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, ok := intQuery(c, lo.Ternary(c.Query("offset") == "", "skip", "offset"))
		if !ok {
			return
		}
		limit, ok := intQuery(c, "limit")
		if !ok {
			return
		}
		items, q, err := products.List(c.Request.Context(), offset, limit)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{
			Limit:  q.Limit,
			Offset: q.Offset,
			Items:  lo.Map(items, func(p product.Product, _ int) product.View { return p.View() }),
		})
	}
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		httpx.BadRequest(c, name+" must be an integer")
		return 0, false
	}
	return n, true
}

// getProductHandler godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "product id"
// @Success      200  {object}  product.View
// @Failure      404  {object}  httpx.ErrorBody
// @Router       /products/{id} [get]
func getProductHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := products.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p.View())
	}
}

// createProductHandler godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      product.CreateProductRequest  true  "product"
// @Success      200   {object}  product.View
// @Failure      400   {object}  httpx.ErrorBody
// @Failure      401   {object}  httpx.ErrorBody
// @Router       /products [post]
func createProductHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "name, price and stock_quantity are required")
			return
		}
		p, err := products.Create(c.Request.Context(), httpx.Account(c).Username, product.CreateInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       *req.Price,
			Stock:       *req.StockQuantity,
			Category:    req.Category,
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p.View())
	}
}
