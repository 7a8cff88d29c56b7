package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tienda/internal/httpx"
	"github.com/MikeMC777/tienda/internal/order"
)

// placeOrderHandler godoc
// @Summary      Place an order
// @Description  Prices every line, reserves stock and stores the order in one transaction.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      order.PlaceOrderRequest  true  "items"
// @Success      200   {object}  order.View
// @Failure      400   {object}  httpx.ErrorBody  "invalid request or insufficient stock"
// @Failure      401   {object}  httpx.ErrorBody
// @Failure      404   {object}  httpx.ErrorBody
// @Failure      409   {object}  httpx.ErrorBody
// @Failure      503   {object}  httpx.ErrorBody
// @Router       /orders [post]
func placeOrderHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid order payload")
			return
		}
		o, err := orders.PlaceOrder(c.Request.Context(), httpx.Account(c), req.Items)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, o.View())
	}
}

// listOrdersHandler godoc
// @Summary      List own orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   order.View
// @Failure      401  {object}  httpx.ErrorBody
// @Router       /orders [get]
func listOrdersHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.ListForAccount(c.Request.Context(), httpx.Account(c))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, order.Views(list))
	}
}

// getOrderHandler godoc
// @Summary      Get one of the caller's orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "order id"
// @Success      200  {object}  order.View
// @Failure      401  {object}  httpx.ErrorBody
// @Failure      404  {object}  httpx.ErrorBody
// @Router       /orders/{id} [get]
func getOrderHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := orders.Get(c.Request.Context(), httpx.Account(c), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, o.View())
	}
}
