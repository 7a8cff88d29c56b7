package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tienda/internal/apperr"
	"github.com/MikeMC777/tienda/internal/httpx"
	"github.com/MikeMC777/tienda/internal/user"
)

// registerHandler godoc
// @Summary      Register an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      user.RegisterRequest  true  "account"
// @Success      200   {object}  user.Account
// @Failure      400   {object}  httpx.ErrorBody
// @Router       /register [post]
func registerHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "email, username and password are required")
			return
		}
		u, err := users.Register(c.Request.Context(), req.Email, req.Username, req.Password)
		if err != nil {
			// A taken email or username is reported as a bad request.
			if apperr.Is(err, apperr.Conflict) {
				httpx.FailStatus(c, http.StatusBadRequest, err)
				return
			}
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, u.Public())
	}
}

// loginHandler godoc
// @Summary      Log in and obtain a bearer token
// @Tags         users
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      user.LoginRequest  false  "credentials (also accepted as form fields or query parameters)"
// @Success      200   {object}  user.Token
// @Failure      400   {object}  httpx.ErrorBody
// @Failure      401   {object}  httpx.ErrorBody
// @Router       /login [post]
func loginHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			httpx.BadRequest(c, "invalid login payload")
			return
		}
		if req.Username == "" && req.Password == "" {
			req.Username, req.Password = c.Query("username"), c.Query("password")
		}
		tok, err := users.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, tok)
	}
}

// meHandler godoc
// @Summary      Current account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  user.Account
// @Failure      401  {object}  httpx.ErrorBody
// @Router       /users/me [get]
func meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, httpx.Account(c).Public())
}
