package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/journalsync/internal/database"
	"github.com/mdouchement/journalsync/internal/jserror"
	"github.com/mdouchement/journalsync/internal/server/service"
)

// userinfo contains all public-key record handlers.
type userinfo struct {
	db database.Client
}

///// Get
////
//

// Get returns an account's key material. The private content field is only
// rendered for the owning account.
func (h *userinfo) Get(c echo.Context) error {
	render, err := service.GetUserInfo(h.db, currentUser(c), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, render)
}

///// Create
////
//

// Create publishes the current user's key material.
func (h *userinfo) Create(c echo.Context) error {
	user := currentUser(c)
	if c.Param("email") != user.Email {
		return jserror.Forbidden("Cannot manage another user's info.")
	}

	var params service.UserInfoParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, jserror.New("Could not get user info params."))
	}

	if err := service.CreateUserInfo(h.db, user, params); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{})
}

///// Delete
////
//

// Delete removes the current user's key material.
func (h *userinfo) Delete(c echo.Context) error {
	user := currentUser(c)
	if c.Param("email") != user.Email {
		return jserror.Forbidden("Cannot manage another user's info.")
	}

	if err := service.DeleteUserInfo(h.db, user); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
