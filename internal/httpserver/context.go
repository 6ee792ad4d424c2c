package httpserver

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/util"
)

var errNoUser = errors.New("unauthorized")

// userID reads the subject the auth middleware stored on the context.
func userID(c echo.Context) (uuid.UUID, error) {
	s, ok := c.Get("user_id").(string)
	if !ok || s == "" {
		return uuid.Nil, errNoUser
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errNoUser
	}
	return id, nil
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == models.RoleAdmin
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

func pageParams(c echo.Context) (page, offset, limit int) {
	page = util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit = util.Calculate(page, size)
	if page < 1 {
		page = 1
	}
	return page, offset, limit
}
