package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
)

// ScreenHandler serves the public screens: the portal index and the login
// and registration views. These are JSON view models; rendering is the
// client's concern.
type ScreenHandler struct{}

func NewScreenHandler() *ScreenHandler {
	return &ScreenHandler{}
}

// Index is the public landing page.
//
// @Summary      Portal landing page
// @Tags         screens
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       / [get]
func (h *ScreenHandler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"title":   "UIU Healthcare Portal",
		"message": "university healthcare services for students, staff and doctors",
	})
}

// Login is where guard redirects land. It echoes the origin path and the
// redirect reason so the client can display context such as
// "session expired".
//
// @Summary      Login screen
// @Tags         screens
// @Produce      json
// @Param        from    query     string  false  "Path the visitor was redirected from"
// @Param        reason  query     string  false  "Why the visitor was redirected"
// @Success      200     {object}  map[string]string
// @Router       /login [get]
func (h *ScreenHandler) Login(c echo.Context) error {
	res := map[string]string{"screen": "login"}
	if from := c.QueryParam("from"); from != "" {
		res["from"] = from
	}
	if reason := c.QueryParam("reason"); reason != "" {
		res["reason"] = reason
	}
	return c.JSON(http.StatusOK, res)
}

// Register is the registration screen view model.
//
// @Summary      Registration screen
// @Tags         screens
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /register [get]
func (h *ScreenHandler) Register(c echo.Context) error {
	roles := make([]string, len(domain.AllRoles))
	for i, r := range domain.AllRoles {
		roles[i] = string(r)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"screen": "register",
		"roles":  roles,
	})
}
