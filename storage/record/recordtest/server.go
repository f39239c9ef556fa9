// Package recordtest runs a fake record-store HTTP server for client tests,
// backed by the inmem store.
package recordtest

import (
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/louisFankam/edumali-sub000/core"
	"github.com/louisFankam/edumali-sub000/storage/record/inmem"
)

type (
	Server struct {
		// Store is the backing data; seed it before exercising the client.
		Store *inmem.Store
		// Token is the only bearer token the server accepts.
		Token string
		// Identity/Password are the admin credentials for auth-with-password.
		Identity string
		Password string

		srv *httptest.Server
	}

	credentials struct {
		Identity string `json:"identity"`
		Password string `json:"password"`
	}
)

func New() *Server {
	s := &Server{
		Store:    inmem.Open(),
		Token:    "test-token",
		Identity: "admin@test.test",
		Password: "secret",
	}

	e := echo.New()
	e.HideBanner = true
	e.POST("/api/admins/auth-with-password", s.authenticate)

	api := e.Group("/api/collections", s.requireToken)
	api.GET("/:collection/records", s.list)
	api.GET("/:collection/records/:id", s.get)
	api.POST("/:collection/records", s.create)
	api.PATCH("/:collection/records/:id", s.update)
	api.DELETE("/:collection/records/:id", s.delete)

	s.srv = httptest.NewServer(e)
	return s
}

func (s *Server) URL() string { return s.srv.URL }
func (s *Server) Close()      { s.srv.Close() }

func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if ctx.Request().Header.Get("Authorization") != "Bearer "+s.Token {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		return next(ctx)
	}
}

func (s *Server) authenticate(ctx echo.Context) error {
	var creds credentials
	if err := ctx.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if creds.Identity != s.Identity || creds.Password != s.Password {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"token": s.Token})
}

func (s *Server) list(ctx echo.Context) error {
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	perPage, _ := strconv.Atoi(ctx.QueryParam("perPage"))
	opts := core.ListOptions{
		Filter:  ctx.QueryParam("filter"),
		Sort:    ctx.QueryParam("sort"),
		Expand:  ctx.QueryParam("expand"),
		Page:    page,
		PerPage: perPage,
	}

	items := make([]map[string]interface{}, 0)
	total, err := s.Store.List(ctx.Request().Context(), ctx.Param("collection"), opts, &items)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if page < 1 {
		page = 1
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"page":       page,
		"perPage":    perPage,
		"totalItems": total,
		"items":      items,
	})
}

func (s *Server) get(ctx echo.Context) error {
	var rec map[string]interface{}
	err := s.Store.Get(ctx.Request().Context(), ctx.Param("collection"), ctx.Param("id"), &rec)
	if err != nil {
		return storeError(err)
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (s *Server) create(ctx echo.Context) error {
	var body map[string]interface{}
	if err := ctx.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var rec map[string]interface{}
	if err := s.Store.Create(ctx.Request().Context(), ctx.Param("collection"), body, &rec); err != nil {
		return storeError(err)
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (s *Server) update(ctx echo.Context) error {
	var patch map[string]interface{}
	if err := ctx.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var rec map[string]interface{}
	err := s.Store.Update(ctx.Request().Context(), ctx.Param("collection"), ctx.Param("id"), patch, &rec)
	if err != nil {
		return storeError(err)
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (s *Server) delete(ctx echo.Context) error {
	if err := s.Store.Delete(ctx.Request().Context(), ctx.Param("collection"), ctx.Param("id")); err != nil {
		return storeError(err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func storeError(err error) error {
	if errors.Cause(err) == core.ErrNotFound {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
