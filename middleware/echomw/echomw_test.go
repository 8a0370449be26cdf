package echomw_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/reqshape"
	"github.com/reoring/reqshape/dsl"
	"github.com/reoring/reqshape/middleware"
	"github.com/reoring/reqshape/middleware/echomw"
)

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	reg := reqshape.NewRegistry()
	require.NoError(t, reg.Register(dsl.Shape("Item").
		Field("sku", dsl.String().Pattern(`^[A-Z]{3}$`)).Required().
		Field("qty", dsl.Int().Min(1)).Default(1).
		MustBuild()))
	v := reqshape.NewValidator(reg, reqshape.DefaultConfig())

	e := echo.New()
	e.POST("/items", func(c echo.Context) error {
		obj, ok := echomw.Instance(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.JSON(http.StatusCreated, obj)
	}, echomw.Validate(v, reqshape.Ref("Item"), middleware.DefaultOptions()))
	return e
}

func TestEcho_Validate(t *testing.T) {
	e := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"sku":"ABC","note":"dropped"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"sku":"ABC","qty":1}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"sku":"abc","qty":0}`))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Validation failed","errors":{"sku":["sku must match ^[A-Z]{3}$ regular expression"],"qty":["qty must not be less than 1"]}}`, rec.Body.String())
}
