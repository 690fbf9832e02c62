package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type amountRequest struct {
	Min   float64 `query:"min" default:"10000" validate:"gte=0"`
	Days  int     `query:"days" default:"30" validate:"gte=1"`
	ISINs string  `query:"isin" validate:"omitempty,isin_csv"`
}

func bindQuery(t *testing.T, query string, req interface{}) interface{} {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?"+query, nil), httptest.NewRecorder())
	return ReadAndValidateRequest(c, req)
}

func TestReadAndValidateRequestDefaults(t *testing.T) {
	var req amountRequest
	require.Nil(t, bindQuery(t, "", &req))
	assert.Equal(t, 10000.0, req.Min)
	assert.Equal(t, 30, req.Days)

	req = amountRequest{}
	require.Nil(t, bindQuery(t, "min=0", &req))
	assert.Equal(t, 0.0, req.Min, "explicit zero survives")

	req = amountRequest{}
	verr := bindQuery(t, "days=0", &req)
	require.NotNil(t, verr)
	errs := verr.([]ValidationError)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_GTE", errs[0].Code)
}

func TestISINValidation(t *testing.T) {
	assert.True(t, IsISIN("DE0007164600"))
	assert.True(t, IsISIN(" us0378331005 "))
	assert.False(t, IsISIN("DE000716460"))
	assert.False(t, IsISIN("1E0007164600"))
	assert.False(t, IsISIN("DE000716460X"))

	var req amountRequest
	assert.Nil(t, bindQuery(t, "isin=DE0007164600,US0378331005", &req))
	req = amountRequest{}
	verr := bindQuery(t, "isin=DE0007164600,NOPE", &req)
	require.NotNil(t, verr)
	assert.Equal(t, "ERR_ISIN_CSV", verr.([]ValidationError)[0].Code)
}
