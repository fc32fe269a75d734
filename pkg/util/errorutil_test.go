package util

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	de := ToDomainError(NewConflict("username taken"))
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)

	de = ToDomainError(fiber.NewError(http.StatusForbidden, "nope"))
	assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
	assert.Equal(t, "nope", de.Message)

	cause := errors.New("db down")
	de = ToDomainError(cause)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.ErrorIs(t, de, cause)
}

func TestRespondWritesStandardBody(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return Respond(c, NewInvalidToken())
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, ContentTypeJSON, resp.Header.Get(fiber.HeaderContentType))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body Body
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, Body{Message: "token is not valid", Status: http.StatusBadRequest}, body)
}
