package handler

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"context-generator-be/internal/pkg/logger"
	"context-generator-be/internal/pkg/serverutils"
	internalWS "context-generator-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressHandler_RequiresUpgrade(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := internalWS.NewHub(logger.NewNopLogger())
	go hub.Run(ctx)

	app := fiber.New()
	app.Use(serverutils.SessionMiddleware(time.Hour))
	NewProgressHandler(hub, logger.NewNopLogger()).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/ws/progress", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestProgressHandler_RequiresSession(t *testing.T) {
	app := fiber.New()
	NewProgressHandler(internalWS.NewHub(logger.NewNopLogger()), logger.NewNopLogger()).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/ws/progress", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
