package api

import (
	"github.com/gofiber/fiber/v2"

	"expenseai/app/agent"
	"expenseai/types"
)

type CheckHandler struct {
	agent agent.Generator
}

func NewCheckHandler(g agent.Generator) *CheckHandler {
	return &CheckHandler{agent: g}
}

// HandleHealth reports service health plus LM Studio reachability. The
// probe's own failure never turns into an error response.
func (h *CheckHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(types.HealthResponse{
		Status:            "healthy",
		LMStudioConnected: h.agent.CheckConnection(c.Context()),
	})
}

func (h *CheckHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Expense Tracker AI Assistant API",
		"endpoints": fiber.Map{
			"POST /upload_expenses": "Upload Excel file with expenses",
			"POST /chat":            "Chat with AI about expenses",
			"GET /health":           "Health check",
		},
	})
}
