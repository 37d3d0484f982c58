package api

import (
	"context"

	"claimrag/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CheckHandler struct {
	store        store.VectorStorer
	collectionID uuid.UUID
}

func NewCheckHandler(s store.VectorStorer, collectionID uuid.UUID) *CheckHandler {
	return &CheckHandler{
		store:        s,
		collectionID: collectionID,
	}
}

func (h *CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	count, err := h.store.CountChunks(context.Background(), h.collectionID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"result": "ok", "chunks": count})
}
