package api

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"expenseai/app/middleware"
	"expenseai/chunker"
	"expenseai/loader"
	"expenseai/model"
	"expenseai/store"
	"expenseai/types"
)

type UploadHandler struct {
	store    store.VectorStorer
	embedder model.EmbedderInterface
	logger   *slog.Logger
}

func NewUploadHandler(s store.VectorStorer, e model.EmbedderInterface) *UploadHandler {
	return &UploadHandler{
		store:    s,
		embedder: e,
		logger:   slog.Default(),
	}
}

// HandleUploadExpenses parses the uploaded workbook, rebuilds the user's
// collection from scratch and indexes the derived chunks. The previous
// collection is fully replaced, never appended to.
func (h *UploadHandler) HandleUploadExpenses(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewError(fiber.StatusBadRequest, "file field is required")
	}

	userID := c.FormValue("user_id", "default")

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	txs, err := loader.Parse(file, fileHeader.Filename)
	if err != nil {
		var missing *loader.MissingColumnsError
		switch {
		case errors.Is(err, loader.ErrUnsupportedType):
			return ErrUnsupportedFileType()
		case errors.As(err, &missing):
			return ErrMissingColumns(missing.Columns)
		default:
			return err
		}
	}

	chunks := chunker.Build(txs)

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	vectors, err := h.embedder.EmbedDocuments(c.Context(), texts)
	if err != nil {
		return ErrUpstream(err)
	}
	for i := range chunks {
		chunks[i].ID = fmt.Sprintf("%s_%d", userID, i)
		chunks[i].Embedding = vectors[i]
	}

	name := store.CollectionName(userID)
	if err := h.store.ReplaceCollection(c.Context(), name, userID); err != nil {
		return ErrUpstream(err)
	}
	if err := h.store.AddChunks(c.Context(), name, chunks); err != nil {
		return ErrUpstream(err)
	}

	h.logger.Info("expenses indexed",
		"request_id", c.Locals(middleware.HeaderRequestID),
		"user_id", userID, "transactions", len(txs), "chunks", len(chunks))

	return c.JSON(types.UploadResponse{
		Status:  "success",
		Message: fmt.Sprintf("Uploaded %d transactions, created %d chunks", len(txs), len(chunks)),
		UserID:  userID,
	})
}
