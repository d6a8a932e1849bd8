package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"expenseai/app/agent"
	"expenseai/model"
	"expenseai/store"
	"expenseai/types"
)

// topK is the number of chunks retrieved as answer context.
const topK = 5

type ChatHandler struct {
	store    store.VectorStorer
	embedder model.EmbedderInterface
	agent    agent.Generator
}

func NewChatHandler(s store.VectorStorer, e model.EmbedderInterface, g agent.Generator) *ChatHandler {
	return &ChatHandler{
		store:    s,
		embedder: e,
		agent:    g,
	}
}

// HandleChat answers a question about the user's expenses: embed the
// question, retrieve the top-K chunks from the user's collection, and hand
// both to the language model. A user without an uploaded collection gets a
// 404 telling them to upload first.
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var params types.ChatParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	name := store.CollectionName(params.UserID)
	exists, err := h.store.HasCollection(c.Context(), name)
	if err != nil {
		return ErrUpstream(err)
	}
	if !exists {
		return ErrNoExpenseData()
	}

	queryVec, err := h.embedder.EmbedQuery(c.Context(), params.Question)
	if err != nil {
		return ErrUpstream(err)
	}

	hits, err := h.store.Search(c.Context(), name, queryVec, topK)
	if err != nil {
		return ErrUpstream(err)
	}

	texts := make([]string, len(hits))
	sources := make([]string, len(hits))
	for i, hit := range hits {
		texts[i] = hit.Text
		if hit.Kind == "" {
			sources[i] = "unknown"
		} else {
			sources[i] = string(hit.Kind)
		}
	}

	answer, err := h.agent.GenerateAnswer(c.Context(), params.Question, strings.Join(texts, "\n\n"))
	if err != nil {
		return ErrUpstream(err)
	}

	return c.JSON(types.ChatResponse{
		Answer:  answer,
		Sources: sources,
	})
}
