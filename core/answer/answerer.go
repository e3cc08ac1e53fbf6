package answer

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/alexphommasathit/policyqa/helper"
	"github.com/alexphommasathit/policyqa/model"
)

// NotFoundAnswer is returned when retrieval produced no relevant chunks. No
// model call is made in that case.
const NotFoundAnswer = "I could not find any relevant information in the policy documents to answer your question."

const systemPromptFormat = `You are a policy assistant answering questions about internal company policies.

Context from the policy documents:

%s

Rules:
- Answer ONLY from the context above. If the context does not contain the answer, say so explicitly.
- Open your answer by naming the source document and, where available, the section the answer comes from.
- Use structured markdown (headings, bullet points) when the answer has multiple points.
- Never mention chunk numbers or similarity scores to the user.`

// ChatCompleteFunc sends one system+user message pair to a chat model and
// returns the answer text.
type ChatCompleteFunc func(ctx context.Context, systemPrompt string, userPrompt string) (string, error)

// Answerer produces grounded answers from fused retrieval results.
type Answerer struct {
	complete ChatCompleteFunc
}

// NewAnswerer wraps a chat backend. Tests inject deterministic backends here.
func NewAnswerer(complete ChatCompleteFunc) *Answerer {
	return &Answerer{complete: complete}
}

// NewOpenAIAnswerer creates an Answerer backed by the OpenAI chat completions
// API. Low temperature and a bounded output length keep answers factual and
// short.
func NewOpenAIAnswerer(apiKey string, chatModel string) *Answerer {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return NewAnswerer(func(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
		response, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(chatModel),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(userPrompt),
			},
			Temperature: openai.Float(0.2),
			MaxTokens:   openai.Int(500),
		})
		if err != nil {
			return "", helper.NewError("Chat.Completions.New", err)
		}
		if len(response.Choices) == 0 {
			return "", helper.NewError("Chat.Completions.New", fmt.Errorf("response contains no choices"))
		}
		return response.Choices[0].Message.Content, nil
	})
}

// Answer generates an answer to the query grounded in the fused chunks and
// returns it together with the exact sources used. An empty chunk list
// short-circuits to the fixed not-found answer.
func (a *Answerer) Answer(ctx context.Context, query string, results []*model.RankedResult) (*model.Answer, error) {
	if len(results) == 0 {
		return &model.Answer{Answer: NotFoundAnswer, Sources: []model.Source{}}, nil
	}

	systemPrompt := fmt.Sprintf(systemPromptFormat, FormatContext(results))
	text, err := a.complete(ctx, systemPrompt, query)
	if err != nil {
		return nil, helper.NewError("Answer", err)
	}

	sources := make([]model.Source, len(results))
	for i, result := range results {
		sources[i] = model.Source{
			DocumentID:     result.DocumentID,
			DocumentTitle:  result.Metadata.DocumentTitle,
			DocumentStatus: result.Metadata.DocumentStatus,
			ChunkIndex:     result.ChunkIndex,
			ChunkText:      result.ChunkText,
			Similarity:     result.Similarity,
		}
	}

	return &model.Answer{Answer: text, Sources: sources}, nil
}
