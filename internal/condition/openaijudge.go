package condition

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIJudge is an NLJudge backed by a chat-completion call, used when
// DirectorConfig.Mode is ai_assisted or ai_primary. It is never
// imported by internal/selection or internal/director directly — only
// wired up at the cmd/server boundary, so the deterministic core never
// depends on network I/O.
type OpenAIJudge struct {
	client *openai.Client
	model  string
}

// NewOpenAIJudge returns a judge that calls the given model through an
// existing go-openai client.
func NewOpenAIJudge(client *openai.Client, model string) *OpenAIJudge {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIJudge{client: client, model: model}
}

type judgeResponse struct {
	Satisfied  bool    `json:"satisfied"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

const judgeSystemPrompt = `You are the narrative precondition judge for an interactive fiction engine.
You are given a natural-language condition and a textual summary of the current world state.
Decide whether the condition holds given the state. Respond with a single JSON object:
{"satisfied": bool, "confidence": number between 0 and 1, "reason": short string}
Do not include any other text.`

// Judge sends conditionText and stateContext to the chat model and
// parses its structured verdict. A malformed response is treated as a
// judge failure, not a silent "unsatisfied".
func (j *OpenAIJudge) Judge(ctx context.Context, conditionText, stateContext string) (Judgment, error) {
	resp, err := j.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: j.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: judgeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Condition: %s\n\nState:\n%s", conditionText, stateContext)},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Judgment{}, fmt.Errorf("openai judge call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Judgment{}, fmt.Errorf("openai judge returned no choices")
	}

	var parsed judgeResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return Judgment{}, fmt.Errorf("openai judge returned unparseable response: %w", err)
	}

	return Judgment{Satisfied: parsed.Satisfied, Confidence: parsed.Confidence, Reason: parsed.Reason}, nil
}
