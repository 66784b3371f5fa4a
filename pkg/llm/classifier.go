// pkg/llm/classifier.go
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/sensitive"
)

// Classifier scores column sensitivity through an Azure OpenAI chat
// deployment. It implements sensitive.External; callers must treat its
// failures as the absence of a signal.
type Classifier struct {
	client     *azopenai.Client
	deployment string
	logger     *zap.Logger
}

// NewClassifier creates a classifier bound to a chat deployment
func NewClassifier(endpoint, apiKey, deployment string, logger *zap.Logger) (*Classifier, error) {
	keyCredential := azcore.NewKeyCredential(apiKey)
	client, err := azopenai.NewClientWithKeyCredential(endpoint, keyCredential, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating Azure OpenAI client: %w", err)
	}
	return &Classifier{client: client, deployment: deployment, logger: logger}, nil
}

// verdict is the JSON shape the model is asked to reply with
type verdict struct {
	IsSensitive   bool    `json:"is_sensitive"`
	Confidence    float64 `json:"confidence"`
	SuggestedType string  `json:"suggested_type"`
	Reasoning     string  `json:"reasoning"`
}

// Classify asks the model whether a column holds sensitive data and
// returns its type guess with a confidence in [0,1]
func (c *Classifier) Classify(ctx context.Context, column string, sample []string) (sensitive.Type, float64, error) {
	resp, err := c.client.GetChatCompletions(
		ctx,
		azopenai.ChatCompletionsOptions{
			DeploymentName: to.Ptr(c.deployment),
			Messages: []azopenai.ChatRequestMessageClassification{
				&azopenai.ChatRequestUserMessage{
					Content: azopenai.NewChatRequestUserMessageContent(buildPrompt(column, sample)),
				},
			},
		},
		nil,
	)
	if err != nil {
		return sensitive.TypeNone, 0, &sensitive.CollaboratorError{Op: "chat completion", Err: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return sensitive.TypeNone, 0, &sensitive.CollaboratorError{
			Op: "chat completion", Err: fmt.Errorf("no completion received")}
	}

	v, err := parseVerdict(*resp.Choices[0].Message.Content)
	if err != nil {
		return sensitive.TypeNone, 0, &sensitive.CollaboratorError{Op: "response parsing", Err: err}
	}

	if c.logger != nil {
		c.logger.Debug("External classification",
			zap.String("column", column),
			zap.Bool("sensitive", v.IsSensitive),
			zap.Float64("confidence", v.Confidence),
			zap.String("type", v.SuggestedType))
	}

	t := sensitive.TypeNone
	if v.IsSensitive {
		if parsed, err := sensitive.ParseType(v.SuggestedType); err == nil {
			t = parsed
		}
	}

	confidence := v.Confidence
	if !v.IsSensitive {
		// The model reports confidence in its verdict; a confident
		// "not sensitive" is a low sensitivity signal
		confidence = 1 - v.Confidence
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return t, confidence, nil
}

func buildPrompt(column string, sample []string) string {
	var sb strings.Builder
	sb.WriteString("Decide whether the following tabular column contains sensitive personal data.\n\n")
	sb.WriteString("Column name: " + column + "\n")
	sb.WriteString("Sample values:\n")
	for _, v := range sample {
		// Long values are truncated on a rune boundary to keep the prompt
		// bounded without splitting multi-byte characters
		if r := []rune(v); len(r) > 50 {
			v = string(r[:50])
		}
		sb.WriteString("- " + v + "\n")
	}
	sb.WriteString(`
Reply with JSON only, in this exact shape:
{
  "is_sensitive": true or false,
  "confidence": a number between 0 and 1,
  "suggested_type": one of "phone", "id_number", "email", "name", "address", "none",
  "reasoning": "one short sentence"
}
`)
	return sb.String()
}

// parseVerdict extracts the JSON object from the completion, tolerating
// surrounding prose
func parseVerdict(content string) (*verdict, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in completion %q", content)
	}

	var v verdict
	if err := json.Unmarshal([]byte(content[start:end+1]), &v); err != nil {
		return nil, fmt.Errorf("malformed verdict JSON: %w", err)
	}
	return &v, nil
}
