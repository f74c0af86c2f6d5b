package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/arbor/internal/generate"
	"github.com/ShayCichocki/arbor/pkg/models"
)

var _ generate.Client = (*Client)(nil)

// Generate forces the model to call a single tool whose input schema is
// schema, then decodes that tool input into out.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string, schema models.Schema, out any) error {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
		Tools: []anthropic.ToolUnionParam{SchemaTool(schema)},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: schema.Name},
		},
	})
	if err != nil {
		return fmt.Errorf("API call failed: %w", err)
	}

	c.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	for _, block := range resp.Content {
		variant, ok := block.AsAny().(anthropic.ToolUseBlock)
		if !ok || variant.Name != schema.Name {
			continue
		}
		if err := json.Unmarshal(variant.Input, out); err != nil {
			return fmt.Errorf("decode %s input: %w", schema.Name, err)
		}
		return nil
	}

	if resp.StopReason == anthropic.StopReasonMaxTokens {
		return fmt.Errorf("response hit the %d token limit before calling %s", c.maxTokens, schema.Name)
	}
	return fmt.Errorf("model did not call %s (stop reason %q)", schema.Name, resp.StopReason)
}

// SchemaTool converts a response schema into a tool definition.
func SchemaTool(schema models.Schema) anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        schema.Name,
			Description: anthropic.String(schema.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schema.Properties,
				Required:   schema.Required,
			},
		},
	}
}
