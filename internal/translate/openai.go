// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/solarhub/solar-admin/internal/model"
)

const systemPrompt = "You translate content for a website administration panel. " +
	"Translate the user's text from %s to %s. Reply with the translation only, " +
	"keeping line breaks and any HTML tags unchanged."

// OpenAIOptions configures the OpenAI translator.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string // optional, for compatible gateways
	HTTPClient *http.Client
}

// OpenAITranslator uses chat completions to translate.
type OpenAITranslator struct {
	client openai.Client
	model  string
}

// NewOpenAITranslator creates an OpenAI backed translator.
func NewOpenAITranslator(opts OpenAIOptions) *OpenAITranslator {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	return &OpenAITranslator{
		client: openai.NewClient(reqOpts...),
		model:  modelName,
	}
}

// Translate implements Translator.
func (t *OpenAITranslator) Translate(ctx context.Context, text string, source, target model.Lang) (string, error) {
	resp, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(t.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(systemPrompt, source.NativeName(), target.NativeName())),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("openai translate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResult
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
