package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Generator produces text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse is returned when the model produced no text
var ErrEmptyResponse = errors.New("model returned no text")

// GeminiGenerator calls a Gemini model with a fixed system instruction
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// GeminiOptions tunes generation
type GeminiOptions struct {
	Model             string
	SystemInstruction string
	Temperature       float32
	MaxOutputTokens   int32
}

// NewGeminiGenerator creates a Gemini-backed generator
func NewGeminiGenerator(ctx context.Context, apiKey string, opts GeminiOptions) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	if opts.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(opts.SystemInstruction)},
		}
	}
	if opts.Temperature > 0 {
		model.SetTemperature(opts.Temperature)
	}
	if opts.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxOutputTokens)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate returns the text of the first candidate
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}
	return "", ErrEmptyResponse
}

// Close releases the underlying client
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// GeminiEmbedder embeds documents and queries with a Gemini embedding model
type GeminiEmbedder struct {
	client *genai.Client
	model  *genai.EmbeddingModel
}

// NewGeminiEmbedder creates a Gemini-backed embedder
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiEmbedder{client: client, model: client.EmbeddingModel(model)}, nil
}

// Embed sends texts as one batch
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	batch := e.model.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}
	resp, err := e.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("embedding contents: %w", err)
	}

	out := make([][]float32, 0, len(resp.Embeddings))
	for _, emb := range resp.Embeddings {
		if emb == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, emb.Values)
	}
	return out, nil
}

// Close releases the underlying client
func (e *GeminiEmbedder) Close() error {
	return e.client.Close()
}
