package rag_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marcelsud/telegram-ragbot/rag"
	"github.com/marcelsud/telegram-ragbot/rag/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeDocs(t *testing.T, docs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
	}
	return dir
}

func TestCorpus_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("success - creates a missing folder", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "documents")
		c := rag.NewCorpus(dir, nil)

		n, err := c.Load(ctx)

		require.ErrorIs(t, err, rag.ErrEmptyCorpus)
		assert.Zero(t, n)
		info, statErr := os.Stat(dir)
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
	})

	t.Run("success - indexes markdown and text only", func(t *testing.T) {
		dir := writeDocs(t, map[string]string{
			"resume.md":  "Senior engineer working with Go and Kubernetes.",
			"notes.txt":  "Enjoys climbing and photography.",
			"photo.png":  "not a document",
			".hidden.md": "ignored",
		})
		c := rag.NewCorpus(dir, nil)

		n, err := c.Load(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("success - long documents are split with overlap", func(t *testing.T) {
		words := make([]string, 25)
		for i := range words {
			words[i] = "w" + string(rune('a'+i))
		}
		dir := writeDocs(t, map[string]string{"long.md": strings.Join(words, " ")})
		c := rag.NewCorpus(dir, nil)
		c.ChunkWords, c.OverlapWords = 10, 2

		n, err := c.Load(ctx)

		require.NoError(t, err)
		assert.Equal(t, 3, n)

		got, err := c.Retrieve(ctx, "wi", 5)
		require.NoError(t, err)
		require.Len(t, got, 2, "the overlapping word lands in two chunks")
	})

	t.Run("success - reload drops removed documents", func(t *testing.T) {
		dir := writeDocs(t, map[string]string{"a.md": "kubernetes operator"})
		c := rag.NewCorpus(dir, nil)
		_, err := c.Load(ctx)
		require.NoError(t, err)

		require.NoError(t, os.Remove(filepath.Join(dir, "a.md")))
		_, err = c.Load(ctx)

		require.ErrorIs(t, err, rag.ErrEmptyCorpus)
		assert.Zero(t, c.Len())
	})

	t.Run("error - embedding failure keeps the previous index", func(t *testing.T) {
		dir := writeDocs(t, map[string]string{"a.md": "golang services"})
		emb := mocks.NewEmbedder(t)
		c := rag.NewCorpus(dir, emb)

		emb.On("Embed", ctx, []string{"golang services"}).Return([][]float32{{1, 0}}, nil).Once()
		_, err := c.Load(ctx)
		require.NoError(t, err)

		emb.On("Embed", ctx, mock.Anything).Return(nil, errors.New("quota exceeded")).Once()
		_, err = c.Load(ctx)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding documents")
		assert.Equal(t, 1, c.Len())
	})
}

func TestCorpus_Retrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("success - keyword ranking", func(t *testing.T) {
		dir := writeDocs(t, map[string]string{
			"skills.md":  "Skills: Go, Python, Kubernetes, Terraform. Kubernetes operators in Go.",
			"hobbies.md": "Hobbies: climbing, photography and cooking.",
			"contact.md": "Contact by email for hiring inquiries.",
		})
		c := rag.NewCorpus(dir, nil)
		_, err := c.Load(ctx)
		require.NoError(t, err)

		got, err := c.Retrieve(ctx, "What Kubernetes skills do you have?", 2)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "skills.md", got[0].Source)
		assert.Greater(t, got[0].Score, 0.0)
	})

	t.Run("success - nothing relevant", func(t *testing.T) {
		dir := writeDocs(t, map[string]string{"a.md": "golang services"})
		c := rag.NewCorpus(dir, nil)
		_, err := c.Load(ctx)
		require.NoError(t, err)

		got, err := c.Retrieve(ctx, "what is the weather", 3)

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("success - empty corpus", func(t *testing.T) {
		c := rag.NewCorpus(t.TempDir(), nil)

		got, err := c.Retrieve(ctx, "anything", 3)

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("success - embedding ranking", func(t *testing.T) {
		dir := writeDocs(t, map[string]string{
			"a.md": "alpha",
			"b.md": "beta",
		})
		emb := mocks.NewEmbedder(t)
		c := rag.NewCorpus(dir, emb)

		emb.On("Embed", ctx, []string{"alpha", "beta"}).Return([][]float32{{1, 0}, {0, 1}}, nil).Once()
		emb.On("Embed", ctx, []string{"first letter"}).Return([][]float32{{0.9, 0.1}}, nil).Once()
		_, err := c.Load(ctx)
		require.NoError(t, err)

		got, err := c.Retrieve(ctx, "first letter", 5)

		require.NoError(t, err)
		require.Len(t, got, 1, "passages under the similarity floor are dropped")
		assert.Equal(t, "a.md", got[0].Source)
	})

	t.Run("error - query embedding fails", func(t *testing.T) {
		dir := writeDocs(t, map[string]string{"a.md": "alpha"})
		emb := mocks.NewEmbedder(t)
		c := rag.NewCorpus(dir, emb)

		emb.On("Embed", ctx, []string{"alpha"}).Return([][]float32{{1}}, nil).Once()
		emb.On("Embed", ctx, []string{"q"}).Return(nil, errors.New("timeout")).Once()
		_, err := c.Load(ctx)
		require.NoError(t, err)

		_, err = c.Retrieve(ctx, "q", 1)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding query")
	})
}
