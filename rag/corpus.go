package rag

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"
)

const (
	defaultChunkWords   = 512
	defaultOverlapWords = 50
	embedBatchSize      = 100
	minSimilarity       = 0.4
)

// Passage is one retrieved piece of a document
type Passage struct {
	Source string  `json:"source"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

// Retriever finds the passages most relevant to a query
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Passage, error)
}

// Embedder turns texts into vectors. Results are in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ErrEmptyCorpus is returned by Load when the folder holds no usable document
var ErrEmptyCorpus = errors.New("no documents to index")

type chunk struct {
	source string
	text   string
	terms  map[string]int
	vector []float32
}

type index struct {
	chunks []chunk
	df     map[string]int
}

/* Corpus is the document store answers are grounded in.
 * Markdown and text files in one folder are split into overlapping word windows.
 * Ranking uses embeddings when an Embedder is set, keyword weighting otherwise.
 * Load builds a new index and swaps it in; readers keep the previous one until then.
 */
type Corpus struct {
	dir      string
	embedder Embedder

	ChunkWords   int
	OverlapWords int

	mu  sync.RWMutex
	idx index
}

// NewCorpus creates a corpus over dir. A nil embedder selects keyword ranking.
func NewCorpus(dir string, embedder Embedder) *Corpus {
	return &Corpus{
		dir:          dir,
		embedder:     embedder,
		ChunkWords:   defaultChunkWords,
		OverlapWords: defaultOverlapWords,
	}
}

// Dir is the folder documents are imported from
func (c *Corpus) Dir() string {
	return c.dir
}

// Load imports every document in the folder, creating the folder if absent.
// It returns the number of indexed chunks. A folder without documents empties the
// index and returns ErrEmptyCorpus; any other error keeps the previous index.
func (c *Corpus) Load(ctx context.Context) (int, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating documents folder: %w", err)
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("reading documents folder: %w", err)
	}

	var chunks []chunk
	for _, e := range entries {
		if e.IsDir() || !isDocument(e.Name()) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		for _, text := range c.split(string(raw)) {
			chunks = append(chunks, chunk{source: e.Name(), text: text, terms: termCounts(text)})
		}
	}
	if len(chunks) == 0 {
		c.mu.Lock()
		c.idx = index{}
		c.mu.Unlock()
		return 0, ErrEmptyCorpus
	}

	if c.embedder != nil {
		if err := c.embed(ctx, chunks); err != nil {
			return 0, err
		}
	}

	df := make(map[string]int)
	for _, ch := range chunks {
		for term := range ch.terms {
			df[term]++
		}
	}

	c.mu.Lock()
	c.idx = index{chunks: chunks, df: df}
	c.mu.Unlock()
	return len(chunks), nil
}

// Len is the number of indexed chunks
func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.idx.chunks)
}

// Retrieve returns up to k passages ranked by relevance to query
func (c *Corpus) Retrieve(ctx context.Context, query string, k int) ([]Passage, error) {
	c.mu.RLock()
	idx := c.idx
	c.mu.RUnlock()

	if len(idx.chunks) == 0 || k <= 0 {
		return nil, nil
	}

	var scored []Passage
	if c.embedder != nil {
		vectors, err := c.embedder.Embed(ctx, []string{query})
		if err != nil {
			return nil, fmt.Errorf("embedding query: %w", err)
		}
		if len(vectors) != 1 {
			return nil, fmt.Errorf("embedding query: got %d vectors", len(vectors))
		}
		for _, ch := range idx.chunks {
			if s := cosine(vectors[0], ch.vector); s >= minSimilarity {
				scored = append(scored, Passage{Source: ch.source, Text: ch.text, Score: s})
			}
		}
	} else {
		q := termCounts(query)
		n := float64(len(idx.chunks))
		for _, ch := range idx.chunks {
			var s float64
			for term := range q {
				tf := ch.terms[term]
				if tf == 0 {
					continue
				}
				idf := math.Log(1 + n/float64(idx.df[term]))
				s += (1 + math.Log(float64(tf))) * idf
			}
			if s > 0 {
				scored = append(scored, Passage{Source: ch.source, Text: ch.text, Score: s})
			}
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (c *Corpus) embed(ctx context.Context, chunks []chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, ch := range chunks[start:end] {
			texts = append(texts, ch.text)
		}
		vectors, err := c.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding documents: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedding documents: got %d vectors for %d chunks", len(vectors), len(texts))
		}
		for i, v := range vectors {
			chunks[start+i].vector = v
		}
	}
	return nil
}

// split cuts text into windows of ChunkWords words that overlap by OverlapWords
func (c *Corpus) split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	size := max(c.ChunkWords, 1)
	step := max(size-c.OverlapWords, 1)

	var out []string
	for start := 0; start < len(words); start += step {
		end := min(start+size, len(words))
		out = append(out, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return out
}

func isDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".txt":
		return !strings.HasPrefix(name, ".")
	default:
		return false
	}
}

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true,
	"by": true, "do": true, "does": true, "for": true, "from": true, "has": true, "have": true,
	"he": true, "his": true, "how": true, "in": true, "is": true, "it": true, "me": true,
	"of": true, "on": true, "or": true, "she": true, "tell": true, "that": true, "the": true,
	"they": true, "this": true, "to": true, "was": true, "what": true, "when": true,
	"where": true, "which": true, "who": true, "with": true, "you": true, "your": true,
}

func termCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) < 2 || stopWords[w] {
			continue
		}
		counts[w]++
	}
	return counts
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
