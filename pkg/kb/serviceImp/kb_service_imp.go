package serviceImp

import (
	"context"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"mkulima/entities"
	"mkulima/pkg/apperr"
	"mkulima/pkg/kb/embedder"
	"mkulima/pkg/kb/repository"
	"mkulima/pkg/kb/service"
)

// Embedder turns texts into vectors; *embedder.Client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Svc struct {
	r        repository.KBRepository
	emb      Embedder
	allow    map[string]bool
	maxBytes int64
	httpc    *http.Client
	log      *zap.Logger
}

// New builds the service. emb may be nil; allowedDomains limits IngestURL.
func New(r repository.KBRepository, emb Embedder, allowedDomains []string, log *zap.Logger) service.KBService {
	allow := map[string]bool{}
	for _, h := range allowedDomains {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			allow[h] = true
		}
	}
	return &Svc{r: r, emb: emb, allow: allow, maxBytes: 1_500_000, httpc: &http.Client{Timeout: 20 * time.Second}, log: log}
}

func chunkText(text string, maxRunes int) []string {
	if maxRunes <= 0 {
		maxRunes = 1000
	}
	var parts []string
	cur := strings.Builder{}
	count := 0
	for _, r := range text {
		cur.WriteRune(r)
		count++
		if count >= maxRunes && r == '\n' {
			parts = append(parts, cur.String())
			cur.Reset()
			count = 0
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		parts = append(parts, cur.String())
	}
	return parts
}

func (s *Svc) Ingest(ctx context.Context, title, tags, text, sourceURL string) (*entities.KBDocument, int, error) {
	title = strings.TrimSpace(title)
	var missing []string
	if title == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(text) == "" {
		missing = append(missing, "text")
	}
	if len(missing) > 0 {
		return nil, 0, apperr.MissingFields(missing...)
	}

	chs := chunkText(text, 1000)
	var embs [][]float32
	if s.emb != nil {
		var err error
		if embs, err = s.emb.Embed(ctx, chs); err != nil {
			// keep the chunks; search falls back to keywords
			s.log.Warn("kb embedding failed", zap.String("title", title), zap.Error(err))
			embs = nil
		}
	}
	rows := make([]entities.KBChunk, len(chs))
	for i := range chs {
		rows[i] = entities.KBChunk{Ord: i, Text: chs[i]}
		if i < len(embs) {
			rows[i].Embedding = embedder.FloatsToBytes(embs[i])
		}
	}
	d := &entities.KBDocument{Title: title, Tags: strings.TrimSpace(tags), SourceURL: sourceURL}
	if err := s.r.Ingest(ctx, d, rows); err != nil {
		return nil, 0, err
	}
	s.log.Info("kb document ingested", zap.Uint("doc_id", d.DocID), zap.Int("chunks", len(rows)))
	return d, len(rows), nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := 0; i < len(a) && i < len(b); i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

var stopwords = map[string]bool{
	"the": true, "and": true, "are": true, "with": true, "for": true, "from": true,
	"has": true, "have": true, "this": true, "that": true, "its": true, "my": true,
	"not": true, "but": true, "some": true, "very": true,
}

func keywords(s string) []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) < 3 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// overlap is the share of query keywords found in text.
func overlap(query []string, text string) float64 {
	if len(query) == 0 {
		return 0
	}
	have := map[string]bool{}
	for _, w := range keywords(text) {
		have[w] = true
	}
	n := 0
	for _, w := range query {
		if have[w] {
			n++
		}
	}
	return float64(n) / float64(len(query))
}

func (s *Svc) Search(ctx context.Context, query string, k int) ([]service.Hit, error) {
	q := strings.TrimSpace(query)
	if q == "" || k <= 0 {
		return nil, nil
	}
	var qvec []float32
	if s.emb != nil {
		if vec, err := s.emb.Embed(ctx, []string{q}); err == nil && len(vec) > 0 {
			qvec = vec[0]
		}
	}
	chunks, err := s.r.AllChunks(ctx)
	if err != nil {
		return nil, err
	}

	qwords := keywords(q)
	var hits []service.Hit
	for _, ch := range chunks {
		var sc float64
		if v := embedder.BytesToFloats(ch.Embedding); len(qvec) > 0 && len(v) == len(qvec) {
			sc = cosine(qvec, v)
		} else {
			sc = overlap(qwords, ch.Text)
		}
		if sc > 0 {
			hits = append(hits, service.Hit{ChunkID: ch.ChunkID, DocID: ch.DocID, Ord: ch.Ord, Text: ch.Text, Score: sc})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}

	ids := make([]uint, 0, len(hits))
	seen := map[uint]bool{}
	for _, h := range hits {
		if !seen[h.DocID] {
			seen[h.DocID] = true
			ids = append(ids, h.DocID)
		}
	}
	meta, err := s.r.DocsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range hits {
		if d, ok := meta[hits[i].DocID]; ok {
			hits[i].DocTitle = d.Title
			hits[i].SourceURL = d.SourceURL
		}
	}
	return hits, nil
}

func (s *Svc) Docs(ctx context.Context) ([]entities.KBDocument, error) {
	return s.r.ListDocs(ctx)
}
