package embedder

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client calls an OpenAI-compatible /v1/embeddings endpoint.
type Client struct {
	endpoint, key, model string
	httpc                *http.Client
}

func New(endpoint, key, model string) *Client {
	return &Client{endpoint, key, model, &http.Client{Timeout: 20 * time.Second}}
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	b, _ := json.Marshal(map[string]any{"model": c.model, "input": texts})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.endpoint, "/")+"/v1/embeddings", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("embeddings: status %d", resp.StatusCode)
	}
	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d inputs", len(out.Data), len(texts))
	}
	res := make([][]float32, len(out.Data))
	for i := range out.Data {
		res[i] = out.Data[i].Embedding
	}
	return res, nil
}

func FloatsToBytes(v []float32) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func BytesToFloats(b []byte) []float32 {
	n := len(b) / 4
	out := make([]float32, n)
	_ = binary.Read(bytes.NewReader(b), binary.LittleEndian, &out)
	return out
}
