package serviceImp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mkulima/entities"
	"mkulima/pkg/apperr"
)

func (s *Svc) IngestURL(ctx context.Context, rawURL, title, tags string) (*entities.KBDocument, int, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, 0, &apperr.ValidationError{Fields: []string{"url"}, Reason: "bad url"}
	}
	if !s.allow[strings.ToLower(u.Hostname())] {
		return nil, 0, &apperr.ValidationError{Fields: []string{"url"}, Reason: "domain not allowed"}
	}
	txt, pageTitle, err := s.fetchMainText(ctx, u.String())
	if err != nil {
		return nil, 0, apperr.Upstream("kb fetch", "", err)
	}
	if strings.TrimSpace(title) == "" {
		title = pageTitle
	}
	if strings.TrimSpace(title) == "" {
		title = u.Host + u.Path
	}
	return s.Ingest(ctx, title, tags, txt, u.String())
}

func (s *Svc) fetchMainText(ctx context.Context, u string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("status %d", resp.StatusCode)
	}
	if resp.ContentLength > s.maxBytes {
		return "", "", fmt.Errorf("page too large")
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return "", "", err
	}
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	switch {
	case strings.Contains(ct, "text/plain"):
		return string(b), guessTitleFromText(string(b)), nil
	case !strings.Contains(ct, "text/html"):
		return "", "", fmt.Errorf("unsupported content-type: %s", ct)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return "", "", err
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())

	// main text: headings, paragraphs and list items under main/article
	var parts []string
	sel := doc.Find("main, article")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	sel.Find("h1,h2,h3,p,li").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return cleanWhitespace(strings.Join(parts, "\n")), title, nil
}

var wsRX = regexp.MustCompile(`[ \t]+\n`)

func cleanWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return wsRX.ReplaceAllString(s, "\n")
}

func guessTitleFromText(s string) string {
	line := strings.SplitN(strings.TrimSpace(s), "\n", 2)[0]
	if r := []rune(line); len(r) > 120 {
		line = string(r[:120])
	}
	return line
}
