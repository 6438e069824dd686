package simhash

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// shingleSize is the number of consecutive tags joined into one DOM token.
const shingleSize = 3

// FromDOM fingerprints the structure of an HTML document. Only the sequence of
// opening tag names is considered; text and attributes are ignored. Tags are
// grouped into overlapping 3-tag shingles, falling back to the bare tag
// sequence for very short documents.
func FromDOM(htmlStr string, width int) (*Simhash, error) {
	tags := extractTags(htmlStr)

	shingles := makeShingles(tags, shingleSize)
	if len(shingles) == 0 {
		return NewFromTokens(tags, width)
	}

	return NewFromTokens(shingles, width)
}

// FromHTMLText fingerprints the visible text of an HTML document, split on
// whitespace. Script and style contents are dropped.
func FromHTMLText(htmlStr string, width int) (*Simhash, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("simhash: parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	return New(doc.Text(), width)
}

// extractTags walks HTML with the tokenizer and collects open tag names in order.
func extractTags(htmlStr string) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlStr))

	var tags []string

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return tags
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			tags = append(tags, string(tn))
		case html.EndTagToken, html.TextToken, html.CommentToken, html.DoctypeToken:
		}
	}
}

// makeShingles creates n-gram shingles from a slice of tokens.
func makeShingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}

	shingles := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+n], "_"))
	}

	return shingles
}
