package htmlutil

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// ParseLenient parses page markup into a document. Scrape targets
// regularly serve partial or malformed html; the parser's recovery is
// good enough that the result is still selectable, and a fatal parse
// failure degrades to an empty document so selector lookups come back
// as empty strings instead of errors.
func ParseLenient(body []byte) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		slog.Error("fatal parse failure, continuing with empty document", "err", err)
		empty, _ := goquery.NewDocumentFromReader(strings.NewReader(""))
		return empty
	}
	return doc
}

// SelectText returns the first match's text content, trimmed.
// It returns "" when the selector matches nothing or doc is nil;
// it never fails. This is the only place the rest of the codebase
// touches selections, so swapping the parser means changing one file.
func SelectText(doc *goquery.Document, selector string) string {
	if doc == nil {
		return ""
	}
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(sel.First().Text())
}

// SelectAttr is SelectText for attribute values.
func SelectAttr(doc *goquery.Document, selector, attr string) string {
	if doc == nil {
		return ""
	}
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(sel.First().AttrOr(attr, ""))
}

// SelectTexts returns the trimmed text of every match, skipping
// matches that trim down to nothing.
func SelectTexts(doc *goquery.Document, selector string) []string {
	if doc == nil {
		return nil
	}
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		out = append(out, text)
	})
	return out
}
