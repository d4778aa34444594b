package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

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
	if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		buffer.WriteByte(' ')
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// LooksLikeHTML is a cheap sniff, it does not validate the document.
func LooksLikeHTML(body string) bool {
	start := strings.ToLower(strings.TrimSpace(body))
	if len(start) > 512 {
		start = start[:512]
	}
	return strings.HasPrefix(start, "<!doctype html") ||
		strings.HasPrefix(start, "<html") ||
		strings.Contains(start, "<body")
}

// Summarize turns a response body into a single line of at most `max` runes.
// HTML documents are reduced to their visible text (title first).
func Summarize(body string, max int) string {
	text := body
	if LooksLikeHTML(body) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err == nil {
			title := strings.TrimSpace(doc.Find("title").First().Text())
			var bodyText string
			for _, n := range doc.Find("body").Nodes {
				bodyText += GetText(n)
			}
			text = strings.TrimSpace(title + " " + bodyText)
		}
	}

	text = removeNonPrintable(text)
	text = strings.TrimSpace(innerWhitespace.ReplaceAllString(text, " "))

	runes := []rune(text)
	if max > 0 && len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return text
}
