// Package inspect reads a document with a real HTML tokenizer to report the
// structure the string-level rewriter cannot see: which attributes the root
// element actually carries and which links are root-relative.
package inspect

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Ref is one root-relative reference found in a document.
type Ref struct {
	Tag   string // "a" or "form"
	Attr  string // "href" or "action"
	Value string
}

// Report describes one document.
type Report struct {
	// HasRoot is false when no <html> start tag exists.
	HasRoot bool
	// RootAttrs maps each attribute of the first <html> start tag to its
	// values in source order; duplicates are kept.
	RootAttrs map[string][]string
	// Refs lists anchors and forms whose href/action starts with "/".
	Refs []Ref
}

// Inspect tokenizes content. Script and style bodies are raw text to the
// tokenizer, so markup inside injected scripts is never reported.
func Inspect(content string) (*Report, error) {
	rep := &Report{RootAttrs: map[string][]string{}}
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return rep, nil
			}
			return nil, fmt.Errorf("tokenizing: %w", z.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			rep.visit(z.Token())
		}
	}
}

func (r *Report) visit(tok html.Token) {
	switch tok.Data {
	case "html":
		if r.HasRoot {
			return
		}
		r.HasRoot = true
		for _, a := range tok.Attr {
			r.RootAttrs[a.Key] = append(r.RootAttrs[a.Key], a.Val)
		}
	case "a":
		r.collect(tok, "href")
	case "form":
		r.collect(tok, "action")
	}
}

func (r *Report) collect(tok html.Token, attr string) {
	for _, a := range tok.Attr {
		if a.Key == attr && strings.HasPrefix(a.Val, "/") {
			r.Refs = append(r.Refs, Ref{Tag: tok.Data, Attr: attr, Value: a.Val})
			return
		}
	}
}

// RootAttr returns the first value of a root attribute and how many times
// the attribute occurs on the root element.
func (r *Report) RootAttr(name string) (string, int) {
	vals := r.RootAttrs[name]
	if len(vals) == 0 {
		return "", 0
	}
	return vals[0], len(vals)
}
