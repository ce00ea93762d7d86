// Package templating substitutes {{key}} placeholders in notification content.
//
// A placeholder is "{{", one or more word characters ([A-Za-z0-9_]), then "}}".
// Keys are case-sensitive and whitespace inside the braces is not allowed, so
// "{{ name }}" is literal text. Values are inserted verbatim.
package templating

import (
	"regexp"
	"strings"
)

var placeholder = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Render replaces every placeholder whose key is present in variables.
// Placeholders with unknown keys are left untouched, braces included.
// Substitution is a single pass: a value that itself looks like a
// placeholder is not expanded again.
func Render(content string, variables map[string]string) string {
	if len(variables) == 0 || !strings.Contains(content, "{{") {
		return content
	}
	return placeholder.ReplaceAllStringFunc(content, func(match string) string {
		if v, ok := variables[match[2:len(match)-2]]; ok {
			return v
		}
		return match
	})
}

// ExtractVariables returns the distinct placeholder keys used across subject,
// html and text in order of first appearance.
func ExtractVariables(subject, html, text string) []string {
	seen := make(map[string]struct{})
	keys := []string{}
	for _, part := range []string{subject, html, text} {
		for _, m := range placeholder.FindAllStringSubmatch(part, -1) {
			if _, dup := seen[m[1]]; dup {
				continue
			}
			seen[m[1]] = struct{}{}
			keys = append(keys, m[1])
		}
	}
	return keys
}

// Content is the set of channel payloads of one template.
type Content struct {
	Subject   string `json:"subject"`
	HTML      string `json:"htmlContent"`
	Text      string `json:"textContent"`
	PushTitle string `json:"pushTitle,omitempty"`
	PushBody  string `json:"pushBody,omitempty"`
	SMS       string `json:"smsContent,omitempty"`
}

// RenderContent applies Render to every field of c.
func RenderContent(c Content, variables map[string]string) Content {
	return Content{
		Subject:   Render(c.Subject, variables),
		HTML:      Render(c.HTML, variables),
		Text:      Render(c.Text, variables),
		PushTitle: Render(c.PushTitle, variables),
		PushBody:  Render(c.PushBody, variables),
		SMS:       Render(c.SMS, variables),
	}
}

// Variables returns the keys used anywhere in c, channel by channel.
func (c Content) Variables() []string {
	keys := ExtractVariables(c.Subject, c.HTML, c.Text)
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		seen[k] = struct{}{}
	}
	for _, k := range ExtractVariables(c.PushTitle, c.PushBody, c.SMS) {
		if _, dup := seen[k]; !dup {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}
