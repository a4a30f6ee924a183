// Package notification delivers notifications over email and the push
// gateway.
package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/homechef/backend/internal/domain/notification"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EmailContent is the data bound to an email template
type EmailContent struct {
	Name    string
	Subject string
	Body    string
	Kind    notification.Kind
	Data    map[string]string
}

const layout = `<!DOCTYPE html>
<html lang="{{lang}}">
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="font-family:sans-serif;color:#222">
<p>{{greeting .Name}},</p>
<p>{{.Body}}</p>
{{block "details" .}}{{end}}
<p style="color:#888;font-size:12px">HomeChef</p>
</body>
</html>`

// kindDetails adds a detail block for kinds that carry structured data
var kindDetails = map[notification.Kind]string{
	notification.KindOrderReceipt: `{{define "details"}}<table>
<tr><td>Total</td><td>{{index .Data "total"}}</td></tr>
<tr><td>Payment</td><td>{{title (index .Data "payment_method")}}</td></tr>
{{with index .Data "redeemed_points"}}{{if ne . "0"}}<tr><td>Points redeemed</td><td>{{.}}</td></tr>{{end}}{{end}}
</table>{{end}}`,
	notification.KindOrderCompleted: `{{define "details"}}{{with index .Data "points_earned"}}<p>You earned {{.}} points.</p>{{end}}{{end}}`,
	notification.KindTierChanged: `{{define "details"}}<p>New tier: <strong>{{title (index .Data "tier")}}</strong></p>{{end}}`,
}

// TemplateEngine renders email subjects and HTML bodies per notification kind
type TemplateEngine struct {
	lang  language.Tag
	title cases.Caser
	base  *template.Template
	kinds map[notification.Kind]*template.Template
}

// NewTemplateEngine parses the layout and the per-kind blocks. lang is a BCP 47
// tag; an unparseable tag falls back to English.
func NewTemplateEngine(lang string) (*TemplateEngine, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	e := &TemplateEngine{
		lang:  tag,
		title: cases.Title(tag),
		kinds: make(map[notification.Kind]*template.Template, len(kindDetails)),
	}
	funcs := template.FuncMap{
		"lang":     func() string { return e.lang.String() },
		"title":    e.titleCase,
		"greeting": e.greeting,
		"upper":    cases.Upper(tag).String,
	}

	e.base, err = template.New("email").Funcs(funcs).Parse(layout)
	if err != nil {
		return nil, fmt.Errorf("parse email layout: %w", err)
	}
	for kind, details := range kindDetails {
		t, err := template.Must(e.base.Clone()).Parse(details)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", kind, err)
		}
		e.kinds[kind] = t
	}
	return e, nil
}

// Subject title-cases the first word of the notification title
func (e *TemplateEngine) Subject(c EmailContent) string {
	s := strings.TrimSpace(c.Subject)
	if s == "" {
		return e.titleCase(strings.ReplaceAll(strings.ToLower(string(c.Kind)), "_", " "))
	}
	first, rest, _ := strings.Cut(s, " ")
	if rest == "" {
		return e.title.String(first)
	}
	return e.title.String(first) + " " + rest
}

// Render returns the HTML body for c
func (e *TemplateEngine) Render(c EmailContent) (string, error) {
	t, ok := e.kinds[c.Kind]
	if !ok {
		t = e.base
	}
	if c.Data == nil {
		c.Data = map[string]string{}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("render %s email: %w", c.Kind, err)
	}
	return buf.String(), nil
}

func (e *TemplateEngine) titleCase(s string) string {
	return e.title.String(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
}

func (e *TemplateEngine) greeting(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Hello"
	}
	return "Hello " + e.title.String(name)
}
