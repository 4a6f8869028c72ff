// Package messages renders the canned push notification texts.
package messages

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templateFS embed.FS

const (
	LeadStatusChanged  = "lead_status_changed"
	LeadEnrolled       = "lead_enrolled"
	CommissionApproved = "commission_approved"
	CommissionPaid     = "commission_paid"
)

// Data fills the template placeholders.
type Data struct {
	StudentName      string
	NewStatus        string
	CommissionAmount float64
}

type rawTemplate struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

type compiled struct {
	title *template.Template
	body  *template.Template
}

// Catalog holds the parsed templates keyed by name.
type Catalog struct {
	templates map[string]compiled
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("₹%.2f", v) },
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	raw, err := templateFS.ReadFile("templates.yaml")
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse builds a catalog from YAML source.
func Parse(src []byte) (*Catalog, error) {
	var defs map[string]rawTemplate
	if err := yaml.Unmarshal(src, &defs); err != nil {
		return nil, fmt.Errorf("parse message templates: %w", err)
	}

	c := &Catalog{templates: make(map[string]compiled, len(defs))}
	for name, def := range defs {
		title, err := template.New(name + ".title").Funcs(funcs).Option("missingkey=error").Parse(def.Title)
		if err != nil {
			return nil, fmt.Errorf("template %s title: %w", name, err)
		}
		body, err := template.New(name + ".body").Funcs(funcs).Option("missingkey=error").Parse(def.Body)
		if err != nil {
			return nil, fmt.Errorf("template %s body: %w", name, err)
		}
		c.templates[name] = compiled{title: title, body: body}
	}
	return c, nil
}

// Render returns the title and body for name.
func (c *Catalog) Render(name string, data Data) (string, string, error) {
	tpl, ok := c.templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown message template %q", name)
	}

	var title, body bytes.Buffer
	if err := tpl.title.Execute(&title, data); err != nil {
		return "", "", err
	}
	if err := tpl.body.Execute(&body, data); err != nil {
		return "", "", err
	}
	return title.String(), body.String(), nil
}
