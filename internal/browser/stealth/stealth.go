package stealth

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-humanoid/internal/config"
)

//go:embed evasions.js
var evasionsScript string

// Persona defines the browser characteristics to emulate. Empty fields keep
// the browser's own value.
type Persona struct {
	UserAgent string
	Platform  string
	Languages []string
	Timezone  string
	Locale    string
}

// FromConfig builds a Persona from the browser settings. The persona's user
// agent falls back to the browser-wide one.
func FromConfig(cfg config.BrowserConfig) Persona {
	p := Persona{
		UserAgent: cfg.Persona.UserAgent,
		Platform:  cfg.Persona.Platform,
		Languages: cfg.Persona.Languages,
		Timezone:  cfg.Persona.Timezone,
		Locale:    cfg.Persona.Locale,
	}
	if p.UserAgent == "" {
		p.UserAgent = cfg.UserAgent
	}
	return p
}

// AcceptLanguage renders the languages as an Accept-Language header value
// with descending quality weights, e.g. "en-US,en;q=0.9".
func (p Persona) AcceptLanguage() string {
	parts := make([]string, 0, len(p.Languages))
	for i, lang := range p.Languages {
		if i == 0 {
			parts = append(parts, lang)
			continue
		}
		q := 10 - i
		if q < 1 {
			q = 1
		}
		parts = append(parts, fmt.Sprintf("%s;q=0.%d", lang, q))
	}
	return strings.Join(parts, ",")
}

// script wraps the evasions with the persona values they read.
func (p Persona) script() (string, error) {
	data, err := json.Marshal(struct {
		Platform  string   `json:"platform,omitempty"`
		Languages []string `json:"languages,omitempty"`
	}{p.Platform, p.Languages})
	if err != nil {
		return "", fmt.Errorf("failed to encode persona: %w", err)
	}
	return fmt.Sprintf("(function (persona) {\n%s\n})(%s);", evasionsScript, data), nil
}

// Apply constructs a sequence of Chrome DevTools Protocol actions to make the
// headless browser appear more like a standard, user-operated browser.
func Apply(p Persona, logger *zap.Logger) (chromedp.Tasks, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Applying browser persona",
		zap.String("userAgent", p.UserAgent),
		zap.String("platform", p.Platform),
		zap.Strings("languages", p.Languages),
	)

	script, err := p.script()
	if err != nil {
		return nil, err
	}
	acceptLanguage := p.AcceptLanguage()

	tasks := chromedp.Tasks{
		// AddScriptToEvaluateOnNewDocument returns an identifier as well, so it
		// needs an ActionFunc wrapper.
		chromedp.ActionFunc(func(ctx context.Context) error {
			if _, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx); err != nil {
				return fmt.Errorf("failed to inject evasions script: %w", err)
			}
			return nil
		}),
	}

	if p.UserAgent != "" {
		override := emulation.SetUserAgentOverride(p.UserAgent)
		if p.Platform != "" {
			override = override.WithPlatform(p.Platform)
		}
		if acceptLanguage != "" {
			override = override.WithAcceptLanguage(acceptLanguage)
		}
		tasks = append(tasks, override)
	}
	if p.Timezone != "" {
		tasks = append(tasks, emulation.SetTimezoneOverride(p.Timezone))
	}
	if p.Locale != "" {
		tasks = append(tasks, emulation.SetLocaleOverride().WithLocale(p.Locale))
	}
	if acceptLanguage != "" {
		tasks = append(tasks, network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": acceptLanguage}))
	}
	return tasks, nil
}
