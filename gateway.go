package pagetlai

import (
	"context"
	"strings"
)

// Backend is the interface for translation backends.
type Backend interface {
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Text               string
	SourceLocale       string
	TargetLocale       string
	PreserveFormatting bool
	TagHandling        string            // TagHandlingNone or TagHandlingHTML
	GlossaryID         string            // Attached glossary, if any
	Glossary           map[string]string // Entries of the attached dictionary
	Context            string
	Style              TranslationStyle
}

// Gateway translates single values from the run's source language through a
// backend. It is built once per run.
type Gateway struct {
	backend            Backend
	source             Language
	glossaries         *GlossaryManager
	glossary           *GlossaryInfo
	preserveFormatting bool
	tagHandling        string
	context            string
	style              TranslationStyle
	logger             Logger
}

// GatewayOption is a functional option for configuring the Gateway.
type GatewayOption func(*Gateway)

// WithGlossary attaches the run's glossary. Dictionaries are only sent for
// language pairs the glossary has entries for.
func WithGlossary(manager *GlossaryManager, glossary *GlossaryInfo) GatewayOption {
	return func(g *Gateway) {
		g.glossaries = manager
		g.glossary = glossary
	}
}

// WithPreserveFormatting asks the backend to keep the source formatting.
func WithPreserveFormatting(preserve bool) GatewayOption {
	return func(g *Gateway) {
		g.preserveFormatting = preserve
	}
}

// WithTagHandling sets how markup inside values is treated.
func WithTagHandling(mode string) GatewayOption {
	return func(g *Gateway) {
		g.tagHandling = mode
	}
}

// WithContext sets the global translation context.
func WithContext(ctx string) GatewayOption {
	return func(g *Gateway) {
		g.context = ctx
	}
}

// WithStyle sets the translation style/register.
func WithStyle(style TranslationStyle) GatewayOption {
	return func(g *Gateway) {
		g.style = style
	}
}

// WithGatewayLogger sets the gateway's logger.
func WithGatewayLogger(logger Logger) GatewayOption {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGateway creates a Gateway translating from source.
func NewGateway(backend Backend, source Language, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		backend:            backend,
		source:             source,
		preserveFormatting: true,
		tagHandling:        TagHandlingHTML,
		style:              StyleNeutral,
		logger:             NoOpLogger(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Translate translates text into target. Values starting with the
// pass-through marker are returned unchanged without calling the backend.
// Failures are returned as *TranslationError and never panic or abort.
func (g *Gateway) Translate(ctx context.Context, text string, target Language) (string, error) {
	if strings.HasPrefix(text, PassThroughMarker) {
		return text, nil
	}

	if strings.TrimSpace(target.Code) == "" {
		return "", &TranslationError{Message: "empty target locale"}
	}

	req := TranslateRequest{
		Text:               text,
		SourceLocale:       SanitizeLocale(g.source.Code),
		TargetLocale:       BackendTargetLocale(target.Code),
		PreserveFormatting: g.preserveFormatting,
		TagHandling:        g.tagHandling,
		Context:            g.context,
		Style:              g.style,
	}

	if g.glossaries != nil {
		if dict, ok := g.glossaries.Dictionary(ctx, g.glossary, g.source.Code, target.Code); ok {
			req.GlossaryID = g.glossary.ID
			req.Glossary = dict.Map()
		}
	}

	g.logger.Debug("translating value", "source", req.SourceLocale, "target", req.TargetLocale, "glossary", req.GlossaryID != "")

	result, err := g.backend.Translate(ctx, req)
	if err != nil {
		return "", &TranslationError{
			Message:      "translation failed",
			TargetLocale: req.TargetLocale,
			Cause:        err,
		}
	}

	return result, nil
}

// Source returns the language the gateway translates from.
func (g *Gateway) Source() Language {
	return g.source
}
