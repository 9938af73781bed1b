package pagetlai

import (
	"context"
	"errors"
	"testing"
)

func TestGateway_Request(t *testing.T) {
	backend := newFakeBackend()
	source := Language{ID: "default", Code: "en-GB"}
	g := NewGateway(backend, source,
		WithPreserveFormatting(false),
		WithTagHandling(TagHandlingNone),
		WithContext("Furniture shop"),
		WithStyle(StyleMarketing),
	)

	result, err := g.Translate(context.Background(), "Table", Language{ID: "de", Code: "DE"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "DE:Table" {
		t.Errorf("unexpected result %q", result)
	}

	req := backend.requests[0]
	if req.SourceLocale != "EN" {
		t.Errorf("en-GB source should be sent as EN, got %q", req.SourceLocale)
	}
	if req.PreserveFormatting || req.TagHandling != TagHandlingNone {
		t.Errorf("options not applied: %+v", req)
	}
	if req.Context != "Furniture shop" || req.Style != StyleMarketing {
		t.Errorf("context and style not applied: %+v", req)
	}
	if req.GlossaryID != "" || req.Glossary != nil {
		t.Error("no glossary should be attached")
	}
}

func TestGateway_Defaults(t *testing.T) {
	g := NewGateway(newFakeBackend(), Language{ID: "default", Code: "DE"})

	if !g.preserveFormatting || g.tagHandling != TagHandlingHTML || g.style != StyleNeutral {
		t.Errorf("unexpected defaults: %+v", g)
	}
	if g.Source().ID != "default" || g.glossary != nil {
		t.Error("unexpected source or glossary")
	}
}

func TestGateway_BareEnglishTarget(t *testing.T) {
	backend := newFakeBackend()
	g := NewGateway(backend, Language{ID: "default", Code: "DE"})

	if _, err := g.Translate(context.Background(), "Hallo", Language{ID: "en", Code: "en"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := backend.requests[0].TargetLocale; got != "EN-GB" {
		t.Errorf("expected EN-GB, got %q", got)
	}
}

func TestGateway_PassThrough(t *testing.T) {
	backend := newFakeBackend()
	g := NewGateway(backend, Language{ID: "default", Code: "DE"})

	// The marker short-circuits even the target locale check.
	result, err := g.Translate(context.Background(), "[[form id=3]]", Language{ID: "xx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "[[form id=3]]" || backend.calls() != 0 {
		t.Errorf("expected verbatim result without backend call, got %q (%d calls)", result, backend.calls())
	}
}

func TestGateway_EmptyTargetLocale(t *testing.T) {
	backend := newFakeBackend()
	g := NewGateway(backend, Language{ID: "default", Code: "DE"})

	_, err := g.Translate(context.Background(), "Hallo", Language{ID: "xx", Code: " "})

	var terr *TranslationError
	if !errors.As(err, &terr) || terr.Message != "empty target locale" {
		t.Fatalf("expected empty target locale error, got %v", err)
	}
	if backend.calls() != 0 {
		t.Error("backend must not be called")
	}
}

func TestGateway_BackendError(t *testing.T) {
	backend := newFakeBackend()
	cause := errors.New("quota exceeded")
	backend.fail["FR"] = cause
	g := NewGateway(backend, Language{ID: "default", Code: "DE"})

	_, err := g.Translate(context.Background(), "Hallo", Language{ID: "fr", Code: "FR"})

	var terr *TranslationError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TranslationError, got %T", err)
	}
	if terr.TargetLocale != "FR" || !errors.Is(err, cause) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGateway_GlossaryAttachment(t *testing.T) {
	glossaries := newFakeGlossaryBackend()
	manager := NewGlossaryManager(glossaries, nil)
	langs := []Language{
		{ID: "default", Code: "en-GB"},
		{ID: "de", Code: "DE", Glossary: "Table==Tisch"},
		{ID: "fr", Code: "FR"},
	}

	info, err := manager.Ensure(context.Background(), langs[0], langs)
	if err != nil || info == nil {
		t.Fatalf("Ensure: %v %v", info, err)
	}

	backend := newFakeBackend()
	g := NewGateway(backend, langs[0], WithGlossary(manager, info))

	if _, err := g.Translate(context.Background(), "Table", langs[1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := g.Translate(context.Background(), "Table", langs[2]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	de, fr := backend.requests[0], backend.requests[1]
	if de.GlossaryID != info.ID || de.Glossary["Table"] != "Tisch" {
		t.Errorf("expected the German dictionary to be attached, got %+v", de)
	}
	if fr.GlossaryID != "" || fr.Glossary != nil {
		t.Errorf("no dictionary exists for French, got %+v", fr)
	}
}
