package pagetlai_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ZaguanLabs/pagetlai"
	"github.com/ZaguanLabs/pagetlai/config"
	"github.com/ZaguanLabs/pagetlai/content"
	"github.com/ZaguanLabs/pagetlai/glossary"
	"github.com/ZaguanLabs/pagetlai/provider"
)

// Integration tests wiring the YAML content tree, the mock backend and the
// in-memory glossary store together.

const integrationConfig = `
default_language: default
languages:
  - id: default
    title: English
    locale: EN
  - id: de
    title: Deutsch
    locale: DE
    glossary: |
      Hello==Servus
  - id: fr
    title: Francais
    locale: FR
excluded_templates: [archive]
excluded_fields: [sku]
backend:
  provider: mock
`

const integrationTree = `
id: "1"
title: Home
template: home
fields:
  - name: title
    label: Title
    type: PageTitleLanguage
    values:
      default: Hello
  - name: sku
    label: SKU
    type: TextLanguage
    values:
      default: HX-1
  - name: gallery
    label: Gallery
    type: Image
    files:
      - name: hero.jpg
        description:
          default: World
  - name: slides
    label: Slides
    type: Repeater
    items:
      - id: "1-1"
        fields:
          - name: headline
            label: Headline
            type: TextLanguage
            values:
              default: Hello World
  - name: labels
    label: Labels
    type: Functional
    entries:
      - key: cta
        value: Hello
      - key: .cta
        value: shadow
  - name: embed
    label: Embed
    type: TextLanguage
    values:
      default: "[[form id=1]]"
children:
  - id: "2"
    title: Archive
    template: archive
    fields:
      - name: title
        label: Title
        type: PageTitleLanguage
        values:
          default: Old
    children:
      - id: "3"
        title: Entry
        template: basic-page
        fields:
          - name: title
            label: Title
            type: PageTitleLanguage
            values:
              default: World
`

func setup(t *testing.T) (*content.Tree, *config.Store, *provider.MockProvider) {
	t.Helper()

	cfg, err := config.Parse([]byte(integrationConfig))
	if err != nil {
		t.Fatalf("config.Parse: %v", err)
	}
	tree, err := content.Parse([]byte(integrationTree))
	if err != nil {
		t.Fatalf("content.Parse: %v", err)
	}
	return tree, config.NewStore("", cfg), provider.NewMockProvider()
}

func newTranslator(store *config.Store, backend pagetlai.Backend, opts ...pagetlai.TranslatorOption) *pagetlai.PageTranslator {
	manager := pagetlai.NewGlossaryManager(glossary.NewMemoryStore(), store)
	opts = append([]pagetlai.TranslatorOption{pagetlai.WithGlossaryManager(manager)}, opts...)
	return pagetlai.NewPageTranslator(backend, opts...)
}

func TestIntegration_TreeWalk(t *testing.T) {
	tree, store, mock := setup(t)
	tr := newTranslator(store, mock)

	var log bytes.Buffer
	report, err := tr.TranslatePageTree(context.Background(), tree.Root(), store.Config().Settings(), false, &log)
	if err != nil {
		t.Fatalf("TranslatePageTree: %v", err)
	}

	wantLog := "Process page Home (1)\nIgnore page Archive (2)\nProcess page Entry (3)\n"
	if log.String() != wantLog {
		t.Errorf("unexpected log:\n%s", log.String())
	}

	root := tree.Root()
	if got := root.Field("title").Values; got["de"] != "Hallo" || got["fr"] != "Bonjour" {
		t.Errorf("unexpected title: %v", got)
	}
	if got := root.Field("sku").Values; len(got) != 1 {
		t.Errorf("excluded field was written: %v", got)
	}
	if got := root.Field("gallery").Files[0].Desc; got["de"] != "Welt" {
		t.Errorf("unexpected file description: %v", got)
	}
	if got := root.Field("slides").Items[0].FieldList[0].Values; got["fr"] != "Bonjour le monde" {
		t.Errorf("unexpected repeater value: %v", got)
	}
	if got := root.Bundle("labels"); got.Get("cta.de") != "Hallo" || got.Get(".cta.de") != "" {
		t.Errorf("unexpected bundle keys: %v", got.Keys())
	}
	if got := root.Field("embed").Values; got["de"] != "[[form id=1]]" || got["fr"] != "[[form id=1]]" {
		t.Errorf("pass-through value not copied: %v", got)
	}

	archive, _ := tree.Find("2")
	if len(archive.Field("title").Values) != 1 {
		t.Error("excluded template was translated")
	}
	entry, _ := tree.Find("3")
	if entry.Field("title").Values["de"] != "Welt" {
		t.Error("subpages of excluded pages must still be processed")
	}

	for _, req := range mock.Requests {
		if req.Text == "HX-1" || strings.HasPrefix(req.Text, "[[") || req.Text == "shadow" {
			t.Errorf("unexpected backend request for %q", req.Text)
		}
	}

	wantSummary := "Title, Gallery, Headline, Labels, Embed translated"
	if report.Summary() != wantSummary {
		t.Errorf("unexpected summary: %q", report.Summary())
	}
	if report.HasErrors() {
		t.Errorf("unexpected errors: %v", report.Errors())
	}
	if store.GlossaryID() == "" {
		t.Error("glossary id should be persisted")
	}
}

func TestIntegration_GlossaryAttached(t *testing.T) {
	tree, store, mock := setup(t)
	tr := newTranslator(store, mock)

	if _, err := tr.TranslateNode(context.Background(), tree.Root(), pagetlai.ResolvePolicy(store.Config().Settings(), pagetlai.Trigger{})); err != nil {
		t.Fatalf("TranslateNode: %v", err)
	}

	var attached, detached int
	for _, req := range mock.Requests {
		switch req.TargetLocale {
		case "DE":
			if req.GlossaryID == store.GlossaryID() && req.Glossary["Hello"] == "Servus" {
				attached++
			}
		case "FR":
			if req.GlossaryID == "" {
				detached++
			}
		}
	}
	if attached == 0 || attached != detached {
		t.Errorf("expected the German dictionary on every German request only: %d/%d", attached, detached)
	}
}

func TestIntegration_EmptyModeIdempotent(t *testing.T) {
	tree, store, mock := setup(t)
	tr := newTranslator(store, mock)
	settings := store.Config().Settings()

	if _, err := tr.TranslatePageTree(context.Background(), tree.Root(), settings, false, nil); err != nil {
		t.Fatalf("first walk: %v", err)
	}
	calls := mock.CallCount
	saves := len(tree.Saves())

	report, err := tr.TranslatePageTree(context.Background(), tree.Root(), settings, false, nil)
	if err != nil {
		t.Fatalf("second walk: %v", err)
	}
	if mock.CallCount != calls {
		t.Errorf("second walk made %d calls", mock.CallCount-calls)
	}
	if len(tree.Saves()) != 2*saves {
		t.Errorf("second walk should persist the same fields, got %d saves after %d", len(tree.Saves())-saves, saves)
	}
	if report.TranslatedCount() != 0 {
		t.Errorf("expected nothing translated, got %d", report.TranslatedCount())
	}
}

func TestIntegration_SaveAndTranslate(t *testing.T) {
	tree, store, mock := setup(t)
	store.Config().WriteMode = "changed"
	tr := newTranslator(store, mock, pagetlai.WithThrottle(time.Minute))
	root := tree.Root()
	root.Field("title").Values["de"] = "Alt"

	report, err := tr.SaveAndTranslate(context.Background(), root, store.Config().Settings(), pagetlai.Trigger{
		Action:        "save_and_translate_de",
		ChangedFields: []string{"title"},
		Actor:         operator{},
	})
	if err != nil {
		t.Fatalf("SaveAndTranslate: %v", err)
	}
	if report.Summary() != "Title translated" {
		t.Errorf("unexpected summary: %q", report.Summary())
	}
	if got := root.Field("title").Values; got["de"] != "Hallo" || got["fr"] != "" {
		t.Errorf("unexpected title values: %v", got)
	}

	saves := tree.Saves()
	if len(saves) != 1 || saves[0].NodeID != "1" || saves[0].Fields[0] != "title" {
		t.Errorf("unexpected saves: %+v", saves)
	}

	_, err = tr.SaveAndTranslate(context.Background(), root, store.Config().Settings(), pagetlai.Trigger{
		Action:       pagetlai.SaveActionValue,
		Actor:        operator{},
		LastModified: time.Now(),
	})
	var throttled *pagetlai.ThrottleError
	if !errors.As(err, &throttled) {
		t.Errorf("expected a throttle rejection, got %v", err)
	}
}

func TestIntegration_SaveHookFailure(t *testing.T) {
	tree, store, mock := setup(t)
	tr := newTranslator(store, mock)
	tree.SetSaveHook(func(ctx context.Context, nodeID string, fields []string) error {
		if nodeID == "1-1" {
			return errors.New("repeater locked")
		}
		return nil
	})

	report, err := tr.TranslatePageTree(context.Background(), tree.Root(), store.Config().Settings(), false, nil)
	if err == nil || !strings.Contains(err.Error(), "repeater locked") {
		t.Fatalf("expected the save failure, got %v", err)
	}
	if report.Summary() != "Title, Gallery translated" {
		t.Errorf("work before the failure should be reported, got %q", report.Summary())
	}
	entry, _ := tree.Find("3")
	if len(entry.Field("title").Values) != 1 {
		t.Error("the walk should stop at the failed save")
	}
}

func TestIntegration_PartialFailure(t *testing.T) {
	tree, store, mock := setup(t)
	mock.Fail["FR"] = &pagetlai.ProviderError{Message: "quota exceeded"}
	tr := newTranslator(store, mock)

	report, err := tr.TranslatePageTree(context.Background(), tree.Root(), store.Config().Settings(), false, nil)
	if err != nil {
		t.Fatalf("gateway failures must not abort: %v", err)
	}
	if tree.Root().Field("title").Values["de"] != "Hallo" {
		t.Error("German translations should be written")
	}
	if !strings.Contains(report.ErrorSummary(), "quota exceeded") {
		t.Errorf("unexpected error summary: %q", report.ErrorSummary())
	}
	if strings.Count(report.ErrorSummary(), "quota exceeded") != 1 {
		t.Errorf("error summary should list distinct errors: %q", report.ErrorSummary())
	}
}

// flakyBackend fails the first attempts of every request with a retryable error.
type flakyBackend struct {
	next     pagetlai.Backend
	failures int
	attempts map[string]int
}

func (b *flakyBackend) Translate(ctx context.Context, req pagetlai.TranslateRequest) (string, error) {
	key := req.Text + "|" + req.TargetLocale
	b.attempts[key]++
	if b.attempts[key] <= b.failures {
		return "", &pagetlai.ProviderError{Message: "rate limited", Retryable: true}
	}
	return b.next.Translate(ctx, req)
}

func TestIntegration_RetryableBackend(t *testing.T) {
	tree, store, mock := setup(t)
	flaky := &flakyBackend{next: mock, failures: 2, attempts: make(map[string]int)}
	backend := pagetlai.NewRetryableBackend(flaky, pagetlai.RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	})
	tr := newTranslator(store, backend)

	report, err := tr.TranslatePageTree(context.Background(), tree.Root(), store.Config().Settings(), false, nil)
	if err != nil {
		t.Fatalf("TranslatePageTree: %v", err)
	}
	if report.HasErrors() {
		t.Errorf("retries should absorb transient failures: %v", report.Errors())
	}
	if tree.Root().Field("title").Values["fr"] != "Bonjour" {
		t.Error("expected translations after retries")
	}
}

func TestIntegration_SaveActions(t *testing.T) {
	tree, store, mock := setup(t)
	tr := newTranslator(store, mock)

	actions := tr.SaveActions(tree.Root(), store.Config().Settings(), operator{})
	if len(actions) != 2 || actions[0].Label != "Save + Translate to Deutsch" {
		t.Errorf("unexpected actions: %+v", actions)
	}

	archive, _ := tree.Find("2")
	if tr.SaveActions(archive, store.Config().Settings(), operator{}) != nil {
		t.Error("excluded templates offer no actions")
	}
}

type operator struct{}

func (operator) HasPermission(name string) bool {
	return name == pagetlai.TranslatePermission
}
