package pagetlai

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// SaveActionValue is the submit action value that requests a translation.
// Per-language actions append "_<languageId>".
const SaveActionValue = "save_and_translate"

// DefaultThrottle is the minimum time between interactive runs on one page.
const DefaultThrottle = 5 * time.Second

// SaveAction is one entry of the page editor's save dropdown.
type SaveAction struct {
	Value string
	Icon  string
	Label string
}

// PageTranslator is the main translation engine. It resolves the run
// policy, provisions the glossary and drives the field walk for interactive
// saves and batch tree walks.
type PageTranslator struct {
	backend     Backend
	glossaries  *GlossaryManager
	throttle    time.Duration
	now         func() time.Time
	gatewayOpts []GatewayOption
	logger      Logger
}

// TranslatorOption is a functional option for configuring the PageTranslator.
type TranslatorOption func(*PageTranslator)

// WithGlossaryManager enables glossary provisioning and attachment.
func WithGlossaryManager(manager *GlossaryManager) TranslatorOption {
	return func(t *PageTranslator) {
		t.glossaries = manager
	}
}

// WithThrottle sets the minimum time between interactive runs on one page.
// Zero disables the throttle.
func WithThrottle(d time.Duration) TranslatorOption {
	return func(t *PageTranslator) {
		t.throttle = d
	}
}

// WithClock overrides the time source used by the throttle.
func WithClock(now func() time.Time) TranslatorOption {
	return func(t *PageTranslator) {
		if now != nil {
			t.now = now
		}
	}
}

// WithGatewayOptions sets options applied to the gateway of every run.
func WithGatewayOptions(opts ...GatewayOption) TranslatorOption {
	return func(t *PageTranslator) {
		t.gatewayOpts = append(t.gatewayOpts, opts...)
	}
}

// WithLogger sets the logger shared by the translator, its engine and gateway.
func WithLogger(logger Logger) TranslatorOption {
	return func(t *PageTranslator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewPageTranslator creates a PageTranslator using backend.
func NewPageTranslator(backend Backend, opts ...TranslatorOption) *PageTranslator {
	t := &PageTranslator{
		backend:  backend,
		throttle: DefaultThrottle,
		now:      time.Now,
		logger:   NoOpLogger(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// TranslateNode runs one traversal of node under policy.
func (t *PageTranslator) TranslateNode(ctx context.Context, node Node, policy TranslationPolicy) (*Report, error) {
	report := NewReport()
	engine := t.prepare(ctx, policy, report)

	outcomes, err := engine.Visit(ctx, node, policy, true)
	report.Add(outcomes...)

	t.logger.Info("node translated", "node", node.ID(), "fields", report.TranslatedCount(), "errors", len(report.Errors()))
	return report, err
}

// SaveAndTranslate handles a page save. Nothing happens unless the actor
// may translate and the submitted action asks for a translation. Runs
// started within the throttle window are rejected with *ThrottleError.
// A nil report means no run took place.
func (t *PageTranslator) SaveAndTranslate(ctx context.Context, page Page, settings Settings, trigger Trigger) (*Report, error) {
	if trigger.Actor == nil || !trigger.Actor.HasPermission(TranslatePermission) {
		return nil, nil
	}

	target, ok := ParseSaveAction(trigger.Action)
	if !ok {
		return nil, nil
	}
	if trigger.TargetLanguage == "" {
		trigger.TargetLanguage = target
	}

	policy := ResolvePolicy(settings, trigger)
	if policy.IsTemplateExcluded(page.Template()) {
		return nil, nil
	}

	if wait := t.throttleWait(trigger.LastModified); wait > 0 {
		t.logger.Warn("translation throttled", "page", page.ID(), "wait", wait.String())
		return nil, &ThrottleError{Wait: wait}
	}

	return t.TranslateNode(ctx, page, policy)
}

// TranslatePageTree translates root and all of its descendants in
// depth-first pre-order, writing one log line per page to w. Pages with
// excluded templates are skipped but their subpages are still visited.
// Batch runs have no change signal, so WriteChanged acts as WriteEmpty.
func (t *PageTranslator) TranslatePageTree(ctx context.Context, root Page, settings Settings, includeHidden bool, w io.Writer) (*Report, error) {
	policy := ResolvePolicy(settings, Trigger{})
	if policy.WriteMode() == WriteChanged {
		policy = policy.withWriteMode(WriteEmpty)
	}

	report := NewReport()
	engine := t.prepare(ctx, policy, report)

	err := t.walk(ctx, engine, policy, root, includeHidden, report, w)
	t.logger.Info("page tree translated", "root", root.ID(), "fields", report.TranslatedCount(), "errors", len(report.Errors()))
	return report, err
}

func (t *PageTranslator) walk(ctx context.Context, engine *Engine, policy TranslationPolicy, page Page, includeHidden bool, report *Report, w io.Writer) error {
	processed := !policy.IsTemplateExcluded(page.Template())
	if processed {
		pageReport := NewReport()
		outcomes, err := engine.Visit(ctx, page, policy, true)
		pageReport.Add(outcomes...)
		report.Merge(pageReport)
		if err != nil {
			return fmt.Errorf("translating page %s: %w", page.ID(), err)
		}
		t.logger.Debug("page translated", "page", page.ID(), "fields", pageReport.TranslatedCount(), "errors", len(pageReport.Errors()))
	}
	if w != nil {
		fmt.Fprintln(w, PageLogLine(page, processed))
	}

	children, err := page.Subpages(includeHidden)
	if err != nil {
		return fmt.Errorf("listing subpages of %s: %w", page.ID(), err)
	}
	for _, child := range children {
		if err := t.walk(ctx, engine, policy, child, includeHidden, report, w); err != nil {
			return err
		}
	}
	return nil
}

// SaveActions lists the translate actions offered for page. Actors without
// the translate permission and excluded templates get none.
func (t *PageTranslator) SaveActions(page Page, settings Settings, actor Actor) []SaveAction {
	if actor == nil || !actor.HasPermission(TranslatePermission) {
		return nil
	}

	policy := ResolvePolicy(settings, Trigger{})
	if policy.IsTemplateExcluded(page.Template()) {
		return nil
	}

	targets := policy.Targets()
	if len(targets) == 0 {
		return nil
	}

	if settings.SingleButton {
		return []SaveAction{{Value: SaveActionValue, Icon: "language", Label: "Save + Translate"}}
	}

	actions := make([]SaveAction, 0, len(targets))
	for _, lang := range targets {
		title := lang.Title
		if title == "" {
			title = lang.ID
		}
		actions = append(actions, SaveAction{
			Value: SaveActionValue + "_" + lang.ID,
			Icon:  "language",
			Label: "Save + Translate to " + title,
		})
	}
	return actions
}

// ParseSaveAction reports whether value requests a translation and returns
// the single target language it names, if any.
func ParseSaveAction(value string) (string, bool) {
	if value == SaveActionValue {
		return "", true
	}
	if lang, ok := strings.CutPrefix(value, SaveActionValue+"_"); ok && lang != "" {
		return lang, true
	}
	return "", false
}

// prepare provisions the glossary and builds the run's engine.
func (t *PageTranslator) prepare(ctx context.Context, policy TranslationPolicy, report *Report) *Engine {
	opts := append([]GatewayOption{WithGatewayLogger(t.logger)}, t.gatewayOpts...)

	if t.glossaries != nil && len(policy.targets) > 0 {
		glossary, err := t.glossaries.Ensure(ctx, policy.Source(), policy.Languages())
		if err != nil {
			t.logger.Warn("glossary unavailable", "error", err)
			report.AddError(err)
		}
		if glossary != nil {
			opts = append(opts, WithGlossary(t.glossaries, glossary))
		}
	}

	gateway := NewGateway(t.backend, policy.Source(), opts...)
	return NewEngine(gateway, WithEngineLogger(t.logger))
}

func (t *PageTranslator) throttleWait(lastModified time.Time) time.Duration {
	if t.throttle <= 0 || lastModified.IsZero() {
		return 0
	}
	elapsed := t.now().Sub(lastModified)
	if elapsed >= t.throttle {
		return 0
	}
	return t.throttle - elapsed
}
