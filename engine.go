package pagetlai

import (
	"context"
	"strings"
)

// Engine walks a node's fields and translates every eligible value.
// It keeps no per-run state; the policy is passed to every call.
type Engine struct {
	gateway *Gateway
	logger  Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the engine's logger.
func WithEngineLogger(logger Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine translating through gateway.
func NewEngine(gateway *Gateway, opts ...EngineOption) *Engine {
	e := &Engine{
		gateway: gateway,
		logger:  NoOpLogger(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Visit translates the fields of node and, recursively, of its nested
// nodes. isChangeRoot marks the node whose fields the triggering save
// changed; nested calls always pass false, so change detection only applies
// one level deep.
//
// Every visited field is persisted, whether or not a value was written.
// Gateway failures are recorded in the outcomes and never stop the walk. A
// persistence error aborts the walk and is returned along with the outcomes
// gathered so far; values already saved stay saved. A policy without
// targets makes the visit a no-op.
func (e *Engine) Visit(ctx context.Context, node Node, policy TranslationPolicy, isChangeRoot bool) ([]TranslationOutcome, error) {
	if len(policy.targets) == 0 {
		return nil, nil
	}

	var outcomes []TranslationOutcome

	for _, field := range node.Fields() {
		if policy.IsFieldExcluded(field.Name) {
			continue
		}
		if policy.WriteMode() == WriteChanged && isChangeRoot && !policy.IsChanged(field.Name) {
			continue
		}

		kind := field.Kind()
		e.logger.Debug("visiting field", "node", node.ID(), "field", field.Name, "kind", kind.String())

		out, err := e.visitField(ctx, node, field, kind, policy)
		outcomes = append(outcomes, out...)
		if err != nil {
			return outcomes, err
		}
	}

	return outcomes, nil
}

func (e *Engine) visitField(ctx context.Context, node Node, field FieldDescriptor, kind FieldKind, policy TranslationPolicy) ([]TranslationOutcome, error) {
	switch kind {
	case KindPlainText:
		return e.visitText(ctx, node, field, policy)
	case KindFileDescription:
		return e.visitFiles(ctx, node, field, policy)
	case KindRepeatingGroup:
		return e.visitChildren(ctx, node.Children(field.Name), policy)
	case KindNestedSchema:
		nested := node.Nested(field.Name)
		if nested == nil {
			return nil, nil
		}
		return e.Visit(ctx, nested, policy, false)
	case KindDynamicBundle:
		return e.visitBundle(ctx, node, field, policy)
	case KindTabular:
		return e.visitTable(ctx, node, field, policy)
	case KindCompositeMultipart:
		return e.visitParts(ctx, node, field, policy)
	default:
		return nil, nil
	}
}

func (e *Engine) visitText(ctx context.Context, node Node, field FieldDescriptor, policy TranslationPolicy) ([]TranslationOutcome, error) {
	value := node.Text(field.Name)
	if value == nil {
		return nil, nil
	}

	out := newOutcome(field)
	written := e.translateValue(ctx, value, policy, &out)
	return e.persist(ctx, node, field, out, written)
}

func (e *Engine) visitFiles(ctx context.Context, node Node, field FieldDescriptor, policy TranslationPolicy) ([]TranslationOutcome, error) {
	items := node.Files(field.Name)
	if len(items) == 0 {
		return nil, nil
	}

	out := newOutcome(field)
	for _, item := range items {
		written := false
		if desc := item.Description(); desc != nil {
			written = e.translateValue(ctx, desc, policy, &out)
		}
		for _, sub := range item.Values() {
			if mv, ok := sub.Value.(MultiValue); ok && e.translateValue(ctx, mv, policy, &out) {
				written = true
			}
		}

		if err := item.Save(ctx); err != nil {
			return []TranslationOutcome{out}, err
		}
		if written {
			out.TranslatedCount = 1
		}
	}
	return []TranslationOutcome{out}, nil
}

func (e *Engine) visitChildren(ctx context.Context, children []Node, policy TranslationPolicy) ([]TranslationOutcome, error) {
	var outcomes []TranslationOutcome
	for _, child := range children {
		out, err := e.Visit(ctx, child, policy, false)
		outcomes = append(outcomes, out...)
		if err != nil {
			return outcomes, err
		}
	}
	return outcomes, nil
}

func (e *Engine) visitBundle(ctx context.Context, node Node, field FieldDescriptor, policy TranslationPolicy) ([]TranslationOutcome, error) {
	bundle := node.Bundle(field.Name)
	if bundle == nil {
		return nil, nil
	}

	out := newOutcome(field)
	written := false
	for _, key := range bundle.Keys() {
		if strings.HasPrefix(key, ".") || isDerivedKey(key, policy) {
			continue
		}
		value := bundleValue{bundle: bundle, key: key, sourceID: policy.Source().ID}
		if e.translateValue(ctx, value, policy, &out) {
			written = true
		}
	}

	return e.persist(ctx, node, field, out, written)
}

func (e *Engine) visitTable(ctx context.Context, node Node, field FieldDescriptor, policy TranslationPolicy) ([]TranslationOutcome, error) {
	rows := node.Rows(field.Name)
	if len(rows) == 0 {
		return nil, nil
	}

	out := newOutcome(field)
	written := false
	for _, row := range rows {
		if e.translateNamed(ctx, row, policy, &out) {
			written = true
		}
	}

	return e.persist(ctx, node, field, out, written)
}

func (e *Engine) visitParts(ctx context.Context, node Node, field FieldDescriptor, policy TranslationPolicy) ([]TranslationOutcome, error) {
	parts := node.Parts(field.Name)
	if len(parts) == 0 {
		return nil, nil
	}

	out := newOutcome(field)
	written := e.translateNamed(ctx, parts, policy, &out)
	return e.persist(ctx, node, field, out, written)
}

// persist saves node scoped to field and counts the outcome when a value
// was written.
func (e *Engine) persist(ctx context.Context, node Node, field FieldDescriptor, out TranslationOutcome, written bool) ([]TranslationOutcome, error) {
	if err := node.Save(ctx, field.Name); err != nil {
		return []TranslationOutcome{out}, err
	}
	if written {
		out.TranslatedCount = 1
	}
	return []TranslationOutcome{out}, nil
}

// translateNamed translates the multilingual members of values and skips
// the rest.
func (e *Engine) translateNamed(ctx context.Context, values []NamedValue, policy TranslationPolicy, out *TranslationOutcome) bool {
	written := false
	for _, v := range values {
		mv, ok := v.Value.(MultiValue)
		if !ok {
			continue
		}
		if e.translateValue(ctx, mv, policy, out) {
			written = true
		}
	}
	return written
}

// translateValue fills the target languages of one multilingual value and
// reports whether any of them was written. A failed target is recorded and
// the next target is tried.
func (e *Engine) translateValue(ctx context.Context, value MultiValue, policy TranslationPolicy, out *TranslationOutcome) bool {
	source := value.LanguageValue(policy.Source().ID)
	written := false

	for _, target := range policy.targets {
		if !policy.needsTranslation(source, value.LanguageValue(target.ID)) {
			continue
		}

		result, err := e.gateway.Translate(ctx, source, target)
		if err != nil {
			e.logger.Warn("translation failed", "field", out.Field, "language", target.ID, "error", err)
			out.Errors = append(out.Errors, err.Error())
			continue
		}

		value.SetLanguageValue(target.ID, result)
		written = true
	}

	return written
}

func newOutcome(field FieldDescriptor) TranslationOutcome {
	return TranslationOutcome{Field: field.Name, Label: field.DisplayLabel()}
}

// isDerivedKey reports whether key is a translation written under
// "<key>.<languageId>" for any configured language, including languages
// that are excluded or not targeted by this run.
func isDerivedKey(key string, policy TranslationPolicy) bool {
	i := strings.LastIndex(key, ".")
	if i <= 0 {
		return false
	}
	suffix := key[i+1:]
	if suffix == policy.source.ID {
		return true
	}
	for _, lang := range policy.languages {
		if suffix == lang.ID {
			return true
		}
	}
	return false
}

// bundleValue exposes one bundle key as a multilingual value: the source
// language reads the key itself, other languages read "key.<languageId>".
type bundleValue struct {
	bundle   Bundle
	key      string
	sourceID string
}

func (v bundleValue) derived(languageID string) string {
	if languageID == v.sourceID {
		return v.key
	}
	return v.key + "." + languageID
}

func (v bundleValue) LanguageValue(languageID string) string {
	return v.bundle.Get(v.derived(languageID))
}

func (v bundleValue) SetLanguageValue(languageID, value string) {
	v.bundle.Set(v.derived(languageID), value)
}
