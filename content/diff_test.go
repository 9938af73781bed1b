package content

import (
	"slices"
	"testing"
)

func TestChangedFields_Unchanged(t *testing.T) {
	before := parseSample(t)
	after := parseSample(t)

	changed := ChangedFields(&before.Root().Record, &after.Root().Record, "default")
	if len(changed) != 0 {
		t.Errorf("expected no changes, got %v", changed)
	}
}

func TestChangedFields_SourceEdits(t *testing.T) {
	before := parseSample(t)
	after := parseSample(t)
	root := after.Root()

	root.Field("title").Values["default"] = "Welcome home"
	root.Field("slides").Items[0].FieldList[0].Values["default"] = "Slide 1"
	root.Field("prices").Rows[0][0].Values["default"] = "Tiny"

	changed := ChangedFields(&before.Root().Record, &root.Record, "default")
	want := []string{"title", "slides", "prices"}
	if !slices.Equal(changed, want) {
		t.Errorf("expected %v, got %v", want, changed)
	}
}

func TestChangedFields_IgnoresTranslations(t *testing.T) {
	before := parseSample(t)
	after := parseSample(t)
	root := after.Root()

	root.Field("title").Values["de"] = "Willkommen"
	root.Field("address").Parts[0].Values["de"] = "Hauptstrasse"
	bundle := root.Bundle("labels")
	bundle.Set("greeting.de", "Hallo")

	changed := ChangedFields(&before.Root().Record, &root.Record, "default")
	if len(changed) != 0 {
		t.Errorf("translations should not count as changes, got %v", changed)
	}
}

func TestChangedFields_BundleKeys(t *testing.T) {
	before := parseSample(t)
	after := parseSample(t)
	after.Root().Bundle("labels").Set("farewell", "Bye")

	changed := ChangedFields(&before.Root().Record, &after.Root().Record, "default")
	if !slices.Equal(changed, []string{"labels"}) {
		t.Errorf("expected [labels], got %v", changed)
	}
}

func TestChangedFields_NewFieldAndNilBefore(t *testing.T) {
	before := parseSample(t)
	after := parseSample(t)
	root := after.Root()
	root.FieldList = append(root.FieldList, &Field{Name: "summary", Type: "TextareaLanguage"})

	changed := ChangedFields(&before.Root().Record, &root.Record, "default")
	if !slices.Equal(changed, []string{"summary"}) {
		t.Errorf("expected [summary], got %v", changed)
	}

	all := ChangedFields(nil, &root.Record, "default")
	if len(all) != len(root.FieldList) {
		t.Errorf("expected every field without a previous revision, got %v", all)
	}
	if ChangedFields(&root.Record, nil, "default") != nil {
		t.Error("expected nil for a missing record")
	}
}
