// Package pagetlai translates the localizable fields of CMS pages.
//
// Given a page whose content exists in a source language, pagetlai walks the
// page's field schema and fills the missing (or stale) values of every
// configured target language through a machine-translation backend. Nested
// structures such as repeaters, fieldsets, tables and composite fields are
// visited recursively.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/pagetlai"
//	    "github.com/ZaguanLabs/pagetlai/provider"
//	)
//
//	func main() {
//	    backend := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    t := pagetlai.NewPageTranslator(backend,
//	        pagetlai.WithThrottle(5*time.Second),
//	    )
//
//	    policy := pagetlai.ResolvePolicy(settings, pagetlai.Trigger{})
//	    report, err := t.TranslateNode(context.Background(), page, policy)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(report.Summary()) // Title, Body translated
//	}
package pagetlai
