// Command pagetlai translates multilingual page trees stored as YAML.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/pagetlai"
	"github.com/ZaguanLabs/pagetlai/config"
	"github.com/ZaguanLabs/pagetlai/content"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = pagetlai.Version
	commit    = pagetlai.GitCommit
	buildDate = pagetlai.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(context.Background())
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   pagetlai.Name,
		Short: pagetlai.Description,
		Long: `pagetlai fills the missing translations of multilingual page fields
through a machine translation backend. Languages, exclusions, the write
mode and the backend are read from the configuration file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultFileName, "Configuration file")

	root.AddCommand(
		newTreeCmd(opts),
		newSaveCmd(opts),
		newActionsCmd(opts),
		newLanguagesCmd(opts),
		newGlossaryCmd(opts),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", pagetlai.Name, version)
			if commit != "unknown" && commit != "" {
				fmt.Fprintf(out, "  commit:  %s\n", commit)
			}
			if buildDate != "unknown" && buildDate != "" {
				fmt.Fprintf(out, "  built:   %s\n", buildDate)
			}
		},
	}
}

func newTreeCmd(opts *rootOptions) *cobra.Command {
	var (
		contentPath   string
		rootID        string
		includeHidden bool
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Translate a page and all of its subpages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			tree, err := content.Load(contentPath)
			if err != nil {
				return err
			}
			page, err := findPage(tree, rootID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			logOut := out
			if jsonOutput {
				logOut = io.Discard
			}

			report, runErr := a.translator.TranslatePageTree(cmd.Context(), page, a.cfg.Settings(), includeHidden, logOut)
			if jsonOutput {
				if err := writeJSON(out, newReportOutput(report)); err != nil {
					return err
				}
				return runErr
			}

			printReport(out, report)
			return runErr
		},
	}

	cmd.Flags().StringVar(&contentPath, "content", "", "Page tree file (required)")
	cmd.Flags().StringVar(&rootID, "root", "", "Page to start from (default: the tree root)")
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", true, "Translate hidden pages too (use --include-hidden=false to skip them)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

func newSaveCmd(opts *rootOptions) *cobra.Command {
	var (
		contentPath  string
		pageID       string
		action       string
		changed      string
		previousPath string
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Translate a page the way a save from the page editor does",
		Long: `save runs the interactive translation of one page. --action takes a
save action value as listed by the actions command. With write mode
"changed", the changed fields come from --changed or from comparing the
page against a previous revision of the tree given with --previous.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			tree, err := content.Load(contentPath)
			if err != nil {
				return err
			}
			page, err := findPage(tree, pageID)
			if err != nil {
				return err
			}

			settings := a.cfg.Settings()
			trigger := pagetlai.Trigger{
				Action:       action,
				Actor:        cliActor{},
				LastModified: page.Modified(),
			}
			if force {
				trigger.LastModified = time.Time{}
			}

			switch {
			case changed != "":
				trigger.ChangedFields = splitList(changed)
			case previousPath != "":
				previous, err := content.Load(previousPath)
				if err != nil {
					return err
				}
				before, _ := previous.Find(page.ID())
				var record *content.Record
				if before != nil {
					record = &before.Record
				}
				source := pagetlai.ResolvePolicy(settings, pagetlai.Trigger{}).Source()
				trigger.ChangedFields = content.ChangedFields(record, &page.Record, source.ID)
			}

			report, err := a.translator.SaveAndTranslate(cmd.Context(), page, settings, trigger)
			out := cmd.OutOrStdout()
			if err != nil {
				var throttled *pagetlai.ThrottleError
				if errors.As(err, &throttled) {
					fmt.Fprintln(out, throttled.Error())
					return nil
				}
				return err
			}
			if report == nil {
				fmt.Fprintln(out, "Nothing to translate")
				return nil
			}

			printReport(out, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&contentPath, "content", "", "Page tree file (required)")
	cmd.Flags().StringVar(&pageID, "page", "", "Page to translate (default: the tree root)")
	cmd.Flags().StringVar(&action, "action", pagetlai.SaveActionValue, "Submitted save action")
	cmd.Flags().StringVar(&changed, "changed", "", "Changed fields (comma-separated)")
	cmd.Flags().StringVar(&previousPath, "previous", "", "Previous revision of the page tree")
	cmd.Flags().BoolVar(&force, "force", false, "Ignore the throttle")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

func newActionsCmd(opts *rootOptions) *cobra.Command {
	var (
		contentPath string
		pageID      string
	)

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List the translate actions offered for a page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			tree, err := content.Load(contentPath)
			if err != nil {
				return err
			}
			page, err := findPage(tree, pageID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			actions := a.translator.SaveActions(page, a.cfg.Settings(), cliActor{})
			if len(actions) == 0 {
				fmt.Fprintln(out, "No translate actions")
				return nil
			}
			for _, action := range actions {
				fmt.Fprintf(out, "%-28s %s\n", action.Value, action.Label)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&contentPath, "content", "", "Page tree file (required)")
	cmd.Flags().StringVar(&pageID, "page", "", "Page to inspect (default: the tree root)")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

func newLanguagesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "Show the configured languages and their roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgStore, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			cfg := cfgStore.Config()
			policy := pagetlai.ResolvePolicy(cfg.Settings(), pagetlai.Trigger{})

			targets := make(map[string]bool)
			for _, lang := range policy.Targets() {
				targets[lang.ID] = true
			}

			out := cmd.OutOrStdout()
			for _, lang := range policy.Languages() {
				role := "excluded"
				switch {
				case lang.ID == policy.Source().ID:
					role = "source"
				case targets[lang.ID]:
					role = "target"
				}
				code := lang.Code
				if code == "" {
					code = "-"
				}
				fmt.Fprintf(out, "%-12s %-8s %-10s %s\n", lang.ID, code, role, pagetlai.GetLanguageName(code))
			}
			return nil
		},
	}
}

func newGlossaryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glossary",
		Short: "Manage the backend glossary",
	}

	cmd.AddCommand(newGlossarySyncCmd(opts), newGlossaryListCmd(opts))
	return cmd
}

func newGlossarySyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push edited language glossaries to the glossary store",
		Long: `sync provisions the glossary if needed and rebuilds the dictionary of
every language whose glossary text changed since the last sync.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			return syncGlossaries(cmd.Context(), a, cmd.OutOrStdout())
		},
	}
}

func syncGlossaries(ctx context.Context, a *app, out io.Writer) error {
	policy := pagetlai.ResolvePolicy(a.cfg.Settings(), pagetlai.Trigger{})
	source := policy.Source()

	info, err := a.glossaries.Ensure(ctx, source, policy.Languages())
	if err != nil {
		a.logger.Warn("glossary provisioning reported errors", "error", err)
	}
	if info == nil {
		fmt.Fprintln(out, "No glossary provisioned")
		return err
	}

	for _, lang := range policy.Languages() {
		if lang.ID == source.ID || lang.Code == "" {
			continue
		}

		hash := pagetlai.HashText(lang.Glossary)
		if a.cfgStore.GlossaryHash(lang.ID) == hash {
			fmt.Fprintf(out, "%-12s unchanged\n", lang.ID)
			continue
		}

		if err := a.glossaries.RebuildDictionary(ctx, info, lang.Glossary, source.Code, lang.Code); err != nil {
			fmt.Fprintf(out, "%-12s failed: %v\n", lang.ID, err)
			continue
		}
		if err := a.cfgStore.SetGlossaryHash(lang.ID, hash); err != nil {
			return err
		}
		fmt.Fprintf(out, "%-12s synced (%d entries)\n", lang.ID, len(pagetlai.ParseGlossary(lang.Glossary)))
	}
	return nil
}

func newGlossaryListCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List glossaries known to the glossary store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			infos, err := a.glossaries.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, infos)
			}
			if len(infos) == 0 {
				fmt.Fprintln(out, "No glossaries")
				return nil
			}
			for _, info := range infos {
				fmt.Fprintf(out, "%s %s (%d dictionaries)\n", info.ID, info.Name, len(info.Dictionaries))
				for _, d := range info.Dictionaries {
					fmt.Fprintf(out, "  %s: %d entries\n", pagetlai.DictionaryKey(d.SourceLocale, d.TargetLocale), d.EntryCount)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// cliActor is the operator running the command. It holds every permission.
type cliActor struct{}

func (cliActor) HasPermission(string) bool { return true }

func findPage(tree *content.Tree, id string) (*content.Page, error) {
	if id == "" {
		return tree.Root(), nil
	}
	page, ok := tree.Find(id)
	if !ok {
		return nil, fmt.Errorf("page %q not found", id)
	}
	return page, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func printReport(out io.Writer, report *pagetlai.Report) {
	fmt.Fprintln(out, report.Summary())
	if summary := report.ErrorSummary(); summary != "" {
		fmt.Fprintln(out, summary)
	}
}

type reportOutput struct {
	Translated int      `json:"translated"`
	Labels     []string `json:"labels"`
	Errors     []string `json:"errors,omitempty"`
	Summary    string   `json:"summary"`
}

func newReportOutput(report *pagetlai.Report) reportOutput {
	return reportOutput{
		Translated: report.TranslatedCount(),
		Labels:     report.Labels(),
		Errors:     report.Errors(),
		Summary:    report.Summary(),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
