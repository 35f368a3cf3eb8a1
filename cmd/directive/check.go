package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/directive/internal/evaluation"
	"github.com/JaimeStill/directive/pkg/lexicon"
)

var (
	errScenariosFailed = errors.New("scenarios failed")
	errNoScenarios     = errors.New("no scenario files matched")
	errInvalidFormat   = errors.New("unsupported output format")
)

type checkOptions struct {
	scenarios []string
	lexicon   string
	format    string
	verbose   bool
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run scenario files through the evaluation engine",
		Long: "Loads each scenario (instructions, a conversation context, and expectations),\n" +
			"evaluates it offline, and reports mismatches. Exits 1 when any scenario fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, time.Now())
		},
	}

	cmd.Flags().StringSliceVarP(&opts.scenarios, "scenario", "s", nil, "Scenario file or glob (repeatable)")
	cmd.Flags().StringVar(&opts.lexicon, "lexicon", "", "Contradiction lexicon YAML (default built-in)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log engine warnings to stderr")
	cmd.MarkFlagRequired("scenario")

	return cmd
}

func runCheck(stdout, stderr io.Writer, opts *checkOptions, now time.Time) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("%w: %q", errInvalidFormat, opts.format)
	}

	files, err := expand(opts.scenarios)
	if err != nil {
		return err
	}

	table, err := loadLexicon(opts.lexicon)
	if err != nil {
		return err
	}

	logOut := io.Discard
	if opts.verbose {
		logOut = stderr
	}
	engine := evaluation.NewEngine(lexicon.NewHolder(table), slog.New(slog.NewTextHandler(logOut, nil)))

	reports := make([]Report, 0, len(files))
	for _, file := range files {
		s, err := loadScenario(file)
		if err != nil {
			return err
		}
		report, err := s.run(engine, file, now)
		if err != nil {
			return err
		}
		reports = append(reports, report)
	}

	if err := writeReports(stdout, opts.format, reports); err != nil {
		return err
	}

	if slices.ContainsFunc(reports, func(r Report) bool { return !r.Passed }) {
		return errScenariosFailed
	}
	return nil
}

// expand resolves globs in order, dropping duplicates.
func expand(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad scenario pattern %q: %w", p, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", errNoScenarios, strings.Join(patterns, ", "))
	}
	return files, nil
}

func loadLexicon(path string) (*lexicon.Table, error) {
	if path == "" {
		return lexicon.Default(), nil
	}
	return lexicon.Load(path)
}

func writeReports(w io.Writer, format string, reports []Report) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	passed := 0
	for _, r := range reports {
		if r.Passed {
			passed++
			fmt.Fprintf(w, "PASS  %s (%s)\n", r.Name, r.File)
			continue
		}
		fmt.Fprintf(w, "FAIL  %s (%s)\n", r.Name, r.File)
		for _, f := range r.Failures {
			fmt.Fprintf(w, "      %s\n", f)
		}
	}
	fmt.Fprintf(w, "\n%d/%d scenarios passed\n", passed, len(reports))
	return nil
}
