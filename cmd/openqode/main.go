// Command openqode is the local CLI for the artifact pipeline: build,
// modify, and undo projects on disk without running the gateway.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/builder"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/filestore"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/generator"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/history"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/project"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/snapshot"
)

var rootCmd = &cobra.Command{
	Use:   "openqode",
	Short: "Generate and maintain web artifacts with guarded LLM edits",
	Long: `openqode builds web pages from natural-language requests and keeps
them consistent across edits: every change runs through intent
classification, a patch engine, drift guards, and quality gates before it
reaches disk.`,
	SilenceUsage: true,
}

var buildCmd = &cobra.Command{
	Use:   "build <project-id> <request>",
	Short: "Generate a project from scratch (or regenerate it)",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runBuild,
}

var modifyCmd = &cobra.Command{
	Use:   "modify <project-id> <request>",
	Short: "Apply a guarded, patch-based change to an existing project",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runModify,
}

var undoCmd = &cobra.Command{
	Use:   "undo <project-id>",
	Short: "Roll the project back one snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runUndo,
}

var historyCmd = &cobra.Command{
	Use:   "history <project-id>",
	Short: "Show the interaction history",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots <project-id>",
	Short: "List the undo stack",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshots,
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "data", "root directory for project files")
	rootCmd.PersistentFlags().Bool("json", false, "print results as JSON")
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(modifyCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(snapshotsCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type env struct {
	builder  *builder.Builder
	projects project.Store
	histLog  *history.Log
	snaps    *snapshot.Store
	gen      generator.Client
}

func newEnv(cmd *cobra.Command) (*env, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	files, err := filestore.NewDiskStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}
	projects := project.NewFromEnv(dataDir + "/project_states.json")
	snaps := snapshot.NewStore(files)
	histLog := history.NewLog(files)
	archive := history.NewArchive(files, nil, nil)

	var gen generator.Client
	if strings.TrimSpace(os.Getenv("GEMINI_API_KEY")) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	gc, err := generator.NewGeminiClient(cmd.Context(), os.Getenv("GENERATOR_MODEL"))
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}
	gen = generator.Chain(gc, generator.Retry(3, 500*time.Millisecond))

	return &env{
		builder:  builder.New(gen, files, projects, snaps, histLog, archive, nil),
		projects: projects,
		histLog:  histLog,
		snaps:    snaps,
		gen:      gen,
	}, nil
}

// newReadEnv skips the generator so read-only commands work without a key.
func newReadEnv(cmd *cobra.Command) (*env, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	files, err := filestore.NewDiskStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}
	return &env{
		projects: project.NewFromEnv(dataDir + "/project_states.json"),
		histLog:  history.NewLog(files),
		snaps:    snapshot.NewStore(files),
	}, nil
}

func (e *env) close() {
	if e.gen != nil {
		_ = e.gen.Close()
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	projectID := args[0]
	request := strings.Join(args[1:], " ")
	res, err := e.builder.Build(cmd.Context(), projectID, request)
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, res)
	}
	if res.QAFailed {
		fmt.Fprintf(cmd.OutOrStdout(), "build %s rejected after %d attempts:\n", res.BuildID, builder.MaxBuildAttempts)
		for _, msg := range res.QAReport.Errors() {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", msg)
		}
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "build %s published %d file(s): %s\n", res.BuildID, len(res.Files), strings.Join(res.Files.Names(), ", "))
	return nil
}

func runModify(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	projectID := args[0]
	request := strings.Join(args[1:], " ")
	res, err := e.builder.Modify(cmd.Context(), projectID, request)
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applied %d patch(es), skipped %d (mode %s, dom drift %d%%)\n",
		res.AppliedPatches, res.SkippedPatches, res.Mode, res.Guard.DOMDrift)
	return nil
}

func runUndo(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	files, err := filestore.NewDiskStore(dataDir)
	if err != nil {
		return err
	}
	projects := project.NewFromEnv(dataDir + "/project_states.json")
	b := builder.New(nil, files, projects, snapshot.NewStore(files), history.NewLog(files), history.NewArchive(files, nil, nil), nil)

	meta, err := b.Undo(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if meta == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to undo")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "restored snapshot %s (%s)\n", meta.ID, meta.Description)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	e, err := newReadEnv(cmd)
	if err != nil {
		return err
	}
	records, err := e.histLog.Records(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, records)
	}
	for _, r := range records {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-13s drift=%d%%  %s\n",
			r.Timestamp.Format(time.RFC3339), r.Mode, r.DOMDriftPercent, r.WhatChanged)
	}
	return nil
}

func runSnapshots(cmd *cobra.Command, args []string) error {
	e, err := newReadEnv(cmd)
	if err != nil {
		return err
	}
	metas, err := e.snaps.List(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, metas)
	}
	for _, m := range metas {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d file(s)  %s\n",
			m.ID, m.Timestamp.Format(time.RFC3339), len(m.Files), m.Description)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
