package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"resume-builder/internal/editor"
	"resume-builder/internal/locale"
	"resume-builder/internal/render"
)

var (
	setJSON        bool
	coverageJDFile string
	previewTpl     string
	previewOut     string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current draft as JSON",
	Args:  cobra.NoArgs,
	RunE: withWorkspace(func(cmd *cobra.Command, w *workspace, _ []string) error {
		return printJSON(cmd, w.session.Live())
	}),
}

var setCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set one field of the draft",
	Long: `Sets the field addressed by a dot separated path, for example
contact.full_name or experience.0.bullets.1. The value is taken as a
string unless --json is given.`,
	Args: cobra.ExactArgs(2),
	RunE: withWorkspace(func(cmd *cobra.Command, w *workspace, args []string) error {
		value, err := parseValue(args[1], setJSON)
		if err != nil {
			return err
		}
		if _, err := w.session.Apply(cmd.Context(), args[0], value); err != nil {
			return err
		}
		cmd.Printf("updated %s\n", args[0])
		return nil
	}),
}

var appendCmd = &cobra.Command{
	Use:   "append <section> <json>",
	Short: "Append an entry to a section",
	Args:  cobra.ExactArgs(2),
	RunE: withWorkspace(func(cmd *cobra.Command, w *workspace, args []string) error {
		item, err := parseValue(args[1], true)
		if err != nil {
			return err
		}
		if _, err := w.session.Append(cmd.Context(), args[0], item); err != nil {
			return err
		}
		cmd.Printf("appended to %s\n", args[0])
		return nil
	}),
}

var removeCmd = &cobra.Command{
	Use:   "remove <section> <index>",
	Short: "Remove an entry from a section",
	Args:  cobra.ExactArgs(2),
	RunE: withWorkspace(func(cmd *cobra.Command, w *workspace, args []string) error {
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("index %q is not a number", args[1])
		}
		if _, err := w.session.Remove(cmd.Context(), args[0], idx); err != nil {
			return err
		}
		cmd.Printf("removed %s.%d\n", args[0], idx)
		return nil
	}),
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save and score the draft",
	Long: `Saves the draft and prints its ATS score. With --remote the draft is
sent to the resume service and scored there; the confirmed id is kept in
the local draft so the next save overwrites the same record.`,
	Args: cobra.NoArgs,
	RunE: withWorkspace(func(cmd *cobra.Command, w *workspace, _ []string) error {
		ctx := cmd.Context()
		if remoteURL != "" {
			w.session.SetMode(editor.ModeRemote)
		}
		res, err := w.session.Save(ctx)
		var nerr *editor.NetworkError
		if errors.As(err, &nerr) {
			return fmt.Errorf("%w (the draft is unchanged locally)", err)
		}
		if err != nil {
			return err
		}
		if w.session.Mode() == editor.ModeRemote {
			if err := w.store.Save(ctx, w.session.Live()); err != nil {
				return fmt.Errorf("remember remote id: %w", err)
			}
		}
		return printJSON(cmd, res)
	}),
}

var coverageCmd = &cobra.Command{
	Use:   "coverage [keyword...]",
	Short: "Check the draft against job-description keywords",
	RunE: withWorkspace(func(cmd *cobra.Command, w *workspace, args []string) error {
		ctx := cmd.Context()
		if remoteURL != "" {
			w.session.SetMode(editor.ModeRemote)
		}
		if coverageJDFile != "" {
			text, err := readInput(cmd, coverageJDFile)
			if err != nil {
				return err
			}
			if _, err := w.session.ParseJobDescription(ctx, text); err != nil {
				return err
			}
		}
		cov, err := w.session.CheckCoverage(ctx, args)
		if err != nil {
			return err
		}
		return printJSON(cmd, cov)
	}),
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the draft to HTML",
	Args:  cobra.NoArgs,
	RunE: withWorkspace(func(cmd *cobra.Command, w *workspace, _ []string) error {
		doc := w.session.Live()
		preset, _ := locale.Embedded().Resolve(doc.Locale)
		out, err := render.Render(doc, previewTpl, render.WithLabels(preset.SectionLabels()))
		if err != nil {
			return err
		}
		if previewOut == "" || previewOut == "-" {
			_, err = io.WriteString(cmd.OutOrStdout(), out.HTML)
			return err
		}
		if err := os.WriteFile(previewOut, []byte(out.HTML), 0o644); err != nil {
			return err
		}
		cmd.Printf("wrote %s (%s)\n", previewOut, out.Template)
		return nil
	}),
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the local draft",
	Args:  cobra.NoArgs,
	RunE: withWorkspace(func(cmd *cobra.Command, w *workspace, _ []string) error {
		if err := w.store.Clear(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("local draft cleared")
		return nil
	}),
}

func init() {
	setCmd.Flags().BoolVar(&setJSON, "json", false, "parse the value as JSON")
	coverageCmd.Flags().StringVar(&coverageJDFile, "jd", "", "job description file to extract keywords from (- for stdin)")
	previewCmd.Flags().StringVarP(&previewTpl, "template", "t", render.Modern, "template: modern, classic or minimal")
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(showCmd, setCmd, appendCmd, removeCmd, saveCmd, coverageCmd, previewCmd, clearCmd)
}

func parseValue(raw string, asJSON bool) (any, error) {
	if !asJSON {
		return raw, nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("value is not valid JSON: %w", err)
	}
	return v, nil
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
