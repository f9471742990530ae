package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"resume-builder/internal/locale"
	"resume-builder/internal/model"
	"resume-builder/internal/render"
)

var renderOutDir string

// renderCmd works on résumé JSON files and never opens the local store.
var renderCmd = &cobra.Command{
	Use:   "render <resume.json>",
	Short: "Render a résumé file with every template",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutDir, "out-dir", "d", ".", "directory for the generated HTML files")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}
	doc, err := model.Decode(raw)
	if err != nil {
		return err
	}
	preset, _ := locale.Embedded().Resolve(doc.Locale)
	if err := os.MkdirAll(renderOutDir, 0o755); err != nil {
		return err
	}

	base := filepath.Base(args[0])
	base = base[:len(base)-len(filepath.Ext(base))]
	for _, tpl := range render.Templates() {
		out, err := render.Render(doc, tpl, render.WithLabels(preset.SectionLabels()))
		if err != nil {
			return fmt.Errorf("render %s: %w", tpl, err)
		}
		name := filepath.Join(renderOutDir, base+"_"+tpl+".html")
		if err := os.WriteFile(name, []byte(out.HTML), 0o644); err != nil {
			return err
		}
		cmd.Printf("wrote %s\n", name)
	}
	return nil
}
