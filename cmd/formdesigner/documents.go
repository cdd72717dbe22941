package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdesigner/pkg/designdoc"
	"github.com/goliatone/go-formdesigner/pkg/export"
	"github.com/goliatone/go-formdesigner/pkg/model"
	"github.com/goliatone/go-formdesigner/pkg/orchestrator"
	"github.com/goliatone/go-formdesigner/pkg/render"
	"github.com/goliatone/go-formdesigner/pkg/renderers/tui"
	"github.com/goliatone/go-formdesigner/pkg/shell"
	"github.com/goliatone/go-formdesigner/pkg/theming"
)

var errDesignRequired = errors.New("--design is required")

func newRenderCmd(a *app) *cobra.Command {
	var (
		designPath string
		mode       string
		selected   string
		outPath    string
		page       bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a design document as HTML",
		Example: `  formdesigner render --design contact.yaml --mode preview --page --out contact.html
  formdesigner render --design contact.yaml --mode properties --selected email`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			design, err := a.loadDesign(ctx, designPath)
			if err != nil {
				return err
			}
			viewMode := model.ParseMode(mode)
			if viewMode == model.ModeProperties && strings.TrimSpace(selected) == "" {
				return errors.New("--selected is required in properties mode")
			}

			catalog, err := theming.NewCatalog(a.cfg.Theme.Default, a.cfg.Theme.Variant, theming.DefaultManifest())
			if err != nil {
				return err
			}
			selection, err := catalog.Select(a.cfg.Theme.Default, a.cfg.Theme.Variant)
			if err != nil {
				return err
			}
			themeCfg := theming.RendererConfig(selection, nil)

			orch := orchestrator.New(orchestrator.WithElements(a.elements))
			out, err := orch.Generate(ctx, orchestrator.Request{
				Design: design,
				RenderOptions: render.RenderOptions{
					Mode:       viewMode,
					SelectedID: selected,
					Theme:      themeCfg,
				},
			})
			if err != nil {
				return err
			}

			if page {
				sh, err := shell.New(shell.WithThemes(catalog))
				if err != nil {
					return err
				}
				ctx = theming.WithResolution(ctx, theming.Resolution{Selection: selection, Config: themeCfg})
				html, err := sh.RenderPage(ctx, shell.Page{Title: design.Name, Body: string(out)})
				if err != nil {
					return err
				}
				out = []byte(html)
			}
			return a.write(cmd, outPath, out)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&designPath, "design", "d", "", "design document to render")
	flags.StringVar(&mode, "mode", string(model.ModeDesigner), "view to render (designer, preview, properties)")
	flags.StringVar(&selected, "selected", "", "element whose properties panel is rendered")
	flags.StringVarP(&outPath, "out", "o", "", "output file (stdout if empty)")
	flags.BoolVar(&page, "page", false, "wrap the output in the full HTML layout")
	flags.String("theme", "", "theme name")
	flags.String("variant", "", "theme variant (light, dark, system)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		designPath string
		outPath    string
		opts       export.Options
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a design as an OpenAPI 3 document describing its submission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			design, err := a.loadDesign(ctx, designPath)
			if err != nil {
				return err
			}
			form, err := orchestrator.New(orchestrator.WithElements(a.elements)).Form(design)
			if err != nil {
				return err
			}
			doc, err := export.Document(ctx, form, opts)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encode document: %w", err)
			}
			return a.write(cmd, outPath, append(out, '\n'))
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&designPath, "design", "d", "", "design document to export")
	flags.StringVarP(&outPath, "out", "o", "", "output file (stdout if empty)")
	flags.StringVar(&opts.Title, "title", "", "document title (defaults to the design name)")
	flags.StringVar(&opts.Version, "api-version", "", "document version")
	flags.StringVar(&opts.Path, "path", "", "submission endpoint path")
	return cmd
}

func newFillCmd(a *app) *cobra.Command {
	var (
		designPath string
		outPath    string
		format     string
	)
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill in a designed form from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			outputFormat := tui.OutputFormat(strings.ToLower(strings.TrimSpace(format)))
			switch outputFormat {
			case tui.OutputFormatJSON, tui.OutputFormatFormURLEncoded, tui.OutputFormatPrettyText:
			default:
				return fmt.Errorf("unknown format %q", format)
			}

			design, err := a.loadDesign(ctx, designPath)
			if err != nil {
				return err
			}

			options := []tui.Option{tui.WithBuilder(a.elements), tui.WithOutputFormat(outputFormat)}
			if a.driver != nil {
				options = append(options, tui.WithPromptDriver(a.driver))
			}
			terminal, err := tui.New(options...)
			if err != nil {
				return err
			}
			renderers := render.NewRegistry()
			if err := renderers.Register(terminal); err != nil {
				return err
			}

			orch := orchestrator.New(
				orchestrator.WithElements(a.elements),
				orchestrator.WithRegistry(renderers),
				orchestrator.WithDefaultRenderer(terminal.Name()),
			)
			out, err := orch.Generate(ctx, orchestrator.Request{Design: design})
			if err != nil {
				return err
			}
			return a.write(cmd, outPath, out)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&designPath, "design", "d", "", "design document to fill in")
	flags.StringVarP(&outPath, "out", "o", "", "output file (stdout if empty)")
	flags.StringVar(&format, "format", string(tui.OutputFormatJSON), "answer format (json, form, pretty)")
	return cmd
}

type typeInfo struct {
	Type       model.ElementType `json:"type"`
	Label      string            `json:"label"`
	Properties []string          `json:"properties"`
}

func newTypesCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the registered element types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptors := a.elements.Descriptors()
			infos := make([]typeInfo, 0, len(descriptors))
			for _, descriptor := range descriptors {
				info := typeInfo{Type: descriptor.Type, Label: descriptor.DesignerButton.Label}
				for _, property := range descriptor.PropertyList {
					info.Properties = append(info.Properties, property.Name)
				}
				infos = append(infos, info)
			}

			if asJSON {
				out, err := json.MarshalIndent(infos, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tLABEL\tPROPERTIES")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Type, info.Label, strings.Join(info.Properties, ", "))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file or pattern>...",
		Short: "Validate design documents",
		Long: `Check decodes each design document and verifies its element IDs and types.
Arguments may be doublestar patterns such as "designs/**/*.yaml".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			failed := 0
			for _, arg := range args {
				results, err := a.checkArg(ctx, arg)
				if err != nil {
					return err
				}
				for _, result := range results {
					if result.err != nil {
						failed++
						fmt.Fprintf(out, "FAIL %s: %v\n", result.name, result.err)
						continue
					}
					fmt.Fprintf(out, "ok   %s (%d elements)\n", result.name, result.elements)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d invalid design document(s)", failed)
			}
			return nil
		},
	}
}

type checkResult struct {
	name     string
	elements int
	err      error
}

func (a *app) checkArg(ctx context.Context, arg string) ([]checkResult, error) {
	if !strings.ContainsAny(arg, "*?[{") {
		design, err := a.loadDesign(ctx, arg)
		return []checkResult{{name: arg, elements: len(design.Elements), err: err}}, nil
	}

	base, pattern := doublestar.SplitPattern(filepath.ToSlash(arg))
	loader := designdoc.New(
		designdoc.WithFileSystem(os.DirFS(base)),
		designdoc.WithTypeChecker(a.elements),
	)
	names, err := loader.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no documents match %q", arg)
	}

	results := make([]checkResult, 0, len(names))
	for _, name := range names {
		design, err := loader.Load(ctx, designdoc.SourceFromFS(name))
		results = append(results, checkResult{name: path.Join(base, name), elements: len(design.Elements), err: err})
	}
	return results, nil
}

func (a *app) loadDesign(ctx context.Context, file string) (model.Design, error) {
	if strings.TrimSpace(file) == "" {
		return model.Design{}, errDesignRequired
	}
	loader := designdoc.New(designdoc.WithTypeChecker(a.elements))
	design, err := loader.Load(ctx, designdoc.SourceFromFile(file))
	if err != nil {
		return model.Design{}, err
	}
	a.logger.Debug("design loaded", zap.String("path", file), zap.Int("elements", len(design.Elements)))
	return design, nil
}

// write sends out to file, or to the command output when file is empty.
func (a *app) write(cmd *cobra.Command, file string, out []byte) error {
	if file == "" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(file, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	a.logger.Info("output written", zap.String("path", file), zap.Int("bytes", len(out)))
	return nil
}
