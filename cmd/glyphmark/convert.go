package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"glyphmark/engine"
	"glyphmark/glyph/pdfsource"
	"glyphmark/scripting"

	// Register the default OCR provider.
	_ "glyphmark/ocr/tesseract"
)

var convertFlags struct {
	out      string
	ocr      bool
	language string
	password string

	noTables       bool
	noMath         bool
	noHeaderFooter bool
	noHyphenation  bool
	preserveLayout bool

	html       string
	scriptPath string
	statsOut   bool
}

var convertCmd = &cobra.Command{
	Use:   "convert <pdf>",
	Short: "Convert a PDF to Markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertFlags.out, "output", "o", "", "output file (default: stdout)")
	f.BoolVar(&convertFlags.ocr, "ocr", false, "OCR pages without a text layer")
	f.StringVar(&convertFlags.language, "language", "eng", "OCR language code")
	f.StringVar(&convertFlags.password, "password", "", "password for encrypted documents")
	f.BoolVar(&convertFlags.noTables, "no-tables", false, "disable table detection")
	f.BoolVar(&convertFlags.noMath, "no-math", false, "disable math recognition")
	f.BoolVar(&convertFlags.noHeaderFooter, "no-header-footer-removal", false, "keep repeating headers and footers")
	f.BoolVar(&convertFlags.noHyphenation, "no-hyphenation-fix", false, "keep hyphenation at line breaks")
	f.BoolVar(&convertFlags.preserveLayout, "preserve-layout", false, "preserve vertical whitespace")
	f.StringVar(&convertFlags.html, "html", "", "also write an HTML rendering to this file")
	f.StringVar(&convertFlags.scriptPath, "script", "", "JavaScript transform applied to the final Markdown")
	f.BoolVar(&convertFlags.statsOut, "stats", false, "print document statistics as JSON to stderr")
}

func runConvert(cmd *cobra.Command, args []string) error {
	if err := initConfig(); err != nil {
		return err
	}
	log := newLogger(verbose)

	src, err := pdfsource.Open(args[0], convertFlags.password, log)
	if err != nil {
		return err
	}

	cfg := tableConfig()
	eng := engine.New(engine.Options{
		OCR:                 convertFlags.ocr,
		Languages:           splitLanguages(convertFlags.language),
		Tables:              !convertFlags.noTables,
		Math:                !convertFlags.noMath,
		HeaderFooterRemoval: !convertFlags.noHeaderFooter,
		HyphenationFix:      !convertFlags.noHyphenation,
		PreserveLayout:      convertFlags.preserveLayout,
		TableConfig:         &cfg,
		Logger:              log,
	})

	res, err := eng.Convert(cmd.Context(), src)
	if err != nil {
		return err
	}
	for _, pe := range res.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", pe)
	}
	for i, p := range res.Pages {
		if p.Garble.Recommend {
			fmt.Fprintf(os.Stderr, "warning: page %d looks garbled: %s (%.1f%%)\n",
				i+1, p.Garble.Reason, p.Garble.GarbledPercentage)
		}
	}

	markdown := res.Markdown
	if convertFlags.scriptPath != "" {
		script, err := os.ReadFile(convertFlags.scriptPath)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		markdown, err = scripting.NewEngine().Transform(cmd.Context(), string(script), markdown, res.Stats)
		if err != nil {
			return fmt.Errorf("script: %w", err)
		}
	}

	if err := writeOutput(convertFlags.out, markdown); err != nil {
		return err
	}
	if convertFlags.html != "" {
		html, err := engine.RenderHTML(markdown)
		if err != nil {
			return err
		}
		if err := os.WriteFile(convertFlags.html, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write html: %w", err)
		}
	}
	if convertFlags.statsOut {
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Stats); err != nil {
			return err
		}
	}
	return nil
}

func writeOutput(path, markdown string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprint(os.Stdout, markdown)
		return err
	}
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func splitLanguages(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, l := range strings.Split(s, "+") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
