package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"glyphmark/observability"
	"glyphmark/tables"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "glyphmark",
	Short: "Reconstruct Markdown from positioned PDF text",
	Long: `Glyphmark rebuilds readable Markdown from the positioned glyphs of a
PDF: lines, columns, and blocks are recovered from coordinates, then
classified into prose, headings, lists, code, tables, and math.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./glyphmark.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "debug logging to stderr",
	)
	rootCmd.AddCommand(convertCmd)
}

// initConfig loads the optional config file. Table-detection weights
// live under the "tables" key.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("glyphmark")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.glyphmark")
	}
	viper.SetEnvPrefix("GLYPHMARK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		if cfgFile == "" && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// tableConfig starts from the tuned defaults and applies any overrides
// from the config file.
func tableConfig() tables.Config {
	cfg := tables.DefaultConfig()
	setF := func(key string, dst *float64) {
		if viper.IsSet(key) {
			*dst = viper.GetFloat64(key)
		}
	}
	setI := func(key string, dst *int) {
		if viper.IsSet(key) {
			*dst = viper.GetInt(key)
		}
	}
	setF("tables.row_weight", &cfg.RowWeight)
	setF("tables.col_weight", &cfg.ColWeight)
	setF("tables.short_token_weight", &cfg.ShortTokenWeight)
	setF("tables.numeric_weight", &cfg.NumericWeight)
	setF("tables.bordered_bonus", &cfg.BorderedBonus)
	setF("tables.min_density", &cfg.MinDensity)
	setF("tables.min_score", &cfg.MinScore)
	setI("tables.min_rows", &cfg.MinRows)
	setI("tables.min_cols", &cfg.MinCols)
	setF("tables.numeric_align_ratio", &cfg.NumericAlignRatio)
	return cfg
}

// stderrLogger is the CLI's observability.Logger: one line per entry,
// key=value fields.
type stderrLogger struct {
	debug  bool
	fields []observability.Field
}

func newLogger(debug bool) observability.Logger {
	return &stderrLogger{debug: debug}
}

func (l *stderrLogger) log(level, msg string, fields []observability.Field) {
	fmt.Fprintf(os.Stderr, "%s %s", level, msg)
	for _, f := range append(l.fields, fields...) {
		fmt.Fprintf(os.Stderr, " %s=%v", f.Key(), f.Value())
	}
	fmt.Fprintln(os.Stderr)
}

func (l *stderrLogger) Debug(msg string, fields ...observability.Field) {
	if l.debug {
		l.log("DEBUG", msg, fields)
	}
}

func (l *stderrLogger) Info(msg string, fields ...observability.Field) {
	l.log("INFO", msg, fields)
}

func (l *stderrLogger) Warn(msg string, fields ...observability.Field) {
	l.log("WARN", msg, fields)
}

func (l *stderrLogger) Error(msg string, fields ...observability.Field) {
	l.log("ERROR", msg, fields)
}

func (l *stderrLogger) With(fields ...observability.Field) observability.Logger {
	return &stderrLogger{debug: l.debug, fields: append(append([]observability.Field{}, l.fields...), fields...)}
}
