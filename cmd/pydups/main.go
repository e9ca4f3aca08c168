package main

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jward/pydups"
	"github.com/jward/pydups/scripts"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

const rootLongDescription = `pydups finds Python functions that are structurally identical once their
own name and parameter names are abstracted away.

The path may be a single file or a directory, which is walked recursively
for .py files. Any file that fails to parse aborts the run.

Exclusion rules are Risor scripts. Without --scripts-dir they resolve
against the built-in rules: tests.risor, dunder.risor, properties.risor.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pydups <path>",
		Short:         "Find duplicate Python functions",
		Long:          rootLongDescription,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateFormat(viper.GetString(formatKey))
		},
		RunE: runScan,
	}
	configureFlags(cmd)
	return cmd
}

// configureFlags declares the flags with static defaults. Config file and
// environment values reach them through the viper bindings.
func configureFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP(formatFlagName, "f", defaultFormat, "output format: "+formatList())
	bindFlagToConfig(flags.Lookup(formatFlagName), formatKey)

	flags.StringArrayP(excludeFlagName, "x", nil, "skip paths matching regex (can be repeated)")
	bindFlagToConfig(flags.Lookup(excludeFlagName), excludeKey)

	flags.StringArray(excludeScriptFlagName, nil, "Risor exclusion rule script (can be repeated)")
	bindFlagToConfig(flags.Lookup(excludeScriptFlagName), scriptsKey)

	flags.String(scriptsDirFlagName, "", "directory exclusion scripts and their imports resolve against")
	bindFlagToConfig(flags.Lookup(scriptsDirFlagName), scriptsDirKey)

	flags.String(dbFlagName, "", "also export the report to this SQLite database")
	bindFlagToConfig(flags.Lookup(dbFlagName), dbKey)

	flags.Int(keepRunsFlagName, 0, "with --db, keep only the newest N runs (0 keeps all)")
	bindFlagToConfig(flags.Lookup(keepRunsFlagName), keepRunsKey)

	flags.Bool(summaryFlagName, false, "print a per-file summary table to stderr")
	bindFlagToConfig(flags.Lookup(summaryFlagName), summaryKey)

	flags.Bool(diffFlagName, false, "print a diff of each occurrence against the first (text format)")
	bindFlagToConfig(flags.Lookup(diffFlagName), diffKey)

	flags.Bool(noColorFlagName, false, "disable coloured output")
	bindFlagToConfig(flags.Lookup(noColorFlagName), noColorKey)

	flags.String(logFileFlagName, "", "write logs to this file (rotated)")
	bindFlagToConfig(flags.Lookup(logFileFlagName), logFilenameKey)

	flags.BoolP(verboseFlagName, "v", false, "debug logging")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a flag to a viper key so config and env values
// feed it.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

func runScan(cmd *cobra.Command, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	logger, closeLog := configureLogger(stderr, viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
	defer func() {
		if cerr := closeLog(); cerr != nil {
			fmt.Fprintf(stderr, "pydups: closing log file: %v\n", cerr)
		}
	}()

	excludes, err := compileExcludes(stringList(cmd, excludeFlagName, excludeKey))
	if err != nil {
		return err
	}

	opts := []pydups.Option{
		pydups.WithLogger(logger),
		pydups.WithExcludes(excludes...),
	}
	if rules := stringList(cmd, excludeScriptFlagName, scriptsKey); len(rules) > 0 {
		// Script source: --scripts-dir overrides the built-in rules.
		if dir := viper.GetString(scriptsDirKey); dir != "" {
			opts = append(opts, pydups.WithScriptsDir(dir))
		} else {
			opts = append(opts, pydups.WithScriptsFS(scripts.FS))
		}
		opts = append(opts, pydups.WithExclusionScripts(rules...))
	}

	engine, err := pydups.New(opts...)
	if err != nil {
		return err
	}
	report, err := engine.Scan(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if dbPath := viper.GetString(dbKey); dbPath != "" {
		if err := exportReport(stderr, dbPath, report); err != nil {
			return err
		}
	}

	styled := isTTY(stdout) && !viper.GetBool(noColorKey)
	if err := writeReport(stdout, report, viper.GetString(formatKey), styled); err != nil {
		return err
	}
	if viper.GetBool(diffKey) {
		formatDiffs(stdout, report)
	}
	if viper.GetBool(summaryKey) {
		formatSummary(stderr, report)
	}
	return nil
}

// stringList reads a repeatable flag. Explicit flag values are taken as
// given, since viper splits array flags as CSV and regexes may hold commas.
func stringList(cmd *cobra.Command, flagName, key string) []string {
	if cmd.Flags().Changed(flagName) {
		values, err := cmd.Flags().GetStringArray(flagName)
		if err == nil {
			return values
		}
	}
	return viper.GetStringSlice(key)
}

func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func exportReport(w io.Writer, dbPath string, report *pydups.Report) error {
	s, err := pydups.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := pydups.SaveReport(s, report)
	if err != nil {
		return err
	}
	fresh, err := pydups.NewGroups(s, report, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Saved run %d to %s (%d of %d groups new)\n", id, dbPath, fresh, len(report.Groups))

	pruned, err := pydups.PruneRuns(s, viper.GetInt(keepRunsKey))
	if err != nil {
		return err
	}
	if pruned > 0 {
		fmt.Fprintf(w, "Pruned %d old runs\n", pruned)
	}
	return nil
}
