package controllers

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/workspacedeps/config"
	"github.com/rios0rios0/workspacedeps/internal/domain/commands"
	"github.com/rios0rios0/workspacedeps/internal/domain/entities"
	"github.com/rios0rios0/workspacedeps/internal/output"
	"github.com/rios0rios0/workspacedeps/internal/resolver"
)

// resolveOptions merges the configuration file with the CLI flags into the
// options every analysis run consumes. Flags win over file values.
func resolveOptions(cmd *cobra.Command, args []string) (commands.AnalysisOptions, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return commands.AnalysisOptions{}, err
	}

	opts := commands.AnalysisOptions{
		WorkspacePath:  ".",
		Exclude:        cfg.Exclude,
		ExcludeMembers: cfg.ExcludeMembers,
		MinMembers:     cfg.MinMembers,
	}
	if len(args) > 0 {
		opts.WorkspacePath = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("exclude") {
		opts.Exclude, _ = flags.GetStringSlice("exclude")
	}
	if flags.Changed("exclude-members") {
		opts.ExcludeMembers, _ = flags.GetStringSlice("exclude-members")
	}
	if flags.Changed("min-members") {
		opts.MinMembers, _ = flags.GetInt("min-members")
	}
	if opts.MinMembers < 1 {
		return commands.AnalysisOptions{}, fmt.Errorf(
			"--min-members must be a positive integer, got %d", opts.MinMembers,
		)
	}

	rawStrategy := cfg.VersionResolution
	if flags.Changed("version-resolution") {
		rawStrategy, _ = flags.GetString("version-resolution")
	}
	opts.Strategy, err = resolver.ParseStrategy(rawStrategy)
	if err != nil {
		return commands.AnalysisOptions{}, err
	}

	rawFormat := cfg.Format
	if flags.Changed("format") {
		rawFormat, _ = flags.GetString("format")
	}
	opts.Format, err = output.ParseFormat(rawFormat)
	if err != nil {
		return commands.AnalysisOptions{}, err
	}

	opts.Sections = resolveSections(cmd, cfg)
	opts.Verbose, _ = flags.GetBool("verbose")
	return opts, nil
}

// loadConfig loads the file named by --config, or the first file found in
// the standard locations, or the defaults when there is none.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}

	path, err := config.FindConfigFile()
	if err != nil {
		return config.Default(), nil
	}

	logger.Debugf("Using config file %s", path)
	return config.Load(path)
}

// resolveSections applies the --no-* flags on top of the file settings.
func resolveSections(cmd *cobra.Command, cfg *config.Config) []entities.Section {
	enabled := func(v *bool) bool { return v == nil || *v }
	process := map[entities.Section]bool{
		entities.SectionDependencies:      enabled(cfg.Sections.Dependencies),
		entities.SectionDevDependencies:   enabled(cfg.Sections.DevDependencies),
		entities.SectionBuildDependencies: enabled(cfg.Sections.BuildDependencies),
	}

	flags := cmd.Flags()
	if skip, _ := flags.GetBool("no-dependencies"); skip {
		process[entities.SectionDependencies] = false
	}
	if skip, _ := flags.GetBool("no-dev-dependencies"); skip {
		process[entities.SectionDevDependencies] = false
	}
	if skip, _ := flags.GetBool("no-build-dependencies"); skip {
		process[entities.SectionBuildDependencies] = false
	}

	var sections []entities.Section
	for _, section := range entities.AllSections() {
		if process[section] {
			sections = append(sections, section)
		}
	}
	return sections
}
