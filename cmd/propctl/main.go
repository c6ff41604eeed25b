package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/propbind/internal/catalog"
	"github.com/eugenenazirov/propbind/internal/configuration"
	"github.com/eugenenazirov/propbind/internal/logging"
	"github.com/eugenenazirov/propbind/internal/properties"
	"github.com/eugenenazirov/propbind/internal/settings"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "propctl: %v\n", err)
		os.Exit(1)
	}
}

type command func(ctx context.Context, cfg *configuration.Configuration, out io.Writer) error

func run(ctx context.Context, args []string, out io.Writer) error {
	app := kingpin.New("propctl", "Inspect the resolved configuration the server would see")
	configFiles := app.Flag("config", "Path to a .properties or YAML file, or a directory of them (repeatable)").Strings()
	set := app.Flag("set", "Override a property (repeatable)").StringMap()
	logLevel := app.Flag("log-level", "Log level for diagnostics on stderr").Default("warn").String()

	commands := map[string]command{}

	dump := app.Command("dump", "Print every resolved property with secrets masked").Default()
	dumpFormat := dump.Flag("format", "Output format").Default("properties").Enum("properties", "yaml")
	commands[dump.FullCommand()] = func(_ context.Context, cfg *configuration.Configuration, out io.Writer) error {
		if *dumpFormat == "yaml" {
			return writeYAML(out, cfg.Masked())
		}
		_, err := io.WriteString(out, cfg.String())
		return err
	}

	get := app.Command("get", "Print the value of a single property")
	getKey := get.Arg("key", "Property key").Required().String()
	var hasDefault bool
	getDefault := get.Flag("default", "Value printed when the key is absent").IsSetByUser(&hasDefault).String()
	commands[get.FullCommand()] = func(_ context.Context, cfg *configuration.Configuration, out io.Writer) error {
		value, ok := cfg.Lookup(*getKey)
		if !ok {
			if !hasDefault {
				return fmt.Errorf("property %q is not set", *getKey)
			}
			value = *getDefault
		}
		_, err := fmt.Fprintln(out, value)
		return err
	}

	keys := app.Command("keys", "List property keys, optionally below a prefix")
	keysPrefix := keys.Arg("prefix", "Key prefix").String()
	commands[keys.FullCommand()] = func(_ context.Context, cfg *configuration.Configuration, out io.Writer) error {
		for _, key := range cfg.KeysWithPrefix(*keysPrefix) {
			if _, err := fmt.Fprintln(out, key); err != nil {
				return err
			}
		}
		return nil
	}

	subset := app.Command("subset", "Print the properties below a prefix with the prefix removed")
	subsetPrefix := subset.Arg("prefix", "Key prefix").Required().String()
	commands[subset.FullCommand()] = func(_ context.Context, cfg *configuration.Configuration, out io.Writer) error {
		return writeYAML(out, properties.Subset(cfg.Masked(), *subsetPrefix))
	}

	group := app.Command("group", "Print the properties below a prefix grouped by their next key segment")
	groupPrefix := group.Arg("prefix", "Key prefix").Required().String()
	commands[group.FullCommand()] = func(_ context.Context, cfg *configuration.Configuration, out io.Writer) error {
		return writeYAML(out, properties.Group(cfg.Masked(), *groupPrefix))
	}

	info := app.Command("info", "Describe the configuration sources that were read")
	commands[info.FullCommand()] = func(_ context.Context, cfg *configuration.Configuration, out io.Writer) error {
		return writeYAML(out, cfg.ConfigurationInfo())
	}

	snapshot := app.Command("snapshot", "Print the client configuration snapshot")
	snapshotLocale := snapshot.Flag("locale", "Locale of the message bundle").String()
	snapshotWorkspace := snapshot.Flag("workspace", "Workspace identifier").String()
	commands[snapshot.FullCommand()] = func(ctx context.Context, cfg *configuration.Configuration, out io.Writer) error {
		tag := language.Und
		if *snapshotLocale != "" {
			parsed, err := language.Parse(*snapshotLocale)
			if err != nil {
				return fmt.Errorf("parse locale: %w", err)
			}
			tag = parsed
		}
		cat, err := catalog.New(cfg)
		if err != nil {
			return err
		}
		cat.Install(cfg)
		snap, err := cfg.ClientSnapshot(ctx, tag, *snapshotWorkspace)
		if err != nil {
			return err
		}
		return writeYAML(out, snap)
	}

	selected, err := app.Parse(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(*logLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	boot, err := settings.LoadBootstrap()
	if err != nil {
		return err
	}
	cfg, err := settings.Open(ctx, boot, &settings.CLIOverrides{
		ConfigFiles: *configFiles,
		Set:         *set,
	}, logger)
	if err != nil {
		return err
	}

	logger.Debug("running command", zap.String("command", selected), zap.Int("keys", cfg.Len()))
	return commands[selected](ctx, cfg, out)
}

func writeYAML(out io.Writer, value any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
