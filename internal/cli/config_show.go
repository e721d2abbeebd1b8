package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/astromedia/internal/config"
	"github.com/mrz1836/astromedia/internal/logging"
)

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect astro configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective configuration. Every value is annotated with its
source:
  - default: built-in default value
  - file: from ~/.astromedia/config.yaml, .astromedia/config.yaml, or --config
  - env: from an ASTRO_* environment variable

Credentials embedded in URLs are masked.

Examples:
  astro config show                # YAML
  astro config show --output json  # JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	})
	root.AddCommand(cmd)
}

// ConfigSource represents where a configuration value came from.
type ConfigSource string

// Configuration value sources.
const (
	SourceDefault ConfigSource = "default"
	SourceFile    ConfigSource = "file"
	SourceEnv     ConfigSource = "env"
)

// ConfigValueWithSource is one configuration value and its source.
type ConfigValueWithSource struct {
	Value  any          `json:"value" yaml:"value"`
	Source ConfigSource `json:"source" yaml:"source"`
}

// AnnotatedConfig maps section to key to annotated value.
type AnnotatedConfig map[string]map[string]ConfigValueWithSource

func runConfigShow(ctx context.Context, w io.Writer, flags *GlobalFlags) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	cfg, err := loadConfig(ctx, flags, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	annotated := buildAnnotatedConfig(cfg, config.DefaultConfig())
	if flags.Output == OutputJSON {
		return encodeJSON(w, annotated)
	}

	data, err := yaml.Marshal(annotated)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// buildAnnotatedConfig walks the yaml-tagged sections of cfg. Durations
// are rendered as strings and sensitive values are masked.
func buildAnnotatedConfig(cfg, defaults *config.Config) AnnotatedConfig {
	annotated := AnnotatedConfig{}

	cv := reflect.ValueOf(cfg).Elem()
	dv := reflect.ValueOf(defaults).Elem()
	for i := range cv.NumField() {
		section := yamlName(cv.Type().Field(i))
		values := make(map[string]ConfigValueWithSource)

		sv, sd := cv.Field(i), dv.Field(i)
		for j := range sv.NumField() {
			key := yamlName(sv.Type().Field(j))
			value := displayValue(sv.Field(j))
			if s, ok := value.(string); ok {
				// *_env_var keys name a variable; only its contents are secret
				if strings.HasSuffix(key, "_env_var") {
					value = logging.FilterSensitiveValue(s)
				} else {
					value = logging.SafeValue(key, s)
				}
			}
			values[key] = ConfigValueWithSource{
				Value:  value,
				Source: sourceOf(section+"."+key, sv.Field(j), sd.Field(j)),
			}
		}
		annotated[section] = values
	}
	return annotated
}

// sourceOf reports env when the ASTRO_ variable for key is set, file when
// the value differs from the default, and default otherwise.
func sourceOf(key string, value, def reflect.Value) ConfigSource {
	envVar := "ASTRO_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if _, ok := os.LookupEnv(envVar); ok {
		return SourceEnv
	}
	if !reflect.DeepEqual(value.Interface(), def.Interface()) {
		return SourceFile
	}
	return SourceDefault
}

func displayValue(v reflect.Value) any {
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return v.Interface()
}

func yamlName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}
