package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/noiseparams/internal/param"
	"github.com/MeKo-Tech/noiseparams/internal/paramcfg"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "List configured parameters",
	Long:  "Build every declared parameter and print its name and definition.",
	RunE:  runParams,
}

func init() {
	rootCmd.AddCommand(paramsCmd)

	paramsCmd.Flags().Bool("types", false, "List the supported declaration types instead")

	if err := viper.BindPFlag("list.types", paramsCmd.Flags().Lookup("types")); err != nil {
		panic(fmt.Sprintf("failed to bind flag types: %v", err))
	}
}

func runParams(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	out := cmd.OutOrStdout()
	if viper.GetBool("list.types") {
		for _, t := range paramcfg.Types() {
			fmt.Fprintln(out, t)
		}
		return nil
	}

	params, err := loadParams()
	if err != nil {
		return err
	}
	for _, name := range sortedNames(params) {
		fmt.Fprintf(out, "%s\t%s\n", name, params[name])
	}
	return nil
}

// loadParams builds the declarations of the config file and, when set, of
// the --params-file document. File entries override config entries.
func loadParams() (map[string]param.Parameter, error) {
	params, err := paramcfg.BuildAll(viper.GetStringMap("params"))
	if err != nil {
		return nil, err
	}

	if path := viper.GetString("params-file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open params file: %w", err)
		}
		defer f.Close()

		extra, err := paramcfg.Parse(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for name, p := range extra {
			params[name] = p
		}
	}

	logger.Debug("Parameters loaded", "count", len(params))
	return params, nil
}

// lookupParam returns the named parameter.
func lookupParam(name string) (param.Parameter, error) {
	if name == "" {
		return nil, fmt.Errorf("--param is required")
	}
	params, err := loadParams()
	if err != nil {
		return nil, err
	}
	p, ok := params[name]
	if !ok {
		known := sortedNames(params)
		if len(known) == 0 {
			return nil, fmt.Errorf("unknown parameter %q: no parameters are configured", name)
		}
		return nil, fmt.Errorf("unknown parameter %q (known: %s)", name, strings.Join(known, ", "))
	}
	return p, nil
}

func sortedNames(params map[string]param.Parameter) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
