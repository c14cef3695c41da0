package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	templatepro "github.com/soitun/templatepro"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "templatepro",
		Short:         "Compile and render templatepro templates",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(renderCmd(), dumpCmd(), buildCmd())
	return root
}

func renderCmd() *cobra.Command {
	var dataFile string
	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := compileAny(args[0])
			if err != nil {
				return err
			}
			if dataFile != "" {
				if err := bindJSON(t, dataFile); err != nil {
					return err
				}
			}
			out, err := t.Render()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "JSON file with variable bindings")
	return cmd
}

func dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <template>",
		Short: "Print the compiled token vector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := compileAny(args[0])
			if err != nil {
				return err
			}
			return t.Dump(cmd.OutOrStdout())
		},
	}
}

func buildCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build <template>",
		Short: "Compile a template and save the binary token vector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := templatepro.NewCompiler().CompileFile(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = args[0] + ".tpc"
			}
			return t.SaveToFile(out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default <template>.tpc)")
	return cmd
}

// compileAny loads a precompiled vector when given a .tpc file, otherwise
// compiles source.
func compileAny(path string) (*templatepro.Template, error) {
	if len(path) > 4 && path[len(path)-4:] == ".tpc" {
		return templatepro.CreateFromFile(path)
	}
	return templatepro.NewCompiler().CompileFile(path)
}

// bindJSON projects a decoded JSON object into the environment. Arrays of
// objects become row sources so templates can loop them with column
// access.
func bindJSON(t *templatepro.Template, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for name, val := range m {
		if rows, ok := asRows(val); ok {
			t.SetValue(name, templatepro.RowsValue(rows))
			continue
		}
		t.SetData(name, val)
	}
	return nil
}

func asRows(val interface{}) (*templatepro.SliceRows, bool) {
	list, ok := val.([]interface{})
	if !ok || len(list) == 0 {
		return nil, false
	}
	rows := make([]map[string]interface{}, 0, len(list))
	cols := map[string]bool{}
	for _, el := range list {
		m, ok := el.(map[string]interface{})
		if !ok {
			return nil, false
		}
		rows = append(rows, m)
		for k := range m {
			cols[k] = true
		}
	}
	names := make([]string, 0, len(cols))
	for k := range cols {
		names = append(names, k)
	}
	return &templatepro.SliceRows{Cols: names, Data: rows}, true
}
