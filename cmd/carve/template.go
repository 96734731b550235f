package main

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// templates holds ready-made assemblies written in the scene language.
//
//go:embed templates/*.lisp
var templates embed.FS

// templateNames lists the embedded templates in name order.
func templateNames() []string {
	files, _ := fs.Glob(templates, "templates/*.lisp")
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(path.Base(f), ".lisp"))
	}
	slices.Sort(names)
	return names
}

func templateSource(name string) (string, error) {
	b, err := templates.ReadFile("templates/" + name + ".lisp")
	if err != nil {
		return "", fmt.Errorf("unknown template %q (available: %s)", name, strings.Join(templateNames(), ", "))
	}
	return string(b), nil
}

func (a *app) templateCmd() *cobra.Command {
	var (
		meshes bool
		source bool
	)
	cmd := &cobra.Command{
		Use:   "template [name]",
		Short: "Build a ready-made assembly (house, robot, car, castle)",
		Long: `template evaluates one of the bundled scene scripts and prints the
resulting scene. Without a name it lists the available templates. Use
--source to print the script instead, as a starting point for your own.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: templateNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range templateNames() {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			src, err := templateSource(args[0])
			if err != nil {
				return err
			}
			if source {
				_, err := fmt.Fprint(out, src)
				return err
			}
			eng, err := a.newEngine()
			if err != nil {
				return err
			}
			rep, err := a.evaluateSource(eng, args[0], src, meshes)
			if err != nil {
				return err
			}
			if err := a.encode(out, rep); err != nil {
				return err
			}
			if len(rep.Errors) > 0 {
				return fmt.Errorf("template %s: %d evaluation error(s)", args[0], len(rep.Errors))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&meshes, "meshes", false, "include world-space render buffers in the output")
	cmd.Flags().BoolVar(&source, "source", false, "print the template script instead of evaluating it")
	return cmd
}
