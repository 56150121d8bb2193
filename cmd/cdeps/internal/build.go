package internal

import (
	"github.com/goplus/cdeps/internal/link"
	"github.com/goplus/cdeps/internal/platform"
	"github.com/goplus/cdeps/pkgs/buildsys"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var (
	buildFormat  string
	buildOutput  string
	buildPackage string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build every vendored library and print link directives",
	Long: `Build runs each library's bootstrap, configure, compile and install phases in
dependency order. The first failing phase aborts the run; fix the cause and run
again from a clean vendor tree.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	addOutputFlags(buildCmd, &buildFormat, &buildOutput, &buildPackage)
	rootCmd.AddCommand(buildCmd)
}

func addOutputFlags(cmd *cobra.Command, format, output, pkg *string) {
	cmd.Flags().StringVarP(format, "format", "f", string(link.FormatFlags), "Output format: flags or cgo")
	cmd.Flags().StringVarP(output, "output", "o", "", "Write directives to this file instead of stdout")
	cmd.Flags().StringVar(pkg, "package", "libtor", "Package name of the generated cgo file")
}

func newRunner() buildsys.Runner {
	return &buildsys.Exec{Verbose: verbose}
}

func runBuild(cmd *cobra.Command, args []string) error {
	format, err := link.ParseFormat(buildFormat)
	if err != nil {
		return err
	}
	b, err := newBuilder()
	if err != nil {
		return err
	}
	log.Infof("host %s, strategy %s", platform.Host(), b.Graph().Strategy())

	dirs, err := b.Build()
	if err != nil {
		return err
	}
	return writeDirectives(cmd.OutOrStdout(), buildOutput, format, buildPackage, dirs)
}
