package internal

import (
	"github.com/goplus/cdeps/internal/link"
	"github.com/spf13/cobra"
)

var (
	linksFormat  string
	linksOutput  string
	linksPackage string
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Print the link directives of a successful build without building",
	Args:  cobra.NoArgs,
	RunE:  runLinks,
}

func init() {
	addOutputFlags(linksCmd, &linksFormat, &linksOutput, &linksPackage)
	rootCmd.AddCommand(linksCmd)
}

func runLinks(cmd *cobra.Command, args []string) error {
	format, err := link.ParseFormat(linksFormat)
	if err != nil {
		return err
	}
	b, err := newBuilder()
	if err != nil {
		return err
	}
	return writeDirectives(cmd.OutOrStdout(), linksOutput, format, linksPackage, b.Links())
}
