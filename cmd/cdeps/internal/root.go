package internal

import (
	"io"
	"os"

	"github.com/goplus/cdeps/internal/build"
	"github.com/goplus/cdeps/internal/env"
	"github.com/goplus/cdeps/internal/link"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var (
	vendorDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "cdeps",
	Short: "cdeps builds the vendored native libraries",
	Long: `cdeps compiles the vendored C libraries (zlib, xz, openssl, libevent, tor)
in dependency order and emits the linker directives needed to link them statically.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetOutputLevel(log.Ldebug)
		} else {
			log.SetOutputLevel(log.Linfo)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&vendorDir, "vendor", env.DefaultVendorDir, "Vendor root holding one source tree per library")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Stream build tool output and log every command")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}

// newBuilder returns a builder for the current platform rooted at --vendor.
func newBuilder() (*build.Builder, error) {
	root, err := env.VendorDir(vendorDir)
	if err != nil {
		return nil, err
	}
	return build.NewBuilder(build.Options{
		VendorDir: root,
		Runner:    newRunner(),
	})
}

// writeDirectives writes dirs to output, or to w when output is empty.
func writeDirectives(w io.Writer, output string, f link.Format, pkg string, dirs []link.Directive) error {
	if output == "" {
		return link.Write(w, f, pkg, dirs)
	}
	file, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := link.Write(file, f, pkg, dirs); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
