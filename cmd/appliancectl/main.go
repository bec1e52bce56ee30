// appliancectl checks and imports appliance images against a local image
// store without going through the daemon.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/cobra"

	"github.com/emulab/applianced/lib/appliance"
	"github.com/emulab/applianced/lib/images"
	"github.com/emulab/applianced/lib/logger"
	"github.com/emulab/applianced/lib/registry"
)

var (
	imageDirs []string
	dataDir   string
	verbose   bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "appliancectl",
		Short:         "Check and import network-emulation appliance images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := logger.NewConfig()
			if verbose {
				cfg.Level = slog.LevelDebug
			}
			slog.SetDefault(logger.New(cfg))
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "managed image store root")

	root.AddCommand(checkCmd(), importCmd())
	return root
}

func defaultDataDir() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return dir
	}
	return "/var/lib/applianced"
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <appliance-file>",
		Short: "Report which appliance versions are installable from local images",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().StringArrayVar(&imageDirs, "image-dir", nil, "extra directory to search for images (repeatable)")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	a, err := appliance.LoadFile(path)
	if err != nil {
		return err
	}

	store := images.NewStore(dataDir, nil)
	dirs := []string{store.Dir()}
	dirs = append(dirs, imageDirs...)
	// The definition's own directory is searched too, matching how
	// freshly downloaded definitions sit next to their images.
	dirs = append(dirs, filepath.Dir(path))

	reg := registry.New(dirs, slog.Default(), nil)
	if err := reg.CheckDirectories(); err != nil {
		slog.Warn("some search directories are not readable", "error", err)
	}

	annotated, err := appliance.Reconcile(cmd.Context(), a, reg)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n\n", annotated.ProductName, annotated.Name)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tFILE\tSIZE\tSTATUS")
	for _, v := range annotated.Versions {
		fmt.Fprintf(w, "%s\t\t%s\t%s\n", v.Name, v.HumanSize(), v.Status)
		for _, img := range v.Images {
			note := ""
			if img.Status == appliance.ImageStatusMissing {
				if url := img.ResolveDownloadURL(); url != "" {
					note = "\t" + url
				}
			}
			fmt.Fprintf(w, "\t%s\t%s\t%s%s\n",
				img.Filename, datasize.ByteSize(img.FilesizeBytes).HumanReadable(), img.Status, note)
		}
	}
	return w.Flush()
}

func importCmd() *cobra.Command {
	var (
		md5sum string
		as     string
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Verify an image file and copy it into the managed store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			filename := as
			if filename == "" {
				filename = filepath.Base(path)
			}

			store := images.NewStore(dataDir, nil)
			cand, err := store.AcceptImport(cmd.Context(), path, md5sum)
			if err != nil {
				return err
			}

			stored, err := store.Install(cmd.Context(), cand, filename)
			if err != nil {
				return err
			}

			fmt.Printf("imported %s (%s) into %s\n",
				stored.Filename, datasize.ByteSize(stored.SizeBytes).HumanReadable(), store.Dir())
			return nil
		},
	}

	cmd.Flags().StringVar(&md5sum, "md5", "", "expected MD5 checksum of the image")
	cmd.Flags().StringVar(&as, "as", "", "filename to store the image under (defaults to the source name)")
	_ = cmd.MarkFlagRequired("md5")
	return cmd
}
