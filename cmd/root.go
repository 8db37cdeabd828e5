package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/nguyentranbao-ct/shop-assistant/internal/app"
	"github.com/nguyentranbao-ct/shop-assistant/internal/config"
	"github.com/nguyentranbao-ct/shop-assistant/internal/ingest"
	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	"github.com/nguyentranbao-ct/shop-assistant/internal/repo/woocommerce"
	"github.com/nguyentranbao-ct/shop-assistant/internal/server"
	"github.com/nguyentranbao-ct/shop-assistant/pkg/logger"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shop-assistant",
		Short:         "Chat with a model about a product sheet and push the result to WooCommerce",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			app.Invoke(
				server.StartServer,
			).Run()
		},
	}
	rootCmd.AddCommand(newCheckConnectionCmd(), newIngestCmd())
	return rootCmd
}

func newCheckConnectionCmd() *cobra.Command {
	var creds models.Credentials
	cmd := &cobra.Command{
		Use:   "check-connection",
		Short: "Verify WordPress credentials against /wp-json/wp/v2/users/me",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if creds.SiteURL == "" || creds.Username == "" {
				return fmt.Errorf("%w: --site-url and --username are required", models.ErrInvalidInput)
			}

			client := woocommerce.NewFactory(conf)(creds)
			ok, err := client.TestConnection(cmd.Context())
			if !ok {
				return fmt.Errorf("connection to %s failed: %w", client.SiteURL(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connected to %s\n", client.SiteURL())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&creds.SiteURL, "site-url", os.Getenv("WOOCOMMERCE_SITE_URL"), "site address, e.g. https://shop.example")
	flags.StringVar(&creds.Username, "username", os.Getenv("WOOCOMMERCE_USERNAME"), "WordPress user")
	flags.StringVar(&creds.Password, "password", os.Getenv("WOOCOMMERCE_PASSWORD"), "WordPress application password")
	flags.BoolVar(&creds.InsecureSkipVerify, "insecure", false, "skip TLS certificate verification")
	return cmd
}

func newIngestCmd() *cobra.Command {
	var preview int
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Print the context text a file turns into",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			text, err := ingest.Parse(f.Name(), f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ingest.Preview(text, preview))
			return nil
		},
	}
	cmd.Flags().IntVar(&preview, "preview", 0, "cut the output after this many characters (0 prints everything)")
	return cmd
}

func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger.MustNamed("cmd").Error(err)
		fmt.Fprintln(os.Stderr, err)
		_ = logger.Sync()
		os.Exit(1)
	}
}
