// Command extract runs the product extraction pipeline once for a URL.
//
//	extract https://www.fnac.com/a123/casque --json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/planachat/backend/config"
	"github.com/planachat/backend/internal/app"
	"github.com/planachat/backend/internal/domain"
	"github.com/planachat/backend/internal/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	configFile string
	jsonOutput bool
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "extract <url>",
		Short:         "Extract a product (name, price, image) from an e-commerce page",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "config file (default is ./config.yaml, ./config/config.yaml or /etc/planachat/config.yaml)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the result as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log relay attempts")

	return cmd
}

func runExtract(ctx context.Context, out io.Writer, rawURL string, opts *options) error {
	if err := config.LoadEnvFile(); err != nil {
		return err
	}

	cfg, err := config.LoadFrom(opts.configFile)
	if err != nil {
		return err
	}

	log := logger.NewNop()
	if opts.verbose {
		cfg.Log.Level = "debug"
		if log, err = logger.New(cfg.Log); err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Server.ExtractTimeout)
	defer cancel()

	svc := app.NewExtractionService(cfg, nil, nil, log, nil)
	outcome := svc.FetchAndParseProduct(ctx, rawURL)

	if opts.jsonOutput {
		if err := writeJSON(out, outcome); err != nil {
			return err
		}
	} else {
		writeText(out, outcome)
	}

	if !outcome.Success() {
		return fmt.Errorf("extraction failed: %s", outcome.Reason())
	}
	return nil
}

func writeJSON(out io.Writer, outcome domain.ExtractionOutcome) error {
	payload := map[string]any{"success": outcome.Success()}
	if outcome.Success() {
		payload["product"] = outcome.Product
	} else {
		payload["error"] = outcome.Reason()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writeText(out io.Writer, outcome domain.ExtractionOutcome) {
	if !outcome.Success() {
		fmt.Fprintf(out, "Échec : %s\n", outcome.Reason())
		return
	}

	p := outcome.Product
	price := "inconnu"
	if p.Price != nil {
		price = strconv.FormatFloat(*p.Price, 'f', 2, 64) + " €"
	}

	fmt.Fprintf(out, "Nom         : %s\n", p.Name)
	fmt.Fprintf(out, "Prix        : %s\n", price)
	fmt.Fprintf(out, "Site        : %s\n", p.Source)
	if p.ImageURL != "" {
		fmt.Fprintf(out, "Image       : %s\n", p.ImageURL)
	}
	if p.Description != "" {
		fmt.Fprintf(out, "Description : %s\n", p.Description)
	}
	fmt.Fprintf(out, "Lien        : %s\n", p.Link)
}
