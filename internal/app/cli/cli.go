// Package cli is the orcamentos command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eurocar/orcamentos/internal/app"
	"eurocar/orcamentos/internal/app/config"
	"eurocar/orcamentos/internal/app/logger"
	"eurocar/orcamentos/internal/app/session"
	"eurocar/orcamentos/internal/app/settings"
	"eurocar/orcamentos/internal/domain/quote/preview"
)

type options struct {
	settingsFile string
	verbose      bool
}

// NewRootCmd builds the command tree. Configuration comes from the
// environment; --settings overrides SETTINGS_FILE.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "orcamentos",
		Short: "Orçamentos de peças e mão de obra da oficina",
		Long: `orcamentos monta orçamentos de peças e mão de obra, gera o PDF paginado
e o arquivo editável (.json) que pode ser recarregado depois.

Exemplos:
  orcamentos serve                          # API HTTP da sessão de edição
  orcamentos render Orcamento_Ana.json      # PDF a partir de um arquivo editável
  orcamentos preview Orcamento_Ana.json     # pré-visualização em texto
  orcamentos settings set paths orcamentos_pdf /srv/pdf`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.settingsFile, "settings", "", "settings file (default $SETTINGS_FILE or the user config dir)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newServeCmd(opts),
		newRenderCmd(opts),
		newPreviewCmd(opts),
		newSettingsCmd(opts),
	)
	return root
}

func (o *options) config() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if o.settingsFile != "" {
		cfg.SettingsFile = o.settingsFile
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the quote session API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.LogLevel, false)
			if err != nil {
				return err
			}
			defer log.Sync()
			return app.Run(cmd.Context(), cfg, log)
		},
	}
}

func newRenderCmd(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "render <orcamento.json>",
		Short: "Render the PDF of an editable quote file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, log, err := opts.build()
			if err != nil {
				return err
			}
			defer log.Sync()

			q, err := c.Editable.Load(args[0])
			if err != nil {
				return err
			}
			data, err := c.Generator.Generate(q)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(c.Settings.Get(settings.SectionPaths, settings.KeyPDFDir), session.PDFFileName(q.Client, time.Now()))
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: the configured PDF directory)")
	return cmd
}

func newPreviewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <orcamento.json>",
		Short: "Print the text preview of an editable quote file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, log, err := opts.build()
			if err != nil {
				return err
			}
			defer log.Sync()

			q, err := c.Editable.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), preview.Format(q))
			return nil
		},
	}
}

func newSettingsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the saved settings",
	}

	load := func() (*settings.Store, error) {
		cfg, err := opts.config()
		if err != nil {
			return nil, err
		}
		return settings.Load(cfg.SettingsFile)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every setting",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				st, err := load()
				if err != nil {
					return err
				}
				for _, k := range st.Keys() {
					section, key, _ := strings.Cut(k, ".")
					fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", k, st.Get(section, key))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <section> <key>",
			Short: "Print one setting",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := load()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), st.Get(args[0], args[1]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <section> <key> <value>",
			Short: "Change one setting",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := load()
				if err != nil {
					return err
				}
				return st.Set(args[0], args[1], args[2])
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the default settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				st, err := load()
				if err != nil {
					return err
				}
				return st.Reset()
			},
		},
	)
	return cmd
}

func (o *options) build() (*app.Components, *zap.Logger, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel, true)
	if err != nil {
		return nil, nil, err
	}
	c, err := app.Build(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return c, log, nil
}

// Execute runs the command line. Cancelling ctx stops a running server.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
