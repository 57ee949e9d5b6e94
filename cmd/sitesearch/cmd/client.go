package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/sitesearch/internal/lang"
)

func newClientCmd() *cobra.Command {
	var (
		flags     siteFlags
		list      bool
		printOnly bool
	)

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Emit lunr.client.js only",
		Long: `Register the configured lunr-languages extensions and write
lunr.client.js into the output directory, without resolving routes.

--print renders the module to stdout instead of writing it, and --list
shows the supported language codes.`,
		Example: `  # Preview the client module for a multi-language site
  sitesearch client --language en,ja,fr --print

  # Supported languages
  sitesearch client --list`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if list {
				out := newOutput(cmd)
				out.Header("Supported languages")
				out.List(lang.Supported())
				return nil
			}

			base, err := requireConfig()
			if err != nil {
				return err
			}
			cfg, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}
			spec, err := cfg.LanguageSpec()
			if err != nil {
				return err
			}

			if printOnly {
				plan, err := lang.PlanFor(spec)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(lang.RenderClient(plan))
				return err
			}

			builder := lang.NewBuilder(lang.WithBuilderLogger(logger))
			factory, err := builder.Build(cfg.Site.OutDir, spec)
			if err != nil {
				return err
			}

			out := newOutput(cmd)
			out.Successf("Wrote %s", lang.ClientPath(cfg.Site.OutDir))
			out.KeyValue("Language", spec.Normalize().String())
			if factory != nil {
				out.KeyValue("Extensions", len(factory.Extensions()))
			}
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVar(&list, "list", false, "List supported language codes")
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the module instead of writing it")

	return cmd
}
