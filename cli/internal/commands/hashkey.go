package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ritchiero/Budget-Agent/internal/auth"
	"github.com/ritchiero/Budget-Agent/internal/config"
)

func newHashKeyCommand(opts *options) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "hash-key [key]",
		Short: "Hash an API key for the server's chat endpoint",
		Long: `Hash an API key with bcrypt for server.api_key_hash.
Without an argument a new random key is generated and printed once.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				generated, err := auth.GenerateAPIKey()
				if err != nil {
					return fmt.Errorf("failed to generate key: %w", err)
				}
				key = generated
				fmt.Fprintf(opts.out, "API key: %s\n", key)
			}

			hash, err := auth.HashKey(key)
			if err != nil {
				return fmt.Errorf("failed to hash key: %w", err)
			}
			fmt.Fprintf(opts.out, "Hash:    %s\n", hash)

			if !save {
				return nil
			}

			path, err := config.Path()
			if err != nil {
				return err
			}
			cfg, err := config.ReadFile(path)
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			cfg.Server.APIKeyHash = hash
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}
			fmt.Fprintf(opts.out, "Saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Write the hash to the config file")
	return cmd
}
