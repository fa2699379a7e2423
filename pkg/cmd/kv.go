package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/storage/kv"
)

var (
	kvCmd = &cobra.Command{
		Use:     "kv",
		Short:   "Key-Value store related commands",
		Aliases: []string{"keyvalue"},
	}

	kvTypesCmd = &cobra.Command{
		Use:   "types",
		Short: "list all registered kv types",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered kv types:")

			for _, t := range kv.GetRegisteredKVTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(t))
			}
		},
	}

	kvListCmd = &cobra.Command{
		Use:     "ls [pattern]",
		Short:   "list keys in the configured session cache, default all sessions",
		Aliases: []string{"list", "l"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.GetConfig()

			pattern := cfg.Auth.SessionPrefix + "*"
			if len(args) == 1 {
				pattern = args[0]
			}

			store, err := kv.New(cmd.Context(), cfg.KV)
			if err != nil {
				return err
			}
			defer store.Close()

			keys, err := store.Keys(cmd.Context(), pattern)
			if err != nil {
				return err
			}

			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}

			return nil
		},
	}
)

// registerKVCommands 注册 KV 相关命令.
func registerKVCommands() {
	rootCmd.AddCommand(kvCmd)
	kvCmd.AddCommand(kvTypesCmd, kvListCmd)
}
