package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/directory"
	"github.com/yeisme/filevault/pkg/internal/storage/db"
)

var (
	dbLimit  int
	dbParent string
	dbPage   int

	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "Database related commands",
	}

	dbTypesCmd = &cobra.Command{
		Use:   "types",
		Short: "list all registered database types",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered database types:")

			for _, t := range db.GetRegisteredDBTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(t))
			}
		},
	}

	dbListCmd = &cobra.Command{
		Use:       "ls [users|files]",
		Short:     "list users or the files under a parent folder",
		Aliases:   []string{"list"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"users", "files"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := db.New(ctx, configs.GetConfig().DB, db.Options{})
			if err != nil {
				return err
			}
			defer client.Close()

			dir := directory.New(client)
			if err := dir.Migrate(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if args[0] == "users" {
				users, err := dir.ListUsers(ctx, dbLimit)
				if err != nil {
					return err
				}

				for _, u := range users {
					fmt.Fprintf(out, "%s\t%s\n", u.ID, u.Email)
				}

				return nil
			}

			files, err := dir.ListByParent(ctx, dbParent, dbPage, dbLimit)
			if err != nil {
				return err
			}

			for _, f := range files {
				fmt.Fprintf(out, "%s\t%s\t%-6s\tpublic=%t\towner=%s\n", f.ID, f.Name, f.Type, f.IsPublic, f.UserID)
			}

			return nil
		},
	}
)

// registerDBCommands 注册数据库相关命令.
func registerDBCommands() {
	dbListCmd.Flags().IntVar(&dbLimit, "limit", configs.DefaultPageSize, "max rows to print")
	dbListCmd.Flags().StringVar(&dbParent, "parent", "0", "parent folder id when listing files")
	dbListCmd.Flags().IntVar(&dbPage, "page", 0, "page when listing files")

	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbTypesCmd, dbListCmd)
}
