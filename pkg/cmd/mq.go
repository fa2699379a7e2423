package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/storage/mq"
	"github.com/yeisme/filevault/pkg/queue"
)

var (
	mqCmd = &cobra.Command{
		Use:     "mq",
		Short:   "Message queue related commands",
		Aliases: []string{"messagequeue"},
	}

	mqListCmd = &cobra.Command{
		Use:     "ls",
		Short:   "list registered broker types and job topics",
		Aliases: []string{"list", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			cfg := configs.GetConfig()

			fmt.Fprintf(out, "Transport: %s (broker %s)\n", cfg.Worker.Transport, cfg.MQ.Type)
			fmt.Fprintln(out, "Registered mq types:")

			for _, t := range mq.GetRegisteredMQTypes() {
				fmt.Fprintln(out, "   - "+string(t))
			}

			fmt.Fprintln(out, "Topics:")

			for _, t := range queue.Topics() {
				fmt.Fprintln(out, "   - "+t)
			}
		},
	}
)

// registerMQCommands 注册 MQ 相关命令.
func registerMQCommands() {
	rootCmd.AddCommand(mqCmd)
	mqCmd.AddCommand(mqListCmd)
}
