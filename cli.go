package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	"github.com/tanpawarit/supervisor-agent/agent/server"
	configx "github.com/tanpawarit/supervisor-agent/pkg/config"
	logx "github.com/tanpawarit/supervisor-agent/pkg/logger"
)

func newRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "supervisor",
		Short:         "Route requests to specialist agents and compose one answer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				configx.SetEnvFile(envFile)
			}
			logCfg, err := configx.New[logx.Config]("LOG")
			if err != nil {
				return err
			}
			logx.Init(*logCfg)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", "", "path to the .env file (default .env)")

	root.AddCommand(newServeCommand(), newAskCommand(), newAgentsCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the supervisor HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var opts []server.Option
			if a.board != nil {
				opts = append(opts, server.WithTaskBoard(a.board))
			}
			srv, err := server.New(a.supervisor, opts...)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR)")
	return cmd
}

func newAskCommand() *cobra.Command {
	var conversationID, userID string

	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Handle one query and print the response as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.supervisor.HandleQuery(cmd.Context(), contractx.QueryRequest{
				Query:          strings.Join(args, " "),
				UserID:         userID,
				ConversationID: conversationID,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&conversationID, "conversation", "", "continue an existing conversation")
	cmd.Flags().StringVar(&userID, "user", "", "caller user id")
	return cmd
}

func newAgentsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List the agents in the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			agents, err := a.supervisor.Agents()
			if err != nil {
				return err
			}
			return printJSON(cmd, agents)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
