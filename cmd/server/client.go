package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshdurbin/js4hs-edge/internal/config"
	"github.com/joshdurbin/js4hs-edge/internal/domain"
	"github.com/joshdurbin/js4hs-edge/internal/linkcheck"
	"github.com/joshdurbin/js4hs-edge/internal/transport/client"
)

const clientTimeout = 10 * time.Second

func newClientCmd() *cobra.Command {
	clientCmd := &cobra.Command{
		Use:   "client",
		Short: "Client commands for interacting with the server",
	}
	clientCmd.PersistentFlags().StringP("server-url", "u", "http://localhost:8080", "Server URL (default SERVER_URL)")

	jobsCreateCmd := &cobra.Command{
		Use:   "jobs-create",
		Short: "Post a job listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			title, _ := cmd.Flags().GetString("title")
			employer, _ := cmd.Flags().GetString("employer")
			location, _ := cmd.Flags().GetString("location")
			description, _ := cmd.Flags().GetString("description")

			ctx, cancel := context.WithTimeout(cmd.Context(), clientTimeout)
			defer cancel()

			return commandsFor(cmd).CreateJob(ctx, domain.CreateJobRequest{
				Title:       title,
				Employer:    employer,
				Location:    location,
				Description: description,
			})
		},
	}
	jobsCreateCmd.Flags().String("title", "", "Job title")
	jobsCreateCmd.Flags().String("employer", "", "Employer name")
	jobsCreateCmd.Flags().String("location", "", "Job location")
	jobsCreateCmd.Flags().String("description", "", "Job description")
	_ = jobsCreateCmd.MarkFlagRequired("title")
	_ = jobsCreateCmd.MarkFlagRequired("employer")

	jobsListCmd := &cobra.Command{
		Use:   "jobs-list",
		Short: "List job listings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")

			ctx, cancel := context.WithTimeout(cmd.Context(), clientTimeout)
			defer cancel()

			return commandsFor(cmd).ListJobs(ctx, page)
		},
	}
	jobsListCmd.Flags().Int("page", 1, "Page number")

	jobsGetCmd := &cobra.Command{
		Use:   "jobs-get [ID]",
		Short: "Show a job listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), clientTimeout)
			defer cancel()

			return commandsFor(cmd).GetJob(ctx, args[0])
		},
	}

	qrLinkCmd := &cobra.Command{
		Use:   "qr-link [TARGET_URL]",
		Short: "Issue a time-limited QR link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), clientTimeout)
			defer cancel()

			return commandsFor(cmd).IssueLink(ctx, args[0])
		},
	}

	qrValidateCmd := &cobra.Command{
		Use:   "qr-validate [URL]",
		Short: "Ask the server whether a QR link is still valid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), clientTimeout)
			defer cancel()

			return commandsFor(cmd).ValidateLink(ctx, args[0])
		},
	}

	qrWatchCmd := &cobra.Command{
		Use:   "qr-watch [URL]",
		Short: "Count down a QR link locally until it expires",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			maxAge, _ := cmd.Flags().GetDuration("max-age")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return commandsFor(cmd).WatchLink(ctx, args[0], maxAge)
		},
	}
	qrWatchCmd.Flags().Duration("max-age", linkcheck.DefaultMaxAge, "Validity window of the link")

	clientCmd.AddCommand(jobsCreateCmd, jobsListCmd, jobsGetCmd, qrLinkCmd, qrValidateCmd, qrWatchCmd)
	return clientCmd
}

// commandsFor targets --server-url when given, else SERVER_URL from the environment
func commandsFor(cmd *cobra.Command) *client.Commands {
	serverURL, _ := cmd.Flags().GetString("server-url")
	if !cmd.Flags().Changed("server-url") {
		if cfg, err := config.Load(); err == nil && cfg.Server.ServerURL != "" {
			serverURL = cfg.Server.ServerURL
		}
	}

	commands := client.NewCommands(client.NewClient(serverURL))
	commands.SetOutput(cmd.OutOrStdout())
	return commands
}
