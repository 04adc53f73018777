package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskflow/task-manager/pkg/client"
)

var (
	apiURL   string
	apiToken string
	timeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "taskmanager",
	Short: "Task manager API server and terminal client",
	Long: `taskmanager serves the task manager REST API ("serve", "migrate") and
works with a running server from the terminal ("login", "tasks", "calendar", "stats").

Client commands read the server address from --api or TASKMANAGER_API and the
bearer token from --token or TASKMANAGER_TOKEN.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("TASKMANAGER_API", "http://localhost:8080"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("TASKMANAGER_TOKEN"), "bearer token from 'taskmanager login'")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")

	rootCmd.AddCommand(serveCmd, migrateCmd, loginCmd, tasksCmd, calendarCmd, statsCmd)
}

func newClient() *client.Client {
	return client.New(apiURL, client.WithToken(apiToken))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
