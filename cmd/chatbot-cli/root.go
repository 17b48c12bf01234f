package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chatbot-api/internal/sse"
)

type cliOptions struct {
	server  string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	cmd := &cobra.Command{
		Use:          "chatbot-cli",
		Short:        "Talk to a running chatbot-api server",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", "http://localhost:8000", "chatbot-api base URL")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "overall request timeout")

	cmd.AddCommand(newAskCmd(opts), newModelsCmd(opts))
	return cmd
}

func newAskCmd(opts *cliOptions) *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one message and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, _ := json.Marshal(map[string]string{
				"message": strings.Join(args, " "),
				"model":   model,
			})
			client := &http.Client{Timeout: opts.timeout}
			resp, err := client.Post(strings.TrimRight(opts.server, "/")+"/chat", "application/json", bytes.NewReader(body))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return responseError(resp)
			}
			msg, err := sse.Collect(resp.Body)
			if err != nil {
				return err
			}
			printMessage(cmd.OutOrStdout(), msg)
			if msg.Error != "" {
				return fmt.Errorf("server error: %s", msg.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "model name (server default when empty)")
	return cmd
}

func newModelsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models the server can route to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := &http.Client{Timeout: opts.timeout}
			resp, err := client.Get(strings.TrimRight(opts.server, "/") + "/models")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return responseError(resp)
			}
			var payload struct {
				Models []string `json:"models"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				return fmt.Errorf("decode models: %w", err)
			}
			for _, name := range payload.Models {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func printMessage(w io.Writer, msg sse.Message) {
	fmt.Fprintln(w, strings.TrimSpace(msg.Content))
	for i, block := range msg.CodeBlocks {
		fmt.Fprintf(w, "\n--- code block %d (%s) ---\n%s", i+1, block.Language, block.Code)
		if !strings.HasSuffix(block.Code, "\n") {
			fmt.Fprintln(w)
		}
	}
}

func responseError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}
