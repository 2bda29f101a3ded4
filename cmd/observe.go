package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/classify"
)

func newObserveCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "observe",
		Short: "Feed observed HTTP traffic into the usage engine",
	}

	cmd.AddCommand(newObserveRequestCmd(app), newObserveResponseCmd(app))

	return cmd
}

func newObserveRequestCmd(app *app) *cobra.Command {
	var url, method string

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Record an outgoing request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			counted, err := app.service.ObserveRequest(cmd.Context(), classify.ObservedRequest{
				URL:    url,
				Method: method,
			})
			if err != nil {
				return err
			}

			if counted {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "message counted")
			} else {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "not counted")
			}
			return err
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Request URL")
	cmd.Flags().StringVar(&method, "method", "POST", "Request method")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func newObserveResponseCmd(app *app) *cobra.Command {
	var url string
	var statusCode int
	var headers []string
	var bodyFromStdin bool

	cmd := &cobra.Command{
		Use:   "response",
		Short: "Record a received response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp := classify.ObservedResponse{
				URL:     url,
				Status:  statusCode,
				Headers: map[string]string{},
			}
			for _, header := range headers {
				name, value, ok := strings.Cut(header, ":")
				if !ok {
					return fmt.Errorf("malformed header %q, expected name:value", header)
				}
				resp.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
			}

			if bodyFromStdin {
				body, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read response body: %w", err)
				}
				resp.Body = string(body)
			}

			if err := app.service.ObserveResponse(cmd.Context(), resp); err != nil {
				return err
			}

			snapshot, err := app.service.Status(cmd.Context())
			if err != nil {
				return err
			}
			if snapshot.IsLimited {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "limited: reset in %s\n", snapshot.FormattedRemaining)
			} else {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "normal")
			}
			return err
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Response URL")
	cmd.Flags().IntVar(&statusCode, "status", 200, "HTTP status code")
	cmd.Flags().StringArrayVar(&headers, "header", nil, "Response header as name:value (repeatable)")
	cmd.Flags().BoolVar(&bodyFromStdin, "body-stdin", false, "Read the response body from stdin")

	return cmd
}
