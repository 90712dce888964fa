package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

func consistencyCmd() *cobra.Command {
	var (
		tripID string
		userID string
		token  string
	)

	cmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check that a trip's stored records reconcile",
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint := baseURL + "/api/v1/trips/" + url.PathEscape(tripID) + "/consistency"
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, endpoint, nil)
			if err != nil {
				return err
			}
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			} else if userID != "" {
				req.Header.Set("X-User-ID", userID)
			}

			client := &http.Client{Timeout: timeout}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("consistency check failed (status %d): %s", resp.StatusCode, body)
			}

			var result map[string]any
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}

			if consistent, _ := result["consistent"].(bool); !consistent {
				return errors.New("trip is NOT consistent")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tripID, "trip", "", "Trip ID")
	cmd.Flags().StringVar(&userID, "user", "", "Caller identity sent as X-User-ID")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("trip")

	return cmd
}
