package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/ledger"
	"github.com/iho/tripledger/internal/money"
)

func splitCmd() *cobra.Command {
	var amount string

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Preview how an expense would be split",
	}
	cmd.PersistentFlags().StringVar(&amount, "amount", "", "Expense total, e.g. 100.00")
	_ = cmd.MarkPersistentFlagRequired("amount")

	run := func(splitType domain.SplitType) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			total, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			req, err := splitRequest(splitType, args)
			if err != nil {
				return err
			}

			allocations, err := ledger.Allocate(splitType, total, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), allocations)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "equal USER...",
			Short: "Split evenly; earlier users absorb leftover cents",
			Args:  cobra.MinimumNArgs(1),
			RunE:  run(domain.SplitTypeEqual),
		},
		&cobra.Command{
			Use:   "exact USER=AMOUNT...",
			Short: "Use explicit amounts that must add up to the total",
			Args:  cobra.MinimumNArgs(1),
			RunE:  run(domain.SplitTypeExact),
		},
		&cobra.Command{
			Use:   "percentage USER=PERCENT...",
			Short: "Split by percentages that must add up to 100",
			Args:  cobra.MinimumNArgs(1),
			RunE:  run(domain.SplitTypePercentage),
		},
	)

	return cmd
}

func splitRequest(splitType domain.SplitType, args []string) (ledger.SplitRequest, error) {
	if splitType == domain.SplitTypeEqual {
		return ledger.SplitRequest{ParticipantIDs: args}, nil
	}

	var req ledger.SplitRequest
	for _, arg := range args {
		user, value, ok := strings.Cut(arg, "=")
		if !ok || user == "" {
			return req, fmt.Errorf("expected USER=VALUE, got %q", arg)
		}

		switch splitType {
		case domain.SplitTypeExact:
			amt, err := money.Parse(value)
			if err != nil {
				return req, fmt.Errorf("invalid amount for %s: %w", user, err)
			}
			req.Exact = append(req.Exact, ledger.Allocation{UserID: user, Amount: amt})
		case domain.SplitTypePercentage:
			pct, err := decimal.NewFromString(value)
			if err != nil {
				return req, fmt.Errorf("invalid percent for %s: %w", user, err)
			}
			req.Percentages = append(req.Percentages, ledger.PercentageSplit{UserID: user, Percent: pct})
		}
	}
	return req, nil
}
