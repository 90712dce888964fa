package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/ledger"
)

// snapshotFile is the on-disk form of a trip snapshot.
type snapshotFile struct {
	Users []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"users"`
	Expenses []struct {
		ID     string          `json:"id"`
		PaidBy string          `json:"paidBy"`
		Amount decimal.Decimal `json:"amount"`
		Shares []struct {
			UserID string          `json:"userId"`
			Amount decimal.Decimal `json:"amount"`
		} `json:"shares"`
	} `json:"expenses"`
	Payments []struct {
		ID     string          `json:"id"`
		From   string          `json:"from"`
		To     string          `json:"to"`
		Amount decimal.Decimal `json:"amount"`
	} `json:"payments"`
}

func (f *snapshotFile) toSnapshot() ledger.Snapshot {
	users := make([]domain.User, len(f.Users))
	for i, u := range f.Users {
		users[i] = domain.User{ID: u.ID, Name: u.Name}
	}

	expenses := make([]domain.Expense, len(f.Expenses))
	for i, e := range f.Expenses {
		shares := make([]domain.Share, len(e.Shares))
		for j, s := range e.Shares {
			shares[j] = domain.Share{ExpenseID: e.ID, UserID: s.UserID, Amount: s.Amount}
		}
		expenses[i] = domain.Expense{ID: e.ID, PaidByUserID: e.PaidBy, Amount: e.Amount, Shares: shares}
	}

	payments := make([]domain.Payment, len(f.Payments))
	for i, p := range f.Payments {
		payments[i] = domain.Payment{ID: p.ID, FromUserID: p.From, ToUserID: p.To, Amount: p.Amount}
	}

	return ledger.NewSnapshot(users, expenses, payments)
}

func loadSnapshot(path string) (ledger.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ledger.Snapshot{}, err
	}

	var f snapshotFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return f.toSnapshot(), nil
}

func planCmd() *cobra.Command {
	var (
		file   string
		userID string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute balances and a settlement plan from a snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(file)
			if err != nil {
				return err
			}

			report, err := ledger.Compute(snap)
			if err != nil {
				return err
			}

			if userID != "" {
				return printJSON(cmd.OutOrStdout(), report.PerUser(userID))
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Snapshot JSON file")
	cmd.Flags().StringVar(&userID, "user", "", "Only print this user's view")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
