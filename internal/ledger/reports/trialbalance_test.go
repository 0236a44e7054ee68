package reports

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openbooks-app/openbooks/internal/ledger/accounts"
)

func TestBuildTrialBalanceGroupsInStatementOrder(t *testing.T) {
	totals := []AccountTotals{
		{Code: "6000", Name: "Rent", Type: accounts.AccountTypeExpense, Debit: 120},
		{Code: "1000", Name: "Cash", Type: accounts.AccountTypeAsset, Debit: 500, Credit: 120},
		{Code: "4000", Name: "Sales", Type: accounts.AccountTypeRevenue, Credit: 500},
		{Code: "1010", Name: "Petty Cash", Type: accounts.AccountTypeAsset, Debit: 50, Credit: 50},
	}

	tb := BuildTrialBalance(totals)
	require.Len(t, tb.Groups, 3)
	require.Equal(t, accounts.AccountTypeAsset, tb.Groups[0].Type)
	require.Equal(t, accounts.AccountTypeRevenue, tb.Groups[1].Type)
	require.Equal(t, accounts.AccountTypeExpense, tb.Groups[2].Type)

	assets := tb.Groups[0]
	require.Equal(t, "1000", assets.Rows[0].Code)
	require.Equal(t, "1010", assets.Rows[1].Code)
	require.InDelta(t, 550, assets.Debit, 0.001)
	require.InDelta(t, 170, assets.Credit, 0.001)
	require.InDelta(t, 380, assets.Balance, 0.001)
}

func TestBuildTrialBalanceTotalsMatchForBalancedLedger(t *testing.T) {
	totals := []AccountTotals{
		{Code: "1000", Name: "Cash", Type: accounts.AccountTypeAsset, Debit: 1000, Credit: 300},
		{Code: "2000", Name: "Payables", Type: accounts.AccountTypeLiability, Credit: 200},
		{Code: "4000", Name: "Sales", Type: accounts.AccountTypeRevenue, Credit: 800},
		{Code: "6000", Name: "Rent", Type: accounts.AccountTypeExpense, Debit: 300},
	}

	tb := BuildTrialBalance(totals)
	require.InDelta(t, tb.TotalDebit, tb.TotalCredit, 0.001)
	require.InDelta(t, 1300, tb.TotalDebit, 0.001)
}

func TestBuildTrialBalanceEmpty(t *testing.T) {
	tb := BuildTrialBalance(nil)
	require.Empty(t, tb.Groups)
	require.Zero(t, tb.TotalDebit)
	require.Zero(t, tb.TotalCredit)
}

func TestAccountTotalsBalanceSign(t *testing.T) {
	revenue := AccountTotals{Type: accounts.AccountTypeRevenue, Credit: 500}
	require.InDelta(t, -500, revenue.Balance(), 0.001)

	asset := AccountTotals{Type: accounts.AccountTypeAsset, Debit: 500}
	require.InDelta(t, 500, asset.Balance(), 0.001)
}
