// Package reports derives presentation aggregates from the posting set.
package reports

import (
	"sort"

	"github.com/openbooks-app/openbooks/internal/ledger/accounts"
)

// AccountTotals carries an account's summed debits and credits.
type AccountTotals struct {
	Code   string
	Name   string
	Type   accounts.AccountType
	Debit  float64
	Credit float64
}

// Balance computes the account's debit-minus-credit balance.
func (a AccountTotals) Balance() float64 {
	return a.Debit - a.Credit
}

// TrialBalanceRow is one account row inside a trial balance group.
type TrialBalanceRow struct {
	Code    string
	Name    string
	Debit   float64
	Credit  float64
	Balance float64
}

// TrialBalanceGroup aggregates the accounts of one type.
type TrialBalanceGroup struct {
	Type    accounts.AccountType
	Rows    []TrialBalanceRow
	Debit   float64
	Credit  float64
	Balance float64
}

// TrialBalance is the report returned by the trial balance endpoint. For any
// ledger built from balanced journal groups TotalDebit equals TotalCredit.
type TrialBalance struct {
	Groups      []TrialBalanceGroup
	TotalDebit  float64
	TotalCredit float64
}

var groupOrder = []accounts.AccountType{
	accounts.AccountTypeAsset,
	accounts.AccountTypeLiability,
	accounts.AccountTypeEquity,
	accounts.AccountTypeRevenue,
	accounts.AccountTypeExpense,
}

// BuildTrialBalance groups per-account totals by account type, ordering
// groups in statement order and accounts by code.
func BuildTrialBalance(totals []AccountTotals) TrialBalance {
	groups := make(map[accounts.AccountType]*TrialBalanceGroup)
	for _, acc := range totals {
		grp, ok := groups[acc.Type]
		if !ok {
			grp = &TrialBalanceGroup{Type: acc.Type}
			groups[acc.Type] = grp
		}
		row := TrialBalanceRow{
			Code:    acc.Code,
			Name:    acc.Name,
			Debit:   acc.Debit,
			Credit:  acc.Credit,
			Balance: acc.Balance(),
		}
		grp.Rows = append(grp.Rows, row)
		grp.Debit += row.Debit
		grp.Credit += row.Credit
		grp.Balance += row.Balance
	}

	result := TrialBalance{}
	for _, typ := range groupOrder {
		grp, ok := groups[typ]
		if !ok {
			continue
		}
		sort.Slice(grp.Rows, func(i, j int) bool {
			return grp.Rows[i].Code < grp.Rows[j].Code
		})
		result.Groups = append(result.Groups, *grp)
		result.TotalDebit += grp.Debit
		result.TotalCredit += grp.Credit
	}
	return result
}
