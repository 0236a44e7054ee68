package accounts

import (
	"time"

	"github.com/google/uuid"
)

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// typeOrder fixes the presentation order of account types within a tree level.
var typeOrder = map[AccountType]int{
	AccountTypeAsset:     0,
	AccountTypeLiability: 1,
	AccountTypeEquity:    2,
	AccountTypeRevenue:   3,
	AccountTypeExpense:   4,
}

// Account models a chart of accounts node. Codes are unique per organization,
// case-sensitive. ParentID is nil for top-level accounts.
type Account struct {
	ID        int64
	OrgID     uuid.UUID
	Code      string
	Name      string
	Type      AccountType
	ParentID  *int64
	IsActive  bool
	IsSystem  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TreeNode is an account with its children resolved, as returned by Tree.
type TreeNode struct {
	Account
	Children []*TreeNode
}
