package accounts

// DefaultAccount seeds one row of the standard chart of accounts.
type DefaultAccount struct {
	Code string
	Name string
	Type AccountType
}

// DefaultChart is the standard small-business chart of accounts installed by
// InitializeDefaults. Codes follow the usual numbering: assets 1000-1999,
// liabilities 2000-2999, equity 3000-3999, revenue 4000-4999, expenses
// 5000-6999.
var DefaultChart = []DefaultAccount{
	{Code: "1000", Name: "Cash", Type: AccountTypeAsset},
	{Code: "1010", Name: "Checking Account", Type: AccountTypeAsset},
	{Code: "1020", Name: "Savings Account", Type: AccountTypeAsset},
	{Code: "1100", Name: "Accounts Receivable", Type: AccountTypeAsset},
	{Code: "1200", Name: "Inventory", Type: AccountTypeAsset},
	{Code: "1300", Name: "Prepaid Expenses", Type: AccountTypeAsset},
	{Code: "1400", Name: "Property, Plant & Equipment", Type: AccountTypeAsset},
	{Code: "1500", Name: "Accumulated Depreciation", Type: AccountTypeAsset},

	{Code: "2000", Name: "Accounts Payable", Type: AccountTypeLiability},
	{Code: "2100", Name: "Accrued Expenses", Type: AccountTypeLiability},
	{Code: "2200", Name: "Short-term Debt", Type: AccountTypeLiability},
	{Code: "2300", Name: "Long-term Debt", Type: AccountTypeLiability},
	{Code: "2400", Name: "Taxes Payable", Type: AccountTypeLiability},

	{Code: "3000", Name: "Owner's Equity", Type: AccountTypeEquity},
	{Code: "3100", Name: "Retained Earnings", Type: AccountTypeEquity},
	{Code: "3200", Name: "Capital Contributions", Type: AccountTypeEquity},

	{Code: "4000", Name: "Sales Revenue", Type: AccountTypeRevenue},
	{Code: "4100", Name: "Service Revenue", Type: AccountTypeRevenue},
	{Code: "4200", Name: "Other Income", Type: AccountTypeRevenue},
	{Code: "4300", Name: "Interest Income", Type: AccountTypeRevenue},

	{Code: "5000", Name: "Cost of Goods Sold", Type: AccountTypeExpense},
	{Code: "5100", Name: "Inventory Cost", Type: AccountTypeExpense},
	{Code: "6000", Name: "Operating Expenses", Type: AccountTypeExpense},
	{Code: "6100", Name: "Salaries & Wages", Type: AccountTypeExpense},
	{Code: "6110", Name: "Employee Benefits", Type: AccountTypeExpense},
	{Code: "6200", Name: "Rent", Type: AccountTypeExpense},
	{Code: "6300", Name: "Utilities", Type: AccountTypeExpense},
	{Code: "6400", Name: "Marketing & Advertising", Type: AccountTypeExpense},
	{Code: "6500", Name: "Office Supplies", Type: AccountTypeExpense},
	{Code: "6600", Name: "Professional Services", Type: AccountTypeExpense},
	{Code: "6700", Name: "Depreciation", Type: AccountTypeExpense},
	{Code: "6800", Name: "Interest Expense", Type: AccountTypeExpense},
	{Code: "6900", Name: "Insurance", Type: AccountTypeExpense},
	{Code: "6910", Name: "Repairs & Maintenance", Type: AccountTypeExpense},
	{Code: "6920", Name: "Travel & Entertainment", Type: AccountTypeExpense},
	{Code: "6930", Name: "Taxes & Licenses", Type: AccountTypeExpense},
	{Code: "6940", Name: "Bad Debt Expense", Type: AccountTypeExpense},
	{Code: "6950", Name: "Other Expenses", Type: AccountTypeExpense},
}
