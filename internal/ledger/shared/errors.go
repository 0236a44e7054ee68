package shared

import "errors"

var (
	// ErrInvalidInput indicates malformed input rejected before touching storage.
	ErrInvalidInput = errors.New("ledger: invalid input")
	// ErrAccountNotFound indicates a dangling account reference.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrParentNotFound indicates the referenced parent account does not exist.
	ErrParentNotFound = errors.New("ledger: parent account not found")
	// ErrDuplicateCode indicates the account code collides within the organization.
	ErrDuplicateCode = errors.New("ledger: account code already exists")
	// ErrParentCycle indicates a parent assignment would make an account its own ancestor.
	ErrParentCycle = errors.New("ledger: parent assignment creates a cycle")
	// ErrSystemAccount indicates an edit or delete on a protected default account.
	ErrSystemAccount = errors.New("ledger: system accounts cannot be modified")
	// ErrAccountInUse indicates a hard delete on an account with postings or children.
	ErrAccountInUse = errors.New("ledger: account has postings or sub-accounts")
	// ErrTooFewLines indicates a journal entry with fewer than two lines.
	ErrTooFewLines = errors.New("ledger: journal requires at least two lines")
	// ErrUnbalanced indicates total debits differ from total credits.
	ErrUnbalanced = errors.New("ledger: journal lines must balance")
	// ErrEntryNotFound indicates a missing posting or reference group.
	ErrEntryNotFound = errors.New("ledger: entry not found")
	// ErrNotJournal indicates a delete on automatically generated postings.
	ErrNotJournal = errors.New("ledger: only manual journal entries can be deleted")
)
