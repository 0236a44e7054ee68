package accounts

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/openbooks-app/openbooks/internal/ledger/shared"
)

// CreateInput groups fields for creating an account.
type CreateInput struct {
	Code     string
	Name     string
	Type     AccountType
	ParentID *int64
}

// UpdateInput groups fields for editing an account. All fields are applied;
// callers load the current account first and submit the full state, matching
// the edit form semantics.
type UpdateInput struct {
	Code     string
	Name     string
	Type     AccountType
	ParentID *int64
	IsActive bool
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (in CreateInput) validate() error {
	if in.Code == "" {
		return fmt.Errorf("%w: code is required", shared.ErrInvalidInput)
	}
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: unknown account type %q", shared.ErrInvalidInput, in.Type)
	}
	return nil
}

// Create adds an account to the organization's chart. The code must be unique
// within the organization and the parent, when given, must belong to it.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, in CreateInput) (Account, error) {
	if err := in.validate(); err != nil {
		return Account{}, err
	}
	if _, err := s.repo.GetByCode(ctx, orgID, in.Code); err == nil {
		return Account{}, shared.ErrDuplicateCode
	} else if !errors.Is(err, shared.ErrAccountNotFound) {
		return Account{}, err
	}
	if in.ParentID != nil {
		if _, err := s.repo.Get(ctx, orgID, *in.ParentID); err != nil {
			if errors.Is(err, shared.ErrAccountNotFound) {
				return Account{}, shared.ErrParentNotFound
			}
			return Account{}, err
		}
	}
	return s.repo.Create(ctx, Account{
		OrgID:    orgID,
		Code:     in.Code,
		Name:     in.Name,
		Type:     in.Type,
		ParentID: in.ParentID,
		IsActive: true,
	})
}

// Update edits an account. System accounts are protected, code changes must
// not collide, and parent changes must not create a cycle.
func (s *Service) Update(ctx context.Context, orgID uuid.UUID, id int64, in UpdateInput) (Account, error) {
	if err := (CreateInput{Code: in.Code, Name: in.Name, Type: in.Type}).validate(); err != nil {
		return Account{}, err
	}
	current, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return Account{}, err
	}
	if current.IsSystem {
		return Account{}, shared.ErrSystemAccount
	}
	if in.Code != current.Code {
		if _, err := s.repo.GetByCode(ctx, orgID, in.Code); err == nil {
			return Account{}, shared.ErrDuplicateCode
		} else if !errors.Is(err, shared.ErrAccountNotFound) {
			return Account{}, err
		}
	}
	if in.ParentID != nil {
		if err := s.checkAncestry(ctx, orgID, id, *in.ParentID); err != nil {
			return Account{}, err
		}
	}
	current.Code = in.Code
	current.Name = in.Name
	current.Type = in.Type
	current.ParentID = in.ParentID
	current.IsActive = in.IsActive
	return s.repo.Update(ctx, current)
}

// checkAncestry verifies the proposed parent exists and that walking its
// ancestor chain never reaches the account being edited.
func (s *Service) checkAncestry(ctx context.Context, orgID uuid.UUID, id, parentID int64) error {
	if parentID == id {
		return shared.ErrParentCycle
	}
	seen := map[int64]bool{id: true}
	next := parentID
	for {
		ancestor, err := s.repo.Get(ctx, orgID, next)
		if err != nil {
			if errors.Is(err, shared.ErrAccountNotFound) && next == parentID {
				return shared.ErrParentNotFound
			}
			return err
		}
		if seen[ancestor.ID] {
			return shared.ErrParentCycle
		}
		seen[ancestor.ID] = true
		if ancestor.ParentID == nil {
			return nil
		}
		next = *ancestor.ParentID
	}
}

// DeleteOrDeactivate hard-deletes the account when it has no postings and no
// children; otherwise it reports ErrAccountInUse and the caller should
// deactivate instead. Deactivate flips the active flag off.
func (s *Service) DeleteOrDeactivate(ctx context.Context, orgID uuid.UUID, id int64) error {
	account, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	if account.IsSystem {
		return shared.ErrSystemAccount
	}
	postings, err := s.repo.CountPostings(ctx, orgID, id)
	if err != nil {
		return err
	}
	children, err := s.repo.CountChildren(ctx, orgID, id)
	if err != nil {
		return err
	}
	if postings > 0 || children > 0 {
		return shared.ErrAccountInUse
	}
	return s.repo.Delete(ctx, orgID, id)
}

// Deactivate soft-deletes an account by clearing its active flag.
func (s *Service) Deactivate(ctx context.Context, orgID uuid.UUID, id int64) (Account, error) {
	account, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return Account{}, err
	}
	if account.IsSystem {
		return Account{}, shared.ErrSystemAccount
	}
	account.IsActive = false
	return s.repo.Update(ctx, account)
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, orgID uuid.UUID, id int64) (Account, error) {
	return s.repo.Get(ctx, orgID, id)
}

// Children returns the active direct children of an account, ordered by code.
func (s *Service) Children(ctx context.Context, orgID uuid.UUID, id int64) ([]Account, error) {
	return s.repo.Children(ctx, orgID, id)
}

// Tree assembles the organization's active accounts into a forest. Accounts
// whose parent is missing from the active set become roots. Siblings are
// ordered by account type, then code.
func (s *Service) Tree(ctx context.Context, orgID uuid.UUID) ([]*TreeNode, error) {
	list, err := s.repo.List(ctx, orgID, true)
	if err != nil {
		return nil, err
	}
	nodes := make(map[int64]*TreeNode, len(list))
	for _, a := range list {
		nodes[a.ID] = &TreeNode{Account: a}
	}
	var roots []*TreeNode
	for _, a := range list {
		node := nodes[a.ID]
		if a.ParentID != nil {
			if parent, ok := nodes[*a.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	sortNodes(roots)
	for _, node := range nodes {
		sortNodes(node.Children)
	}
	return roots, nil
}

func sortNodes(nodes []*TreeNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Type != nodes[j].Type {
			return typeOrder[nodes[i].Type] < typeOrder[nodes[j].Type]
		}
		return nodes[i].Code < nodes[j].Code
	})
}

// InitializeDefaults installs the standard chart for the organization. Codes
// already present are skipped, so repeated calls only fill gaps. Returns the
// number of accounts created.
func (s *Service) InitializeDefaults(ctx context.Context, orgID uuid.UUID) (int, error) {
	existing, err := s.repo.List(ctx, orgID, false)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, a := range existing {
		have[a.Code] = true
	}
	created := 0
	for _, def := range DefaultChart {
		if have[def.Code] {
			continue
		}
		_, err := s.repo.Create(ctx, Account{
			OrgID:    orgID,
			Code:     def.Code,
			Name:     def.Name,
			Type:     def.Type,
			IsActive: true,
			IsSystem: true,
		})
		if err != nil {
			// A concurrent initialize may have won the insert; that still
			// satisfies idempotency.
			if errors.Is(err, shared.ErrDuplicateCode) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}
