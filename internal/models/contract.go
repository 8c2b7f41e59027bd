package models

import "time"

// ContractStatus is the lifecycle state of a group's accountability contract.
type ContractStatus string

const (
	// ContractPending means the contract has been proposed but not yet
	// activated by the group admin.
	ContractPending ContractStatus = "Pending"

	// ContractActive means the contract is in force. Only groups with an
	// Active contract participate in weekly settlement.
	ContractActive ContractStatus = "Active"

	// ContractPaused means the contract is temporarily suspended (e.g.,
	// holidays). Paused groups are skipped by settlement entirely.
	ContractPaused ContractStatus = "Paused"
)

// Contract is a group's accountability agreement: the commitment that makes
// members subject to weekly point evaluation. Contracts are created and
// transitioned by group admins; the settlement job only reads them.
type Contract struct {
	// ID is the unique identifier for the contract (UUID format).
	ID string

	// GroupID is the group this contract binds. A group has at most one
	// active contract at a time.
	GroupID string

	// Status is the current lifecycle state.
	Status ContractStatus

	// CreatedAt is when the contract was created.
	CreatedAt time.Time
}
