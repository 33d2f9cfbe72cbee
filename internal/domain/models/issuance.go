package models

import (
	"fmt"
	"strings"
	"time"
)

// Party is one of the two people between whom custody of an item can move.
// The set is closed: every issuance goes from one party to the other.
type Party string

const (
	PartyHarsh  Party = "Harsh"
	PartyGaurav Party = "Gaurav"
)

// ParseParty resolves a free-form name to a Party, case-insensitively.
func ParseParty(name string) (Party, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "harsh":
		return PartyHarsh, nil
	case "gaurav":
		return PartyGaurav, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownParty, name)
	}
}

// Counterpart returns the other member of the two-party set.
func (p Party) Counterpart() Party {
	if p == PartyHarsh {
		return PartyGaurav
	}
	return PartyHarsh
}

// ComponentStatus records the condition an issued component came back in.
type ComponentStatus string

const (
	ComponentOK     ComponentStatus = "ok"
	ComponentFaulty ComponentStatus = "faulty"
	ComponentLost   ComponentStatus = "lost"
)

// ParseComponentStatus resolves a free-form status string.
func ParseComponentStatus(s string) (ComponentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ok":
		return ComponentOK, nil
	case "faulty":
		return ComponentFaulty, nil
	case "lost":
		return ComponentLost, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownComponentStatus, s)
	}
}

// RestoresStock reports whether a return in this condition puts the unit
// back on the shelf. A lost unit is written off.
func (s ComponentStatus) RestoresStock() bool {
	return s == ComponentOK || s == ComponentFaulty
}

// IssueCondition marks whether the loan is expected to come back at all.
type IssueCondition string

const (
	ConditionReturnable    IssueCondition = "returnable"
	ConditionNonReturnable IssueCondition = "non_returnable"
)

// Issuance is one unit-of-quantity transfer of an item between the two
// parties. It is a two-state record: Received is false while the loan is
// open and flips to true exactly once, never back.
type Issuance struct {
	ID              string          `bson:"_id" json:"id"`
	ItemID          string          `bson:"item_id" json:"item_id"`
	Quantity        int64           `bson:"quantity" json:"quantity"`
	Issuer          Party           `bson:"issuer" json:"issuer"`
	Receiver        Party           `bson:"receiver" json:"receiver"`
	User            string          `bson:"user" json:"user"`
	IssueDate       time.Time       `bson:"issue_date" json:"issue_date"`
	ReceiveDate     *time.Time      `bson:"receive_date,omitempty" json:"receive_date,omitempty"`
	ComponentStatus ComponentStatus `bson:"component_status" json:"component_status"`
	IssueCondition  IssueCondition  `bson:"issue_condition" json:"issue_condition"`
	Remark          string          `bson:"remark" json:"remark"`
	Received        bool            `bson:"received" json:"received"`
}

// AppendRemark joins a new note onto the existing remark, newline-separated.
// Remarks only ever grow.
func AppendRemark(existing, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
