package member

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type Plan string

const (
	PlanOneMonth    Plan = "1 Month"
	PlanThreeMonths Plan = "3 Months"
	PlanSixMonths   Plan = "6 Months"
	PlanOneYear     Plan = "1 Year"
	PlanCustom      Plan = "Custom"
)

func ValidPlan(p Plan) bool {
	switch p {
	case PlanOneMonth, PlanThreeMonths, PlanSixMonths, PlanOneYear, PlanCustom:
		return true
	}
	return false
}

type Status string

const (
	StatusActive   Status = "Active"
	StatusUpcoming Status = "Upcoming"
	StatusExpired  Status = "Expired"
)

// Filter selects members by current-subscription state in list fetches.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterActive   Filter = "active"
	FilterInactive Filter = "inactive"
)

// SubscriptionFilter selects entries of a member's subscription history.
type SubscriptionFilter string

const (
	SubFilterAll      SubscriptionFilter = "all"
	SubFilterCurrent  SubscriptionFilter = "current"
	SubFilterUpcoming SubscriptionFilter = "upcoming"
	SubFilterExpired  SubscriptionFilter = "expired"
)

// PendingStart is the server's sentinel for a subscription whose start
// date has not been set. It flows through days_left and start_date fields
// and must be rendered verbatim, never computed client-side.
const PendingStart = "Pending start"

// PageSize is the fixed page size of the paged member listing.
const PageSize = 10

// DaysLeft is the server-computed remaining validity: either an integer
// day count or a sentinel string such as "Pending start".
type DaysLeft struct {
	set    bool
	isText bool
	days   int
	text   string
}

func (d *DaysLeft) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*d = DaysLeft{set: true, days: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = DaysLeft{set: true, isText: true, text: s}
		return nil
	}
	return fmt.Errorf("days_left: unsupported value %s", data)
}

func (d DaysLeft) MarshalJSON() ([]byte, error) {
	if !d.set {
		return []byte("null"), nil
	}
	if d.isText {
		return json.Marshal(d.text)
	}
	return json.Marshal(d.days)
}

func (d DaysLeft) Known() bool {
	return d.set
}

func (d DaysLeft) Days() (int, bool) {
	return d.days, d.set && !d.isText
}

// String renders the value the way the member list does.
func (d DaysLeft) String() string {
	switch {
	case !d.set:
		return "N/A"
	case d.isText:
		return d.text
	case d.days == 1:
		return "1 Day left"
	default:
		return strconv.Itoa(d.days) + " Days left"
	}
}

type Subscription struct {
	ID        string  `json:"_id"`
	MemberID  string  `json:"member_id,omitempty"`
	Plan      Plan    `json:"plan"`
	Amount    float64 `json:"amount"`
	ExtraDays int     `json:"extra_days"`
	StartDate string  `json:"start_date,omitempty"`
	EndDate   string  `json:"end_date,omitempty"`
	Status    Status  `json:"status"`
	CreatedAt string  `json:"createdAt,omitempty"`
	UpdatedAt string  `json:"updatedAt,omitempty"`
}

type Member struct {
	ID          string         `json:"_id"`
	RollNo      string         `json:"roll_no"`
	Name        string         `json:"name"`
	PhoneNumber string         `json:"phone_number,omitempty"`
	GymID       string         `json:"gym_id,omitempty"`
	Age         int            `json:"age,omitempty"`
	Gender      string         `json:"gender,omitempty"`
	Height      float64        `json:"height,omitempty"`
	Weight      float64        `json:"weight,omitempty"`
	Address     string         `json:"address,omitempty"`
	Image       string         `json:"image,omitempty"`
	StartDate   string         `json:"start_date,omitempty"`
	DaysLeft    DaysLeft       `json:"days_left,omitempty"`
	LatestSub   *Subscription  `json:"latest_subscription,omitempty"`
	Subs        []Subscription `json:"subscriptions,omitempty"`
	CreatedAt   string         `json:"createdAt,omitempty"`
	UpdatedAt   string         `json:"updatedAt,omitempty"`
}

// CurrentPlan is the plan shown on a list row: the first subscription the
// server returned, or N/A.
func (m *Member) CurrentPlan() string {
	if len(m.Subs) > 0 {
		return string(m.Subs[0].Plan)
	}
	return "N/A"
}

type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindDate
)

// Field describes one editable member attribute. Edits and commit
// payloads are driven off this list, not off whatever keys happen to be
// on the entity.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Editable bool
}

var MemberFields = []Field{
	{Name: "name", Label: "Name", Kind: KindText, Editable: true},
	{Name: "roll_no", Label: "Roll No", Kind: KindText, Editable: true},
	{Name: "phone_number", Label: "Phone Number", Kind: KindText, Editable: true},
	{Name: "age", Label: "Age", Kind: KindNumber, Editable: true},
	{Name: "gender", Label: "Gender", Kind: KindText, Editable: true},
	{Name: "height", Label: "Height (cm)", Kind: KindNumber, Editable: true},
	{Name: "weight", Label: "Weight (kg)", Kind: KindNumber, Editable: true},
	{Name: "address", Label: "Address", Kind: KindText, Editable: true},
	{Name: "start_date", Label: "Start Date", Kind: KindDate, Editable: true},
	{Name: "image", Label: "Photo", Kind: KindText, Editable: false},
	{Name: "days_left", Label: "Days Left", Kind: KindText, Editable: false},
}

func fieldByName(name string) (Field, bool) {
	for _, f := range MemberFields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// baselineValue reads a member attribute by field name. The second return
// is false when the attribute is absent on the entity.
func baselineValue(m *Member, name string) (any, bool) {
	switch name {
	case "name":
		return m.Name, m.Name != ""
	case "roll_no":
		return m.RollNo, m.RollNo != ""
	case "phone_number":
		return m.PhoneNumber, m.PhoneNumber != ""
	case "age":
		return m.Age, m.Age != 0
	case "gender":
		return m.Gender, m.Gender != ""
	case "height":
		return m.Height, m.Height != 0
	case "weight":
		return m.Weight, m.Weight != 0
	case "address":
		return m.Address, m.Address != ""
	case "start_date":
		return m.StartDate, m.StartDate != ""
	default:
		return nil, false
	}
}
