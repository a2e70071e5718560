package model

import (
	"encoding/json"
	"strings"
)

// Role is a User's role.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleVolunteer   Role = "volunteer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleVolunteer:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Short returns the one-letter form used in reports.
func (g Gender) Short() string {
	switch g {
	case GenderMale:
		return "M"
	case GenderFemale:
		return "F"
	}
	return "O"
}

type CylinderStatus string

const (
	CylinderAvailable   CylinderStatus = "available"
	CylinderAssigned    CylinderStatus = "assigned"
	CylinderMaintenance CylinderStatus = "maintenance"
	CylinderRetired     CylinderStatus = "retired"
)

func (s CylinderStatus) Valid() bool {
	switch s {
	case CylinderAvailable, CylinderAssigned, CylinderMaintenance, CylinderRetired:
		return true
	}
	return false
}

type CylinderCondition string

const (
	ConditionExcellent CylinderCondition = "excellent"
	ConditionGood      CylinderCondition = "good"
	ConditionFair      CylinderCondition = "fair"
	ConditionPoor      CylinderCondition = "poor"
)

func (c CylinderCondition) Valid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

type AssignmentStatus string

const (
	AssignmentActive   AssignmentStatus = "active"
	AssignmentReturned AssignmentStatus = "returned"
	AssignmentLost     AssignmentStatus = "lost"
)

func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentActive, AssignmentReturned, AssignmentLost:
		return true
	}
	return false
}

// Label returns the human-readable status used in reports.
func (s AssignmentStatus) Label() string {
	switch s {
	case AssignmentActive:
		return "Active"
	case AssignmentReturned:
		return "Returned"
	}
	return "Lost"
}

// BagType is cold or dry. Older data stored the Spanish words "fria" and
// "seca"; both are accepted when decoding and normalized to the English form.
type BagType string

const (
	BagCold BagType = "cold"
	BagDry  BagType = "dry"
)

var legacyBagTypes = map[string]BagType{
	"fria": BagCold,
	"fría": BagCold,
	"seca": BagDry,
}

func (t BagType) Valid() bool {
	return t == BagCold || t == BagDry
}

func (t *BagType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if legacy, ok := legacyBagTypes[strings.ToLower(s)]; ok {
		*t = legacy
		return nil
	}
	*t = BagType(s)
	return nil
}

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationWarning, NotificationSuccess, NotificationError:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TargetType selects how Notification.TargetIDs is interpreted.
type TargetType string

const (
	TargetAll        TargetType = "all"
	TargetHousehold  TargetType = "household"
	TargetIndividual TargetType = "individual"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetAll, TargetHousehold, TargetIndividual:
		return true
	}
	return false
}

type VisitType string

const (
	VisitRoutine   VisitType = "routine"
	VisitEmergency VisitType = "emergency"
	VisitFollowUp  VisitType = "follow-up"
	VisitDelivery  VisitType = "delivery"
)

func (t VisitType) Valid() bool {
	switch t {
	case VisitRoutine, VisitEmergency, VisitFollowUp, VisitDelivery:
		return true
	}
	return false
}

// Label returns the human-readable visit type used in reports.
func (t VisitType) Label() string {
	switch t {
	case VisitRoutine:
		return "Routine"
	case VisitEmergency:
		return "Emergency"
	case VisitFollowUp:
		return "Follow-up"
	}
	return "Delivery"
}
