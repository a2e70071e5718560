package relief

import (
	"strconv"
	"strings"

	"relief-go/internal/model"
)

// DefaultMinPasswordLength is the shortest password the recovery and
// registration forms accept.
const DefaultMinPasswordLength = 6

// bcrypt ignores anything past 72 bytes, so longer secrets are refused.
const maxSecretBytes = 72

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ValidateCredentials rejects an empty username or password before any
// lookup happens.
func ValidateCredentials(username, password string) error {
	if err := required("username", username); err != nil {
		return err
	}
	return required("password", password)
}

// ValidateNewPassword checks a new password against its confirmation and a
// minimum length. minLength <= 0 selects DefaultMinPasswordLength.
func ValidateNewPassword(password, confirm string, minLength int) error {
	if minLength <= 0 {
		minLength = DefaultMinPasswordLength
	}
	if err := required("password", password); err != nil {
		return err
	}
	if password != confirm {
		return invalid("password", "confirmation does not match")
	}
	if len([]rune(password)) < minLength {
		return invalid("password", "must be at least "+strconv.Itoa(minLength)+" characters")
	}
	if len(password) > maxSecretBytes {
		return invalid("password", "must be at most 72 bytes")
	}
	return nil
}

func validateUser(u, _ *model.User) error {
	for _, f := range []struct{ name, value string }{
		{"username", u.Username},
		{"password", u.Password},
		{"securityQuestion", u.SecurityQuestion},
		{"securityAnswer", u.SecurityAnswer},
	} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}
	if strings.TrimSpace(u.Username) != u.Username {
		return invalid("username", "must not start or end with spaces")
	}
	if !u.Role.Valid() {
		return invalid("role", "must be admin, coordinator or volunteer")
	}
	return nil
}

func validateHousehold(h, _ *model.Household) error {
	if err := required("address", h.Address); err != nil {
		return err
	}
	if h.TotalMembers < 1 {
		return invalid("totalMembers", "must be at least 1")
	}
	return nil
}

func validatePerson(p, _ *model.Person) error {
	for _, f := range []struct{ name, value string }{
		{"householdId", p.HouseholdID},
		{"firstName", p.FirstName},
		{"lastName", p.LastName},
	} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}
	if p.BirthDate.IsZero() {
		return invalid("birthDate", "is required")
	}
	if !p.Gender.Valid() {
		return invalid("gender", "must be male, female or other")
	}
	return nil
}

func validateCylinder(c, _ *model.GasCylinder) error {
	if err := required("serialNumber", c.SerialNumber); err != nil {
		return err
	}
	if c.Capacity <= 0 {
		return invalid("capacity", "must be positive")
	}
	if !c.Status.Valid() {
		return invalid("status", "must be available, assigned, maintenance or retired")
	}
	if !c.Condition.Valid() {
		return invalid("condition", "must be excellent, good, fair or poor")
	}
	return nil
}

func validateAssignment(a, _ *model.CylinderAssignment) error {
	for _, f := range []struct{ name, value string }{
		{"cylinderId", a.CylinderID},
		{"householdId", a.HouseholdID},
		{"assignedBy", a.AssignedBy},
	} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}
	if a.AssignedDate.IsZero() {
		return invalid("assignedDate", "is required")
	}
	if !a.Status.Valid() {
		return invalid("status", "must be active, returned or lost")
	}
	if a.ReturnedDate != nil && a.ReturnedDate.Before(a.AssignedDate) {
		return invalid("returnedDate", "is before assignedDate")
	}
	return nil
}

func validateBag(b, _ *model.Bag) error {
	if !b.Type.Valid() {
		return invalid("type", "must be cold or dry")
	}
	if err := required("contents", b.Contents); err != nil {
		return err
	}
	if b.Quantity < 0 {
		return invalid("quantity", "must not be negative")
	}
	return nil
}

func validateDistribution(d, _ *model.BagDistribution) error {
	for _, f := range []struct{ name, value string }{
		{"bagId", d.BagID},
		{"householdId", d.HouseholdID},
		{"distributedBy", d.DistributedBy},
		{"receivedBy", d.ReceivedBy},
	} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}
	if d.DistributedDate.IsZero() {
		return invalid("distributedDate", "is required")
	}
	if d.Quantity < 1 {
		return invalid("quantity", "must be at least 1")
	}
	return nil
}

func validateNotification(n, _ *model.Notification) error {
	if err := required("title", n.Title); err != nil {
		return err
	}
	if err := required("message", n.Message); err != nil {
		return err
	}
	if !n.Type.Valid() {
		return invalid("type", "must be info, warning, success or error")
	}
	if !n.Priority.Valid() {
		return invalid("priority", "must be low, medium, high or urgent")
	}
	if !n.TargetType.Valid() {
		return invalid("targetType", "must be all, household or individual")
	}
	if n.TargetType != model.TargetAll && len(n.TargetIDs) == 0 {
		return invalid("targetIds", "are required for targetType "+string(n.TargetType))
	}
	return nil
}

func validateVisit(v, _ *model.Visit) error {
	if err := required("householdId", v.HouseholdID); err != nil {
		return err
	}
	if v.VisitDate.IsZero() {
		return invalid("visitDate", "is required")
	}
	if !v.VisitType.Valid() {
		return invalid("visitType", "must be routine, emergency, follow-up or delivery")
	}
	if err := required("visitedBy", v.VisitedBy); err != nil {
		return err
	}
	if v.NextVisitDate != nil && v.NextVisitDate.Before(v.VisitDate) {
		return invalid("nextVisitDate", "is before visitDate")
	}
	return nil
}
