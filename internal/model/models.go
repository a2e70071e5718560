package model

import "time"

// Record is implemented by every stored entity. Identity and timestamps are
// owned by the repository, which calls Stamp on create and on every update.
type Record interface {
	RecordID() string
	Created() time.Time
	// Stamp sets the identifier and creation time, and refreshes the update
	// time on entities that track one.
	Stamp(id string, createdAt, now time.Time)
}

// User is an account able to log in.
// Password and SecurityAnswer hold bcrypt hashes; records written by older
// versions may still carry plaintext values until their next login or recovery.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"` // unique
	Password         string    `json:"password"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Role             Role      `json:"role"`
	SecurityQuestion string    `json:"securityQuestion"`
	SecurityAnswer   string    `json:"securityAnswer"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Household is a registered dwelling receiving aid.
type Household struct {
	ID           string    `json:"id"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	Location     string    `json:"location"`
	HeadOfFamily string    `json:"headOfFamily"` // free-text name as entered on the household form
	TotalMembers int       `json:"totalMembers"` // at least 1
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Person is a resident linked to a Household.
type Person struct {
	ID                string    `json:"id"`
	HouseholdID       string    `json:"householdId"` // foreign key to Household
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Identification    string    `json:"identification"`
	BirthDate         time.Time `json:"birthDate"`
	Gender            Gender    `json:"gender"`
	Relationship      string    `json:"relationship"`
	IsHeadOfFamily    bool      `json:"isHeadOfFamily"` // at most one per household
	Phone             string    `json:"phone,omitempty"`
	Email             string    `json:"email,omitempty"`
	MedicalConditions string    `json:"medicalConditions,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// GasCylinder is a physical cylinder in the inventory.
type GasCylinder struct {
	ID           string            `json:"id"`
	SerialNumber string            `json:"serialNumber"`
	Capacity     float64           `json:"capacity"` // kg
	Status       CylinderStatus    `json:"status"`
	Condition    CylinderCondition `json:"condition"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// CylinderAssignment records a cylinder handed to a household.
type CylinderAssignment struct {
	ID           string           `json:"id"`
	CylinderID   string           `json:"cylinderId"`  // foreign key to GasCylinder
	HouseholdID  string           `json:"householdId"` // foreign key to Household
	AssignedDate time.Time        `json:"assignedDate"`
	ReturnedDate *time.Time       `json:"returnedDate,omitempty"`
	Status       AssignmentStatus `json:"status"` // at most one active per cylinder
	Notes        string           `json:"notes,omitempty"`
	AssignedBy   string           `json:"assignedBy"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// Bag is a stock item of food or medicine.
type Bag struct {
	ID             string     `json:"id"`
	Type           BagType    `json:"type"`
	Contents       string     `json:"contents"`
	Quantity       int        `json:"quantity"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// BagDistribution records bags delivered to a household.
type BagDistribution struct {
	ID              string    `json:"id"`
	BagID           string    `json:"bagId"`       // foreign key to Bag
	HouseholdID     string    `json:"householdId"` // foreign key to Household
	DistributedDate time.Time `json:"distributedDate"`
	Quantity        int       `json:"quantity"`
	DistributedBy   string    `json:"distributedBy"`
	ReceivedBy      string    `json:"receivedBy"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Notification is a message for everyone, some households, or some people.
// TargetIDs name households or people depending on TargetType.
type Notification struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Type       NotificationType `json:"type"`
	Priority   Priority         `json:"priority"`
	TargetType TargetType       `json:"targetType"`
	TargetIDs  []string         `json:"targetIds,omitempty"`
	CreatedBy  string           `json:"createdBy"`
	CreatedAt  time.Time        `json:"createdAt"`
	ReadBy     []string         `json:"readBy"` // user IDs
}

// Visit records a field visit to a household.
type Visit struct {
	ID            string     `json:"id"`
	HouseholdID   string     `json:"householdId"` // foreign key to Household
	VisitDate     time.Time  `json:"visitDate"`
	VisitType     VisitType  `json:"visitType"`
	Purpose       string     `json:"purpose"`
	Findings      string     `json:"findings"`
	Actions       string     `json:"actions"`
	NextVisitDate *time.Time `json:"nextVisitDate,omitempty"`
	VisitedBy     string     `json:"visitedBy"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// FullName joins first and last name.
func (p *Person) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// IsActive reports whether the cylinder is still with the household.
func (a *CylinderAssignment) IsActive() bool { return a.Status == AssignmentActive }

// IsReadBy reports whether userID has already read the notification.
func (n *Notification) IsReadBy(userID string) bool {
	for _, id := range n.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Targets reports whether the notification is addressed to the given
// household or person. Either argument may be empty.
func (n *Notification) Targets(householdID, personID string) bool {
	switch n.TargetType {
	case TargetAll:
		return true
	case TargetHousehold:
		return householdID != "" && contains(n.TargetIDs, householdID)
	case TargetIndividual:
		return personID != "" && contains(n.TargetIDs, personID)
	}
	return false
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
