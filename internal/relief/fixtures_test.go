package relief_test

import (
	"testing"
	"time"

	"relief-go/internal/model"
	"relief-go/internal/testutil"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func mustHousehold(t *testing.T, env *testutil.Env, address string) model.Household {
	t.Helper()
	h, err := env.Registry.Households.Create(model.Household{
		Address:      address,
		Phone:        "555-0100",
		Location:     "Sector 4",
		HeadOfFamily: "Ana Perez",
		TotalMembers: 3,
	})
	if err != nil {
		t.Fatalf("creating household: %v", err)
	}
	return h
}

func mustPerson(t *testing.T, env *testutil.Env, householdID, first, last string, head bool) model.Person {
	t.Helper()
	p, err := env.Registry.People.Create(model.Person{
		HouseholdID:    householdID,
		FirstName:      first,
		LastName:       last,
		Identification: "V-" + first,
		BirthDate:      day(1980, time.March, 2),
		Gender:         model.GenderFemale,
		Relationship:   "self",
		IsHeadOfFamily: head,
	})
	if err != nil {
		t.Fatalf("creating person: %v", err)
	}
	return p
}

func mustCylinder(t *testing.T, env *testutil.Env, serial string) model.GasCylinder {
	t.Helper()
	c, err := env.Registry.Cylinders.Create(model.GasCylinder{
		SerialNumber: serial,
		Capacity:     10,
		Status:       model.CylinderAvailable,
		Condition:    model.ConditionGood,
	})
	if err != nil {
		t.Fatalf("creating cylinder: %v", err)
	}
	return c
}

func mustAssignment(t *testing.T, env *testutil.Env, cylinderID, householdID string) model.CylinderAssignment {
	t.Helper()
	a, err := env.Registry.Assignments.Create(model.CylinderAssignment{
		CylinderID:   cylinderID,
		HouseholdID:  householdID,
		AssignedDate: day(2024, time.January, 10),
		Status:       model.AssignmentActive,
		AssignedBy:   "admin",
	})
	if err != nil {
		t.Fatalf("creating assignment: %v", err)
	}
	return a
}

func mustBag(t *testing.T, env *testutil.Env) model.Bag {
	t.Helper()
	b, err := env.Registry.Bags.Create(model.Bag{
		Type:     model.BagDry,
		Contents: "rice, beans",
		Quantity: 20,
	})
	if err != nil {
		t.Fatalf("creating bag: %v", err)
	}
	return b
}

func mustDistribution(t *testing.T, env *testutil.Env, bagID, householdID string, on time.Time) model.BagDistribution {
	t.Helper()
	d, err := env.Registry.Distributions.Create(model.BagDistribution{
		BagID:           bagID,
		HouseholdID:     householdID,
		DistributedDate: on,
		Quantity:        1,
		DistributedBy:   "admin",
		ReceivedBy:      "Ana",
	})
	if err != nil {
		t.Fatalf("creating distribution: %v", err)
	}
	return d
}

func mustVisit(t *testing.T, env *testutil.Env, householdID string, on time.Time) model.Visit {
	t.Helper()
	v, err := env.Registry.Visits.Create(model.Visit{
		HouseholdID: householdID,
		VisitDate:   on,
		VisitType:   model.VisitRoutine,
		Purpose:     "census",
		VisitedBy:   "admin",
	})
	if err != nil {
		t.Fatalf("creating visit: %v", err)
	}
	return v
}
