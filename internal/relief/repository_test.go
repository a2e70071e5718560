package relief_test

import (
	"errors"
	"testing"
	"time"

	"relief-go/internal/model"
	"relief-go/internal/relief"
	"relief-go/internal/testutil"
)

func TestRepository_EmptyStore(t *testing.T) {
	env := testutil.NewTestEnv(t)
	r := env.Registry

	counts := map[string]int{
		"users":         len(r.Users.List()),
		"households":    len(r.Households.List()),
		"people":        len(r.People.List()),
		"cylinders":     len(r.Cylinders.List()),
		"assignments":   len(r.Assignments.List()),
		"bags":          len(r.Bags.List()),
		"distributions": len(r.Distributions.List()),
		"notifications": len(r.Notifications.List()),
		"visits":        len(r.Visits.List()),
	}
	for name, n := range counts {
		if n != 0 {
			t.Errorf("%s: List() returned %d records, want 0", name, n)
		}
	}
}

func TestRepository_CreateStampsIdentity(t *testing.T) {
	env := testutil.NewTestEnv(t)

	bogus := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	h, err := env.Registry.Households.Create(model.Household{
		ID:           "caller-chosen",
		Address:      "Calle 1",
		TotalMembers: 3,
		CreatedAt:    bogus,
		UpdatedAt:    bogus,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if h.ID != "id-1" {
		t.Errorf("ID = %q, want generated id-1", h.ID)
	}
	now := env.Clock.Now()
	if !h.CreatedAt.Equal(now) || !h.UpdatedAt.Equal(now) {
		t.Errorf("timestamps = %v/%v, want %v", h.CreatedAt, h.UpdatedAt, now)
	}

	list := env.Registry.Households.List()
	if len(list) != 1 {
		t.Fatalf("List() len = %d, want 1", len(list))
	}
	got := list[0]
	if got.ID != h.ID || got.Address != "Calle 1" || got.TotalMembers != 3 || !got.CreatedAt.Equal(now) {
		t.Errorf("List()[0] = %+v, want %+v", got, h)
	}
}

func TestRepository_RoundTripThroughBackend(t *testing.T) {
	env := testutil.NewTestEnv(t)
	h := mustHousehold(t, env, "Calle 1")
	p := mustPerson(t, env, h.ID, "Ana", "Perez", true)

	restarted := testutil.NewTestEnvOnBackend(t, env.Backend, relief.DeleteRestrict)

	got, ok := restarted.Registry.People.Get(p.ID)
	if !ok {
		t.Fatal("person not found after restart")
	}
	if !got.BirthDate.Equal(p.BirthDate) || !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("dates did not survive: got %v/%v, want %v/%v", got.BirthDate, got.CreatedAt, p.BirthDate, p.CreatedAt)
	}
	if got.FullName() != "Ana Perez" || !got.IsHeadOfFamily || got.HouseholdID != h.ID {
		t.Errorf("fields did not survive: %+v", got)
	}
}

func TestRepository_Update(t *testing.T) {
	t.Run("merges fields and refreshes update time", func(t *testing.T) {
		env := testutil.NewTestEnv(t)
		h := mustHousehold(t, env, "Calle 1")
		env.Clock.Advance(time.Hour)

		got, found, err := env.Registry.Households.Update(h.ID, func(h *model.Household) {
			h.Phone = "555-0199"
			h.ID = "hijacked"
			h.CreatedAt = time.Time{}
		})
		if err != nil || !found {
			t.Fatalf("Update() = found %v, err %v", found, err)
		}

		if got.ID != h.ID || !got.CreatedAt.Equal(h.CreatedAt) {
			t.Errorf("identity changed: %q/%v", got.ID, got.CreatedAt)
		}
		if !got.UpdatedAt.Equal(env.Clock.Now()) {
			t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, env.Clock.Now())
		}
		if got.Phone != "555-0199" || got.Address != h.Address {
			t.Errorf("Update() = %+v", got)
		}

		stored, _ := env.Registry.Households.Get(h.ID)
		if stored.Phone != "555-0199" {
			t.Errorf("stored Phone = %q", stored.Phone)
		}
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		env := testutil.NewTestEnv(t)
		mustHousehold(t, env, "Calle 1")
		before := env.Backend.PutCalls()

		_, found, err := env.Registry.Households.Update("missing", func(h *model.Household) { h.Address = "x" })
		if err != nil || found {
			t.Errorf("Update() = found %v, err %v; want false, nil", found, err)
		}
		if env.Backend.PutCalls() != before {
			t.Error("Update() of unknown id wrote to the backend")
		}
	})

	t.Run("rejected update stores nothing", func(t *testing.T) {
		env := testutil.NewTestEnv(t)
		h := mustHousehold(t, env, "Calle 1")

		_, found, err := env.Registry.Households.Update(h.ID, func(h *model.Household) { h.TotalMembers = 0 })
		if !found || !errors.Is(err, relief.ErrValidation) {
			t.Fatalf("Update() = found %v, err %v; want ErrValidation", found, err)
		}
		stored, _ := env.Registry.Households.Get(h.ID)
		if stored.TotalMembers != 3 {
			t.Errorf("TotalMembers = %d, want 3", stored.TotalMembers)
		}
	})
}

func TestRepository_CreateValidation(t *testing.T) {
	env := testutil.NewTestEnv(t)
	h := mustHousehold(t, env, "Calle 1")

	tests := []struct {
		name   string
		create func() error
		field  string
	}{
		{
			name: "household without address",
			create: func() error {
				_, err := env.Registry.Households.Create(model.Household{TotalMembers: 1})
				return err
			},
			field: "address",
		},
		{
			name: "household with no members",
			create: func() error {
				_, err := env.Registry.Households.Create(model.Household{Address: "x"})
				return err
			},
			field: "totalMembers",
		},
		{
			name: "person with bad gender",
			create: func() error {
				_, err := env.Registry.People.Create(model.Person{
					HouseholdID: h.ID, FirstName: "A", LastName: "B",
					BirthDate: day(1990, 1, 1), Gender: "unknown",
				})
				return err
			},
			field: "gender",
		},
		{
			name: "cylinder with zero capacity",
			create: func() error {
				_, err := env.Registry.Cylinders.Create(model.GasCylinder{
					SerialNumber: "C-1", Status: model.CylinderAvailable, Condition: model.ConditionGood,
				})
				return err
			},
			field: "capacity",
		},
		{
			name: "bag with unknown type",
			create: func() error {
				_, err := env.Registry.Bags.Create(model.Bag{Type: "wet", Contents: "x"})
				return err
			},
			field: "type",
		},
		{
			name: "targeted notification without targets",
			create: func() error {
				_, err := env.Registry.Notifications.Create(model.Notification{
					Title: "t", Message: "m", Type: model.NotificationInfo,
					Priority: model.PriorityLow, TargetType: model.TargetHousehold,
				})
				return err
			},
			field: "targetIds",
		},
		{
			name: "visit with next visit before visit",
			create: func() error {
				next := day(2024, 1, 1)
				_, err := env.Registry.Visits.Create(model.Visit{
					HouseholdID: h.ID, VisitDate: day(2024, 2, 1), VisitType: model.VisitRoutine,
					VisitedBy: "admin", NextVisitDate: &next,
				})
				return err
			},
			field: "nextVisitDate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := env.Backend.PutCalls()
			err := tt.create()

			var ve *relief.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Create() error = %v, want *ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("ValidationError.Field = %q, want %q", ve.Field, tt.field)
			}
			if env.Backend.PutCalls() != before {
				t.Error("rejected Create() wrote to the backend")
			}
		})
	}
}

func TestRepository_Remove(t *testing.T) {
	env := testutil.NewTestEnv(t)
	b := mustBag(t, env)

	found, err := env.Registry.Bags.Remove(b.ID)
	if err != nil || !found {
		t.Fatalf("Remove() = %v, %v", found, err)
	}
	if _, ok := env.Registry.Bags.Get(b.ID); ok {
		t.Error("bag still present after Remove()")
	}

	found, err = env.Registry.Bags.Remove(b.ID)
	if err != nil || found {
		t.Errorf("second Remove() = %v, %v; want false, nil", found, err)
	}
}

func TestRepository_CreateWithPersistenceFailure(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.Backend.FailPuts(true)

	h, err := env.Registry.Households.Create(model.Household{Address: "Calle 9", TotalMembers: 1})
	if !relief.IsWarning(err) {
		t.Fatalf("Create() error = %v, want persistence warning", err)
	}
	if h.ID == "" {
		t.Error("Create() should still return the record")
	}
	if _, ok := env.Registry.Households.Get(h.ID); !ok {
		t.Error("record should be visible in memory")
	}
}

func TestRepository_BackendReadFailureAbortsWrites(t *testing.T) {
	env := testutil.NewTestEnv(t)
	h1 := mustHousehold(t, env, "Calle 1")
	mustHousehold(t, env, "Calle 2")
	mustHousehold(t, env, "Calle 3")

	restarted := testutil.NewTestEnvOnBackend(t, env.Backend, relief.DeleteRestrict)
	env.Backend.FailGets(true)
	puts := env.Backend.PutCalls()
	households := restarted.Registry.Households

	tests := []struct {
		name string
		op   func() error
	}{
		{"create", func() error {
			_, err := households.Create(model.Household{Address: "Calle 4", TotalMembers: 1})
			return err
		}},
		{"update", func() error {
			_, _, err := households.Update(h1.ID, func(h *model.Household) { h.Phone = "0414" })
			return err
		}},
		{"remove", func() error {
			_, err := households.Remove(h1.ID)
			return err
		}},
		{"remove where", func() error {
			_, err := households.RemoveWhere(func(*model.Household) bool { return true })
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !errors.Is(err, relief.ErrUnavailable) {
				t.Errorf("error = %v, want ErrUnavailable", err)
			}
		})
	}

	if got := env.Backend.PutCalls(); got != puts {
		t.Errorf("backend Put called %d times during the outage, want 0", got-puts)
	}

	env.Backend.FailGets(false)
	after := testutil.NewTestEnvOnBackend(t, env.Backend, relief.DeleteRestrict)
	if got := len(after.Registry.Households.List()); got != 3 {
		t.Errorf("households after the outage = %d, want 3", got)
	}
}
