package relief

import (
	"errors"
	"fmt"

	"relief-go/internal/model"
)

// DeletePolicy decides what happens to the records that reference a
// household when it is deleted.
type DeletePolicy string

const (
	// DeleteRestrict refuses the delete while dependents exist.
	DeleteRestrict DeletePolicy = "restrict"
	// DeleteCascade removes dependents together with the household.
	DeleteCascade DeletePolicy = "cascade"
)

// ParseDeletePolicy converts a configuration value. Empty selects restrict.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(s) {
	case "", DeleteRestrict:
		return DeleteRestrict, nil
	case DeleteCascade:
		return DeleteCascade, nil
	}
	return "", fmt.Errorf("unknown household delete policy %q (want restrict or cascade)", s)
}

// RegistryOptions configures NewRegistry. Zero values select the real clock,
// UUIDs, a no-op logger and the restrict policy.
type RegistryOptions struct {
	Clock           Clock
	IDs             IDGenerator
	Logger          Logger
	HouseholdDelete DeletePolicy
}

// Registry holds one repository per entity kind and enforces the rules that
// span them: foreign keys on write, uniqueness, and delete policies.
type Registry struct {
	Users         *Repository[model.User, *model.User]
	Households    *Repository[model.Household, *model.Household]
	People        *Repository[model.Person, *model.Person]
	Cylinders     *Repository[model.GasCylinder, *model.GasCylinder]
	Assignments   *Repository[model.CylinderAssignment, *model.CylinderAssignment]
	Bags          *Repository[model.Bag, *model.Bag]
	Distributions *Repository[model.BagDistribution, *model.BagDistribution]
	Notifications *Repository[model.Notification, *model.Notification]
	Visits        *Repository[model.Visit, *model.Visit]

	layer  *Layer
	logger Logger
	clock  Clock
	policy DeletePolicy
}

// NewRegistry builds the repositories over layer and attaches validation and
// integrity checks to each of them.
func NewRegistry(layer *Layer, opts RegistryOptions) *Registry {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.IDs == nil {
		opts.IDs = UUIDGenerator{}
	}
	if opts.Logger == nil {
		opts.Logger = NewNopLogger()
	}
	if opts.HouseholdDelete == "" {
		opts.HouseholdDelete = DeleteRestrict
	}

	r := &Registry{
		Users:         NewRepository[model.User](KeyUsers, layer, opts.Clock, opts.IDs, validateUser),
		Households:    NewRepository[model.Household](KeyHouseholds, layer, opts.Clock, opts.IDs, validateHousehold),
		People:        NewRepository[model.Person](KeyPeople, layer, opts.Clock, opts.IDs, validatePerson),
		Cylinders:     NewRepository[model.GasCylinder](KeyCylinders, layer, opts.Clock, opts.IDs, validateCylinder),
		Assignments:   NewRepository[model.CylinderAssignment](KeyAssignments, layer, opts.Clock, opts.IDs, validateAssignment),
		Bags:          NewRepository[model.Bag](KeyBags, layer, opts.Clock, opts.IDs, validateBag),
		Distributions: NewRepository[model.BagDistribution](KeyDistributions, layer, opts.Clock, opts.IDs, validateDistribution),
		Notifications: NewRepository[model.Notification](KeyNotifications, layer, opts.Clock, opts.IDs, validateNotification),
		Visits:        NewRepository[model.Visit](KeyVisits, layer, opts.Clock, opts.IDs, validateVisit),
		layer:         layer,
		logger:        opts.Logger,
		clock:         opts.Clock,
		policy:        opts.HouseholdDelete,
	}

	r.Users.addCheck(r.uniqueUsername)
	r.People.addCheck(r.personRefs)
	r.People.addCheck(r.singleHeadOfFamily)
	r.Assignments.addCheck(r.assignmentRefs)
	r.Assignments.addCheck(r.singleActiveAssignment)
	r.Distributions.addCheck(r.distributionRefs)
	r.Notifications.addCheck(r.notificationTargets)
	r.Visits.addCheck(r.visitRefs)
	return r
}

// Layer returns the persistence layer shared by every repository.
func (r *Registry) Layer() *Layer { return r.layer }

// HouseholdDeletePolicy returns the policy DeleteHousehold applies.
func (r *Registry) HouseholdDeletePolicy() DeletePolicy { return r.policy }

func (r *Registry) uniqueUsername(next, _ *model.User) error {
	if _, taken := r.Users.Find(func(u *model.User) bool {
		return u.Username == next.Username && u.ID != next.ID
	}); taken {
		return &ConflictError{Field: "username", Value: next.Username}
	}
	return nil
}

func (r *Registry) householdExists(field, id string) error {
	if _, ok := r.Households.Get(id); !ok {
		return &IntegrityError{Field: field, Ref: id}
	}
	return nil
}

func (r *Registry) personRefs(next, _ *model.Person) error {
	return r.householdExists("householdId", next.HouseholdID)
}

func (r *Registry) singleHeadOfFamily(next, _ *model.Person) error {
	if !next.IsHeadOfFamily {
		return nil
	}
	if _, taken := r.People.Find(func(p *model.Person) bool {
		return p.HouseholdID == next.HouseholdID && p.IsHeadOfFamily && p.ID != next.ID
	}); taken {
		return &ConflictError{Field: "isHeadOfFamily", Value: next.HouseholdID}
	}
	return nil
}

func (r *Registry) assignmentRefs(next, _ *model.CylinderAssignment) error {
	if _, ok := r.Cylinders.Get(next.CylinderID); !ok {
		return &IntegrityError{Field: "cylinderId", Ref: next.CylinderID}
	}
	return r.householdExists("householdId", next.HouseholdID)
}

func (r *Registry) singleActiveAssignment(next, _ *model.CylinderAssignment) error {
	if !next.IsActive() {
		return nil
	}
	if _, taken := r.Assignments.Find(func(a *model.CylinderAssignment) bool {
		return a.CylinderID == next.CylinderID && a.IsActive() && a.ID != next.ID
	}); taken {
		return &ConflictError{Field: "cylinderId", Value: next.CylinderID}
	}
	return nil
}

func (r *Registry) distributionRefs(next, _ *model.BagDistribution) error {
	if _, ok := r.Bags.Get(next.BagID); !ok {
		return &IntegrityError{Field: "bagId", Ref: next.BagID}
	}
	return r.householdExists("householdId", next.HouseholdID)
}

func (r *Registry) visitRefs(next, _ *model.Visit) error {
	return r.householdExists("householdId", next.HouseholdID)
}

func (r *Registry) notificationTargets(next, _ *model.Notification) error {
	for _, id := range next.TargetIDs {
		switch next.TargetType {
		case model.TargetHousehold:
			if err := r.householdExists("targetIds", id); err != nil {
				return err
			}
		case model.TargetIndividual:
			if _, ok := r.People.Get(id); !ok {
				return &IntegrityError{Field: "targetIds", Ref: id}
			}
		}
	}
	return nil
}

// DeleteHousehold removes a household according to the configured policy.
// It reports found=false for an unknown id. Under restrict, a household that
// is still referenced yields a *DependentsError. Under cascade, its people,
// assignments, distributions and visits are removed first.
//
// The household's id (and the ids of cascaded people) are dropped from
// notification targets in both cases. Persistence warnings from the
// individual collections are joined into the returned error.
func (r *Registry) DeleteHousehold(id string) (bool, error) {
	if _, ok := r.Households.Get(id); !ok {
		return false, nil
	}

	counts := r.householdDependents(id)
	if len(counts) > 0 && r.policy != DeleteCascade {
		return true, &DependentsError{Kind: "household", ID: id, Counts: counts}
	}

	var errs []error
	var removedPeople []string
	if len(counts) > 0 {
		for _, p := range r.People.Filter(func(p *model.Person) bool { return p.HouseholdID == id }) {
			removedPeople = append(removedPeople, p.ID)
		}
		_, err := r.People.RemoveWhere(func(p *model.Person) bool { return p.HouseholdID == id })
		errs = append(errs, err)
		_, err = r.Assignments.RemoveWhere(func(a *model.CylinderAssignment) bool { return a.HouseholdID == id })
		errs = append(errs, err)
		_, err = r.Distributions.RemoveWhere(func(d *model.BagDistribution) bool { return d.HouseholdID == id })
		errs = append(errs, err)
		_, err = r.Visits.RemoveWhere(func(v *model.Visit) bool { return v.HouseholdID == id })
		errs = append(errs, err)
		r.logger.Info("cascading household delete", "household", id, "dependents", counts)
	}

	errs = append(errs, r.scrubTargets(model.TargetHousehold, id))
	errs = append(errs, r.scrubTargets(model.TargetIndividual, removedPeople...))

	_, err := r.Households.Remove(id)
	errs = append(errs, err)
	return true, errors.Join(errs...)
}

func (r *Registry) householdDependents(id string) map[string]int {
	counts := map[string]int{}
	if n := r.People.Count(func(p *model.Person) bool { return p.HouseholdID == id }); n > 0 {
		counts["people"] = n
	}
	if n := r.Assignments.Count(func(a *model.CylinderAssignment) bool { return a.HouseholdID == id }); n > 0 {
		counts["cylinder assignments"] = n
	}
	if n := r.Distributions.Count(func(d *model.BagDistribution) bool { return d.HouseholdID == id }); n > 0 {
		counts["bag distributions"] = n
	}
	if n := r.Visits.Count(func(v *model.Visit) bool { return v.HouseholdID == id }); n > 0 {
		counts["visits"] = n
	}
	return counts
}

// DeletePerson removes a person and drops them from notification targets.
func (r *Registry) DeletePerson(id string) (bool, error) {
	found, err := r.People.Remove(id)
	if !found {
		return false, err
	}
	return true, errors.Join(err, r.scrubTargets(model.TargetIndividual, id))
}

// DeleteCylinder removes a cylinder that no assignment references.
func (r *Registry) DeleteCylinder(id string) (bool, error) {
	if _, ok := r.Cylinders.Get(id); !ok {
		return false, nil
	}
	if n := r.Assignments.Count(func(a *model.CylinderAssignment) bool { return a.CylinderID == id }); n > 0 {
		return true, &DependentsError{Kind: "cylinder", ID: id, Counts: map[string]int{"cylinder assignments": n}}
	}
	return r.Cylinders.Remove(id)
}

// DeleteBag removes a bag that no distribution references.
func (r *Registry) DeleteBag(id string) (bool, error) {
	if _, ok := r.Bags.Get(id); !ok {
		return false, nil
	}
	if n := r.Distributions.Count(func(d *model.BagDistribution) bool { return d.BagID == id }); n > 0 {
		return true, &DependentsError{Kind: "bag", ID: id, Counts: map[string]int{"bag distributions": n}}
	}
	return r.Bags.Remove(id)
}

// scrubTargets drops ids from the targets of notifications of the given
// target type. A notification left without targets reaches nobody.
func (r *Registry) scrubTargets(tt model.TargetType, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	_, err := r.Notifications.rewrite(func(n *model.Notification) bool {
		if n.TargetType != tt {
			return false
		}
		kept := n.TargetIDs[:0]
		for _, t := range n.TargetIDs {
			if !drop[t] {
				kept = append(kept, t)
			}
		}
		changed := len(kept) != len(n.TargetIDs)
		n.TargetIDs = kept
		return changed
	})
	return err
}
