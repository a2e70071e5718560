package relief

import (
	"sort"
	"strings"
	"time"

	"relief-go/internal/model"
)

// Placeholders shown when a lookup does not resolve.
const (
	UnknownAddress = "Unknown address"
	NotDefined     = "Not defined"
)

// ResolveHousehold looks up a household by id.
func (r *Registry) ResolveHousehold(id string) (model.Household, bool) {
	return r.Households.Get(id)
}

// ResolvePerson looks up a person by id.
func (r *Registry) ResolvePerson(id string) (model.Person, bool) {
	return r.People.Get(id)
}

// ResolveCylinder looks up a cylinder by id.
func (r *Registry) ResolveCylinder(id string) (model.GasCylinder, bool) {
	return r.Cylinders.Get(id)
}

// ResolveBag looks up a bag by id.
func (r *Registry) ResolveBag(id string) (model.Bag, bool) {
	return r.Bags.Get(id)
}

// HouseholdAddress returns the address of the household, or UnknownAddress.
func (r *Registry) HouseholdAddress(id string) string {
	if h, ok := r.Households.Get(id); ok {
		return h.Address
	}
	return UnknownAddress
}

// CylinderSerial returns the serial number of the cylinder, or the id itself
// when the cylinder is gone.
func (r *Registry) CylinderSerial(id string) string {
	if c, ok := r.Cylinders.Get(id); ok {
		return c.SerialNumber
	}
	return id
}

// HeadOfFamily returns the full name of the household's head of family, or
// NotDefined.
func (r *Registry) HeadOfFamily(householdID string) string {
	if p, ok := r.People.Find(func(p *model.Person) bool {
		return p.HouseholdID == householdID && p.IsHeadOfFamily
	}); ok {
		return p.FullName()
	}
	return NotDefined
}

// MemberCount returns how many people are registered to the household.
func (r *Registry) MemberCount(householdID string) int {
	return r.People.Count(func(p *model.Person) bool { return p.HouseholdID == householdID })
}

// ActiveAssignmentCount returns the number of cylinders currently handed out.
func (r *Registry) ActiveAssignmentCount() int {
	return r.Assignments.Count(func(a *model.CylinderAssignment) bool { return a.IsActive() })
}

// ActiveAssignmentsFor returns the active assignments of one household.
func (r *Registry) ActiveAssignmentsFor(householdID string) []model.CylinderAssignment {
	return r.Assignments.Filter(func(a *model.CylinderAssignment) bool {
		return a.HouseholdID == householdID && a.IsActive()
	})
}

// SearchHouseholds returns households whose address or location contains q
// (case-insensitive) or whose phone contains q. An empty q matches all.
func (r *Registry) SearchHouseholds(q string) []model.Household {
	if q == "" {
		return r.Households.List()
	}
	lq := strings.ToLower(q)
	return r.Households.Filter(func(h *model.Household) bool {
		return strings.Contains(strings.ToLower(h.Address), lq) ||
			strings.Contains(strings.ToLower(h.Location), lq) ||
			strings.Contains(h.Phone, q)
	})
}

// ActivityKind tells feed entries apart.
type ActivityKind string

const (
	ActivityVisit        ActivityKind = "visit"
	ActivityDistribution ActivityKind = "distribution"
)

// Activity is one entry of the recent-activity feed.
type Activity struct {
	ID          string       `json:"id"`
	Kind        ActivityKind `json:"kind"`
	HouseholdID string       `json:"householdId"`
	Description string       `json:"description"`
	Date        time.Time    `json:"date"`
}

// ActivityOptions bounds the feed. Zero fields select the defaults of 5
// visits, 3 distributions and 6 entries.
type ActivityOptions struct {
	Visits        int
	Distributions int
	Limit         int
}

func (o ActivityOptions) withDefaults() ActivityOptions {
	if o.Visits <= 0 {
		o.Visits = 5
	}
	if o.Distributions <= 0 {
		o.Distributions = 3
	}
	if o.Limit <= 0 {
		o.Limit = 6
	}
	return o
}

// RecentActivity merges the most recently recorded visits and bag
// distributions, newest event date first.
func (r *Registry) RecentActivity(opts ActivityOptions) []Activity {
	opts = opts.withDefaults()

	visits := r.Visits.List()
	dists := r.Distributions.List()
	feed := make([]Activity, 0, opts.Visits+opts.Distributions)
	for _, v := range lastN(visits, opts.Visits) {
		feed = append(feed, Activity{
			ID:          v.ID,
			Kind:        ActivityVisit,
			HouseholdID: v.HouseholdID,
			Description: "Visit to " + r.HouseholdAddress(v.HouseholdID),
			Date:        v.VisitDate,
		})
	}
	for _, d := range lastN(dists, opts.Distributions) {
		feed = append(feed, Activity{
			ID:          d.ID,
			Kind:        ActivityDistribution,
			HouseholdID: d.HouseholdID,
			Description: "Bag distributed to " + r.HouseholdAddress(d.HouseholdID),
			Date:        d.DistributedDate,
		})
	}

	sort.SliceStable(feed, func(i, j int) bool { return feed[i].Date.After(feed[j].Date) })
	if len(feed) > opts.Limit {
		feed = feed[:opts.Limit]
	}
	return feed
}

func lastN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

// VisitsInMonth returns the visits whose date falls in the given calendar
// month as seen from loc. A nil loc means local time.
func (r *Registry) VisitsInMonth(year int, month time.Month, loc *time.Location) []model.Visit {
	if loc == nil {
		loc = time.Local
	}
	return r.Visits.Filter(func(v *model.Visit) bool {
		d := v.VisitDate.In(loc)
		return d.Year() == year && d.Month() == month
	})
}

// MonthCount is the number of visits in one calendar month.
type MonthCount struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Count int        `json:"count"`
}

// MonthlyVisitCounts buckets every visit by calendar month in loc, oldest
// month first. Months without visits are omitted.
func (r *Registry) MonthlyVisitCounts(loc *time.Location) []MonthCount {
	if loc == nil {
		loc = time.Local
	}
	type ym struct {
		y int
		m time.Month
	}
	buckets := map[ym]int{}
	for _, v := range r.Visits.List() {
		d := v.VisitDate.In(loc)
		buckets[ym{d.Year(), d.Month()}]++
	}
	out := make([]MonthCount, 0, len(buckets))
	for k, n := range buckets {
		out = append(out, MonthCount{Year: k.y, Month: k.m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// DashboardStats are the counters shown on the landing screen.
type DashboardStats struct {
	Households        int `json:"households"`
	People            int `json:"people"`
	ActiveAssignments int `json:"activeAssignments"`
	Distributions     int `json:"distributions"`
	VisitsThisMonth   int `json:"visitsThisMonth"`
}

// Dashboard computes the landing counters. The current month is the month
// of now in loc.
func (r *Registry) Dashboard(now time.Time, loc *time.Location) DashboardStats {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	return DashboardStats{
		Households:        len(r.Households.List()),
		People:            len(r.People.List()),
		ActiveAssignments: r.ActiveAssignmentCount(),
		Distributions:     len(r.Distributions.List()),
		VisitsThisMonth:   len(r.VisitsInMonth(local.Year(), local.Month(), loc)),
	}
}

// MarkNotificationRead records that userID has read the notification. It is
// idempotent and reports found=false for an unknown notification.
func (r *Registry) MarkNotificationRead(id, userID string) (bool, error) {
	n, ok := r.Notifications.Get(id)
	if !ok {
		return false, nil
	}
	if n.IsReadBy(userID) {
		return true, nil
	}
	// Read receipts are not edits; a notification whose targets were scrubbed
	// must still be markable.
	_, err := r.Notifications.rewrite(func(n *model.Notification) bool {
		if n.ID != id || n.IsReadBy(userID) {
			return false
		}
		n.ReadBy = append(n.ReadBy, userID)
		return true
	})
	return true, err
}

// NotificationsFor returns the notifications addressed to everyone, to the
// household, or to the person. Either id may be empty.
func (r *Registry) NotificationsFor(householdID, personID string) []model.Notification {
	return r.Notifications.Filter(func(n *model.Notification) bool {
		return n.Targets(householdID, personID)
	})
}

// UnreadNotifications returns the notifications userID has not read yet.
func (r *Registry) UnreadNotifications(userID string) []model.Notification {
	return r.Notifications.Filter(func(n *model.Notification) bool { return !n.IsReadBy(userID) })
}
