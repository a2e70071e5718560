package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"relief-go/internal/model"
	"relief-go/internal/relief"
)

// entity describes the list/show/add/update/remove commands of one
// collection. Records are read from and written as JSON objects.
type entity[T any, P interface {
	*T
	model.Record
}] struct {
	name   string
	plural string
	repo   func(*relief.Registry) *relief.Repository[T, P]
	// remove overrides Repository.Remove for kinds with delete rules.
	remove func(*relief.Registry, string) (bool, error)
	// defaults fills fields the caller left empty on add.
	defaults func(u model.User, now time.Time, rec *T)
	row      func(*relief.Registry, *T) string
	// list overrides the full listing, e.g. for search flags.
	list func(cmd *cobra.Command, reg *relief.Registry) ([]T, error)
}

func (e entity[T, P]) command() *cobra.Command {
	root := &cobra.Command{
		Use:   e.name,
		Short: "Manage " + e.plural,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List " + e.plural,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newSessionApp(e.name + " list")
			if err != nil {
				return err
			}
			defer a.Close()

			var recs []T
			if e.list != nil {
				if recs, err = e.list(cmd, a.Registry()); err != nil {
					return err
				}
			} else {
				recs = e.repo(a.Registry()).List()
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(cmd.OutOrStdout(), recs)
			}
			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintf(out, "No %s.\n", e.plural)
				return nil
			}
			for i := range recs {
				fmt.Fprintln(out, e.row(a.Registry(), &recs[i]))
			}
			return nil
		},
	}
	listCmd.Flags().Bool("json", false, "Print records as JSON")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one " + e.name + " as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newSessionApp(e.name + " show")
			if err != nil {
				return err
			}
			defer a.Close()

			rec, ok := e.repo(a.Registry()).Get(args[0])
			if !ok {
				return fmt.Errorf("%s %s: %w", e.name, args[0], relief.ErrNotFound)
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a " + e.name + " from a JSON object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readData(cmd)
			if err != nil {
				return err
			}
			var fields T
			if err := json.Unmarshal(data, &fields); err != nil {
				return fmt.Errorf("decoding %s: %w", e.name, err)
			}

			a, err := newSessionApp(e.name + " add")
			if err != nil {
				return err
			}
			defer a.Close()

			u, _ := a.RequireUser()
			if e.defaults != nil {
				e.defaults(u, a.Now(), &fields)
			}
			rec, err := e.repo(a.Registry()).Create(fields)
			return finish(cmd, a.Outcome().Record(err, fmt.Sprintf("%s %s created", e.name, P(&rec).RecordID())))
		},
	}
	dataFlags(addCmd)

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a " + e.name + " with the fields of a JSON object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readData(cmd)
			if err != nil {
				return err
			}
			var patch T
			if err := json.Unmarshal(data, &patch); err != nil {
				return fmt.Errorf("decoding %s: %w", e.name, err)
			}

			a, err := newSessionApp(e.name + " update")
			if err != nil {
				return err
			}
			defer a.Close()

			// Fields absent from data keep their stored values.
			_, found, err := e.repo(a.Registry()).Update(args[0], func(rec *T) {
				_ = json.Unmarshal(data, rec)
			})
			if err == nil && !found {
				err = fmt.Errorf("%s %s: %w", e.name, args[0], relief.ErrNotFound)
			}
			return finish(cmd, a.Outcome().Record(err, fmt.Sprintf("%s %s updated", e.name, args[0])))
		},
	}
	dataFlags(updateCmd)

	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a " + e.name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newSessionApp(e.name + " remove")
			if err != nil {
				return err
			}
			defer a.Close()

			remove := e.remove
			if remove == nil {
				remove = func(reg *relief.Registry, id string) (bool, error) { return e.repo(reg).Remove(id) }
			}
			found, err := remove(a.Registry(), args[0])
			if err == nil && !found {
				err = fmt.Errorf("%s %s: %w", e.name, args[0], relief.ErrNotFound)
			}
			return finish(cmd, a.Outcome().Record(err, fmt.Sprintf("%s %s removed", e.name, args[0])))
		},
	}

	root.AddCommand(listCmd, showCmd, addCmd, updateCmd, removeCmd)
	return root
}

func dataFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("data", "d", "", "JSON object with the record fields")
	cmd.Flags().StringP("file", "f", "", "Read the JSON object from a file (- for stdin)")
}

// readData returns the JSON given by --data or --file.
func readData(cmd *cobra.Command) ([]byte, error) {
	data, _ := cmd.Flags().GetString("data")
	file, _ := cmd.Flags().GetString("file")
	switch {
	case data != "" && file != "":
		return nil, errors.New("use either --data or --file")
	case data != "":
		return []byte(data), nil
	case file == "-":
		return io.ReadAll(cmd.InOrStdin())
	case file != "":
		return os.ReadFile(file)
	}
	return nil, errors.New("a JSON object is required (--data or --file)")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

var householdEntity = entity[model.Household, *model.Household]{
	name:   "household",
	plural: "households",
	repo:   func(r *relief.Registry) *relief.Repository[model.Household, *model.Household] { return r.Households },
	remove: (*relief.Registry).DeleteHousehold,
	row: func(r *relief.Registry, h *model.Household) string {
		head := r.HeadOfFamily(h.ID)
		if head == relief.NotDefined && h.HeadOfFamily != "" {
			head = h.HeadOfFamily
		}
		return fmt.Sprintf("%-10s %-32s %-14s %-20s %-24s %d/%d",
			h.ID, h.Address, h.Phone, h.Location, head, r.MemberCount(h.ID), h.TotalMembers)
	},
	list: func(cmd *cobra.Command, r *relief.Registry) ([]model.Household, error) {
		q, _ := cmd.Flags().GetString("search")
		if q == "" {
			return r.Households.List(), nil
		}
		return r.SearchHouseholds(q), nil
	},
}

var personEntity = entity[model.Person, *model.Person]{
	name:   "person",
	plural: "people",
	repo:   func(r *relief.Registry) *relief.Repository[model.Person, *model.Person] { return r.People },
	remove: (*relief.Registry).DeletePerson,
	row: func(r *relief.Registry, p *model.Person) string {
		head := ""
		if p.IsHeadOfFamily {
			head = " (head)"
		}
		return fmt.Sprintf("%-10s %-28s %-14s %s %-10s %s%s",
			p.ID, p.FullName(), p.Identification, p.Gender.Short(), date(p.BirthDate), r.HouseholdAddress(p.HouseholdID), head)
	},
}

var cylinderEntity = entity[model.GasCylinder, *model.GasCylinder]{
	name:   "cylinder",
	plural: "cylinders",
	repo:   func(r *relief.Registry) *relief.Repository[model.GasCylinder, *model.GasCylinder] { return r.Cylinders },
	remove: (*relief.Registry).DeleteCylinder,
	defaults: func(_ model.User, _ time.Time, c *model.GasCylinder) {
		if c.Status == "" {
			c.Status = model.CylinderAvailable
		}
		if c.Condition == "" {
			c.Condition = model.ConditionGood
		}
	},
	row: func(_ *relief.Registry, c *model.GasCylinder) string {
		return fmt.Sprintf("%-10s %-16s %6.1f kg  %-12s %s", c.ID, c.SerialNumber, c.Capacity, c.Status, c.Condition)
	},
}

var assignmentEntity = entity[model.CylinderAssignment, *model.CylinderAssignment]{
	name:   "assignment",
	plural: "cylinder assignments",
	repo: func(r *relief.Registry) *relief.Repository[model.CylinderAssignment, *model.CylinderAssignment] {
		return r.Assignments
	},
	defaults: func(u model.User, now time.Time, a *model.CylinderAssignment) {
		if a.Status == "" {
			a.Status = model.AssignmentActive
		}
		if a.AssignedDate.IsZero() {
			a.AssignedDate = now
		}
		if a.AssignedBy == "" {
			a.AssignedBy = u.Name
		}
	},
	list: func(cmd *cobra.Command, r *relief.Registry) ([]model.CylinderAssignment, error) {
		household, _ := cmd.Flags().GetString("household")
		if household == "" {
			return r.Assignments.List(), nil
		}
		if _, ok := r.ResolveHousehold(household); !ok {
			return nil, fmt.Errorf("household %s: %w", household, relief.ErrNotFound)
		}
		return r.ActiveAssignmentsFor(household), nil
	},
	row: func(r *relief.Registry, a *model.CylinderAssignment) string {
		returned := "-"
		if a.ReturnedDate != nil {
			returned = date(*a.ReturnedDate)
		}
		return fmt.Sprintf("%-10s %-16s %-32s %s  %-10s %s",
			a.ID, r.CylinderSerial(a.CylinderID), r.HouseholdAddress(a.HouseholdID), date(a.AssignedDate), returned, a.Status.Label())
	},
}

var bagEntity = entity[model.Bag, *model.Bag]{
	name:   "bag",
	plural: "bags",
	repo:   func(r *relief.Registry) *relief.Repository[model.Bag, *model.Bag] { return r.Bags },
	remove: (*relief.Registry).DeleteBag,
	row: func(_ *relief.Registry, b *model.Bag) string {
		expires := "-"
		if b.ExpirationDate != nil {
			expires = date(*b.ExpirationDate)
		}
		return fmt.Sprintf("%-10s %-5s %4d  %-10s %s", b.ID, b.Type, b.Quantity, expires, b.Contents)
	},
}

var distributionEntity = entity[model.BagDistribution, *model.BagDistribution]{
	name:   "distribution",
	plural: "bag distributions",
	repo: func(r *relief.Registry) *relief.Repository[model.BagDistribution, *model.BagDistribution] {
		return r.Distributions
	},
	defaults: func(u model.User, now time.Time, d *model.BagDistribution) {
		if d.DistributedDate.IsZero() {
			d.DistributedDate = now
		}
		if d.DistributedBy == "" {
			d.DistributedBy = u.Name
		}
	},
	row: func(r *relief.Registry, d *model.BagDistribution) string {
		bag := d.BagID
		if b, ok := r.ResolveBag(d.BagID); ok {
			bag = string(b.Type) + " " + b.Contents
		}
		return fmt.Sprintf("%-10s %-32s %-24s %4d  %s  %-20s %s",
			d.ID, r.HouseholdAddress(d.HouseholdID), bag, d.Quantity, date(d.DistributedDate), d.DistributedBy, d.ReceivedBy)
	},
}

var visitEntity = entity[model.Visit, *model.Visit]{
	name:   "visit",
	plural: "visits",
	repo:   func(r *relief.Registry) *relief.Repository[model.Visit, *model.Visit] { return r.Visits },
	defaults: func(u model.User, now time.Time, v *model.Visit) {
		if v.VisitDate.IsZero() {
			v.VisitDate = now
		}
		if v.VisitedBy == "" {
			v.VisitedBy = u.Name
		}
	},
	row: func(r *relief.Registry, v *model.Visit) string {
		return fmt.Sprintf("%-10s %-32s %s  %-10s %-20s %s",
			v.ID, r.HouseholdAddress(v.HouseholdID), date(v.VisitDate), v.VisitType.Label(), v.VisitedBy, v.Purpose)
	},
}

var notificationEntity = entity[model.Notification, *model.Notification]{
	name:   "notification",
	plural: "notifications",
	repo: func(r *relief.Registry) *relief.Repository[model.Notification, *model.Notification] {
		return r.Notifications
	},
	defaults: func(u model.User, _ time.Time, n *model.Notification) {
		n.CreatedBy = u.ID
		if n.TargetType == "" {
			n.TargetType = model.TargetAll
		}
		if n.Type == "" {
			n.Type = model.NotificationInfo
		}
		if n.Priority == "" {
			n.Priority = model.PriorityMedium
		}
		if n.ReadBy == nil {
			n.ReadBy = []string{}
		}
	},
	row: func(r *relief.Registry, n *model.Notification) string {
		targets := string(n.TargetType)
		if n.TargetType != model.TargetAll {
			names := make([]string, 0, len(n.TargetIDs))
			for _, id := range n.TargetIDs {
				switch n.TargetType {
				case model.TargetHousehold:
					names = append(names, r.HouseholdAddress(id))
				case model.TargetIndividual:
					if p, ok := r.ResolvePerson(id); ok {
						names = append(names, p.FullName())
					} else {
						names = append(names, id)
					}
				}
			}
			targets += ":" + strings.Join(names, ",")
		}
		return fmt.Sprintf("%-10s %-7s %-8s %-24s %-32s read by %d", n.ID, n.Priority, n.Type, targets, n.Title, len(n.ReadBy))
	},
	list: func(cmd *cobra.Command, r *relief.Registry) ([]model.Notification, error) {
		household, _ := cmd.Flags().GetString("household")
		person, _ := cmd.Flags().GetString("person")
		if household == "" && person == "" {
			return r.Notifications.List(), nil
		}
		return r.NotificationsFor(household, person), nil
	},
}

var notificationReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read by the current user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newSessionApp("notification read")
		if err != nil {
			return err
		}
		defer a.Close()

		u, _ := a.RequireUser()
		found, err := a.Registry().MarkNotificationRead(args[0], u.ID)
		if err == nil && !found {
			err = fmt.Errorf("notification %s: %w", args[0], relief.ErrNotFound)
		}
		return finish(cmd, a.Outcome().Record(err, "notification "+args[0]+" marked as read"))
	},
}

var notificationUnreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "List notifications the current user has not read",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newSessionApp("notification unread")
		if err != nil {
			return err
		}
		defer a.Close()

		u, _ := a.RequireUser()
		unread := a.Registry().UnreadNotifications(u.ID)
		if len(unread) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No unread notifications.")
			return nil
		}
		for i := range unread {
			fmt.Fprintln(cmd.OutOrStdout(), notificationEntity.row(a.Registry(), &unread[i]))
		}
		return nil
	},
}

// entityCommands builds the per-collection command trees.
func entityCommands() []*cobra.Command {
	household := householdEntity.command()
	listFlags(household).String("search", "", "Match address, location or phone")

	assignment := assignmentEntity.command()
	listFlags(assignment).String("household", "", "Only the active assignments of this household")

	notification := notificationEntity.command()
	listFlags(notification).String("household", "", "Only notifications addressed to this household")
	listFlags(notification).String("person", "", "Only notifications addressed to this person")
	notification.AddCommand(notificationReadCmd, notificationUnreadCmd)

	return []*cobra.Command{
		household,
		personEntity.command(),
		cylinderEntity.command(),
		assignment,
		bagEntity.command(),
		distributionEntity.command(),
		notification,
		visitEntity.command(),
	}
}

// listFlags returns the flag set of the list subcommand under root.
func listFlags(root *cobra.Command) *pflag.FlagSet {
	for _, c := range root.Commands() {
		if c.Name() == "list" {
			return c.Flags()
		}
	}
	panic("no list command under " + root.Name())
}

func init() {
	rootCmd.AddCommand(entityCommands()...)
}
