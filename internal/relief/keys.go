package relief

// Store keys. These names are the on-disk namespace and must not change.
const (
	KeyUsers         = "community_users"
	KeySession       = "current_user"
	KeyHouseholds    = "community_households"
	KeyPeople        = "community_people"
	KeyCylinders     = "community_gas_cylinders"
	KeyAssignments   = "community_cylinder_assignments"
	KeyBags          = "community_bags"
	KeyDistributions = "community_bag_distributions"
	KeyNotifications = "community_notifications"
	KeyVisits        = "community_visits"
)

// Keys lists every key the registry reads or writes.
var Keys = []string{
	KeyUsers,
	KeySession,
	KeyHouseholds,
	KeyPeople,
	KeyCylinders,
	KeyAssignments,
	KeyBags,
	KeyDistributions,
	KeyNotifications,
	KeyVisits,
}
