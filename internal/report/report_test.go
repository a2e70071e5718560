package report_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"relief-go/internal/model"
	"relief-go/internal/relief"
	"relief-go/internal/report"
	"relief-go/internal/testutil"
)

func readSheet(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheet}, f.GetSheetList())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func seed(t *testing.T, env *testutil.Env) (model.Household, model.Person) {
	t.Helper()
	reg := env.Registry
	h, err := reg.Households.Create(model.Household{
		Address: "Calle 1", Phone: "555-0100", Location: "Sector 4", TotalMembers: 2,
	})
	require.NoError(t, err)
	p, err := reg.People.Create(model.Person{
		HouseholdID: h.ID, FirstName: "Ana", LastName: "Perez", Identification: "V-1",
		BirthDate: testutil.FixedClock().Now(), Gender: model.GenderFemale,
		Relationship: "self", IsHeadOfFamily: true,
	})
	require.NoError(t, err)
	return h, p
}

func TestParseKind(t *testing.T) {
	for _, k := range report.Kinds {
		got, err := report.ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := report.ParseKind("cylinders")
	assert.Error(t, err)
	assert.Equal(t, "report-visits.xlsx", report.KindVisits.FileName())
}

func TestGenerator_EmptyCollections(t *testing.T) {
	env := testutil.NewTestEnv(t)
	g := report.NewGenerator(env.Registry, env.Clock)

	for _, k := range report.Kinds {
		t.Run(string(k), func(t *testing.T) {
			var buf bytes.Buffer
			err := g.Write(&buf, k)
			assert.ErrorIs(t, err, report.ErrNothingToReport)
			assert.Zero(t, buf.Len())
		})
	}

	_, err := g.GenerateAll(t.TempDir())
	assert.ErrorIs(t, err, report.ErrNothingToReport)
}

func TestGenerator_Households(t *testing.T) {
	env := testutil.NewTestEnv(t)
	h, _ := seed(t, env)
	_, err := env.Registry.Households.Create(model.Household{Address: "Calle 2", TotalMembers: 1})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.NewGenerator(env.Registry, env.Clock).Write(&buf, report.KindHouseholds))

	rows := readSheet(t, buf.Bytes(), "Households")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Address", "Phone", "Location", "Head of Family", "Members"}, rows[0])
	assert.Equal(t, []string{h.Address, "555-0100", "Sector 4", "Ana Perez", "2"}, rows[1])
	assert.Equal(t, "Calle 2", rows[2][0])
	assert.Equal(t, relief.NotDefined, rows[2][3])
}

func TestGenerator_PlaceholdersForMissingReferences(t *testing.T) {
	env := testutil.NewTestEnv(t)
	h, p := seed(t, env)
	c, err := env.Registry.Cylinders.Create(model.GasCylinder{
		SerialNumber: "CYL-9", Capacity: 10, Status: model.CylinderAssigned, Condition: model.ConditionGood,
	})
	require.NoError(t, err)
	_, err = env.Registry.Assignments.Create(model.CylinderAssignment{
		CylinderID: c.ID, HouseholdID: h.ID, AssignedDate: env.Clock.Now(),
		Status: model.AssignmentActive, AssignedBy: "admin",
	})
	require.NoError(t, err)

	// Orphan the dependents the way data from an older version could be.
	require.NoError(t, env.Layer.Write(relief.KeyHouseholds, []model.Household{}))

	g := report.NewGenerator(env.Registry, env.Clock)

	var people bytes.Buffer
	require.NoError(t, g.Write(&people, report.KindPeople))
	rows := readSheet(t, people.Bytes(), "People")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{p.FullName(), "V-1", "2024-01-15", "F", "self", report.NoHousehold}, rows[1])

	var assignments bytes.Buffer
	require.NoError(t, g.Write(&assignments, report.KindAssignments))
	rows = readSheet(t, assignments.Bytes(), "Cylinder Assignments")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"CYL-9", report.NoAddress, "2024-01-15", report.NotReturned, "Active"}, rows[1])
}

func TestGenerator_DistributionsAndVisits(t *testing.T) {
	env := testutil.NewTestEnv(t)
	h, _ := seed(t, env)
	b, err := env.Registry.Bags.Create(model.Bag{Type: model.BagCold, Contents: "milk", Quantity: 5})
	require.NoError(t, err)
	_, err = env.Registry.Distributions.Create(model.BagDistribution{
		BagID: b.ID, HouseholdID: h.ID, DistributedDate: env.Clock.Now(), Quantity: 2,
		DistributedBy: "maria", ReceivedBy: "Ana",
	})
	require.NoError(t, err)
	_, err = env.Registry.Visits.Create(model.Visit{
		HouseholdID: h.ID, VisitDate: env.Clock.Now(), VisitType: model.VisitFollowUp,
		Purpose: "check-up", VisitedBy: "maria",
	})
	require.NoError(t, err)

	g := report.NewGenerator(env.Registry, env.Clock)

	var dist bytes.Buffer
	require.NoError(t, g.Write(&dist, report.KindDistributions))
	rows := readSheet(t, dist.Bytes(), "Bag Distributions")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Calle 1", "2", "2024-01-15", "maria", "Ana"}, rows[1])

	var visits bytes.Buffer
	require.NoError(t, g.Write(&visits, report.KindVisits))
	rows = readSheet(t, visits.Bytes(), "Visits")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Calle 1", "2024-01-15", "Follow-up", "check-up", "maria"}, rows[1])
}

func TestGenerator_GenerateAll(t *testing.T) {
	env := testutil.NewTestEnv(t)
	seed(t, env)
	dir := filepath.Join(t.TempDir(), "out")

	written, err := report.NewGenerator(env.Registry, env.Clock).GenerateAll(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "report-households.xlsx"),
		filepath.Join(dir, "report-people.xlsx"),
	}, written)

	f, err := excelize.OpenFile(written[0])
	require.NoError(t, err)
	defer f.Close()
	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "Registered Households", props.Title)
	assert.Equal(t, "2024-01-15T10:30:00Z", props.Created)
}

func TestGenerator_DoesNotWrite(t *testing.T) {
	env := testutil.NewTestEnv(t)
	seed(t, env)
	before := env.Backend.PutCalls()

	var buf bytes.Buffer
	require.NoError(t, report.NewGenerator(env.Registry, env.Clock).Write(&buf, report.KindPeople))
	assert.Equal(t, before, env.Backend.PutCalls())
}
