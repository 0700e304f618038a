/*
seed.go - Demo fleet loader

PURPOSE:
  Populates a store with a representative 27-pilot fleet and a spread of leave
  requests so the API can be explored locally without real data. Only used in
  development (enable with -seed).
*/
package api

import (
	"context"
	"fmt"

	"github.com/fleetops/roster-engine/leave"
	"github.com/fleetops/roster-engine/roster"
)

// SeedDemo loads a demo fleet around the period containing today: a block of
// approved annual leave, a pending overlap, a denied request, and an exact
// duplicate pair.
func SeedDemo(ctx context.Context, store leave.RequestStore, calendar *roster.Calendar) error {
	period := calendar.PeriodContaining(roster.Today())
	day := func(n int) roster.Date { return period.Start.AddDays(n) }

	seed := []leave.Request{
		{ID: "seed-001", PilotID: "P001", PilotName: "M. Kaupa", EmployeeID: "E2101", Type: leave.TypeAnnual, Start: day(2), End: day(8), Status: leave.StatusApproved},
		{ID: "seed-002", PilotID: "P002", PilotName: "J. Temu", EmployeeID: "E2102", Type: leave.TypeRDO, Start: day(4), End: day(5), Status: leave.StatusApproved},
		{ID: "seed-003", PilotID: "P003", PilotName: "A. Wari", EmployeeID: "E2103", Type: leave.TypeSick, Start: day(4), End: day(6), Status: leave.StatusApproved},
		{ID: "seed-004", PilotID: "P004", PilotName: "L. Nakin", EmployeeID: "E2104", Type: leave.TypeAnnual, Start: day(10), End: day(16), Status: leave.StatusPending},
		{ID: "seed-005", PilotID: "P001", PilotName: "M. Kaupa", EmployeeID: "E2101", Type: leave.TypeSDO, Start: day(6), End: day(9), Status: leave.StatusPending},
		{ID: "seed-006", PilotID: "P005", PilotName: "R. Siaguru", EmployeeID: "E2105", Type: leave.TypeLWOP, Start: day(12), End: day(14), Status: leave.StatusDenied},
		{ID: "seed-007", PilotID: "P006", PilotName: "T. Gima", EmployeeID: "E2106", Type: leave.TypeAnnual, Start: day(18), End: day(24), Status: leave.StatusApproved},
		{ID: "seed-008", PilotID: "P006", PilotName: "T. Gima", EmployeeID: "E2106", Type: leave.TypeAnnual, Start: day(18), End: day(24), Status: leave.StatusPending},
	}

	// A broad block of approved leave mid-period to make the availability
	// heatmap interesting.
	for i := 0; i < 8; i++ {
		seed = append(seed, leave.Request{
			ID:        fmt.Sprintf("seed-1%02d", i),
			PilotID:   fmt.Sprintf("P0%02d", 10+i),
			PilotName: fmt.Sprintf("Pilot %d", 10+i),
			Type:      leave.TypeAnnual,
			Start:     day(13),
			End:       day(15),
			Status:    leave.StatusApproved,
		})
	}

	for _, r := range seed {
		if err := store.SaveRequest(ctx, r); err != nil {
			return fmt.Errorf("seed %s: %w", r.ID, err)
		}
	}
	return nil
}
