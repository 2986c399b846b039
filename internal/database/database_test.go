// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mredondo/touriscope/internal/plssem"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testObservation(region string, date time.Time, base float64) plssem.Observation {
	return plssem.Observation{
		Region: region,
		Date:   date,
		Values: map[string]float64{
			plssem.IndOccupancyRate:         base,
			plssem.IndTourismEmployment:     base * 1000,
			plssem.IndCompetitivenessIndex:  base + 5,
			plssem.IndCurrentRank:           base / 2,
			plssem.IndTotalReviews:          base * 100,
			plssem.IndTotalFacilities:       base * 10,
			plssem.IndEconomicSocialBenefit: base + 10,
		},
	}
}

func TestUpsertAndLoadWindow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	jan := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	err := db.UpsertObservations(ctx, []plssem.Observation{
		testObservation("Madrid", jan, 60),
		testObservation("Madrid", feb, 70),
		testObservation("Galicia", jan, 55),
	})
	if err != nil {
		t.Fatalf("UpsertObservations() error = %v", err)
	}

	ds, err := db.LoadWindow(ctx, jan)
	if err != nil {
		t.Fatalf("LoadWindow() error = %v", err)
	}
	if len(ds.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(ds.Rows))
	}
	// Ordered by region then date.
	if ds.Rows[0].Region != "Galicia" || ds.Rows[1].Region != "Madrid" || !ds.Rows[1].Date.Equal(jan) {
		t.Errorf("unexpected ordering: %s/%s, %s/%s", ds.Rows[0].Region, ds.Rows[0].Date, ds.Rows[1].Region, ds.Rows[1].Date)
	}
	if v, ok := ds.Rows[1].Value(plssem.IndOccupancyRate); !ok || v != 60 {
		t.Errorf("occupancy = %g (ok=%v), want 60", v, ok)
	}

	// Window excludes earlier rows.
	later, err := db.LoadWindow(ctx, feb)
	if err != nil {
		t.Fatalf("LoadWindow(feb) error = %v", err)
	}
	if len(later.Rows) != 1 {
		t.Errorf("got %d rows since February, want 1", len(later.Rows))
	}
}

func TestLoadObservations_Filters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	jan := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	err := db.UpsertObservations(ctx, []plssem.Observation{
		testObservation("Madrid", jan, 60),
		testObservation("Madrid", feb, 65),
		testObservation("Madrid", mar, 70),
		testObservation("Galicia", feb, 50),
	})
	if err != nil {
		t.Fatalf("UpsertObservations() error = %v", err)
	}

	byRegion, err := db.LoadObservations(ctx, ObservationFilter{Regions: []string{"Galicia"}})
	if err != nil {
		t.Fatalf("LoadObservations(region) error = %v", err)
	}
	if len(byRegion.Rows) != 1 || byRegion.Rows[0].Region != "Galicia" {
		t.Errorf("region filter returned %+v, want one Galicia row", byRegion.Rows)
	}

	bounded, err := db.LoadObservations(ctx, ObservationFilter{Since: &feb, Until: &feb})
	if err != nil {
		t.Fatalf("LoadObservations(bounded) error = %v", err)
	}
	if len(bounded.Rows) != 2 {
		t.Errorf("got %d rows for February, want 2", len(bounded.Rows))
	}

	combined, err := db.LoadObservations(ctx, ObservationFilter{
		Since:   &feb,
		Regions: []string{"Madrid"},
	})
	if err != nil {
		t.Fatalf("LoadObservations(combined) error = %v", err)
	}
	if len(combined.Rows) != 2 {
		t.Errorf("got %d Madrid rows since February, want 2", len(combined.Rows))
	}

	all, err := db.LoadObservations(ctx, ObservationFilter{})
	if err != nil {
		t.Fatalf("LoadObservations(empty filter) error = %v", err)
	}
	if len(all.Rows) != 4 {
		t.Errorf("got %d rows with empty filter, want 4", len(all.Rows))
	}
}

func TestUpsertObservations_ReplacesOnConflict(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	date := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	first := testObservation("Canarias", date, 60)
	if err := db.UpsertObservations(ctx, []plssem.Observation{first}); err != nil {
		t.Fatalf("first upsert error = %v", err)
	}
	second := testObservation("Canarias", date, 80)
	if err := db.UpsertObservations(ctx, []plssem.Observation{second}); err != nil {
		t.Fatalf("second upsert error = %v", err)
	}

	n, err := db.CountObservations(ctx)
	if err != nil {
		t.Fatalf("CountObservations() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1 after replace", n)
	}

	ds, err := db.LoadWindow(ctx, date)
	if err != nil {
		t.Fatalf("LoadWindow() error = %v", err)
	}
	if v, _ := ds.Rows[0].Value(plssem.IndOccupancyRate); v != 80 {
		t.Errorf("occupancy = %g, want replaced value 80", v)
	}
}

func TestUpsertObservations_MissingIndicatorsBecomeNull(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	date := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	obs := plssem.Observation{
		Region: "Murcia",
		Date:   date,
		Values: map[string]float64{plssem.IndOccupancyRate: 66.5},
	}
	if err := db.UpsertObservations(ctx, []plssem.Observation{obs}); err != nil {
		t.Fatalf("UpsertObservations() error = %v", err)
	}

	ds, err := db.LoadWindow(ctx, date)
	if err != nil {
		t.Fatalf("LoadWindow() error = %v", err)
	}
	row := ds.Rows[0]
	if v, ok := row.Value(plssem.IndOccupancyRate); !ok || v != 66.5 {
		t.Errorf("occupancy = %g (ok=%v), want 66.5", v, ok)
	}
	if _, ok := row.Value(plssem.IndTotalReviews); ok {
		t.Error("absent indicator round-tripped as present")
	}
}

func TestSaveAndLatestResult(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.LatestResult(ctx); !errors.Is(err, ErrNoResults) {
		t.Fatalf("LatestResult() on empty store = %v, want ErrNoResults", err)
	}

	older := &plssem.Result{AnalysisID: uuid.New().String(), SampleSize: 120}
	newer := &plssem.Result{AnalysisID: uuid.New().String(), SampleSize: 150}
	if err := db.SaveResult(ctx, older); err != nil {
		t.Fatalf("SaveResult(older) error = %v", err)
	}
	time.Sleep(10 * time.Millisecond) // created_at must order the two
	if err := db.SaveResult(ctx, newer); err != nil {
		t.Fatalf("SaveResult(newer) error = %v", err)
	}

	latest, err := db.LatestResult(ctx)
	if err != nil {
		t.Fatalf("LatestResult() error = %v", err)
	}
	if latest.AnalysisID != newer.AnalysisID {
		t.Errorf("latest = %s, want %s", latest.AnalysisID, newer.AnalysisID)
	}
	if latest.SampleSize != 150 {
		t.Errorf("sample size = %d, want 150", latest.SampleSize)
	}

	var decoded map[string]any
	if err := json.Unmarshal(latest.Result, &decoded); err != nil {
		t.Fatalf("stored payload is not JSON: %v", err)
	}
	if decoded["analysis_id"] != newer.AnalysisID {
		t.Errorf("payload analysis_id = %v, want %s", decoded["analysis_id"], newer.AnalysisID)
	}

	list, err := db.ListResults(ctx, 10)
	if err != nil {
		t.Fatalf("ListResults() error = %v", err)
	}
	if len(list) != 2 || list[0].AnalysisID != newer.AnalysisID {
		t.Errorf("ListResults() = %+v, want newest first", list)
	}
}
