// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCollection(t *testing.T) {
	before := testutil.ToFloat64(CollectionObservations.WithLabelValues("ine"))
	RecordCollection("ine", 19, 250*time.Millisecond, nil)
	after := testutil.ToFloat64(CollectionObservations.WithLabelValues("ine"))
	if after-before != 19 {
		t.Errorf("observation counter grew by %g, want 19", after-before)
	}

	errBefore := testutil.ToFloat64(CollectionErrors.WithLabelValues("exceltur"))
	RecordCollection("exceltur", 0, time.Second, errors.New("timeout"))
	errAfter := testutil.ToFloat64(CollectionErrors.WithLabelValues("exceltur"))
	if errAfter-errBefore != 1 {
		t.Errorf("error counter grew by %g, want 1", errAfter-errBefore)
	}
}

func TestRecordAnalysis(t *testing.T) {
	okBefore := testutil.ToFloat64(AnalysisRuns.WithLabelValues("success"))
	RecordAnalysis(2*time.Second, 150, nil)
	okAfter := testutil.ToFloat64(AnalysisRuns.WithLabelValues("success"))
	if okAfter-okBefore != 1 {
		t.Errorf("success counter grew by %g, want 1", okAfter-okBefore)
	}
	if got := testutil.ToFloat64(AnalysisSampleSize); got != 150 {
		t.Errorf("sample size gauge = %g, want 150", got)
	}

	failBefore := testutil.ToFloat64(AnalysisRuns.WithLabelValues("error"))
	RecordAnalysis(time.Second, 0, errors.New("no usable rows"))
	failAfter := testutil.ToFloat64(AnalysisRuns.WithLabelValues("error"))
	if failAfter-failBefore != 1 {
		t.Errorf("error counter grew by %g, want 1", failAfter-failBefore)
	}
}

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "observations"))
	RecordDBQuery("insert", "observations", 5*time.Millisecond, errors.New("constraint"))
	RecordDBQuery("select", "observations", 2*time.Millisecond, nil)
	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "observations"))
	if after-before != 1 {
		t.Errorf("error counter grew by %g, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != base+2 {
		t.Errorf("active gauge = %g, want %g", got, base+2)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base+1 {
		t.Errorf("active gauge = %g, want %g", got, base+1)
	}
}
