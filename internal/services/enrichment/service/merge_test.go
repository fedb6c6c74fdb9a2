package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	perr "streamtags/internal/platform/errors"
	"streamtags/internal/services/enrichment/domain"
)

func TestMerge_Idempotent(t *testing.T) {
	t.Parallel()
	st := newMemStore(rec("r1", "twitch", "alpha", []string{"GAMING"}, ""))
	svc := newTestService(st, Config{})
	ctx := context.Background()

	out, err := svc.Merge(ctx, "r1", []string{"IGAMING"})
	if err != nil || out != domain.OutcomeUpdated {
		t.Fatalf("first merge = %s, %v", out, err)
	}
	if got := st.get("r1").Tags; !slices.Equal(got, []string{"GAMING", "IGAMING"}) {
		t.Fatalf("tags = %v", got)
	}

	out, err = svc.Merge(ctx, "r1", []string{"IGAMING"})
	if err != nil || out != domain.OutcomeUnchanged {
		t.Fatalf("second merge = %s, %v", out, err)
	}
	if st.writes != 1 {
		t.Fatalf("writes = %d, want 1", st.writes)
	}
	if got := st.get("r1").Tags; !slices.Equal(got, []string{"GAMING", "IGAMING"}) {
		t.Fatalf("tags after second merge = %v", got)
	}
}

func TestMerge_EmptyIsSkippedWithoutReads(t *testing.T) {
	t.Parallel()
	st := newMemStore(rec("r1", "twitch", "alpha", nil, ""))
	svc := newTestService(st, Config{})

	out, err := svc.Merge(context.Background(), "r1", nil)
	if err != nil || out != domain.OutcomeSkipped {
		t.Fatalf("Merge = %s, %v", out, err)
	}
	if st.uniqueHits != 0 || st.writes != 0 {
		t.Fatalf("store touched: reads=%d writes=%d", st.uniqueHits, st.writes)
	}
}

func TestMerge_CollapsesStoredDuplicates(t *testing.T) {
	t.Parallel()
	st := newMemStore(rec("r1", "twitch", "alpha", []string{"GAMING", "GAMING"}, ""))
	svc := newTestService(st, Config{})

	out, err := svc.Merge(context.Background(), "r1", []string{"IGAMING"})
	if err != nil || out != domain.OutcomeUpdated {
		t.Fatalf("Merge = %s, %v", out, err)
	}
	if got := st.get("r1").Tags; !slices.Equal(got, []string{"GAMING", "IGAMING"}) {
		t.Fatalf("tags = %v", got)
	}
}

func TestMerge_CaseSensitiveUnion(t *testing.T) {
	t.Parallel()
	st := newMemStore(rec("r1", "kick", "alpha", []string{"igaming"}, ""))
	svc := newTestService(st, Config{})

	out, err := svc.Merge(context.Background(), "r1", []string{"IGAMING", "igaming"})
	if err != nil || out != domain.OutcomeUpdated {
		t.Fatalf("Merge = %s, %v", out, err)
	}
	if got := st.get("r1").Tags; !slices.Equal(got, []string{"igaming", "IGAMING"}) {
		t.Fatalf("tags = %v", got)
	}
}

func TestMerge_ConflictRetriedOnce(t *testing.T) {
	t.Parallel()
	st := newMemStore(rec("r1", "twitch", "alpha", nil, ""))
	st.conflicts = 1
	svc := newTestService(st, Config{})

	out, err := svc.Merge(context.Background(), "r1", []string{"IGAMING"})
	if err != nil || out != domain.OutcomeUpdated {
		t.Fatalf("Merge = %s, %v", out, err)
	}
	if st.uniqueHits != 2 {
		t.Fatalf("reads = %d, want re-read after conflict", st.uniqueHits)
	}

	st2 := newMemStore(rec("r1", "twitch", "alpha", nil, ""))
	st2.conflicts = 2
	out, err = newTestService(st2, Config{}).Merge(context.Background(), "r1", []string{"IGAMING"})
	if out != domain.OutcomeError || !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("double conflict = %s, %v", out, err)
	}
	if st2.writes != 0 {
		t.Fatalf("writes = %d", st2.writes)
	}
}

func TestMerge_Errors(t *testing.T) {
	t.Parallel()
	st := newMemStore(rec("r1", "twitch", "alpha", nil, ""))
	svc := newTestService(st, Config{})
	ctx := context.Background()

	if out, err := svc.Merge(ctx, "missing", []string{"IGAMING"}); out != domain.OutcomeError || !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing = %s, %v", out, err)
	}
	if out, err := svc.Merge(ctx, "r1", []string{"A,B"}); out != domain.OutcomeError || !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("bad tag = %s, %v", out, err)
	}

	st.updateErr = perr.Wrap(errors.New("connection reset"), perr.ErrorCodeDB, "update streamer r1 tags")
	if out, err := svc.Merge(ctx, "r1", []string{"IGAMING"}); out != domain.OutcomeError || !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("db failure = %s, %v", out, err)
	}
}

func TestUnion(t *testing.T) {
	t.Parallel()
	cases := []struct {
		existing, add, want []string
		changed             bool
	}{
		{nil, nil, []string{}, false},
		{[]string{"A"}, []string{"A"}, []string{"A"}, false},
		{[]string{"A"}, []string{"B", "B", "A"}, []string{"A", "B"}, true},
		{nil, []string{"x", "X"}, []string{"x", "X"}, true},
		{[]string{"GAMING", "GAMING"}, []string{"IGAMING"}, []string{"GAMING", "IGAMING"}, true},
		{[]string{"GAMING", "GAMING"}, []string{"GAMING"}, []string{"GAMING"}, true},
	}
	for _, tc := range cases {
		got, changed := Union(tc.existing, tc.add)
		if !slices.Equal(got, tc.want) || changed != tc.changed {
			t.Fatalf("Union(%v, %v) = %v, %v; want %v, %v", tc.existing, tc.add, got, changed, tc.want, tc.changed)
		}
	}
}
