package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kalp-cg/nyayasankalan/internal/domain/entity"
)

type sweepCaseRepo struct {
	pending []*entity.Case
	urls    map[string]string
}

func (m *sweepCaseRepo) Create(ctx context.Context, c *entity.Case, fir *entity.FIR) error {
	return nil
}

func (m *sweepCaseRepo) GetByID(ctx context.Context, id string) (*entity.Case, error) {
	return nil, nil
}

func (m *sweepCaseRepo) MarkArchived(ctx context.Context, id string) error { return nil }

func (m *sweepCaseRepo) SetClosureReportURL(ctx context.Context, id string, url string) error {
	m.urls[id] = url
	return nil
}

func (m *sweepCaseRepo) ListArchivedWithoutReport(ctx context.Context, limit int) ([]*entity.Case, error) {
	return m.pending, nil
}

func (m *sweepCaseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Case, error) {
	return nil, nil
}

type sweepAuditRepo struct {
	entries []*entity.AuditEntry
}

func (m *sweepAuditRepo) Append(ctx context.Context, e *entity.AuditEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

type sweepReportGen struct {
	failFor map[string]bool
	calls   []string
}

func (m *sweepReportGen) Generate(ctx context.Context, caseID, actorID string) (string, error) {
	m.calls = append(m.calls, caseID)
	if m.failFor[caseID] {
		return "", errors.New("report service down")
	}
	return "https://reports.example/" + caseID + ".pdf", nil
}

func TestReportSweep_Run(t *testing.T) {
	caseRepo := &sweepCaseRepo{
		pending: []*entity.Case{
			{ID: "case-a", IsArchived: true},
			{ID: "case-b", IsArchived: true},
		},
		urls: make(map[string]string),
	}
	auditRepo := &sweepAuditRepo{}
	reportGen := &sweepReportGen{}

	sweep := NewReportSweep(caseRepo, auditRepo, reportGen, Config{}, zap.NewNop())
	sweep.Run()

	if len(reportGen.calls) != 2 {
		t.Fatalf("generator calls = %d, want 2", len(reportGen.calls))
	}
	if caseRepo.urls["case-a"] == "" || caseRepo.urls["case-b"] == "" {
		t.Errorf("report URLs not recorded: %v", caseRepo.urls)
	}
	if len(auditRepo.entries) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(auditRepo.entries))
	}
	for _, e := range auditRepo.entries {
		if e.Action != entity.AuditClosureReportGenerated || e.UserID != "system" {
			t.Errorf("unexpected audit entry: %+v", e)
		}
	}
}

func TestReportSweep_SkipsFailedCases(t *testing.T) {
	caseRepo := &sweepCaseRepo{
		pending: []*entity.Case{
			{ID: "case-a", IsArchived: true},
			{ID: "case-b", IsArchived: true},
		},
		urls: make(map[string]string),
	}
	reportGen := &sweepReportGen{failFor: map[string]bool{"case-a": true}}

	sweep := NewReportSweep(caseRepo, &sweepAuditRepo{}, reportGen, Config{}, zap.NewNop())
	sweep.Run()

	if _, ok := caseRepo.urls["case-a"]; ok {
		t.Error("failed case should retain no report URL")
	}
	if caseRepo.urls["case-b"] == "" {
		t.Error("failure on one case must not block the rest of the batch")
	}
}

func TestReportSweep_StartStop(t *testing.T) {
	caseRepo := &sweepCaseRepo{urls: make(map[string]string)}

	sweep := NewReportSweep(caseRepo, &sweepAuditRepo{}, &sweepReportGen{}, Config{
		Schedule:  "@every 1h",
		BatchSize: 5,
	}, zap.NewNop())

	if err := sweep.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan struct{})
	go func() {
		sweep.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
