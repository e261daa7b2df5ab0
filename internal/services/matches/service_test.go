package matches

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/domain/enums"
	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
)

type matchStoreStub struct {
	matches     map[int64]pgrepo.MatchRecord
	deactivated []int64
}

func newMatchStoreStub() *matchStoreStub {
	return &matchStoreStub{matches: map[int64]pgrepo.MatchRecord{}}
}

func (s *matchStoreStub) ListActiveForUser(_ context.Context, userID int64, _ int) ([]pgrepo.ActiveMatchRecord, error) {
	out := []pgrepo.ActiveMatchRecord{}
	for _, m := range s.matches {
		if !m.IsActive {
			continue
		}
		if m.UserAID == userID || m.UserBID == userID {
			counterpart := m.UserAID
			if counterpart == userID {
				counterpart = m.UserBID
			}
			out = append(out, pgrepo.ActiveMatchRecord{
				ID:            m.ID,
				CounterpartID: counterpart,
				MatchedAt:     m.MatchedAt,
			})
		}
	}
	return out, nil
}

func (s *matchStoreStub) GetActiveByID(_ context.Context, matchID int64) (pgrepo.MatchRecord, error) {
	m, ok := s.matches[matchID]
	if !ok || !m.IsActive {
		return pgrepo.MatchRecord{}, pgrepo.ErrMatchNotFound
	}
	return m, nil
}

func (s *matchStoreStub) Deactivate(_ context.Context, _ pgx.Tx, matchID, userID int64) (bool, error) {
	m, ok := s.matches[matchID]
	if !ok || !m.IsActive || (m.UserAID != userID && m.UserBID != userID) {
		return false, nil
	}
	m.IsActive = false
	s.matches[matchID] = m
	s.deactivated = append(s.deactivated, matchID)
	return true, nil
}

func (s *matchStoreStub) DeactivateByUsers(_ context.Context, _ pgx.Tx, userID, targetID int64) (bool, error) {
	for id, m := range s.matches {
		if !m.IsActive {
			continue
		}
		if (m.UserAID == userID && m.UserBID == targetID) || (m.UserAID == targetID && m.UserBID == userID) {
			m.IsActive = false
			s.matches[id] = m
			s.deactivated = append(s.deactivated, id)
			return true, nil
		}
	}
	return false, nil
}

type blockStoreStub struct {
	blocks [][2]int64
}

func (s *blockStoreStub) Upsert(_ context.Context, _ pgx.Tx, blockerID, blockedID int64, _ time.Time) error {
	s.blocks = append(s.blocks, [2]int64{blockerID, blockedID})
	return nil
}

type reportStoreStub struct {
	reports []pgrepo.ReportRecord
}

func (s *reportStoreStub) Create(_ context.Context, _ pgx.Tx, reporterID, reportedID int64, reason, details string, now time.Time) (pgrepo.ReportRecord, error) {
	rec := pgrepo.ReportRecord{
		ID:         int64(len(s.reports) + 1),
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     reason,
		Details:    details,
		CreatedAt:  now,
	}
	s.reports = append(s.reports, rec)
	return rec, nil
}

type cacheStub struct {
	dropped []string
}

func (s *cacheStub) Delete(_ context.Context, keys ...string) error {
	s.dropped = append(s.dropped, keys...)
	return nil
}

func newMatchServiceForTest(matches *matchStoreStub, blocks *blockStoreStub, reports *reportStoreStub, cache *cacheStub) *Service {
	svc := NewService(Dependencies{
		MatchStore:  matches,
		BlockStore:  blocks,
		ReportStore: reports,
		Cache:       cache,
	})
	svc.withTx = func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	svc.now = func() time.Time {
		return time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestUnmatchDeactivatesForMember(t *testing.T) {
	matches := newMatchStoreStub()
	matches.matches[31] = pgrepo.MatchRecord{ID: 31, UserAID: 1, UserBID: 2, IsActive: true}
	cache := &cacheStub{}
	svc := newMatchServiceForTest(matches, &blockStoreStub{}, &reportStoreStub{}, cache)

	if err := svc.Unmatch(context.Background(), 1, 31); err != nil {
		t.Fatalf("unmatch: %v", err)
	}
	if matches.matches[31].IsActive {
		t.Fatal("match should be inactive after unmatch")
	}
	if len(cache.dropped) != 2 {
		t.Fatalf("expected both conversation caches dropped, got %v", cache.dropped)
	}
}

func TestUnmatchRejectsNonMember(t *testing.T) {
	matches := newMatchStoreStub()
	matches.matches[32] = pgrepo.MatchRecord{ID: 32, UserAID: 1, UserBID: 2, IsActive: true}
	svc := newMatchServiceForTest(matches, &blockStoreStub{}, &reportStoreStub{}, nil)

	if err := svc.Unmatch(context.Background(), 9, 32); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
	if !matches.matches[32].IsActive {
		t.Fatal("match must stay active for a non-member request")
	}
}

func TestBlockWritesBlockAndClosesMatch(t *testing.T) {
	matches := newMatchStoreStub()
	matches.matches[33] = pgrepo.MatchRecord{ID: 33, UserAID: 1, UserBID: 2, IsActive: true}
	blocks := &blockStoreStub{}
	cache := &cacheStub{}
	svc := newMatchServiceForTest(matches, blocks, &reportStoreStub{}, cache)

	if err := svc.Block(context.Background(), 1, 2); err != nil {
		t.Fatalf("block: %v", err)
	}

	if len(blocks.blocks) != 1 || blocks.blocks[0] != [2]int64{1, 2} {
		t.Fatalf("unexpected blocks %v", blocks.blocks)
	}
	if matches.matches[33].IsActive {
		t.Fatal("match should be closed by block")
	}
	if len(cache.dropped) == 0 {
		t.Fatal("expected cache invalidation on block")
	}
}

func TestReportValidatesReason(t *testing.T) {
	svc := newMatchServiceForTest(newMatchStoreStub(), &blockStoreStub{}, &reportStoreStub{}, nil)

	err := svc.Report(context.Background(), 1, 2, enums.ReportReason("nonsense"), "", false)
	if !errors.Is(err, ErrInvalidReportReason) {
		t.Fatalf("expected ErrInvalidReportReason, got %v", err)
	}
}

func TestReportWithBlock(t *testing.T) {
	matches := newMatchStoreStub()
	matches.matches[34] = pgrepo.MatchRecord{ID: 34, UserAID: 1, UserBID: 2, IsActive: true}
	blocks := &blockStoreStub{}
	reports := &reportStoreStub{}
	svc := newMatchServiceForTest(matches, blocks, reports, &cacheStub{})

	if err := svc.Report(context.Background(), 1, 2, enums.ReportReasonHarassment, "abusive messages", true); err != nil {
		t.Fatalf("report: %v", err)
	}

	if len(reports.reports) != 1 || reports.reports[0].Reason != "harassment" {
		t.Fatalf("unexpected reports %+v", reports.reports)
	}
	if len(blocks.blocks) != 1 {
		t.Fatalf("expected block alongside report, got %v", blocks.blocks)
	}
	if matches.matches[34].IsActive {
		t.Fatal("match should be closed when report includes block")
	}
}
