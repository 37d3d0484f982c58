package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"claimrag/types"

	"github.com/google/uuid"
)

const fixtureCSV = `policy_number,policy_state,policy_annual_premium,age,insured_sex,insured_occupation,insured_education_level,insured_hobbies,policy_bind_date,umbrella_limit,incident_date,incident_hour_of_the_day,incident_city,incident_state,incident_type,incident_severity,number_of_vehicles_involved,authorities_contacted,witnesses,police_report_available,total_claim_amount,injury_claim,property_claim,vehicle_claim,auto_make,auto_model,auto_year,fraud_reported
521585,OH,1406.91,48,MALE,craft-repair,MD,sleeping,2014-10-17,0,2015-01-25,5,Arlington,SC,Single Vehicle Collision,Major Damage,1,Police,2,YES,71610,6510,13020,52080,Saab,92x,2004,Y
687698,VA,1413.14,29,FEMALE,sales,PhD,chess,2000-06-27,5000000,2015-02-22,17,Arlington,VA,Bodily Injury,Major Damage,1,Ambulance,3,YES,63400,12680,6340,44380,Honda,Civic,2009,N
`

type stubEmbedder struct {
	calls   int
	failAt  int // record batch number to fail on, 0 = never
	batches [][]string
}

func (s *stubEmbedder) Model() string { return "stub" }

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.failAt > 0 && s.calls == s.failAt {
		return nil, errors.New("embedding backend down")
	}
	s.batches = append(s.batches, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(s.calls), float32(i)}
	}
	return out, nil
}

type recordingStore struct {
	addCalls int
	added    []types.Chunk
	addErr   error
}

func (r *recordingStore) Init(context.Context) error { return nil }

func (r *recordingStore) EnsureCollection(_ context.Context, name, model string) (*types.Collection, error) {
	return &types.Collection{ID: uuid.New(), Name: name, EmbeddingModel: model}, nil
}

func (r *recordingStore) AddChunks(_ context.Context, _ uuid.UUID, chunks []types.Chunk) error {
	r.addCalls++
	if r.addErr != nil {
		return r.addErr
	}
	r.added = append(r.added, chunks...)
	return nil
}

func (r *recordingStore) Search(context.Context, uuid.UUID, []float32, int) ([]types.RetrievedChunk, error) {
	return nil, nil
}

func (r *recordingStore) CountChunks(context.Context, uuid.UUID) (int, error) {
	return len(r.added), nil
}

func fixturePath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claims.csv")
	if err := os.WriteFile(path, []byte(fixtureCSV), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestRun_IngestsAllChunksInOneBulkInsert(t *testing.T) {
	st := &recordingStore{}
	emb := &stubEmbedder{}
	svc := New(st, emb, uuid.New(), fixturePath(t))

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if st.addCalls != 1 {
		t.Fatalf("expected a single bulk insert, got %d", st.addCalls)
	}
	if len(st.added) != 6 {
		t.Fatalf("2 records must yield 6 chunks, got %d", len(st.added))
	}

	wantIDs := []string{"0_chunk1", "0_chunk2", "0_chunk3", "1_chunk1", "1_chunk2", "1_chunk3"}
	for i, ch := range st.added {
		if ch.ID != wantIDs[i] {
			t.Fatalf("chunk %d: expected id %s, got %s", i, wantIDs[i], ch.ID)
		}
		if len(ch.Embedding) == 0 {
			t.Fatalf("chunk %s missing embedding", ch.ID)
		}
	}

	// One embedding batch of 3 per record.
	if emb.calls != 2 {
		t.Fatalf("expected 2 embed calls, got %d", emb.calls)
	}
	for i, batch := range emb.batches {
		if len(batch) != 3 {
			t.Fatalf("batch %d: expected 3 texts, got %d", i, len(batch))
		}
	}
}

func TestRun_EmbedFailureAbortsWholeRun(t *testing.T) {
	st := &recordingStore{}
	emb := &stubEmbedder{failAt: 2}
	svc := New(st, emb, uuid.New(), fixturePath(t))

	err := svc.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "embed record") {
		t.Fatalf("expected labeled embed failure, got %v", err)
	}
	if st.addCalls != 0 {
		t.Fatal("nothing may be inserted after an embed failure")
	}
}

func TestRun_StoreFailureSurfaces(t *testing.T) {
	st := &recordingStore{addErr: fmt.Errorf("deadlock detected")}
	emb := &stubEmbedder{}
	svc := New(st, emb, uuid.New(), fixturePath(t))

	err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected bulk-insert error to surface")
	}
}

func TestRun_MissingCSVFails(t *testing.T) {
	svc := New(&recordingStore{}, &stubEmbedder{}, uuid.New(), filepath.Join(t.TempDir(), "none.csv"))
	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing claims file")
	}
}
