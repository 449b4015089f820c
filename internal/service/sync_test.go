package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"MatchSync/internal/interfaces"
	"MatchSync/internal/model"
)

type fakeSchedule struct {
	list    map[string][]model.ScheduledMatch
	err     error
	calls   atomic.Int32
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (f *fakeSchedule) FetchMatchList(ctx context.Context) (map[string][]model.ScheduledMatch, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
		<-f.release
	}
	return f.list, f.err
}

type fakePlaylist struct {
	set *model.CandidateSet
}

func (f *fakePlaylist) FetchCandidates(context.Context) *model.CandidateSet {
	return f.set
}

type fakePublisher struct {
	mu        sync.Mutex
	name      string
	err       error
	published []*model.Snapshot
}

func (f *fakePublisher) Name() string { return f.name }

func (f *fakePublisher) Publish(_ context.Context, _ string, snapshot *model.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, snapshot)
	return f.err
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func newTestSyncService(schedule *fakeSchedule, nodes *fakeNodeSource, set *model.CandidateSet, pubs ...*fakePublisher) *SyncService {
	publishers := make([]interfaces.Publisher, 0, len(pubs))
	for _, p := range pubs {
		publishers = append(publishers, p)
	}
	svc := NewSyncService(SyncOptions{
		Schedule:   schedule,
		Nodes:      nodes,
		Playlist:   &fakePlaylist{set: set},
		Publishers: publishers,
		MatchDelay: time.Hour,
		Tolerance:  30 * time.Minute,
	}, quietLogger())
	svc.sleep = func(context.Context, time.Duration) {}
	svc.now = func() time.Time { return time.Date(2024, 1, 3, 7, 0, 0, 0, time.UTC) }
	return svc
}

func sampleSchedule() *fakeSchedule {
	return &fakeSchedule{list: map[string][]model.ScheduledMatch{
		"20240104": {{MgdbID: "m3", PkInfoTitle: "C VS D", CompetitionName: "CBA", Keyword: "1月4日 19:35"}},
		"20240103": {
			{MgdbID: "m1", PkInfoTitle: "热火VS76人", CompetitionName: "NBA", Keyword: "1月3日 15:00"},
			{MgdbID: "m2", PkInfoTitle: "A VS B", CompetitionName: "NBA", Keyword: "1月3日 9:05"},
		},
	}}
}

func sampleNodes() *fakeNodeSource {
	return &fakeNodeSource{docs: map[string]*model.NodeDocument{
		"m1": nodeDoc(&model.MultiPlayList{
			ReplayList: []model.NodeItem{{PID: "1", Name: "A"}},
			LiveList:   []model.NodeItem{{PID: "1", Name: "A"}, {PID: "2", Name: "B"}},
		}),
		"m2": {Code: 500},
	}}
}

func TestRunOrdersDatesAndMergesNodes(t *testing.T) {
	set := model.NewCandidateSet()
	set.Add("76人VS热火", "76人VS热火", "NBA", "15:25", model.CandidateNode{Name: "高清", URL: "http://s/1"})

	nodes := sampleNodes()
	svc := newTestSyncService(sampleSchedule(), nodes, set)
	var pauses []time.Duration
	svc.sleep = func(_ context.Context, d time.Duration) { pauses = append(pauses, d) }

	snapshot, stats := svc.Run(context.Background())
	if !snapshot.Success || snapshot.UpdateTime != "2024-01-03 15:00:00" {
		t.Fatalf("snapshot = %+v", snapshot)
	}

	// m2 节点获取失败也要等待
	if len(pauses) != 3 {
		t.Fatalf("pauses = %v, want one after each of 3 matches", pauses)
	}
	for i, d := range pauses {
		if d != time.Hour {
			t.Errorf("pause[%d] = %v, want %v", i, d, time.Hour)
		}
	}

	wantOrder := []string{"m1", "m2", "m3"}
	if len(snapshot.Data) != len(wantOrder) {
		t.Fatalf("data = %+v", snapshot.Data)
	}
	for i, id := range wantOrder {
		if snapshot.Data[i].MgdbID.String() != id {
			t.Errorf("data[%d] = %s, want %s", i, snapshot.Data[i].MgdbID, id)
		}
		if nodes.calls[i] != id {
			t.Errorf("node request[%d] = %s, want %s", i, nodes.calls[i], id)
		}
	}

	m1 := snapshot.Data[0]
	if len(m1.Nodes) != 3 || m1.Nodes[2].URL != "http://s/1" || m1.Keyword != "01月03日15:00" {
		t.Errorf("m1 = %+v", m1)
	}
	if m2 := snapshot.Data[1]; len(m2.Nodes) != 0 || m2.Nodes == nil {
		t.Errorf("m2 nodes = %#v", m2.Nodes)
	}

	if stats.Matches != 3 || stats.Dates != 2 || stats.Correlated != 1 ||
		stats.CorrelationSkipped != 1 || stats.NodeFailures != 2 || stats.Candidates != 1 || !stats.Success {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRunEmptyPlaylistKeepsResolverNodes(t *testing.T) {
	svc := newTestSyncService(sampleSchedule(), sampleNodes(), nil)

	snapshot, stats := svc.Run(context.Background())
	if !snapshot.Success {
		t.Fatalf("snapshot = %+v", snapshot)
	}
	if got := snapshot.Data[0].Nodes; len(got) != 2 || got[0].PID != "1" || got[1].PID != "2" {
		t.Errorf("nodes = %+v", got)
	}
	if stats.Correlated != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRunScheduleFailure(t *testing.T) {
	schedule := &fakeSchedule{err: errors.New("HTTP 503: Service Unavailable")}
	nodes := sampleNodes()
	pub := &fakePublisher{name: "file"}
	svc := newTestSyncService(schedule, nodes, nil, pub)

	res, err := svc.RunAndPublish(context.Background())
	if err != nil {
		t.Fatalf("RunAndPublish error: %v", err)
	}
	s := res.Snapshot
	if s.Success || s.Error == "" || s.Data == nil || len(s.Data) != 0 {
		t.Fatalf("snapshot = %+v", s)
	}
	if pub.count() != 0 {
		t.Error("failed snapshot must not be published")
	}
	if len(nodes.calls) != 0 {
		t.Error("no node requests expected after schedule failure")
	}
	if svc.Latest() != nil {
		t.Error("latest must stay empty")
	}
	if st := svc.LastStats(); st == nil || st.Success || st.Published {
		t.Errorf("stats = %+v", st)
	}
}

func TestRunAndPublishEmptyScheduleSkipsPublish(t *testing.T) {
	pub := &fakePublisher{name: "file"}
	svc := newTestSyncService(&fakeSchedule{list: map[string][]model.ScheduledMatch{}}, sampleNodes(), nil, pub)

	res, err := svc.RunAndPublish(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Snapshot.Success || pub.count() != 0 || res.Stats.Published {
		t.Fatalf("empty data must not be published: %+v", res.Stats)
	}
}

func TestRunAndPublishPublishesToAll(t *testing.T) {
	ok := &fakePublisher{name: "file"}
	bad := &fakePublisher{name: "database", err: errors.New("disk full")}
	svc := newTestSyncService(sampleSchedule(), sampleNodes(), nil, bad, ok)

	res, err := svc.RunAndPublish(context.Background())
	if err == nil {
		t.Fatal("expected publisher error")
	}
	if ok.count() != 1 || bad.count() != 1 {
		t.Errorf("every publisher must be tried, got file=%d database=%d", ok.count(), bad.count())
	}
	if res.Stats.Published {
		t.Error("published must be false when a publisher fails")
	}
	if svc.Latest() != res.Snapshot {
		t.Error("valid snapshot must be remembered even if a publisher fails")
	}
}

func TestRunAndPublishCoalescesConcurrentCalls(t *testing.T) {
	schedule := sampleSchedule()
	schedule.started = make(chan struct{})
	schedule.release = make(chan struct{})
	pub := &fakePublisher{name: "file"}
	svc := newTestSyncService(schedule, sampleNodes(), nil, pub)

	var wg sync.WaitGroup
	results := make([]*RunResult, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = svc.RunAndPublish(context.Background())
	}()
	<-schedule.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = svc.RunAndPublish(context.Background())
	}()
	time.Sleep(50 * time.Millisecond)
	close(schedule.release)
	wg.Wait()

	if got := schedule.calls.Load(); got != 1 {
		t.Fatalf("schedule fetched %d times, want 1", got)
	}
	if pub.count() != 1 || results[0] != results[1] {
		t.Errorf("concurrent calls must share one run")
	}
}

func TestRestore(t *testing.T) {
	svc := newTestSyncService(sampleSchedule(), sampleNodes(), nil)

	if svc.Restore(&model.Snapshot{Success: true, Data: []model.MergedMatch{}}) {
		t.Error("empty snapshot must be rejected")
	}
	restored := &model.Snapshot{Success: true, Data: []model.MergedMatch{{MgdbID: "old"}}}
	if !svc.Restore(restored) || svc.Latest() != restored {
		t.Fatal("valid snapshot must be restored")
	}

	res, err := svc.RunAndPublish(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if svc.Latest() != res.Snapshot {
		t.Error("a new run must replace the restored snapshot")
	}
}
