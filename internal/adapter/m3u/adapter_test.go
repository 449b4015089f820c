package m3u

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"MatchSync/internal/playlist"
	"MatchSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

func newAdapter(url string, client *http.Client) *Adapter {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	fetcher := httpclient.NewFetcherWithClient(client, 1, 0, logger)
	return NewM3UAdapter(url, fetcher, playlist.NewAggregator(playlist.DefaultRules(), logger), logger)
}

func TestFetchCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("#EXTM3U\n" +
			`#EXTINF:-1 tvg-id="湖人VS勇士" tvg-name="NBA 湖人VS勇士 高清 10:00" group-title="体育-今天",湖人` + "\n" +
			"http://stream.test/lal\n"))
	}))
	defer srv.Close()

	set := newAdapter(srv.URL, srv.Client()).FetchCandidates(context.Background())
	if set.Len() != 1 {
		t.Fatalf("candidates = %d, want 1", set.Len())
	}
	cand, ok := set.Get("湖人VS勇士")
	if !ok {
		t.Fatal("candidate not found")
	}
	if cand.Nodes[0].Name != "高清" {
		t.Errorf("node name = %q", cand.Nodes[0].Name)
	}
}

func TestFetchCandidatesFailureYieldsEmptySet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	set := newAdapter(srv.URL, srv.Client()).FetchCandidates(context.Background())
	if set == nil || set.Len() != 0 {
		t.Fatalf("expected empty set, got %v", set)
	}
}

func TestFetchCandidatesWithoutURL(t *testing.T) {
	set := newAdapter("", http.DefaultClient).FetchCandidates(context.Background())
	if set == nil || set.Len() != 0 {
		t.Fatal("expected empty set")
	}
}
