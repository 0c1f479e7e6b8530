package matching

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

var (
	expertA = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	expertB = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")
	expertC = uuid.MustParse("cccccccc-0000-0000-0000-000000000003")
)

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name string
		req  HelpRequest
		want []string
	}{
		{
			name: "explicit tags win over text",
			req:  HelpRequest{Title: "Docker networking issue", Tags: []string{"React", "STRIPE", "react"}},
			want: []string{"react", "stripe"},
		},
		{
			name: "derived from title and description in occurrence order",
			req: HelpRequest{
				Title:       "Stripe webhook fails",
				Description: "My React checkout page never receives the webhook",
			},
			want: []string{"stripe", "react"},
		},
		{
			name: "short terms need word boundaries",
			req:  HelpRequest{Title: "Google Sheets formula help"},
			want: []string{},
		},
		{
			name: "short term on boundary matches",
			req:  HelpRequest{Title: "Go channels deadlock"},
			want: []string{"go"},
		},
		{
			name: "no vocabulary hits",
			req:  HelpRequest{Title: "Help me plan my wedding"},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTags(tt.req)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchExpertsConcreteScenario(t *testing.T) {
	// Request tags ["react","stripe"]: B covers both with a lower rating and
	// must outrank A, which covers one with a higher rating.
	candidates := []ExpertCandidate{
		{ID: expertA, Tags: []string{"react", "node"}, Rating: 4.0, Available: true},
		{ID: expertB, Tags: []string{"react", "stripe"}, Rating: 3.0, Available: true},
	}

	results := MatchExpertsByTags(candidates, []string{"react", "stripe"}, DefaultOptions())

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ExpertID != expertB {
		t.Errorf("top result = %s, want expert B", results[0].ExpertID)
	}
	for _, r := range results {
		if r.Score <= 0 || r.Score > 1 {
			t.Errorf("score %f of %s out of (0,1]", r.Score, r.ExpertID)
		}
	}
	if !reflect.DeepEqual(results[0].MatchedTags, []string{"react", "stripe"}) {
		t.Errorf("B matched tags = %v, want [react stripe]", results[0].MatchedTags)
	}
}

func TestMatchExpertsDeterminism(t *testing.T) {
	candidates := []ExpertCandidate{
		{ID: expertA, Tags: []string{"go", "docker"}, Rating: 4.5, Available: true, TotalSessions: 12},
		{ID: expertB, Tags: []string{"go"}, Rating: 4.5, Available: true, TotalSessions: 30},
		{ID: expertC, Tags: []string{"docker"}, Rating: 2.0, Available: true, TotalSessions: 3},
	}
	req := HelpRequest{Title: "Go service in Docker keeps OOMing"}

	first := MatchExperts(candidates, req, DefaultOptions())
	for i := 0; i < 50; i++ {
		again := MatchExperts(candidates, req, DefaultOptions())
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, again, first)
		}
	}
}

func TestMatchExpertsOrderingInvariant(t *testing.T) {
	// A and B tie on score and rating; B has more completed sessions.
	candidates := []ExpertCandidate{
		{ID: expertA, Tags: []string{"react"}, Rating: 4.0, Available: true, TotalSessions: 5},
		{ID: expertB, Tags: []string{"react"}, Rating: 4.0, Available: true, TotalSessions: 50},
		{ID: expertC, Tags: []string{"react"}, Rating: 5.0, Available: true, TotalSessions: 1},
	}

	results := MatchExpertsByTags(candidates, []string{"react"}, DefaultOptions())

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	want := []uuid.UUID{expertC, expertB, expertA}
	for i, id := range want {
		if results[i].ExpertID != id {
			t.Errorf("position %d = %s, want %s", i, results[i].ExpertID, id)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Errorf("scores not descending at %d: %f < %f", i, results[i-1].Score, results[i].Score)
		}
	}
}

func TestMatchExpertsFiltering(t *testing.T) {
	opts := DefaultOptions()
	opts.RequirePayoutAccount = true
	opts.MinMatchScore = 0.5

	candidates := []ExpertCandidate{
		{ID: expertA, Tags: []string{"react"}, Rating: 5.0, Available: false, HasPayoutAccount: true},
		{ID: expertB, Tags: []string{"react"}, Rating: 5.0, Available: true, HasPayoutAccount: false},
		{ID: expertC, Tags: []string{"react"}, Rating: 5.0, Available: true, HasPayoutAccount: true},
	}

	results := MatchExpertsByTags(candidates, []string{"react"}, opts)

	if len(results) != 1 || results[0].ExpertID != expertC {
		t.Fatalf("got %v, want only expert C", results)
	}
	for _, r := range results {
		if r.Score < opts.MinMatchScore {
			t.Errorf("score %f below threshold %f", r.Score, opts.MinMatchScore)
		}
	}
}

func TestMatchExpertsCapRespected(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxResults = 3

	var candidates []ExpertCandidate
	for i := 0; i < 20; i++ {
		candidates = append(candidates, ExpertCandidate{
			ID:        uuid.New(),
			Tags:      []string{"python"},
			Rating:    float64(i%5) + 1,
			Available: true,
		})
	}

	results := MatchExpertsByTags(candidates, []string{"python"}, opts)
	if len(results) > 3 {
		t.Errorf("got %d results, cap is 3", len(results))
	}
}

func TestTagDominance(t *testing.T) {
	// Zero overlap + perfect rating must lose to full overlap + zero rating
	// under default weights.
	irrelevant := ExpertCandidate{ID: expertA, Tags: []string{"cobol"}, Rating: 5.0, Available: true}
	relevant := ExpertCandidate{ID: expertB, Tags: []string{"react", "stripe"}, Rating: 0.0, Available: true}

	tags := []string{"react", "stripe"}
	irrelevantScore, _ := Score(irrelevant, tags, DefaultOptions())
	relevantScore, _ := Score(relevant, tags, DefaultOptions())

	if relevantScore <= irrelevantScore {
		t.Errorf("tag dominance violated: relevant %f <= irrelevant %f", relevantScore, irrelevantScore)
	}
}

func TestEmptyInputs(t *testing.T) {
	if got := MatchExperts(nil, HelpRequest{Title: "React help"}, DefaultOptions()); len(got) != 0 {
		t.Errorf("empty pool: got %v, want empty", got)
	}

	// Empty tag list with MinMatchScore=0: all available candidates, sorted
	// by rating alone (the score reduces to the rating component).
	opts := DefaultOptions()
	opts.MinMatchScore = 0
	candidates := []ExpertCandidate{
		{ID: expertA, Rating: 2.0, Available: true},
		{ID: expertB, Rating: 4.5, Available: true},
	}
	results := MatchExpertsByTags(candidates, nil, opts)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ExpertID != expertB {
		t.Errorf("rating-only sort broken: top is %s", results[0].ExpertID)
	}

	// With the default threshold the rating component alone can still pass:
	// 0.3 * 4.5/5 = 0.27 >= 0.1. The threshold decides inclusion, not the
	// empty tag list itself.
	results = MatchExpertsByTags(candidates, nil, DefaultOptions())
	for _, r := range results {
		if r.Score < DefaultMinMatchScore {
			t.Errorf("score %f below default threshold", r.Score)
		}
		if len(r.MatchedTags) != 0 {
			t.Errorf("matched tags %v for empty request", r.MatchedTags)
		}
	}
}

func TestMalformedOptionsClamped(t *testing.T) {
	opts := Options{MinMatchScore: -4, MaxResults: -1, TagMatchWeight: -2, RatingWeight: -2}
	candidates := []ExpertCandidate{
		{ID: expertA, Tags: []string{"react"}, Rating: 4.0, Available: true},
	}

	// Must not panic and must behave like defaults for weights.
	results := MatchExpertsByTags(candidates, []string{"react"}, opts)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Score <= 0 || results[0].Score > 1 {
		t.Errorf("score %f out of (0,1]", results[0].Score)
	}
}
