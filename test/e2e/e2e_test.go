//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/stemsi/exstem-quizzes/internal/config"
	"github.com/stemsi/exstem-quizzes/internal/model"
	"github.com/stemsi/exstem-quizzes/internal/service"
)

const (
	defaultBaseURL = "http://localhost:8080"
	e2eQuizID      = "e2e-quiz"
)

var (
	baseURL     string
	dbURL       string
	reviewToken string
	gradingID   string
)

const e2eSpec = `{
	"version": "2", "id": "e2e-quiz", "title": "E2E", "body": null,
	"awardPointsEvenIfWrong": false, "grantPointsPolicy": "grant_whenever_possible",
	"quizItemDisplayDirection": "vertical", "submitMessage": null,
	"items": [
		{"type": "multiple-choice", "id": "mc", "order": 0, "title": "Pick A", "body": null,
		 "successMessage": null, "failureMessage": null, "messageOnModelSolution": null,
		 "shuffleOptions": false, "allowSelectingMultipleOptions": false,
		 "options": [
			{"id": "a", "order": 0, "correct": true, "title": "A", "body": null,
			 "messageAfterSubmissionWhenSelected": null, "additionalCorrectnessExplanationOnModelSolution": null},
			{"id": "b", "order": 1, "correct": false, "title": "B", "body": null,
			 "messageAfterSubmissionWhenSelected": null, "additionalCorrectnessExplanationOnModelSolution": null}
		 ],
		 "sharedOptionFeedbackMessage": null, "optionDisplayDirection": "vertical",
		 "multipleChoiceMultipleOptionsGradingPolicy": "default", "fogOfWar": false},
		{"type": "essay", "id": "essay", "order": 1, "title": "Explain", "body": null,
		 "successMessage": null, "failureMessage": null, "messageOnModelSolution": null,
		 "minWords": null, "maxWords": null}
	]
}`

const e2eAnswer = `{"version": "2", "itemAnswers": [
	{"type": "multiple-choice", "quizItemId": "mc", "valid": true, "selectedOptionIds": ["a"]},
	{"type": "essay", "quizItemId": "essay", "valid": true, "textData": "Because A."}
]}`

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	cfg := config.Load()
	dbURL = cfg.DatabaseURL

	if err := cleanup(); err != nil {
		fmt.Printf("Setup failed: %v\n", err)
		os.Exit(1)
	}

	token, err := service.NewAuthService(cfg).GenerateServiceToken("e2e",
		[]string{service.ScopeGradingsRead, service.ScopeGradingsReview}, time.Hour)
	if err != nil {
		fmt.Printf("Token failed: %v\n", err)
		os.Exit(1)
	}
	reviewToken = token

	os.Exit(m.Run())
}

func cleanup() error {
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, `DELETE FROM grading_records WHERE quiz_id = $1`, e2eQuizID); err != nil {
		return fmt.Errorf("cleanup grading_records: %w", err)
	}
	return nil
}

func TestE2EFlow(t *testing.T) {
	t.Run("PublicSpecHidesAnswers", func(t *testing.T) {
		resp, err := post("/api/public-spec", map[string]any{
			"request_id":   "e2e",
			"private_spec": json.RawMessage(e2eSpec),
		}, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
		if body := readBody(resp); bytes.Contains([]byte(body), []byte(`"correct"`)) {
			t.Errorf("public spec leaks correctness: %s", body)
		}
	})

	t.Run("GradeWithEssay", func(t *testing.T) {
		resp, err := post("/api/grade", map[string]any{
			"exercise_spec":      json.RawMessage(e2eSpec),
			"submission_data":    json.RawMessage(e2eAnswer),
			"grading_update_url": nil,
		}, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
		var result model.GradingResult
		decodeJSON(t, resp, &result)
		if result.GradingProgress != model.GradingProgressPendingManual {
			t.Fatalf("expected PendingManual, got %s", result.GradingProgress)
		}
	})

	t.Run("PendingGradingIsListed", func(t *testing.T) {
		// The persist worker flushes in batches, so poll.
		deadline := time.Now().Add(10 * time.Second)
		for time.Now().Before(deadline) {
			resp, err := get("/api/v1/gradings?progress=PendingManual&quiz_id="+e2eQuizID, reviewToken)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			var body struct {
				Data struct {
					Gradings []model.GradingRecordSummary `json:"gradings"`
				} `json:"data"`
			}
			decodeJSON(t, resp, &body)
			resp.Body.Close()

			if len(body.Data.Gradings) > 0 {
				gradingID = body.Data.Gradings[0].ID.String()
				return
			}
			time.Sleep(500 * time.Millisecond)
		}
		t.Fatal("grading was not persisted in time")
	})

	t.Run("Review", func(t *testing.T) {
		if gradingID == "" {
			t.Skip("no grading to review")
		}
		resp, err := post("/api/v1/gradings/"+gradingID+"/review", map[string]any{
			"item_scores": map[string]float64{"essay": 1},
		}, reviewToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
		var body struct {
			Data struct {
				Result model.GradingResult `json:"result"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		if body.Data.Result.ScoreGiven != 2 || body.Data.Result.ScoreMaximum != 2 {
			t.Errorf("expected 2/2, got %v/%d", body.Data.Result.ScoreGiven, body.Data.Result.ScoreMaximum)
		}
	})

	t.Run("ReviewTwiceConflicts", func(t *testing.T) {
		if gradingID == "" {
			t.Skip("no grading to review")
		}
		resp, err := post("/api/v1/gradings/"+gradingID+"/review", map[string]any{
			"item_scores": map[string]float64{"essay": 1},
		}, reviewToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", resp.StatusCode, readBody(resp))
		}
	})

	t.Run("Export", func(t *testing.T) {
		resp, err := get("/api/v1/gradings/export?quiz_id="+e2eQuizID, reviewToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
		// XLSX files are zip archives.
		if body := readBody(resp); len(body) < 2 || body[:2] != "PK" {
			t.Error("export is not an xlsx archive")
		}
	})

	t.Run("ReviewAPIRequiresToken", func(t *testing.T) {
		resp, err := get("/api/v1/gradings", "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})
}

// Helpers

func post(path string, body interface{}, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest("POST", baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func get(path string, token string) (*http.Response, error) {
	req, err := http.NewRequest("GET", baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("json decode: %v", err)
	}
}
