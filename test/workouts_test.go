//go:build integration

package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/2beens/fittrack/internal/progress"
	"github.com/2beens/fittrack/internal/route"
	"github.com/2beens/fittrack/internal/tracking"
	"github.com/2beens/fittrack/internal/workouts"

	"github.com/google/uuid"
)

func (s *IntegrationTestSuite) doRequest(method, path string, body any) (int, []byte) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, serverEndpoint+path, reqBody)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, respBody
}

func (s *IntegrationTestSuite) TestStrengthWorkout() {
	date := time.Date(2024, 4, 1, 18, 0, 0, 0, time.UTC)
	for i, weight := range []float64{100, 95, 105} {
		req := workouts.StrengthRequest{
			Name: "bench press",
			Date: date.AddDate(0, 0, i*3),
			Exercises: []workouts.ExerciseInput{{
				TemplateID: "bench",
				Sets: []workouts.SetInput{
					{Reps: 5, Weight: weight},
					{Reps: 5, Weight: weight},
				},
			}},
		}
		perfID := uuid.New()
		req.Exercises[0].ID = &perfID

		status, body := s.doRequest("POST", "/strength", req)
		s.Require().Equal(http.StatusCreated, status, string(body))
		// resubmitting the same exercise saves nothing new
		status, body = s.doRequest("POST", "/strength", req)
		s.Require().Equal(http.StatusCreated, status, string(body))
	}

	var workoutRows int
	s.Require().NoError(s.DB.QueryRow(`SELECT COUNT(*) FROM workout WHERE type = 'strength'`).Scan(&workoutRows))
	s.Equal(3, workoutRows)

	var lastUsed time.Time
	s.Require().NoError(s.DB.QueryRow(
		`SELECT last_used FROM exercise_template WHERE id = $1`, "bench",
	).Scan(&lastUsed))
	s.False(lastUsed.IsZero())

	status, body := s.doRequest("GET", "/progress/bench/best/1rm", nil)
	s.Require().Equal(http.StatusOK, status)
	var best progress.Metric
	s.Require().NoError(json.Unmarshal(body, &best))
	s.InDelta(118.125, best.Value, 1e-9)

	status, body = s.doRequest("GET", "/progress/bench/history/1rm", nil)
	s.Require().Equal(http.StatusOK, status)
	var history []progress.Metric
	s.Require().NoError(json.Unmarshal(body, &history))
	s.Len(history, 2)

	status, body = s.doRequest("GET", "/progress/bench/latest", nil)
	s.Require().Equal(http.StatusOK, status)
	var snapshot progress.Snapshot
	s.Require().NoError(json.Unmarshal(body, &snapshot))
	s.Equal(105.0, snapshot.Stats.MaxWeight)

	var volumeRows int
	s.Require().NoError(s.DB.QueryRow(
		`SELECT COUNT(*) FROM progress_metric WHERE template_id = $1 AND kind = $2`,
		"bench", string(progress.KindTotalVolume),
	).Scan(&volumeRows))
	s.Equal(3, volumeRows)
}

func (s *IntegrationTestSuite) TestTrackedSession() {
	status, body := s.doRequest("POST", "/sessions", tracking.StartRequest{TemplateID: "ride"})
	s.Require().Equal(http.StatusCreated, status, string(body))

	t0 := time.Now()
	samples := make([]tracking.Sample, 0, 10)
	for i := 0; i < 10; i++ {
		samples = append(samples, tracking.Sample{
			Latitude:  46.0 + float64(i)*0.002,
			Longitude: 14.5,
			Timestamp: t0.Add(time.Duration(i) * 30 * time.Second),
		})
	}
	status, body = s.doRequest("POST", "/sessions/current/samples", tracking.SamplesRequest{Samples: samples})
	s.Require().Equal(http.StatusOK, status, string(body))

	status, body = s.doRequest("POST", "/sessions/current/stop", nil)
	s.Require().Equal(http.StatusOK, status, string(body))

	status, body = s.doRequest("GET", "/workouts/list/page/1/size/5?type=cardio", nil)
	s.Require().Equal(http.StatusOK, status)
	var list workouts.ListResponse
	s.Require().NoError(json.Unmarshal(body, &list))
	s.Require().Equal(1, list.Total)
	s.Require().NotNil(list.Workouts[0].RouteID)

	status, body = s.doRequest("GET", fmt.Sprintf("/workouts/route/%s", list.Workouts[0].RouteID), nil)
	s.Require().Equal(http.StatusOK, status)
	var points []route.GeoPoint
	s.Require().NoError(json.Unmarshal(body, &points))
	s.Len(points, 10)
	s.Equal(10, points[9].Sequence)

	status, _ = s.doRequest("DELETE", "/sessions/current", nil)
	s.Equal(http.StatusNoContent, status)
}
