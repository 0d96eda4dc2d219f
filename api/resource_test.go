package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestTasks(t *testing.T) {
	a, _ := newTestAPI(t)

	registerAndVerify(t, a, "a@x.com", "alice", "password1")
	token := login(t, a, "a@x.com", "password1")

	// Unauthenticated access is refused
	w := doJSON(t, a, http.MethodGet, "/api/tasks", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, a, http.MethodPost, "/api/tasks", gin.H{"title": ""}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, a, http.MethodPost, "/api/tasks", gin.H{"title": "Read notes", "status": "bogus"}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, a, http.MethodPost, "/api/tasks", gin.H{"title": "Read notes"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, model.TaskStatusPending, decodeBody(t, w)["status"])

	w = doJSON(t, a, http.MethodPost, "/api/tasks", gin.H{"title": "Finish essay", "status": "completed"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, a, http.MethodGet, "/api/tasks", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var tasks []model.Task
	require.NoError(t, jsonDecode(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 2)

	// Another user sees none of them
	registerAndVerify(t, a, "b@x.com", "bob", "password1")
	otherToken := login(t, a, "b@x.com", "password1")

	w = doJSON(t, a, http.MethodGet, "/api/tasks", nil, otherToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, jsonDecode(w.Body.Bytes(), &tasks))
	require.Empty(t, tasks)
}

func TestTaskSummary(t *testing.T) {
	a, _ := newTestAPI(t)

	registerAndVerify(t, a, "a@x.com", "alice", "password1")
	token := login(t, a, "a@x.com", "password1")

	for _, body := range []gin.H{
		{"title": "one", "status": "completed"},
		{"title": "two", "status": "completed"},
		{"title": "three", "status": "completed"},
		{"title": "four", "status": "pending"},
	} {
		w := doJSON(t, a, http.MethodPost, "/api/tasks", body, token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, a, http.MethodGet, "/api/tasks/summary", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	require.EqualValues(t, 3, body["completed_tasks"])
	require.EqualValues(t, 1, body["pending_tasks"])
	require.EqualValues(t, 75, body["productivity_score"])

	// A second hit on the same day updates the existing row
	w = doJSON(t, a, http.MethodGet, "/api/tasks/summary", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, a.DB.Model(model.DailySummary{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestEvents(t *testing.T) {
	a, _ := newTestAPI(t)

	registerAndVerify(t, a, "a@x.com", "alice", "password1")
	token := login(t, a, "a@x.com", "password1")

	start := time.Now().Add(time.Hour).UTC()
	end := start.Add(time.Hour)

	// End before start
	w := doJSON(t, a, http.MethodPost, "/api/events", gin.H{
		"title": "Study block", "start_time": end, "end_time": start,
	}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, a, http.MethodPost, "/api/events", gin.H{
		"title": "Study block", "start_time": start, "end_time": end,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Linking a task that belongs to someone else fails
	registerAndVerify(t, a, "b@x.com", "bob", "password1")
	otherToken := login(t, a, "b@x.com", "password1")

	w = doJSON(t, a, http.MethodPost, "/api/tasks", gin.H{"title": "Bob's task"}, otherToken)
	require.Equal(t, http.StatusCreated, w.Code)

	var bobTask model.Task
	require.NoError(t, jsonDecode(w.Body.Bytes(), &bobTask))

	w = doJSON(t, a, http.MethodPost, "/api/events", gin.H{
		"title": "Sneaky", "start_time": start, "end_time": end, "linked_task": bobTask.ID,
	}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, a, http.MethodGet, "/api/events", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var events []model.Event
	require.NoError(t, jsonDecode(w.Body.Bytes(), &events))
	require.Len(t, events, 1)
}

func TestRoadmaps(t *testing.T) {
	a, _ := newTestAPI(t)

	registerAndVerify(t, a, "a@x.com", "alice", "password1")
	token := login(t, a, "a@x.com", "password1")

	w := doJSON(t, a, http.MethodPost, "/api/roadmaps", gin.H{"title": "", "goal": ""}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, a, http.MethodPost, "/api/roadmaps", gin.H{
		"title": "Manual roadmap", "goal": "Learn Go",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, a, http.MethodPost, "/api/roadmaps/generate", gin.H{"goal": "Learn React for frontend jobs"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	require.Equal(t, "AI Roadmap for Learn React for frontend jobs", body["title"])

	steps, ok := body["steps"].([]any)
	require.True(t, ok)
	require.Len(t, steps, 3)

	w = doJSON(t, a, http.MethodGet, "/api/roadmaps", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var roadmaps []model.Roadmap
	require.NoError(t, jsonDecode(w.Body.Bytes(), &roadmaps))
	require.Len(t, roadmaps, 2)
}

func TestRoadmapGenerate_UpstreamFailure(t *testing.T) {
	a, _ := newTestAPI(t)
	a.Generator = &fakeGenerator{fail: true}
	a.setupRoutes()

	registerAndVerify(t, a, "a@x.com", "alice", "password1")
	token := login(t, a, "a@x.com", "password1")

	w := doJSON(t, a, http.MethodPost, "/api/roadmaps/generate", gin.H{"goal": "Learn Go"}, token)
	require.Equal(t, http.StatusBadGateway, w.Code)

	// Nothing was persisted for the failed call
	var count int64
	require.NoError(t, a.DB.Model(model.Roadmap{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestTruncatedGenerateTitle(t *testing.T) {
	a, _ := newTestAPI(t)

	registerAndVerify(t, a, "a@x.com", "alice", "password1")
	token := login(t, a, "a@x.com", "password1")

	longGoal := "Become a machine learning engineer with deep knowledge of transformers and MLOps"

	w := doJSON(t, a, http.MethodPost, "/api/roadmaps/generate", gin.H{"goal": longGoal}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	require.Equal(t, "AI Roadmap for "+longGoal[:50], body["title"])
}
