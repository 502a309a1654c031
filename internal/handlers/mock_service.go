package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"brewlink/internal/models"
	"brewlink/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockMonitoring struct {
	state models.MachineState
	chart service.ChartData
}

func (m *mockMonitoring) GetState() models.MachineState              { return m.state }
func (m *mockMonitoring) GetChart(context.Context) service.ChartData { return m.chart }

type mockCommands struct {
	result   models.CommandResult
	lastName string
	calls    int
}

func (m *mockCommands) Dispatch(_ context.Context, name string) models.CommandResult {
	m.calls++
	m.lastName = name
	return m.result
}

type mockShots struct {
	listResp  []models.ShotRecord
	listErr   error
	getResp   models.ShotRecord
	getErr    error
	importRec models.ShotRecord
	importErr error

	lastLimit   int
	lastGetID   string
	lastRaw     []byte
	lastProfile string
}

func (m *mockShots) List(_ context.Context, limit int) ([]models.ShotRecord, error) {
	m.lastLimit = limit
	return m.listResp, m.listErr
}
func (m *mockShots) Get(_ context.Context, id string) (models.ShotRecord, error) {
	m.lastGetID = id
	return m.getResp, m.getErr
}
func (m *mockShots) Import(_ context.Context, raw []byte, profile string) (models.ShotRecord, error) {
	m.lastRaw = raw
	m.lastProfile = profile
	return m.importRec, m.importErr
}

type mockProfiles struct {
	names     []string
	listErr   error
	curve     []models.TargetCurvePoint
	getErr    error
	saveErr   error
	lastSaved []models.TargetCurvePoint
	lastName  string
}

func (m *mockProfiles) Save(_ context.Context, name string, curve []models.TargetCurvePoint) error {
	m.lastName = name
	m.lastSaved = curve
	return m.saveErr
}
func (m *mockProfiles) Get(_ context.Context, name string) ([]models.TargetCurvePoint, error) {
	m.lastName = name
	return m.curve, m.getErr
}
func (m *mockProfiles) List(context.Context) ([]string, error) { return m.names, m.listErr }

type mockReplay struct {
	startShotErr    error
	startProfileErr error
	status          service.ReplayStatus

	lastShotID  string
	lastProfile string
	stopCalls   int
}

func (m *mockReplay) StartShot(_ context.Context, id string) error {
	m.lastShotID = id
	return m.startShotErr
}
func (m *mockReplay) StartProfile(_ context.Context, name string) error {
	m.lastProfile = name
	return m.startProfileErr
}
func (m *mockReplay) Stop(context.Context)         { m.stopCalls++ }
func (m *mockReplay) Status() service.ReplayStatus { return m.status }

type mockEventLog struct {
	resp     []models.SessionEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.SessionEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// doAuthed serves req through r with a valid bearer header attached.
func doAuthed(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
