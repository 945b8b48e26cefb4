package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mahd-Mehn/dao-voting/internal/handler/response"
	"github.com/Mahd-Mehn/dao-voting/internal/model"
	"github.com/Mahd-Mehn/dao-voting/pkg/errno"
	"github.com/Mahd-Mehn/dao-voting/pkg/secret"
	"github.com/Mahd-Mehn/dao-voting/pkg/validator"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testTxHash  = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"
)

type fakeWriter struct {
	err        error
	lastTitle  string
	lastID     uint64
	lastSender common.Address
	keys       []*secret.PrivateKey
}

func (w *fakeWriter) record(key *secret.PrivateKey) (string, error) {
	w.lastSender = key.Address()
	w.keys = append(w.keys, key)
	key.Destroy()
	if w.err != nil {
		return "", w.err
	}
	return testTxHash, nil
}

func (w *fakeWriter) CreateProposal(_ context.Context, title, _ string, key *secret.PrivateKey) (string, error) {
	w.lastTitle = title
	return w.record(key)
}

func (w *fakeWriter) Vote(_ context.Context, id uint64, key *secret.PrivateKey) (string, error) {
	w.lastID = id
	return w.record(key)
}

func (w *fakeWriter) DeleteProposal(_ context.Context, id uint64, key *secret.PrivateKey) (string, error) {
	w.lastID = id
	return w.record(key)
}

func (w *fakeWriter) ExecuteProposal(_ context.Context, id uint64, key *secret.PrivateKey) (string, error) {
	w.lastID = id
	return w.record(key)
}

type fakeReader struct {
	records []model.ProposalRecord
	err     error
}

func (r *fakeReader) ListAll(context.Context) ([]model.ProposalRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.records, nil
}

func (r *fakeReader) GetOne(_ context.Context, index uint64) (*model.ProposalRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	if index >= uint64(len(r.records)) {
		return nil, errno.ErrNotFound.Wrapf("proposal %d", index)
	}
	return &r.records[index], nil
}

func (r *fakeReader) Count(context.Context) (uint64, error) {
	return uint64(len(r.records)), r.err
}

func (r *fakeReader) HasVoted(_ context.Context, voter common.Address, index uint64) (bool, error) {
	if index >= uint64(len(r.records)) {
		return false, errno.ErrNotFound.Wrapf("proposal %d", index)
	}
	return voter == common.HexToAddress(testAddress), nil
}

func newTestEngine(w *fakeWriter, r *fakeReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.Init()

	h := NewProposalHandler(w, r)
	engine := gin.New()
	v1 := engine.Group("/api/v1")
	v1.POST("/proposals", h.CreateProposal)
	v1.POST("/vote", h.Vote)
	v1.GET("/proposals", h.ListProposals)
	v1.GET("/proposals/count", h.CountProposals)
	v1.GET("/proposals/:id", h.GetProposal)
	v1.GET("/proposals/:id/voters/:address", h.HasVoted)
	v1.POST("/proposals/:id/execute", h.ExecuteProposal)
	v1.POST("/proposals/:id/delete", h.DeleteProposal)
	engine.GET("/health", NewHealthHandler(nil).HealthCheck)
	return engine
}

func do(t *testing.T, engine *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func TestCreateProposal(t *testing.T) {
	w := &fakeWriter{}
	engine := newTestEngine(w, &fakeReader{})

	rec, resp := do(t, engine, http.MethodPost, "/api/v1/proposals", gin.H{
		"title":       "Budget 2025",
		"description": "Approve annual budget",
		"private_key": testKey,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, testTxHash, resp.Data.(map[string]interface{})["transaction_hash"])
	assert.Equal(t, "Budget 2025", w.lastTitle)
	assert.Equal(t, common.HexToAddress(testAddress), w.lastSender)
	assert.NotContains(t, rec.Body.String(), testKey[2:])
}

func TestCreateProposalValidation(t *testing.T) {
	engine := newTestEngine(&fakeWriter{}, &fakeReader{})

	tests := []struct {
		name string
		body interface{}
		code int
		msg  string
	}{
		{"missing title", gin.H{"description": "d", "private_key": testKey}, errno.ErrInvalidInput.Code, "title is required"},
		{"bad key", gin.H{"title": "t", "description": "d", "private_key": "0xnothex"}, errno.ErrInvalidInput.Code, "private_key must be a 32-byte hex private key"},
		{"malformed json", `{"title":`, errno.ErrBind.Code, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := do(t, engine, http.MethodPost, "/api/v1/proposals", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, resp.Code)
			assert.Contains(t, resp.Message, tt.msg)
		})
	}
}

func TestVote(t *testing.T) {
	w := &fakeWriter{}
	engine := newTestEngine(w, &fakeReader{})

	rec, resp := do(t, engine, http.MethodPost, "/api/v1/vote", gin.H{"proposal_id": 0, "private_key": testKey})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, uint64(0), w.lastID)
	require.Len(t, w.keys, 1)
	assert.True(t, w.keys[0].Destroyed())

	rec, resp = do(t, engine, http.MethodPost, "/api/v1/vote", gin.H{"proposal_id": -1, "private_key": testKey})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errno.ErrInvalidInput.Code, resp.Code)

	rec, _ = do(t, engine, http.MethodPost, "/api/v1/vote", gin.H{"private_key": testKey})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{errno.ErrNodeUnavailable.Wrapf("dial tcp: connection refused"), http.StatusServiceUnavailable},
		{errno.ErrNodeRejected.Wrapf("nonce too low"), http.StatusUnprocessableEntity},
		{errno.ErrKeyMismatch, http.StatusBadRequest},
		{errno.ErrSenderBusy, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		engine := newTestEngine(&fakeWriter{err: tt.err}, &fakeReader{})
		rec, resp := do(t, engine, http.MethodPost, "/api/v1/proposals/3/execute", gin.H{"private_key": testKey})
		assert.Equal(t, tt.status, rec.Code)
		code, _ := errno.Decode(tt.err)
		assert.Equal(t, code, resp.Code)
	}

	// node reason is passed through verbatim
	engine := newTestEngine(&fakeWriter{err: errno.ErrNodeRejected.Wrapf("nonce too low: address 0xabc, tx: 0 state: 1")}, &fakeReader{})
	_, resp := do(t, engine, http.MethodPost, "/api/v1/proposals/3/delete", gin.H{"private_key": testKey})
	assert.Contains(t, resp.Message, "nonce too low: address 0xabc, tx: 0 state: 1")
}

func TestExecuteDeleteUsePathIndex(t *testing.T) {
	w := &fakeWriter{}
	engine := newTestEngine(w, &fakeReader{})

	rec, _ := do(t, engine, http.MethodPost, "/api/v1/proposals/7/execute", gin.H{"private_key": testKey})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), w.lastID)

	rec, _ = do(t, engine, http.MethodPost, "/api/v1/proposals/4/delete", gin.H{"private_key": testKey})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(4), w.lastID)

	rec, resp := do(t, engine, http.MethodPost, "/api/v1/proposals/-4/delete", gin.H{"private_key": testKey})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errno.ErrInvalidInput.Code, resp.Code)
}

func TestReadEndpoints(t *testing.T) {
	r := &fakeReader{records: []model.ProposalRecord{
		{Index: 0, Title: "Budget 2025", Description: "Approve annual budget", VoteCount: 2},
		{Index: 1, Title: "Hire", Description: "Hire auditor", Executed: true},
	}}
	engine := newTestEngine(&fakeWriter{}, r)

	rec, resp := do(t, engine, http.MethodGet, "/api/v1/proposals", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	list := resp.Data.(map[string]interface{})["proposals"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, "Budget 2025", list[0].(map[string]interface{})["title"])
	assert.Equal(t, float64(2), list[0].(map[string]interface{})["vote_count"])

	rec, resp = do(t, engine, http.MethodGet, "/api/v1/proposals/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp.Data.(map[string]interface{})["executed"])

	rec, resp = do(t, engine, http.MethodGet, "/api/v1/proposals/2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errno.ErrNotFound.Code, resp.Code)

	rec, _ = do(t, engine, http.MethodGet, "/api/v1/proposals/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, resp = do(t, engine, http.MethodGet, "/api/v1/proposals/count", nil)
	assert.Equal(t, float64(2), resp.Data.(map[string]interface{})["count"])

	_, resp = do(t, engine, http.MethodGet, "/api/v1/proposals/0/voters/"+testAddress, nil)
	assert.Equal(t, true, resp.Data.(map[string]interface{})["has_voted"])

	rec, _ = do(t, engine, http.MethodGet, "/api/v1/proposals/0/voters/0x1234", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFailureIsNotEmptyList(t *testing.T) {
	engine := newTestEngine(&fakeWriter{}, &fakeReader{err: errno.ErrDecode.Wrapf("read proposal 1 of 3")})

	rec, resp := do(t, engine, http.MethodGet, "/api/v1/proposals", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, errno.ErrDecode.Code, resp.Code)
	assert.Empty(t, resp.Data)
}

type staticStatus struct {
	healthy bool
	at      time.Time
}

func (s staticStatus) NodeHealthy() (bool, time.Time) { return s.healthy, s.at }

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/health", NewHealthHandler(staticStatus{healthy: false, at: time.Now()}).HealthCheck)

	rec, resp := do(t, engine, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "UP", data["status"])
	assert.Equal(t, "DOWN", data["node"].(map[string]interface{})["status"])
}
