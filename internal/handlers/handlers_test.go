package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memorybox-backend/internal/localstore"
	"memorybox-backend/internal/reconcile"
	"memorybox-backend/internal/remote"
	appErrors "memorybox-backend/pkg/errors"
)

const (
	testUserID   = "5f0b37e2-61a4-4f0e-9c6d-0a1b2c3d4e5f"
	testFamilyID = "2b1f7a06-9f2e-4c1d-8a3b-5d6e7f8a9b0c"
)

// stubTransport serves canned rows per table and records writes, the
// same shape the reconciler tests use.
type stubTransport struct {
	mu        sync.Mutex
	rows      map[string]interface{}
	upserts   []string
	deletes   []map[string]string
	selectErr error
	upsertErr error
}

func (s *stubTransport) SelectEq(_ context.Context, table string, _ map[string]string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectErr != nil {
		return s.selectErr
	}
	rows, ok := s.rows[table]
	if !ok {
		return nil
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *stubTransport) Upsert(_ context.Context, table, _ string, _ interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts = append(s.upserts, table)
	return nil
}

func (s *stubTransport) DeleteEq(_ context.Context, table string, filters map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := map[string]string{"table": table}
	for k, v := range filters {
		merged[k] = v
	}
	s.deletes = append(s.deletes, merged)
	return nil
}

func (s *stubTransport) upsertTables() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.upserts...)
}

// newTestRouter mounts the full authenticated route table against a
// reconciler backed by the stub transport. One attempt per save keeps
// the failure tests from sleeping through a backoff schedule.
func newTestRouter(t *testing.T) (*chi.Mux, *stubTransport) {
	t.Helper()
	transport := &stubTransport{rows: map[string]interface{}{}}
	store := localstore.NewStore(localstore.NewMemoryKV(1<<20, zap.NewNop()), 0, nil, zap.NewNop())
	clients := remote.NewClients(transport, store, zap.NewNop())
	rec := reconcile.NewReconciler(clients, store, nil, reconcile.Policy{MaxAttempts: 1}, nil, zap.NewNop())

	logger := zap.NewNop()
	profile := NewProfileHandler(rec, logger)
	family := NewFamilyHandler(rec, logger)
	tree := NewTreeHandler(rec, logger)
	memory := NewMemoryHandler(rec, logger)
	journal := NewJournalHandler(rec, logger)
	journey := NewJourneyHandler(rec, logger)
	capsule := NewCapsuleHandler(rec, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Authenticator(logger))

		r.Get("/profile", profile.GetProfile)
		r.Put("/profile", profile.UpdateProfile)

		r.Post("/families", family.CreateFamily)
		r.Route("/families/{familyID}", func(r chi.Router) {
			r.Get("/", family.GetFamily)
			r.Put("/", family.UpdateFamily)
			r.Get("/tree", tree.GetTree)
			r.Put("/tree", tree.SaveTree)
			r.Get("/memories", memory.ListMemories)
			r.Post("/memories", memory.CreateMemory)
			r.Put("/memories/{memoryID}", memory.UpdateMemory)
			r.Delete("/memories/{memoryID}", memory.DeleteMemory)
			r.Get("/capsules", capsule.ListCapsules)
			r.Post("/capsules", capsule.CreateCapsule)
			r.Delete("/capsules/{capsuleID}", capsule.DeleteCapsule)
		})

		r.Get("/journals", journal.ListEntries)
		r.Post("/journals", journal.CreateEntry)
		r.Put("/journals/{entryID}", journal.UpdateEntry)
		r.Delete("/journals/{entryID}", journal.DeleteEntry)

		r.Get("/journeys/{journeyType}", journey.GetProgress)
		r.Put("/journeys/{journeyType}", journey.UpdateProgress)

		r.Get("/book-preferences", journey.GetBookPreference)
		r.Put("/book-preferences", journey.UpdateBookPreference)
	})
	return r, transport
}

func doRequest(t *testing.T, router *chi.Mux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(UserIDHeader, testUserID)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	return m
}

func TestAuthenticator_RejectsAnonymousRequests(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Authentication required", decodeBody(t, rr)["error"])
}

func TestGetProfile_ServesRemoteRow(t *testing.T) {
	router, transport := newTestRouter(t)
	transport.rows[remote.TableUsers] = []map[string]interface{}{
		{"id": testUserID, "email": "june@example.com", "first_name": "June"},
	}

	rr := doRequest(t, router, http.MethodGet, "/api/v1/profile", "")

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, testUserID, body["id"])
	assert.Equal(t, "june@example.com", body["email"])
}

func TestUpdateProfile_RejectsInvalidEmail(t *testing.T) {
	router, transport := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPut, "/api/v1/profile",
		`{"email":"not-an-address","firstName":"June"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeBody(t, rr)["error"], "email")
	assert.Empty(t, transport.upsertTables())
}

func TestUpdateProfile_PersistsAndEchoes(t *testing.T) {
	router, transport := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPut, "/api/v1/profile",
		`{"email":"june@example.com","firstName":"June","onboardingCompleted":true}`)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, testUserID, body["id"])
	assert.Equal(t, true, body["onboardingCompleted"])
	assert.Contains(t, transport.upsertTables(), remote.TableUsers)
}

func TestSaveTree_EmptyOverPopulatedAnsweredLikeSuccess(t *testing.T) {
	router, transport := newTestRouter(t)
	transport.rows[remote.TableFamilyTrees] = []map[string]interface{}{
		{
			"family_id": testFamilyID,
			"tree_data": map[string]interface{}{
				"familyId": testFamilyID,
				"people": []map[string]interface{}{
					{"id": "p1", "firstName": "June", "generation": 1, "isRoot": true},
				},
				"relationships": []interface{}{},
			},
		},
	}

	rr := doRequest(t, router, http.MethodPut, "/api/v1/families/"+testFamilyID+"/tree",
		`{"people":[],"relationships":[]}`)

	// The wire cannot distinguish a rejected wipe from a stored save.
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, transport.upsertTables(), "rejected save must not reach the backend")
}

func TestSaveTree_RemoteFailureReturns503(t *testing.T) {
	router, transport := newTestRouter(t)
	transport.upsertErr = appErrors.NewRemoteUnavailable("backend down", nil)

	rr := doRequest(t, router, http.MethodPut, "/api/v1/families/"+testFamilyID+"/tree",
		`{"people":[{"id":"p1","firstName":"June","generation":1,"isRoot":true}],"relationships":[]}`)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, decodeBody(t, rr)["error"], "Check your connection")
}

func TestGetTree_RemoteDownServesEmptyTree(t *testing.T) {
	router, transport := newTestRouter(t)
	transport.selectErr = appErrors.NewRemoteUnavailable("backend down", nil)

	rr := doRequest(t, router, http.MethodGet, "/api/v1/families/"+testFamilyID+"/tree", "")

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, testFamilyID, body["familyId"])
	assert.Empty(t, body["people"])
}

func TestCreateMemory_MintsIDAndPersists(t *testing.T) {
	router, transport := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/api/v1/families/"+testFamilyID+"/memories",
		`{"title":"First steps","type":"video","peopleInvolved":["Sam"]}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, testFamilyID, body["familyId"])
	assert.Contains(t, transport.upsertTables(), remote.TableMemories)
}

func TestCreateMemory_ClientSuppliedIDIgnored(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/api/v1/families/"+testFamilyID+"/memories",
		`{"id":"sneaky","title":"First steps","type":"photo"}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotEqual(t, "sneaky", decodeBody(t, rr)["id"])
}

func TestListMemories_RemoteDownServesEmptyList(t *testing.T) {
	router, transport := newTestRouter(t)
	transport.selectErr = appErrors.NewRemoteUnavailable("backend down", nil)

	rr := doRequest(t, router, http.MethodGet, "/api/v1/families/"+testFamilyID+"/memories", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestDeleteMemory_NoContent(t *testing.T) {
	router, transport := newTestRouter(t)

	rr := doRequest(t, router, http.MethodDelete,
		"/api/v1/families/"+testFamilyID+"/memories/mem-1", "")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.Len(t, transport.deletes, 1)
	assert.Equal(t, remote.TableMemories, transport.deletes[0]["table"])
	assert.Equal(t, "mem-1", transport.deletes[0]["id"])
	assert.Equal(t, testFamilyID, transport.deletes[0]["family_id"])
}

func TestCreateJournalEntry_ScopedToCaller(t *testing.T) {
	router, transport := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/api/v1/journals",
		`{"content":"quiet evening","moods":["calm"]}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, testUserID, body["userId"])
	assert.NotEmpty(t, body["id"])
	assert.Contains(t, transport.upsertTables(), remote.TableJournals)
}

func TestUpdateJourneyProgress_StampsActivity(t *testing.T) {
	router, transport := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPut, "/api/v1/journeys/couple",
		`{"completedSteps":["first-date"],"currentStep":"first-trip"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "couple", body["journeyType"])
	assert.NotEmpty(t, body["lastActivityAt"])
	assert.Contains(t, transport.upsertTables(), remote.TableJourneyProgress)
}

func TestGetJourneyProgress_MissingServesFreshRecord(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodGet, "/api/v1/journeys/pregnancy", "")

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "pregnancy", body["journeyType"])
	assert.Empty(t, body["completedSteps"])
}

func TestCreateCapsule_RequiresTitle(t *testing.T) {
	router, transport := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/api/v1/families/"+testFamilyID+"/capsules",
		`{"message":"open in 2030"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeBody(t, rr)["error"], "title")
	assert.Empty(t, transport.upsertTables())
}

func TestCreateCapsule_RecordsCreator(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/api/v1/families/"+testFamilyID+"/capsules",
		`{"title":"For your 18th birthday","openDate":"2040-06-01"}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, testUserID, body["createdBy"])
	assert.NotEmpty(t, body["id"])
}

func TestGetBookPreference_MissingServesDefault(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodGet, "/api/v1/book-preferences?journeyType=couple", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "couple", decodeBody(t, rr)["journeyType"])
}

func TestUpdateBookPreference_RejectsUnknownJourney(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPut, "/api/v1/book-preferences",
		`{"journeyType":"sabbatical"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeBody(t, rr)["error"], "journeyType")
}

func TestGetFamily_UnknownFamilyIs404(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodGet, "/api/v1/families/"+testFamilyID+"/", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateFamily_MintsID(t *testing.T) {
	router, transport := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/api/v1/families",
		`{"name":"The Parks"}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "The Parks", body["name"])
	assert.Equal(t, testUserID, body["createdBy"])
	assert.Contains(t, transport.upsertTables(), remote.TableFamilies)
}

func TestGetValidationError_MalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPut, "/api/v1/profile", `{"email":`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request body", decodeBody(t, rr)["error"])
}
