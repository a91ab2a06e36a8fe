package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/logger"
	"github.com/regresshub/regresshub/regressionset"
	"github.com/regresshub/regresshub/storage"
	"github.com/regresshub/regresshub/testcase"
)

// maxImportSize bounds how large an uploaded CSV import may be.
const maxImportSize = 10 << 20

// TestCaseHandler handles test case management and CSV import requests.
type TestCaseHandler struct {
	setStore  regressionset.Store
	caseStore testcase.Store
	importer  *testcase.Importer
	blobStore storage.BlobStore
	logger    logger.Logger
}

// NewTestCaseHandler creates a new test case handler.
func NewTestCaseHandler(
	setStore regressionset.Store,
	caseStore testcase.Store,
	importer *testcase.Importer,
	blobStore storage.BlobStore,
	log logger.Logger,
) *TestCaseHandler {
	return &TestCaseHandler{
		setStore:  setStore,
		caseStore: caseStore,
		importer:  importer,
		blobStore: blobStore,
		logger:    log,
	}
}

// CreateTestCaseRequest represents a test case creation request.
type CreateTestCaseRequest struct {
	CaseLabel      string `json:"case_label"`
	UserType       string `json:"user_type"`
	Platform       string `json:"platform"`
	Module         string `json:"module"`
	TestScenario   string `json:"test_scenario"`
	Title          string `json:"title"`
	PreConditions  string `json:"pre_conditions"`
	TestData       string `json:"test_data"`
	TestStep       string `json:"test_step"`
	ExpectedResult string `json:"expected_result"`
}

// UpdateTestCaseRequest represents a test case update request. Nil fields
// are left unchanged.
type UpdateTestCaseRequest struct {
	Module         *string          `json:"module,omitempty"`
	TestScenario   *string          `json:"test_scenario,omitempty"`
	Title          *string          `json:"title,omitempty"`
	PreConditions  *string          `json:"pre_conditions,omitempty"`
	TestData       *string          `json:"test_data,omitempty"`
	TestStep       *string          `json:"test_step,omitempty"`
	ExpectedResult *string          `json:"expected_result,omitempty"`
	ActualResults  *string          `json:"actual_results,omitempty"`
	Status         *testcase.Status `json:"status,omitempty"`
}

// ListBySet handles listing all test cases of a regression set.
func (h *TestCaseHandler) ListBySet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	set, ok := h.ownedSet(w, r, userID, "id")
	if !ok {
		return
	}

	cases, err := h.caseStore.ListByRegressionSet(r.Context(), set.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list test cases")
		return
	}

	respondData(w, http.StatusOK, "test cases fetched", cases)
}

// Create handles adding a test case to a regression set.
func (h *TestCaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	set, ok := h.ownedSet(w, r, userID, "id")
	if !ok {
		return
	}

	var req CreateTestCaseRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tc := &testcase.TestCase{
		RegressionSetID: set.ID,
		CaseLabel:       req.CaseLabel,
		UserType:        req.UserType,
		Platform:        req.Platform,
		Module:          req.Module,
		TestScenario:    req.TestScenario,
		Title:           req.Title,
		PreConditions:   req.PreConditions,
		TestData:        req.TestData,
		TestStep:        req.TestStep,
		ExpectedResult:  req.ExpectedResult,
	}

	if err := h.caseStore.Create(r.Context(), tc); err != nil {
		switch {
		case errors.Is(err, testcase.ErrInvalidCaseLabel),
			errors.Is(err, testcase.ErrInvalidModule),
			errors.Is(err, testcase.ErrInvalidExpectedResult):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to create test case")
		}
		return
	}

	respondData(w, http.StatusCreated, "test case created", tc)
}

// Import handles bulk-loading test cases from an uploaded CSV file. The raw
// file is archived to blob storage so the import can be audited later.
func (h *TestCaseHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	set, ok := h.ownedSet(w, r, userID, "id")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	result, err := h.importer.Import(r.Context(), set.ID, bytes.NewReader(content))
	if err != nil {
		switch {
		case errors.Is(err, testcase.ErrInvalidCSV), errors.Is(err, testcase.ErrEmptyCSV):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to import test cases")
		}
		return
	}

	// Archiving is best effort; a storage hiccup does not undo the import.
	archiveKey := storage.ImportArchiveKey(set.ID, header.Filename)
	if err := h.blobStore.Put(r.Context(), archiveKey, bytes.NewReader(content)); err != nil {
		h.logger.Warn(r.Context(), "failed to archive import file", logger.Fields{
			"error":             err.Error(),
			"regression_set_id": set.ID.String(),
			"key":               archiveKey,
		})
	}

	respondData(w, http.StatusOK, "test cases imported", result)
}

// GetByID handles fetching a single test case.
func (h *TestCaseHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	tc, ok := h.ownedCase(w, r, userID)
	if !ok {
		return
	}

	respondData(w, http.StatusOK, "test case fetched", tc)
}

// Update handles updating a test case.
func (h *TestCaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	tc, ok := h.ownedCase(w, r, userID)
	if !ok {
		return
	}

	var req UpdateTestCaseRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var setters []testcase.UpdateSetter
	if req.Module != nil {
		setters = append(setters, testcase.SetModule(*req.Module))
	}
	if req.TestScenario != nil {
		setters = append(setters, testcase.SetTestScenario(*req.TestScenario))
	}
	if req.Title != nil {
		setters = append(setters, testcase.SetTitle(*req.Title))
	}
	if req.PreConditions != nil {
		setters = append(setters, testcase.SetPreConditions(*req.PreConditions))
	}
	if req.TestData != nil {
		setters = append(setters, testcase.SetTestData(*req.TestData))
	}
	if req.TestStep != nil {
		setters = append(setters, testcase.SetTestStep(*req.TestStep))
	}
	if req.ExpectedResult != nil {
		setters = append(setters, testcase.SetExpectedResult(*req.ExpectedResult))
	}
	if req.ActualResults != nil {
		setters = append(setters, testcase.SetActualResults(*req.ActualResults))
	}
	if req.Status != nil {
		setters = append(setters, testcase.SetStatus(*req.Status))
	}

	if len(setters) == 0 {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.caseStore.Update(r.Context(), tc.ID, setters...); err != nil {
		switch {
		case errors.Is(err, testcase.ErrInvalidModule),
			errors.Is(err, testcase.ErrInvalidExpectedResult),
			errors.Is(err, testcase.ErrInvalidStatus):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to update test case")
		}
		return
	}

	updated, err := h.caseStore.GetByID(r.Context(), tc.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch test case")
		return
	}

	respondData(w, http.StatusOK, "test case updated", updated)
}

// Delete handles removing a test case.
func (h *TestCaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	tc, ok := h.ownedCase(w, r, userID)
	if !ok {
		return
	}

	if err := h.caseStore.Delete(r.Context(), tc.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete test case")
		return
	}

	respondData(w, http.StatusOK, "test case deleted", nil)
}

// ownedSet loads a regression set from the named path parameter and checks
// that the caller owns it.
func (h *TestCaseHandler) ownedSet(w http.ResponseWriter, r *http.Request, userID uuid.UUID, param string) (*regressionset.RegressionSet, bool) {
	id, ok := parseUUIDOrRespond(w, r, param, "regression set")
	if !ok {
		return nil, false
	}

	set, err := h.setStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, regressionset.ErrRegressionSetNotFound) {
			respondError(w, http.StatusNotFound, "regression set not found")
			return nil, false
		}
		respondError(w, http.StatusInternalServerError, "failed to fetch regression set")
		return nil, false
	}

	if set.CreatedBy != userID {
		respondError(w, http.StatusForbidden, "you do not own this regression set")
		return nil, false
	}

	return set, true
}

// ownedCase loads a test case from the path and checks ownership through its
// regression set.
func (h *TestCaseHandler) ownedCase(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*testcase.TestCase, bool) {
	id, ok := parseUUIDOrRespond(w, r, "id", "test case")
	if !ok {
		return nil, false
	}

	tc, err := h.caseStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, testcase.ErrTestCaseNotFound) {
			respondError(w, http.StatusNotFound, "test case not found")
			return nil, false
		}
		respondError(w, http.StatusInternalServerError, "failed to fetch test case")
		return nil, false
	}

	set, err := h.setStore.GetByID(r.Context(), tc.RegressionSetID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch regression set")
		return nil, false
	}
	if set.CreatedBy != userID {
		respondError(w, http.StatusForbidden, "you do not own this test case")
		return nil, false
	}

	return tc, true
}
