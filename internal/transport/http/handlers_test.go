package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"advisingdash/internal/advising"
	"advisingdash/internal/charts"
	"advisingdash/internal/config"
	apierrors "advisingdash/internal/errors"
	"advisingdash/internal/infrastructure"
	"advisingdash/internal/services"
	"advisingdash/internal/workshop"
	"advisingdash/web"
)

const advisingCSV = `Date Scheduled,First Name,Last Name,Calendar,Type,Student Number,What would you like to talk about?
2024-01-08,Ada,Lovelace,Alice,Drop-in,100,Internship search and resume
2024-01-09,Alan,Turing,Bob,Scheduled,200,Course planning for winter
2024-01-22,Ada,Lovelace,Alice,Scheduled,100,Resume review
2024-02-06,Alan,Turing,Bob,Drop-in,200,Transfer to the Allen School
2024-02-10,Edsger,Dijkstra,Bob,Scheduled,400,
`

const workshopCSV = `Date Scheduled,Date Rescheduled,Where in the writing process are you?,What is your current major?,Have you applied to the Allen School before?
2024-01-10,2024-01-15,"I am just getting started, I have a draft",Pre Sciences,Yes
2024-01-11,,I have a draft,computer science,no
`

const maxUpload = 1 << 20

type testEnv struct {
	router http.Handler
	store  *services.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := infrastructure.NewNopLogger()
	store := services.NewStore(services.StoreOptions{MaxDatasets: 8}, nil, logger)
	deps := services.Deps{
		Store:          store,
		Renderer:       charts.NewRenderer(config.ChartConfig{Width: 4, Height: 3, Format: "png"}),
		Logger:         logger,
		MaxUploadBytes: maxUpload,
	}

	pages, err := NewPages(web.FS, logger)
	require.NoError(t, err)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	adv := NewAdvisingHandler(services.NewAdvisingService(deps, nil, advising.DefaultAnalyzeOptions()), pages, errorHandler, maxUpload, logger)
	ws := NewWorkshopHandler(services.NewWorkshopService(deps, workshop.Options{PreviewRows: 5}), pages, errorHandler, maxUpload, logger)
	ph := NewPageHandler(pages, store, errorHandler, logger)
	dh := NewDatasetHandler(store, errorHandler, logger)
	hh := NewHealthHandler(services.NewHealthService("test", "", store, nil, logger), logger)

	r := chi.NewRouter()
	r.NotFound(ph.NotFound)
	r.Get("/", ph.Home)
	r.Get("/guide", ph.Guide)
	r.Mount("/advising", adv.Routes())
	r.Mount("/workshop", ws.Routes())
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", hh.HealthCheck)
		r.Get("/health/live", hh.LivenessCheck)
		r.Get("/version", hh.Version)
		r.Mount("/advising", adv.APIRoutes())
		r.Mount("/workshop", ws.APIRoutes())
		r.Mount("/datasets", dh.Routes())
	})

	return &testEnv{router: r, store: store}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return e.do(req)
}

func uploadRequest(t *testing.T, path, field, filename, content, accept string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return req
}

// upload stores content through the JSON API and returns the dataset id.
func (e *testEnv) upload(t *testing.T, kind, filename, content string) string {
	t.Helper()
	rec := e.do(uploadRequest(t, "/"+kind+"/upload", "file", filename, content, "application/json"))
	require.Contains(t, []int{http.StatusCreated, http.StatusOK}, rec.Code, rec.Body.String())

	var res services.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.Dataset.ID)
	return res.Dataset.ID
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem), rec.Body.String())
	return problem
}

func TestPageHandler_StaticPages(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path string
		want string
	}{
		{"/", "Welcome to the Advising &amp; Workshop Dashboard"},
		{"/guide", "User Guide"},
		{"/advising/", "Advising Data Analysis"},
		{"/workshop/", "Workshop Data Analysis"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := env.get(tt.path, "text/html")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Contains(t, rec.Body.String(), config.AppName)
		})
	}
}

func TestPageHandler_HomeListsDatasets(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, "advising", "appointments.csv", advisingCSV)

	rec := env.get("/", "text/html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/advising/`+id+`"`)
	assert.Contains(t, rec.Body.String(), "appointments.csv")
}

func TestPageHandler_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/nope", "text/html")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Go back")

	rec = env.get("/nope", "application/json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeNotFound, decodeProblem(t, rec)["type"])
}

func TestUpload_BrowserRedirects(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(uploadRequest(t, "/advising/upload", "file", "appointments.csv", advisingCSV, "text/html"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/advising/"))
	assert.NotContains(t, location, "duplicate")

	rec = env.do(uploadRequest(t, "/advising/upload", "file", "copy.csv", advisingCSV, "text/html"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, location+"?duplicate=1", rec.Header().Get("Location"))

	page := env.get(rec.Header().Get("Location"), "text/html")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "already uploaded")
}

func TestUpload_JSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(uploadRequest(t, "/api/workshop/upload", "file", "signups.csv", workshopCSV, "application/json"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var res services.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, services.KindWorkshop, res.Dataset.Kind)
	assert.Equal(t, 2, res.Dataset.Rows)
	assert.False(t, res.Duplicate)
	assert.Equal(t, "/workshop/"+res.Dataset.ID, rec.Header().Get("Location"))

	rec = env.do(uploadRequest(t, "/api/workshop/upload", "file", "signups.csv", workshopCSV, "application/json"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Duplicate)
}

func TestUpload_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantCode   string
	}{
		{
			name: "wrong form field",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/advising/upload", "data", "a.csv", advisingCSV, "application/json")
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "MISSING_FILE",
		},
		{
			name: "empty file",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/advising/upload", "file", "a.csv", "", "application/json")
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "MISSING_FILE",
		},
		{
			name: "unsupported extension",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/advising/upload", "file", "notes.txt", advisingCSV, "application/json")
			},
			wantStatus: http.StatusUnsupportedMediaType,
			wantCode:   "UNSUPPORTED_FILE",
		},
		{
			name: "over the size limit",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/advising/upload", "file", "big.csv", strings.Repeat("x", maxUpload+10), "application/json")
			},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "PAYLOAD_TOO_LARGE",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/advising/upload", strings.NewReader("hello"))
				req.Header.Set("Content-Type", "text/plain")
				req.Header.Set("Accept", "application/json")
				return req
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.req(t))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decodeProblem(t, rec)["error_code"])
		})
	}
}

func TestUpload_MissingColumnsRendersErrorPage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(uploadRequest(t, "/advising/upload", "file", "a.csv", "Date Scheduled,Calendar\n2024-01-01,Alice\n", "text/html"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Type")
	assert.Contains(t, body, `href="/advising"`)
	assert.Equal(t, 0, env.store.Len())
}

func TestAdvisingHandler_Dashboard(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, "advising", "appointments.csv", advisingCSV)

	rec := env.get("/advising/"+id, "text/html")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "General Appointment Stats")
	assert.Contains(t, body, `src="/advising/`+id+`/charts/weekday.png"`)
	assert.Contains(t, body, `<option value="Bob" selected>`)
	assert.NotContains(t, body, "Raw Data Preview")
	// January for Alice and February for Bob; the other crosstabs are plain.
	assert.Equal(t, 2, strings.Count(body, `class="max"`))

	rec = env.get("/advising/"+id+"?advisor=Bob&advisor=+&preview=1", "text/html")
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, `src="/advising/`+id+`/charts/monthly.png?advisor=Bob"`)
	assert.Contains(t, body, `<option value="Alice">`)
	assert.Contains(t, body, "Raw Data Preview")
}

func TestAdvisingHandler_UnknownDataset(t *testing.T) {
	env := newTestEnv(t)
	workshopID := env.upload(t, "workshop", "signups.csv", workshopCSV)

	for _, id := range []string{"missing", workshopID} {
		rec := env.get("/advising/"+id, "text/html")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Dataset not found or expired")

		rec = env.get("/api/advising/"+id+"/report", "application/json")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "DATASET_NOT_FOUND", decodeProblem(t, rec)["error_code"])
	}
}

func TestAdvisingHandler_Chart(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, "advising", "appointments.csv", advisingCSV)

	rec := env.get("/advising/"+id+"/charts/weekday.png?type=Drop-in", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = env.get("/advising/"+id+"/charts/pie.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "UNKNOWN_CHART", decodeProblem(t, rec)["error_code"])
}

func TestAdvisingHandler_Table(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, "advising", "appointments.csv", advisingCSV)

	rec := env.get("/advising/"+id+"/tables/advisor-monthly.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeCSV, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="advising-advisor-monthly.csv"`)
	assert.Contains(t, rec.Body.String(), "Alice")

	rec = env.get("/advising/"+id+"/tables/everything.csv", "application/json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "UNKNOWN_TABLE", decodeProblem(t, rec)["error_code"])
}

func TestAdvisingHandler_Export(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, "advising", "appointments.csv", advisingCSV)

	rec := env.get("/advising/"+id+"/export.xlsx?advisor=Alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Summary")
}

func TestAdvisingHandler_Report(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, "advising", "appointments.csv", advisingCSV)

	rec := env.get("/api/advising/"+id+"/report?advisor=Bob", "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Dataset services.Dataset `json:"dataset"`
		Report  struct {
			Summary advising.Summary `json:"summary"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, id, view.Dataset.ID)
	assert.Equal(t, 3, view.Report.Summary.TotalAppointments)
	assert.Equal(t, 1, view.Report.Summary.RepeatStudents)
}

func TestWorkshopHandler(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, "workshop", "signups.csv", workshopCSV)

	rec := env.get("/workshop/"+id+"?preview=1", "text/html")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Workshop Summary Stats")
	assert.Contains(t, body, `src="/workshop/`+id+`/charts/funnel.png"`)
	assert.Contains(t, body, "Raw Data Preview")

	rec = env.get("/workshop/"+id+"/charts/majors.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = env.get("/workshop/"+id+"/tables/majors.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Major,Count")

	rec = env.get("/workshop/"+id+"/export.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))

	rec = env.get("/api/workshop/"+id+"/report", "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	var view services.WorkshopView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 2, view.Report.Summary.TotalSubmissions)
}

func TestDatasetHandler(t *testing.T) {
	env := newTestEnv(t)
	advID := env.upload(t, "advising", "appointments.csv", advisingCSV)
	env.upload(t, "workshop", "signups.csv", workshopCSV)

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?kind=advising", 1},
		{"?kind=workshop", 1},
	}
	for _, tt := range tests {
		rec := env.get("/api/datasets"+tt.query, "application/json")
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Datasets []services.Dataset `json:"datasets"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body.Datasets, tt.want, tt.query)
	}

	rec := env.get("/api/datasets?kind=bogus", "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	del := func() *httptest.ResponseRecorder {
		return env.do(httptest.NewRequest(http.MethodDelete, "/api/datasets/"+advID, nil))
	}
	assert.Equal(t, http.StatusNoContent, del().Code)
	assert.Equal(t, http.StatusNotFound, del().Code)
	assert.Equal(t, 1, env.store.Len())
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/health", "/api/health/live", "/api/version"} {
		rec := env.get(path, "application/json")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"test"`, path)
	}
}

func TestPages(t *testing.T) {
	logger := infrastructure.NewNopLogger()

	t.Run("parse error", func(t *testing.T) {
		fsys := fstest.MapFS{
			"templates/_base.gohtml": {Data: []byte(`{{define "base"}}{{template "content" .}}{{end}}`)},
			"templates/bad.gohtml":   {Data: []byte(`{{define "content"}}{{if}}{{end}}`)},
		}
		_, err := NewPages(fsys, logger)
		assert.ErrorContains(t, err, "bad.gohtml")
	})

	t.Run("no pages", func(t *testing.T) {
		_, err := NewPages(fstest.MapFS{}, logger)
		assert.Error(t, err)
	})

	t.Run("render", func(t *testing.T) {
		fsys := fstest.MapFS{
			"templates/_base.gohtml": {Data: []byte(`{{define "base"}}<b>{{template "content" .}}</b>{{end}}`)},
			"templates/hello.gohtml": {Data: []byte(`{{define "content"}}hi {{.}}{{end}}`)},
			"templates/broken.gohtml": {Data: []byte(`{{define "content"}}{{.Missing}}{{end}}`)},
		}
		pages, err := NewPages(fsys, logger)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		pages.Render(rec, req, http.StatusTeapot, "hello", "<there>")
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "<b>hi &lt;there&gt;</b>", rec.Body.String())

		rec = httptest.NewRecorder()
		pages.Render(rec, req, http.StatusOK, "broken", "text")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		rec = httptest.NewRecorder()
		pages.Render(rec, req, http.StatusOK, "absent", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "weekday", trimExt("weekday.png"))
	assert.Equal(t, "weekday", trimExt("weekday"))
	assert.Equal(t, ".hidden", trimExt(".hidden"))

	f := parseFilter(map[string][]string{"advisor": {"Alice", " ", ""}, "type": {" Drop-in "}})
	assert.Equal(t, advising.Filter{Advisors: []string{"Alice"}, Types: []string{"Drop-in"}}, f)
	assert.Equal(t, "advisor=Alice&type=Drop-in", filterQuery(f).Encode())
	assert.Equal(t, "/x", withQuery("/x", filterQuery(advising.Filter{})))

	assert.ErrorIs(t, mapError(services.ErrWrongKind, services.KindAdvising, ""), apierrors.ErrDatasetNotFound)
	assert.NoError(t, mapError(nil, services.KindAdvising, ""))
}
