package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/daybook/internal/eventstore"
	"github.com/starford/daybook/internal/grid"
	"github.com/starford/daybook/internal/models"
	"github.com/starford/daybook/internal/testutil"
	"github.com/starford/daybook/internal/view"
)

// testEnv builds a UTC store at the reference time and a router over it.
// A non-empty authToken enables token mode.
func testEnv(t *testing.T, authToken string) (*eventstore.Store, http.Handler) {
	t.Helper()
	return testEnvWithSSE(t, authToken, nil)
}

func testEnvWithSSE(t *testing.T, authToken string, sseHandler http.Handler) (*eventstore.Store, http.Handler) {
	t.Helper()
	store := testutil.Store(t, testutil.NewClock(time.Time{}))
	settings := Settings{Locale: grid.LocaleEN, Layout: view.CanvasLayout}
	return store, NewRouter(store, settings, authToken != "", authToken, sseHandler)
}

func do(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func meeting() EventRequest {
	return EventRequest{
		Title:     "  Planning  ",
		Date:      "2026-10-20",
		StartTime: "09:00",
		EndTime:   "10:00",
		Category:  models.CategoryWork,
	}
}

func TestCreateAndGetEvent(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/events", meeting())
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decode[map[string]any](t, w)
	if created["id"] != "ev-1" || created["title"] != "Planning" || created["date"] != "2026-10-20" || created["color"] != "#3b82f6" {
		t.Errorf("created = %v", created)
	}

	w = do(t, router, http.MethodGet, "/events/ev-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if got := decode[map[string]any](t, w); got["startTime"] != "09:00" || got["category"] != "work" {
		t.Errorf("got = %v", got)
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	store, router := testEnv(t, "")

	req := meeting()
	req.Title = " "
	req.EndTime = "08:00"
	w := do(t, router, http.MethodPost, "/events", req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	body := decode[errResponse](t, w)
	if body.Error != "validation failed" ||
		body.Fields["title"] != eventstore.MsgTitleRequired ||
		body.Fields["endTime"] != eventstore.MsgEndBeforeStart {
		t.Errorf("body = %+v", body)
	}
	if store.Len() != 0 {
		t.Error("store changed on rejected create")
	}

	req = meeting()
	req.Date = "20/10/2026"
	w = do(t, router, http.MethodPost, "/events", req)
	if w.Code != http.StatusUnprocessableEntity || decode[errResponse](t, w).Fields["date"] != "invalid date" {
		t.Errorf("bad date = %d %s", w.Code, w.Body.String())
	}

	req = meeting()
	req.Date = ""
	w = do(t, router, http.MethodPost, "/events", req)
	if decode[errResponse](t, w).Fields["date"] != eventstore.MsgDateRequired {
		t.Errorf("missing date = %s", w.Body.String())
	}

	w = do(t, router, http.MethodPost, "/events", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed = %d, want 400", w.Code)
	}
}

func TestUpdateEvent(t *testing.T) {
	store, router := testEnv(t, "")
	testutil.MustCreate(t, store, testutil.Input("first", testutil.Day(2026, time.October, 20), "08:00", "09:00"))
	testutil.MustCreate(t, store, testutil.Input("second", testutil.Day(2026, time.October, 20), "10:00", "11:00"))

	req := meeting()
	req.Date = ""
	req.Title = "renamed"
	w := do(t, router, http.MethodPut, "/events/ev-1", req)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	evs := store.List(t.Context())
	if evs[0].ID != "ev-1" || evs[0].Title != "renamed" || evs[0].Date.Day() != 20 {
		t.Errorf("after update = %+v", evs[0])
	}

	w = do(t, router, http.MethodPut, "/events/ghost", meeting())
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}

	req.StartTime = "25:00"
	w = do(t, router, http.MethodPut, "/events/ev-1", req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid update = %d, want 422", w.Code)
	}
}

func TestDeleteEvent(t *testing.T) {
	store, router := testEnv(t, "")
	testutil.MustCreate(t, store, testutil.Input("gone", testutil.Day(2026, time.October, 20), "08:00", "09:00"))

	for _, id := range []string{"ev-1", "ev-1", "never"} {
		w := do(t, router, http.MethodDelete, "/events/"+id, nil)
		if w.Code != http.StatusNoContent {
			t.Errorf("delete %s = %d, want 204", id, w.Code)
		}
	}
	if store.Len() != 0 {
		t.Errorf("len = %d", store.Len())
	}
	if w := do(t, router, http.MethodGet, "/events/ev-1", nil); w.Code != http.StatusNotFound {
		t.Errorf("get deleted = %d, want 404", w.Code)
	}
}

func TestListEvents(t *testing.T) {
	store, router := testEnv(t, "")
	testutil.MustCreate(t, store, testutil.Input("a", testutil.Day(2026, time.October, 20), "08:00", "09:00"))
	testutil.MustCreate(t, store, testutil.Input("b", testutil.Day(2026, time.October, 21), "08:00", "09:00"))
	testutil.MustCreate(t, store, testutil.Input("c", testutil.Day(2026, time.October, 20), "07:00", "08:00"))

	all := decode[EventListResponse](t, do(t, router, http.MethodGet, "/events", nil))
	if all.Total != 3 {
		t.Errorf("total = %d", all.Total)
	}

	day := decode[EventListResponse](t, do(t, router, http.MethodGet, "/events?date=2026-10-20", nil))
	if day.Total != 2 || day.Events[0].Title != "a" || day.Events[1].Title != "c" {
		t.Errorf("day = %+v", day)
	}

	empty := do(t, router, http.MethodGet, "/events?date=2026-01-01", nil)
	if !strings.Contains(empty.Body.String(), `"events":[]`) {
		t.Errorf("empty day = %s", empty.Body.String())
	}

	if w := do(t, router, http.MethodGet, "/events?date=yesterday", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad date = %d, want 400", w.Code)
	}
}

func TestMonth(t *testing.T) {
	store, router := testEnv(t, "")
	testutil.MustCreate(t, store, testutil.Input("Quarterly review", testutil.Day(2026, time.October, 20), "08:00", "09:00"))

	w := do(t, router, http.MethodGet, "/month?selected=2026-10-20", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("month status = %d", w.Code)
	}
	v := decode[view.MonthView](t, w)
	if v.Title != "October 2026" || len(v.Cells) != 42 || !v.Cells[21].IsToday {
		t.Fatalf("month = %q cells=%d", v.Title, len(v.Cells))
	}
	cell := v.Cells[22]
	if !cell.IsSelected || len(cell.Events) != 1 || cell.Events[0].Label != "Quarterly ..." {
		t.Errorf("cell = %+v", cell)
	}
	if len(v.DayEvents) != 1 || v.Selected != "2026-10-20" {
		t.Errorf("selection = %q events=%d", v.Selected, len(v.DayEvents))
	}

	v = decode[view.MonthView](t, do(t, router, http.MethodGet, "/month?year=2027&month=2", nil))
	if v.Title != "February 2027" || v.Cells[0].Date != "2027-02-01" {
		t.Errorf("feb 2027 = %q first=%s", v.Title, v.Cells[0].Date)
	}

	for _, q := range []string{"month=13", "month=0", "year=abc", "selected=tomorrow"} {
		if w := do(t, router, http.MethodGet, "/month?"+q, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s = %d, want 400", q, w.Code)
		}
	}
}

func TestMonthHit(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/month/hit?year=2026&month=10&x=10&y=90", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("hit status = %d", w.Code)
	}
	if hit := decode[HitResponse](t, w); hit.Index != 0 || hit.Date != "2026-09-28" {
		t.Errorf("hit = %+v", hit)
	}

	if w := do(t, router, http.MethodGet, "/month/hit?year=2026&month=10&x=10&y=40", nil); w.Code != http.StatusNotFound {
		t.Errorf("header hit = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/month/hit?x=a&y=1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad coords = %d, want 400", w.Code)
	}
}

func TestLabels(t *testing.T) {
	_, router := testEnv(t, "")

	l := decode[LabelsResponse](t, do(t, router, http.MethodGet, "/labels", nil))
	if l.Locale != grid.LocaleEN || len(l.Weekdays) != 7 || len(l.Months) != 12 || len(l.Categories) != 4 {
		t.Fatalf("labels = %+v", l)
	}
	if l.Weekdays[0] != "Mon" || l.Months[0] != "January" {
		t.Errorf("weekdays[0]=%q months[0]=%q", l.Weekdays[0], l.Months[0])
	}
}

func TestReminders(t *testing.T) {
	store, router := testEnv(t, "")
	// Reference time is 2026-10-19 08:30 UTC.
	testutil.MustCreate(t, store, testutil.Reminder("past", testutil.Day(2026, time.October, 19), "08:00"))
	testutil.MustCreate(t, store, testutil.Reminder("later", testutil.Day(2026, time.October, 21), "09:00"))
	testutil.MustCreate(t, store, testutil.Reminder("soon", testutil.Day(2026, time.October, 19), "09:00"))

	r := decode[RemindersResponse](t, do(t, router, http.MethodGet, "/reminders", nil))
	if len(r.Reminders) != 2 || r.Reminders[0].Title != "soon" || r.Reminders[1].Title != "later" {
		t.Errorf("reminders = %+v", r.Reminders)
	}
}

func TestICSExportImport(t *testing.T) {
	store, router := testEnv(t, "")
	testutil.MustCreate(t, store, testutil.Input("Standup", testutil.Day(2026, time.October, 20), "09:00", "09:15"))
	testutil.MustCreate(t, store, testutil.Reminder("Call", testutil.Day(2026, time.October, 21), "12:00"))

	w := do(t, router, http.MethodGet, "/calendar.ics", nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar") {
		t.Fatalf("export = %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	ics := w.Body.String()
	if strings.Count(ics, "BEGIN:VEVENT") != 2 || !strings.Contains(ics, "BEGIN:VALARM") {
		t.Errorf("export body:\n%s", ics)
	}

	target, router2 := testEnv(t, "")
	w = do(t, router2, http.MethodPost, "/import", ics)
	if w.Code != http.StatusOK {
		t.Fatalf("import = %d %s", w.Code, w.Body.String())
	}
	if res := decode[ImportResponse](t, w); res.Imported != 2 || res.Skipped != 0 {
		t.Errorf("import = %+v", res)
	}
	got := target.List(t.Context())
	if len(got) != 2 || got[1].Title != "Call" || !got[1].IsReminder || got[0].EndTime != "09:15" {
		t.Errorf("imported = %+v", got)
	}

	if w := do(t, router2, http.MethodPost, "/import", "garbage"); w.Code != http.StatusBadRequest {
		t.Errorf("garbage import = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	raw, _ := json.Marshal(meeting())
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(raw))
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// blockingStream writes stream headers and blocks until the client leaves.
var blockingStream = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestStream_AuthProtected(t *testing.T) {
	_, router := testEnvWithSSE(t, "secret", blockingStream)

	if w := do(t, router, http.MethodGet, "/stream", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("stream no auth = %d, want 401", w.Code)
	}
}

func TestStream_ValidToken(t *testing.T) {
	_, router := testEnvWithSSE(t, "tok", blockingStream)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("stream with valid token = %d", w.Code)
	}
}
