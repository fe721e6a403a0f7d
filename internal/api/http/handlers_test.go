package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	api "github.com/quizvault/quizvault/internal/api/http"
	"github.com/quizvault/quizvault/internal/session"
	"github.com/quizvault/quizvault/internal/storage"
	"github.com/quizvault/quizvault/internal/store"
)

const rawQuiz = `{
  "title": "Capitals",
  "notebook": "Geo",
  "section": "Europe",
  "part": "West",
  "questions": [
    {"q": "Capital of France is ___.", "a1": "Paris"},
    {"q": "___ is the capital of Spain.", "a1": "Madrid"}
  ]
}`

const rawCode = "# set up the counter\ncount = 0\ncount += 1  # increment\n"

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	bs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := chi.NewRouter()
	api.Routes(r, api.Deps{
		Store:    st,
		Blobs:    bs,
		Sessions: session.NewRegistry(),
		Log:      zap.NewNop(),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, st
}

func doJSON(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func saveQuiz(t *testing.T, srv *httptest.Server, raw string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"raw": raw,
		"meta": map[string]string{
			"title": "Capitals", "notebook": "Geo", "section": "Europe", "part": "West",
		},
	})
	var saved struct {
		ID string `json:"id"`
	}
	if code := doJSON(t, "POST", srv.URL+"/quizzes/", string(body), &saved); code != http.StatusCreated {
		t.Fatalf("save quiz: status %d", code)
	}
	if saved.ID == "" {
		t.Fatal("save quiz: empty id")
	}
	return saved.ID
}

func TestPreviewReportsValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp struct {
		Validation struct {
			Valid  bool     `json:"valid"`
			Errors []string `json:"errors"`
		} `json:"validation"`
	}
	if code := doJSON(t, "POST", srv.URL+"/quizzes/preview", rawQuiz, &resp); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if !resp.Validation.Valid {
		t.Fatalf("expected valid, got errors %v", resp.Validation.Errors)
	}

	if code := doJSON(t, "POST", srv.URL+"/quizzes/preview", "{broken", &resp); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if resp.Validation.Valid || len(resp.Validation.Errors) == 0 {
		t.Fatal("expected parse error to be reported")
	}
	if !strings.HasPrefix(resp.Validation.Errors[0], "Error parsing JSON: ") {
		t.Fatalf("unexpected error %q", resp.Validation.Errors[0])
	}
}

func TestSaveListGetDelete(t *testing.T) {
	srv, _ := newTestServer(t)
	id := saveQuiz(t, srv, rawQuiz)

	var list []map[string]any
	if code := doJSON(t, "GET", srv.URL+"/quizzes/?notebook=Geo", "", &list); code != http.StatusOK {
		t.Fatalf("list: status %d", code)
	}
	if len(list) != 1 {
		t.Fatalf("list: want 1 quiz, got %d", len(list))
	}

	if code := doJSON(t, "GET", srv.URL+"/quizzes/"+id, "", nil); code != http.StatusOK {
		t.Fatalf("get: status %d", code)
	}

	resp, err := http.Get(srv.URL + "/quizzes/" + id + "/source")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("source: status %d", resp.StatusCode)
	}

	if code := doJSON(t, "DELETE", srv.URL+"/quizzes/"+id, "", nil); code != http.StatusOK {
		t.Fatalf("delete: status %d", code)
	}
	if code := doJSON(t, "GET", srv.URL+"/quizzes/"+id, "", nil); code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d", code)
	}
}

func TestSaveRejectsInvalidAndGatesMetadata(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"raw":  `{"questions": []}`,
		"meta": map[string]string{"title": "T", "notebook": "N", "section": "S", "part": "P"},
	})
	if code := doJSON(t, "POST", srv.URL+"/quizzes/", string(body), nil); code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid quiz: status %d", code)
	}

	// Valid document but blank notebook fails the save gate.
	body, _ = json.Marshal(map[string]any{
		"raw":  rawQuiz,
		"meta": map[string]string{"title": "T", "notebook": "  ", "section": "S", "part": "P"},
	})
	if code := doJSON(t, "POST", srv.URL+"/quizzes/", string(body), nil); code != http.StatusUnprocessableEntity {
		t.Fatalf("blank notebook: status %d", code)
	}
}

func TestSaveReportsDuplicates(t *testing.T) {
	srv, _ := newTestServer(t)
	first := saveQuiz(t, srv, rawQuiz)

	body, _ := json.Marshal(map[string]any{
		"raw": rawQuiz,
		"meta": map[string]string{
			"title": "Capitals", "notebook": "Geo", "section": "Europe", "part": "West",
		},
	})
	var saved struct {
		ID          string   `json:"id"`
		DuplicateOf []string `json:"duplicate_of"`
	}
	if code := doJSON(t, "POST", srv.URL+"/quizzes/", string(body), &saved); code != http.StatusCreated {
		t.Fatalf("status %d", code)
	}
	if len(saved.DuplicateOf) != 1 || saved.DuplicateOf[0] != first {
		t.Fatalf("want duplicate_of [%s], got %v", first, saved.DuplicateOf)
	}
}

func TestHierarchyCascades(t *testing.T) {
	srv, _ := newTestServer(t)
	saveQuiz(t, srv, rawQuiz)

	var h struct {
		Notebooks []string `json:"notebooks"`
		Sections  []string `json:"sections"`
		Parts     []string `json:"parts"`
	}
	if code := doJSON(t, "GET", srv.URL+"/quizzes/hierarchy", "", &h); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(h.Notebooks) != 1 || h.Notebooks[0] != "Geo" {
		t.Fatalf("notebooks %v", h.Notebooks)
	}
	if h.Sections != nil {
		t.Fatalf("sections without notebook filter: %v", h.Sections)
	}

	if code := doJSON(t, "GET", srv.URL+"/quizzes/hierarchy?notebook=Geo&section=Europe", "", &h); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(h.Sections) != 1 || h.Sections[0] != "Europe" {
		t.Fatalf("sections %v", h.Sections)
	}
	if len(h.Parts) != 1 || h.Parts[0] != "West" {
		t.Fatalf("parts %v", h.Parts)
	}
}

func TestCodeQuizPreviewAndSave(t *testing.T) {
	srv, _ := newTestServer(t)

	var preview struct {
		Questions []map[string]any `json:"questions"`
	}
	if code := doJSON(t, "POST", srv.URL+"/code-quizzes/preview", rawCode, &preview); code != http.StatusOK {
		t.Fatalf("preview: status %d", code)
	}
	if len(preview.Questions) != 2 {
		t.Fatalf("want 2 lines, got %d", len(preview.Questions))
	}

	if code := doJSON(t, "POST", srv.URL+"/code-quizzes/preview", "# only comments\n", nil); code != http.StatusUnprocessableEntity {
		t.Fatalf("comment-only preview: status %d", code)
	}

	body, _ := json.Marshal(map[string]any{
		"source": rawCode,
		"meta":   map[string]string{"notebook": "Code", "section": "Py", "part": "Basics"},
	})
	var saved struct {
		ID   string `json:"id"`
		Quiz struct {
			Title      string `json:"title"`
			IsCodeQuiz bool   `json:"isCodeQuiz"`
		} `json:"quiz"`
	}
	if code := doJSON(t, "POST", srv.URL+"/code-quizzes/", string(body), &saved); code != http.StatusCreated {
		t.Fatalf("save: status %d", code)
	}
	if !saved.Quiz.IsCodeQuiz {
		t.Fatal("expected isCodeQuiz")
	}
	if saved.Quiz.Title != "Code Practice Quiz" {
		t.Fatalf("default title, got %q", saved.Quiz.Title)
	}
}

func TestFITBSessionFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	id := saveQuiz(t, srv, rawQuiz)

	var sess struct {
		SessionID string `json:"session_id"`
		State     string `json:"state"`
	}
	body, _ := json.Marshal(map[string]string{"quiz_id": id})
	if code := doJSON(t, "POST", srv.URL+"/sessions/fitb", string(body), &sess); code != http.StatusCreated {
		t.Fatalf("create: status %d", code)
	}
	base := srv.URL + "/sessions/fitb/" + sess.SessionID

	if code := doJSON(t, "POST", base+"/start", "", &sess); code != http.StatusOK {
		t.Fatalf("start: status %d", code)
	}
	if sess.State != "in_progress" {
		t.Fatalf("state %q", sess.State)
	}
	// Double start conflicts.
	if code := doJSON(t, "POST", base+"/start", "", nil); code != http.StatusConflict {
		t.Fatalf("restart: status %d", code)
	}

	ans, _ := json.Marshal(map[string]any{"question": 0, "key": "a1", "value": " paris "})
	if code := doJSON(t, "POST", base+"/answers", string(ans), nil); code != http.StatusOK {
		t.Fatalf("answer: status %d", code)
	}

	var report struct {
		Correct int `json:"correct"`
		Total   int `json:"total"`
	}
	if code := doJSON(t, "POST", base+"/submit", "", &report); code != http.StatusOK {
		t.Fatalf("submit: status %d", code)
	}
	if report.Correct != 1 || report.Total != 2 {
		t.Fatalf("report %d/%d", report.Correct, report.Total)
	}
}

func TestFITBEditPersistsToStore(t *testing.T) {
	srv, st := newTestServer(t)
	id := saveQuiz(t, srv, rawQuiz)

	var sess struct {
		SessionID string `json:"session_id"`
	}
	body, _ := json.Marshal(map[string]string{"quiz_id": id})
	doJSON(t, "POST", srv.URL+"/sessions/fitb", string(body), &sess)
	base := srv.URL + "/sessions/fitb/" + sess.SessionID

	if code := doJSON(t, "POST", base+"/start", "", nil); code != http.StatusOK {
		t.Fatalf("start: status %d", code)
	}
	if code := doJSON(t, "POST", base+"/questions/0/edit", "", nil); code != http.StatusOK {
		t.Fatalf("begin edit: status %d", code)
	}

	// Marker/answer count mismatch is rejected.
	bad, _ := json.Marshal(map[string]any{"text": "No blanks here.", "answers": []string{"Paris"}})
	if code := doJSON(t, "PUT", base+"/questions/0", string(bad), nil); code != http.StatusUnprocessableEntity {
		t.Fatalf("mismatch edit: status %d", code)
	}

	good, _ := json.Marshal(map[string]any{"text": "___ is the capital of France.", "answers": []string{"Paris"}})
	if code := doJSON(t, "PUT", base+"/questions/0", string(good), nil); code != http.StatusOK {
		t.Fatalf("save edit: status %d", code)
	}

	z, err := st.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if z.Questions[0].Q != "___ is the capital of France." {
		t.Fatalf("edit not persisted: %q", z.Questions[0].Q)
	}
}

func TestTypingSessionFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"source": rawCode,
		"meta":   map[string]string{"notebook": "Code", "section": "Py", "part": "Basics"},
	})
	var saved struct {
		ID string `json:"id"`
	}
	if code := doJSON(t, "POST", srv.URL+"/code-quizzes/", string(body), &saved); code != http.StatusCreated {
		t.Fatalf("save code quiz: status %d", code)
	}

	var sess struct {
		SessionID string `json:"session_id"`
		Lines     []struct {
			Target string   `json:"target"`
			States []string `json:"states"`
		} `json:"lines"`
		FocusLine int `json:"focus_line"`
		FocusPos  int `json:"focus_pos"`
	}
	req, _ := json.Marshal(map[string]string{"quiz_id": saved.ID})
	if code := doJSON(t, "POST", srv.URL+"/sessions/typing", string(req), &sess); code != http.StatusCreated {
		t.Fatalf("create: status %d", code)
	}
	if len(sess.Lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(sess.Lines))
	}
	base := srv.URL + "/sessions/typing/" + sess.SessionID

	key, _ := json.Marshal(map[string]any{"key": "char", "line": 0, "pos": 0, "char": "c"})
	if code := doJSON(t, "POST", base+"/keys", string(key), &sess); code != http.StatusOK {
		t.Fatalf("char: status %d", code)
	}
	if sess.Lines[0].States[0] != "correct" || sess.FocusPos != 1 {
		t.Fatalf("after char: state %q focus %d", sess.Lines[0].States[0], sess.FocusPos)
	}

	enter, _ := json.Marshal(map[string]any{"key": "enter"})
	if code := doJSON(t, "POST", base+"/keys", string(enter), &sess); code != http.StatusOK {
		t.Fatalf("enter: status %d", code)
	}
	if sess.FocusLine != 1 || sess.FocusPos != 0 {
		t.Fatalf("after enter: focus %d,%d", sess.FocusLine, sess.FocusPos)
	}

	// Reveal without selection conflicts; select then reveal works.
	if code := doJSON(t, "POST", base+"/reveal", "", nil); code != http.StatusConflict {
		t.Fatalf("reveal w/o selection: status %d", code)
	}
	sel, _ := json.Marshal(map[string]any{"line": 1, "pos": 0})
	if code := doJSON(t, "POST", base+"/selection", string(sel), nil); code != http.StatusOK {
		t.Fatalf("select: status %d", code)
	}
	sel, _ = json.Marshal(map[string]any{"line": 1, "pos": 2, "shift": true})
	if code := doJSON(t, "POST", base+"/selection", string(sel), nil); code != http.StatusOK {
		t.Fatalf("shift select: status %d", code)
	}
	if code := doJSON(t, "POST", base+"/reveal", "", &sess); code != http.StatusOK {
		t.Fatalf("reveal: status %d", code)
	}
	for i := 0; i < 3; i++ {
		if sess.Lines[1].States[i] != "revealed" {
			t.Fatalf("cell %d state %q", i, sess.Lines[1].States[i])
		}
	}

	if code := doJSON(t, "DELETE", srv.URL+"/sessions/"+sess.SessionID, "", nil); code != http.StatusOK {
		t.Fatalf("drop: status %d", code)
	}
	if code := doJSON(t, "GET", base+"/", "", nil); code != http.StatusNotFound {
		t.Fatalf("get after drop: status %d", code)
	}
}

func TestFITBSessionRejectsCodeQuiz(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"source": rawCode,
		"meta":   map[string]string{"notebook": "Code", "section": "Py", "part": "Basics"},
	})
	var saved struct {
		ID string `json:"id"`
	}
	doJSON(t, "POST", srv.URL+"/code-quizzes/", string(body), &saved)

	req, _ := json.Marshal(map[string]string{"quiz_id": saved.ID})
	if code := doJSON(t, "POST", srv.URL+"/sessions/fitb", string(req), nil); code != http.StatusBadRequest {
		t.Fatalf("status %d", code)
	}
}
