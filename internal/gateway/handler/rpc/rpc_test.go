package rpc

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/builder"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/filestore"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/generator"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/history"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/project"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/snapshot"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/tester"
)

const rpcGoodResponse = "```file:index.html\n" + `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Quiz Time</title>
<style>
body { margin: 0; font-family: sans-serif; }
.card { padding: 1rem; }
.question { font-weight: bold; }
.answer { cursor: pointer; }
button { cursor: pointer; }
</style>
</head>
<body>
<h1>Quiz</h1>
<button id="next">Next question</button>
<script>
function next() { show(); }
</script>
</body>
</html>` + "\n```"

func newTestServer(responses ...string) *httptest.Server {
	files := filestore.NewMemoryStore()
	projects := project.NewMemoryStore()
	snaps := snapshot.NewStore(files)
	histLog := history.NewLog(files)
	b := builder.New(generator.NewFakeClient(responses...), files, projects, snaps, histLog, history.NewArchive(files, nil, nil), nil)

	mux := http.NewServeMux()
	for route, h := range NewBuildHandler(b).Routes() {
		mux.Handle(route, h)
	}
	for route, h := range NewProjectHandler(projects, histLog, snaps).Routes() {
		mux.Handle(route, h)
	}
	return httptest.NewServer(mux)
}

func post(t *testing.T, url string, body any) (int, []byte) {
	t.Helper()
	payload, err := json.Marshal(body)
	tester.NoErr(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	tester.NoErr(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	tester.NoErr(t, err)
	return resp.StatusCode, data
}

func TestBuildEndpointPublishesAndReads(t *testing.T) {
	srv := newTestServer(rpcGoodResponse)
	defer srv.Close()

	status, body := post(t, srv.URL+"/openqode.v1.BuildService/Build", BuildRequest{ProjectID: "p1", Request: "make a quiz app"})
	tester.Eq(t, status, http.StatusOK, "body: %s", body)

	var res BuildResponse
	tester.NoErr(t, json.Unmarshal(body, &res))
	tester.False(t, res.QAFailed)
	tester.Contains(t, res.Files["index.html"], "<title>Quiz Time</title>")

	status, body = post(t, srv.URL+"/openqode.v1.ProjectService/GetProject", GetProjectRequest{ProjectID: "p1"})
	tester.Eq(t, status, http.StatusOK)
	var got GetProjectResponse
	tester.NoErr(t, json.Unmarshal(body, &got))
	tester.Eq(t, got.State.ProjectID, "p1")

	status, body = post(t, srv.URL+"/openqode.v1.ProjectService/History", HistoryRequest{ProjectID: "p1"})
	tester.Eq(t, status, http.StatusOK)
	var hist HistoryResponse
	tester.NoErr(t, json.Unmarshal(body, &hist))
	tester.Eq(t, len(hist.Records), 1)
}

func TestBuildEndpointRejectsMissingArguments(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	status, body := post(t, srv.URL+"/openqode.v1.BuildService/Build", BuildRequest{ProjectID: "p1"})
	tester.Eq(t, status, http.StatusBadRequest, "body: %s", body)
	tester.Contains(t, string(body), "invalid_argument")
}

func TestModifyEndpointUnknownProjectMapsToNotFound(t *testing.T) {
	srv := newTestServer(rpcGoodResponse)
	defer srv.Close()

	status, body := post(t, srv.URL+"/openqode.v1.BuildService/Modify", BuildRequest{ProjectID: "ghost", Request: "fix the header"})
	tester.Eq(t, status, http.StatusNotFound, "body: %s", body)
	tester.Contains(t, string(body), "not_found")
}

func TestUndoEndpointEmptyStack(t *testing.T) {
	srv := newTestServer(rpcGoodResponse)
	defer srv.Close()

	status, body := post(t, srv.URL+"/openqode.v1.BuildService/Build", BuildRequest{ProjectID: "p1", Request: "make a quiz app"})
	tester.Eq(t, status, http.StatusOK, "body: %s", body)

	status, body = post(t, srv.URL+"/openqode.v1.BuildService/Undo", UndoRequest{ProjectID: "p1"})
	tester.Eq(t, status, http.StatusOK)
	var res UndoResponse
	tester.NoErr(t, json.Unmarshal(body, &res))
	tester.False(t, res.Restored, "initial build leaves nothing to undo")
}
