package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/soundbench/soundbench/internal/engine"
	"github.com/soundbench/soundbench/internal/studio"
)

type testEnv struct {
	eng    *engine.MockEngine
	studio *studio.Studio
	srv    *httptest.Server
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	eng := &engine.MockEngine{}
	st := studio.New(eng, 4, time.Millisecond, zap.NewNop())
	t.Cleanup(st.Shutdown)

	h := NewHandlers(st, t.TempDir(), 48000, zap.NewNop())
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return &testEnv{eng: eng, studio: st, srv: srv}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp, decoded
}

func (e *testEnv) createSession(t *testing.T) string {
	t.Helper()
	resp, body := e.do(t, "POST", "/v1/sessions", `{"file":"song.wav"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: status %d: %v", resp.StatusCode, body)
	}
	id, _ := body["sessionId"].(string)
	if id == "" {
		t.Fatalf("no session id in response: %v", body)
	}
	return id
}

func stateOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	st, ok := body["state"].(map[string]any)
	if !ok {
		t.Fatalf("no state in response: %v", body)
	}
	return st
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	resp, body := env.do(t, "GET", "/healthz", "")
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("status %d, body %v", resp.StatusCode, body)
	}
}

func TestSessionLifecycle(t *testing.T) {
	env := newEnv(t)
	id := env.createSession(t)

	resp, body := env.do(t, "GET", "/v1/sessions/"+id, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get session: status %d", resp.StatusCode)
	}
	st := stateOf(t, body)
	if st["ready"] != true || st["playing"] != false {
		t.Errorf("unexpected initial state: %v", st)
	}
	labels, _ := body["labels"].(map[string]any)
	if labels["rate"] != "Normal" {
		t.Errorf("labels = %v", labels)
	}

	resp, _ = env.do(t, "DELETE", "/v1/sessions/"+id, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: status %d", resp.StatusCode)
	}
	resp, _ = env.do(t, "GET", "/v1/sessions/"+id, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete: status %d", resp.StatusCode)
	}
}

func TestCreateSessionDecodeFailure(t *testing.T) {
	env := newEnv(t)
	env.eng.DecodeErr = engine.ErrUnsupportedFormat

	resp, body := env.do(t, "POST", "/v1/sessions", `{"file":"song.xyz"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status %d, want 422", resp.StatusCode)
	}
	if body["error"] == "" {
		t.Error("error message missing")
	}
}

func TestCreateSessionCap(t *testing.T) {
	env := newEnv(t)
	for i := 0; i < 4; i++ {
		env.createSession(t)
	}
	resp, _ := env.do(t, "POST", "/v1/sessions", `{"file":"song.wav"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status %d, want 409", resp.StatusCode)
	}
}

func TestTransportToggle(t *testing.T) {
	env := newEnv(t)
	id := env.createSession(t)

	_, body := env.do(t, "POST", "/v1/sessions/"+id+"/transport/toggle", "")
	if st := stateOf(t, body); st["playing"] != true {
		t.Errorf("not playing after toggle: %v", st)
	}
	_, body = env.do(t, "POST", "/v1/sessions/"+id+"/transport/toggle", "")
	if st := stateOf(t, body); st["playing"] != false {
		t.Errorf("still playing after second toggle: %v", st)
	}
}

func TestSeekGesture(t *testing.T) {
	env := newEnv(t)
	id := env.createSession(t)
	path := "/v1/sessions/" + id + "/transport/seek"

	_, body := env.do(t, "POST", path, `{"phase":"begin","position":10}`)
	if st := stateOf(t, body); st["seeking"] != true || st["positionSeconds"] != 10.0 {
		t.Errorf("after begin: %v", st)
	}
	_, body = env.do(t, "POST", path, `{"phase":"update","position":42.5}`)
	if st := stateOf(t, body); st["positionSeconds"] != 42.5 {
		t.Errorf("after update: %v", st)
	}
	_, body = env.do(t, "POST", path, `{"phase":"commit","position":55}`)
	st := stateOf(t, body)
	if st["seeking"] != false || st["positionSeconds"] != 55.0 {
		t.Errorf("after commit: %v", st)
	}

	src := env.eng.Source(0)
	if src.SeekCalls != 1 || src.LastSeek != 55 {
		t.Errorf("engine seeks = %d (last %f), want exactly one at 55", src.SeekCalls, src.LastSeek)
	}

	resp, _ := env.do(t, "POST", path, `{"phase":"stretch"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad phase: status %d", resp.StatusCode)
	}
}

func TestPutParamsClampAndEcho(t *testing.T) {
	env := newEnv(t)
	id := env.createSession(t)
	base := "/v1/sessions/" + id + "/params/"

	_, body := env.do(t, "PUT", base+"rate", `{"value":3.5}`)
	if st := stateOf(t, body); st["playbackRate"] != 2.0 {
		t.Errorf("rate not clamped: %v", st)
	}

	_, body = env.do(t, "PUT", base+"pitch", `{"value":15}`)
	st := stateOf(t, body)
	if st["pitchSemitones"] != 12.0 {
		t.Errorf("pitch not clamped: %v", st)
	}
	labels, _ := body["labels"].(map[string]any)
	if labels["pitch"] != "+12 semitones (higher)" {
		t.Errorf("pitch label = %v", labels["pitch"])
	}

	_, body = env.do(t, "PUT", base+"reverb", `{"value":-1}`)
	if st := stateOf(t, body); st["reverbDecaySeconds"] != 0.0 {
		t.Errorf("reverb not clamped: %v", st)
	}

	resp, _ := env.do(t, "PUT", base+"volume", `{"value":1}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown param: status %d", resp.StatusCode)
	}
}

func TestPutEQGain(t *testing.T) {
	env := newEnv(t)
	id := env.createSession(t)
	base := "/v1/sessions/" + id + "/params/eq/"

	_, body := env.do(t, "PUT", base+"low", `{"value":-45}`)
	st := stateOf(t, body)
	if st["eqLowDb"] != -30.0 {
		t.Errorf("eq low not clamped: %v", st)
	}
	labels, _ := body["labels"].(map[string]any)
	if labels["eqLow"] != "Cut 30dB" {
		t.Errorf("eq label = %v", labels["eqLow"])
	}
	if got := env.eng.Eq(0).Gain(engine.BandLow); got != -30 {
		t.Errorf("engine gain = %d, want -30", got)
	}

	resp, _ := env.do(t, "PUT", base+"sub", `{"value":1}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown band: status %d", resp.StatusCode)
	}
}

func TestAnalysisEndpoints(t *testing.T) {
	env := newEnv(t)
	id := env.createSession(t)

	resp, body := env.do(t, "GET", "/v1/sessions/"+id+"/analysis/waveform?points=10", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("waveform: status %d", resp.StatusCode)
	}
	peaks, _ := body["peaks"].([]any)
	if len(peaks) != 10 {
		t.Errorf("got %d peaks, want 10", len(peaks))
	}

	// mock snapshot is shorter than the FFT window, so bins are empty
	resp, body = env.do(t, "GET", "/v1/sessions/"+id+"/analysis/spectrum", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("spectrum: status %d", resp.StatusCode)
	}
	if bins, ok := body["bins"].([]any); !ok || len(bins) != 0 {
		t.Errorf("bins = %v, want empty array", body["bins"])
	}
}

func TestLibraryEmptyDir(t *testing.T) {
	env := newEnv(t)
	resp, body := env.do(t, "GET", "/v1/library", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("library: status %d", resp.StatusCode)
	}
	if assets, ok := body["assets"].([]any); !ok || len(assets) != 0 {
		t.Errorf("assets = %v, want empty array", body["assets"])
	}
}

func TestLibraryWaveformValidation(t *testing.T) {
	env := newEnv(t)

	resp, _ := env.do(t, "GET", "/v1/library/waveform", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing file: status %d", resp.StatusCode)
	}
	resp, _ = env.do(t, "GET", "/v1/library/waveform?file=../x.wav", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("escaping file: status %d", resp.StatusCode)
	}
	resp, _ = env.do(t, "GET", "/v1/library/waveform?file=x.mp3", "")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("non-wav file: status %d", resp.StatusCode)
	}
}
